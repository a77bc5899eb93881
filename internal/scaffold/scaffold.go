package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mountstack/mountstack/internal/installer"
	"github.com/mountstack/mountstack/internal/jsonfile"
	"github.com/mountstack/mountstack/internal/logging"
	"github.com/mountstack/mountstack/internal/manifest"
	"github.com/mountstack/mountstack/internal/pipeline"
	"github.com/mountstack/mountstack/internal/process"
	"github.com/mountstack/mountstack/internal/templates"
	"github.com/mountstack/mountstack/internal/versions"
)

// DefaultWebAppName is the application created under apps/.
const DefaultWebAppName = "web"

// Options configures Plan.
type Options struct {
	// Path is the absolute workspace destination.
	Path string
	// AppName is the workspace name, used for env placeholders.
	AppName string
	// WebAppName defaults to DefaultWebAppName.
	WebAppName string
	// PackageManager runs the generators with "dlx". Defaults to pnpm.
	PackageManager string
	// Run defaults to process.Run.
	Run installer.Runner
}

func (o Options) withDefaults() Options {
	if o.WebAppName == "" {
		o.WebAppName = DefaultWebAppName
	}
	if o.PackageManager == "" {
		o.PackageManager = "pnpm"
	}
	if o.Run == nil {
		o.Run = process.Run
	}
	return o
}

// Plan returns the scaffolding steps in execution order. Every step shares
// the same workspace description.
func Plan(opts Options) []pipeline.Task {
	opts = opts.withDefaults()
	m := installer.NewMonorepo(opts.Path, opts.AppName)

	return []pipeline.Task{
		{Title: "Initializing turbo repo...", Action: initTurboRepo(m, opts)},
		{Title: "Deleting turbo example apps and packages...", Action: deleteTurboExamples(m)},
		{Title: "Removing ESLint and Prettier...", Action: removeESLintAndPrettier(m)},
		{Title: "Setting TypeScript version...", Action: setTypeScriptVersion(m)},
		{Title: "Initializing TypeScript config package...", Action: copyTypeScriptConfigPackage(m)},
		{Title: "Copying .editorconfig file...", Action: copyTemplateFile("editorconfig/.editorconfig", filepath.Join(m.RootPath(), ".editorconfig"), ".editorconfig file")},
		{Title: "Copying VSCode settings file...", Action: copyVSCodeSettings(m)},
		{Title: "Copying .dockerignore file...", Action: copyTemplateFile("docker/.dockerignore", filepath.Join(m.RootPath(), ".dockerignore"), ".dockerignore file")},
		{Title: "Installing Biome...", Action: installBiome(m)},
		{Title: "Creating Next.js app...", Action: createNextApp(m, opts)},
		{Title: "Adding database package...", Action: addDatabasePackage(m)},
	}
}

func initTurboRepo(m *installer.Monorepo, opts Options) pipeline.Action {
	return func(ctx context.Context, log *pipeline.TaskLog) pipeline.Result {
		if err := ensureEmpty(m.RootPath()); err != nil {
			return pipeline.Failuref("Turbo repo initialization failed: %v", err)
		}

		args := []string{
			"dlx",
			"create-turbo@" + versions.Get("create-turbo"),
			m.RootPath(),
			"-m", "pnpm",
			"--skip-install",
			"--turbo-version", versions.Get("turbo"),
		}
		err := opts.Run(ctx, opts.PackageManager, args, process.Options{OnStdout: log.Message, OnStderr: log.Message})
		if err != nil {
			return pipeline.Failuref("Turbo repo initialization failed: %v", err)
		}
		if err := os.RemoveAll(filepath.Join(m.RootPath(), ".vscode")); err != nil {
			return pipeline.Failuref("Turbo repo initialization failed: %v", err)
		}

		// A generator change that breaks the root manifest shows up here
		// rather than as a confusing failure in a later step.
		result, err := manifest.ValidateFile(m.RootPackageJSONPath())
		if err != nil {
			return pipeline.Failuref("Turbo repo initialization failed: %v", err)
		}
		for _, issue := range result.Issues {
			logging.Warn().Str("path", issue.Path).Msg(issue.Message)
			log.Message(fmt.Sprintf("package.json %s: %s", issue.Path, issue.Message))
		}
		if err := checkRootManifest(m.RootPackageJSONPath()); err != nil {
			return pipeline.Failuref("Turbo repo initialization failed: %v", err)
		}
		return pipeline.Success("Turbo repo initialized")
	}
}

// checkRootManifest requires the generated root package.json to carry a name
// and the turbo dependency the later steps build on.
func checkRootManifest(path string) error {
	pkg, err := manifest.Parse(path)
	if err != nil {
		return err
	}
	if pkg.Name == "" {
		return fmt.Errorf("%s has no name", path)
	}
	if !pkg.HasDependency("turbo") {
		return fmt.Errorf("%s does not depend on turbo", path)
	}
	return nil
}

// ensureEmpty accepts a missing or empty directory.
func ensureEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("destination %s is not empty; remove existing files first", dir)
	}
	return nil
}

func deleteTurboExamples(m *installer.Monorepo) pipeline.Action {
	return func(context.Context, *pipeline.TaskLog) pipeline.Result {
		dirs := []string{
			filepath.Join(m.AppsPath(), "docs"),
			filepath.Join(m.AppsPath(), "web"),
			filepath.Join(m.PackagesPath(), "ui"),
			filepath.Join(m.PackagesPath(), "eslint-config"),
		}
		for _, dir := range dirs {
			if err := os.RemoveAll(dir); err != nil {
				return pipeline.Failuref("Failed to delete Turbo example apps: %v", err)
			}
		}
		return pipeline.Success("Turbo example apps and packages deleted")
	}
}

func removeESLintAndPrettier(m *installer.Monorepo) pipeline.Action {
	return func(context.Context, *pipeline.TaskLog) pipeline.Result {
		root := manifest.New(m.RootPackageJSONPath())
		err := root.RemoveDevDependency("prettier")
		if err == nil {
			err = root.RemoveScript("format")
		}
		if err == nil {
			err = root.RemoveScript("lint")
		}
		if err == nil {
			err = jsonfile.Update(m.TurboJSONPath(), func(obj *jsonfile.Object) error {
				tasks, ok := obj.Get("tasks")
				if entries, isObject := tasks.(*jsonfile.Object); ok && isObject {
					entries.Delete("lint")
				}
				return nil
			})
		}
		return pipeline.FromError("ESLint and Prettier removed", "Failed to remove ESLint and Prettier", err)
	}
}

func setTypeScriptVersion(m *installer.Monorepo) pipeline.Action {
	return func(context.Context, *pipeline.TaskLog) pipeline.Result {
		version := versions.Get("typescript")
		err := manifest.New(m.RootPackageJSONPath()).AddDevDependency("typescript", version)
		return pipeline.FromError("TypeScript version set to "+version, "Failed to set TypeScript version", err)
	}
}

func copyTypeScriptConfigPackage(m *installer.Monorepo) pipeline.Action {
	return func(context.Context, *pipeline.TaskLog) pipeline.Result {
		dst := filepath.Join(m.PackagesPath(), "typescript-config")
		err := os.RemoveAll(dst)
		if err == nil {
			err = templates.CopyTree("typescript-config/package", dst)
		}
		return pipeline.FromError("TypeScript config package initialized", "TypeScript config package initialization failed", err)
	}
}

func copyTemplateFile(name, dst, label string) pipeline.Action {
	return func(context.Context, *pipeline.TaskLog) pipeline.Result {
		err := templates.CopyFile(name, dst)
		return pipeline.FromError(label+" copied", "Failed to copy "+label, err)
	}
}

func copyVSCodeSettings(m *installer.Monorepo) pipeline.Action {
	return func(context.Context, *pipeline.TaskLog) pipeline.Result {
		err := templates.CopyTree("vscode", filepath.Join(m.RootPath(), ".vscode"))
		return pipeline.FromError("VSCode settings file copied", "Failed to copy VSCode settings file", err)
	}
}

// BiomeSchemaURL returns the configuration schema URL for a Biome version.
func BiomeSchemaURL(version string) string {
	return fmt.Sprintf("https://biomejs.dev/schemas/%s/schema.json", version)
}

func installBiome(m *installer.Monorepo) pipeline.Action {
	return func(context.Context, *pipeline.TaskLog) pipeline.Result {
		if err := installBiomeConfig(m); err != nil {
			return pipeline.Failuref("Failed to install Biome: %v", err)
		}
		return pipeline.Success("Biome installed")
	}
}

func installBiomeConfig(m *installer.Monorepo) error {
	version, err := versions.Exact("biome")
	if err != nil {
		return err
	}
	config := filepath.Join(m.RootPath(), "biome.json")
	if err := templates.CopyFile("biome/biome.json", config); err != nil {
		return err
	}
	err = jsonfile.Update(config, func(obj *jsonfile.Object) error {
		obj.Set("$schema", BiomeSchemaURL(version))
		return nil
	})
	if err != nil {
		return err
	}

	root := manifest.New(m.RootPackageJSONPath())
	if err := root.AddDevDependency("@biomejs/biome", versions.Get("biome")); err != nil {
		return err
	}
	if err := root.SetScript("lint", "biome ci"); err != nil {
		return err
	}
	return root.SetScript("fix", "biome check --write")
}

func createNextApp(m *installer.Monorepo, opts Options) pipeline.Action {
	return func(ctx context.Context, log *pipeline.TaskLog) pipeline.Result {
		name := opts.WebAppName
		app, err := installer.CreateNextApp(ctx, m, installer.NextAppOptions{
			Name:           name,
			PackageManager: opts.PackageManager,
			Output:         log.Message,
			Run:            opts.Run,
		})
		if err != nil {
			return pipeline.Failuref("Failed to create %s Next.js app: %v", name, err)
		}

		features := []func() error{
			app.AddTailwind,
			app.AddDocker,
			app.AddReactQuery,
			app.AddI18n,
			app.AddLogger,
			app.AddEnvFileManagement,
		}
		for _, install := range features {
			if err := install(); err != nil {
				return pipeline.Failuref("Failed to create %s Next.js app: %v", name, err)
			}
		}
		log.Message(fmt.Sprintf("Installed %s", app.Installed()))
		return pipeline.Success(fmt.Sprintf("Next.js app %s created", name))
	}
}

func addDatabasePackage(m *installer.Monorepo) pipeline.Action {
	return func(context.Context, *pipeline.TaskLog) pipeline.Result {
		_, err := installer.CreateDatabase(m, installer.DatabaseOptions{})
		return pipeline.FromError("Database package created", "Failed to create database package", err)
	}
}
