package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mountstack/mountstack/internal/logging"
	"github.com/mountstack/mountstack/internal/manifest"
	"github.com/mountstack/mountstack/internal/process"
	"github.com/mountstack/mountstack/internal/source"
	"github.com/mountstack/mountstack/internal/templates"
	"github.com/mountstack/mountstack/internal/versions"
)

// Runner starts an external command and waits for it. process.Run is the
// production implementation.
type Runner func(ctx context.Context, name string, args []string, opts process.Options) error

// NextAppOptions configures CreateNextApp.
type NextAppOptions struct {
	// Name is the directory under apps/ and the turbo package name.
	Name string
	// PackageManager runs the generator with "dlx". Defaults to pnpm.
	PackageManager string
	// Output receives the generator's output lines.
	Output func(line string)
	// Run defaults to process.Run.
	Run Runner
}

// NextApp is a Next.js application inside the workspace.
type NextApp struct {
	monorepo *Monorepo
	name     string
	features Features

	root             string
	srcPath          string
	libPath          string
	appRouterPath    string
	tsConfigPath     string
	globalsCSSPath   string
	layoutPath       string
	instrumentation  string
	nextConfigPath   string
	envSamplePath    string
	envLocalPath     string
	envTSPath        string
	manifest         *manifest.Package
}

// CreateNextApp runs create-next-app into apps/<Name> and replaces its
// starter files with the workspace templates.
func CreateNextApp(ctx context.Context, m *Monorepo, opts NextAppOptions) (*NextApp, error) {
	if opts.Name == "" {
		return nil, errors.New("next app name is empty")
	}
	run := opts.Run
	if run == nil {
		run = process.Run
	}
	pm := opts.PackageManager
	if pm == "" {
		pm = "pnpm"
	}

	app := newNextApp(m, opts.Name)
	args := []string{
		"dlx",
		"create-next-app@" + versions.Get("create-next-app"),
		app.root,
		"--ts",
		"--no-linter",
		"--app",
		"--src-dir",
		"--turbopack",
		"--empty",
		"--use-pnpm",
		"--skip-install",
		"--disable-git",
		"--no-react-compiler",
		"--no-tailwind",
		"--import-alias",
		"@/*",
	}
	logging.Info().Str("app", opts.Name).Strs("args", args).Msg("running create-next-app")
	if err := run(ctx, pm, args, process.Options{OnStdout: opts.Output, OnStderr: opts.Output}); err != nil {
		return nil, fmt.Errorf("create-next-app: %w", err)
	}

	if err := app.init(); err != nil {
		return nil, err
	}
	return app, nil
}

func newNextApp(m *Monorepo, name string) *NextApp {
	root := filepath.Join(m.AppsPath(), name)
	src := filepath.Join(root, "src")
	appRouter := filepath.Join(src, "app")
	return &NextApp{
		monorepo:        m,
		name:            name,
		root:            root,
		srcPath:         src,
		libPath:         filepath.Join(src, "lib"),
		appRouterPath:   appRouter,
		tsConfigPath:    filepath.Join(root, "tsconfig.json"),
		globalsCSSPath:  filepath.Join(appRouter, "globals.css"),
		layoutPath:      filepath.Join(appRouter, "layout.tsx"),
		instrumentation: filepath.Join(src, "instrumentation.ts"),
		nextConfigPath:  filepath.Join(root, "next.config.ts"),
		envSamplePath:   filepath.Join(root, ".env.local.sample"),
		envLocalPath:    filepath.Join(root, ".env.local"),
		envTSPath:       filepath.Join(src, "env", "env.ts"),
		manifest:        manifest.New(filepath.Join(root, "package.json")),
	}
}

func (a *NextApp) init() error {
	copies := []struct{ tmpl, dst string }{
		{"next-app/tsconfig.json", a.tsConfigPath},
		{"next-app/globals.css", a.globalsCSSPath},
		{"next-app/layout.tsx", a.layoutPath},
		{"next-app/instrumentation.ts", a.instrumentation},
	}
	for _, c := range copies {
		if err := templates.CopyFile(c.tmpl, c.dst); err != nil {
			return err
		}
	}

	if err := appendLine(filepath.Join(a.root, ".gitignore"), "!.env.*.sample"); err != nil {
		return err
	}

	if err := addPinned(a.manifest.AddDevDependency, []string{"typescript"}); err != nil {
		return err
	}
	return a.manifest.AddDevDependency("@repo/typescript-config", "workspace:*")
}

// Name returns the application name.
func (a *NextApp) Name() string { return a.name }

// Path returns the application directory.
func (a *NextApp) Path() string { return a.root }

// Installed returns the features installed so far.
func (a *NextApp) Installed() Features { return a.features }

// AddTailwind installs Tailwind CSS through its PostCSS plugin.
func (a *NextApp) AddTailwind() error {
	return a.features.install(FeatureTailwind, func() error {
		if err := addPinned(a.manifest.AddDevDependency, []string{"tailwindcss", "postcss", "@tailwindcss/postcss"}); err != nil {
			return err
		}
		if err := templates.CopyFile("tailwind/postcss.config.mjs", filepath.Join(a.root, "postcss.config.mjs")); err != nil {
			return err
		}
		return templates.CopyFile("tailwind/globals.css", a.globalsCSSPath)
	})
}

// AddDocker adds a Dockerfile building the app in standalone mode and
// build/run recipes to the workspace justfile.
func (a *NextApp) AddDocker() error {
	return a.features.install(FeatureDocker, func() error {
		dockerfile := filepath.Join(a.root, "Dockerfile")
		if err := templates.CopyFile("next-app/Dockerfile", dockerfile); err != nil {
			return err
		}
		if _, err := source.ReplaceText(dockerfile, "ARG APP_NAME=web", "ARG APP_NAME="+a.name); err != nil {
			return err
		}

		cfg, err := source.OpenConfig(a.nextConfigPath)
		if err != nil {
			return err
		}
		if err := cfg.AddImport(source.ImportDecl{Module: "node:path", Default: "path"}); err != nil {
			return err
		}
		if err := cfg.AddProperty("nextConfig", "output", `"standalone"`); err != nil {
			return err
		}
		if err := cfg.AddProperty("nextConfig", "outputFileTracingRoot", `path.join(import.meta.dirname, "../../")`); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}

		if err := a.monorepo.CreateJustfile(); err != nil {
			return err
		}
		return a.monorepo.AppendToJustfile(DockerRecipes(a.name))
	})
}

// DockerRecipes returns the justfile block building and running the app's
// image.
func DockerRecipes(app string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "docker_%s_name := %s\n\n", app, app)
	fmt.Fprintf(&b, "@build_%s version:\n", app)
	fmt.Fprintf(&b, "\tdocker build -t {{docker_%s_name}}:{{version}} -f apps/%s/Dockerfile .\n\n", app, app)
	fmt.Fprintf(&b, "@run_%s version:\n", app)
	fmt.Fprintf(&b, "\tdocker run -p 3000:3000 {{docker_%s_name}}:{{version}}\n\n", app)
	return b.String()
}

// AddReactQuery installs TanStack Query with a shared client and wraps the
// layout in its provider.
func (a *NextApp) AddReactQuery() error {
	return a.features.install(FeatureReactQuery, func() error {
		if err := addPinned(a.manifest.AddDependency, []string{"@tanstack/react-query"}); err != nil {
			return err
		}
		if err := addPinned(a.manifest.AddDevDependency, []string{"@tanstack/react-query-devtools"}); err != nil {
			return err
		}
		if err := templates.CopyTree("react-query/lib", a.libPath); err != nil {
			return err
		}
		if err := templates.CopyTree("react-query/app", a.appRouterPath); err != nil {
			return err
		}
		return a.wrapLayout(
			[]source.ImportDecl{{Module: "./providers", Default: "Providers"}},
			"<Providers>", "</Providers>",
		)
	})
}

// AddI18n installs next-intl: messages, request config, the next.config
// plugin and the client provider.
func (a *NextApp) AddI18n() error {
	return a.features.install(FeatureI18n, func() error {
		if err := addPinned(a.manifest.AddDependency, []string{"next-intl"}); err != nil {
			return err
		}
		if err := templates.CopyTree("next-intl/messages", filepath.Join(a.root, "messages")); err != nil {
			return err
		}
		if err := templates.CopyTree("next-intl/src", a.srcPath); err != nil {
			return err
		}

		cfg, err := source.OpenConfig(a.nextConfigPath)
		if err != nil {
			return err
		}
		if _, err := cfg.RemoveDefaultExport(); err != nil {
			return err
		}
		if err := cfg.AddImport(source.ImportDecl{Module: "next-intl/plugin", Default: "createNextIntlPlugin"}); err != nil {
			return err
		}
		if err := cfg.AddVariableStatement(source.VarStatement{Name: "withNextIntl", Init: "createNextIntlPlugin()"}); err != nil {
			return err
		}
		if err := cfg.AddDefaultExport("withNextIntl(nextConfig)"); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}

		return a.wrapLayout(
			[]source.ImportDecl{{Module: "next-intl", Named: []string{"NextIntlClientProvider"}}},
			"<NextIntlClientProvider>", "</NextIntlClientProvider>",
		)
	})
}

// AddLogger installs LogTape and logs from the register hook.
func (a *NextApp) AddLogger() error {
	return a.features.install(FeatureLogger, func() error {
		if err := addPinned(a.manifest.AddDependency, []string{"@logtape/logtape", "@logtape/pretty"}); err != nil {
			return err
		}
		if err := templates.CopyTree("logtape/lib", a.libPath); err != nil {
			return err
		}

		f, err := source.OpenInstrumentation(a.instrumentation)
		if err != nil {
			return err
		}
		if err := f.CheckRegister(); err != nil {
			return err
		}
		if err := f.AddImport(source.ImportDecl{Module: "@/lib/logger"}); err != nil {
			return err
		}
		if err := f.AddImport(source.ImportDecl{Module: "@logtape/logtape", Named: []string{"getLogger"}}); err != nil {
			return err
		}
		end, err := f.ImportsEnd()
		if err != nil {
			return err
		}
		logger := source.VarStatement{Name: "logger", Init: `getLogger(["next", "instrumentation"])`}
		if err := f.InsertVariableStatement(end, logger); err != nil {
			return err
		}
		if err := f.AddStatementsToRegister(`logger.info("Starting instrumentation");`); err != nil {
			return err
		}
		return f.Save()
	})
}

// AddEnvFileManagement installs the zod-validated environment: env files,
// the startup check in register and the client env provider in the layout.
func (a *NextApp) AddEnvFileManagement() error {
	return a.features.install(FeatureEnvFiles, func() error {
		if err := templates.CopyFile("next-app/env.local.sample", a.envSamplePath); err != nil {
			return err
		}
		if err := materializeEnv(a.envSamplePath, a.envLocalPath); err != nil {
			return err
		}
		if err := addPinned(a.manifest.AddDevDependency, []string{"zod"}); err != nil {
			return err
		}
		envDir := filepath.Dir(a.envTSPath)
		if err := templates.CopyFile("env/env.ts", a.envTSPath); err != nil {
			return err
		}
		if err := templates.CopyFile("env/client-env-context.tsx", filepath.Join(envDir, "client-env-context.tsx")); err != nil {
			return err
		}

		guard, err := templates.ReadFile("env/instrumentation.part.ts")
		if err != nil {
			return err
		}
		f, err := source.OpenInstrumentation(a.instrumentation)
		if err != nil {
			return err
		}
		if err := f.CheckRegister(); err != nil {
			return err
		}
		if err := f.AddImport(source.ImportDecl{Module: "@/env/env", Named: []string{"printEnv"}}); err != nil {
			return err
		}
		if err := f.AddStatementsToRegister(guard); err != nil {
			return err
		}

		// Neither file is saved until both edits succeeded.
		layout, err := source.OpenLayout(a.layoutPath)
		if err != nil {
			return err
		}
		imports := []source.ImportDecl{
			{Module: "@/env/client-env-context", Named: []string{"ClientEnvContextProvider"}},
			{Module: "@/env/env", Named: []string{"getEnv"}},
		}
		for _, decl := range imports {
			if err := layout.AddImport(decl); err != nil {
				return err
			}
		}
		if err := layout.InsertVariableInLayout(0, source.VarStatement{Name: "env", Init: "getEnv()"}); err != nil {
			return err
		}
		if err := wrap(layout, "<ClientEnvContextProvider clientEnv={env.client}>", "</ClientEnvContextProvider>"); err != nil {
			return err
		}
		if err := f.Save(); err != nil {
			return err
		}
		return layout.Save()
	})
}

func (a *NextApp) wrapLayout(imports []source.ImportDecl, openTag, closeTag string) error {
	layout, err := source.OpenLayout(a.layoutPath)
	if err != nil {
		return err
	}
	for _, decl := range imports {
		if err := layout.AddImport(decl); err != nil {
			return err
		}
	}
	if err := wrap(layout, openTag, closeTag); err != nil {
		return err
	}
	return layout.Save()
}

// wrap requires exactly one placeholder match; the editor itself treats no
// match as a no-op.
func wrap(layout *source.LayoutFile, openTag, closeTag string) error {
	ok, err := layout.WrapChildren(openTag, closeTag)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: no {children} placeholder to wrap with %s: %w", layout.Path(), openTag, source.ErrAnchorNotFound)
	}
	return nil
}

// appendLine appends line to the file at path, starting a new line first
// when the file does not end with one.
func appendLine(path, line string) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	prefix := ""
	if len(data) > 0 && data[len(data)-1] != '\n' {
		prefix = "\n"
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.WriteString(prefix + line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return f.Close()
}
