package installer

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/mountstack/mountstack/internal/manifest"
	"github.com/mountstack/mountstack/internal/source"
	"github.com/mountstack/mountstack/internal/templates"
)

// AppNamePlaceholder is replaced with the workspace name in the database
// env sample.
const AppNamePlaceholder = "{{app-name-placeholder}}"

// DatabaseOptions configures CreateDatabase.
type DatabaseOptions struct {
	// ScriptPrefix namespaces the root scripts as "<prefix>:db:generate".
	// Empty means no prefix.
	ScriptPrefix string
}

// CreateDatabase adds packages/database: a Prisma schema generating Drizzle
// models, its env files and the root db:generate / db:migrate scripts.
func CreateDatabase(m *Monorepo, opts DatabaseOptions) (*Package, error) {
	pkg, err := CreatePackage(m, PackageOptions{
		Name:    "database",
		SubPath: "database",
		Kind:    PackageWithBuild,
	})
	if err != nil {
		return nil, err
	}

	if err := pkg.AddDevDependencies("typescript", "dotenv", "prisma", "prisma-generator-drizzle"); err != nil {
		return nil, err
	}
	if err := pkg.AddDependencies("drizzle-orm"); err != nil {
		return nil, err
	}

	if err := templates.CopyTree("database/prisma-drizzle", pkg.Path()); err != nil {
		return nil, err
	}

	sample := filepath.Join(pkg.Path(), ".env.sample")
	if _, err := source.ReplaceText(sample, AppNamePlaceholder, m.AppName()); err != nil {
		return nil, err
	}
	if err := materializeEnv(sample, filepath.Join(pkg.Path(), ".env")); err != nil {
		return nil, err
	}

	prefix := ""
	if opts.ScriptPrefix != "" {
		prefix = opts.ScriptPrefix + ":"
	}
	root := manifest.New(m.RootPackageJSONPath())
	scripts := []struct{ name, command string }{
		{prefix + "db:generate", fmt.Sprintf("pnpm --dir %s exec prisma generate", pkg.RelPath())},
		{prefix + "db:migrate", fmt.Sprintf("pnpm --dir %s exec prisma migrate", pkg.RelPath())},
	}
	for _, s := range scripts {
		if err := root.SetScript(s.name, s.command); err != nil {
			return nil, fmt.Errorf("adding root script %s: %w", s.name, err)
		}
	}
	return pkg, nil
}

// materializeEnv parses the sample env file and writes its variables to dst.
// A sample that does not parse is rejected before anything is written.
func materializeEnv(sample, dst string) error {
	env, err := godotenv.Read(sample)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", sample, err)
	}
	if err := godotenv.Write(env, dst); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
