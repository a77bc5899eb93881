package installer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/joho/godotenv"

	"github.com/mountstack/mountstack/internal/manifest"
	"github.com/mountstack/mountstack/internal/process"
	"github.com/mountstack/mountstack/internal/source"
	"github.com/mountstack/mountstack/internal/versions"
)

const generatedNextConfig = `import type { NextConfig } from "next";

const nextConfig: NextConfig = {
  /* config options here */
};

export default nextConfig;
`

const generatedPackageJSON = `{
  "name": "%s",
  "version": "0.1.0",
  "private": true,
  "scripts": {
    "dev": "next dev --turbopack",
    "build": "next build --turbopack",
    "start": "next start"
  },
  "dependencies": {
    "next": "16.0.1",
    "react": "19.2.0",
    "react-dom": "19.2.0"
  }
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected to contain %q, got:\n%s", substr, s)
	}
}

// seedNextApp writes what create-next-app leaves in dir.
func seedNextApp(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "package.json"), strings.Replace(generatedPackageJSON, "%s", filepath.Base(dir), 1))
	writeFile(t, filepath.Join(dir, "next.config.ts"), generatedNextConfig)
	writeFile(t, filepath.Join(dir, ".gitignore"), "/node_modules\n.env*\n")
	writeFile(t, filepath.Join(dir, "src", "app", "page.tsx"), "export default function Home() {\n  return <main />;\n}\n")
}

// fakeGenerator stands in for "pnpm dlx create-next-app" and records the
// invocation.
func fakeGenerator(t *testing.T, calls *[][]string) Runner {
	return func(_ context.Context, name string, args []string, opts process.Options) error {
		*calls = append(*calls, append([]string{name}, args...))
		if opts.OnStdout != nil {
			opts.OnStdout("Creating a new Next.js app")
		}
		seedNextApp(t, args[2])
		return nil
	}
}

func newWorkspace(t *testing.T) *Monorepo {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{
  "name": "my-app",
  "private": true,
  "scripts": {
    "build": "turbo run build"
  }
}
`)
	return NewMonorepo(root, "my-app")
}

func createApp(t *testing.T, m *Monorepo, name string) *NextApp {
	t.Helper()
	var calls [][]string
	app, err := CreateNextApp(context.Background(), m, NextAppOptions{Name: name, Run: fakeGenerator(t, &calls)})
	if err != nil {
		t.Fatalf("CreateNextApp: %v", err)
	}
	return app
}

func TestCreateNextAppRunsGenerator(t *testing.T) {
	m := newWorkspace(t)
	var calls [][]string
	var output []string
	app, err := CreateNextApp(context.Background(), m, NextAppOptions{
		Name:   "web",
		Output: func(line string) { output = append(output, line) },
		Run:    fakeGenerator(t, &calls),
	})
	if err != nil {
		t.Fatalf("CreateNextApp: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("generator ran %d times", len(calls))
	}
	call := calls[0]
	if call[0] != "pnpm" || call[1] != "dlx" || call[2] != "create-next-app@"+versions.Get("create-next-app") {
		t.Errorf("unexpected invocation: %v", call)
	}
	if call[3] != filepath.Join(m.RootPath(), "apps", "web") {
		t.Errorf("destination = %s", call[3])
	}
	for _, flag := range []string{"--ts", "--app", "--src-dir", "--skip-install", "--disable-git", "--no-tailwind", "--import-alias"} {
		if !slices.Contains(call, flag) {
			t.Errorf("missing flag %s in %v", flag, call)
		}
	}
	if len(output) != 1 {
		t.Errorf("generator output not forwarded: %v", output)
	}

	assertContains(t, readFile(t, filepath.Join(app.Path(), "src", "app", "layout.tsx")), "<body>{children}</body>")
	assertContains(t, readFile(t, filepath.Join(app.Path(), "src", "instrumentation.ts")), "export async function register()")
	if got := readFile(t, filepath.Join(app.Path(), ".gitignore")); !strings.HasSuffix(got, ".env*\n!.env.*.sample\n") {
		t.Errorf(".gitignore = %q", got)
	}

	pkg, err := manifest.Parse(filepath.Join(app.Path(), "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	if pkg.DevDependencies["@repo/typescript-config"] != "workspace:*" {
		t.Errorf("devDependencies = %v", pkg.DevDependencies)
	}
	if pkg.DevDependencies["typescript"] != versions.Get("typescript") {
		t.Errorf("typescript = %q", pkg.DevDependencies["typescript"])
	}
}

func TestCreateNextAppGeneratorFailure(t *testing.T) {
	m := newWorkspace(t)
	failing := func(context.Context, string, []string, process.Options) error {
		return &process.ExitError{Name: "pnpm", Code: 1}
	}
	_, err := CreateNextApp(context.Background(), m, NextAppOptions{Name: "web", Run: failing})
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *process.ExitError", err)
	}
	if _, err := CreateNextApp(context.Background(), m, NextAppOptions{}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestNextAppAllFeatures(t *testing.T) {
	m := newWorkspace(t)
	app := createApp(t, m, "site")

	steps := []struct {
		feature Feature
		install func() error
	}{
		{FeatureTailwind, app.AddTailwind},
		{FeatureDocker, app.AddDocker},
		{FeatureReactQuery, app.AddReactQuery},
		{FeatureI18n, app.AddI18n},
		{FeatureLogger, app.AddLogger},
		{FeatureEnvFiles, app.AddEnvFileManagement},
	}
	for _, s := range steps {
		if err := s.install(); err != nil {
			t.Fatalf("installing %s: %v", s.feature, err)
		}
		if !app.Installed().Has(s.feature) {
			t.Errorf("%s not recorded as installed", s.feature)
		}
	}

	pkg, err := manifest.Parse(filepath.Join(app.Path(), "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	for _, dep := range []string{"@tanstack/react-query", "next-intl", "@logtape/logtape", "@logtape/pretty", "next"} {
		if !pkg.HasDependency(dep) {
			t.Errorf("missing dependency %s", dep)
		}
	}
	for _, dep := range []string{"tailwindcss", "postcss", "@tailwindcss/postcss", "@tanstack/react-query-devtools", "zod"} {
		if _, ok := pkg.DevDependencies[dep]; !ok {
			t.Errorf("missing dev dependency %s", dep)
		}
	}

	dockerfile := readFile(t, filepath.Join(app.Path(), "Dockerfile"))
	assertContains(t, dockerfile, "ARG APP_NAME=site")

	config := readFile(t, filepath.Join(app.Path(), "next.config.ts"))
	assertContains(t, config, `import path from "node:path";`)
	assertContains(t, config, `output: "standalone",`)
	assertContains(t, config, "const withNextIntl = createNextIntlPlugin();")
	assertContains(t, config, "export default withNextIntl(nextConfig);")
	if strings.Contains(config, "export default nextConfig") {
		t.Errorf("original default export kept:\n%s", config)
	}

	layout := readFile(t, filepath.Join(app.Path(), "src", "app", "layout.tsx"))
	assertContains(t, layout, `import Providers from "./providers";`)
	assertContains(t, layout, "const env = getEnv();")
	assertContains(t, layout, "<body><Providers><NextIntlClientProvider><ClientEnvContextProvider clientEnv={env.client}>{children}</ClientEnvContextProvider></NextIntlClientProvider></Providers></body>")

	instrumentation := readFile(t, filepath.Join(app.Path(), "src", "instrumentation.ts"))
	assertContains(t, instrumentation, `const logger = getLogger(["next", "instrumentation"]);`)
	started := strings.Index(instrumentation, `logger.info("Starting instrumentation");`)
	checked := strings.Index(instrumentation, "printEnv();")
	if started < 0 || checked < started {
		t.Errorf("register body out of order:\n%s", instrumentation)
	}

	for _, name := range []string{
		"postcss.config.mjs",
		"messages/en.json",
		"src/i18n/request.ts",
		"src/lib/query-client.ts",
		"src/lib/logger.ts",
		"src/app/providers.tsx",
		"src/env/env.ts",
		"src/env/client-env-context.tsx",
		".env.local.sample",
	} {
		if _, err := os.Stat(filepath.Join(app.Path(), filepath.FromSlash(name))); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	env, err := godotenv.Read(filepath.Join(app.Path(), ".env.local"))
	if err != nil {
		t.Fatalf("reading .env.local: %v", err)
	}
	if env["API_KEY"] != "change-me" || env["PUBLIC_VAR"] == "" {
		t.Errorf(".env.local = %v", env)
	}

	if got, want := readFile(t, m.JustfilePath()), JustfileHeader+DockerRecipes("site"); got != want {
		t.Errorf("justfile = %q, want %q", got, want)
	}
}

func TestNextAppDoubleInstall(t *testing.T) {
	m := newWorkspace(t)
	app := createApp(t, m, "web")

	if err := app.AddTailwind(); err != nil {
		t.Fatalf("first AddTailwind: %v", err)
	}
	err := app.AddTailwind()
	if !errors.Is(err, ErrAlreadyInstalled) {
		t.Fatalf("second AddTailwind = %v, want ErrAlreadyInstalled", err)
	}
	if err.Error() != "Tailwind is already installed" {
		t.Errorf("error text = %q", err.Error())
	}

	if _, err := os.Stat(filepath.Join(app.Path(), "postcss.config.mjs")); err != nil {
		t.Errorf("first install undone: %v", err)
	}
	assertContains(t, readFile(t, filepath.Join(app.Path(), "src", "app", "globals.css")), `@import "tailwindcss";`)
}

func TestNextAppFailedInstallCanBeRetried(t *testing.T) {
	m := newWorkspace(t)
	app := createApp(t, m, "web")
	instrumentation := filepath.Join(app.Path(), "src", "instrumentation.ts")
	writeFile(t, instrumentation, "export const runtime = \"nodejs\";\n")

	err := app.AddLogger()
	if !errors.Is(err, source.ErrAnchorNotFound) {
		t.Fatalf("AddLogger = %v, want ErrAnchorNotFound", err)
	}
	if app.Installed().Has(FeatureLogger) {
		t.Error("failed install recorded as installed")
	}

	writeFile(t, instrumentation, "export function register() {}\n")
	if err := app.AddLogger(); err != nil {
		t.Fatalf("retry AddLogger: %v", err)
	}
}

func TestNextAppEnvRetryEditsInstrumentationOnce(t *testing.T) {
	m := newWorkspace(t)
	app := createApp(t, m, "web")
	instrumentation := filepath.Join(app.Path(), "src", "instrumentation.ts")
	layoutPath := filepath.Join(app.Path(), "src", "app", "layout.tsx")
	layout := readFile(t, layoutPath)
	before := readFile(t, instrumentation)

	writeFile(t, layoutPath, "export default function RootLayout() {\n  return <html />;\n}\n")
	if err := app.AddEnvFileManagement(); !errors.Is(err, source.ErrAnchorNotFound) {
		t.Fatalf("AddEnvFileManagement = %v, want ErrAnchorNotFound", err)
	}
	if got := readFile(t, instrumentation); got != before {
		t.Errorf("instrumentation saved by a failed install:\n%s", got)
	}

	writeFile(t, layoutPath, layout)
	if err := app.AddEnvFileManagement(); err != nil {
		t.Fatalf("retry AddEnvFileManagement: %v", err)
	}
	got := readFile(t, instrumentation)
	if n := strings.Count(got, "printEnv();"); n != 1 {
		t.Errorf("printEnv called %d times, want 1:\n%s", n, got)
	}
	if n := strings.Count(got, `from "@/env/env"`); n != 1 {
		t.Errorf("env module imported %d times, want 1:\n%s", n, got)
	}
}

func TestNextAppWrapRequiresPlaceholder(t *testing.T) {
	m := newWorkspace(t)
	app := createApp(t, m, "web")
	writeFile(t, filepath.Join(app.Path(), "src", "app", "layout.tsx"),
		"export default function RootLayout() {\n  return <html />;\n}\n")

	if err := app.AddReactQuery(); !errors.Is(err, source.ErrAnchorNotFound) {
		t.Fatalf("AddReactQuery = %v, want ErrAnchorNotFound", err)
	}
}

func TestJustfileHeaderAndBlocks(t *testing.T) {
	m := newWorkspace(t)
	first := createApp(t, m, "web")
	second := createApp(t, m, "admin")

	if _, err := os.Stat(m.JustfilePath()); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("justfile before install: %v", err)
	}
	if err := first.AddDocker(); err != nil {
		t.Fatalf("AddDocker web: %v", err)
	}
	if err := second.AddDocker(); err != nil {
		t.Fatalf("AddDocker admin: %v", err)
	}

	want := JustfileHeader + DockerRecipes("web") + DockerRecipes("admin")
	if got := readFile(t, m.JustfilePath()); got != want {
		t.Errorf("justfile:\n%s\nwant:\n%s", got, want)
	}
}

func TestCreateJustfileKeepsExisting(t *testing.T) {
	m := newWorkspace(t)
	writeFile(t, m.JustfilePath(), "default:\n\techo hi\n")
	if err := m.CreateJustfile(); err != nil {
		t.Fatalf("CreateJustfile: %v", err)
	}
	if got := readFile(t, m.JustfilePath()); got != "default:\n\techo hi\n" {
		t.Errorf("justfile overwritten: %q", got)
	}
}

func TestDockerRecipes(t *testing.T) {
	want := "docker_web_name := web\n\n" +
		"@build_web version:\n" +
		"\tdocker build -t {{docker_web_name}}:{{version}} -f apps/web/Dockerfile .\n\n" +
		"@run_web version:\n" +
		"\tdocker run -p 3000:3000 {{docker_web_name}}:{{version}}\n\n"
	if got := DockerRecipes("web"); got != want {
		t.Errorf("DockerRecipes:\n%q\nwant:\n%q", got, want)
	}
}

func TestCreateDatabase(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
	}{
		{"", "db:generate"},
		{"api", "api:db:generate"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := newWorkspace(t)
			pkg, err := CreateDatabase(m, DatabaseOptions{ScriptPrefix: tt.prefix})
			if err != nil {
				t.Fatalf("CreateDatabase: %v", err)
			}
			if pkg.RelPath() != "packages/database" {
				t.Errorf("RelPath = %s", pkg.RelPath())
			}

			db, err := manifest.Parse(filepath.Join(pkg.Path(), "package.json"))
			if err != nil {
				t.Fatal(err)
			}
			if db.Name != "@repo/database" {
				t.Errorf("name = %s", db.Name)
			}
			if !db.HasDependency("drizzle-orm") {
				t.Error("missing drizzle-orm")
			}
			for _, dep := range []string{"typescript", "dotenv", "prisma", "prisma-generator-drizzle", "@repo/typescript-config"} {
				if _, ok := db.DevDependencies[dep]; !ok {
					t.Errorf("missing dev dependency %s", dep)
				}
			}

			sample := readFile(t, filepath.Join(pkg.Path(), ".env.sample"))
			if strings.Contains(sample, AppNamePlaceholder) {
				t.Errorf("placeholder left in .env.sample:\n%s", sample)
			}
			env, err := godotenv.Read(filepath.Join(pkg.Path(), ".env"))
			if err != nil {
				t.Fatalf("reading .env: %v", err)
			}
			if env["PG_DATABASE"] != "my-app" || env["PG_PORT"] != "5432" {
				t.Errorf(".env = %v", env)
			}

			root, err := manifest.Parse(m.RootPackageJSONPath())
			if err != nil {
				t.Fatal(err)
			}
			if got := root.Scripts[tt.key]; got != "pnpm --dir packages/database exec prisma generate" {
				t.Errorf("scripts[%s] = %q", tt.key, got)
			}
			migrate := strings.Replace(tt.key, "generate", "migrate", 1)
			if got := root.Scripts[migrate]; got != "pnpm --dir packages/database exec prisma migrate" {
				t.Errorf("scripts[%s] = %q", migrate, got)
			}
			if root.Scripts["build"] != "turbo run build" {
				t.Error("existing root script lost")
			}
		})
	}
}

func TestCreatePackageUnknownKind(t *testing.T) {
	m := newWorkspace(t)
	if _, err := CreatePackage(m, PackageOptions{Name: "x", SubPath: "x", Kind: "LIBRARY"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestFeatureString(t *testing.T) {
	tests := []struct {
		f    Feature
		want string
	}{
		{FeatureDocker, "Docker"},
		{FeatureEnvFiles, "Env file management"},
		{FeatureTailwind | FeatureI18n, "Tailwind|i18n"},
		{0, "Feature(0)"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("Feature(%d).String() = %q, want %q", uint8(tt.f), got, tt.want)
		}
	}
}

func TestAppendLineAddsMissingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	writeFile(t, path, "/node_modules")
	if err := appendLine(path, "!.env.*.sample"); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path); got != "/node_modules\n!.env.*.sample\n" {
		t.Errorf("got %q", got)
	}
}
