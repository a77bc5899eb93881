//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mountstack/mountstack/internal/installer"
	"github.com/mountstack/mountstack/internal/pipeline"
	"github.com/mountstack/mountstack/internal/process"
	"github.com/mountstack/mountstack/internal/scaffold"
)

// TestFullScaffold runs every step against the fake package manager through
// the real process runner.
func TestFullScaffold(t *testing.T) {
	env := setupTestEnv(t)
	root := filepath.Join(env.WorkDir, "my-app")

	var out bytes.Buffer
	tasks := scaffold.Plan(scaffold.Options{Path: root, AppName: "my-app"})
	if err := pipeline.Run(context.Background(), tasks, pipeline.WithConsole(pipeline.NewConsole(&out))); err != nil {
		t.Fatalf("pipeline: %v\n%s", err, out.String())
	}

	console := out.String()
	assertContains(t, console, "Creating a new Turborepo in "+root)
	assertContains(t, console, "npm warn deprecated something")
	assertContains(t, console, "Database package created")

	web := filepath.Join(root, "apps", "web")
	for _, rel := range []string{
		"biome.json",
		".editorconfig",
		".dockerignore",
		".vscode/settings.json",
		"justfile",
		"packages/typescript-config/nextjs.json",
		"packages/database/.env",
		"apps/web/Dockerfile",
		"apps/web/.env.local",
		"apps/web/src/env/env.ts",
		"apps/web/src/lib/logger.ts",
	} {
		assertFileExists(t, filepath.Join(root, filepath.FromSlash(rel)))
	}
	assertNotExists(t, filepath.Join(root, "apps", "docs"))
	assertNotExists(t, filepath.Join(root, "packages", "ui"))

	justfile := readFile(t, filepath.Join(root, "justfile"))
	if justfile != installer.JustfileHeader+installer.DockerRecipes("web") {
		t.Errorf("justfile:\n%s", justfile)
	}

	layout := readFile(t, filepath.Join(web, "src", "app", "layout.tsx"))
	assertContains(t, layout, "<Providers><NextIntlClientProvider><ClientEnvContextProvider clientEnv={env.client}>{children}</ClientEnvContextProvider></NextIntlClientProvider></Providers>")

	rootManifest := readFile(t, filepath.Join(root, "package.json"))
	assertContains(t, rootManifest, `"db:generate": "pnpm --dir packages/database exec prisma generate"`)
	assertContains(t, rootManifest, `"lint": "biome ci"`)
	if strings.Contains(rootManifest, "prettier") {
		t.Errorf("prettier left in root package.json:\n%s", rootManifest)
	}
}

func TestScaffoldStopsOnGeneratorExitCode(t *testing.T) {
	env := setupTestEnv(t)
	t.Setenv("FAKE_PNPM_FAIL", "create-next-app@")
	root := filepath.Join(env.WorkDir, "my-app")

	var out bytes.Buffer
	tasks := scaffold.Plan(scaffold.Options{Path: root, AppName: "my-app"})
	err := pipeline.Run(context.Background(), tasks, pipeline.WithConsole(pipeline.NewConsole(&out)))

	var taskErr *pipeline.TaskError
	if !errors.As(err, &taskErr) {
		t.Fatalf("pipeline error = %v, want *pipeline.TaskError", err)
	}
	if taskErr.Title != "Creating Next.js app..." {
		t.Errorf("failed task = %q", taskErr.Title)
	}
	assertContains(t, taskErr.Message, (&process.ExitError{Name: "pnpm", Code: 3}).Error())
	assertContains(t, out.String(), "generator create-next-app@")

	assertFileExists(t, filepath.Join(root, "biome.json"))
	assertNotExists(t, filepath.Join(root, "packages", "database"))
}
