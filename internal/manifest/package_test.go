package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const rootManifest = `{
  "name": "my-app",
  "private": true,
  "scripts": {
    "build": "turbo run build",
    "format": "prettier --write \"**/*.{ts,tsx,md}\"",
    "lint": "turbo run lint"
  },
  "devDependencies": {
    "prettier": "^3.6.2",
    "turbo": "^2.5.8"
  },
  "packageManager": "pnpm@9.0.0"
}
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "package.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

func mustParse(t *testing.T, path string) *Manifest {
	t.Helper()
	m, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse(%s) error: %v", path, err)
	}
	return m
}

func TestPackage_AddDependencies(t *testing.T) {
	path := writeManifest(t, rootManifest)
	pkg := New(path)

	if err := pkg.AddDevDependency("typescript", "5.9.3"); err != nil {
		t.Fatalf("AddDevDependency() error: %v", err)
	}
	if err := pkg.AddDependency("zod", "^4.1.12"); err != nil {
		t.Fatalf("AddDependency() error: %v", err)
	}
	if err := pkg.AddDevDependency("@repo/typescript-config", "workspace:*"); err != nil {
		t.Fatalf("AddDevDependency(workspace) error: %v", err)
	}

	m := mustParse(t, path)
	if m.DevDependencies["typescript"] != "5.9.3" {
		t.Errorf("typescript = %q", m.DevDependencies["typescript"])
	}
	if m.Dependencies["zod"] != "^4.1.12" {
		t.Errorf("zod = %q", m.Dependencies["zod"])
	}
	if !m.HasDependency("@repo/typescript-config") {
		t.Error("workspace dependency missing")
	}
	if m.DevDependencies["turbo"] != "^2.5.8" {
		t.Errorf("existing dev dependency lost: %v", m.DevDependencies)
	}
}

func TestPackage_RejectsBadVersion(t *testing.T) {
	path := writeManifest(t, rootManifest)
	before, _ := os.ReadFile(path)

	if err := New(path).AddDependency("zod", "not a version"); err == nil {
		t.Fatal("expected error for an invalid version specifier")
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("manifest should be untouched after a rejected edit")
	}
}

func TestPackage_RemoveEntries(t *testing.T) {
	path := writeManifest(t, rootManifest)
	pkg := New(path)

	if err := pkg.RemoveDevDependency("prettier"); err != nil {
		t.Fatalf("RemoveDevDependency() error: %v", err)
	}
	if err := pkg.RemoveScript("format"); err != nil {
		t.Fatalf("RemoveScript(format) error: %v", err)
	}
	if err := pkg.RemoveScript("lint"); err != nil {
		t.Fatalf("RemoveScript(lint) error: %v", err)
	}
	// Removing something that is not there is fine.
	if err := pkg.RemoveScript("missing"); err != nil {
		t.Fatalf("RemoveScript(missing) error: %v", err)
	}
	if err := pkg.RemoveDevDependency("missing"); err != nil {
		t.Fatalf("RemoveDevDependency(missing) error: %v", err)
	}

	m := mustParse(t, path)
	if m.HasDependency("prettier") {
		t.Error("prettier still present")
	}
	if _, ok := m.Scripts["format"]; ok {
		t.Error("format script still present")
	}
	if _, ok := m.Scripts["lint"]; ok {
		t.Error("lint script still present")
	}
	if m.Scripts["build"] != "turbo run build" {
		t.Errorf("build script changed: %q", m.Scripts["build"])
	}
}

func TestPackage_SetScriptAndName(t *testing.T) {
	path := writeManifest(t, `{"name": "template"}`)
	pkg := New(path)

	if err := pkg.SetName("@repo/database"); err != nil {
		t.Fatalf("SetName() error: %v", err)
	}
	if err := pkg.SetScript("db:generate", "pnpm --dir packages/database exec prisma generate"); err != nil {
		t.Fatalf("SetScript() error: %v", err)
	}
	if err := pkg.SetScript("empty", "  "); err == nil {
		t.Error("expected error for an empty script command")
	}

	m := mustParse(t, path)
	if m.Name != "@repo/database" {
		t.Errorf("Name = %q", m.Name)
	}
	if m.Scripts["db:generate"] != "pnpm --dir packages/database exec prisma generate" {
		t.Errorf("db:generate = %q", m.Scripts["db:generate"])
	}
}

func TestPackage_SchemaGuardsWrites(t *testing.T) {
	path := writeManifest(t, rootManifest)

	err := New(path).SetName("Not A Valid Name")
	var invalid *InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("SetName() error = %v, want *InvalidError", err)
	}
	if len(invalid.Issues) == 0 {
		t.Error("expected at least one issue")
	}
	if !strings.Contains(err.Error(), "/name") {
		t.Errorf("error should point at /name, got %q", err.Error())
	}

	if m := mustParse(t, path); m.Name != "my-app" {
		t.Errorf("name changed to %q despite validation failure", m.Name)
	}
}

func TestPackage_SectionWithWrongType(t *testing.T) {
	path := writeManifest(t, `{"name": "x", "scripts": "oops"}`)

	if err := New(path).SetScript("dev", "next dev"); err == nil {
		t.Fatal("expected error when scripts is not an object")
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for a missing file")
	}
	path := writeManifest(t, `{"name": `)
	if _, err := Parse(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
