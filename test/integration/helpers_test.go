//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir string // MOUNTSTACK_HOME
	BinDir  string // holds the fake package manager, first on PATH
	WorkDir string // parent of the generated workspace
}

// setupTestEnv creates isolated temp directories and puts a fake pnpm first
// on PATH. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	env := &testEnv{
		HomeDir: t.TempDir(),
		BinDir:  t.TempDir(),
		WorkDir: t.TempDir(),
	}
	t.Setenv("MOUNTSTACK_HOME", env.HomeDir)
	t.Setenv("PATH", env.BinDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	writeExecutable(t, filepath.Join(env.BinDir, "pnpm"), fakePnpm)
	return env
}

// fakePnpm mimics "pnpm dlx create-turbo" and "pnpm dlx create-next-app":
// it writes the files the real generators leave behind and chatters on
// both output streams. FAKE_PNPM_FAIL makes the matching generator exit 3.
const fakePnpm = `#!/bin/sh
set -e
generator="$2"
dest="$3"
case "$generator" in
  ${FAKE_PNPM_FAIL:-never}*)
    echo "generator $generator failed" >&2
    exit 3
    ;;
  create-turbo@*)
    echo "Creating a new Turborepo in $dest"
    echo ""
    echo "npm warn deprecated something" >&2
    mkdir -p "$dest/apps/docs" "$dest/apps/web" "$dest/packages/ui" "$dest/packages/eslint-config" "$dest/packages/typescript-config" "$dest/.vscode"
    echo '{}' > "$dest/.vscode/settings.json"
    echo '{}' > "$dest/packages/typescript-config/base.json"
    cat > "$dest/package.json" <<'EOF'
{
  "name": "fake-turbo",
  "private": true,
  "scripts": {
    "build": "turbo run build",
    "lint": "turbo run lint",
    "format": "prettier --write \"**/*.{ts,tsx,md}\""
  },
  "devDependencies": {
    "prettier": "^3.6.2",
    "turbo": "^2.5.8",
    "typescript": "5.9.2"
  },
  "packageManager": "pnpm@9.0.0"
}
EOF
    cat > "$dest/turbo.json" <<'EOF'
{
  "$schema": "https://turborepo.com/schema.json",
  "tasks": {
    "build": { "dependsOn": ["^build"] },
    "lint": { "dependsOn": ["^lint"] }
  }
}
EOF
    ;;
  create-next-app@*)
    echo "Creating a new Next.js app in $dest."
    mkdir -p "$dest/src/app"
    cat > "$dest/package.json" <<'EOF'
{
  "name": "web",
  "version": "0.1.0",
  "private": true,
  "scripts": {
    "dev": "next dev --turbopack",
    "build": "next build --turbopack"
  },
  "dependencies": {
    "next": "16.0.1",
    "react": "19.2.0",
    "react-dom": "19.2.0"
  }
}
EOF
    cat > "$dest/next.config.ts" <<'EOF'
import type { NextConfig } from "next";

const nextConfig: NextConfig = {
  /* config options here */
};

export default nextConfig;
EOF
    printf '/node_modules\n.env*\n' > "$dest/.gitignore"
    ;;
  *)
    echo "unexpected: $*" >&2
    exit 64
    ;;
esac
`

func writeExecutable(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("writing %s: %v", path, err)
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

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected file %s to exist: %v", path, err)
		return
	}
	if info.IsDir() {
		t.Errorf("expected %s to be a file, got directory", path)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected %s to not exist", path)
	}
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected to contain %q, got:\n%s", substr, s)
	}
}
