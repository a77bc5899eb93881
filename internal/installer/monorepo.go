package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mountstack/mountstack/internal/logging"
)

// JustfileHeader is the first line of a freshly created justfile.
const JustfileHeader = "set positional-arguments\n"

// Monorepo describes the workspace root produced by create-turbo.
type Monorepo struct {
	root    string
	appName string
}

// NewMonorepo returns the workspace rooted at root. appName is the workspace
// name derived from the destination directory.
func NewMonorepo(root, appName string) *Monorepo {
	return &Monorepo{root: filepath.Clean(root), appName: appName}
}

// RootPath returns the absolute workspace root.
func (m *Monorepo) RootPath() string { return m.root }

// AppName returns the workspace name.
func (m *Monorepo) AppName() string { return m.appName }

// AppsPath returns the directory holding applications.
func (m *Monorepo) AppsPath() string { return filepath.Join(m.root, "apps") }

// PackagesPath returns the directory holding shared packages.
func (m *Monorepo) PackagesPath() string { return filepath.Join(m.root, "packages") }

// RootPackageJSONPath returns the root package.json.
func (m *Monorepo) RootPackageJSONPath() string { return filepath.Join(m.root, "package.json") }

// TurboJSONPath returns the root turbo.json.
func (m *Monorepo) TurboJSONPath() string { return filepath.Join(m.root, "turbo.json") }

// JustfilePath returns the workspace recipe file.
func (m *Monorepo) JustfilePath() string { return filepath.Join(m.root, "justfile") }

// CreateJustfile writes the recipe file with its header line. An existing
// file is left untouched.
func (m *Monorepo) CreateJustfile() error {
	f, err := os.OpenFile(m.JustfilePath(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating justfile: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(JustfileHeader); err != nil {
		return fmt.Errorf("writing justfile: %w", err)
	}
	logging.Debug().Str("path", m.JustfilePath()).Msg("justfile created")
	return nil
}

// AppendToJustfile appends content to the recipe file.
func (m *Monorepo) AppendToJustfile(content string) error {
	f, err := os.OpenFile(m.JustfilePath(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening justfile: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("appending to justfile: %w", err)
	}
	return f.Close()
}
