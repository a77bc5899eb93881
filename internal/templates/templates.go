// Package templates holds the file trees copied into a generated workspace.
// Templates are embedded in the binary and addressed by slash-separated
// names relative to the files/ directory, e.g. "next-app/layout.tsx".
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

//go:embed all:files
var content embed.FS

// excludePatterns are skipped when a tree is copied.
var excludePatterns = []string{
	"**/.DS_Store",
	"**/node_modules",
	"**/node_modules/**",
	"**/.git",
	"**/.git/**",
}

// FS returns the template tree rooted at files/.
func FS() fs.FS {
	sub, err := fs.Sub(content, "files")
	if err != nil {
		panic(err)
	}
	return sub
}

// ReadFile returns the contents of a single template file.
func ReadFile(name string) (string, error) {
	data, err := fs.ReadFile(FS(), path.Clean(name))
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", name, err)
	}
	return string(data), nil
}

// CopyFile writes the template file name to dst, replacing dst if it exists.
// Parent directories of dst are created as needed.
func CopyFile(name, dst string) error {
	name = path.Clean(name)
	info, err := fs.Stat(FS(), name)
	if err != nil {
		return fmt.Errorf("template %s: %w", name, err)
	}
	if info.IsDir() {
		return fmt.Errorf("template %s is a directory", name)
	}
	if err := writeFile(name, dst); err != nil {
		return fmt.Errorf("copying %s to %s: %w", name, dst, err)
	}
	return nil
}

// CopyTree recursively copies the template directory name into dst. Existing
// directories are merged and existing files overwritten. Entries matching the
// exclusion globs (node_modules, .git, .DS_Store) are skipped.
func CopyTree(name, dst string) error {
	root := path.Clean(name)
	info, err := fs.Stat(FS(), root)
	if err != nil {
		return fmt.Errorf("template %s: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("template %s is not a directory", name)
	}

	err = fs.WalkDir(FS(), root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		if rel != "" && shouldExclude(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, filepath.FromSlash(rel))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return writeFile(p, target)
	})
	if err != nil {
		return fmt.Errorf("copying %s to %s: %w", name, dst, err)
	}
	return nil
}

func writeFile(name, dst string) error {
	data, err := fs.ReadFile(FS(), name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// shouldExclude reports whether the slash-separated relative path matches
// one of the exclusion globs.
func shouldExclude(rel string) bool {
	for _, pattern := range excludePatterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
