package installer

import (
	"fmt"
	"path/filepath"

	"github.com/mountstack/mountstack/internal/manifest"
	"github.com/mountstack/mountstack/internal/templates"
	"github.com/mountstack/mountstack/internal/versions"
)

// PackageKind selects the template a workspace package starts from.
type PackageKind string

const (
	// PackageWithBuild is a TypeScript library compiled with tsc.
	PackageWithBuild PackageKind = "PACKAGE_WITH_BUILD"
)

var packageTemplates = map[PackageKind]string{
	PackageWithBuild: "turbo-package-template/package-with-build",
}

// PackageOptions configures CreatePackage.
type PackageOptions struct {
	// Name is the package name without the @repo/ scope.
	Name string
	// SubPath is the directory under packages/.
	SubPath string
	Kind    PackageKind
}

// Package is a shared package inside the workspace.
type Package struct {
	name     string
	path     string
	relPath  string
	manifest *manifest.Package
}

// CreatePackage copies the template for opts.Kind to packages/<SubPath> and
// names it @repo/<Name>.
func CreatePackage(m *Monorepo, opts PackageOptions) (*Package, error) {
	tmpl, ok := packageTemplates[opts.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown package kind %q", opts.Kind)
	}

	p := newPackage(m, opts.Name, opts.SubPath)
	if err := templates.CopyTree(tmpl, p.path); err != nil {
		return nil, err
	}
	if err := p.manifest.SetName(p.name); err != nil {
		return nil, fmt.Errorf("naming package: %w", err)
	}
	return p, nil
}

func newPackage(m *Monorepo, name, subPath string) *Package {
	path := filepath.Join(m.PackagesPath(), filepath.FromSlash(subPath))
	rel, err := filepath.Rel(m.RootPath(), path)
	if err != nil {
		rel = path
	}
	return &Package{
		name:     "@repo/" + name,
		path:     path,
		relPath:  filepath.ToSlash(rel),
		manifest: manifest.New(filepath.Join(path, "package.json")),
	}
}

// Name returns the scoped package name.
func (p *Package) Name() string { return p.name }

// Path returns the package directory.
func (p *Package) Path() string { return p.path }

// RelPath returns the package directory relative to the workspace root,
// slash separated.
func (p *Package) RelPath() string { return p.relPath }

// AddDependencies adds each name at its pinned version.
func (p *Package) AddDependencies(names ...string) error {
	return addPinned(p.manifest.AddDependency, names)
}

// AddDevDependencies adds each name at its pinned version as a dev
// dependency.
func (p *Package) AddDevDependencies(names ...string) error {
	return addPinned(p.manifest.AddDevDependency, names)
}

func addPinned(add func(name, version string) error, names []string) error {
	for _, name := range names {
		version, ok := versions.Lookup(name)
		if !ok {
			return fmt.Errorf("no pinned version for %q", name)
		}
		if err := add(name, version); err != nil {
			return err
		}
	}
	return nil
}
