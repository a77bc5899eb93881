package manifest

import (
	"fmt"
	"strings"

	"github.com/mountstack/mountstack/internal/jsonfile"
	"github.com/mountstack/mountstack/internal/versions"
)

// Package edits one package.json on disk.
type Package struct {
	Path string
}

// New returns a Package for the manifest at path.
func New(path string) *Package {
	return &Package{Path: path}
}

// Update runs fn against the parsed manifest and writes it back when the
// result still satisfies the package.json schema.
func (p *Package) Update(fn func(obj *jsonfile.Object) error) error {
	return jsonfile.Update(p.Path, func(obj *jsonfile.Object) error {
		if err := fn(obj); err != nil {
			return err
		}
		return validateObject(obj)
	})
}

// AddDependency sets dependencies[name] = version, creating the section when
// it is missing.
func (p *Package) AddDependency(name, version string) error {
	return p.setInSection(KeyDependencies, name, version)
}

// AddDevDependency sets devDependencies[name] = version, creating the section
// when it is missing.
func (p *Package) AddDevDependency(name, version string) error {
	return p.setInSection(KeyDevDependencies, name, version)
}

// RemoveDevDependency deletes devDependencies[name]. A missing entry is not an
// error.
func (p *Package) RemoveDevDependency(name string) error {
	return p.deleteInSection(KeyDevDependencies, name)
}

// SetScript sets scripts[name] = command.
func (p *Package) SetScript(name, command string) error {
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("script %q has an empty command", name)
	}
	return p.Update(func(obj *jsonfile.Object) error {
		scripts, err := obj.Object(KeyScripts)
		if err != nil {
			return err
		}
		scripts.Set(name, command)
		return nil
	})
}

// RemoveScript deletes scripts[name]. A missing entry is not an error.
func (p *Package) RemoveScript(name string) error {
	return p.deleteInSection(KeyScripts, name)
}

// SetName sets the package name.
func (p *Package) SetName(name string) error {
	return p.Update(func(obj *jsonfile.Object) error {
		obj.Set(KeyName, name)
		return nil
	})
}

func (p *Package) setInSection(section, name, version string) error {
	if err := versions.CheckSpec(version); err != nil {
		return fmt.Errorf("adding %s to %s: %w", name, section, err)
	}
	return p.Update(func(obj *jsonfile.Object) error {
		deps, err := obj.Object(section)
		if err != nil {
			return err
		}
		deps.Set(name, version)
		return nil
	})
}

func (p *Package) deleteInSection(section, name string) error {
	return p.Update(func(obj *jsonfile.Object) error {
		v, ok := obj.Get(section)
		if !ok {
			return nil
		}
		entries, ok := v.(*jsonfile.Object)
		if !ok {
			return fmt.Errorf("key %q holds %T, not an object", section, v)
		}
		entries.Delete(name)
		return nil
	})
}
