package manifest

// Top-level manifest keys edited by the installers.
const (
	KeyName            = "name"
	KeyScripts         = "scripts"
	KeyDependencies    = "dependencies"
	KeyDevDependencies = "devDependencies"
)

// Manifest is a read-only typed view of the fields the scaffolder inspects.
// Editing always goes through Package so unknown fields survive.
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version,omitempty"`
	Private         bool              `json:"private,omitempty"`
	Type            string            `json:"type,omitempty"`
	Scripts         map[string]string `json:"scripts,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

// HasDependency reports whether name is listed in dependencies or
// devDependencies.
func (m *Manifest) HasDependency(name string) bool {
	if _, ok := m.Dependencies[name]; ok {
		return true
	}
	_, ok := m.DevDependencies[name]
	return ok
}
