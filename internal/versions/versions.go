// Package versions exposes the pinned generator and package versions baked
// into the binary. Every entry is either an exact semver version, a semver
// range understood by the JavaScript package managers, or a workspace
// protocol reference.
package versions

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"go.yaml.in/yaml/v3"
)

//go:embed versions.yaml
var rawVersions []byte

// Required lists the entries the scaffolding steps look up.
var Required = []string{
	"create-turbo",
	"turbo",
	"create-next-app",
	"typescript",
	"biome",
	"tailwindcss",
	"postcss",
	"@tailwindcss/postcss",
	"@tanstack/react-query",
	"@tanstack/react-query-devtools",
	"next-intl",
	"@logtape/logtape",
	"@logtape/pretty",
	"zod",
	"dotenv",
	"prisma",
	"prisma-generator-drizzle",
	"drizzle-orm",
}

var (
	loadOnce sync.Once
	pinned   map[string]string
	loadErr  error
)

func load() (map[string]string, error) {
	loadOnce.Do(func() {
		pinned = make(map[string]string)
		if err := yaml.Unmarshal(rawVersions, &pinned); err != nil {
			loadErr = fmt.Errorf("parsing embedded versions: %w", err)
		}
	})
	return pinned, loadErr
}

// Lookup returns the pinned version for name.
func Lookup(name string) (string, bool) {
	m, err := load()
	if err != nil {
		return "", false
	}
	v, ok := m[name]
	return v, ok
}

// Get returns the pinned version for name, or an empty string when unknown.
// Validate guarantees every Required entry is present.
func Get(name string) string {
	v, _ := Lookup(name)
	return v
}

// Exact returns the bare version of a pinned entry, stripping range operators
// (e.g., "^4.1.14" → "4.1.14"). Used where a concrete version is needed, such
// as schema URLs.
func Exact(name string) (string, error) {
	v, ok := Lookup(name)
	if !ok {
		return "", fmt.Errorf("no pinned version for %q", name)
	}
	sv, err := parseSemver(strings.TrimLeft(v, "^~=<> "))
	if err != nil {
		return "", fmt.Errorf("parsing pinned version %q for %q: %w", v, name, err)
	}
	return sv.String(), nil
}

// Validate checks that every required entry exists and that every entry is a
// valid version, range, or workspace reference.
func Validate() error {
	m, err := load()
	if err != nil {
		return err
	}

	var problems []string
	for _, name := range Required {
		if _, ok := m[name]; !ok {
			problems = append(problems, fmt.Sprintf("%s: missing", name))
		}
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := CheckSpec(m[name]); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid pinned versions:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// CheckSpec reports whether spec is an acceptable dependency specifier.
func CheckSpec(spec string) error {
	if strings.HasPrefix(spec, "workspace:") {
		return nil
	}
	if _, err := parseSemver(spec); err == nil {
		return nil
	}
	if _, err := semver.NewConstraint(spec); err != nil {
		return fmt.Errorf("%q is neither a version nor a range: %w", spec, err)
	}
	return nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.StrictNewVersion(version)
}
