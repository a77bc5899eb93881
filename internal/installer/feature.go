package installer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyInstalled is returned when a feature is installed twice on the
// same application.
var ErrAlreadyInstalled = errors.New("already installed")

// Feature is an optional capability added to a generated application.
type Feature uint8

const (
	FeatureTailwind Feature = 1 << iota
	FeatureDocker
	FeatureReactQuery
	FeatureI18n
	FeatureLogger
	FeatureEnvFiles
)

var featureNames = map[Feature]string{
	FeatureTailwind:   "Tailwind",
	FeatureDocker:     "Docker",
	FeatureReactQuery: "React Query",
	FeatureI18n:       "i18n",
	FeatureLogger:     "Logger",
	FeatureEnvFiles:   "Env file management",
}

func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	var names []string
	for bit := FeatureTailwind; bit <= FeatureEnvFiles; bit <<= 1 {
		if f&bit != 0 {
			names = append(names, featureNames[bit])
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("Feature(%d)", uint8(f))
	}
	return strings.Join(names, "|")
}

// Features is the set of features installed on an application.
type Features Feature

func (s Features) String() string { return Feature(s).String() }

// Has reports whether f is in the set.
func (s Features) Has(f Feature) bool { return Feature(s)&f == f }

// install moves f from not installed to installed. It fails without
// changing the set when f is already present.
func (s *Features) install(f Feature, fn func() error) error {
	if s.Has(f) {
		return fmt.Errorf("%s is %w", f, ErrAlreadyInstalled)
	}
	if err := fn(); err != nil {
		return fmt.Errorf("installing %s: %w", f, err)
	}
	*s = Features(Feature(*s) | f)
	return nil
}
