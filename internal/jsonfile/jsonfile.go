// Package jsonfile performs scoped read-modify-write edits on JSON documents
// such as package.json, turbo.json and tsconfig.json.
//
// Documents keep their key order across a round trip so an edit only shows up
// in a diff where a key was actually touched.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/mountstack/mountstack/internal/logging"
)

func toJSON(data []byte) []byte {
	return jsonc.ToJSON(data)
}

// Read parses the JSON object stored at path.
func Read(path string) (*Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	obj, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obj, nil
}

// Encode renders obj with two-space indentation and a trailing newline.
func Encode(obj *Object) ([]byte, error) {
	compact, err := obj.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting JSON: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Write overwrites path with obj, creating parent directories as needed.
func Write(path string, obj *Object) error {
	data, err := Encode(obj)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	// #nosec G306 - generated project files are meant to be world-readable
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Update reads path, hands the parsed object to fn and writes the result
// back. Nothing is written when fn returns an error.
func Update(path string, fn func(obj *Object) error) error {
	obj, err := Read(path)
	if err != nil {
		return err
	}
	if err := fn(obj); err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}
	if err := obj.Err(); err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}
	if err := Write(path, obj); err != nil {
		return err
	}
	logging.Debug().Str("path", path).Msg("updated JSON file")
	return nil
}
