package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// relativeHint is shown when the prompt rejects an answer.
const relativeHint = "Relative path should start with a dot ."

// ErrNotRelative rejects destinations that do not start with a dot.
var ErrNotRelative = errors.New("destination must be a relative path starting with a dot")

var whitespace = regexp.MustCompile(`\s`)

// ValidateDestination accepts relative paths starting with ".".
func ValidateDestination(value string) error {
	if !strings.HasPrefix(value, ".") {
		return ErrNotRelative
	}
	return nil
}

// ResolveDestination returns the absolute path of rel under cwd.
func ResolveDestination(cwd, rel string) string {
	return filepath.Join(cwd, rel)
}

// AppName derives the workspace name from its directory: the base name
// without separators, whitespace replaced by "-", lowercased.
func AppName(path string) string {
	name := filepath.Base(path)
	name = strings.ReplaceAll(name, `\`, "")
	name = strings.ReplaceAll(name, "/", "")
	name = whitespace.ReplaceAllString(name, "-")
	return strings.ToLower(name)
}

// promptDestination asks for the destination until a valid answer is
// given. An empty answer selects def.
func promptDestination(r *bufio.Reader, w io.Writer, def string) (string, error) {
	for {
		fmt.Fprintf(w, "◆  Where would you like to create your project ? (%s) ", def)

		line, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			fmt.Fprintln(w)
			return "", fmt.Errorf("reading destination: %w", err)
		}

		value := strings.TrimSpace(line)
		if value == "" {
			value = def
		}
		if err := ValidateDestination(value); err != nil {
			fmt.Fprintf(w, "▲  %s\n", relativeHint)
			continue
		}
		return value, nil
	}
}
