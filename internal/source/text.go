package source

import (
	"fmt"
	"os"
	"strings"
)

// ReplaceText replaces the first occurrence of search in the file at path
// and reports whether one was found. The file is rewritten only on a match.
func ReplaceText(path, search, replace string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	content := string(data)
	if !strings.Contains(content, search) {
		return false, nil
	}
	content = strings.Replace(content, search, replace, 1)
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
