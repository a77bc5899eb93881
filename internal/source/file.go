package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/mountstack/mountstack/internal/logging"
)

// ErrAnchorNotFound is returned when a file lacks the function, export or
// object literal an edit needs. It usually means the generator that wrote
// the file changed its output.
var ErrAnchorNotFound = errors.New("anchor not found")

// File is an editable TypeScript source file. Edits apply to an in-memory
// copy; only Save touches the disk. A File is not safe for concurrent use
// and separate Files over the same path are not coordinated.
type File struct {
	path string
	jsx  bool
	orig string
	src  string
}

// Open loads the file at path. A missing file yields an empty File that Save
// will create.
func Open(path string) (*File, error) {
	f := &File{path: path, jsx: isJSX(path)}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f.orig = string(data)
	f.src = f.orig
	return f, nil
}

func isJSX(path string) bool {
	switch filepath.Ext(path) {
	case ".tsx", ".jsx":
		return true
	}
	return false
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Text returns the current in-memory contents.
func (f *File) Text() string { return f.src }

func (f *File) parse() (*parsed, error) {
	p, err := parse(f.src, f.jsx)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	return p, nil
}

func (f *File) anchorErr(format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", f.path, fmt.Sprintf(format, args...), ErrAnchorNotFound)
}

// AddImport adds an import declaration after the last existing import, or at
// the top of the file after any directives.
func (f *File) AddImport(decl ImportDecl) error {
	p, err := f.parse()
	if err != nil {
		return err
	}
	text := decl.String()

	last := -1
	for i, s := range p.stmts {
		if p.isImport(s) {
			last = i
		}
	}
	if last >= 0 {
		f.src = splice(f.src, p.stmtEnd(p.stmts[last]), "\n"+text)
		return nil
	}

	n := 0
	for n < len(p.stmts) && p.isDirective(p.stmts[n]) {
		n++
	}
	if n > 0 {
		f.src = splice(f.src, p.stmtEnd(p.stmts[n-1]), "\n\n"+text)
		return nil
	}
	f.src = p.insertTopLevel(0, text)
	return nil
}

// ImportsEnd returns the statement index just past the leading directives
// and the last import declaration.
func (f *File) ImportsEnd() (int, error) {
	p, err := f.parse()
	if err != nil {
		return 0, err
	}
	end := 0
	for i, s := range p.stmts {
		if p.isImport(s) || (i == end && p.isDirective(s)) {
			end = i + 1
		}
	}
	return end, nil
}

// InsertVariableStatement inserts v as the index-th file-scope statement.
// index may equal the current statement count to append.
func (f *File) InsertVariableStatement(index int, v VarStatement) error {
	return f.InsertStatements(index, v.String())
}

// InsertStatements inserts text as file-scope code before the index-th
// statement.
func (f *File) InsertStatements(index int, text string) error {
	p, err := f.parse()
	if err != nil {
		return err
	}
	if index < 0 || index > len(p.stmts) {
		return fmt.Errorf("%s: statement index %d out of range [0, %d]", f.path, index, len(p.stmts))
	}
	f.src = p.insertTopLevel(index, strings.Trim(text, "\n"))
	return nil
}

// AddVariableStatement appends v at file scope.
func (f *File) AddVariableStatement(v VarStatement) error {
	return f.AddStatements(v.String())
}

// AddStatements appends text at file scope.
func (f *File) AddStatements(text string) error {
	p, err := f.parse()
	if err != nil {
		return err
	}
	f.src = p.insertTopLevel(len(p.stmts), strings.Trim(text, "\n"))
	return nil
}

// addToFunction inserts text into the body of fn before its index-th
// statement. index may equal the statement count to append.
func (f *File) addToFunction(p *parsed, fn functionDecl, index int, text string) error {
	stmts := p.bodyStatements(fn)
	if index < 0 || index > len(stmts) {
		return fmt.Errorf("%s: statement index %d out of range [0, %d] in %s", f.path, index, len(stmts), fn.name)
	}
	f.src = p.insertInBlock(fn.stmt.body, fn.stmt.bodyEnd, stmts, index, text)
	return nil
}

// Format normalizes the in-memory contents.
func (f *File) Format() {
	f.src = Format(f.src)
}

// Changed reports whether the contents differ from what was loaded.
func (f *File) Changed() bool {
	return f.src != f.orig
}

// Diff returns a patch from the loaded contents to the current ones.
func (f *File) Diff() string {
	if !f.Changed() {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(f.orig, f.src)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)
	patches := dmp.PatchMake(f.orig, diffs)
	return dmp.PatchToText(patches)
}

// Save formats the contents and writes them to disk, creating parent
// directories as needed.
func (f *File) Save() error {
	f.Format()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.path, err)
	}
	// #nosec G306 - generated project sources are meant to be world-readable
	if err := os.WriteFile(f.path, []byte(f.src), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	logging.Debug().
		Str("path", f.path).
		Str("diff", f.Diff()).
		Msg("saved source file")
	f.orig = f.src
	return nil
}
