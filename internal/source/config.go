package source

import (
	"strings"
)

// ConfigFile edits a configuration module such as next.config.ts, which
// declares a named object literal and default-exports it.
type ConfigFile struct {
	*File
}

// OpenConfig loads the configuration file at path.
func OpenConfig(path string) (*ConfigFile, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &ConfigFile{File: f}, nil
}

// objectLiteral returns the brace token indices of the object literal
// initializing the top-level variable name.
func (f *ConfigFile) objectLiteral(p *parsed, name string) (int, int, error) {
	for _, s := range p.stmts {
		i := s.first
		if p.toks[i].isIdent("export") {
			i++
		}
		if i+1 > s.last {
			continue
		}
		kw := p.toks[i]
		if !kw.isIdent("const") && !kw.isIdent("let") && !kw.isIdent("var") {
			continue
		}
		if !p.toks[i+1].isIdent(name) {
			continue
		}
		for j := i + 2; j <= s.last; j++ {
			t := p.toks[j]
			if t.isPunct("=") {
				if j+1 <= s.last && p.toks[j+1].isPunct("{") {
					return j + 1, p.match[j+1], nil
				}
				break
			}
			if p.match[j] > j {
				j = p.match[j]
			}
		}
		return 0, 0, f.anchorErr("%s is not initialized with an object literal", name)
	}
	return 0, 0, f.anchorErr("no variable named %s", name)
}

// AddProperty appends `name: init` to the object literal assigned to the
// top-level variable object.
func (f *ConfigFile) AddProperty(object, name, init string) error {
	p, err := f.parse()
	if err != nil {
		return err
	}
	lbrace, rbrace, err := f.objectLiteral(p, object)
	if err != nil {
		return err
	}

	if rbrace > lbrace+1 && !p.toks[rbrace-1].isPunct(",") {
		f.src = splice(f.src, p.toks[rbrace-1].end, ",")
		if p, err = f.parse(); err != nil {
			return err
		}
		if lbrace, rbrace, err = f.objectLiteral(p, object); err != nil {
			return err
		}
	}

	var members []statement
	if rbrace > lbrace+1 {
		members = []statement{{first: lbrace + 1, last: rbrace - 1, body: -1, bodyEnd: -1}}
	}
	f.src = p.insertInBlock(lbrace, rbrace, members, len(members), name+": "+init+",")
	return nil
}

// RemoveDefaultExport removes the default export. An exported expression is
// deleted along with its statement; an exported declaration keeps the
// declaration. It reports whether a default export was found.
func (f *ConfigFile) RemoveDefaultExport() (bool, error) {
	p, err := f.parse()
	if err != nil {
		return false, err
	}
	for _, s := range p.stmts {
		if s.last <= s.first || !p.toks[s.first].isIdent("export") || !p.toks[s.first+1].isIdent("default") {
			continue
		}
		if block, _ := p.blockStatement(s.first, s.last+1); block {
			f.src = f.src[:p.toks[s.first].start] + f.src[p.toks[s.first+2].start:]
			return true, nil
		}
		start, end := p.stmtStart(s), p.stmtEnd(s)
		if onlySpaceBefore(f.src, start) {
			start = lineStart(f.src, start)
		}
		if strings.HasPrefix(f.src[end:], "\n") {
			end++
		}
		f.src = f.src[:start] + f.src[end:]
		return true, nil
	}
	return false, nil
}

// AddDefaultExport appends `export default expr;`.
func (f *ConfigFile) AddDefaultExport(expr string) error {
	return f.AddStatements("export default " + expr + ";")
}
