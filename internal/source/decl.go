package source

import (
	"strings"
)

// ImportDecl describes an import declaration to add to a file.
type ImportDecl struct {
	Module   string
	Default  string
	Named    []string
	TypeOnly bool
}

// String renders the declaration, e.g. `import Providers from "./providers";`
// or `import "@/lib/logger";` when nothing is bound.
func (d ImportDecl) String() string {
	var clause []string
	if d.Default != "" {
		clause = append(clause, d.Default)
	}
	if len(d.Named) > 0 {
		clause = append(clause, "{ "+strings.Join(d.Named, ", ")+" }")
	}
	if len(clause) == 0 {
		return "import " + quote(d.Module) + ";"
	}

	var b strings.Builder
	b.WriteString("import ")
	if d.TypeOnly {
		b.WriteString("type ")
	}
	b.WriteString(strings.Join(clause, ", "))
	b.WriteString(" from ")
	b.WriteString(quote(d.Module))
	b.WriteString(";")
	return b.String()
}

// VarStatement describes a single-declaration variable statement.
type VarStatement struct {
	// Keyword is const, let or var. Empty means const.
	Keyword string
	Name    string
	Type    string
	Init    string
	Export  bool
}

// String renders the statement, e.g. `const env = getEnv();`.
func (v VarStatement) String() string {
	kw := v.Keyword
	if kw == "" {
		kw = "const"
	}
	var b strings.Builder
	if v.Export {
		b.WriteString("export ")
	}
	b.WriteString(kw)
	b.WriteString(" ")
	b.WriteString(v.Name)
	if v.Type != "" {
		b.WriteString(": ")
		b.WriteString(v.Type)
	}
	if v.Init != "" {
		b.WriteString(" = ")
		b.WriteString(v.Init)
	}
	b.WriteString(";")
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
