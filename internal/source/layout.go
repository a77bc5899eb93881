package source

import (
	"fmt"
	"regexp"
	"strings"
)

// childrenPlaceholder matches the expression container that renders a
// layout's nested content.
var childrenPlaceholder = regexp.MustCompile(`^\{\s*children\s*\}$`)

// LayoutFile edits a Next.js root layout whose default export is a function
// component returning markup.
type LayoutFile struct {
	*File
}

// OpenLayout loads the layout file at path.
func OpenLayout(path string) (*LayoutFile, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	f.jsx = true
	return &LayoutFile{File: f}, nil
}

func (f *LayoutFile) layout() (*parsed, functionDecl, error) {
	p, err := f.parse()
	if err != nil {
		return nil, functionDecl{}, err
	}
	fn, ok := p.defaultExportFunction()
	if !ok {
		return nil, functionDecl{}, f.anchorErr("no default exported function")
	}
	return p, fn, nil
}

// InsertVariableInLayout inserts v as the index-th statement of the layout
// function body.
func (f *LayoutFile) InsertVariableInLayout(index int, v VarStatement) error {
	p, fn, err := f.layout()
	if err != nil {
		return err
	}
	return f.addToFunction(p, fn, index, v.String())
}

// WrapChildren finds the first {children} container, in document order, in
// the markup returned by the layout function and replaces the children of
// the element holding it with openTag{children}closeTag. It reports whether
// a placeholder was found; finding none is not an error. Repeated calls nest
// each new wrapper inside the previous one.
func (f *LayoutFile) WrapChildren(openTag, closeTag string) (bool, error) {
	if !strings.HasPrefix(openTag, "<") || !strings.HasSuffix(openTag, ">") ||
		!strings.HasPrefix(closeTag, "</") || !strings.HasSuffix(closeTag, ">") {
		return false, fmt.Errorf("invalid wrapper tags %q and %q", openTag, closeTag)
	}

	p, fn, err := f.layout()
	if err != nil {
		return false, err
	}

	var ret *statement
	for _, s := range p.bodyStatements(fn) {
		if p.toks[s.first].isIdent("return") {
			ret = &s
			break
		}
	}
	if ret == nil {
		return false, f.anchorErr("no return statement in %s", fn.name)
	}

	var target *jsxNode
	for i := ret.first; i <= ret.last && target == nil; i++ {
		tok := p.toks[i]
		if tok.kind != tokJSX {
			continue
		}
		tok.jsx.walk(func(node, parent *jsxNode) bool {
			if node.kind == jsxExpr && !parent.selfClosing() &&
				childrenPlaceholder.MatchString(f.src[node.start:node.end]) {
				target = parent
				return false
			}
			return true
		})
	}
	if target == nil {
		return false, nil
	}

	f.src = f.src[:target.openEnd] + openTag + "{children}" + closeTag + f.src[target.closeStart:]
	return true, nil
}
