package source

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokPunct
	tokString
	tokTemplate
	tokNumber
	tokRegex
	tokJSX
)

type token struct {
	kind       tokenKind
	text       string
	start, end int
	// nlBefore is set when a line break separates this token from the
	// previous one.
	nlBefore bool
	// jsx holds the parsed element for tokJSX.
	jsx *jsxNode
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) isPunct(text string) bool { return t.is(tokPunct, text) }

func (t token) isIdent(text string) bool { return t.is(tokIdent, text) }

// multiPunct lists multi-character punctuators, longest first.
var multiPunct = []string{
	"...", "===", "!==", "**=", "<<=", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "**", "<<",
}

// Keywords after which an expression starts, so "/" opens a regular
// expression and "<" opens markup.
var exprKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true,
	"in": true, "of": true, "new": true, "delete": true, "void": true,
	"throw": true, "yield": true, "await": true, "default": true,
}

type lexer struct {
	src  string
	pos  int
	jsx  bool
	prev token
}

func newLexer(src string, jsx bool) *lexer {
	return &lexer{src: src, jsx: jsx}
}

// tokenize lexes the whole source.
func tokenize(src string, jsx bool) ([]token, error) {
	l := newLexer(src, jsx)
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	line := 1 + strings.Count(l.src[:pos], "\n")
	return fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
}

// skipTrivia skips whitespace and comments and reports whether a line break
// was crossed.
func (l *lexer) skipTrivia() (bool, error) {
	nl := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			nl = true
			l.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case strings.HasPrefix(l.src[l.pos:], "//"):
			end := strings.IndexByte(l.src[l.pos:], '\n')
			if end < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += end
			}
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				return nl, l.errorf(l.pos, "unterminated comment")
			}
			if strings.Contains(l.src[l.pos:l.pos+2+end], "\n") {
				nl = true
			}
			l.pos += end + 4
		default:
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if r == '\u00a0' || r == '\ufeff' || r == '\u2028' || r == '\u2029' {
				l.pos += size
				continue
			}
			return nl, nil
		}
	}
	return nl, nil
}

// exprAllowed reports whether the previous token leaves the lexer at the
// start of an expression.
func (l *lexer) exprAllowed() bool {
	switch l.prev.kind {
	case tokEOF:
		return true
	case tokIdent:
		return exprKeywords[l.prev.text]
	case tokPunct:
		switch l.prev.text {
		case ")", "]", "}", "++", "--":
			return false
		}
		return true
	}
	return false
}

func (l *lexer) next() (token, error) {
	nl, err := l.skipTrivia()
	if err != nil {
		return token{}, err
	}
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, start: start, end: start, nlBefore: nl}, nil
	}

	tok := token{start: start, nlBefore: nl}
	c := l.src[l.pos]
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])

	switch {
	case isIdentStart(r):
		l.scanIdent()
		tok.kind = tokIdent
	case c >= '0' && c <= '9' || c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		l.scanNumber()
		tok.kind = tokNumber
	case c == '"' || c == '\'':
		if err := l.scanString(c); err != nil {
			return token{}, err
		}
		tok.kind = tokString
	case c == '`':
		if err := l.scanTemplate(); err != nil {
			return token{}, err
		}
		tok.kind = tokTemplate
	case c == '/' && l.exprAllowed():
		if err := l.scanRegex(); err != nil {
			return token{}, err
		}
		tok.kind = tokRegex
	case c == '<' && l.jsx && l.exprAllowed() && l.markupAhead():
		node, err := l.parseElement()
		if err != nil {
			return token{}, err
		}
		tok.kind = tokJSX
		tok.jsx = node
	default:
		tok.kind = tokPunct
		l.pos++
		for _, p := range multiPunct {
			if strings.HasPrefix(l.src[start:], p) {
				l.pos = start + len(p)
				break
			}
		}
	}

	tok.end = l.pos
	tok.text = l.src[start:l.pos]
	l.prev = tok
	return tok, nil
}

// markupAhead reports whether the "<" at the cursor opens an element or a
// fragment rather than a comparison.
func (l *lexer) markupAhead() bool {
	if l.pos+1 >= len(l.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos+1:])
	return r == '>' || isIdentStart(r)
}

func (l *lexer) scanIdent() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) scanNumber() {
	start := l.pos
	hex := strings.HasPrefix(l.src[start:], "0x") || strings.HasPrefix(l.src[start:], "0X")
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isDigit(c) || c == '.' || c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			l.pos++
		case (c == '+' || c == '-') && !hex && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E'):
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) scanString(quote byte) error {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
		case '\n':
			return l.errorf(start, "unterminated string literal")
		case quote:
			l.pos++
			return nil
		default:
			l.pos++
		}
	}
	return l.errorf(start, "unterminated string literal")
}

func (l *lexer) scanTemplate() error {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
		case '`':
			l.pos++
			return nil
		case '$':
			if strings.HasPrefix(l.src[l.pos:], "${") {
				l.pos += 2
				if err := l.skipBalanced(); err != nil {
					return err
				}
				continue
			}
			l.pos++
		default:
			l.pos++
		}
	}
	return l.errorf(start, "unterminated template literal")
}

func (l *lexer) scanRegex() error {
	start := l.pos
	l.pos++
	inClass := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\':
			l.pos += 2
			continue
		case c == '\n':
			return l.errorf(start, "unterminated regular expression")
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			l.pos++
			l.scanIdent()
			return nil
		}
		l.pos++
	}
	return l.errorf(start, "unterminated regular expression")
}

// skipBalanced consumes code up to and including the "}" that closes a
// brace the caller already consumed.
func (l *lexer) skipBalanced() error {
	saved := l.prev
	l.prev = token{kind: tokPunct, text: "{"}
	open := l.pos
	depth := 0
	for {
		tok, err := l.next()
		if err != nil {
			return err
		}
		if tok.kind == tokEOF {
			return l.errorf(open, "unbalanced braces")
		}
		if tok.kind != tokPunct {
			continue
		}
		switch tok.text {
		case "{", "(", "[":
			depth++
		case "}", ")", "]":
			if depth == 0 {
				if tok.text != "}" {
					return l.errorf(tok.start, "unexpected %q", tok.text)
				}
				l.prev = saved
				return nil
			}
			depth--
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || r == '#' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\u200c' || r == '\u200d'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
