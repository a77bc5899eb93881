package source

import (
	"strings"
	"unicode/utf8"
)

type jsxKind int

const (
	jsxElement jsxKind = iota
	jsxFragment
	jsxText
	jsxExpr
)

// jsxNode is one node of a markup tree. Offsets index the file source.
type jsxNode struct {
	kind       jsxKind
	name       string
	start, end int
	// openEnd and closeStart bound the children of a non-self-closing
	// element or fragment. Both are -1 for a self-closing element.
	openEnd, closeStart int
	children            []*jsxNode
}

func (n *jsxNode) selfClosing() bool {
	return n.closeStart < 0
}

// walk visits n and its descendants in document order until fn returns false.
func (n *jsxNode) walk(fn func(node, parent *jsxNode) bool) bool {
	for _, child := range n.children {
		if !fn(child, n) {
			return false
		}
		if !child.walk(fn) {
			return false
		}
	}
	return true
}

// parseElement parses the element or fragment starting at the "<" under the
// cursor and leaves the cursor just past it.
func (l *lexer) parseElement() (*jsxNode, error) {
	node := &jsxNode{start: l.pos, openEnd: -1, closeStart: -1}
	l.pos++ // <
	l.skipJSXSpace()

	if l.peek() == '>' {
		l.pos++
		node.kind = jsxFragment
		node.openEnd = l.pos
		if err := l.parseChildren(node); err != nil {
			return nil, err
		}
		node.end = l.pos
		return node, nil
	}

	node.kind = jsxElement
	node.name = l.scanJSXName()
	if node.name == "" {
		return nil, l.errorf(node.start, "expected tag name")
	}

	for {
		l.skipJSXSpace()
		switch c := l.peek(); {
		case c == 0:
			return nil, l.errorf(node.start, "unterminated <%s> tag", node.name)
		case strings.HasPrefix(l.src[l.pos:], "/>"):
			l.pos += 2
			node.end = l.pos
			return node, nil
		case c == '>':
			l.pos++
			node.openEnd = l.pos
			if err := l.parseChildren(node); err != nil {
				return nil, err
			}
			node.end = l.pos
			return node, nil
		case c == '{':
			// spread attribute
			l.pos++
			if err := l.skipBalanced(); err != nil {
				return nil, err
			}
		default:
			if err := l.parseAttribute(node); err != nil {
				return nil, err
			}
		}
	}
}

func (l *lexer) parseAttribute(node *jsxNode) error {
	attrStart := l.pos
	if l.scanJSXName() == "" {
		return l.errorf(attrStart, "unexpected %q in <%s> tag", l.peek(), node.name)
	}
	l.skipJSXSpace()
	if l.peek() != '=' {
		return nil
	}
	l.pos++
	l.skipJSXSpace()

	switch c := l.peek(); c {
	case '"', '\'':
		end := strings.IndexByte(l.src[l.pos+1:], c)
		if end < 0 {
			return l.errorf(attrStart, "unterminated attribute value")
		}
		l.pos += end + 2
	case '{':
		l.pos++
		return l.skipBalanced()
	case '<':
		_, err := l.parseElement()
		return err
	default:
		return l.errorf(attrStart, "invalid attribute value")
	}
	return nil
}

// parseChildren parses children up to and including the closing tag of node.
func (l *lexer) parseChildren(node *jsxNode) error {
	for {
		if l.pos >= len(l.src) {
			return l.errorf(node.start, "unclosed <%s>", node.name)
		}
		switch l.src[l.pos] {
		case '<':
			if l.closingTagAhead() {
				node.closeStart = l.pos
				return l.parseClosingTag(node)
			}
			child, err := l.parseElement()
			if err != nil {
				return err
			}
			node.children = append(node.children, child)
		case '{':
			child := &jsxNode{kind: jsxExpr, start: l.pos, openEnd: -1, closeStart: -1}
			l.pos++
			if err := l.skipBalanced(); err != nil {
				return err
			}
			child.end = l.pos
			node.children = append(node.children, child)
		default:
			start := l.pos
			end := strings.IndexAny(l.src[l.pos:], "<{")
			if end < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += end
			}
			node.children = append(node.children, &jsxNode{
				kind: jsxText, start: start, end: l.pos, openEnd: -1, closeStart: -1,
			})
		}
	}
}

func (l *lexer) closingTagAhead() bool {
	rest := strings.TrimLeft(l.src[l.pos+1:], " \t\r\n")
	return strings.HasPrefix(rest, "/")
}

func (l *lexer) parseClosingTag(node *jsxNode) error {
	start := l.pos
	l.pos++ // <
	l.skipJSXSpace()
	l.pos++ // /
	l.skipJSXSpace()
	name := l.scanJSXName()
	if name != node.name {
		if node.kind == jsxFragment {
			return l.errorf(start, "expected </> but found </%s>", name)
		}
		return l.errorf(start, "expected </%s> but found </%s>", node.name, name)
	}
	l.skipJSXSpace()
	if l.peek() != '>' {
		return l.errorf(start, "malformed closing tag")
	}
	l.pos++
	return nil
}

func (l *lexer) scanJSXName() string {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !(isIdentPart(r) || r == '-' || r == ':' || r == '.') {
			break
		}
		l.pos += size
	}
	return l.src[start:l.pos]
}

// skipJSXSpace skips whitespace and comments inside a tag.
func (l *lexer) skipJSXSpace() {
	for l.pos < len(l.src) {
		switch {
		case strings.ContainsRune(" \t\r\n", rune(l.src[l.pos])):
			l.pos++
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				l.pos = len(l.src)
				return
			}
			l.pos += end + 4
		case strings.HasPrefix(l.src[l.pos:], "//"):
			end := strings.IndexByte(l.src[l.pos:], '\n')
			if end < 0 {
				l.pos = len(l.src)
				return
			}
			l.pos += end
		default:
			return
		}
	}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}
