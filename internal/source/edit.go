package source

import (
	"strings"
)

const indentUnit = "  "

func splice(src string, at int, text string) string {
	return src[:at] + text + src[at:]
}

func lineStart(src string, pos int) int {
	return strings.LastIndexByte(src[:pos], '\n') + 1
}

// indentAt returns the leading whitespace of the line containing pos.
func indentAt(src string, pos int) string {
	ls := lineStart(src, pos)
	end := ls
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[ls:end]
}

// onlySpaceBefore reports whether pos is the first non-blank byte of its line.
func onlySpaceBefore(src string, pos int) bool {
	return strings.TrimLeft(src[lineStart(src, pos):pos], " \t") == ""
}

// reindent strips the common indentation of text and prefixes every
// non-blank line with indent.
func reindent(text, indent string) string {
	lines := strings.Split(strings.Trim(strings.ReplaceAll(text, "\r\n", "\n"), "\n"), "\n")
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = indent + line[common:]
	}
	return strings.Join(lines, "\n")
}

// insertInBlock inserts text as its own line(s) into the block whose braces
// are the tokens lbrace and rbrace. entries are the statements (or members)
// of the block; text goes before entries[index], or after the last entry
// when index equals len(entries).
func (p *parsed) insertInBlock(lbrace, rbrace int, entries []statement, index int, text string) string {
	src := p.src
	openTok, closeTok := p.toks[lbrace], p.toks[rbrace]
	base := indentAt(src, openTok.start)
	indent := base + indentUnit
	if len(entries) > 0 {
		first := p.toks[entries[0].first].start
		if onlySpaceBefore(src, first) {
			indent = indentAt(src, first)
		}
	}
	body := reindent(text, indent)

	if index < len(entries) {
		at := p.toks[entries[index].first].start
		if onlySpaceBefore(src, at) {
			return splice(src, lineStart(src, at), body+"\n")
		}
		return splice(src, at, strings.TrimLeft(body, " \t")+" ")
	}

	if !strings.Contains(src[openTok.end:closeTok.start], "\n") {
		var b strings.Builder
		b.WriteString("\n")
		if inner := strings.TrimSpace(src[openTok.end:closeTok.start]); inner != "" {
			b.WriteString(indent + inner + "\n")
		}
		b.WriteString(body + "\n" + base)
		return src[:openTok.end] + b.String() + src[closeTok.start:]
	}
	if onlySpaceBefore(src, closeTok.start) {
		return splice(src, lineStart(src, closeTok.start), body+"\n")
	}
	return splice(src, closeTok.start, "\n"+body+"\n"+base)
}

// insertTopLevel inserts text as a file-scope statement before
// p.stmts[index], or after the last statement when index equals
// len(p.stmts).
func (p *parsed) insertTopLevel(index int, text string) string {
	src := p.src
	if len(p.stmts) == 0 {
		if strings.TrimSpace(src) == "" {
			return text + "\n"
		}
		return strings.TrimRight(src, "\n") + "\n\n" + text + "\n"
	}
	if index >= len(p.stmts) {
		return splice(src, p.stmtEnd(p.stmts[len(p.stmts)-1]), "\n\n"+text)
	}

	at := p.stmtStart(p.stmts[index])
	if !onlySpaceBefore(src, at) {
		return splice(src, at, text+" ")
	}
	floor := 0
	if index > 0 {
		floor = p.stmtEnd(p.stmts[index-1])
	}
	at = p.leadingComments(lineStart(src, at), floor)
	return splice(src, at, text+"\n\n")
}

// leadingComments walks up from the line starting at ls over comment lines
// that directly precede it, stopping at floor.
func (p *parsed) leadingComments(ls, floor int) int {
	src := p.src
	for ls > floor && ls > 0 {
		prev := lineStart(src, ls-1)
		if prev < floor {
			break
		}
		line := strings.TrimSpace(src[prev : ls-1])
		if !strings.HasPrefix(line, "//") && !strings.HasPrefix(line, "/*") && !strings.HasPrefix(line, "*") {
			break
		}
		ls = prev
	}
	return ls
}
