package source

// statement is a run of tokens forming one statement. first and last are
// inclusive token indices.
type statement struct {
	first, last int
	// body and bodyEnd index the braces of the first block owned by a
	// declaration or control statement, or are -1.
	body, bodyEnd int
}

// parsed is a lexed source with bracket matching and top-level statements.
type parsed struct {
	src   string
	toks  []token
	match []int
	stmts []statement
}

func parse(src string, jsx bool) (*parsed, error) {
	toks, err := tokenize(src, jsx)
	if err != nil {
		return nil, err
	}
	match, err := matchBrackets(src, toks)
	if err != nil {
		return nil, err
	}
	p := &parsed{src: src, toks: toks, match: match}
	p.stmts = p.split(0, len(toks))
	return p, nil
}

func matchBrackets(src string, toks []token) ([]int, error) {
	match := make([]int, len(toks))
	var stack []int
	pairs := map[string]string{")": "(", "]": "[", "}": "{"}
	for i, t := range toks {
		match[i] = -1
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			stack = append(stack, i)
		case ")", "]", "}":
			if len(stack) == 0 || toks[stack[len(stack)-1]].text != pairs[t.text] {
				l := &lexer{src: src}
				return nil, l.errorf(t.start, "unbalanced %q", t.text)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			match[open] = i
			match[i] = open
		}
	}
	if len(stack) > 0 {
		l := &lexer{src: src}
		return nil, l.errorf(toks[stack[len(stack)-1]].start, "unclosed %q", toks[stack[len(stack)-1]].text)
	}
	return match, nil
}

var blockKeywords = map[string]bool{
	"function": true, "class": true, "if": true, "for": true, "while": true,
	"do": true, "try": true, "switch": true, "namespace": true, "module": true,
	"enum": true, "interface": true, "with": true,
}

var modifierKeywords = map[string]bool{
	"export": true, "default": true, "declare": true, "abstract": true,
}

// Keywords that continue the current statement on the next line.
var continuationKeywords = map[string]bool{
	"extends": true, "implements": true, "as": true, "satisfies": true,
	"in": true, "of": true, "instanceof": true, "else": true, "catch": true,
	"finally": true, "from": true,
}

// Keywords that cannot be the last token of a statement.
var openKeywords = map[string]bool{
	"import": true, "export": true, "from": true, "const": true, "let": true,
	"var": true, "new": true, "typeof": true, "in": true, "of": true,
	"instanceof": true, "extends": true, "implements": true, "as": true,
	"satisfies": true, "async": true, "await": true, "function": true,
	"class": true, "type": true, "default": true, "keyof": true,
}

// Tokens before a "{" that make it a type or value rather than a body.
var nonBodyPrefix = map[string]bool{
	":": true, "<": true, ",": true, "|": true, "&": true, "(": true,
	"=": true, "=>": true, "?": true, "[": true, "...": true, "extends": true,
	"return": true,
}

// split divides toks[from:to] into statements.
func (p *parsed) split(from, to int) []statement {
	var stmts []statement
	i := from
	for i < to {
		st := p.scanStatement(i, to)
		stmts = append(stmts, st)
		i = st.last + 1
	}
	return stmts
}

func (p *parsed) scanStatement(from, to int) statement {
	toks := p.toks
	st := statement{first: from, body: -1, bodyEnd: -1}
	block, keyword := p.blockStatement(from, to)
	expectBody := block

	j := from
	for ; j < to; j++ {
		t := toks[j]

		if t.isPunct(";") {
			if j+1 < to && toks[j+1].isIdent("else") {
				continue
			}
			break
		}

		if t.kind == tokPunct && (t.text == "{" || t.text == "(" || t.text == "[") && p.match[j] >= 0 {
			if expectBody && t.text == "{" && p.isBodyBrace(j, from) {
				if st.body < 0 {
					st.body, st.bodyEnd = j, p.match[j]
				}
				j = p.match[j]
				if j+1 < to && (continuesBlock(toks[j+1]) || keyword == "do" && toks[j+1].isIdent("while")) {
					continue
				}
				expectBody = false
				if keyword == "do" || j+1 >= to || !toks[j+1].isPunct(";") {
					break
				}
				continue
			}
			j = p.match[j]
		}

		if expectBody {
			continue
		}
		if j+1 < to && toks[j+1].nlBefore && canEnd(toks[j]) && canStart(toks[j+1]) {
			break
		}
	}
	if j >= to {
		j = to - 1
	}
	st.last = j
	return st
}

// blockStatement reports whether the statement at from is a declaration or
// control statement that ends with a block, and returns its keyword.
func (p *parsed) blockStatement(from, to int) (bool, string) {
	toks := p.toks
	i := from
	if toks[i].isPunct("{") {
		return true, "{"
	}
	for i < to && toks[i].kind == tokIdent && modifierKeywords[toks[i].text] {
		i++
	}
	if i < to && toks[i].isIdent("async") && i+1 < to && toks[i+1].isIdent("function") {
		i++
	}
	if i >= to || toks[i].kind != tokIdent || !blockKeywords[toks[i].text] {
		return false, ""
	}
	kw := toks[i].text
	if i+1 < to && toks[i+1].kind == tokPunct {
		switch toks[i+1].text {
		case ".", "=", ":", ")", ",", ";":
			// module.exports, a property named "for", and similar.
			return false, ""
		}
	}
	return true, kw
}

func (p *parsed) isBodyBrace(j, from int) bool {
	if j == from {
		return true
	}
	prev := p.toks[j-1]
	if prev.kind == tokPunct || prev.kind == tokIdent {
		return !nonBodyPrefix[prev.text]
	}
	return true
}

func continuesBlock(t token) bool {
	return t.isIdent("else") || t.isIdent("catch") || t.isIdent("finally")
}

func canEnd(t token) bool {
	switch t.kind {
	case tokIdent:
		return !openKeywords[t.text]
	case tokPunct:
		switch t.text {
		case ")", "]", "}", "++", "--", ">":
			return true
		}
		return false
	}
	return true
}

func canStart(t token) bool {
	switch t.kind {
	case tokIdent:
		return !continuationKeywords[t.text]
	case tokString, tokTemplate, tokNumber:
		return true
	}
	return false
}

// stmtStart returns the source offset where s begins.
func (p *parsed) stmtStart(s statement) int {
	return p.toks[s.first].start
}

// stmtEnd returns the source offset just past s.
func (p *parsed) stmtEnd(s statement) int {
	return p.toks[s.last].end
}

// isImport reports whether s is an import declaration.
func (p *parsed) isImport(s statement) bool {
	t := p.toks[s.first]
	if !t.isIdent("import") {
		return false
	}
	if s.first+1 <= s.last {
		next := p.toks[s.first+1]
		if next.isPunct("(") || next.isPunct(".") {
			return false
		}
	}
	return true
}

// isDirective reports whether s is a string expression statement such as
// "use client".
func (p *parsed) isDirective(s statement) bool {
	if p.toks[s.first].kind != tokString {
		return false
	}
	return s.last == s.first || s.last == s.first+1 && p.toks[s.last].isPunct(";")
}

// functionDecl describes a function declaration statement.
type functionDecl struct {
	name          string
	defaultExport bool
	stmt          statement
}

// function returns the declaration details when s declares a function.
func (p *parsed) function(s statement) (functionDecl, bool) {
	toks := p.toks
	fn := functionDecl{stmt: s}
	i := s.first
	if toks[i].isIdent("export") {
		i++
		if i <= s.last && toks[i].isIdent("default") {
			fn.defaultExport = true
			i++
		}
	}
	if i <= s.last && toks[i].isIdent("async") {
		i++
	}
	if i > s.last || !toks[i].isIdent("function") {
		return functionDecl{}, false
	}
	i++
	if i <= s.last && toks[i].isPunct("*") {
		i++
	}
	if i <= s.last && toks[i].kind == tokIdent {
		fn.name = toks[i].text
	}
	if s.body < 0 {
		return functionDecl{}, false
	}
	return fn, true
}

// findFunction returns the top-level function declared as name.
func (p *parsed) findFunction(name string) (functionDecl, bool) {
	for _, s := range p.stmts {
		if fn, ok := p.function(s); ok && fn.name == name {
			return fn, true
		}
	}
	return functionDecl{}, false
}

// defaultExportFunction returns the function that is the default export,
// either declared inline or exported by name.
func (p *parsed) defaultExportFunction() (functionDecl, bool) {
	for _, s := range p.stmts {
		if fn, ok := p.function(s); ok && fn.defaultExport {
			return fn, true
		}
	}
	for _, s := range p.stmts {
		toks := p.toks
		if s.last-s.first < 2 || !toks[s.first].isIdent("export") || !toks[s.first+1].isIdent("default") {
			continue
		}
		target := toks[s.first+2]
		if target.kind != tokIdent {
			continue
		}
		if s.first+2 != s.last && !(s.first+3 == s.last && toks[s.last].isPunct(";")) {
			continue
		}
		if fn, ok := p.findFunction(target.text); ok {
			fn.defaultExport = true
			return fn, true
		}
	}
	return functionDecl{}, false
}

// bodyStatements splits the block of fn into statements.
func (p *parsed) bodyStatements(fn functionDecl) []statement {
	return p.split(fn.stmt.body+1, fn.stmt.bodyEnd)
}
