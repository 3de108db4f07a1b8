package parser

import (
	"strings"
)

// ParseFile parses a PHP source file and extracts its declaration sites
// and plain function calls. It never fails: constructs it does not
// understand are skipped up to the end of the statement.
func ParseFile(path string, src []byte) *File {
	all := NewLexer(src).Tokenize()
	p := &parser{
		src:  src,
		all:  all,
		file: &File{Path: path, Source: src},
	}
	for i, tok := range all {
		if !tok.IsTrivia() {
			p.toks = append(p.toks, tok)
			p.idx = append(p.idx, i)
		}
	}

	p.parseBlock(scope{}, false)
	p.collectCalls()
	return p.file
}

type parser struct {
	src  []byte
	all  []Token // every token, trivia included
	toks []Token // significant tokens
	idx  []int   // toks[i] == all[idx[i]]
	pos  int
	file *File
}

type scope struct {
	class   string
	inClass bool
	fn      *FunctionDecl
}

func (p *parser) peek() Token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		end := Position{Offset: len(p.src)}
		if len(p.toks) > 0 {
			end = p.toks[len(p.toks)-1].Span.End
		}
		return Token{Kind: TokenEOF, Span: Span{Start: end, End: end}}
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *parser) atEOF() bool {
	return p.pos >= len(p.toks)
}

// docBefore returns the documentation block immediately preceding the
// significant token at index i. Only whitespace, comments and attributes
// may separate the two.
func (p *parser) docBefore(i int) *Doc {
	if i >= len(p.idx) {
		return nil
	}
	for j := p.idx[i] - 1; j >= 0; j-- {
		tok := p.all[j]
		switch tok.Kind {
		case TokenDocComment:
			return &Doc{Text: tok.Literal, Span: tok.Span}
		case TokenWhitespace, TokenComment, TokenLineComment, TokenAttribute:
			continue
		}
		return nil
	}
	return nil
}

func (p *parser) addSite(s Site) {
	p.file.sites = append(p.file.sites, s)
}

func (p *parser) parseBlock(sc scope, braced bool) {
	for !p.atEOF() {
		if braced && p.peek().Kind == TokenRBrace {
			p.next()
			return
		}
		start := p.pos
		if sc.inClass {
			p.parseMember(sc)
		} else {
			p.parseStatement(sc)
		}
		if p.pos == start {
			p.next()
		}
	}
}

func (p *parser) parseStatement(sc scope) {
	tok := p.peek()

	switch {
	case tok.Kind == TokenSemicolon || tok.Kind == TokenCloseTag:
		p.next()
	case tok.Kind == TokenRBrace:
		p.next()
	case tok.Kind == TokenLBrace:
		p.next()
		p.parseBlock(sc, true)

	case tok.Is("namespace"):
		p.next()
		for p.peek().Kind == TokenIdent {
			p.next()
		}
		if p.peek().Kind == TokenLBrace {
			p.next()
			p.parseBlock(sc, true)
		}

	case p.isClassLike():
		p.parseClassLike()

	case tok.Is("function") && p.isNamedFunction():
		p.parseFunction(sc)

	case tok.Kind == TokenVariable && p.peekAt(1).Kind == TokenAssign:
		p.parseAssign(sc)

	case tok.Is("return") && sc.fn != nil:
		p.parseReturn(sc)

	case tok.Is("if") || tok.Is("elseif") || tok.Is("while") || tok.Is("for") ||
		tok.Is("foreach") || tok.Is("switch") || tok.Is("catch") || tok.Is("declare"):
		p.next()
		if p.peek().Kind == TokenLParen {
			p.skipGroup()
		}
		p.parseBody(sc)

	case tok.Is("else") || tok.Is("do") || tok.Is("try") || tok.Is("finally"):
		p.next()
		p.parseBody(sc)

	case tok.Is("case") || tok.Is("default") && p.peekAt(1).Kind == TokenColon:
		p.next()
		p.scanUntil(func(t Token) bool { return t.Kind == TokenColon || t.Kind == TokenSemicolon })
		p.next()

	default:
		tokens := p.scanExpr(false)
		if sc.fn != nil && containsYield(tokens) {
			sc.fn.Generator = true
		}
		if k := p.peek().Kind; k == TokenSemicolon || k == TokenCloseTag {
			p.next()
		}
	}
}

// parseBody parses the body of a control structure: a block, a single
// statement, or nothing for the alternative syntax "if (...):".
func (p *parser) parseBody(sc scope) {
	if p.peek().Kind == TokenColon {
		p.next()
		return
	}
	if p.atEOF() {
		return
	}
	p.parseStatement(sc)
}

func (p *parser) isClassLike() bool {
	for i := 0; ; i++ {
		tok := p.peekAt(i)
		switch {
		case tok.Is("abstract") || tok.Is("final") || tok.Is("readonly"):
			continue
		case tok.Is("class") || tok.Is("interface") || tok.Is("trait") || tok.Is("enum"):
			return p.peekAt(i+1).Kind == TokenIdent
		}
		return false
	}
}

func (p *parser) isNamedFunction() bool {
	next := p.peekAt(1)
	if next.Kind == TokenAmpersand {
		next = p.peekAt(2)
	}
	return next.Kind == TokenIdent
}

func (p *parser) parseClassLike() {
	for !p.peek().Is("class") && !p.peek().Is("interface") && !p.peek().Is("trait") && !p.peek().Is("enum") {
		p.next()
	}
	p.next()
	name := p.next().Literal

	for !p.atEOF() && p.peek().Kind != TokenLBrace {
		if p.peek().Kind == TokenSemicolon {
			return
		}
		p.next()
	}
	if p.atEOF() {
		return
	}
	p.next()
	p.parseBlock(scope{class: name, inClass: true}, true)
}

var memberModifiers = []string{"public", "private", "protected", "static", "readonly", "abstract", "final", "var"}

func isModifier(tok Token) bool {
	for _, m := range memberModifiers {
		if tok.Is(m) {
			return true
		}
	}
	return false
}

func (p *parser) parseMember(sc scope) {
	start := p.pos
	tok := p.peek()

	switch {
	case tok.Kind == TokenSemicolon:
		p.next()
		return
	case tok.Is("use") || tok.Is("case"):
		for !p.atEOF() {
			t := p.next()
			if t.Kind == TokenSemicolon {
				return
			}
			if t.Kind == TokenLBrace {
				p.pos--
				p.skipGroup()
				return
			}
		}
		return
	}

	static := false
	for isModifier(p.peek()) {
		if p.peek().Is("static") {
			static = true
		}
		p.next()
		// asymmetric visibility: private(set)
		if p.peek().Kind == TokenLParen {
			p.skipGroup()
		}
	}

	switch {
	case p.peek().Is("const"):
		p.scanUntil(func(t Token) bool { return t.Kind == TokenSemicolon })
		p.next()
		return
	case p.peek().Is("function"):
		p.parseFunctionAt(sc, start)
		return
	}

	typeTokens := p.scanType(func(t Token) bool {
		return t.Kind == TokenVariable || t.Kind == TokenSemicolon || t.Kind == TokenLBrace || t.Kind == TokenRBrace
	})
	if p.peek().Kind != TokenVariable {
		return
	}

	decl := &PropertyDecl{
		Doc:    p.docBefore(start),
		Class:  sc.class,
		Type:   p.typeHint(typeTokens),
		Static: static,
		Pos:    Span{Start: p.toks[start].Span.Start},
	}
	p.addSite(decl)

	for p.peek().Kind == TokenVariable {
		v := p.next()
		el := &PropertyElement{Name: v.Literal[1:], Pos: v.Span}
		if p.peek().Kind == TokenAssign {
			p.next()
			el.Default = parseExprTokens(p.scanExpr(true), p.src, 0)
		}
		if p.peek().Kind == TokenLBrace {
			p.skipGroup()
		}
		decl.Elements = append(decl.Elements, el)
		decl.Pos.End = p.peekAt(-1).Span.End
		if p.peek().Kind != TokenComma {
			break
		}
		p.next()
	}
	if p.peek().Kind == TokenSemicolon {
		p.next()
	}
}

func (p *parser) parseFunction(sc scope) {
	p.parseFunctionAt(sc, p.pos)
}

// parseFunctionAt parses a function whose declaration, modifiers
// included, begins at token start. The current token is "function".
func (p *parser) parseFunctionAt(sc scope, start int) {
	p.next()
	if p.peek().Kind == TokenAmpersand {
		p.next()
	}
	name := p.next()

	fn := &FunctionDecl{
		Doc:   p.docBefore(start),
		Name:  name.Literal,
		Class: sc.class,
		Pos:   name.Span,
	}
	p.addSite(fn)

	if p.peek().Kind == TokenLParen {
		p.next()
		p.parseParams(fn)
	}

	if p.peek().Kind == TokenColon {
		p.next()
		fn.Result = p.typeHint(p.scanType(func(t Token) bool {
			return t.Kind == TokenLBrace || t.Kind == TokenSemicolon
		}))
	}

	switch p.peek().Kind {
	case TokenLBrace:
		p.next()
		p.parseBlock(scope{class: sc.class, fn: fn}, true)
	case TokenSemicolon:
		p.next()
		fn.Abstract = true
	}
}

func (p *parser) parseParams(fn *FunctionDecl) {
	for !p.atEOF() {
		if p.peek().Kind == TokenRParen {
			p.next()
			return
		}

		param := &Param{}
		for isModifier(p.peek()) {
			param.Promoted = true
			p.next()
			if p.peek().Kind == TokenLParen {
				p.skipGroup()
			}
		}

		typeTokens := p.scanType(func(t Token) bool {
			switch t.Kind {
			case TokenVariable, TokenEllipsis, TokenComma, TokenRParen:
				return true
			case TokenAmpersand:
				next := p.peekAt(1).Kind
				return next == TokenVariable || next == TokenEllipsis
			}
			return false
		})
		param.Type = p.typeHint(typeTokens)

		if p.peek().Kind == TokenAmpersand {
			param.ByRef = true
			p.next()
		}
		if p.peek().Kind == TokenEllipsis {
			param.Variadic = true
			p.next()
		}
		if p.peek().Kind == TokenVariable {
			v := p.next()
			param.Name = v.Literal[1:]
			param.Pos = v.Span
		}
		if p.peek().Kind == TokenAssign {
			p.next()
			param.Default = parseExprTokens(p.scanExpr(true), p.src, 0)
		}
		if param.Name != "" {
			fn.Params = append(fn.Params, param)
		}

		p.scanUntil(func(t Token) bool { return t.Kind == TokenComma || t.Kind == TokenRParen })
		if p.peek().Kind == TokenComma {
			p.next()
		}
	}
}

func (p *parser) parseAssign(sc scope) {
	start := p.pos
	v := p.next()
	p.next()
	value := p.scanExpr(false)
	if sc.fn != nil && containsYield(value) {
		sc.fn.Generator = true
	}

	stmt := &AssignStmt{
		Doc:   p.docBefore(start),
		Var:   v.Literal[1:],
		Value: parseExprTokens(value, p.src, 0),
		Pos:   v.Span,
	}
	if len(value) > 0 {
		stmt.Pos.End = value[len(value)-1].Span.End
	}
	p.addSite(stmt)

	if k := p.peek().Kind; k == TokenSemicolon || k == TokenCloseTag {
		p.next()
	}
}

func (p *parser) parseReturn(sc scope) {
	ret := p.next()
	value := p.scanExpr(false)
	if containsYield(value) {
		sc.fn.Generator = true
	}

	stmt := &ReturnStmt{Pos: ret.Span}
	if len(value) > 0 {
		stmt.Value = parseExprTokens(value, p.src, 0)
		stmt.Pos = stmt.Value.Span()
	}
	sc.fn.Returns = append(sc.fn.Returns, stmt)

	if k := p.peek().Kind; k == TokenSemicolon || k == TokenCloseTag {
		p.next()
	}
}

// scanExpr consumes an expression up to, but excluding, a statement
// terminator or an unbalanced closing bracket. With stopAtComma set a
// top-level comma also ends the expression.
func (p *parser) scanExpr(stopAtComma bool) []Token {
	start := p.pos
	depth := 0
	for !p.atEOF() {
		tok := p.peek()
		if depth == 0 {
			switch tok.Kind {
			case TokenSemicolon, TokenCloseTag, TokenRParen, TokenRBracket, TokenRBrace:
				return p.toks[start:p.pos]
			case TokenComma:
				if stopAtComma {
					return p.toks[start:p.pos]
				}
			}
		}
		switch tok.Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			depth--
		}
		p.next()
	}
	return p.toks[start:p.pos]
}

// scanType consumes a native type declaration up to a token matching stop
// outside parentheses.
func (p *parser) scanType(stop func(Token) bool) []Token {
	start := p.pos
	depth := 0
	for !p.atEOF() {
		tok := p.peek()
		if depth == 0 && stop(tok) {
			break
		}
		switch tok.Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
		case TokenSemicolon, TokenLBrace, TokenRBrace:
			return p.toks[start:p.pos]
		}
		p.next()
	}
	return p.toks[start:p.pos]
}

// scanUntil skips tokens until one matching stop at bracket depth zero.
func (p *parser) scanUntil(stop func(Token) bool) {
	depth := 0
	for !p.atEOF() {
		tok := p.peek()
		if depth == 0 && stop(tok) {
			return
		}
		switch tok.Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			if depth == 0 {
				return
			}
			depth--
		}
		p.next()
	}
}

// skipGroup skips a bracketed group starting at the current token.
func (p *parser) skipGroup() {
	if end := matching(p.toks, p.pos); end >= 0 {
		p.pos = end + 1
		return
	}
	p.pos = len(p.toks)
}

func (p *parser) typeHint(tokens []Token) *TypeHint {
	if len(tokens) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Literal)
	}
	return &TypeHint{
		Text: sb.String(),
		Span: Span{Start: tokens[0].Span.Start, End: tokens[len(tokens)-1].Span.End},
	}
}

// containsYield reports whether tokens use yield outside nested closures.
func containsYield(tokens []Token) bool {
	depth := 0
	closureDepth := -1
	pending := false
	for _, tok := range tokens {
		switch {
		case tok.Is("function") || tok.Is("fn"):
			pending = true
		case tok.Kind == TokenLBrace:
			depth++
			if pending && closureDepth < 0 {
				closureDepth = depth
			}
			pending = false
		case tok.Kind == TokenRBrace:
			if depth == closureDepth {
				closureDepth = -1
			}
			depth--
		case tok.Is("yield"):
			if closureDepth < 0 && !pending {
				return true
			}
		}
	}
	return false
}

var notCallable = map[string]bool{
	"if": true, "elseif": true, "while": true, "for": true, "foreach": true,
	"switch": true, "match": true, "catch": true, "declare": true, "array": true,
	"list": true, "isset": true, "empty": true, "unset": true, "exit": true,
	"die": true, "eval": true, "echo": true, "print": true, "return": true,
	"include": true, "include_once": true, "require": true, "require_once": true,
	"function": true, "fn": true, "use": true, "new": true, "clone": true,
	"yield": true, "static": true, "self": true, "parent": true, "and": true,
	"or": true, "xor": true, "instanceof": true, "throw": true, "case": true,
}

func (p *parser) collectCalls() {
	for i := 0; i+1 < len(p.toks); i++ {
		tok := p.toks[i]
		if tok.Kind != TokenIdent || p.toks[i+1].Kind != TokenLParen {
			continue
		}
		if notCallable[strings.ToLower(tok.Literal)] {
			continue
		}
		if i > 0 {
			prev := p.toks[i-1]
			switch {
			case prev.Kind == TokenArrow || prev.Kind == TokenNullsafeArrow || prev.Kind == TokenColonColon:
				continue
			case prev.Is("function") || prev.Is("fn") || prev.Is("new"):
				continue
			case prev.Kind == TokenAmpersand && i > 1 && p.toks[i-2].Is("function"):
				continue
			}
		}

		closing := matching(p.toks, i+1)
		if closing < 0 {
			continue
		}
		inner := p.toks[i+2 : closing]
		if len(inner) == 1 && inner[0].Kind == TokenEllipsis {
			continue
		}

		call := &CallExpr{
			Name: tok.Literal,
			Pos:  Span{Start: tok.Span.Start, End: p.toks[closing].Span.End},
		}
		if len(inner) > 0 {
			for _, part := range splitTokens(inner, TokenComma) {
				if len(part) == 0 {
					continue
				}
				arg := &Argument{}
				if len(part) > 2 && part[0].Kind == TokenIdent && part[1].Kind == TokenColon {
					arg.Name = part[0].Literal
					part = part[2:]
				}
				if part[0].Kind == TokenEllipsis {
					arg.Spread = true
					part = part[1:]
				}
				arg.Value = parseExprTokens(part, p.src, 0)
				call.Args = append(call.Args, arg)
			}
		}
		p.file.calls = append(p.file.calls, call)
	}
}
