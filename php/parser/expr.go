package parser

import (
	"strconv"
	"strings"
)

// maxExprDepth bounds nested array literals and parentheses.
const maxExprDepth = 64

// Expr is the interface implemented by the expression nodes the analyzer
// can classify. Everything else is an OtherExpr.
type Expr interface {
	Span() Span
	expr()
}

type node struct {
	span Span
}

func (n node) Span() Span { return n.span }
func (node) expr()        {}

// IntLit is an integer literal. Unary minus is folded into Value.
type IntLit struct {
	node
	Text  string
	Value int64
}

// FloatLit is a floating point literal, including integers too large for int.
type FloatLit struct {
	node
	Text  string
	Value float64
}

// StringLit is a quoted string, heredoc or nowdoc. Value is only
// meaningful when Interpolated is false.
type StringLit struct {
	node
	Value        string
	Interpolated bool
}

type BoolLit struct {
	node
	Value bool
}

type NullLit struct {
	node
}

// ArrayLit is a [...] or array(...) literal.
type ArrayLit struct {
	node
	Entries []*ArrayEntry
}

// ArrayEntry is one element of an array literal. Key is nil for entries
// without an explicit key. Spread entries (...$x) have no key.
type ArrayEntry struct {
	Key    Expr
	Value  Expr
	Spread bool
	ByRef  bool
}

// Span returns the span of the entry, from its key to its value.
func (e *ArrayEntry) Span() Span {
	if e.Key != nil {
		return e.Key.Span().Join(e.Value.Span())
	}
	return e.Value.Span()
}

// NewExpr is an object construction. Class is the name as written.
type NewExpr struct {
	node
	Class string
}

// OtherExpr is any expression that is not classified further.
type OtherExpr struct {
	node
	Text string
}

// ParseExpr parses a standalone PHP expression such as "[1, 'a' => true]".
func ParseExpr(src string) Expr {
	var tokens []Token
	for _, tok := range NewCodeLexer([]byte(src)).Tokenize() {
		if !tok.IsTrivia() {
			tokens = append(tokens, tok)
		}
	}
	return parseExprTokens(tokens, []byte(src), 0)
}

// parseExprTokens classifies the expression spanning exactly tokens.
func parseExprTokens(tokens []Token, src []byte, depth int) Expr {
	if len(tokens) == 0 {
		return &OtherExpr{}
	}
	span := Span{Start: tokens[0].Span.Start, End: tokens[len(tokens)-1].Span.End}
	other := &OtherExpr{node: node{span}, Text: textOf(src, span)}
	if depth >= maxExprDepth {
		return other
	}

	first := tokens[0]
	switch {
	case len(tokens) == 1:
		if e := parseAtom(first); e != nil {
			return e
		}

	case len(tokens) == 2 && (first.Kind == TokenMinus || first.Kind == TokenPlus):
		if e := parseAtom(tokens[1]); e != nil {
			return signed(e, first.Kind == TokenMinus, span)
		}

	case first.Kind == TokenLBracket:
		if closing := matching(tokens, 0); closing == len(tokens)-1 {
			return parseArray(tokens[1:closing], src, span, depth)
		}

	case first.Is("array") && len(tokens) >= 3 && tokens[1].Kind == TokenLParen:
		if closing := matching(tokens, 1); closing == len(tokens)-1 {
			return parseArray(tokens[2:closing], src, span, depth)
		}

	case first.Kind == TokenLParen:
		if closing := matching(tokens, 0); closing == len(tokens)-1 && closing > 1 {
			inner := parseExprTokens(tokens[1:closing], src, depth+1)
			if !isCast(tokens[1:closing]) {
				return inner
			}
		}

	case first.Is("new") && len(tokens) >= 2 && tokens[1].Kind == TokenIdent:
		rest := tokens[2:]
		if len(rest) == 0 || rest[0].Kind == TokenLParen && matching(rest, 0) == len(rest)-1 {
			if tokens[1].Is("class") {
				return other
			}
			return &NewExpr{node: node{span}, Class: tokens[1].Literal}
		}
	}
	return other
}

func parseAtom(tok Token) Expr {
	sp := node{tok.Span}
	switch tok.Kind {
	case TokenIntLiteral:
		return intLiteral(tok.Literal, sp)
	case TokenFloatLiteral:
		v, _ := strconv.ParseFloat(strings.ReplaceAll(tok.Literal, "_", ""), 64)
		return &FloatLit{node: sp, Text: tok.Literal, Value: v}
	case TokenStringLiteral:
		return &StringLit{node: sp, Value: tok.Value}
	case TokenTemplateString:
		return &StringLit{node: sp, Value: tok.Value, Interpolated: true}
	case TokenIdent:
		switch strings.ToLower(strings.TrimPrefix(tok.Literal, "\\")) {
		case "true":
			return &BoolLit{node: sp, Value: true}
		case "false":
			return &BoolLit{node: sp, Value: false}
		case "null":
			return &NullLit{node: sp}
		}
	}
	return nil
}

// intLiteral converts PHP integer syntax. Literals that overflow int64
// become floats, as they do at runtime.
func intLiteral(text string, sp node) Expr {
	clean := strings.ReplaceAll(text, "_", "")
	if len(clean) > 1 && clean[0] == '0' && isDigit(clean[1]) {
		clean = "0o" + clean[1:]
	}
	v, err := strconv.ParseInt(clean, 0, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(clean, 0, 64)
		f := float64(u)
		if uerr != nil {
			f, _ = strconv.ParseFloat(clean, 64)
		}
		return &FloatLit{node: sp, Text: text, Value: f}
	}
	return &IntLit{node: sp, Text: text, Value: v}
}

func signed(e Expr, negative bool, span Span) Expr {
	switch lit := e.(type) {
	case *IntLit:
		out := *lit
		out.span = span
		if negative {
			out.Text = "-" + lit.Text
			out.Value = -lit.Value
		}
		return &out
	case *FloatLit:
		out := *lit
		out.span = span
		if negative {
			out.Text = "-" + lit.Text
			out.Value = -lit.Value
		}
		return &out
	}
	return &OtherExpr{node: node{span}}
}

func parseArray(tokens []Token, src []byte, span Span, depth int) Expr {
	arr := &ArrayLit{node: node{span}}
	for _, part := range splitTokens(tokens, TokenComma) {
		if len(part) == 0 {
			continue
		}
		entry := &ArrayEntry{}
		if part[0].Kind == TokenEllipsis {
			entry.Spread = true
			part = part[1:]
		}
		if arrow := indexTopLevel(part, TokenDoubleArrow); arrow >= 0 && !entry.Spread {
			entry.Key = parseExprTokens(part[:arrow], src, depth+1)
			part = part[arrow+1:]
		}
		if len(part) > 0 && part[0].Kind == TokenAmpersand {
			entry.ByRef = true
			part = part[1:]
		}
		entry.Value = parseExprTokens(part, src, depth+1)
		arr.Entries = append(arr.Entries, entry)
	}
	return arr
}

func isCast(tokens []Token) bool {
	if len(tokens) != 1 || tokens[0].Kind != TokenIdent {
		return false
	}
	switch strings.ToLower(tokens[0].Literal) {
	case "int", "integer", "bool", "boolean", "float", "double", "real",
		"string", "binary", "array", "object", "unset":
		return true
	}
	return false
}

// matching returns the index of the token closing the bracket at open, or -1.
func matching(tokens []Token, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			depth--
			if depth == 0 {
				return i
			}
			if depth < 0 {
				return -1
			}
		}
	}
	return -1
}

// splitTokens splits tokens at sep occurring outside brackets.
func splitTokens(tokens []Token, sep TokenKind) [][]Token {
	var parts [][]Token
	depth := 0
	start := 0
	for i, tok := range tokens {
		switch tok.Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, tokens[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, tokens[start:])
}

func indexTopLevel(tokens []Token, kind TokenKind) int {
	depth := 0
	for i, tok := range tokens {
		switch tok.Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			depth--
		case kind:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func textOf(src []byte, span Span) string {
	if span.Start.Offset < 0 || span.End.Offset > len(src) || span.Start.Offset > span.End.Offset {
		return ""
	}
	return string(src[span.Start.Offset:span.End.Offset])
}
