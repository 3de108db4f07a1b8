package parser

import "strings"

type Position struct {
	Offset int
	Line   int
	Column int
}

type Span struct {
	Start Position
	End   Position
}

// Join returns the smallest span covering s and other.
func (s Span) Join(other Span) Span {
	out := s
	if other.Start.Offset < out.Start.Offset {
		out.Start = other.Start
	}
	if other.End.Offset > out.End.Offset {
		out.End = other.End
	}
	return out
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenInlineHTML
	TokenOpenTag
	TokenCloseTag
	TokenWhitespace
	TokenComment
	TokenLineComment
	TokenDocComment
	TokenAttribute

	// Literals and names
	TokenIdent
	TokenVariable
	TokenIntLiteral
	TokenFloatLiteral
	TokenStringLiteral
	TokenTemplateString

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenAssign
	TokenDoubleArrow
	TokenArrow
	TokenNullsafeArrow
	TokenColonColon
	TokenEllipsis
	TokenAmpersand
	TokenQuestion
	TokenColon
	TokenMinus
	TokenPlus
	TokenPipe
	TokenOperator
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:            "EOF",
	TokenInlineHTML:     "InlineHTML",
	TokenOpenTag:        "OpenTag",
	TokenCloseTag:       "CloseTag",
	TokenWhitespace:     "Whitespace",
	TokenComment:        "Comment",
	TokenLineComment:    "LineComment",
	TokenDocComment:     "DocComment",
	TokenAttribute:      "Attribute",
	TokenIdent:          "Identifier",
	TokenVariable:       "Variable",
	TokenIntLiteral:     "IntLiteral",
	TokenFloatLiteral:   "FloatLiteral",
	TokenStringLiteral:  "StringLiteral",
	TokenTemplateString: "TemplateString",
	TokenLParen:         "(",
	TokenRParen:         ")",
	TokenLBrace:         "{",
	TokenRBrace:         "}",
	TokenLBracket:       "[",
	TokenRBracket:       "]",
	TokenSemicolon:      ";",
	TokenComma:          ",",
	TokenAssign:         "=",
	TokenDoubleArrow:    "=>",
	TokenArrow:          "->",
	TokenNullsafeArrow:  "?->",
	TokenColonColon:     "::",
	TokenEllipsis:       "...",
	TokenAmpersand:      "&",
	TokenQuestion:       "?",
	TokenColon:          ":",
	TokenMinus:          "-",
	TokenPlus:           "+",
	TokenPipe:           "|",
	TokenOperator:       "Operator",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

var punctuation = map[string]TokenKind{
	"(":   TokenLParen,
	")":   TokenRParen,
	"{":   TokenLBrace,
	"}":   TokenRBrace,
	"[":   TokenLBracket,
	"]":   TokenRBracket,
	";":   TokenSemicolon,
	",":   TokenComma,
	"=":   TokenAssign,
	"=>":  TokenDoubleArrow,
	"->":  TokenArrow,
	"?->": TokenNullsafeArrow,
	"::":  TokenColonColon,
	"...": TokenEllipsis,
	"&":   TokenAmpersand,
	"?":   TokenQuestion,
	":":   TokenColon,
	"-":   TokenMinus,
	"+":   TokenPlus,
	"|":   TokenPipe,
}

// operators lists multi-character operators, longest first within each
// leading character so the lexer can match greedily.
var operators = []string{
	"<=>", "**=", "...", "<<=", ">>=", "===", "!==", "??=", "?->",
	"++", "--", "->", "=>", "::", "==", "!=", "<>", "<=", ">=", "&&", "||",
	"??", "+=", "-=", "*=", "/=", ".=", "%=", "&=", "|=", "^=", "<<", ">>", "**",
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
	// Value is the decoded content of string literals.
	Value string
}

// Is reports whether t is the identifier or keyword word, compared
// case-insensitively as PHP does for keywords.
func (t Token) Is(word string) bool {
	return t.Kind == TokenIdent && strings.EqualFold(t.Literal, word)
}

// IsTrivia reports whether t carries no syntax: whitespace, comments,
// attributes and the markers around inline HTML.
func (t Token) IsTrivia() bool {
	switch t.Kind {
	case TokenWhitespace, TokenComment, TokenLineComment, TokenDocComment,
		TokenAttribute, TokenInlineHTML, TokenOpenTag:
		return true
	}
	return false
}
