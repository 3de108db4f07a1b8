package parser

import (
	"testing"
)

func significant(src string) []Token {
	var out []Token
	for _, tok := range NewLexer([]byte(src)).Tokenize() {
		if !tok.IsTrivia() {
			out = append(out, tok)
		}
	}
	return out
}

func TestLexerInlineHTMLAndTags(t *testing.T) {
	tokens := NewLexer([]byte("<h1>Hi</h1>\n<?php echo 1; ?>\n<p>bye</p>")).Tokenize()

	kinds := []TokenKind{
		TokenInlineHTML, TokenOpenTag, TokenWhitespace, TokenIdent, TokenWhitespace,
		TokenIntLiteral, TokenSemicolon, TokenWhitespace, TokenCloseTag, TokenInlineHTML,
	}
	if len(tokens) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(kinds), len(tokens), tokens)
	}
	for i, kind := range kinds {
		if tokens[i].Kind != kind {
			t.Errorf("token %d: expected %s, got %s (%q)", i, kind, tokens[i].Kind, tokens[i].Literal)
		}
	}
}

func TestLexerComments(t *testing.T) {
	tests := []struct {
		src  string
		kind TokenKind
	}{
		{"// line", TokenLineComment},
		{"# hash", TokenLineComment},
		{"/* block */", TokenComment},
		{"/**/", TokenComment},
		{"/** doc */", TokenDocComment},
		{"#[Attr(1, [2])]", TokenAttribute},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens := NewCodeLexer([]byte(tt.src)).Tokenize()
			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d: %+v", len(tokens), tokens)
			}
			if tokens[0].Kind != tt.kind {
				t.Errorf("expected %s, got %s", tt.kind, tokens[0].Kind)
			}
		})
	}
}

func TestLexerLineCommentStopsAtCloseTag(t *testing.T) {
	tokens := NewLexer([]byte("<?php // note ?>html")).Tokenize()
	last := tokens[len(tokens)-1]
	if last.Kind != TokenInlineHTML || last.Literal != "html" {
		t.Errorf("expected trailing inline HTML, got %s %q", last.Kind, last.Literal)
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		src   string
		kind  TokenKind
		value string
	}{
		{`'it\'s'`, TokenStringLiteral, "it's"},
		{`'a\nb'`, TokenStringLiteral, `a\nb`},
		{`"a\tb"`, TokenStringLiteral, "a\tb"},
		{`"hello $name"`, TokenTemplateString, "hello $name"},
		{`"cost: \$5"`, TokenStringLiteral, "cost: $5"},
		{`"{$x}"`, TokenTemplateString, "{$x}"},
		{"<<<EOT\n  one\n  two\n  EOT", TokenStringLiteral, "one\ntwo"},
		{"<<<'EOT'\n$raw\nEOT", TokenStringLiteral, "$raw"},
		{"<<<\"EOT\"\nhi $x\nEOT", TokenTemplateString, "hi $x"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens := NewCodeLexer([]byte(tt.src)).Tokenize()
			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d: %+v", len(tokens), tokens)
			}
			if tokens[0].Kind != tt.kind {
				t.Errorf("expected %s, got %s", tt.kind, tokens[0].Kind)
			}
			if tokens[0].Value != tt.value {
				t.Errorf("expected value %q, got %q", tt.value, tokens[0].Value)
			}
		})
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		src  string
		kind TokenKind
	}{
		{"42", TokenIntLiteral},
		{"1_000", TokenIntLiteral},
		{"0x1F", TokenIntLiteral},
		{"0b101", TokenIntLiteral},
		{"0o17", TokenIntLiteral},
		{"1.5", TokenFloatLiteral},
		{".5", TokenFloatLiteral},
		{"1e10", TokenFloatLiteral},
		{"2.5E-3", TokenFloatLiteral},
	}

	for _, tt := range tests {
		tokens := NewCodeLexer([]byte(tt.src)).Tokenize()
		if len(tokens) != 1 || tokens[0].Kind != tt.kind {
			t.Errorf("%s: expected single %s, got %+v", tt.src, tt.kind, tokens)
		}
	}
}

func TestLexerNamesAndOperators(t *testing.T) {
	tokens := significant(`<?php $a?->b(\Foo\Bar::C, ...$rest) => $x ?? [1];`)

	want := []struct {
		kind    TokenKind
		literal string
	}{
		{TokenVariable, "$a"},
		{TokenNullsafeArrow, "?->"},
		{TokenIdent, "b"},
		{TokenLParen, "("},
		{TokenIdent, `\Foo\Bar`},
		{TokenColonColon, "::"},
		{TokenIdent, "C"},
		{TokenComma, ","},
		{TokenEllipsis, "..."},
		{TokenVariable, "$rest"},
		{TokenRParen, ")"},
		{TokenDoubleArrow, "=>"},
		{TokenVariable, "$x"},
		{TokenOperator, "??"},
		{TokenLBracket, "["},
		{TokenIntLiteral, "1"},
		{TokenRBracket, "]"},
		{TokenSemicolon, ";"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Kind != w.kind || tokens[i].Literal != w.literal {
			t.Errorf("token %d: expected %s %q, got %s %q", i, w.kind, w.literal, tokens[i].Kind, tokens[i].Literal)
		}
	}
}

func TestLexerPositions(t *testing.T) {
	tokens := significant("<?php\n\n  $value = 1;")
	v := tokens[0]
	if v.Span.Start.Line != 3 || v.Span.Start.Column != 3 {
		t.Errorf("expected 3:3, got %d:%d", v.Span.Start.Line, v.Span.Start.Column)
	}
	if v.Span.Start.Offset != 9 {
		t.Errorf("expected offset 9, got %d", v.Span.Start.Offset)
	}
	one := tokens[2]
	if one.Span.Start.Column != 12 {
		t.Errorf("expected column 12, got %d", one.Span.Start.Column)
	}
}
