package parser

import (
	"bytes"
	"strings"
)

type Lexer struct {
	input  []byte
	pos    int
	line   int
	column int
	inPHP  bool
}

// NewLexer returns a lexer for a complete PHP file, which starts in inline
// HTML until the first open tag.
func NewLexer(input []byte) *Lexer {
	return &Lexer{input: input, line: 1, column: 1}
}

// NewCodeLexer returns a lexer that starts directly in PHP code.
func NewCodeLexer(input []byte) *Lexer {
	l := NewLexer(input)
	l.inPHP = true
	return l
}

// Tokenize returns all tokens up to and excluding EOF.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Kind == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) Position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) hasPrefix(s string) bool {
	return bytes.HasPrefix(l.input[l.pos:], []byte(s))
}

func (l *Lexer) hasPrefixFold(s string) bool {
	if l.pos+len(s) > len(l.input) {
		return false
	}
	return strings.EqualFold(string(l.input[l.pos:l.pos+len(s)]), s)
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

func (l *Lexer) NextToken() Token {
	startPos := l.Position()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Span: Span{Start: startPos, End: startPos}}
	}

	if !l.inPHP {
		return l.scanInlineHTML(startPos)
	}

	ch := l.peek()

	if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
		for isSpace(l.peek()) {
			l.advance()
		}
		return l.token(TokenWhitespace, startPos)
	}

	if ch == '?' && l.peekN(1) == '>' {
		l.advanceN(2)
		if l.peek() == '\n' {
			l.advance()
		}
		l.inPHP = false
		return l.token(TokenCloseTag, startPos)
	}

	if ch == '#' && l.peekN(1) == '[' {
		return l.scanAttribute(startPos)
	}
	if ch == '#' || ch == '/' && l.peekN(1) == '/' {
		return l.scanLineComment(startPos)
	}
	if ch == '/' && l.peekN(1) == '*' {
		return l.scanBlockComment(startPos)
	}

	if ch == '$' && isNameStart(l.peekN(1)) {
		l.advance()
		for isNamePart(l.peek()) {
			l.advance()
		}
		return l.token(TokenVariable, startPos)
	}

	if isNameStart(ch) || ch == '\\' && isNameStart(l.peekN(1)) {
		return l.scanName(startPos)
	}

	if isDigit(ch) || ch == '.' && isDigit(l.peekN(1)) {
		return l.scanNumber(startPos)
	}

	if ch == '\'' {
		return l.scanSingleQuoted(startPos)
	}
	if ch == '"' {
		return l.scanDoubleQuoted(startPos)
	}
	if ch == '`' {
		l.advance()
		for l.peek() != 0 && l.peek() != '`' {
			if l.peek() == '\\' {
				l.advance()
			}
			l.advance()
		}
		l.advance()
		return l.token(TokenTemplateString, startPos)
	}
	if l.hasPrefix("<<<") {
		if tok, ok := l.scanHeredoc(startPos); ok {
			return tok
		}
	}

	return l.scanOperator(startPos)
}

func (l *Lexer) scanInlineHTML(start Position) Token {
	if l.hasPrefixFold("<?php") && (l.pos+5 == len(l.input) || isSpace(l.peekN(5))) {
		l.advanceN(5)
		l.inPHP = true
		return l.token(TokenOpenTag, start)
	}
	if l.hasPrefix("<?=") {
		l.advanceN(3)
		l.inPHP = true
		return l.token(TokenOpenTag, start)
	}
	if l.hasPrefix("<?") {
		l.advanceN(2)
		l.inPHP = true
		return l.token(TokenOpenTag, start)
	}

	for l.pos < len(l.input) && !l.hasPrefix("<?") {
		l.advance()
	}
	return l.token(TokenInlineHTML, start)
}

func (l *Lexer) scanAttribute(start Position) Token {
	l.advanceN(2)
	depth := 1
	for l.peek() != 0 && depth > 0 {
		switch l.peek() {
		case '[':
			depth++
		case ']':
			depth--
		case '\'', '"':
			l.skipQuoted(l.peek())
			continue
		}
		l.advance()
	}
	return l.token(TokenAttribute, start)
}

func (l *Lexer) skipQuoted(quote byte) {
	l.advance()
	for l.peek() != 0 && l.peek() != quote {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	l.advance()
}

// scanLineComment stops before a newline or a closing tag.
func (l *Lexer) scanLineComment(start Position) Token {
	for l.peek() != 0 && l.peek() != '\n' {
		if l.peek() == '?' && l.peekN(1) == '>' {
			break
		}
		l.advance()
	}
	return l.token(TokenLineComment, start)
}

func (l *Lexer) scanBlockComment(start Position) Token {
	kind := TokenComment
	if l.hasPrefix("/**") && !l.hasPrefix("/**/") {
		kind = TokenDocComment
	}
	l.advanceN(2)
	for l.peek() != 0 {
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			break
		}
		l.advance()
	}
	return l.token(kind, start)
}

// scanName scans identifiers, keywords and qualified names such as \Foo\Bar.
func (l *Lexer) scanName(start Position) Token {
	for {
		if l.peek() == '\\' && isNameStart(l.peekN(1)) {
			l.advance()
			continue
		}
		if !isNamePart(l.peek()) {
			break
		}
		l.advance()
	}
	return l.token(TokenIdent, start)
}

func (l *Lexer) scanNumber(start Position) Token {
	if l.peek() == '0' {
		switch l.peekN(1) {
		case 'x', 'X':
			l.advanceN(2)
			for isHexDigit(l.peek()) || l.peek() == '_' {
				l.advance()
			}
			return l.token(TokenIntLiteral, start)
		case 'b', 'B':
			l.advanceN(2)
			for l.peek() == '0' || l.peek() == '1' || l.peek() == '_' {
				l.advance()
			}
			return l.token(TokenIntLiteral, start)
		case 'o', 'O':
			l.advanceN(2)
			for l.peek() >= '0' && l.peek() <= '7' || l.peek() == '_' {
				l.advance()
			}
			return l.token(TokenIntLiteral, start)
		}
	}

	isFloat := false
	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	if l.peek() == '.' && l.peekN(1) != '.' {
		isFloat = true
		l.advance()
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}
	if (l.peek() == 'e' || l.peek() == 'E') &&
		(isDigit(l.peekN(1)) || (l.peekN(1) == '+' || l.peekN(1) == '-') && isDigit(l.peekN(2))) {
		isFloat = true
		l.advanceN(2)
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	if isFloat {
		return l.token(TokenFloatLiteral, start)
	}
	return l.token(TokenIntLiteral, start)
}

func (l *Lexer) scanSingleQuoted(start Position) Token {
	l.advance()
	var sb strings.Builder
	for l.peek() != 0 && l.peek() != '\'' {
		if l.peek() == '\\' && (l.peekN(1) == '\'' || l.peekN(1) == '\\') {
			l.advance()
		}
		sb.WriteByte(l.advance())
	}
	l.advance()
	tok := l.token(TokenStringLiteral, start)
	tok.Value = sb.String()
	return tok
}

func (l *Lexer) scanDoubleQuoted(start Position) Token {
	l.advance()
	begin := l.pos
	for l.peek() != 0 && l.peek() != '"' {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	body := string(l.input[begin:l.pos])
	l.advance()

	kind := TokenStringLiteral
	if hasInterpolation(body) {
		kind = TokenTemplateString
	}
	tok := l.token(kind, start)
	tok.Value = unescapeDouble(body, '"')
	return tok
}

// scanHeredoc scans <<<ID, <<<"ID" and <<<'ID' strings. The closing
// marker's indentation is removed from every body line.
func (l *Lexer) scanHeredoc(start Position) (Token, bool) {
	i := l.pos + 3
	for i < len(l.input) && (l.input[i] == ' ' || l.input[i] == '\t') {
		i++
	}
	nowdoc := false
	quote := byte(0)
	if i < len(l.input) && (l.input[i] == '\'' || l.input[i] == '"') {
		quote = l.input[i]
		nowdoc = quote == '\''
		i++
	}
	idStart := i
	for i < len(l.input) && isNamePart(l.input[i]) {
		i++
	}
	id := string(l.input[idStart:i])
	if id == "" || !isNameStart(id[0]) {
		return Token{}, false
	}
	if quote != 0 {
		if i >= len(l.input) || l.input[i] != quote {
			return Token{}, false
		}
		i++
	}
	if i < len(l.input) && l.input[i] == '\r' {
		i++
	}
	if i >= len(l.input) || l.input[i] != '\n' {
		return Token{}, false
	}
	i++

	var lines []string
	indent := ""
	closed := false
	for i <= len(l.input) && !closed {
		end := bytes.IndexByte(l.input[i:], '\n')
		lineEnd := len(l.input)
		if end >= 0 {
			lineEnd = i + end
		}
		line := strings.TrimRight(string(l.input[i:lineEnd]), "\r")
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, id) && (len(trimmed) == len(id) || !isNamePart(trimmed[len(id)])) {
			indent = line[:len(line)-len(trimmed)]
			i += len(line) - len(trimmed) + len(id)
			closed = true
			break
		}
		lines = append(lines, line)
		if end < 0 {
			i = len(l.input)
			break
		}
		i = lineEnd + 1
	}

	for j, line := range lines {
		lines[j] = strings.TrimPrefix(line, indent)
	}
	body := strings.Join(lines, "\n")

	l.advanceN(i - l.pos)

	kind := TokenStringLiteral
	value := body
	if !nowdoc {
		if hasInterpolation(body) {
			kind = TokenTemplateString
		}
		value = unescapeDouble(body, 0)
	}
	tok := l.token(kind, start)
	tok.Value = value
	return tok, true
}

func (l *Lexer) scanOperator(start Position) Token {
	for _, op := range operators {
		if l.hasPrefix(op) {
			l.advanceN(len(op))
			tok := l.token(TokenOperator, start)
			if kind, ok := punctuation[op]; ok {
				tok.Kind = kind
			}
			return tok
		}
	}
	ch := string(l.advance())
	tok := l.token(TokenOperator, start)
	if kind, ok := punctuation[ch]; ok {
		tok.Kind = kind
	}
	return tok
}

// hasInterpolation reports whether a double-quoted body embeds variables.
func hasInterpolation(body string) bool {
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case '$':
			if i+1 < len(body) && isNameStart(body[i+1]) {
				return true
			}
		case '{':
			if i+1 < len(body) && body[i+1] == '$' {
				return true
			}
		}
	}
	return false
}

func unescapeDouble(body string, quote byte) string {
	if !strings.Contains(body, "\\") {
		return body
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' || i+1 >= len(body) {
			sb.WriteByte(ch)
			continue
		}
		next := body[i+1]
		switch {
		case next == 'n':
			sb.WriteByte('\n')
		case next == 't':
			sb.WriteByte('\t')
		case next == 'r':
			sb.WriteByte('\r')
		case next == 'v':
			sb.WriteByte('\v')
		case next == 'e':
			sb.WriteByte(0x1b)
		case next == 'f':
			sb.WriteByte('\f')
		case next == '0':
			sb.WriteByte(0)
		case next == '\\' || next == '$' || quote != 0 && next == quote:
			sb.WriteByte(next)
		default:
			sb.WriteByte(ch)
			sb.WriteByte(next)
		}
		i++
	}
	return sb.String()
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isNameStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || ch >= 0x80
}

func isNamePart(ch byte) bool {
	return isNameStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F'
}
