package doctype

import (
	"strings"
	"unicode"
)

// MaxDepth bounds the nesting of a type expression. Deeper input parses as Unknown.
const MaxDepth = 64

// Parse parses the type portion of a PHPDoc tag. It never fails: text it
// cannot handle yields Unknown, either for the whole input or for the
// innermost generic argument or shape field that could not be understood.
func Parse(text string) Expr {
	return parse(text, 0)
}

func parse(text string, depth int) Expr {
	text = strings.TrimSpace(text)
	if text == "" || depth >= MaxDepth {
		return Unknown{Text: text}
	}

	if text[0] == '?' {
		inner := parse(text[1:], depth+1)
		if _, ok := inner.(Unknown); ok {
			return Unknown{Text: text}
		}
		return NewNullable(inner)
	}

	parts, ok := splitTopLevel(text, "|")
	if !ok {
		return Unknown{Text: text}
	}
	if len(parts) == 1 {
		return parseTerm(text, depth)
	}

	members := make([]Expr, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return Unknown{Text: text}
		}
		members = append(members, parse(part, depth+1))
	}
	return NewUnion(members...)
}

// parseTerm parses a single union member: an atom with optional [] suffixes.
func parseTerm(text string, depth int) Expr {
	text = strings.TrimSpace(text)
	if text == "" || depth >= MaxDepth {
		return Unknown{Text: text}
	}

	if strings.HasSuffix(text, "]") {
		open := strings.LastIndexByte(text, '[')
		if open > 0 && strings.TrimSpace(text[open+1:len(text)-1]) == "" {
			elem := parseTerm(text[:open], depth+1)
			if _, ok := elem.(Unknown); ok {
				return Unknown{Text: text}
			}
			return List{Elem: elem}
		}
		return Unknown{Text: text}
	}

	if text[0] == '(' {
		if closing := matchingClose(text, 0); closing == len(text)-1 {
			return parse(text[1:closing], depth+1)
		}
		return Unknown{Text: text}
	}

	if open := strings.IndexAny(text, "<{"); open > 0 {
		name := strings.TrimSpace(text[:open])
		if matchingClose(text, open) != len(text)-1 {
			return Unknown{Text: text}
		}
		inner := text[open+1 : len(text)-1]
		if text[open] == '<' {
			return parseGeneric(text, name, inner, depth)
		}
		return parseShape(text, name, inner, depth)
	}

	if isName(text) {
		return Simple{Name: normalizeName(text)}
	}
	return Unknown{Text: text}
}

func parseGeneric(text, name, inner string, depth int) Expr {
	args, ok := splitTopLevel(inner, ",")
	if !ok {
		return Unknown{Text: text}
	}
	for _, a := range args {
		if strings.TrimSpace(a) == "" {
			return Unknown{Text: text}
		}
	}

	switch strings.ToLower(name) {
	case "array", "iterable", "non-empty-array":
		base := "array"
		if strings.EqualFold(name, "iterable") {
			base = "iterable"
		}
		switch len(args) {
		case 1:
			return Generic{Base: base, Key: Simple{Name: "int"}, Value: parse(args[0], depth+1)}
		case 2:
			return Generic{Base: base, Key: parse(args[0], depth+1), Value: parse(args[1], depth+1)}
		}
	case "list", "non-empty-list":
		if len(args) == 1 {
			return List{Elem: parse(args[0], depth+1)}
		}
	}
	return Unknown{Text: text}
}

func parseShape(text, name, inner string, depth int) Expr {
	if !strings.EqualFold(name, "array") {
		return Unknown{Text: text}
	}

	entries, ok := splitTopLevel(inner, ",;")
	if !ok {
		return Unknown{Text: text}
	}

	shape := Shape{}
	for i, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			if i == len(entries)-1 {
				continue
			}
			return Unknown{Text: text}
		}

		field, ok := parseField(entry, depth)
		if !ok {
			return Unknown{Text: text}
		}
		if _, dup := shape.Field(field.Name); dup {
			return Unknown{Text: text}
		}
		shape.Fields = append(shape.Fields, field)
	}
	return shape
}

func parseField(entry string, depth int) (Field, bool) {
	namePart, typePart := entry, ""
	hasType := false
	if colon := indexTopLevel(entry, ':'); colon >= 0 {
		namePart, typePart = entry[:colon], entry[colon+1:]
		hasType = true
	}

	namePart = strings.TrimSpace(namePart)
	optional := false
	if strings.HasSuffix(namePart, "?") {
		optional = true
		namePart = strings.TrimSpace(namePart[:len(namePart)-1])
	}

	name, ok := unquoteFieldName(namePart)
	if !ok {
		return Field{}, false
	}

	var typ Expr = Simple{Name: "mixed"}
	if hasType {
		if strings.TrimSpace(typePart) == "" {
			return Field{}, false
		}
		typ = parse(typePart, depth+1)
	}
	return Field{Name: name, Type: typ, Optional: optional}, true
}

func unquoteFieldName(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if q := s[0]; q == '\'' || q == '"' {
		if len(s) < 2 || s[len(s)-1] != q {
			return "", false
		}
		body := s[1 : len(s)-1]
		return strings.ReplaceAll(body, "\\"+string(q), string(q)), true
	}
	if isIdentifier(s) {
		return s, true
	}
	if strings.HasPrefix(s, "-") && isInteger(s[1:]) || isInteger(s) {
		return s, true
	}
	return "", false
}

// normalizeName strips namespace qualification: \Foo\Bar and Foo\Bar both become Bar.
func normalizeName(name string) string {
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	if s == "$this" {
		return true
	}
	for i, seg := range strings.Split(s, "\\") {
		if seg == "" {
			if i == 0 && len(s) > 1 {
				continue
			}
			return false
		}
		if !isIdentifier(seg) {
			return false
		}
	}
	return true
}

// splitTopLevel splits s at any of the separator bytes that occur outside
// brackets and quotes. It reports false when brackets are unbalanced.
func splitTopLevel(s, seps string) ([]string, bool) {
	var parts []string
	depth := 0
	start := 0
	var quote byte

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '<', '{', '[', '(':
			depth++
		case '>', '}', ']', ')':
			depth--
			if depth < 0 {
				return nil, false
			}
		default:
			if depth == 0 && strings.IndexByte(seps, ch) >= 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 || quote != 0 {
		return nil, false
	}
	return append(parts, s[start:]), true
}

func indexTopLevel(s string, sep byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '<', '{', '[', '(':
			depth++
		case '>', '}', ']', ')':
			depth--
		default:
			if depth == 0 && ch == sep {
				return i
			}
		}
	}
	return -1
}

// matchingClose returns the index of the bracket closing the one at open, or -1.
func matchingClose(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '<', '{', '[', '(':
			depth++
		case '>', '}', ']', ')':
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

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch) || ch == '-'
}
