package phpdoc

import (
	"strings"
	"unicode"

	"github.com/dhamidi/phpcheck/php/doctype"
)

// Parse parses a documentation block. It returns nil unless text is a
// /** ... */ block. Unknown tags are ignored.
func Parse(text string) *Comment {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/**") {
		return nil
	}

	doc := &Comment{}
	var summary []string
	for _, tag := range splitTags(cleanLines(text), &summary) {
		parseTag(doc, tag)
	}
	doc.Summary = strings.Join(summary, " ")
	return doc
}

// cleanLines strips the comment delimiters and the leading asterisk of each line.
func cleanLines(text string) []string {
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if strings.HasPrefix(line, "*") {
			line = strings.TrimSpace(line[1:])
		}
		lines = append(lines, line)
	}
	return lines
}

// splitTags groups lines into tags. A line starting with @ opens a tag and
// following lines belong to it until the next tag or a blank line. Lines
// before the first tag form the summary.
func splitTags(lines []string, summary *[]string) []string {
	var tags []string
	inTag := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "@"):
			tags = append(tags, line)
			inTag = true
		case line == "":
			inTag = false
		case inTag:
			tags[len(tags)-1] += "\n" + line
		case len(tags) == 0:
			*summary = append(*summary, line)
		}
	}
	return tags
}

func parseTag(doc *Comment, tag string) {
	name, rest := cutSpace(tag[1:])

	prefixed := false
	for _, prefix := range []string{"phpstan-", "psalm-"} {
		if strings.HasPrefix(name, prefix) {
			name = name[len(prefix):]
			prefixed = true
			break
		}
	}

	switch name {
	case "param":
		typeText, rest := readType(rest)
		subject, variadic := readSubject(rest)
		if typeText == "" || subject == "" {
			return
		}
		doc.addParam(Param{
			Name:     subject,
			Type:     doctype.Parse(typeText),
			TypeText: typeText,
			Variadic: variadic,
			prefixed: prefixed,
		})

	case "return":
		typeText, _ := readType(rest)
		if typeText == "" {
			return
		}
		doc.setReturn(Return{Type: doctype.Parse(typeText), TypeText: typeText, prefixed: prefixed})

	case "var":
		typeText, rest := readType(rest)
		if typeText == "" {
			return
		}
		subject, _ := readSubject(rest)
		doc.addVar(Var{Name: subject, Type: doctype.Parse(typeText), TypeText: typeText, prefixed: prefixed})

	case "throws":
		if prefixed {
			return
		}
		typeText, _ := readType(rest)
		if typeText != "" {
			doc.Throws = append(doc.Throws, typeText)
		}
	}
}

func cutSpace(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// readType reads the type at the start of s. Whitespace ends the type only
// outside brackets and quotes and when it is not next to a | separator, so
// "array<string, int>" and "int | string" are read whole, including across
// line breaks. A leading $name means the type was omitted.
func readType(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '$' || strings.HasPrefix(s, "...$") || strings.HasPrefix(s, "&$") {
		return "", s
	}

	var sb strings.Builder
	depth := 0
	var quote byte
	i := 0
	for ; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			sb.WriteByte(ch)
			if ch == '\\' && i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			} else if ch == quote {
				quote = 0
			}
			continue
		}

		switch ch {
		case '\'', '"':
			quote = ch
		case '<', '{', '(', '[':
			depth++
		case '>', '}', ')', ']':
			if depth > 0 {
				depth--
			}
		case ' ', '\t', '\n', '\r':
			if depth > 0 {
				sb.WriteByte(' ')
				continue
			}
			j := i
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			prev := strings.TrimRight(sb.String(), " ")
			if j < len(s) && s[j] == '|' || strings.HasSuffix(prev, "|") || strings.HasSuffix(prev, ":") {
				i = j - 1
				continue
			}
			return collapse(sb.String()), strings.TrimSpace(s[i:])
		}
		sb.WriteByte(ch)
	}
	return collapse(sb.String()), ""
}

// readSubject reads a $name token, accepting the variadic and by-reference
// forms ...$name and &$name.
func readSubject(s string) (string, bool) {
	token, _ := cutSpace(strings.TrimSpace(s))
	token = strings.TrimPrefix(token, "&")
	variadic := strings.HasPrefix(token, "...")
	token = strings.TrimPrefix(token, "...")
	if !strings.HasPrefix(token, "$") || len(token) < 2 {
		return "", false
	}
	name := token[1:]
	if end := strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
	}); end >= 0 {
		name = name[:end]
	}
	if name == "" {
		return "", false
	}
	return name, variadic
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// collapse squeezes runs of spaces so multi-line types read naturally.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
