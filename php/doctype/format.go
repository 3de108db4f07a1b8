package doctype

import (
	"strconv"
	"strings"
)

// The String methods render the canonical spelling of a type expression.
// Parse(e.String()) is structurally equal to e.

func (s Simple) String() string {
	return s.Name
}

func (n Nullable) String() string {
	return "?" + n.Inner.String()
}

func (l List) String() string {
	switch l.Elem.(type) {
	case Union, Nullable:
		return "(" + l.Elem.String() + ")[]"
	}
	return l.Elem.String() + "[]"
}

func (g Generic) String() string {
	base := g.Base
	if base == "" {
		base = "array"
	}
	return base + "<" + g.Key.String() + ", " + g.Value.String() + ">"
}

func (u Union) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		if _, ok := m.(Nullable); ok {
			parts[i] = "(" + m.String() + ")"
			continue
		}
		parts[i] = m.String()
	}
	return strings.Join(parts, "|")
}

func (s Shape) String() string {
	var sb strings.Builder
	sb.WriteString("array{")
	for i, f := range s.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(FieldName(f.Name))
		if f.Optional {
			sb.WriteByte('?')
		}
		sb.WriteString(": ")
		sb.WriteString(f.Type.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (u Unknown) String() string {
	return u.Text
}

// FieldName renders a shape key, quoting it when it is neither an
// identifier nor an integer.
func FieldName(name string) string {
	if isIdentifier(name) || isInteger(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "\\'") + "'"
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		if isIdentStart(ch) {
			continue
		}
		if i > 0 && isIdentPart(ch) {
			continue
		}
		return false
	}
	return true
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	if s != "0" && s[0] == '0' {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
