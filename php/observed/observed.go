// Package observed classifies PHP values and native type hints into the
// coarse types the compatibility checker compares against documentation.
package observed

import (
	"strconv"
	"strings"

	"github.com/dhamidi/phpcheck/php/doctype"
)

// Type is the interface implemented by all observed type variants.
type Type interface {
	String() string
	observed()
}

type Kind int

const (
	Int Kind = iota
	Float
	String
	Bool
)

var kindNames = [...]string{Int: "int", Float: "float", String: "string", Bool: "bool"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Primitive is a scalar. When HasValue is set, Value holds the literal
// value in canonical form: decimal for ints, "true"/"false" for bools and
// the decoded content for strings.
type Primitive struct {
	Kind     Kind
	Value    string
	HasValue bool
}

func (Primitive) observed() {}

func (p Primitive) String() string { return p.Kind.String() }

// Entry is one key/value pair of an array literal.
type Entry struct {
	Key   Type
	Value Type
}

// Array is an array literal, or an opaque array from a native hint.
// Opaque arrays may hold entries that are not listed.
type Array struct {
	Entries []Entry
	Opaque  bool
}

func (Array) observed() {}

// Object is an instance of Class, or of any class when Class is empty.
type Object struct {
	Class string
}

func (Object) observed() {}

func (o Object) String() string {
	if o.Class == "" {
		return "object"
	}
	return o.Class
}

type Null struct{}

func (Null) observed() {}

func (Null) String() string { return "null" }

// Void is the absence of a value, from a void return hint.
type Void struct{}

func (Void) observed() {}

func (Void) String() string { return "void" }

// Union is one of several types. It only arises from native hints.
type Union struct {
	Members []Type
	// Name is the single hint word the union stands for, like iterable.
	Name string
}

func (Union) observed() {}

// Unknown is a value that could not be classified.
type Unknown struct{}

func (Unknown) observed() {}

func (Unknown) String() string { return "mixed" }

func (u Union) String() string {
	if u.Name != "" {
		return u.Name
	}
	var parts []string
	nullable := false
	for _, m := range u.Members {
		if _, ok := m.(Null); ok {
			nullable = true
			continue
		}
		parts = append(parts, m.String())
	}
	switch {
	case nullable && len(parts) == 1:
		return "?" + parts[0]
	case nullable:
		parts = append(parts, "null")
	}
	return strings.Join(parts, "|")
}

// String renders the array the way the documentation would describe it:
// array{} when empty, T[] for lists, a shape when all keys are known and
// array<K, V> otherwise.
func (a Array) String() string {
	if len(a.Entries) == 0 {
		if a.Opaque {
			return "array"
		}
		return "array{}"
	}

	if !a.Opaque && a.isList() {
		return wrapElem(joinTypes(a.values())) + "[]"
	}

	if keys, ok := a.literalKeys(); ok {
		var sb strings.Builder
		sb.WriteString("array{")
		for i, e := range a.Entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(doctype.FieldName(keys[i]))
			sb.WriteString(": ")
			sb.WriteString(e.Value.String())
		}
		if a.Opaque {
			sb.WriteString(", ...")
		}
		sb.WriteByte('}')
		return sb.String()
	}

	keys := make([]Type, len(a.Entries))
	for i, e := range a.Entries {
		keys[i] = e.Key
	}
	return "array<" + joinTypes(keys) + ", " + joinTypes(a.values()) + ">"
}

func (a Array) values() []Type {
	values := make([]Type, len(a.Entries))
	for i, e := range a.Entries {
		values[i] = e.Value
	}
	return values
}

// isList reports whether the keys are 0, 1, 2, ... in order.
func (a Array) isList() bool {
	for i, e := range a.Entries {
		p, ok := e.Key.(Primitive)
		if !ok || p.Kind != Int || !p.HasValue || p.Value != strconv.Itoa(i) {
			return false
		}
	}
	return true
}

func (a Array) literalKeys() ([]string, bool) {
	keys := make([]string, len(a.Entries))
	for i, e := range a.Entries {
		p, ok := e.Key.(Primitive)
		if !ok || !p.HasValue {
			return nil, false
		}
		keys[i] = p.Value
	}
	return keys, true
}

// joinTypes renders the distinct member spellings joined by |.
func joinTypes(types []Type) string {
	var parts []string
	seen := map[string]bool{}
	for _, t := range types {
		s := t.String()
		if !seen[s] {
			seen[s] = true
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "|")
}

func wrapElem(s string) string {
	if strings.ContainsAny(s, "|?") {
		return "(" + s + ")"
	}
	return s
}

// IntValue returns an int primitive carrying v.
func IntValue(v int64) Primitive {
	return Primitive{Kind: Int, Value: strconv.FormatInt(v, 10), HasValue: true}
}

// StringValue returns a string primitive carrying v.
func StringValue(v string) Primitive {
	return Primitive{Kind: String, Value: v, HasValue: true}
}

// BoolValue returns a bool primitive carrying v.
func BoolValue(v bool) Primitive {
	return Primitive{Kind: Bool, Value: strconv.FormatBool(v), HasValue: true}
}
