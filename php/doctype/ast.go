// Package doctype models the type expressions written in PHPDoc tags.
//
// The variant set is closed: every Expr is one of Simple, Nullable, List,
// Generic, Union, Shape or Unknown. Values are immutable once built and may
// be shared freely between goroutines.
package doctype

import "strings"

// Expr is the interface implemented by all type expression variants.
type Expr interface {
	String() string
	expr()
}

// Simple is a bare identifier: a primitive, a pseudo-type or a class name.
type Simple struct {
	Name string
}

func (Simple) expr() {}

// IsNull reports whether s names the null type.
func (s Simple) IsNull() bool {
	return strings.EqualFold(s.Name, "null")
}

// Nullable represents ?T.
type Nullable struct {
	Inner Expr
}

func (Nullable) expr() {}

// List represents T[].
type List struct {
	Elem Expr
}

func (List) expr() {}

// Generic represents array<K, V> and iterable<K, V>.
type Generic struct {
	Base  string // "array" or "iterable"
	Key   Expr
	Value Expr
}

func (Generic) expr() {}

// Union represents A|B|... with at least two members.
// Members never contain null; see NewUnion.
type Union struct {
	Members []Expr
}

func (Union) expr() {}

// Shape represents array{name: T, other?: U}.
type Shape struct {
	Fields []Field
}

func (Shape) expr() {}

// Field returns the field called name.
func (s Shape) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Field is a single entry of a Shape.
type Field struct {
	Name     string
	Type     Expr
	Optional bool
}

// Unknown is syntax that could not be parsed or is deliberately not modelled.
type Unknown struct {
	Text string
}

func (Unknown) expr() {}

// NewNullable builds ?inner in canonical form.
func NewNullable(inner Expr) Expr {
	switch in := inner.(type) {
	case Nullable:
		return in
	case Simple:
		if in.IsNull() {
			return in
		}
	case Union:
		return NewUnion(in, Simple{Name: "null"})
	}
	return Nullable{Inner: inner}
}

// NewUnion builds a union in canonical form. Nested unions are flattened,
// duplicates removed, and a null member turns the result into a Nullable of
// the remaining members. A single remaining member is returned unwrapped.
func NewUnion(members ...Expr) Expr {
	var flat []Expr
	nullable := false

	var add func(e Expr)
	add = func(e Expr) {
		switch m := e.(type) {
		case Union:
			for _, inner := range m.Members {
				add(inner)
			}
		case Nullable:
			nullable = true
			add(m.Inner)
		case Simple:
			if m.IsNull() {
				nullable = true
				return
			}
			flat = appendUnique(flat, m)
		case nil:
		default:
			flat = appendUnique(flat, m)
		}
	}
	for _, m := range members {
		add(m)
	}

	var base Expr
	switch len(flat) {
	case 0:
		if nullable {
			return Simple{Name: "null"}
		}
		return Unknown{}
	case 1:
		base = flat[0]
	default:
		base = Union{Members: flat}
	}

	if nullable {
		return Nullable{Inner: base}
	}
	return base
}

func appendUnique(list []Expr, e Expr) []Expr {
	for _, existing := range list {
		if Equal(existing, e) {
			return list
		}
	}
	return append(list, e)
}

// Equal reports whether a and b are structurally equal. Shape fields are
// compared by name regardless of order; union members are compared in order.
// Unknown values are equal to each other whatever text they carry.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case Simple:
		y, ok := b.(Simple)
		return ok && x.Name == y.Name
	case Nullable:
		y, ok := b.(Nullable)
		return ok && Equal(x.Inner, y.Inner)
	case List:
		y, ok := b.(List)
		return ok && Equal(x.Elem, y.Elem)
	case Generic:
		y, ok := b.(Generic)
		return ok && strings.EqualFold(x.Base, y.Base) && Equal(x.Key, y.Key) && Equal(x.Value, y.Value)
	case Union:
		y, ok := b.(Union)
		if !ok || len(x.Members) != len(y.Members) {
			return false
		}
		for i := range x.Members {
			if !Equal(x.Members[i], y.Members[i]) {
				return false
			}
		}
		return true
	case Shape:
		y, ok := b.(Shape)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for _, f := range x.Fields {
			g, found := y.Field(f.Name)
			if !found || f.Optional != g.Optional || !Equal(f.Type, g.Type) {
				return false
			}
		}
		return true
	case Unknown:
		_, ok := b.(Unknown)
		return ok
	}
	return false
}
