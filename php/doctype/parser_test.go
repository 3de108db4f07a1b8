package doctype

import (
	"strings"
	"testing"
)

func TestParseSimple(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"int", "int"},
		{"  string  ", "string"},
		{"\\App\\Models\\User", "User"},
		{"App\\User", "User"},
		{"non-empty-string", "non-empty-string"},
		{"$this", "$this"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input).(Simple)
			if !ok {
				t.Fatalf("expected Simple, got %T", Parse(tt.input))
			}
			if got.Name != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got.Name)
			}
		})
	}
}

func TestParseNullable(t *testing.T) {
	got := Parse("?string")
	n, ok := got.(Nullable)
	if !ok {
		t.Fatalf("expected Nullable, got %T", got)
	}
	if !Equal(n.Inner, Simple{Name: "string"}) {
		t.Errorf("expected inner string, got %s", n.Inner)
	}
}

func TestParseUnionWithNullIsNullable(t *testing.T) {
	for _, input := range []string{"string|null", "null|string", "?string", "string|null|string"} {
		got := Parse(input)
		if !Equal(got, Nullable{Inner: Simple{Name: "string"}}) {
			t.Errorf("%q: expected ?string, got %T %s", input, got, got)
		}
		if got.String() != "?string" {
			t.Errorf("%q: expected rendering ?string, got %s", input, got)
		}
	}
}

func TestParseUnionFlattensAndDedups(t *testing.T) {
	got := Parse("int|(string|int)|float")
	u, ok := got.(Union)
	if !ok {
		t.Fatalf("expected Union, got %T", got)
	}
	if len(u.Members) != 3 {
		t.Fatalf("expected 3 members, got %d: %s", len(u.Members), u)
	}
	if u.String() != "int|string|float" {
		t.Errorf("expected int|string|float, got %s", u)
	}
}

func TestParseNestedNullableCollapses(t *testing.T) {
	got := Parse("??int")
	if !Equal(got, Nullable{Inner: Simple{Name: "int"}}) {
		t.Errorf("expected ?int, got %s", got)
	}
	if s, ok := Parse("?null").(Simple); !ok || !s.IsNull() {
		t.Errorf("expected null, got %s", Parse("?null"))
	}
}

func TestParseList(t *testing.T) {
	got := Parse("int[][]")
	outer, ok := got.(List)
	if !ok {
		t.Fatalf("expected List, got %T", got)
	}
	inner, ok := outer.Elem.(List)
	if !ok {
		t.Fatalf("expected nested List, got %T", outer.Elem)
	}
	if !Equal(inner.Elem, Simple{Name: "int"}) {
		t.Errorf("expected int element, got %s", inner.Elem)
	}

	if got := Parse("list<string>"); !Equal(got, List{Elem: Simple{Name: "string"}}) {
		t.Errorf("expected string[], got %s", got)
	}
	if got := Parse("(int|string)[]"); got.String() != "(int|string)[]" {
		t.Errorf("expected (int|string)[], got %s", got)
	}
}

func TestParseGeneric(t *testing.T) {
	got := Parse("array<string, int>")
	g, ok := got.(Generic)
	if !ok {
		t.Fatalf("expected Generic, got %T", got)
	}
	if !Equal(g.Key, Simple{Name: "string"}) || !Equal(g.Value, Simple{Name: "int"}) {
		t.Errorf("unexpected key/value: %s", g)
	}

	single, ok := Parse("array<User>").(Generic)
	if !ok {
		t.Fatalf("expected Generic for single argument form")
	}
	if !Equal(single.Key, Simple{Name: "int"}) {
		t.Errorf("expected int key, got %s", single.Key)
	}

	it, ok := Parse("iterable<string, array<int>>").(Generic)
	if !ok {
		t.Fatalf("expected Generic for iterable")
	}
	if it.Base != "iterable" {
		t.Errorf("expected iterable base, got %q", it.Base)
	}
	if _, ok := it.Value.(Generic); !ok {
		t.Errorf("expected nested generic value, got %T", it.Value)
	}
}

func TestParseShape(t *testing.T) {
	got := Parse("array{name: string, age?: int; 'first-name': ?string, 0: bool, flag}")
	s, ok := got.(Shape)
	if !ok {
		t.Fatalf("expected Shape, got %T", got)
	}
	if len(s.Fields) != 5 {
		t.Fatalf("expected 5 fields, got %d", len(s.Fields))
	}

	age, _ := s.Field("age")
	if !age.Optional {
		t.Error("expected age to be optional")
	}
	first, ok := s.Field("first-name")
	if !ok {
		t.Fatal("expected quoted field first-name")
	}
	if _, ok := first.Type.(Nullable); !ok {
		t.Errorf("expected nullable first-name, got %T", first.Type)
	}
	flag, _ := s.Field("flag")
	if !Equal(flag.Type, Simple{Name: "mixed"}) {
		t.Errorf("expected untyped field to default to mixed, got %s", flag.Type)
	}
	if _, ok := s.Field("0"); !ok {
		t.Error("expected integer field 0")
	}
}

func TestParseShapeTrailingSeparator(t *testing.T) {
	if _, ok := Parse("array{a: int,}").(Shape); !ok {
		t.Errorf("expected Shape, got %T", Parse("array{a: int,}"))
	}
	s, ok := Parse("array{}").(Shape)
	if !ok || len(s.Fields) != 0 {
		t.Errorf("expected empty Shape, got %s", Parse("array{}"))
	}
}

func TestParseUnknown(t *testing.T) {
	tests := []string{
		"",
		"array<int",
		"array{a: int",
		"int|",
		"|int",
		"Collection<User>",
		"int<0, max>",
		"array{a: int, a: string}",
		"array<int, string, bool>",
		"foo bar",
		"int)",
		"callable(int): void",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if got, ok := Parse(input).(Unknown); !ok {
				t.Errorf("expected Unknown, got %T %s", Parse(input), Parse(input))
			} else if got.Text != strings.TrimSpace(input) {
				t.Errorf("expected text %q, got %q", input, got.Text)
			}
		})
	}
}

func TestParseFailureStaysLocal(t *testing.T) {
	g, ok := Parse("array<string, Collection<User>>").(Generic)
	if !ok {
		t.Fatalf("expected Generic, got %T", Parse("array<string, Collection<User>>"))
	}
	if _, ok := g.Value.(Unknown); !ok {
		t.Errorf("expected Unknown value, got %T", g.Value)
	}

	s, ok := Parse("array{id: int, tags: Set<string>}").(Shape)
	if !ok {
		t.Fatal("expected Shape")
	}
	tags, _ := s.Field("tags")
	if _, ok := tags.Type.(Unknown); !ok {
		t.Errorf("expected Unknown field type, got %T", tags.Type)
	}
}

func TestParseDepthCeiling(t *testing.T) {
	deep := strings.Repeat("array<", 200) + "int" + strings.Repeat(">", 200)

	var e Expr = Parse(deep)
	depth := 0
	for {
		g, ok := e.(Generic)
		if !ok {
			break
		}
		e = g.Value
		depth++
	}
	if _, ok := e.(Unknown); !ok {
		t.Fatalf("expected Unknown at the ceiling, got %T", e)
	}
	if depth > MaxDepth {
		t.Errorf("expected at most %d levels, got %d", MaxDepth, depth)
	}

	shallow := strings.Repeat("array<", 10) + "int" + strings.Repeat(">", 10)
	if _, ok := Parse(shallow).(Generic); !ok {
		t.Errorf("expected Generic for shallow nesting")
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"int",
		"?string",
		"string|null",
		"int|string|float",
		"int[]",
		"?int[]",
		"(int|null)[]",
		"(?int)[]",
		"array<string, int>",
		"array<User>",
		"iterable<int, array{a: int}>",
		"array{name: string, age?: int}",
		"array{'a b': int, 'it\\'s': string, 42: bool}",
		"array{}",
		"array{list: int[], nested: array{x: ?float}}",
		"\\Foo\\Bar|Baz[]",
		"list<array<string, mixed>>",
		"?(int|string)",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := Parse(input)
			if _, ok := first.(Unknown); ok {
				t.Fatalf("unexpected Unknown for %q", input)
			}
			second := Parse(first.String())
			if !Equal(first, second) {
				t.Errorf("round trip mismatch: %s became %s", first, second)
			}
		})
	}
}

func TestEqualShapeIgnoresOrder(t *testing.T) {
	a := Parse("array{name: string, age: int}")
	b := Parse("array{age: int, name: string}")
	if !Equal(a, b) {
		t.Error("expected shapes with reordered fields to be equal")
	}
	if Equal(a, Parse("array{name: string, age?: int}")) {
		t.Error("expected optional flag to matter")
	}
}

func TestVerifyGrammar(t *testing.T) {
	if err := VerifyGrammar(); err != nil {
		t.Fatalf("grammar does not verify: %v", err)
	}
}
