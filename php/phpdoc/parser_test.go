package phpdoc

import (
	"testing"

	"github.com/dhamidi/phpcheck/php/doctype"
)

func TestParseRejectsNonDocComments(t *testing.T) {
	for _, text := range []string{"", "// @var int", "/* @var int */", "# @var int"} {
		if doc := Parse(text); doc != nil {
			t.Errorf("%q: expected nil, got %+v", text, doc)
		}
	}
}

func TestParseParams(t *testing.T) {
	doc := Parse(`/**
	 * Adds things.
	 *
	 * @param int $a the first
	 * @param array<string, int> $map
	 * @param string ...$rest
	 * @param  ?User  &$user
	 */`)

	if doc.Summary != "Adds things." {
		t.Errorf("expected summary, got %q", doc.Summary)
	}
	if len(doc.Params) != 4 {
		t.Fatalf("expected 4 params, got %d: %+v", len(doc.Params), doc.Params)
	}

	tests := []struct {
		name     string
		typeText string
		variadic bool
	}{
		{"a", "int", false},
		{"map", "array<string, int>", false},
		{"rest", "string", true},
		{"user", "?User", false},
	}
	for _, tt := range tests {
		p, ok := doc.Param(tt.name)
		if !ok {
			t.Errorf("missing param %s", tt.name)
			continue
		}
		if p.TypeText != tt.typeText {
			t.Errorf("%s: expected type %q, got %q", tt.name, tt.typeText, p.TypeText)
		}
		if p.Variadic != tt.variadic {
			t.Errorf("%s: expected variadic=%v", tt.name, tt.variadic)
		}
	}

	if _, ok := doc.Param("$map"); !ok {
		t.Error("expected lookup with leading $ to work")
	}
	g, ok := doc.Params[1].Type.(doctype.Generic)
	if !ok {
		t.Fatalf("expected Generic, got %T", doc.Params[1].Type)
	}
	if g.Key.String() != "string" {
		t.Errorf("expected string key, got %s", g.Key)
	}
}

func TestParseReturnAndThrows(t *testing.T) {
	doc := Parse(`/**
	 * @return int|string the result
	 * @throws InvalidArgumentException when bad
	 * @throws \RuntimeException
	 */`)

	if doc.Return == nil {
		t.Fatal("expected return tag")
	}
	if doc.Return.TypeText != "int|string" {
		t.Errorf("expected int|string, got %q", doc.Return.TypeText)
	}
	if len(doc.Throws) != 2 || doc.Throws[0] != "InvalidArgumentException" || doc.Throws[1] != "\\RuntimeException" {
		t.Errorf("unexpected throws: %v", doc.Throws)
	}
}

func TestParseVar(t *testing.T) {
	tests := []struct {
		text     string
		typeText string
		name     string
	}{
		{"/** @var int */", "int", ""},
		{"/** @var string $name */", "string", "name"},
		{"/** @var array{name: string, age?: int} $person */", "array{name: string, age?: int}", "person"},
		{"/** @var int | null $count */", "int|null", "count"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			doc := Parse(tt.text)
			v, ok := doc.Var(tt.name)
			if !ok {
				t.Fatalf("expected var tag in %q", tt.text)
			}
			if v.TypeText != tt.typeText {
				t.Errorf("expected type %q, got %q", tt.typeText, v.TypeText)
			}
			if v.Name != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, v.Name)
			}
		})
	}
}

func TestParseVarPerSubject(t *testing.T) {
	doc := Parse(`/**
	 * @var int $a
	 * @var string $b
	 */`)

	if len(doc.Vars) != 2 {
		t.Fatalf("expected 2 var tags, got %+v", doc.Vars)
	}
	if a, _ := doc.Var("$a"); a.TypeText != "int" {
		t.Errorf("expected int for $a, got %q", a.TypeText)
	}
	if b, _ := doc.Var("b"); b.TypeText != "string" {
		t.Errorf("expected string for $b, got %q", b.TypeText)
	}
	if _, ok := doc.Var("c"); ok {
		t.Error("expected no tag for $c")
	}

	unnamed := Parse(`/**
	 * @var string $b
	 * @var bool
	 */`)
	if v, _ := unnamed.Var("a"); v.TypeText != "bool" {
		t.Errorf("expected the subjectless tag to apply to $a, got %q", v.TypeText)
	}
}

func TestParseMultiLineType(t *testing.T) {
	doc := Parse(`/**
	 * @param array{
	 *     name: string,
	 *     age: int
	 * } $person
	 */`)

	p, ok := doc.Param("person")
	if !ok {
		t.Fatalf("expected person param, got %+v", doc.Params)
	}
	shape, ok := p.Type.(doctype.Shape)
	if !ok {
		t.Fatalf("expected Shape, got %T (%q)", p.Type, p.TypeText)
	}
	if len(shape.Fields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(shape.Fields))
	}
}

func TestPrefixedTagsWin(t *testing.T) {
	doc := Parse(`/**
	 * @phpstan-param list<int> $ids
	 * @param array $ids
	 * @param string $other
	 * @psalm-return non-empty-string
	 * @return string
	 * @phpstan-var int
	 * @var mixed
	 */`)

	ids, _ := doc.Param("ids")
	if ids.TypeText != "list<int>" {
		t.Errorf("expected prefixed param type, got %q", ids.TypeText)
	}
	if other, _ := doc.Param("other"); other.TypeText != "string" {
		t.Errorf("expected plain param for other subject, got %q", other.TypeText)
	}
	if doc.Return.TypeText != "non-empty-string" {
		t.Errorf("expected prefixed return, got %q", doc.Return.TypeText)
	}
	if v, _ := doc.Var(""); v.TypeText != "int" {
		t.Errorf("expected prefixed var, got %q", v.TypeText)
	}
}

func TestParseIgnoresIncompleteTags(t *testing.T) {
	doc := Parse(`/**
	 * @param $untyped
	 * @param int
	 * @return
	 * @deprecated use something else
	 * @template T
	 */`)

	if !doc.Empty() {
		t.Errorf("expected no recognised tags, got %+v", doc)
	}
}

type site string

func (s site) DocText() string { return string(s) }

func TestAssociate(t *testing.T) {
	doc := Associate(site("/** @return bool */"))
	if doc.Return == nil || doc.Return.TypeText != "bool" {
		t.Errorf("expected bool return, got %+v", doc.Return)
	}

	empty := Associate(site(""))
	if empty == nil {
		t.Fatal("expected non-nil comment")
	}
	if !empty.Empty() {
		t.Errorf("expected empty comment, got %+v", empty)
	}
	if Associate(nil) == nil {
		t.Error("expected non-nil comment for nil site")
	}
}
