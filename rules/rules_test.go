package rules

import (
	"slices"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/dhamidi/phpcheck/diagnostic"
	"github.com/dhamidi/phpcheck/php/observed"
	"github.com/dhamidi/phpcheck/php/parser"
	"github.com/dhamidi/phpcheck/php/project"
)

func run(t *testing.T, rule Rule, src string) []string {
	t.Helper()
	f := parser.ParseFile("test.php", []byte(src))
	ctx := &Context{File: f, Project: project.New([]*parser.File{f})}

	diags := rule.Check(ctx)
	diagnostic.Sort(diags)

	var out []string
	for _, d := range diags {
		if d.Rule != rule.Name() {
			t.Errorf("diagnostic carries rule %q, expected %q", d.Rule, rule.Name())
		}
		out = append(out, d.String())
	}
	return out
}

func expect(t *testing.T, got []string, want ...string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("expected:\n  %s\ngot:\n  %s", strings.Join(want, "\n  "), strings.Join(got, "\n  "))
	}
}

func TestVarCheck(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "scalar mismatch",
			src: `<?php
/** @var string */
$name = 123;
`,
			want: []string{"error: @var type 'string' conflicts with assigned value type 'int' at 3:9"},
		},
		{
			name: "generic key and value",
			src: `<?php
/** @var array<string, int> */
$map = ['key1' => 123, 999 => 456, 'key2' => 'wrong'];
`,
			want: []string{
				"error: @var type 'string' conflicts with array key type 'int' at 3:24",
				"error: @var type 'int' conflicts with array value type 'string' at 3:46",
			},
		},
		{
			name: "implicit key reported at the value",
			src: `<?php
/** @var array<string, int> */
$map = [1];
`,
			want: []string{"error: @var type 'string' conflicts with array key type 'int' at 3:9"},
		},
		{
			name: "shape in any order",
			src: `<?php
/** @var array{name: string, age: int} */
$user = ['age' => 30, 'name' => 'Bob'];
`,
		},
		{
			name: "shape missing field",
			src: `<?php
/** @var array{name: string, age: int} */
$user = ['name' => 'Charlie'];
`,
			want: []string{"error: @var type 'array{name: string, age: int}' conflicts with assigned value type 'array{name: string}' (missing field 'age') at 3:9"},
		},
		{
			name: "shape field type",
			src: `<?php
/** @var array{name: string} */
$user = ['name' => 5];
`,
			want: []string{"error: @var type 'string' conflicts with array value type 'int' for field 'name' at 3:20"},
		},
		{
			name: "list elements",
			src: `<?php
/** @var int[] */
$ids = [1, 'two', 3];
`,
			want: []string{"error: @var type 'int' conflicts with array value type 'string' at 3:12"},
		},
		{
			name: "nullable accepts null",
			src: `<?php
/** @var ?string */
$name = null;
/** @var string|null */
$other = 'x';
`,
		},
		{
			name: "subject must match",
			src: `<?php
/** @var int $other */
$name = 'a';
/** @var int $name */
$name = 'b';
`,
			want: []string{"error: @var type 'int' conflicts with assigned value type 'string' at 5:9"},
		},
		{
			name: "unknown values are not reported",
			src: `<?php
/** @var int */
$x = compute();
/** @var User */
$u = new User();
/** @var User */
$a = new Admin();
`,
			want: []string{"error: @var type 'User' conflicts with assigned value type 'Admin' at 7:6"},
		},
		{
			name: "comment must directly precede",
			src: `<?php
/** @var int */
echo 'x';
$name = 'a';
`,
		},
		{
			name: "property hint and default",
			src: `<?php
class A {
    /** @var int */
    public string $x = 'a';

    /** @var int[] */
    private array $ids = [], $more = [1, 2];
}
`,
			want: []string{
				"error: @var type 'int' conflicts with native hint type 'string' at 4:12",
				"error: @var type 'int' conflicts with assigned value type 'string' at 4:24",
			},
		},
		{
			name: "one tag per property",
			src: `<?php
class A {
    /**
     * @var int $a
     * @var string $b
     */
    public $a = 'x', $b = 'y';
}
`,
			want: []string{"error: @var type 'int' conflicts with assigned value type 'string' at 7:17"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expect(t, run(t, VarCheck{}, tt.src), tt.want...)
		})
	}
}

func TestParamCheck(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "native hint",
			src: `<?php
/**
 * @param string $value
 */
function f(int $value) {}
`,
			want: []string{"error: @param type 'string' conflicts with native hint type 'int' for parameter $value at 5:12"},
		},
		{
			name: "narrowing a hint is fine",
			src: `<?php
/**
 * @param positive-int $n
 * @param int[] $list
 * @param ?int $maybe
 * @param int $any
 */
function f(int $n, array $list, ?int $maybe, mixed $any) {}
`,
		},
		{
			name: "iterable hint",
			src: `<?php
/** @param int $n */
function g(iterable $n) {}
/**
 * @param \Traversable $items
 * @param \Generator $gen
 * @param string[] $list
 */
function each(iterable $items, ?iterable $gen, iterable $list) {}
`,
			want: []string{"error: @param type 'int' conflicts with native hint type 'iterable' for parameter $n at 3:12"},
		},
		{
			name: "default value",
			src: `<?php
/**
 * @param int $limit
 */
function f($limit = 'ten') {}
`,
			want: []string{"error: @param type 'int' conflicts with default value type 'string' for parameter $limit at 5:21"},
		},
		{
			name: "union argument",
			src: `<?php
/**
 * @param int|string $value
 */
function f($value) {}

f(true);
f(1);
f('a');
`,
			want: []string{"error: @param type 'int|string' conflicts with argument type 'bool' for parameter $value at 7:3"},
		},
		{
			name: "named and variadic arguments",
			src: `<?php
/**
 * @param string $a
 * @param int ...$rest
 */
function g($a, int ...$rest) {}

g(b: 1, a: 2);
g('x', 1, 2, 'three');
g(...$args);
`,
			want: []string{
				"error: @param type 'string' conflicts with argument type 'int' for parameter $a at 8:12",
				"error: @param type 'int' conflicts with argument type 'string' for parameter $rest at 9:14",
			},
		},
		{
			name: "calls to methods and unknown functions are skipped",
			src: `<?php
/**
 * @param string $s
 */
function h($s) {}

$obj->h(1);
Foo::h(1);
strlen(1);
`,
		},
		{
			name: "prefixed tag wins",
			src: `<?php
/**
 * @param array $items
 * @phpstan-param list<string> $items
 */
function k(array $items = ['a' => 1]) {}
`,
			want: []string{"error: @param type 'string' conflicts with array value type 'int' for parameter $items at 6:35"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expect(t, run(t, ParamCheck{}, tt.src), tt.want...)
		})
	}
}

func TestReturnCheck(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "hint and value",
			src: `<?php
/** @return int */
function f(): string { return 'a'; }
`,
			want: []string{
				"error: @return type 'int' conflicts with native return hint type 'string' at 3:15",
				"error: @return type 'int' conflicts with returned value type 'string' at 3:31",
			},
		},
		{
			name: "null narrows a nullable hint",
			src: `<?php
/** @return null */
function f(): ?int { return null; }
/** @return ?string */
function g(): ?int { return null; }
`,
			want: []string{"error: @return type '?string' conflicts with native return hint type '?int' at 5:15"},
		},
		{
			name: "void",
			src: `<?php
/** @return void */
function f($x) {
    if ($x) {
        return;
    }
    return 1;
}
`,
			want: []string{"error: @return type 'void' conflicts with returned value type 'int' at 7:12"},
		},
		{
			name: "closures and generators",
			src: `<?php
/** @return int */
function f() {
    $g = function () { return 'nested'; };
    return 1;
}

/** @return iterable<int> */
function gen() {
    yield 1;
    return 'done';
}
`,
		},
		{
			name: "methods",
			src: `<?php
class A {
    /** @return ?string */
    public function name(): ?string {
        if (rand()) {
            return null;
        }
        return 42;
    }
}
`,
			want: []string{"error: @return type '?string' conflicts with returned value type 'int' at 8:16"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expect(t, run(t, ReturnCheck{}, tt.src), tt.want...)
		})
	}
}

func TestHintVersion(t *testing.T) {
	src := `<?php
/** @param string $m */
function f(mixed $m) {}
`
	f := parser.ParseFile("test.php", []byte(src))

	latest := &Context{File: f}
	if diags := (ParamCheck{}).Check(latest); len(diags) != 0 {
		t.Errorf("expected mixed to accept anything, got %v", diags)
	}

	old := &Context{File: f, Hints: observed.HintOptions{Version: semver.MustParse("7.4")}}
	diags := (ParamCheck{}).Check(old)
	if len(diags) != 1 || !strings.Contains(diags[0].Message, "native hint type 'mixed'") {
		t.Errorf("expected mixed to be a class name on 7.4, got %v", diags)
	}
}

func TestLookup(t *testing.T) {
	for _, r := range All() {
		if Lookup(strings.ToUpper(r.Name())) != r {
			t.Errorf("lookup of %s failed", r.Name())
		}
		if Group(r.Name()) != "strict_typing" {
			t.Errorf("unexpected group for %s", r.Name())
		}
	}
	if Lookup("nope") != nil {
		t.Error("expected nil for an unknown rule")
	}
}
