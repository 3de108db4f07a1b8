package project

import (
	"testing"

	"github.com/dhamidi/phpcheck/php/parser"
)

func TestFunctionLookup(t *testing.T) {
	a := parser.ParseFile("a.php", []byte(`<?php
namespace App;

function greet(string $name) {}

class Greeter {
    public function greet(int $n) {}
    public function wave() {}
}
`))
	b := parser.ParseFile("b.php", []byte(`<?php
function greet($other) {}
function Farewell() {}
`))

	p := New([]*parser.File{a, b})

	fn := p.Function("greet")
	if fn == nil {
		t.Fatal("expected greet to be found")
	}
	if fn.Path != "a.php" {
		t.Errorf("expected the first declaration to win, got %s", fn.Path)
	}
	if len(fn.Decl.Params) != 1 || fn.Decl.Params[0].Type == nil || fn.Decl.Params[0].Type.Text != "string" {
		t.Errorf("unexpected params: %+v", fn.Decl.Params)
	}

	if p.Function("\\App\\GREET") != fn {
		t.Error("expected qualified, differently cased lookup to find greet")
	}
	if p.Function("farewell") == nil {
		t.Error("expected farewell to be found")
	}
	if p.Function("wave") != nil {
		t.Error("methods must not be global functions")
	}

	var names []string
	for f := range p.Functions() {
		names = append(names, f.Decl.Name)
	}
	if len(names) != 2 || names[0] != "Farewell" || names[1] != "greet" {
		t.Errorf("unexpected function order: %v", names)
	}
}

func TestNilProject(t *testing.T) {
	var p *Project
	if p.Function("x") != nil {
		t.Error("expected nil")
	}
	for range p.Functions() {
		t.Error("expected no functions")
	}
}
