// Package project holds the project-wide view of the analyzed code base
// that per-file checks consult, such as the signatures of global
// functions. A Project is built once before any file is checked and is
// never modified afterwards, so it can be shared between goroutines.
package project

import (
	"iter"
	"sort"
	"strings"

	"github.com/dhamidi/phpcheck/php/parser"
)

// Function is a global function known to the project.
type Function struct {
	Decl *parser.FunctionDecl
	Path string // file declaring the function
}

// Project is an immutable snapshot of the analyzed files.
type Project struct {
	files     []*parser.File
	functions map[string]*Function
}

// New builds a snapshot from parsed files. Functions are keyed by the
// last segment of their name, case-insensitively, as PHP does. When a
// function is declared more than once the first declaration wins.
func New(files []*parser.File) *Project {
	p := &Project{
		files:     files,
		functions: make(map[string]*Function),
	}

	for _, f := range files {
		for fn := range f.Functions() {
			if fn.Class != "" {
				continue
			}
			key := functionKey(fn.Name)
			if _, exists := p.functions[key]; exists {
				continue
			}
			p.functions[key] = &Function{Decl: fn, Path: f.Path}
		}
	}

	return p
}

// Function returns the global function called name, or nil if the project
// does not declare it. Qualified names are looked up by their last segment.
func (p *Project) Function(name string) *Function {
	if p == nil {
		return nil
	}
	return p.functions[functionKey(name)]
}

// Functions yields the declared global functions in name order.
func (p *Project) Functions() iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		if p == nil {
			return
		}
		keys := make([]string, 0, len(p.functions))
		for k := range p.functions {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !yield(p.functions[k]) {
				return
			}
		}
	}
}

// Files returns the files the snapshot was built from.
func (p *Project) Files() []*parser.File {
	if p == nil {
		return nil
	}
	return p.files
}

func functionKey(name string) string {
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}
