// Package rules contains the checks run by the analyzer. Each rule
// compares the types documented in PHPDoc tags with what the code
// actually declares or assigns.
package rules

import (
	"strings"

	"github.com/dhamidi/phpcheck/diagnostic"
	"github.com/dhamidi/phpcheck/php/observed"
	"github.com/dhamidi/phpcheck/php/parser"
	"github.com/dhamidi/phpcheck/php/project"
)

// Rule is a single check. Names are slash-delimited, the leading segments
// naming the group the rule belongs to.
type Rule interface {
	Name() string
	Check(ctx *Context) []diagnostic.Diagnostic
}

// Context is what a rule sees of the code base while checking one file.
// Rules must not modify it.
type Context struct {
	File    *parser.File
	Project *project.Project
	Hints   observed.HintOptions
}

// All returns every rule, in the order they run.
func All() []Rule {
	return []Rule{
		VarCheck{},
		ParamCheck{},
		ReturnCheck{},
	}
}

// Lookup returns the rule called name, or nil.
func Lookup(name string) Rule {
	for _, r := range All() {
		if strings.EqualFold(r.Name(), name) {
			return r
		}
	}
	return nil
}

// Group returns the group part of a rule name: everything before the last
// slash, or "" for ungrouped rules.
func Group(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return ""
}
