// Package compat decides whether an observed type satisfies a documented
// type expression.
//
// The checker is fail-open: an Unknown on either side is compatible, and
// so is anything nested deeper than MaxDepth. It never panics and has no
// side effects.
package compat

import (
	"github.com/dhamidi/phpcheck/php/doctype"
	"github.com/dhamidi/phpcheck/php/observed"
)

// MaxDepth bounds the recursion of the checker.
const MaxDepth = 64

// Part says which part of an observed value a Problem is about.
type Part int

const (
	PartWhole        Part = iota // the value as a whole
	PartKey                      // the key of an array entry
	PartValue                    // the value of an array entry
	PartMissingField             // a required shape field absent from the array
)

// Problem locates one incompatibility. For PartKey and PartValue, Entry is
// the index of the offending entry in the observed array. Field names the
// shape field involved, if any; for PartMissingField, Declared is the type
// of that field.
type Problem struct {
	Part     Part
	Entry    int
	Field    string
	Declared doctype.Expr
	Observed observed.Type
}

// Result is the outcome of Check. Declared and Observed are the canonical
// renderings of both sides.
type Result struct {
	Declared string
	Observed string
	Problems []Problem
}

func (r Result) Compatible() bool {
	return len(r.Problems) == 0
}

// Compatible reports whether o satisfies d.
func Compatible(d doctype.Expr, o observed.Type) bool {
	return compatible(d, o, 0)
}

// Check compares d and o. When they are incompatible and o is an array
// checked against an array type, the result carries one problem per
// offending entry or missing field; otherwise a single PartWhole problem.
func Check(d doctype.Expr, o observed.Type) Result {
	r := Result{Declared: d.String(), Observed: o.String()}
	if compatible(d, o, 0) {
		return r
	}
	r.Problems = explain(d, o)
	if len(r.Problems) == 0 {
		r.Problems = []Problem{{Part: PartWhole, Entry: -1, Declared: d, Observed: o}}
	}
	return r
}

func compatible(d doctype.Expr, o observed.Type, depth int) bool {
	if depth >= MaxDepth {
		return true
	}

	switch x := o.(type) {
	case nil, observed.Unknown:
		return true
	case observed.Union:
		return unionOverlaps(d, x, depth)
	}

	switch x := d.(type) {
	case nil, doctype.Unknown:
		return true
	case doctype.Nullable:
		if _, ok := o.(observed.Null); ok {
			return true
		}
		return compatible(x.Inner, o, depth+1)
	case doctype.Union:
		for _, m := range x.Members {
			if compatible(m, o, depth+1) {
				return true
			}
		}
		return false
	case doctype.Simple:
		return simpleCompatible(x.Name, o)
	case doctype.List:
		arr, ok := o.(observed.Array)
		if !ok {
			return false
		}
		for _, e := range arr.Entries {
			if !compatible(x.Elem, e.Value, depth+1) {
				return false
			}
		}
		return true
	case doctype.Generic:
		arr, ok := o.(observed.Array)
		if !ok {
			return false
		}
		for _, e := range arr.Entries {
			if !compatible(x.Key, e.Key, depth+1) || !compatible(x.Value, e.Value, depth+1) {
				return false
			}
		}
		return true
	case doctype.Shape:
		arr, ok := o.(observed.Array)
		if !ok {
			return false
		}
		return len(shapeProblems(x, arr, depth)) == 0
	}
	return true
}

// unionOverlaps reports whether some member of a native union satisfies
// d. Documentation may narrow a native hint but not contradict it. The
// null member only counts for a d that accepts nothing but null, so that
// ?string is not taken to overlap ?int through null alone.
func unionOverlaps(d doctype.Expr, u observed.Union, depth int) bool {
	hasNull := false
	for _, m := range u.Members {
		if _, ok := m.(observed.Null); ok {
			hasNull = true
			continue
		}
		if compatible(d, m, depth+1) {
			return true
		}
	}
	return hasNull && onlyNull(d)
}

func onlyNull(d doctype.Expr) bool {
	s, ok := d.(doctype.Simple)
	return ok && s.IsNull()
}

// shapeProblems lists the fields of s that arr violates. A field is
// matched by key value, so entry order does not matter; when several
// entries share a key the last one wins. Entries not named by the shape
// are allowed. Missing fields are only reported when every key of arr is
// known.
func shapeProblems(s doctype.Shape, arr observed.Array, depth int) []Problem {
	allKnown := !arr.Opaque
	for _, e := range arr.Entries {
		if p, ok := e.Key.(observed.Primitive); !ok || !p.HasValue {
			allKnown = false
		}
	}

	var problems []Problem
	for _, f := range s.Fields {
		idx := findKey(arr, f.Name)
		if idx < 0 {
			if !f.Optional && allKnown {
				problems = append(problems, Problem{Part: PartMissingField, Entry: -1, Field: f.Name, Declared: f.Type, Observed: arr})
			}
			continue
		}
		if v := arr.Entries[idx].Value; !compatible(f.Type, v, depth+1) {
			problems = append(problems, Problem{Part: PartValue, Entry: idx, Field: f.Name, Declared: f.Type, Observed: v})
		}
	}
	return problems
}

func findKey(arr observed.Array, name string) int {
	found := -1
	for i, e := range arr.Entries {
		if p, ok := e.Key.(observed.Primitive); ok && p.HasValue && p.Value == name {
			found = i
		}
	}
	return found
}

// explain breaks an incompatible array down into per-entry problems.
func explain(d doctype.Expr, o observed.Type) []Problem {
	arr, ok := o.(observed.Array)
	if !ok {
		return nil
	}
	if n, ok := d.(doctype.Nullable); ok {
		d = n.Inner
	}

	var problems []Problem
	switch x := d.(type) {
	case doctype.List:
		for i, e := range arr.Entries {
			if !compatible(x.Elem, e.Value, 1) {
				problems = append(problems, Problem{Part: PartValue, Entry: i, Declared: x.Elem, Observed: e.Value})
			}
		}
	case doctype.Generic:
		for i, e := range arr.Entries {
			if !compatible(x.Key, e.Key, 1) {
				problems = append(problems, Problem{Part: PartKey, Entry: i, Declared: x.Key, Observed: e.Key})
			}
			if !compatible(x.Value, e.Value, 1) {
				problems = append(problems, Problem{Part: PartValue, Entry: i, Declared: x.Value, Observed: e.Value})
			}
		}
	case doctype.Shape:
		problems = shapeProblems(x, arr, 0)
	}
	return problems
}
