// Package phpdoc parses PHPDoc blocks and associates them with the
// declarations they document.
package phpdoc

import (
	"strings"

	"github.com/dhamidi/phpcheck/php/doctype"
)

// Comment is the typed content of one documentation block.
type Comment struct {
	Summary string
	Params  []Param
	Return  *Return
	Vars    []Var
	Throws  []string
}

// Param represents a @param tag.
type Param struct {
	Name     string // without the leading $
	Type     doctype.Expr
	TypeText string
	Variadic bool

	prefixed bool
}

// Return represents a @return tag.
type Return struct {
	Type     doctype.Expr
	TypeText string

	prefixed bool
}

// Var represents a @var tag. Name is empty when the tag has no subject.
type Var struct {
	Name     string
	Type     doctype.Expr
	TypeText string

	prefixed bool
}

// Param returns the @param tag for the parameter called name.
// A leading $ in name is ignored.
func (c *Comment) Param(name string) (Param, bool) {
	if c == nil {
		return Param{}, false
	}
	name = strings.TrimPrefix(name, "$")
	for _, p := range c.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Var returns the @var tag for the variable called name, falling back
// to a tag without a subject. A leading $ in name is ignored.
func (c *Comment) Var(name string) (Var, bool) {
	if c == nil {
		return Var{}, false
	}
	name = strings.TrimPrefix(name, "$")
	var unnamed *Var
	for i, v := range c.Vars {
		if v.Name == name {
			return v, true
		}
		if v.Name == "" && unnamed == nil {
			unnamed = &c.Vars[i]
		}
	}
	if unnamed != nil {
		return *unnamed, true
	}
	return Var{}, false
}

// Empty reports whether the comment carries no tags at all.
func (c *Comment) Empty() bool {
	return c == nil || len(c.Params) == 0 && c.Return == nil && len(c.Vars) == 0 && len(c.Throws) == 0
}

func (c *Comment) addParam(p Param) {
	for i, existing := range c.Params {
		if existing.Name != p.Name {
			continue
		}
		if existing.prefixed && !p.prefixed {
			return
		}
		c.Params[i] = p
		return
	}
	c.Params = append(c.Params, p)
}

func (c *Comment) setReturn(r Return) {
	if c.Return != nil && c.Return.prefixed && !r.prefixed {
		return
	}
	c.Return = &r
}

func (c *Comment) addVar(v Var) {
	for i, existing := range c.Vars {
		if existing.Name != v.Name {
			continue
		}
		if existing.prefixed && !v.prefixed {
			return
		}
		c.Vars[i] = v
		return
	}
	c.Vars = append(c.Vars, v)
}
