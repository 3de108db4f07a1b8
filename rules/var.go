package rules

import (
	"github.com/dhamidi/phpcheck/diagnostic"
	"github.com/dhamidi/phpcheck/php/parser"
	"github.com/dhamidi/phpcheck/php/phpdoc"
)

// VarCheck compares @var tags with property initializers, property type
// hints and the values of inline-annotated assignments.
type VarCheck struct{}

func (VarCheck) Name() string { return "strict_typing/phpdoc_var_check" }

func (r VarCheck) Check(ctx *Context) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for site := range ctx.File.Sites() {
		switch s := site.(type) {
		case *parser.PropertyDecl:
			diags = append(diags, r.checkProperty(ctx, s)...)
		case *parser.AssignStmt:
			diags = append(diags, r.checkAssign(ctx, s)...)
		}
	}
	return diags
}

func (r VarCheck) checkProperty(ctx *Context, prop *parser.PropertyDecl) []diagnostic.Diagnostic {
	doc := phpdoc.Associate(prop)
	if doc == nil {
		return nil
	}

	hint := conflict{rule: r.Name(), tag: "@var", context: "native hint"}
	value := conflict{rule: r.Name(), tag: "@var", context: "assigned value"}

	// Each element takes the tag naming it, or the tag without a subject.
	var diags []diagnostic.Diagnostic
	for _, tag := range doc.Vars {
		var elements []*parser.PropertyElement
		for _, el := range prop.Elements {
			if t, ok := doc.Var(el.Name); ok && t.Name == tag.Name {
				elements = append(elements, el)
			}
		}
		if len(elements) == 0 {
			continue
		}

		diags = append(diags, hint.checkHint(ctx, tag.Type, prop.Type)...)
		for _, el := range elements {
			diags = append(diags, value.checkValue(ctx, tag.Type, el.Default)...)
		}
	}
	return diags
}

func (r VarCheck) checkAssign(ctx *Context, assign *parser.AssignStmt) []diagnostic.Diagnostic {
	tag, ok := phpdoc.Associate(assign).Var(assign.Var)
	if !ok {
		return nil
	}
	value := conflict{rule: r.Name(), tag: "@var", context: "assigned value"}
	return value.checkValue(ctx, tag.Type, assign.Value)
}
