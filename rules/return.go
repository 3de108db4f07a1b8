package rules

import (
	"strings"

	"github.com/dhamidi/phpcheck/diagnostic"
	"github.com/dhamidi/phpcheck/php/doctype"
	"github.com/dhamidi/phpcheck/php/observed"
	"github.com/dhamidi/phpcheck/php/parser"
	"github.com/dhamidi/phpcheck/php/phpdoc"
)

// ReturnCheck compares @return tags with native return hints and the
// values of return statements.
type ReturnCheck struct{}

func (ReturnCheck) Name() string { return "strict_typing/phpdoc_return_check" }

func (r ReturnCheck) Check(ctx *Context) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for fn := range ctx.File.Functions() {
		diags = append(diags, r.checkFunction(ctx, fn)...)
	}
	return diags
}

func (r ReturnCheck) checkFunction(ctx *Context, fn *parser.FunctionDecl) []diagnostic.Diagnostic {
	tag := phpdoc.Associate(fn).Return
	if tag == nil || tag.Type == nil {
		return nil
	}

	hint := conflict{rule: r.Name(), tag: "@return", context: "native return hint"}
	diags := hint.checkHint(ctx, tag.Type, fn.Result)

	// The values returned by a generator are not what calling it returns.
	if fn.Generator {
		return diags
	}

	value := conflict{rule: r.Name(), tag: "@return", context: "returned value"}
	for _, ret := range fn.Returns {
		if ret.Value == nil {
			continue
		}
		if isVoid(tag.Type) {
			msg := value.message(tag.Type.String(), value.context, observed.Infer(ret.Value).String(), "")
			diags = append(diags, value.diagnostic(ctx, ret.Value.Span(), msg))
			continue
		}
		diags = append(diags, value.checkValue(ctx, tag.Type, ret.Value)...)
	}
	return diags
}

func isVoid(e doctype.Expr) bool {
	s, ok := e.(doctype.Simple)
	return ok && strings.EqualFold(s.Name, "void")
}
