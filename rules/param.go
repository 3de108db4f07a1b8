package rules

import (
	"github.com/dhamidi/phpcheck/diagnostic"
	"github.com/dhamidi/phpcheck/php/parser"
	"github.com/dhamidi/phpcheck/php/phpdoc"
)

// ParamCheck compares @param tags with native parameter hints, default
// values and the literal arguments of calls to project functions.
type ParamCheck struct{}

func (ParamCheck) Name() string { return "strict_typing/phpdoc_param_check" }

func (r ParamCheck) Check(ctx *Context) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for fn := range ctx.File.Functions() {
		diags = append(diags, r.checkDecl(ctx, fn)...)
	}
	for _, call := range ctx.File.Calls() {
		diags = append(diags, r.checkCall(ctx, call)...)
	}
	return diags
}

func (r ParamCheck) checkDecl(ctx *Context, fn *parser.FunctionDecl) []diagnostic.Diagnostic {
	doc := phpdoc.Associate(fn)

	var diags []diagnostic.Diagnostic
	for _, tag := range doc.Params {
		param, _ := fn.Param(tag.Name)
		if param == nil || !sameVariadic(param, tag) {
			continue
		}
		suffix := " for parameter $" + param.Name

		hint := conflict{rule: r.Name(), tag: "@param", context: "native hint", suffix: suffix}
		diags = append(diags, hint.checkHint(ctx, tag.Type, param.Type)...)

		def := conflict{rule: r.Name(), tag: "@param", context: "default value", suffix: suffix}
		diags = append(diags, def.checkValue(ctx, tag.Type, param.Default)...)
	}
	return diags
}

func (r ParamCheck) checkCall(ctx *Context, call *parser.CallExpr) []diagnostic.Diagnostic {
	target := ctx.Project.Function(call.Name)
	if target == nil {
		return nil
	}
	doc := phpdoc.Associate(target.Decl)
	if len(doc.Params) == 0 {
		return nil
	}

	var diags []diagnostic.Diagnostic
	for i, arg := range call.Args {
		if arg.Spread {
			// Unpacked arguments hide how values map to parameters.
			break
		}
		param := argumentParam(target.Decl, arg, i)
		if param == nil {
			continue
		}
		tag, ok := doc.Param(param.Name)
		if !ok || !sameVariadic(param, tag) {
			continue
		}
		c := conflict{rule: r.Name(), tag: "@param", context: "argument", suffix: " for parameter $" + param.Name}
		diags = append(diags, c.checkValue(ctx, tag.Type, arg.Value)...)
	}
	return diags
}

// argumentParam returns the parameter receiving the i-th argument of a
// call. Extra positional arguments go to a trailing variadic parameter.
func argumentParam(fn *parser.FunctionDecl, arg *parser.Argument, i int) *parser.Param {
	if arg.Name != "" {
		p, _ := fn.Param(arg.Name)
		return p
	}
	if i < len(fn.Params) {
		return fn.Params[i]
	}
	if n := len(fn.Params); n > 0 && fn.Params[n-1].Variadic {
		return fn.Params[n-1]
	}
	return nil
}

// sameVariadic reports whether tag describes the elements of a variadic
// parameter. A variadic documented without "..." usually describes the
// whole array of arguments, which the native hint does not.
func sameVariadic(param *parser.Param, tag phpdoc.Param) bool {
	return !param.Variadic || tag.Variadic
}
