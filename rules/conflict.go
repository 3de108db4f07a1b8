package rules

import (
	"fmt"

	"github.com/dhamidi/phpcheck/diagnostic"
	"github.com/dhamidi/phpcheck/php/compat"
	"github.com/dhamidi/phpcheck/php/doctype"
	"github.com/dhamidi/phpcheck/php/observed"
	"github.com/dhamidi/phpcheck/php/parser"
)

// conflict describes where a documented type is being compared: the tag
// that declared it, what the observed side is, and an optional suffix
// naming the subject.
type conflict struct {
	rule    string
	tag     string
	context string
	suffix  string
}

func (c conflict) message(declared, context, observed, extra string) string {
	return fmt.Sprintf("%s type '%s' conflicts with %s type '%s'%s%s", c.tag, declared, context, observed, extra, c.suffix)
}

func (c conflict) diagnostic(ctx *Context, span parser.Span, message string) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Path:     ctx.File.Path,
		Rule:     c.rule,
		Severity: diagnostic.SeverityError,
		Message:  message,
		Span:     span,
	}
}

// checkValue compares declared with the value expression. Each offending
// array entry or missing shape field yields its own diagnostic.
func (c conflict) checkValue(ctx *Context, declared doctype.Expr, value parser.Expr) []diagnostic.Diagnostic {
	if declared == nil || value == nil {
		return nil
	}
	r := compat.Check(declared, observed.Infer(value))
	if r.Compatible() {
		return nil
	}

	lit, _ := value.(*parser.ArrayLit)
	var diags []diagnostic.Diagnostic
	for _, p := range r.Problems {
		span := value.Span()
		var msg string
		switch p.Part {
		case compat.PartKey:
			if entry := entryAt(lit, p.Entry); entry != nil {
				span = entry.Value.Span()
				if entry.Key != nil {
					span = entry.Key.Span()
				}
			}
			msg = c.message(p.Declared.String(), "array key", p.Observed.String(), fieldSuffix(p.Field))
		case compat.PartValue:
			if entry := entryAt(lit, p.Entry); entry != nil {
				span = entry.Value.Span()
			}
			msg = c.message(p.Declared.String(), "array value", p.Observed.String(), fieldSuffix(p.Field))
		case compat.PartMissingField:
			msg = c.message(r.Declared, c.context, r.Observed, fmt.Sprintf(" (missing field '%s')", p.Field))
		default:
			msg = c.message(r.Declared, c.context, r.Observed, "")
		}
		diags = append(diags, c.diagnostic(ctx, span, msg))
	}
	return diags
}

// checkHint compares declared with a native type hint. Documentation may
// narrow a hint but must not contradict it.
func (c conflict) checkHint(ctx *Context, declared doctype.Expr, hint *parser.TypeHint) []diagnostic.Diagnostic {
	if declared == nil || hint == nil {
		return nil
	}
	r := compat.Check(declared, observed.FromHint(hint.Text, ctx.Hints))
	if r.Compatible() {
		return nil
	}
	return []diagnostic.Diagnostic{c.diagnostic(ctx, hint.Span, c.message(r.Declared, c.context, r.Observed, ""))}
}

func entryAt(lit *parser.ArrayLit, i int) *parser.ArrayEntry {
	if lit == nil || i < 0 || i >= len(lit.Entries) {
		return nil
	}
	return lit.Entries[i]
}

func fieldSuffix(field string) string {
	if field == "" {
		return ""
	}
	return fmt.Sprintf(" for field '%s'", field)
}
