// Package diagnostic defines the problems reported by the analyzer.
package diagnostic

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dhamidi/phpcheck/php/parser"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity is the inverse of Severity.String.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	}
	return SeverityError, fmt.Errorf("unknown severity %q", s)
}

// Diagnostic is a single problem found in a file.
type Diagnostic struct {
	Path     string
	Rule     string
	Severity Severity
	Message  string
	Span     parser.Span
}

// Summary renders the diagnostic without its position, as used by the
// expectation files of the fixture suite.
func (d Diagnostic) Summary() string {
	return d.Severity.String() + ": " + d.Message
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %d:%d", d.Summary(), d.Span.Start.Line, d.Span.Start.Column)
}

// Sort orders diagnostics by path, then position, then rule.
func Sort(diags []Diagnostic) {
	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(a.Span.Start.Line, b.Span.Start.Line),
			cmp.Compare(a.Span.Start.Column, b.Span.Start.Column),
			cmp.Compare(a.Rule, b.Rule),
		)
	})
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	return slices.ContainsFunc(diags, func(d Diagnostic) bool {
		return d.Severity == SeverityError
	})
}
