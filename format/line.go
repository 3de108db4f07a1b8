package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/phpcheck/diagnostic"
)

// LineEncoder writes one tab-separated line per diagnostic:
// path:line:column, severity, rule and message.
type LineEncoder struct {
	w     io.Writer
	diags []diagnostic.Diagnostic
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(diags []diagnostic.Diagnostic) error {
	e.diags = diags
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, d := range e.diags {
		fmt.Fprintf(&sb, "%s:%d:%d\t%s\t%s\t%s\n",
			d.Path,
			d.Span.Start.Line,
			d.Span.Start.Column,
			d.Severity,
			d.Rule,
			d.Message,
		)
	}
	return []byte(sb.String()), nil
}
