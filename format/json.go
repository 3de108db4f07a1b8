package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/phpcheck/diagnostic"
)

type JSONEncoder struct {
	w     io.Writer
	diags []diagnostic.Diagnostic
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(diags []diagnostic.Diagnostic) error {
	e.diags = diags
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	if _, err = e.w.Write(text); err != nil {
		return err
	}
	_, err = io.WriteString(e.w, "\n")
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	out := jsonReport{Diagnostics: make([]jsonDiagnostic, len(e.diags))}
	for i, d := range e.diags {
		out.Diagnostics[i] = jsonDiagnostic{
			Path:     d.Path,
			Rule:     d.Rule,
			Severity: d.Severity.String(),
			Message:  d.Message,
			Start:    jsonPosition{Line: d.Span.Start.Line, Column: d.Span.Start.Column, Offset: d.Span.Start.Offset},
			End:      jsonPosition{Line: d.Span.End.Line, Column: d.Span.End.Column, Offset: d.Span.End.Offset},
		}
		if d.Severity == diagnostic.SeverityError {
			out.Errors++
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

type jsonReport struct {
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
	Errors      int              `json:"errors"`
}

type jsonDiagnostic struct {
	Path     string       `json:"path"`
	Rule     string       `json:"rule"`
	Severity string       `json:"severity"`
	Message  string       `json:"message"`
	Start    jsonPosition `json:"start"`
	End      jsonPosition `json:"end"`
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}
