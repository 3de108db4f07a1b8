package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/phpcheck/diagnostic"
)

// TextEncoder writes diagnostics for people: the message, its location
// and, when the source is available, the offending line with a caret
// under the span.
type TextEncoder struct {
	w       io.Writer
	sources Sources
	diags   []diagnostic.Diagnostic
}

func NewTextEncoder(w io.Writer, sources Sources) *TextEncoder {
	return &TextEncoder{w: w, sources: sources}
}

func (e *TextEncoder) Encode(diags []diagnostic.Diagnostic) error {
	e.diags = diags
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TextEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	lines := map[string][]string{}

	for i, d := range e.diags {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s: %s\n", d.Severity, d.Message)
		fmt.Fprintf(&sb, " --> %s:%d:%d\n", d.Path, d.Span.Start.Line, d.Span.Start.Column)

		src, ok := lines[d.Path]
		if !ok && e.sources != nil {
			if content := e.sources(d.Path); content != nil {
				src = strings.Split(string(content), "\n")
			}
			lines[d.Path] = src
		}
		writeSnippet(&sb, src, d)
	}
	return []byte(sb.String()), nil
}

func writeSnippet(sb *strings.Builder, lines []string, d diagnostic.Diagnostic) {
	row := d.Span.Start.Line
	if row < 1 || row > len(lines) {
		return
	}
	line := strings.TrimRight(lines[row-1], "\r")

	sb.WriteString("    |\n")
	if row > 1 {
		fmt.Fprintf(sb, "%3d | %s\n", row-1, strings.TrimRight(lines[row-2], "\r"))
	}
	fmt.Fprintf(sb, "%3d | %s\n", row, line)

	col := max(d.Span.Start.Column-1, 0)
	col = min(col, len(line))
	width := 1
	if d.Span.End.Line == row && d.Span.End.Column > d.Span.Start.Column {
		width = d.Span.End.Column - d.Span.Start.Column
	}

	// Keep tabs so the caret lines up with the source.
	indent := strings.Map(func(r rune) rune {
		if r == '\t' {
			return '\t'
		}
		return ' '
	}, line[:col])
	fmt.Fprintf(sb, "    | %s%s\n", indent, strings.Repeat("^", width))

	if row < len(lines) {
		if next := strings.TrimRight(lines[row], "\r"); next != "" {
			fmt.Fprintf(sb, "%3d | %s\n", row+1, next)
		}
	}
}
