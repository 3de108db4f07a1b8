// Package format renders diagnostics for people and for tools.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/phpcheck/diagnostic"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(diags []diagnostic.Diagnostic) error
}

// Names lists the formats accepted by New.
var Names = []string{"text", "line", "json"}

// New returns the encoder called name writing to w. Sources, if not nil,
// provides file contents for source snippets.
func New(name string, w io.Writer, sources Sources) (Encoder, error) {
	switch name {
	case "", "text":
		return NewTextEncoder(w, sources), nil
	case "line":
		return NewLineEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q, expected one of %v", name, Names)
}

// Sources returns the contents of the file at path, or nil.
type Sources func(path string) []byte
