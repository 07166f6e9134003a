package format

import (
	"encoding/json"
	"io"

	reseg "github.com/jamesainslie/go-reseg"
)

// JSONEncoder writes documents as indented JSON, one object per document.
type JSONEncoder struct {
	w io.Writer
}

// NewJSONEncoder creates a JSON encoder writing to w.
func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

// Encode renders the document.
func (e *JSONEncoder) Encode(doc *reseg.Document) error {
	enc := json.NewEncoder(e.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
