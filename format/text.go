package format

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	reseg "github.com/jamesainslie/go-reseg"
)

// TextEncoder writes each sentence followed by its dependency tree, one
// node per line, indented by depth.
type TextEncoder struct {
	w io.Writer
}

// NewTextEncoder creates a text encoder writing to w.
func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w}
}

// Encode renders the document.
func (e *TextEncoder) Encode(doc *reseg.Document) error {
	var buf bytes.Buffer

	for i := range doc.Sentences {
		s := &doc.Sentences[i]
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(s.Text)
		buf.WriteByte('\n')

		if !s.TreeValid() {
			fmt.Fprintf(&buf, "  (no tree: %v)\n", s.TreeErr)
			continue
		}
		s.Tree.Walk(func(n, depth int) {
			fmt.Fprintf(&buf, "%s%s (%s, %s)\n",
				strings.Repeat("  ", depth+1), nodeLabel(s, n), s.Tokens[n].POS, relation(s, n))
		})
	}

	_, err := e.w.Write(buf.Bytes())
	return err
}
