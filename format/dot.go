package format

import (
	"bytes"
	"fmt"
	"io"

	reseg "github.com/jamesainslie/go-reseg"
)

// DOTEncoder writes one Graphviz digraph per sentence, tokens as boxes and
// dependency relations as labeled edges.
type DOTEncoder struct {
	w io.Writer
}

// NewDOTEncoder creates a DOT encoder writing to w.
func NewDOTEncoder(w io.Writer) *DOTEncoder {
	return &DOTEncoder{w: w}
}

// Encode renders the document.
func (e *DOTEncoder) Encode(doc *reseg.Document) error {
	var buf bytes.Buffer

	for i := range doc.Sentences {
		s := &doc.Sentences[i]
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "digraph sentence%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", s.Text)
		fmt.Fprint(&buf, "    node [shape=box, fontname=\"Helvetica\", fontsize=12];\n")

		if !s.TreeValid() {
			fmt.Fprintf(&buf, "    // no tree: %v\n", s.TreeErr)
			buf.WriteString("}\n")
			continue
		}

		buf.WriteByte('\n')
		s.Tree.Walk(func(n, depth int) {
			fmt.Fprintf(&buf, "    n%d [label=%q];\n", n, nodeLabel(s, n)+"\n"+s.Tokens[n].POS)
		})
		buf.WriteByte('\n')
		s.Tree.Walk(func(n, depth int) {
			for _, c := range s.Tree.Nodes[n].Children {
				fmt.Fprintf(&buf, "    n%d -> n%d [label=%q, fontsize=10];\n", n, c, relation(s, c))
			}
		})
		buf.WriteString("}\n")
	}

	_, err := e.w.Write(buf.Bytes())
	return err
}
