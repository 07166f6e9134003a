// Package format renders processed documents in the supported output
// formats: readable text with indented dependency trees, JSON, Graphviz
// DOT and binary protobuf.
package format

import (
	"fmt"
	"io"
	"sort"
	"strings"

	reseg "github.com/jamesainslie/go-reseg"
)

// Encoder writes processed documents to its underlying writer.
type Encoder interface {
	Encode(doc *reseg.Document) error
}

// Supported lists the format names New accepts.
func Supported() []string {
	return []string{"text", "json", "dot", "proto"}
}

// New returns an encoder writing the named format to w.
func New(kind string, w io.Writer) (Encoder, error) {
	switch kind {
	case "text":
		return NewTextEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "dot":
		return NewDOTEncoder(w), nil
	case "proto":
		return NewProtoEncoder(w), nil
	}
	return nil, fmt.Errorf("format: unsupported format %q", kind)
}

// nodeLabel is the display text of tree node n: the token itself plus any
// tokens merged into it, in token order.
func nodeLabel(s *reseg.Sentence, n int) string {
	node := s.Tree.Nodes[n]
	if len(node.Merged) == 0 {
		return s.Tokens[n].Text
	}

	idx := append([]int{n}, node.Merged...)
	sort.Ints(idx)
	parts := make([]string, len(idx))
	for i, j := range idx {
		parts[i] = s.Tokens[j].Text
	}
	return strings.Join(parts, " ")
}

// relation is the display label of node n's incoming edge.
func relation(s *reseg.Sentence, n int) string {
	if s.Tree.Nodes[n].Parent < 0 {
		return "root"
	}
	if rel := s.Tokens[n].Dep; rel != "" {
		return rel
	}
	return "dep"
}
