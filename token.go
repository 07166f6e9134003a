package reseg

import (
	"context"
	"unicode"
)

// Token is one token of a parse. Tokens are owned by the parse that produced
// them and are never mutated by the engine; a reparse replaces a sentence's
// token stream wholesale.
//
// Head is the document-level index of the token's dependency head. A root
// token points at itself (CoNLL-U and spaCy convention) or at an index
// outside its sentence; parsers that emit no dependency structure use -1.
type Token struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Start   int    `json:"start"` // byte offset in the parsed text
	End     int    `json:"end"`   // byte offset in the parsed text
	Lemma   string `json:"lemma,omitempty"`
	POS     string `json:"pos,omitempty"` // coarse part-of-speech (UPOS)
	Tag     string `json:"tag,omitempty"` // fine-grained tag
	Dep     string `json:"dep,omitempty"` // dependency relation to Head
	Head    int    `json:"head"`
	EntType string `json:"ent_type,omitempty"`
	EntIOB  string `json:"ent_iob,omitempty"`
}

// IsWhitespace reports whether the token consists entirely of whitespace.
func (t Token) IsWhitespace() bool {
	for _, r := range t.Text {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return len(t.Text) > 0
}

// Span is a half-open [Start, End) interval of token indices.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of tokens covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Parse is the output of the external parser capability: the parsed text,
// its ordered token stream, and the parser's raw sentence boundaries. The
// engine treats Sentences as candidates to be corrected.
type Parse struct {
	Text      string
	Tokens    []Token
	Sentences []Span
}

// Parser is the external linguistic capability the engine is built on.
// Implementations must be deterministic for identical input within a process
// lifetime and should document whether they are safe for concurrent use.
type Parser interface {
	Parse(ctx context.Context, text string) (*Parse, error)
}
