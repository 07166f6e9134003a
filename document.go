package reseg

// Fold records one merge decision: the rule that fired and the two spans it
// joined. Prev is the accumulated span at the time of the decision.
type Fold struct {
	Rule string `json:"rule"`
	Prev Span   `json:"prev"`
	Cur  Span   `json:"cur"`
}

// Stats summarizes what the correction pipeline did to a document.
type Stats struct {
	Candidates   int `json:"candidates"`    // raw sentence candidates from the parser
	Merges       int `json:"merges"`        // folds applied
	Shifts       int `json:"shifts"`        // whitespace tokens moved to the previous sentence
	Reparses     int `json:"reparses"`      // spans re-submitted to the parser
	InvalidTrees int `json:"invalid_trees"` // sentences whose tree construction failed
}

// Sentence is one finalized sentence of a document. Span is its token range
// in the document-level parse; Start and End are byte offsets into the
// document text. Tokens is the sentence's own stream: a slice of the
// original parse, or a fresh stream when the sentence was reparsed (then
// token offsets are relative to the sentence text). Tree is nil when
// construction failed; TreeErr says why.
type Sentence struct {
	Span     Span    `json:"span"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Text     string  `json:"text"`
	Tokens   []Token `json:"tokens"`
	Reparsed bool    `json:"reparsed,omitempty"`
	Tree     *Tree   `json:"tree,omitempty"`
	TreeErr  error   `json:"-"`
}

// TreeValid reports whether the sentence carries a usable dependency tree.
// Consumers should skip tree-dependent operations when it is false.
func (s *Sentence) TreeValid() bool { return s.Tree != nil }

// Document is the read-only result of processing one text: the corrected
// sentence sequence, the merge trace, and pipeline statistics. Sentences
// cover the entire token stream in order with no gaps or overlaps.
type Document struct {
	Text      string     `json:"text"`
	Sentences []Sentence `json:"sentences"`
	Folds     []Fold     `json:"folds,omitempty"`
	Stats     Stats      `json:"stats"`
}

// Texts returns the sentence texts in order.
func (d *Document) Texts() []string {
	out := make([]string, len(d.Sentences))
	for i, s := range d.Sentences {
		out[i] = s.Text
	}
	return out
}

// Boundaries returns the byte offset at which each sentence ends, for
// offset-based tooling.
func (d *Document) Boundaries() []int {
	out := make([]int, len(d.Sentences))
	for i, s := range d.Sentences {
		out[i] = s.End
	}
	return out
}

// Spans returns the corrected token spans in document-parse coordinates.
func (d *Document) Spans() []Span {
	out := make([]Span, len(d.Sentences))
	for i, s := range d.Sentences {
		out[i] = s.Span
	}
	return out
}

// MergePrepositions folds prepositional children into their verb heads in
// every valid tree, turning verbs like "jump" + "over" into one sense unit.
// It is an explicit post-op: the engine never applies it on its own.
func (d *Document) MergePrepositions() {
	for i := range d.Sentences {
		s := &d.Sentences[i]
		if s.Tree != nil {
			s.Tree.mergePreps(s.Tokens)
		}
	}
}
