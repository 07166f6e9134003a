// Package conllu reads CoNLL-U treebank files and converts them into
// engine parses, so gold corpora can drive the pipeline and its tests.
package conllu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	reseg "github.com/jamesainslie/go-reseg"
)

// Word is one syntactic word line of a CoNLL-U sentence. ID and Head keep
// the format's 1-based numbering; Head 0 marks the root.
type Word struct {
	ID     int
	Form   string
	Lemma  string
	UPOS   string
	XPOS   string
	Feats  string
	Head   int
	Deprel string
	Misc   string
}

// SpaceAfter reports whether a space follows this word in the surface text.
func (w Word) SpaceAfter() bool {
	return !strings.Contains(w.Misc, "SpaceAfter=No")
}

// Sentence is one sentence block: its metadata and word lines.
type Sentence struct {
	ID    string
	Text  string
	Words []Word
}

// ReadFile reads a CoNLL-U file from disk.
func ReadFile(path string) ([]Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses CoNLL-U sentence blocks: comment metadata, 10-column word
// lines, blank-line separators. Multiword token ranges (1-2) and empty
// nodes (2.1) are skipped; only syntactic words survive.
func Read(r io.Reader) ([]Sentence, error) {
	var (
		out []Sentence
		cur Sentence
	)
	flush := func() {
		if len(cur.Words) > 0 {
			out = append(out, cur)
		}
		cur = Sentence{}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "#") {
			if v, ok := strings.CutPrefix(line, "# sent_id = "); ok {
				cur.ID = v
			} else if v, ok := strings.CutPrefix(line, "# text = "); ok {
				cur.Text = v
			}
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) != 10 {
			return nil, fmt.Errorf("line %d: %d columns, want 10", lineNo, len(cols))
		}
		if strings.ContainsAny(cols[0], "-.") {
			continue
		}

		id, err := strconv.Atoi(cols[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad word id %q", lineNo, cols[0])
		}
		head := 0
		if cols[6] != "_" {
			head, err = strconv.Atoi(cols[6])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad head %q", lineNo, cols[6])
			}
		}

		cur.Words = append(cur.Words, Word{
			ID:     id,
			Form:   cols[1],
			Lemma:  blank(cols[2]),
			UPOS:   blank(cols[3]),
			XPOS:   blank(cols[4]),
			Feats:  blank(cols[5]),
			Head:   head,
			Deprel: blank(cols[7]),
			Misc:   blank(cols[9]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}
	flush()

	return out, nil
}

func blank(s string) string {
	if s == "_" {
		return ""
	}
	return s
}

// ToParse flattens sentences into one engine parse. The surface text is
// reconstructed from forms and SpaceAfter annotations, sentences joined by
// a single space; offsets index into that text. Heads become absolute
// token indices, with each root pointing at itself.
func ToParse(sents []Sentence) *reseg.Parse {
	parse := &reseg.Parse{}

	var text strings.Builder
	for _, s := range sents {
		if len(s.Words) == 0 {
			continue
		}
		if text.Len() > 0 {
			text.WriteString(" ")
		}

		base := len(parse.Tokens)
		for i, w := range s.Words {
			start := text.Len()
			text.WriteString(w.Form)

			head := base + i
			if w.Head > 0 {
				head = base + w.Head - 1
			}
			parse.Tokens = append(parse.Tokens, reseg.Token{
				Index: base + i,
				Text:  w.Form,
				Start: start,
				End:   text.Len(),
				Lemma: w.Lemma,
				POS:   w.UPOS,
				Tag:   w.XPOS,
				Dep:   w.Deprel,
				Head:  head,
			})

			if i < len(s.Words)-1 && w.SpaceAfter() {
				text.WriteString(" ")
			}
		}
		parse.Sentences = append(parse.Sentences, reseg.Span{Start: base, End: len(parse.Tokens)})
	}

	parse.Text = text.String()
	return parse
}

// ErrOutsideDocument reports a parse request for text that is not a
// token-aligned slice of the wrapped treebank document.
var ErrOutsideDocument = errors.New("conllu: text outside treebank document")

// Parser serves one treebank document as an engine parser. The document
// text answers with the full parse; a token-aligned slice of it, which is
// what reparse requests look like, answers with a reindexed sub-parse.
// Anything else fails with ErrOutsideDocument.
type Parser struct {
	parse *reseg.Parse
}

// NewParser wraps a parse, usually built by ToParse.
func NewParser(parse *reseg.Parse) *Parser {
	return &Parser{parse: parse}
}

// Parse implements reseg.Parser against the wrapped document.
func (p *Parser) Parse(_ context.Context, text string) (*reseg.Parse, error) {
	if text == p.parse.Text {
		return p.parse, nil
	}
	if text == "" {
		return &reseg.Parse{}, nil
	}
	if sub := p.slice(text); sub != nil {
		return sub, nil
	}
	return nil, fmt.Errorf("%w: %.40q", ErrOutsideDocument, text)
}

// slice searches for text as a token-aligned occurrence in the document and
// rebuilds that window as a standalone parse.
func (p *Parser) slice(text string) *reseg.Parse {
	doc := p.parse.Text
	for at := 0; at+len(text) <= len(doc); {
		i := strings.Index(doc[at:], text)
		if i < 0 {
			return nil
		}
		off := at + i
		if sub := p.sliceAt(off, off+len(text)); sub != nil {
			return sub
		}
		at = off + 1
	}
	return nil
}

// sliceAt rebuilds the tokens spanning exactly [lo,hi) as an independent
// parse: indices restart at zero, offsets shift to the window, and heads
// pointing outside the window become self-loops, so every original root of
// the window stays a root. Returns nil when no token run covers the window
// exactly.
func (p *Parser) sliceAt(lo, hi int) *reseg.Parse {
	tokens := p.parse.Tokens
	a := sort.Search(len(tokens), func(i int) bool { return tokens[i].Start >= lo })
	if a == len(tokens) || tokens[a].Start != lo {
		return nil
	}
	b := a
	for b < len(tokens) && tokens[b].End <= hi {
		b++
	}
	if b == a || tokens[b-1].End != hi {
		return nil
	}

	sub := &reseg.Parse{Text: p.parse.Text[lo:hi]}
	sub.Tokens = make([]reseg.Token, b-a)
	for i, t := range tokens[a:b] {
		t.Index = i
		t.Start -= lo
		t.End -= lo
		if t.Head >= a && t.Head < b {
			t.Head -= a
		} else {
			t.Head = i
		}
		sub.Tokens[i] = t
	}
	sub.Sentences = []reseg.Span{{Start: 0, End: len(sub.Tokens)}}
	return sub
}
