// Package punkt adapts the Punkt statistical sentence tokenizer to the
// engine's Parser interface. Punkt detects boundaries but knows nothing
// about syntax, so tokens come from Unicode word segmentation and carry no
// dependency heads; sentences built from this adapter degrade to flat,
// treeless output except where a sentence is a single token.
package punkt

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/neurosnap/sentences"
	sentencesdata "github.com/neurosnap/sentences/data"

	reseg "github.com/jamesainslie/go-reseg"
	"github.com/jamesainslie/go-reseg/words"
)

// Parser is a reseg.Parser over a trained Punkt model. It is safe for
// concurrent use.
type Parser struct {
	tok *sentences.DefaultSentenceTokenizer
}

// New builds a Parser from the embedded English training data.
func New() (*Parser, error) {
	data, err := sentencesdata.Asset("english.json")
	if err != nil {
		return nil, fmt.Errorf("loading embedded english model: %w", err)
	}
	return fromTraining(data)
}

// NewFromModel builds a Parser from Punkt training data on disk, for
// languages beyond the embedded English model.
func NewFromModel(path string) (*Parser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading punkt model: %w", err)
	}
	return fromTraining(data)
}

func fromTraining(data []byte) (*Parser, error) {
	storage, err := sentences.LoadTraining(data)
	if err != nil {
		return nil, fmt.Errorf("loading punkt training data: %w", err)
	}
	return &Parser{tok: sentences.NewSentenceTokenizer(storage)}, nil
}

// Parse tokenizes text on Unicode word boundaries and groups the tokens
// into Punkt's sentence candidates. Every token's Head is -1; whitespace
// tokens are tagged SPACE.
func (p *Parser) Parse(ctx context.Context, text string) (*reseg.Parse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	parse := &reseg.Parse{Text: text, Tokens: words.Split(text)}
	for i := range parse.Tokens {
		if parse.Tokens[i].IsWhitespace() {
			parse.Tokens[i].POS = "SPACE"
		}
	}
	if len(parse.Tokens) == 0 {
		return parse, nil
	}

	parse.Sentences = spansFromEnds(parse.Tokens, p.sentenceEnds(text))
	return parse, nil
}

// sentenceEnds locates each detected sentence in the original text and
// returns the ascending byte offsets where their trimmed texts end. Punkt
// slices rather than rewrites its input, so each trimmed sentence occurs
// verbatim at or after the previous end.
func (p *Parser) sentenceEnds(text string) []int {
	var ends []int
	cursor := 0
	for _, s := range p.tok.Tokenize(text) {
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		at := strings.Index(text[cursor:], t)
		if at < 0 {
			continue
		}
		end := cursor + at + len(t)
		ends = append(ends, end)
		cursor = end
	}
	return ends
}

// spansFromEnds cuts the token stream at the sentence end offsets. A token
// starting at or past an end belongs to the next sentence, which leaves
// inter-sentence whitespace tokens at span starts for the engine's shift
// pass to reclaim. Cuts that would create an empty span are dropped, so the
// result always tiles the stream.
func spansFromEnds(tokens []reseg.Token, ends []int) []reseg.Span {
	var spans []reseg.Span
	start := 0
	for i, t := range tokens {
		for len(ends) > 0 && t.Start >= ends[0] {
			ends = ends[1:]
			if i > start {
				spans = append(spans, reseg.Span{Start: start, End: i})
				start = i
			}
		}
	}
	return append(spans, reseg.Span{Start: start, End: len(tokens)})
}
