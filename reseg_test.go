package reseg

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// tokenize splits text into offset-tracked tokens the way spaCy-style
// tokenizers do: runs of non-space characters become tokens, and so do runs
// of whitespace other than a lone ASCII space.
func tokenize(text string) []Token {
	var tokens []Token
	i := 0
	for i < len(text) {
		ws := isSpaceByte(text[i])
		j := i + 1
		for j < len(text) && isSpaceByte(text[j]) == ws {
			j++
		}
		if ws && text[i:j] == " " {
			i = j
			continue
		}
		tokens = append(tokens, Token{Index: len(tokens), Text: text[i:j], Start: i, End: j})
		i = j
	}
	return tokens
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// oneSentence builds a Parse covering all of text as a single sentence
// candidate, with every head pointing at the first token.
func oneSentence(text string) *Parse {
	p := &Parse{Text: text, Tokens: tokenize(text)}
	if len(p.Tokens) == 0 {
		return p
	}
	for i := range p.Tokens {
		p.Tokens[i].Head = p.Tokens[0].Index
	}
	p.Sentences = []Span{{Start: 0, End: len(p.Tokens)}}
	return p
}

// nSentences builds a Parse whose token stream is split into consecutive
// sentence candidates of the given token counts. The first token of each
// candidate heads itself and the rest of the candidate attaches to it.
func nSentences(t *testing.T, text string, counts ...int) *Parse {
	t.Helper()

	p := &Parse{Text: text, Tokens: tokenize(text)}
	at := 0
	for _, n := range counts {
		sp := Span{Start: at, End: at + n}
		for i := sp.Start; i < sp.End; i++ {
			p.Tokens[i].Head = sp.Start
		}
		p.Sentences = append(p.Sentences, sp)
		at = sp.End
	}
	if at != len(p.Tokens) {
		t.Fatalf("sentence counts %v cover %d tokens, text has %d", counts, at, len(p.Tokens))
	}
	return p
}

// fakeParser serves scripted parses by exact text, falling back to
// oneSentence for anything unscripted (which is how reparse requests for
// span texts come back as single sentences).
type fakeParser struct {
	mu     sync.Mutex
	parses map[string]*Parse
	errs   map[string]error
	err    error
	calls  []string
}

func (p *fakeParser) Parse(_ context.Context, text string) (*Parse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, text)
	p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	if err, ok := p.errs[text]; ok {
		return nil, err
	}
	if parse, ok := p.parses[text]; ok {
		return parse, nil
	}
	return oneSentence(text), nil
}

func TestNew_NilParser(t *testing.T) {
	_, err := New(nil)
	if err == nil {
		t.Fatal("expected error for nil parser")
	}
	if !errors.Is(err, ErrNilParser) {
		t.Errorf("expected ErrNilParser, got: %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(&fakeParser{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if len(e.rules) != 4 {
		t.Errorf("expected 4 default rules, got %d", len(e.rules))
	}
	if e.policy != ReparseAll {
		t.Errorf("expected default policy ReparseAll, got %v", e.policy)
	}
	if e.logger == nil {
		t.Error("expected non-nil default logger")
	}
}

func TestEngine_Process_EmptyText(t *testing.T) {
	// The parser would fail every call; empty input must never reach it.
	e, err := New(&fakeParser{err: errors.New("should not be called")})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	doc, err := e.Process(context.Background(), "")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(doc.Sentences) != 0 {
		t.Errorf("expected no sentences, got %d", len(doc.Sentences))
	}
}

func TestEngine_Process_NoTokens(t *testing.T) {
	fake := &fakeParser{parses: map[string]*Parse{
		"???": {Text: "???"},
	}}
	e, _ := New(fake)

	doc, err := e.Process(context.Background(), "???")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(doc.Sentences) != 0 {
		t.Errorf("expected no sentences, got %d", len(doc.Sentences))
	}
	if doc.Stats.Candidates != 0 {
		t.Errorf("expected 0 candidates, got %d", doc.Stats.Candidates)
	}
}

func TestEngine_Process_NoMerges(t *testing.T) {
	text := "I saw the dog. The dog slept."
	fake := &fakeParser{parses: map[string]*Parse{
		text: nSentences(t, text, 4, 3),
	}}
	e, _ := New(fake)

	doc, err := e.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := []string{"I saw the dog.", "The dog slept."}
	if got := doc.Texts(); len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		if doc.Sentences[i].Text != w {
			t.Errorf("sentence %d = %q, want %q", i, doc.Sentences[i].Text, w)
		}
		if doc.Sentences[i].Reparsed {
			t.Errorf("sentence %d reparsed without any fold", i)
		}
		if !doc.Sentences[i].TreeValid() {
			t.Errorf("sentence %d tree invalid: %v", i, doc.Sentences[i].TreeErr)
		}
	}
	if doc.Stats != (Stats{Candidates: 2}) {
		t.Errorf("unexpected stats: %+v", doc.Stats)
	}
	// Only the initial parse; no reparse calls.
	if len(fake.calls) != 1 {
		t.Errorf("expected 1 parser call, got %d: %v", len(fake.calls), fake.calls)
	}
}

func TestEngine_Process_MergeRules(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		counts []int
		rule   string
	}{
		{
			name:   "trailing lowercase fragment",
			text:   "The meeting ended. abruptly.",
			counts: []int{3, 1},
			rule:   "short-fragment",
		},
		{
			name:   "parenthetical split off",
			text:   "He went home. (He forgot his keys.)",
			counts: []int{3, 4},
			rule:   "short-close-paren",
		},
		{
			name:   "abbreviation split",
			text:   "Dr. Smith arrived late.",
			counts: []int{1, 3},
			rule:   "short-capitalized-previous",
		},
		{
			name:   "missing terminal punctuation",
			text:   "Send the report to Bob\nHe needs it today.",
			counts: []int{5, 5},
			rule:   "missing-terminal-punct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeParser{parses: map[string]*Parse{
				tt.text: nSentences(t, tt.text, tt.counts...),
			}}
			e, _ := New(fake)

			doc, err := e.Process(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Process failed: %v", err)
			}

			if len(doc.Sentences) != 1 {
				t.Fatalf("expected 1 merged sentence, got %d: %v", len(doc.Sentences), doc.Texts())
			}
			if doc.Sentences[0].Text != tt.text {
				t.Errorf("sentence text = %q, want %q", doc.Sentences[0].Text, tt.text)
			}
			if len(doc.Folds) != 1 {
				t.Fatalf("expected 1 fold, got %d", len(doc.Folds))
			}
			if doc.Folds[0].Rule != tt.rule {
				t.Errorf("fold rule = %q, want %q", doc.Folds[0].Rule, tt.rule)
			}
			if !doc.Sentences[0].Reparsed {
				t.Error("merged sentence was not reparsed")
			}
			if doc.Stats.Merges != 1 || doc.Stats.Reparses != 1 {
				t.Errorf("unexpected stats: %+v", doc.Stats)
			}
		})
	}
}

func TestEngine_Process_ParentheticalBetweenSentences(t *testing.T) {
	// The short parenthetical folds into its left neighbor; the sentence
	// after it must not be dragged in just because the accumulated span now
	// contains a closing paren.
	text := "He went to the store. (He forgot his keys.) She waited."
	parse := &Parse{Text: text, Tokens: []Token{
		{Index: 0, Text: "He", Start: 0, End: 2, Head: 0},
		{Index: 1, Text: "went", Start: 3, End: 7, Head: 0},
		{Index: 2, Text: "to", Start: 8, End: 10, Head: 0},
		{Index: 3, Text: "the", Start: 11, End: 14, Head: 0},
		{Index: 4, Text: "store", Start: 15, End: 20, Head: 0},
		{Index: 5, Text: ".", Start: 20, End: 21, Head: 0},
		{Index: 6, Text: "(He", Start: 22, End: 25, Head: 6},
		{Index: 7, Text: "forgot", Start: 26, End: 32, Head: 6},
		{Index: 8, Text: "his", Start: 33, End: 36, Head: 6},
		{Index: 9, Text: "keys.)", Start: 37, End: 43, Head: 6},
		{Index: 10, Text: "She", Start: 44, End: 47, Head: 10},
		{Index: 11, Text: "waited", Start: 48, End: 54, Head: 10},
		{Index: 12, Text: ".", Start: 54, End: 55, Head: 10},
	}, Sentences: []Span{{Start: 0, End: 6}, {Start: 6, End: 10}, {Start: 10, End: 13}}}
	fake := &fakeParser{parses: map[string]*Parse{text: parse}}
	e, _ := New(fake)

	doc, err := e.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := []string{"He went to the store. (He forgot his keys.)", "She waited."}
	got := doc.Texts()
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("sentence %d = %q, want %q", i, got[i], w)
		}
	}
	if len(doc.Folds) != 1 || doc.Folds[0].Rule != "short-close-paren" {
		t.Errorf("folds = %+v", doc.Folds)
	}
	if doc.Stats.Merges != 1 {
		t.Errorf("expected 1 merge, got %d", doc.Stats.Merges)
	}
}

func TestEngine_Process_AccumulatedPrevious(t *testing.T) {
	// "Dr." folds into "Smith arrived."; the next boundary must classify
	// against the accumulated "Dr. Smith arrived.", which no rule merges.
	// Classifying against the raw "Smith arrived." would swallow "He left."
	text := "Dr. Smith arrived. He left."
	fake := &fakeParser{parses: map[string]*Parse{
		text: nSentences(t, text, 1, 2, 2),
	}}
	e, _ := New(fake)

	doc, err := e.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := []string{"Dr. Smith arrived.", "He left."}
	got := doc.Texts()
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("sentence %d = %q, want %q", i, got[i], w)
		}
	}
	if doc.Stats.Merges != 1 {
		t.Errorf("expected 1 merge, got %d", doc.Stats.Merges)
	}
}

func TestEngine_Process_WhitespaceShift(t *testing.T) {
	text := "The first line.\n\nThe second line."
	fake := &fakeParser{parses: map[string]*Parse{
		text: nSentences(t, text, 3, 4),
	}}
	e, _ := New(fake)

	doc, err := e.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := []string{"The first line.\n\n", "The second line."}
	got := doc.Texts()
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("sentence %d = %q, want %q", i, got[i], w)
		}
	}
	if doc.Stats != (Stats{Candidates: 2, Shifts: 1}) {
		t.Errorf("unexpected stats: %+v", doc.Stats)
	}
}

func TestEngine_Process_DegenerateSpanSkipped(t *testing.T) {
	// The whitespace-only candidate is last, so shifting its sole token
	// backward would empty it; the shift is skipped and the span survives.
	text := "A b c.\n\n"
	fake := &fakeParser{parses: map[string]*Parse{
		text: nSentences(t, text, 3, 1),
	}}
	e, _ := New(fake)

	doc, err := e.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(doc.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(doc.Sentences), doc.Texts())
	}
	if doc.Stats.Shifts != 0 {
		t.Errorf("expected no shifts, got %d", doc.Stats.Shifts)
	}
	last := doc.Sentences[1]
	if last.Text != "\n\n" {
		t.Errorf("last sentence = %q, want whitespace", last.Text)
	}
	if len(last.Tokens) != 1 || !last.Tokens[0].IsWhitespace() {
		t.Errorf("expected single whitespace token, got %v", last.Tokens)
	}
}

func TestEngine_Process_FoldThenShift(t *testing.T) {
	// The bare "\n\n" candidate folds forward under the missing-punctuation
	// rule, then the shift pass hands the newline token back to the first
	// sentence.
	text := "A b c.\n\nD e f."
	fake := &fakeParser{parses: map[string]*Parse{
		text: nSentences(t, text, 3, 1, 3),
	}}
	e, _ := New(fake)

	doc, err := e.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := []string{"A b c.\n\n", "D e f."}
	got := doc.Texts()
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("sentence %d = %q, want %q", i, got[i], w)
		}
	}
	if len(doc.Folds) != 1 {
		t.Fatalf("expected 1 fold, got %d", len(doc.Folds))
	}
	fold := doc.Folds[0]
	if fold.Rule != "missing-terminal-punct" {
		t.Errorf("fold rule = %q", fold.Rule)
	}
	if fold.Prev != (Span{Start: 3, End: 4}) || fold.Cur != (Span{Start: 4, End: 7}) {
		t.Errorf("fold spans = %+v/%+v", fold.Prev, fold.Cur)
	}
	if doc.Stats != (Stats{Candidates: 3, Merges: 1, Shifts: 1, Reparses: 2}) {
		t.Errorf("unexpected stats: %+v", doc.Stats)
	}
}

func TestEngine_Process_ReparseMergedPolicy(t *testing.T) {
	text := "I saw the dog. The dog slept. now"
	fake := &fakeParser{parses: map[string]*Parse{
		text: nSentences(t, text, 4, 3, 1),
	}}
	e, _ := New(fake, WithReparsePolicy(ReparseMerged))

	doc, err := e.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(doc.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(doc.Sentences), doc.Texts())
	}
	if doc.Sentences[0].Reparsed {
		t.Error("untouched sentence was reparsed under ReparseMerged")
	}
	if !doc.Sentences[1].Reparsed {
		t.Error("merged sentence was not reparsed")
	}
	if doc.Stats.Reparses != 1 {
		t.Errorf("expected 1 reparse, got %d", doc.Stats.Reparses)
	}
}

func TestEngine_Process_ReparseMismatchKeepsStream(t *testing.T) {
	// Trailing space keeps the document text distinct from the merged span
	// text, so the scripted reparse only serves the span. The reparse splits
	// "home." into two tokens; the engine keeps the fresh stream.
	text := "Go home. now "
	span := "Go home. now"
	fake := &fakeParser{parses: map[string]*Parse{
		text: nSentences(t, text, 2, 1),
		span: {Text: span, Tokens: []Token{
			{Index: 0, Text: "Go", Start: 0, End: 2, Head: 0},
			{Index: 1, Text: "home", Start: 3, End: 7, Head: 0},
			{Index: 2, Text: ".", Start: 7, End: 8, Head: 1},
			{Index: 3, Text: "now", Start: 9, End: 12, Head: 0},
		}},
	}}
	e, _ := New(fake)

	doc, err := e.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(doc.Sentences) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(doc.Sentences))
	}
	s := doc.Sentences[0]
	if !s.Reparsed {
		t.Error("expected sentence to be reparsed")
	}
	if len(s.Tokens) != 4 {
		t.Errorf("expected reparsed stream of 4 tokens, got %d", len(s.Tokens))
	}
	if s.Span != (Span{Start: 0, End: 3}) {
		t.Errorf("span = %+v, want original token span", s.Span)
	}
	if !s.TreeValid() {
		t.Errorf("tree invalid: %v", s.TreeErr)
	}
}

func TestEngine_Process_MalformedParse(t *testing.T) {
	tokens := tokenize("a b c d")
	tests := []struct {
		name  string
		parse *Parse
	}{
		{
			name:  "tokens without candidates",
			parse: &Parse{Text: "a b c d", Tokens: tokens},
		},
		{
			name: "gap between candidates",
			parse: &Parse{Text: "a b c d", Tokens: tokens,
				Sentences: []Span{{Start: 0, End: 2}, {Start: 3, End: 4}}},
		},
		{
			name: "candidates end early",
			parse: &Parse{Text: "a b c d", Tokens: tokens,
				Sentences: []Span{{Start: 0, End: 3}}},
		},
		{
			name: "empty candidate",
			parse: &Parse{Text: "a b c d", Tokens: tokens,
				Sentences: []Span{{Start: 0, End: 0}, {Start: 0, End: 4}}},
		},
		{
			name: "token index out of step",
			parse: &Parse{Text: "a", Tokens: []Token{{Index: 5, Text: "a", End: 1}},
				Sentences: []Span{{Start: 0, End: 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeParser{parses: map[string]*Parse{tt.parse.Text: tt.parse}}
			e, _ := New(fake)

			_, err := e.Process(context.Background(), tt.parse.Text)
			if err == nil {
				t.Fatal("expected error for malformed parse")
			}
			if !errors.Is(err, ErrMalformedParse) {
				t.Errorf("expected ErrMalformedParse, got: %v", err)
			}
		})
	}
}

func TestEngine_Process_InvalidTreeDegrades(t *testing.T) {
	// Both heads point inside the sentence and neither is a self-loop, so
	// no root exists. The sentence must still come back, flagged invalid.
	text := "a b"
	fake := &fakeParser{parses: map[string]*Parse{
		text: {Text: text, Tokens: []Token{
			{Index: 0, Text: "a", Start: 0, End: 1, Head: 1},
			{Index: 1, Text: "b", Start: 2, End: 3, Head: 0},
		}, Sentences: []Span{{Start: 0, End: 2}}},
	}}
	e, _ := New(fake)

	doc, err := e.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(doc.Sentences) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(doc.Sentences))
	}
	s := doc.Sentences[0]
	if s.TreeValid() {
		t.Error("expected invalid tree")
	}
	if !errors.Is(s.TreeErr, ErrNoRoot) {
		t.Errorf("expected ErrNoRoot, got: %v", s.TreeErr)
	}
	if doc.Stats.InvalidTrees != 1 {
		t.Errorf("expected 1 invalid tree, got %d", doc.Stats.InvalidTrees)
	}
}

func TestEngine_Process_ParserError(t *testing.T) {
	parseErr := errors.New("model unavailable")
	e, _ := New(&fakeParser{err: parseErr})

	_, err := e.Process(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected parser error to propagate")
	}
	if !errors.Is(err, parseErr) {
		t.Errorf("expected wrapped parser error, got: %v", err)
	}
}

func TestEngine_Process_ContextCancelledReparse(t *testing.T) {
	// The fake ignores ctx, so the initial parse succeeds; the engine's own
	// check before the reparse call must notice the cancellation.
	text := "Go home. now"
	fake := &fakeParser{parses: map[string]*Parse{
		text: nSentences(t, text, 2, 1),
	}}
	e, _ := New(fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Process(ctx, text)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

func TestEngine_Process_Normalizer(t *testing.T) {
	fake := &fakeParser{}
	e, _ := New(fake, WithNormalizer(strings.TrimSpace))

	doc, err := e.Process(context.Background(), "  x y.  ")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if fake.calls[0] != "x y." {
		t.Errorf("parser saw %q, want normalized text", fake.calls[0])
	}
	if doc.Text != "x y." {
		t.Errorf("document text = %q, want normalized text", doc.Text)
	}
}

func TestEngine_Process_CustomRules(t *testing.T) {
	text := "Dr. Smith arrived late."
	fake := &fakeParser{parses: map[string]*Parse{
		text: nSentences(t, text, 1, 3),
	}}
	never := []Rule{{Name: "never", Merge: func(prev, cur Candidate) bool { return false }}}
	e, _ := New(fake, WithRules(never))

	doc, err := e.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(doc.Sentences) != 2 {
		t.Fatalf("expected rule table to be replaced, got %d sentences", len(doc.Sentences))
	}
	if doc.Stats.Merges != 0 {
		t.Errorf("expected no merges, got %d", doc.Stats.Merges)
	}
}

func TestEngine_ProcessAll(t *testing.T) {
	texts := []string{"One bird sang.", "Two birds sang.", "Three birds sang."}
	e, _ := New(&fakeParser{})

	docs, err := e.ProcessAll(context.Background(), texts, 2)
	if err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}

	if len(docs) != len(texts) {
		t.Fatalf("expected %d documents, got %d", len(texts), len(docs))
	}
	for i, text := range texts {
		if docs[i].Text != text {
			t.Errorf("document %d text = %q, want %q", i, docs[i].Text, text)
		}
		if len(docs[i].Sentences) != 1 {
			t.Errorf("document %d: expected 1 sentence, got %d", i, len(docs[i].Sentences))
		}
	}
}

func TestEngine_ProcessAll_DefaultParallelism(t *testing.T) {
	e, _ := New(&fakeParser{})

	docs, err := e.ProcessAll(context.Background(), []string{"A bird sang."}, 0)
	if err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
}

func TestEngine_ProcessAll_Error(t *testing.T) {
	parseErr := errors.New("bad document")
	fake := &fakeParser{errs: map[string]error{"broken": parseErr}}
	e, _ := New(fake)

	docs, err := e.ProcessAll(context.Background(), []string{"Fine text.", "broken"}, 2)
	if err == nil {
		t.Fatal("expected error from failing document")
	}
	if !errors.Is(err, parseErr) {
		t.Errorf("expected wrapped parse error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "document 1") {
		t.Errorf("expected error to name the document, got: %v", err)
	}
	if docs != nil {
		t.Errorf("expected nil documents on error, got %v", docs)
	}
}
