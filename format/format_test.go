package format

import (
	"bytes"
	"context"
	"testing"

	reseg "github.com/jamesainslie/go-reseg"
)

// scriptParser serves one fixed parse regardless of input.
type scriptParser struct{ parse *reseg.Parse }

func (p scriptParser) Parse(_ context.Context, _ string) (*reseg.Parse, error) {
	return p.parse, nil
}

// sampleDocument processes a two-sentence text whose gold heads yield valid
// trees and no merges.
func sampleDocument(t *testing.T) *reseg.Document {
	t.Helper()

	text := "He jumped over the fence. It fell."
	parse := &reseg.Parse{
		Text: text,
		Tokens: []reseg.Token{
			{Index: 0, Text: "He", Start: 0, End: 2, Lemma: "he", POS: "PRON", Dep: "nsubj", Head: 1},
			{Index: 1, Text: "jumped", Start: 3, End: 9, Lemma: "jump", POS: "VERB", Dep: "ROOT", Head: 1},
			{Index: 2, Text: "over", Start: 10, End: 14, Lemma: "over", POS: "ADP", Dep: "prep", Head: 1},
			{Index: 3, Text: "the", Start: 15, End: 18, Lemma: "the", POS: "DET", Dep: "det", Head: 4},
			{Index: 4, Text: "fence", Start: 19, End: 24, Lemma: "fence", POS: "NOUN", Dep: "pobj", Head: 2},
			{Index: 5, Text: ".", Start: 24, End: 25, Lemma: ".", POS: "PUNCT", Dep: "punct", Head: 1},
			{Index: 6, Text: "It", Start: 26, End: 28, Lemma: "it", POS: "PRON", Dep: "nsubj", Head: 7},
			{Index: 7, Text: "fell", Start: 29, End: 33, Lemma: "fall", POS: "VERB", Dep: "ROOT", Head: 7},
			{Index: 8, Text: ".", Start: 33, End: 34, Lemma: ".", POS: "PUNCT", Dep: "punct", Head: 7},
		},
		Sentences: []reseg.Span{{Start: 0, End: 6}, {Start: 6, End: 9}},
	}

	engine, err := reseg.New(scriptParser{parse: parse})
	if err != nil {
		t.Fatalf("engine construction failed: %v", err)
	}
	doc, err := engine.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(doc.Sentences) != 2 {
		t.Fatalf("fixture produced %d sentences, want 2", len(doc.Sentences))
	}
	return doc
}

// brokenTreeDocument processes a text whose heads make every token a root,
// so tree construction fails while the document survives.
func brokenTreeDocument(t *testing.T) *reseg.Document {
	t.Helper()

	text := "a b"
	parse := &reseg.Parse{
		Text: text,
		Tokens: []reseg.Token{
			{Index: 0, Text: "a", Start: 0, End: 1, Head: 0},
			{Index: 1, Text: "b", Start: 2, End: 3, Head: 1},
		},
		Sentences: []reseg.Span{{Start: 0, End: 2}},
	}

	engine, err := reseg.New(scriptParser{parse: parse})
	if err != nil {
		t.Fatalf("engine construction failed: %v", err)
	}
	doc, err := engine.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if doc.Sentences[0].TreeValid() {
		t.Fatal("fixture tree unexpectedly valid")
	}
	return doc
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for _, kind := range Supported() {
		enc, err := New(kind, &buf)
		if err != nil {
			t.Errorf("New(%q) failed: %v", kind, err)
		}
		if enc == nil {
			t.Errorf("New(%q) returned nil encoder", kind)
		}
	}
}

func TestNew_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New("yaml", &buf); err == nil {
		t.Error("expected error for unsupported format")
	}
}
