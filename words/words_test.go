package words

import (
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tokens := Split("I saw the dog.")

	want := []string{"I", "saw", "the", "dog", "."}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Text != w {
			t.Errorf("token %d = %q, want %q", i, tokens[i].Text, w)
		}
		if tokens[i].Index != i {
			t.Errorf("token %d carries index %d", i, tokens[i].Index)
		}
		if tokens[i].Head != -1 {
			t.Errorf("token %d head = %d, want -1", i, tokens[i].Head)
		}
	}

	// Offsets must point back into the original text.
	text := "I saw the dog."
	for _, tok := range tokens {
		if text[tok.Start:tok.End] != tok.Text {
			t.Errorf("token %q offsets [%d,%d) cover %q",
				tok.Text, tok.Start, tok.End, text[tok.Start:tok.End])
		}
	}
}

func TestSplit_SingleSpacesDropped(t *testing.T) {
	for _, tok := range Split("a b c") {
		if tok.IsWhitespace() {
			t.Errorf("unexpected whitespace token %q", tok.Text)
		}
	}
}

func TestSplit_WhitespaceRunsKept(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"a\n\nb", []string{"a", "\n\n", "b"}},
		{"a  b", []string{"a", "  ", "b"}},
		{"a\tb", []string{"a", "\t", "b"}},
		{"a \n b", []string{"a", " \n ", "b"}},
	}

	for _, tt := range tests {
		tokens := Split(tt.text)
		if len(tokens) != len(tt.want) {
			t.Errorf("Split(%q): %d tokens, want %d", tt.text, len(tokens), len(tt.want))
			continue
		}
		for i, w := range tt.want {
			if tokens[i].Text != w {
				t.Errorf("Split(%q) token %d = %q, want %q", tt.text, i, tokens[i].Text, w)
			}
		}
		if !tokens[1].IsWhitespace() {
			t.Errorf("Split(%q): middle token %q not whitespace", tt.text, tokens[1].Text)
		}
	}
}

func TestSplit_KeepsNumbersAndContractions(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"About 3.14 exactly", []string{"About", "3.14", "exactly"}},
		{"it's fine", []string{"it's", "fine"}},
	}

	for _, tt := range tests {
		tokens := Split(tt.text)
		if len(tokens) != len(tt.want) {
			t.Errorf("Split(%q): %d tokens, want %d: %v", tt.text, len(tokens), len(tt.want), tokens)
			continue
		}
		for i, w := range tt.want {
			if tokens[i].Text != w {
				t.Errorf("Split(%q) token %d = %q, want %q", tt.text, i, tokens[i].Text, w)
			}
		}
	}
}

func TestSplit_MultibyteOffsets(t *testing.T) {
	text := "Émile était là"
	tokens := Split(text)

	for _, tok := range tokens {
		if text[tok.Start:tok.End] != tok.Text {
			t.Errorf("token %q offsets [%d,%d) cover %q",
				tok.Text, tok.Start, tok.End, text[tok.Start:tok.End])
		}
	}
}

func TestSplit_CoversInput(t *testing.T) {
	// Tokens plus elided single spaces reproduce the input exactly.
	texts := []string{
		"I saw the dog.",
		"a  b\tc\n\nd",
		"Émile était là",
		" leading and trailing ",
	}

	for _, text := range texts {
		var b strings.Builder
		at := 0
		for _, tok := range Split(text) {
			if tok.Start > at {
				if gap := text[at:tok.Start]; gap != " " {
					t.Errorf("Split(%q): non-space gap %q before %q", text, gap, tok.Text)
				}
				b.WriteString(text[at:tok.Start])
			}
			b.WriteString(tok.Text)
			at = tok.End
		}
		if at < len(text) {
			if gap := text[at:]; gap != " " {
				t.Errorf("Split(%q): non-space trailing gap %q", text, gap)
			}
			b.WriteString(text[at:])
		}
		if b.String() != text {
			t.Errorf("Split(%q) reassembles to %q", text, b.String())
		}
	}
}

func TestSplit_Empty(t *testing.T) {
	if tokens := Split(""); tokens != nil {
		t.Errorf("expected nil for empty text, got %v", tokens)
	}
}

func TestWords(t *testing.T) {
	got := Words("Hello, big world.")
	want := []string{"Hello", ",", "big", "world", "."}

	if len(got) != len(want) {
		t.Fatalf("Words() = %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("word %d = %q, want %q", i, got[i], w)
		}
	}
}
