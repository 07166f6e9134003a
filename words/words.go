// Package words segments raw text into offset-tracked tokens on Unicode
// word boundaries. It is the lexical layer under parser adapters that have
// no tokenizer of their own.
package words

import (
	"unicode"
	"unicode/utf8"

	uax "github.com/clipperhouse/uax29/v2/words"

	reseg "github.com/jamesainslie/go-reseg"
)

// Split tokenizes text. UAX 29 segmentation covers every input byte; a
// lone ASCII space between words is dropped as a separator, while any
// other whitespace run (double spaces, newlines, tabs) is kept as a token
// so boundary correction can move it between sentences later. Tokens carry
// no dependency information: Head is -1 throughout.
func Split(text string) []reseg.Token {
	var tokens []reseg.Token

	emit := func(s string, start int) {
		tokens = append(tokens, reseg.Token{
			Index: len(tokens),
			Text:  s,
			Start: start,
			End:   start + len(s),
			Head:  -1,
		})
	}

	// UAX 29 breaks whitespace around newlines into separate segments;
	// buffer consecutive whitespace segments back into one run.
	runStart := -1
	runEnd := -1
	flush := func() {
		if runStart < 0 {
			return
		}
		if run := text[runStart:runEnd]; run != " " {
			emit(run, runStart)
		}
		runStart = -1
	}

	offset := 0
	seg := uax.FromString(text)
	for seg.Next() {
		v := seg.Value()
		start := offset
		offset += len(v)

		if isWhitespace(v) {
			if runStart < 0 {
				runStart = start
			}
			runEnd = offset
			continue
		}

		flush()
		emit(v, start)
	}
	flush()

	return tokens
}

// Words returns the non-whitespace token texts of text, in order.
func Words(text string) []string {
	var out []string
	seg := uax.FromString(text)
	for seg.Next() {
		if v := seg.Value(); !isWhitespace(v) {
			out = append(out, v)
		}
	}
	return out
}

func isWhitespace(s string) bool {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			return false
		}
		i += size
	}
	return len(s) > 0
}
