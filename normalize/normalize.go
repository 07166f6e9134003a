// Package normalize provides the optional text normalization pre-pass:
// punctuation de-smarting, diacritic folding and whitespace cleanup. All
// functions are idempotent and safe for concurrent use, so normalize.Text
// can be handed directly to the engine as a normalizer.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// desmart maps typographic punctuation onto its ASCII counterpart. The
// compatibility decomposition below catches ellipses and non-breaking
// spaces; quotes and dashes have no decomposition and are mapped here.
var desmart = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‚", "'", // low single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"„", `"`, // low double quote
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"…", "...", // ellipsis
	" ", " ", // no-break space
)

var (
	horizontalRuns = regexp.MustCompile(`[ \t]+`)
	spacedNewline  = regexp.MustCompile(` *\n *`)
	newlineRuns    = regexp.MustCompile(`\n{3,}`)
)

// Text runs the full normalization chain: de-smart punctuation, fold
// diacritics to ASCII, clean up whitespace.
func Text(s string) string {
	return Spaces(Fold(desmart.Replace(s)))
}

// Fold strips diacritics by decomposing to NFKD, dropping combining marks,
// and recomposing to NFC. Unfoldable text is returned unchanged.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Spaces collapses horizontal whitespace runs to single spaces and newline
// runs to at most one blank line, trimming the ends. Blank lines are kept
// because downstream boundary correction treats them as paragraph signals.
func Spaces(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = horizontalRuns.ReplaceAllString(s, " ")
	s = spacedNewline.ReplaceAllString(s, "\n")
	s = newlineRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
