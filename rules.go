package reseg

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Candidate is the surface view of a span the rule table decides on: its
// exact text and its length in tokens. Rules see only the two adjacent
// candidates, which keeps every merge decision strictly local.
type Candidate struct {
	Text   string
	Tokens int
}

// Rule is one named merge heuristic. Merge reports whether cur should be
// folded into prev. Rules must be pure: no state, no lookahead.
type Rule struct {
	Name  string
	Merge func(prev, cur Candidate) bool
}

// terminalTail matches text that ends in sentence-final punctuation,
// optionally followed by up to two non-whitespace characters (closing
// quotes, brackets) or one to two whitespace characters. Anything else is
// treated as an unterminated sentence.
var terminalTail = regexp.MustCompile(`[.?!](?:\S{0,2}|\s{1,2})$`)

// DefaultRules returns the merge heuristics in evaluation order. They encode
// empirically observed over-splitting by statistical sentence splitters:
// abbreviations without following capitalization, closing parentheses, and
// short quoted fragments. First match wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			// Current fragment is tiny and either starts lowercase or
			// trails a parenthetical.
			Name: "short-fragment",
			Merge: func(prev, cur Candidate) bool {
				if cur.Tokens >= 3 {
					return false
				}
				return startsLower(cur.Text) || strings.Contains(prev.Text, ")")
			},
		},
		{
			// Current fragment is moderately short and contains a close
			// paren, typically the tail of a split parenthetical.
			Name: "short-close-paren",
			Merge: func(prev, cur Candidate) bool {
				return cur.Tokens < 7 && strings.Contains(cur.Text, ")")
			},
		},
		{
			// Previous fragment is tiny and capitalized: an abbreviation
			// like "Dr." split off from its sentence.
			Name: "short-capitalized-previous",
			Merge: func(prev, cur Candidate) bool {
				return prev.Tokens < 3 && startsUpper(prev.Text)
			},
		},
		{
			// Previous fragment never ended: no terminal punctuation
			// within the allowed trailing tail.
			Name: "missing-terminal-punct",
			Merge: func(prev, cur Candidate) bool {
				return !terminalTail.MatchString(prev.Text)
			},
		},
	}
}

// classify runs the rule table in order and returns the name of the first
// rule that votes to merge, or "" when the boundary should stand.
func classify(rules []Rule, prev, cur Candidate) (string, bool) {
	for _, r := range rules {
		if r.Merge(prev, cur) {
			return r.Name, true
		}
	}
	return "", false
}

func startsLower(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return false
	}
	return unicode.IsLower(r)
}

func startsUpper(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return false
	}
	return unicode.IsUpper(r)
}
