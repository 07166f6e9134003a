package reseg

import (
	"fmt"
)

// extractCandidates validates the parser's raw sentence boundaries and
// returns them as the initial candidate list. The candidates must exactly
// tile the token stream: non-empty, in order, each starting where the
// previous ended. Anything else means the parser output cannot be trusted
// and the document fails with ErrMalformedParse.
func extractCandidates(p *Parse) ([]Span, error) {
	for i, t := range p.Tokens {
		if t.Index != i {
			return nil, fmt.Errorf("%w: token %d carries index %d", ErrMalformedParse, i, t.Index)
		}
	}

	if len(p.Sentences) == 0 {
		if len(p.Tokens) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %d tokens but no sentence candidates", ErrMalformedParse, len(p.Tokens))
	}

	next := 0
	for i, s := range p.Sentences {
		if s.Len() <= 0 {
			return nil, fmt.Errorf("%w: empty candidate %d [%d,%d)", ErrMalformedParse, i, s.Start, s.End)
		}
		if s.Start != next {
			return nil, fmt.Errorf("%w: candidate %d starts at %d, want %d", ErrMalformedParse, i, s.Start, next)
		}
		next = s.End
	}
	if next != len(p.Tokens) {
		return nil, fmt.Errorf("%w: candidates end at %d, token stream ends at %d", ErrMalformedParse, next, len(p.Tokens))
	}

	out := make([]Span, len(p.Sentences))
	copy(out, p.Sentences)
	return out, nil
}

// spanText returns the exact substring of the parsed text covered by a
// token span.
func spanText(p *Parse, s Span) string {
	return p.Text[p.Tokens[s.Start].Start:p.Tokens[s.End-1].End]
}

// candidateOf builds the surface view the rule table decides on.
func candidateOf(p *Parse, s Span) Candidate {
	return Candidate{Text: spanText(p, s), Tokens: s.Len()}
}

// foldCandidates walks the candidates in document order, folding each one
// into the last accumulated span when the rule table votes to merge. A
// candidate is classified exactly once, against the accumulated previous
// span, so the accumulator is always a contiguous partition of the tokens
// processed so far and no decision is ever reopened. The returned folded
// slice marks, per finalized span, whether it absorbed at least one fold.
func (e *Engine) foldCandidates(p *Parse, cands []Span) (spans []Span, folds []Fold, folded []bool) {
	for _, cand := range cands {
		if len(spans) > 0 {
			prev := spans[len(spans)-1]
			if rule, merge := classify(e.rules, candidateOf(p, prev), candidateOf(p, cand)); merge {
				e.logger.Debug("folding sentence candidate",
					"rule", rule,
					"prev_start", prev.Start, "prev_end", prev.End,
					"cur_start", cand.Start, "cur_end", cand.End)
				folds = append(folds, Fold{Rule: rule, Prev: prev, Cur: cand})
				spans[len(spans)-1].End = cand.End
				folded[len(folded)-1] = true
				continue
			}
		}
		spans = append(spans, cand)
		folded = append(folded, false)
	}
	return spans, folds, folded
}

// shiftWhitespace runs once, left to right, over the folded spans. A span
// that begins with a whitespace-only token donates that token to the end of
// the previous span. Shifting never runs for the first span and is skipped
// (with a warning) when it would empty the current span, so the partition
// stays intact. Returns the adjusted spans and the number of shifts applied.
func (e *Engine) shiftWhitespace(p *Parse, spans []Span) ([]Span, int) {
	shifts := 0
	for i := 1; i < len(spans); i++ {
		if !p.Tokens[spans[i].Start].IsWhitespace() {
			continue
		}
		if spans[i].Len() <= 1 {
			e.logger.Warn("skipping whitespace shift",
				"err", ErrDegenerateSpan,
				"start", spans[i].Start, "end", spans[i].End)
			continue
		}
		spans[i-1].End++
		spans[i].Start++
		shifts++
	}
	return spans, shifts
}
