package bench

import (
	"context"
	"fmt"

	reseg "github.com/jamesainslie/go-reseg"
)

// Config holds evaluation parameters.
type Config struct {
	Tolerance       int // character match tolerance
	PrecisionWeight float64
	RecallWeight    float64
}

// DefaultConfig returns the default evaluation configuration.
func DefaultConfig() Config {
	return Config{
		Tolerance:       3,
		PrecisionWeight: 1.0,
		RecallWeight:    1.0,
	}
}

// Metrics holds evaluation results.
type Metrics struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
	WeightedScore  float64
}

// Score derives precision, recall, F1, and the weighted score from raw
// match counts.
func Score(tp, fp, fn int, cfg Config) Metrics {
	m := Metrics{
		TruePositives:  tp,
		FalsePositives: fp,
		FalseNegatives: fn,
	}

	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	wp := cfg.PrecisionWeight
	wr := cfg.RecallWeight
	if wp+wr > 0 {
		m.WeightedScore = (wp*m.Precision + wr*m.Recall) / (wp + wr)
	}

	return m
}

// Evaluate compares predicted boundary offsets against gold offsets.
// Uses greedy left-to-right matching within tolerance.
func Evaluate(predicted, truth []int, cfg Config) Metrics {
	matched := make([]bool, len(truth))
	tp := 0

	for _, p := range predicted {
		for i, t := range truth {
			if matched[i] {
				continue
			}
			diff := p - t
			if diff < 0 {
				diff = -diff
			}
			if diff <= cfg.Tolerance {
				matched[i] = true
				tp++
				break
			}
		}
	}

	return Score(tp, len(predicted)-tp, len(truth)-tp, cfg)
}

// EvaluateTalk processes one talk's text through the engine and scores the
// corrected sentence boundaries against the gold annotation.
func EvaluateTalk(ctx context.Context, eng *reseg.Engine, talk *Talk, cfg Config) (Metrics, error) {
	doc, err := eng.Process(ctx, talk.RawText)
	if err != nil {
		return Metrics{}, fmt.Errorf("processing %s: %w", talk.ID, err)
	}

	truth := make([]int, len(talk.Sentences))
	for i, s := range talk.Sentences {
		truth[i] = s.End
	}

	return Evaluate(doc.Boundaries(), truth, cfg), nil
}

// EvaluateCorpus aggregates match counts across all talks and scores the
// totals, so short talks do not dominate the averages.
func EvaluateCorpus(ctx context.Context, eng *reseg.Engine, talks []*Talk, cfg Config) (Metrics, error) {
	var tp, fp, fn int
	for _, talk := range talks {
		m, err := EvaluateTalk(ctx, eng, talk, cfg)
		if err != nil {
			return Metrics{}, err
		}
		tp += m.TruePositives
		fp += m.FalsePositives
		fn += m.FalseNegatives
	}
	return Score(tp, fp, fn, cfg), nil
}
