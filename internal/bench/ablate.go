package bench

import (
	"context"
	"fmt"
	"sort"

	reseg "github.com/jamesainslie/go-reseg"
)

// Variant is one rule configuration under evaluation.
type Variant struct {
	Label string
	Rules []reseg.Rule
}

// AblationResult holds aggregate corpus metrics for one rule configuration.
type AblationResult struct {
	Label   string
	Rules   []string // names of the active rules, in evaluation order
	Metrics Metrics
}

// DropOne returns the full rule table followed by one variant per rule with
// that rule removed, exposing each rule's individual contribution.
func DropOne(rules []reseg.Rule) []Variant {
	variants := []Variant{{Label: "all", Rules: rules}}
	for i, r := range rules {
		dropped := make([]reseg.Rule, 0, len(rules)-1)
		dropped = append(dropped, rules[:i]...)
		dropped = append(dropped, rules[i+1:]...)
		variants = append(variants, Variant{
			Label: "drop " + r.Name,
			Rules: dropped,
		})
	}
	return variants
}

// CumulativePrefix returns variants that enable the rules one at a time in
// table order, starting from no rules at all.
func CumulativePrefix(rules []reseg.Rule) []Variant {
	variants := []Variant{{Label: "none"}}
	for i, r := range rules {
		variants = append(variants, Variant{
			Label: "through " + r.Name,
			Rules: rules[:i+1],
		})
	}
	return variants
}

// Ablate evaluates every variant across the corpus and returns the results
// sorted by F1 descending; ties keep variant order. The parser is shared
// across variants, only the engine's rule table changes.
func Ablate(ctx context.Context, p reseg.Parser, talks []*Talk, cfg Config, variants []Variant) ([]AblationResult, error) {
	results := make([]AblationResult, 0, len(variants))

	for _, v := range variants {
		eng, err := reseg.New(p, reseg.WithRules(v.Rules))
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", v.Label, err)
		}

		m, err := EvaluateCorpus(ctx, eng, talks, cfg)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", v.Label, err)
		}

		names := make([]string, len(v.Rules))
		for i, r := range v.Rules {
			names[i] = r.Name
		}

		results = append(results, AblationResult{
			Label:   v.Label,
			Rules:   names,
			Metrics: m,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Metrics.F1 > results[j].Metrics.F1
	})

	return results, nil
}
