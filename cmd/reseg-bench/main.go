package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	reseg "github.com/jamesainslie/go-reseg"
	"github.com/jamesainslie/go-reseg/internal/bench"
	"github.com/jamesainslie/go-reseg/neural"
	"github.com/jamesainslie/go-reseg/punkt"
)

func main() {
	var (
		corpusDir  = flag.String("corpus", "testdata/ud-ewt", "Directory containing corpus files")
		manifest   = flag.String("manifest", "", "YAML corpus manifest (overrides -corpus)")
		parserKind = flag.String("parser", "punkt", "Parser: punkt or neural")
		modelPath  = flag.String("model", "", "Model file: ONNX model (neural) or Punkt training data (punkt)")
		vocabPath  = flag.String("vocab", "", "Vocabulary file (neural)")
		threshold  = flag.Float64("threshold", 0.5, "Boundary detection threshold (neural)")
		tolerance  = flag.Int("tolerance", 3, "Character tolerance for boundary matching")
		wp         = flag.Float64("wp", 1.0, "Precision weight")
		wr         = flag.Float64("wr", 1.0, "Recall weight")
		ablate     = flag.String("ablate", "", "Rule ablation: drop-one or prefix")
		noMerge    = flag.Bool("no-merge", false, "Evaluate raw parser boundaries without correction")
	)
	flag.Parse()

	// Load corpus
	var talks []*bench.Talk
	var err error
	source := *corpusDir
	if *manifest != "" {
		talks, err = bench.LoadManifest(*manifest)
		source = *manifest
	} else {
		talks, err = bench.LoadCorpus(*corpusDir)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading corpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d talks from %s\n\n", len(talks), source)

	cfg := bench.Config{
		Tolerance:       *tolerance,
		PrecisionWeight: *wp,
		RecallWeight:    *wr,
	}

	parser := newParser(*parserKind, *modelPath, *vocabPath, float32(*threshold))
	if np, ok := parser.(*neural.Parser); ok {
		defer func() { _ = np.Close() }()
	}

	ctx := context.Background()

	if *ablate != "" {
		runAblation(ctx, parser, talks, cfg, *ablate)
		return
	}
	runSingle(ctx, parser, talks, cfg, *noMerge)
}

func newParser(kind, model, vocab string, threshold float32) reseg.Parser {
	switch kind {
	case "punkt":
		var p reseg.Parser
		var err error
		if model != "" {
			p, err = punkt.NewFromModel(model)
		} else {
			p, err = punkt.New()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating parser: %v\n", err)
			os.Exit(1)
		}
		return p

	case "neural":
		if model == "" || vocab == "" {
			fmt.Fprintln(os.Stderr, "error: -model and -vocab required with -parser neural")
			flag.Usage()
			os.Exit(1)
		}
		p, err := neural.New(model, vocab, neural.WithThreshold(threshold))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating parser: %v\n", err)
			os.Exit(1)
		}
		return p
	}

	fmt.Fprintf(os.Stderr, "unknown parser: %s\n", kind)
	os.Exit(1)
	return nil
}

func runSingle(ctx context.Context, p reseg.Parser, talks []*bench.Talk, cfg bench.Config, noMerge bool) {
	var opts []reseg.Option
	if noMerge {
		opts = append(opts, reseg.WithRules(nil))
	}
	engine, err := reseg.New(p, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating engine: %v\n", err)
		os.Exit(1)
	}

	m, err := bench.EvaluateCorpus(ctx, engine, talks, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error evaluating: %v\n", err)
		os.Exit(1)
	}

	printMetrics(m)
}

func runAblation(ctx context.Context, p reseg.Parser, talks []*bench.Talk, cfg bench.Config, mode string) {
	rules := reseg.DefaultRules()

	var variants []bench.Variant
	switch mode {
	case "drop-one":
		variants = bench.DropOne(rules)
	case "prefix":
		variants = bench.CumulativePrefix(rules)
	default:
		fmt.Fprintf(os.Stderr, "unknown ablation mode: %s\n", mode)
		os.Exit(1)
	}

	results, err := bench.Ablate(ctx, p, talks, cfg, variants)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error during ablation: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rule Ablation: %s (wp=%.1f, wr=%.1f)\n", mode, cfg.PrecisionWeight, cfg.RecallWeight)
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("%-34s %-8s %-8s %-8s %-8s\n", "Variant", "Prec", "Rec", "F1", "Weighted")
	for _, r := range results {
		fmt.Printf("%-34s %-8.2f %-8.2f %-8.2f %-8.2f\n",
			r.Label, r.Metrics.Precision, r.Metrics.Recall, r.Metrics.F1, r.Metrics.WeightedScore)
	}
	fmt.Println(strings.Repeat("-", 70))

	best := results[0]
	fmt.Printf("Best: %s (F1: %.2f)\n", best.Label, best.Metrics.F1)
}

func printMetrics(m bench.Metrics) {
	fmt.Printf("Precision: %.2f  Recall: %.2f  F1: %.2f  Weighted: %.2f\n",
		m.Precision, m.Recall, m.F1, m.WeightedScore)
	fmt.Printf("(TP: %d, FP: %d, FN: %d)\n", m.TruePositives, m.FalsePositives, m.FalseNegatives)
}
