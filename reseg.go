package reseg

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Engine corrects the sentence segmentation produced by an external parser
// and builds one dependency tree per corrected sentence. It holds no
// per-document state, so it is safe for concurrent use whenever its Parser
// is; callers are responsible for synchronizing access to a non-reentrant
// parser.
type Engine struct {
	parser    Parser
	rules     []Rule
	normalize func(string) string
	policy    ReparsePolicy
	logger    *slog.Logger
}

// New creates an Engine on top of the given parser capability.
func New(p Parser, opts ...Option) (*Engine, error) {
	if p == nil {
		return nil, ErrNilParser
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Engine{
		parser:    p,
		rules:     cfg.rules,
		normalize: cfg.normalize,
		policy:    cfg.policy,
		logger:    cfg.logger,
	}, nil
}

// Process runs the full pipeline on one text: optional normalization,
// parse, boundary correction (fold + whitespace shift), conditional
// reparse, and tree construction. Sentences whose tree cannot be built are
// still emitted, flagged invalid; only a malformed parse fails the
// document.
func (e *Engine) Process(ctx context.Context, text string) (*Document, error) {
	if e.normalize != nil {
		text = e.normalize(text)
	}
	if text == "" {
		return &Document{}, nil
	}

	parse, err := e.parser.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	cands, err := extractCandidates(parse)
	if err != nil {
		return nil, err
	}

	doc := &Document{Text: parse.Text}
	doc.Stats.Candidates = len(cands)
	if len(cands) == 0 {
		return doc, nil
	}

	spans, folds, folded := e.foldCandidates(parse, cands)
	spans, shifts := e.shiftWhitespace(parse, spans)
	doc.Folds = folds
	doc.Stats.Merges = len(folds)
	doc.Stats.Shifts = shifts

	// A span drawn from a larger parse may carry dependency edges computed
	// under the old boundary assumptions, so any fold forces reparsing.
	// With no folds the original tokens are reused unchanged.
	reparse := len(folds) > 0

	doc.Sentences = make([]Sentence, 0, len(spans))
	for i, sp := range spans {
		s := Sentence{
			Span:  sp,
			Start: parse.Tokens[sp.Start].Start,
			End:   parse.Tokens[sp.End-1].End,
		}
		s.Text = parse.Text[s.Start:s.End]

		if reparse && (e.policy == ReparseAll || folded[i]) {
			tokens, err := e.reparseSpan(ctx, sp, s.Text)
			if err != nil {
				return nil, err
			}
			s.Tokens = tokens
			s.Reparsed = true
			doc.Stats.Reparses++
		} else {
			s.Tokens = parse.Tokens[sp.Start:sp.End]
		}

		tree, terr := buildTree(s.Tokens)
		if terr != nil {
			e.logger.Warn("tree construction failed", "sentence", i, "err", terr)
			s.TreeErr = terr
			doc.Stats.InvalidTrees++
		} else {
			s.Tree = tree
		}

		doc.Sentences = append(doc.Sentences, s)
	}

	return doc, nil
}

// reparseSpan re-submits one finalized span's text to the parser as an
// independent unit and returns the fresh token stream. The parser's
// internal re-segmentation of the span is ignored: the whole stream is the
// sentence. A token count diverging from the original span is logged and
// the reparsed stream kept, since after reparse that stream defines the
// span.
func (e *Engine) reparseSpan(ctx context.Context, sp Span, text string) ([]Token, error) {
	// Check context before another parser invocation.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p, err := e.parser.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("reparsing span [%d,%d): %w", sp.Start, sp.End, err)
	}
	for i, t := range p.Tokens {
		if t.Index != i {
			return nil, fmt.Errorf("%w: reparsed token %d carries index %d", ErrMalformedParse, i, t.Index)
		}
	}

	if len(p.Tokens) != sp.Len() {
		e.logger.Warn("keeping reparsed stream despite token count change",
			"err", ErrReparseMismatch,
			"span_tokens", sp.Len(), "reparsed_tokens", len(p.Tokens))
	}

	return p.Tokens, nil
}

// ProcessAll processes texts concurrently with at most parallel workers
// (default runtime.NumCPU() when parallel <= 0). Results preserve input
// order; the first error cancels the remaining work.
func (e *Engine) ProcessAll(ctx context.Context, texts []string, parallel int) ([]*Document, error) {
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	docs := make([]*Document, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			doc, err := e.Process(ctx, text)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
