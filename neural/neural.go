// Package neural adapts a joint ONNX segmentation/tagging/parsing model to
// the engine's Parser interface. One forward pass over a word-level token
// stream yields boundary probabilities, part-of-speech tags, head
// attachments and relation labels.
package neural

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	reseg "github.com/jamesainslie/go-reseg"
	"github.com/jamesainslie/go-reseg/inference"
	"github.com/jamesainslie/go-reseg/words"
)

const (
	// maxSeqLen is the longest token sequence the model accepts in one
	// pass. Longer streams are processed as overlapping chunks.
	maxSeqLen = 512

	// chunkOverlap is the number of tokens shared by adjacent chunks, so
	// positions near a chunk edge still see context on both sides.
	chunkOverlap = 64
)

// Parser turns text into a Parse using a joint neural model. It is safe for
// concurrent use; sessions come from an internal pool.
type Parser struct {
	vocab     *Vocab
	pool      *inference.Pool
	threshold float32
	logger    *slog.Logger
}

// New creates a Parser from a model file and its vocabulary file.
func New(modelPath, vocabPath string, opts ...Option) (*Parser, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("checking model file: %w", err)
	}

	vocab, err := LoadVocab(vocabPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrVocabFailed, vocabPath)
		}
		return nil, fmt.Errorf("%w: %w", ErrVocabFailed, err)
	}

	pool, err := inference.NewPool(modelPath, cfg.poolSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	return &Parser{
		vocab:     vocab,
		pool:      pool,
		threshold: cfg.threshold,
		logger:    cfg.logger,
	}, nil
}

// Parse segments, tags and attaches text. Whitespace-run tokens keep the
// surface stream reconstructible and are tagged SPACE rather than decoded.
func (p *Parser) Parse(ctx context.Context, text string) (*reseg.Parse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if text == "" {
		return &reseg.Parse{Text: text}, nil
	}
	tokens := words.Split(text)
	if len(tokens) == 0 {
		return &reseg.Parse{Text: text}, nil
	}

	ids := make([]int64, len(tokens))
	mask := make([]int64, len(tokens))
	for i, t := range tokens {
		ids[i] = p.vocab.ID(t.Text)
		mask[i] = 1
	}

	dec, err := p.infer(ctx, ids, mask)
	if err != nil {
		return nil, err
	}

	for i := range tokens {
		t := &tokens[i]
		t.Head = dec.head[i]
		if t.IsWhitespace() {
			t.POS = "SPACE"
			continue
		}
		t.POS = p.vocab.Tag(dec.pos[i])
		t.Dep = p.vocab.Dep(dec.dep[i])
		// The model has no lemmatizer head; the lowercased surface form
		// stands in.
		t.Lemma = strings.ToLower(t.Text)
	}

	spans := boundarySpans(tokens, dec.boundary, p.threshold)
	p.logger.Debug("decoded parse", "tokens", len(tokens), "candidates", len(spans))

	return &reseg.Parse{
		Text:      text,
		Tokens:    tokens,
		Sentences: spans,
	}, nil
}

// decoded holds per-token model output after chunk stitching: averaged
// boundary logits plus label indices and absolute head indices.
type decoded struct {
	boundary []float32
	pos      []int
	dep      []int
	head     []int
}

// infer runs the model over the full sequence, chunking when it exceeds
// maxSeqLen. Boundary logits are averaged where chunks overlap; tags,
// relations and heads are taken from the chunk that owns the position, so a
// head can reach at most maxSeqLen tokens away.
func (p *Parser) infer(ctx context.Context, ids, mask []int64) (*decoded, error) {
	n := len(ids)
	dec := &decoded{
		boundary: make([]float32, n),
		pos:      make([]int, n),
		dep:      make([]int, n),
		head:     make([]int, n),
	}
	counts := make([]int, n)

	err := p.pool.Do(ctx, func(s *inference.Session) error {
		stride := maxSeqLen - chunkOverlap
		for start := 0; start < n; start += stride {
			end := start + maxSeqLen
			if end > n {
				end = n
			}

			res, err := s.Infer(ctx, ids[start:end], mask[start:end])
			if err != nil {
				return err
			}

			for i, logit := range res.Boundary {
				dec.boundary[start+i] += logit
				counts[start+i]++
			}

			lo, hi := ownerRange(start, end, n)
			for i := lo; i < hi; i++ {
				dec.pos[i] = argmax(res.POSRow(i - start))
				dec.dep[i] = argmax(res.DepRow(i - start))
				dec.head[i] = start + argmax(res.HeadRow(i - start))
			}

			if end >= n {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range dec.boundary {
		if counts[i] > 1 {
			dec.boundary[i] /= float32(counts[i])
		}
	}

	return dec, nil
}

// ownerRange returns the positions within chunk [start, end) whose decoded
// structure comes from this chunk rather than a neighbor. Interior chunk
// edges give up half the overlap on each side; outer edges own to the
// sequence boundary.
func ownerRange(start, end, total int) (lo, hi int) {
	lo = start + chunkOverlap/2
	if start == 0 {
		lo = 0
	}
	hi = end - chunkOverlap/2
	if end == total {
		hi = end
	}
	return lo, hi
}

// boundarySpans cuts the token stream after every token whose boundary
// probability clears the threshold. The spans tile the stream; the tail
// closes even without a final boundary signal.
func boundarySpans(tokens []reseg.Token, logits []float32, threshold float32) []reseg.Span {
	var spans []reseg.Span
	start := 0
	for i := range tokens {
		if sigmoid(logits[i]) > threshold {
			spans = append(spans, reseg.Span{Start: start, End: i + 1})
			start = i + 1
		}
	}
	if start < len(tokens) {
		spans = append(spans, reseg.Span{Start: start, End: len(tokens)})
	}
	return spans
}

// Close releases the session pool. The parser must not be used afterwards.
func (p *Parser) Close() error {
	if p.pool != nil {
		return p.pool.Close()
	}
	return nil
}

func argmax(xs []float32) int {
	if len(xs) == 0 {
		return -1
	}
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

func sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(float64(-x))))
}
