// Package inference wraps ONNX Runtime execution of the joint boundary and
// dependency model behind a fixed-size session pool.
package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	// ErrSessionClosed is returned by Infer after the session was closed.
	ErrSessionClosed = errors.New("inference: session closed")

	// ErrPoolClosed is returned by Acquire after the pool shut down.
	ErrPoolClosed = errors.New("inference: pool closed")
)

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// initORT initializes the ONNX Runtime environment once per process.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// Result carries the model's raw scores for one input sequence. Boundary
// holds one sentence-final logit per position. POS, Head and Dep are
// row-major [seq x k] matrices; Head's k is the sequence length itself, so
// HeadRow(i) scores every position as a candidate head of position i.
type Result struct {
	SeqLen   int
	Boundary []float32
	POS      []float32
	Tags     int
	Head     []float32
	Dep      []float32
	Deps     int
}

// POSRow returns the tag scores for position i.
func (r *Result) POSRow(i int) []float32 { return r.POS[i*r.Tags : (i+1)*r.Tags] }

// HeadRow returns the head-attachment scores for position i.
func (r *Result) HeadRow(i int) []float32 { return r.Head[i*r.SeqLen : (i+1)*r.SeqLen] }

// DepRow returns the relation label scores for position i.
func (r *Result) DepRow(i int) []float32 { return r.Dep[i*r.Deps : (i+1)*r.Deps] }

// Session wraps one ONNX Runtime session over the joint model. A session
// serializes its Infer calls; use a Pool for concurrency.
type Session struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	closed  bool
}

// NewSession creates an ONNX session from a model file. The model must
// expose input_ids and attention_mask inputs and the four joint outputs:
// boundary_logits, pos_logits, head_logits and dep_logits.
func NewSession(modelPath string) (*Session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }()

	inputNames := []string{"input_ids", "attention_mask"}
	outputNames := []string{"boundary_logits", "pos_logits", "head_logits", "dep_logits"}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session}, nil
}

// Infer runs the model on one encoded sequence and returns its raw scores.
func (s *Session) Infer(ctx context.Context, inputIDs, attentionMask []int64) (*Result, error) {
	// Check context before an expensive native call.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if len(inputIDs) == 0 {
		return nil, fmt.Errorf("empty input sequence")
	}
	if len(inputIDs) != len(attentionMask) {
		return nil, fmt.Errorf("input_ids has %d entries, attention_mask %d", len(inputIDs), len(attentionMask))
	}

	batchSize := int64(1)
	seqLen := int64(len(inputIDs))

	inputIDsTensor, err := ort.NewTensor(
		ort.NewShape(batchSize, seqLen),
		inputIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("creating input_ids tensor: %w", err)
	}
	defer func() { _ = inputIDsTensor.Destroy() }()

	attentionMaskTensor, err := ort.NewTensor(
		ort.NewShape(batchSize, seqLen),
		attentionMask,
	)
	if err != nil {
		return nil, fmt.Errorf("creating attention_mask tensor: %w", err)
	}
	defer func() { _ = attentionMaskTensor.Destroy() }()

	inputs := []ort.Value{inputIDsTensor, attentionMaskTensor}

	// Output entries are allocated by Run.
	outputs := []ort.Value{nil, nil, nil, nil}

	if err := s.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				_ = out.Destroy()
			}
		}
	}()

	seq := int(seqLen)
	res := &Result{SeqLen: seq}

	boundary, err := tensorData(outputs[0], "boundary_logits")
	if err != nil {
		return nil, err
	}
	if len(boundary) < seq {
		return nil, fmt.Errorf("boundary_logits has %d entries for %d positions", len(boundary), seq)
	}
	res.Boundary = boundary[:seq]

	pos, err := tensorData(outputs[1], "pos_logits")
	if err != nil {
		return nil, err
	}
	if len(pos) == 0 || len(pos)%seq != 0 {
		return nil, fmt.Errorf("pos_logits has %d entries for %d positions", len(pos), seq)
	}
	res.POS = pos
	res.Tags = len(pos) / seq

	head, err := tensorData(outputs[2], "head_logits")
	if err != nil {
		return nil, err
	}
	if len(head) != seq*seq {
		return nil, fmt.Errorf("head_logits has %d entries, want %d", len(head), seq*seq)
	}
	res.Head = head

	dep, err := tensorData(outputs[3], "dep_logits")
	if err != nil {
		return nil, err
	}
	if len(dep) == 0 || len(dep)%seq != 0 {
		return nil, fmt.Errorf("dep_logits has %d entries for %d positions", len(dep), seq)
	}
	res.Dep = dep
	res.Deps = len(dep) / seq

	return res, nil
}

// tensorData copies a float32 output tensor out of ONNX-owned memory.
func tensorData(v ort.Value, name string) ([]float32, error) {
	if v == nil {
		return nil, fmt.Errorf("no %s output produced", name)
	}
	t, ok := v.(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected %s tensor type", name)
	}
	src := t.GetData()
	data := make([]float32, len(src))
	copy(data, src)
	return data, nil
}

// Close releases ONNX resources. It is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
