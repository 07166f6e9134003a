package reseg

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
// Only ErrMalformedParse is fatal for a document; the others describe
// recoveries the engine performs locally and reports via logging or the
// per-sentence tree flag.
var (
	// ErrNilParser indicates New was called without a parser.
	ErrNilParser = errors.New("reseg: parser is nil")

	// ErrMalformedParse indicates the parser returned sentence candidates
	// that are empty, unsorted, or do not exactly tile the token stream.
	ErrMalformedParse = errors.New("reseg: malformed parser output")

	// ErrDegenerateSpan indicates a boundary adjustment would have produced
	// an empty span; the adjustment is skipped.
	ErrDegenerateSpan = errors.New("reseg: adjustment would produce an empty span")

	// ErrReparseMismatch indicates a reparsed span's token count diverges
	// from the original span; the reparsed stream is kept.
	ErrReparseMismatch = errors.New("reseg: reparsed token count diverges from span")

	// ErrNoRoot indicates no token in a sentence qualifies as the
	// dependency root.
	ErrNoRoot = errors.New("reseg: sentence has no root token")

	// ErrMultipleRoots indicates more than one token in a sentence
	// qualifies as the dependency root.
	ErrMultipleRoots = errors.New("reseg: sentence has multiple root tokens")

	// ErrHeadCycle indicates dependency heads form a cycle, leaving tokens
	// unreachable from the root.
	ErrHeadCycle = errors.New("reseg: dependency heads form a cycle")
)
