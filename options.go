package reseg

import "log/slog"

// ReparsePolicy selects which finalized spans are re-submitted to the
// parser once a document has required at least one fold.
type ReparsePolicy int

const (
	// ReparseAll re-submits every finalized span, so every sentence's
	// structure comes from an isolated parse of its own text.
	ReparseAll ReparsePolicy = iota

	// ReparseMerged re-submits only spans that absorbed a fold; untouched
	// sentences keep their slice of the original token stream.
	ReparseMerged
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	rules     []Rule
	normalize func(string) string
	policy    ReparsePolicy
	logger    *slog.Logger
}

func defaultConfig() config {
	return config{
		rules:  DefaultRules(),
		policy: ReparseAll,
		logger: slog.Default(),
	}
}

// WithRules replaces the merge rule table (default: DefaultRules). An empty
// table disables merging entirely.
func WithRules(rules []Rule) Option {
	return func(c *config) {
		c.rules = rules
	}
}

// WithNormalizer sets an idempotent text normalization pre-pass applied
// before the parser sees the input (default: none).
func WithNormalizer(fn func(string) string) Option {
	return func(c *config) {
		c.normalize = fn
	}
}

// WithReparsePolicy sets the reparse granularity (default: ReparseAll).
func WithReparsePolicy(p ReparsePolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
