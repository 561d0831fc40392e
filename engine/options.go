package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Basis        Basis
	TopN         int // posts per ranking
	HashtagLimit int // rows per hashtag view; <= 0 means all
}

// Defaults used when no option overrides them.
const (
	DefaultTopN         = 10
	DefaultHashtagLimit = 10
)

// WithBasis selects the ER denominator. Unknown values fall back to followers.
func WithBasis(b Basis) Option {
	return func(c *config) {
		c.Basis = b
	}
}

// WithTopN sets how many posts the top and bottom rankings return.
// Non-positive values keep the default.
func WithTopN(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.TopN = n
		}
	}
}

// WithHashtagLimit sets how many tags each hashtag view returns.
// Zero or negative means no limit.
func WithHashtagLimit(n int) Option {
	return func(c *config) {
		c.HashtagLimit = n
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Basis:        BasisFollowers,
		TopN:         DefaultTopN,
		HashtagLimit: DefaultHashtagLimit,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.Basis = normalizeBasis(cfg.Basis)
	return cfg
}
