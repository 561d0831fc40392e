package schema

// Option configures Normalize via functional options.
type Option func(*options)

type options struct {
	strictDates bool
	resolvers   []ColumnResolver
}

// WithStrictDateFormat accepts only "YYYY-MM-DD HH:MM" timestamps; anything
// else becomes null with a date warning.
func WithStrictDateFormat() Option {
	return func(o *options) {
		o.strictDates = true
	}
}

// WithResolvers replaces the default name-then-position resolver chain.
func WithResolvers(resolvers ...ColumnResolver) Option {
	return func(o *options) {
		o.resolvers = resolvers
	}
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.resolvers) == 0 {
		o.resolvers = []ColumnResolver{
			NameResolver{},
			PositionalResolver{Strict: o.strictDates},
		}
	}
	return o
}
