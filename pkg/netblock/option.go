package netblock

import "log/slog"

// Option configures how Build constructs a Table.
type Option func(*builder) *builder

type builder struct {
	logger     *slog.Logger
	strict     bool
	probeOrder []int
}

func defaultBuilder() *builder {
	return &builder{
		logger: slog.Default(),
	}
}

// WithLogger sends build and lookup warnings to logger instead of slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) *builder {
		if logger != nil {
			b.logger = logger
		}
		return b
	}
}

// WithStrict makes the first malformed address or invalid mask length abort
// the build, instead of skipping the entry with a warning.
func WithStrict() Option {
	return func(b *builder) *builder {
		b.strict = true
		return b
	}
}

// WithProbeOrder appends masks to the probe order once the table is built,
// the same as calling SetProbeOrder.
func WithProbeOrder(masks ...int) Option {
	return func(b *builder) *builder {
		b.probeOrder = append(b.probeOrder, masks...)
		return b
	}
}
