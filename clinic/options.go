package clinic

import (
	"log/slog"
	"time"
)

// Option configures the clinic services.
type Option func(*options)

type options struct {
	now      func() time.Time
	logger   *slog.Logger
	narrator Narrator
}

func newOptions(opts []Option) options {
	o := options{
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source used for "now".
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithNarrator sets the service that writes narrative embryology summaries.
// Without one, summaries are plain bullets.
func WithNarrator(n Narrator) Option {
	return func(o *options) {
		o.narrator = n
	}
}
