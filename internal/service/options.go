package service

import (
	"time"

	"go.uber.org/zap"

	"portal/internal/metrics"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// ListResult is the service-level DTO for paginated collections.
type ListResult[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}

// Option customises a service.
type Option func(*options)

type options struct {
	log     *zap.Logger
	metrics *metrics.Domain
	now     func() time.Time
}

func newOptions(opts []Option) options {
	o := options{log: zap.NewNop(), now: func() time.Time { return time.Now().UTC() }}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics records domain events on m.
func WithMetrics(m *metrics.Domain) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
