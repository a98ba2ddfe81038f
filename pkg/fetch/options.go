package fetch

import (
	"time"

	"podcastd/pkg/feed"
)

type Option func(o *options)

type options struct {
	timeout      time.Duration
	retries      uint64
	parseOptions []feed.Option
}

func newOptions(opts []Option) options {
	options := options{
		timeout: time.Minute,
		retries: 2,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithTimeout bounds a single fetch attempt. Retries get a fresh timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithRetries sets how many times a temporary error is retried.
func WithRetries(retries uint64) Option {
	return func(o *options) {
		o.retries = retries
	}
}

// ParseOptions passes feed parsing options through to the document parser.
func ParseOptions(parseOptions ...feed.Option) Option {
	return func(o *options) {
		o.parseOptions = parseOptions
	}
}
