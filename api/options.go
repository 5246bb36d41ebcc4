package api

import (
	"time"

	"github.com/google/uuid"
)

// Option is a functional option for configuring the API.
type Option func(*options)

type options struct {
	clock        func() time.Time
	newID        func() string
	maxBodySize  int64
	allowOrigins []string
}

func newOptions() *options {
	return &options{
		clock:        time.Now,
		newID:        uuid.NewString,
		maxBodySize:  64 << 10,
		allowOrigins: []string{"*"},
	}
}

// WithClock sets the clock used for created_at, updated_at and health
// timestamps. Defaults to [time.Now].
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithIDGenerator sets the function that generates ids for new todos.
// Defaults to random UUIDs.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

// WithMaxBodySize sets the largest accepted request body in bytes.
// The default is 64 KiB.
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// WithAllowOrigins sets the origins allowed by CORS. Defaults to "*".
// An empty list keeps the default.
func WithAllowOrigins(origins []string) Option {
	return func(o *options) {
		if len(origins) > 0 {
			o.allowOrigins = origins
		}
	}
}
