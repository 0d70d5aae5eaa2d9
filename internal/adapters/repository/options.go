package repository

import (
	"net/http"
	"time"

	"github.com/h2hmarketing/site/pkg/logger"
)

// SupabaseOption configures a SupabaseStore.
type SupabaseOption func(*SupabaseStore)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) SupabaseOption {
	return func(s *SupabaseStore) {
		if c != nil {
			s.client = c
		}
	}
}

// WithRequestTimeout bounds every call.
func WithRequestTimeout(d time.Duration) SupabaseOption {
	return func(s *SupabaseStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithExcerptLength sets the rune length of derived excerpts.
func WithExcerptLength(n int) SupabaseOption {
	return func(s *SupabaseStore) {
		if n > 0 {
			s.excerptLen = n
		}
	}
}

// InstrumentOption configures an instrumented store.
type InstrumentOption func(*instrumented)

// WithLogger sets the logger used for failed calls.
func WithLogger(l logger.Logger) InstrumentOption {
	return func(s *instrumented) {
		if l != nil {
			s.log = l
		}
	}
}
