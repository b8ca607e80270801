package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so a retried print request is not
// printed twice
type IdempotencyStore interface {
	// Claim records key for ttl. It returns false when the key is already
	// held by an earlier request.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release forgets key so the request can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
