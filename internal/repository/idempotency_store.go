package repository

import (
	"context"
	"time"
)

// Acquire reports true the first time key is seen within ttl.
// Release forgets key so a failed request can be retried with it.
type IdempotencyStore interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
