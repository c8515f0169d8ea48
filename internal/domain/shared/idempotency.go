package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers Idempotency-Key values of accepted mutating
// requests. Implementations must make MarkProcessed atomic across replicas.
type IdempotencyStore interface {
	// MarkProcessed records key for ttl. It reports false when key was
	// already recorded and has not expired.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}
