package shared

import (
	"context"
	"time"
)

// DedupStore remembers upload fingerprints so a re-submitted file can be
// flagged as a duplicate without re-reading persisted history. Entries carry
// a TTL; the database remains the source of truth for older uploads.
type DedupStore interface {
	// MarkSeen records a fingerprint. Returns true if it was newly
	// recorded, false if it was already present and unexpired.
	MarkSeen(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error)

	// WasSeen reports whether a fingerprint is currently recorded
	WasSeen(ctx context.Context, fingerprint string) (bool, error)

	// Close releases any resources held by the store
	Close() error
}
