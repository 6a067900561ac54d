package slotlock

import (
	"context"
	"time"

	"bookify/models"
)

// Service grants short-lived, TTL-bound exclusive claims on slots during
// checkout. Locks reduce double-booking races for UX; they are advisory and
// never substitute for the transactional conflict check at booking time.
type Service interface {
	// Acquire claims the slot for the session. The second return value is the
	// contested signal: true when the slot is unavailable or held by another
	// unexpired session. Contested is an outcome, not an error; callers must
	// offer alternatives.
	Acquire(ctx context.Context, req models.AcquireLockRequest, ttl time.Duration) (*models.SlotLock, bool, error)
	// Release idempotently clears the lock regardless of current state.
	Release(ctx context.Context, lockID string) error
	// IsFree reports whether the slot is available and carries no unexpired lock.
	IsFree(ctx context.Context, providerID, date string, start, end int) (bool, error)
	// Sweep purges expired lock entries. Advisory housekeeping only: Redis
	// TTLs already reap keys, and correctness never depends on the sweep.
	Sweep(ctx context.Context) (int, error)
}
