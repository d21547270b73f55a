package locker

import (
	"context"
	"fmt"
	"slices"

	"github.com/hireflow/interviewd/pkg/errors"
)

// ErrNotAcquired means some key is held elsewhere. Callers treat it as
// transient contention and retry with backoff.
var ErrNotAcquired = errors.Error("lock not acquired")

// Locker takes cooperative locks on logical keys, not on stored rows.
// Acquire is all-or-nothing over the key set; the returned release func must
// be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, keys []string) (release func(), err error)
}

// ParticipantKeys builds the lock keys for one booking. Keys are ordered
// lower id first and deduplicated, so two bookings sharing participants
// always acquire in the same order and cannot deadlock.
func ParticipantKeys(ids ...int64) []string {
	slices.Sort(ids)
	ids = slices.Compact(ids)

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, fmt.Sprintf("interviewd:participant:%d", id))
	}
	return keys
}
