package notify

import (
	"context"

	"github.com/hireflow/interviewd/internal/interviews"
)

// Sender delivers one interview reminder. Implementations must tolerate
// being handed the same interview more than once: the trigger guarantees
// at-least-once, not exactly-once.
type Sender interface {
	Send(ctx context.Context, i interviews.Interview) error
}

// Directory resolves the engine's opaque participant identities to delivery
// addresses. The identity store owning the mapping is outside the engine.
type Directory interface {
	ChatID(participantID int64) (int64, bool)
}

// StaticDirectory serves a fixed participant -> chat mapping from config.
type StaticDirectory map[int64]int64

func (d StaticDirectory) ChatID(participantID int64) (int64, bool) {
	chat, ok := d[participantID]
	return chat, ok
}
