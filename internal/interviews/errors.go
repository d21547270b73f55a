package interviews

import (
	"fmt"
	"strings"

	"github.com/hireflow/interviewd/pkg/errors"
)

// ErrTransient marks contention failures on the booking path (lock not
// acquired, storage transaction aborted by a concurrent writer). The service
// retries these internally; callers never see the sentinel itself.
var ErrTransient = errors.Error("transient contention")

// ConflictError means the requested window genuinely overlaps active
// interviews of a participant. Never retried by the engine.
type ConflictError struct {
	Conflicts []Interview
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		ids = append(ids, c.ID)
	}
	return fmt.Sprintf("time slot conflicts with interviews [%s]", strings.Join(ids, ", "))
}

// InvalidStateError means the requested transition is not legal from the
// interview's current status.
type InvalidStateError struct {
	ID        string
	Current   Status
	Requested Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("interview %s: illegal transition %s -> %s", e.ID, e.Current, e.Requested)
}

// NotFoundError means the referenced interview id does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("interview %s not found", e.ID)
}

// NotEligibleError means round advancement preconditions are not met.
type NotEligibleError struct {
	ID     string
	Reason string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("interview %s is not eligible for the next round: %s", e.ID, e.Reason)
}

// TerminalRoundError means the current round has no successor.
type TerminalRoundError struct {
	Round Round
}

func (e *TerminalRoundError) Error() string {
	return fmt.Sprintf("round %s is terminal", e.Round)
}

// RetryExhaustedError means transient contention could not be resolved
// within the retry budget. Safe for the caller to retry.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("booking contention not resolved after %d attempts: %s", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Last
}

// ValidationError rejects malformed booking input before any storage access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
