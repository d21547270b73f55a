package interviews

import (
	"context"
	"time"
)

// ConflictQuery selects active interviews whose scheduled window overlaps
// [Start, End) for either participant role. Roles are checked independently:
// an interviewer only conflicts with interviews where they interview, a
// candidate only with interviews where they are interviewed.
type ConflictQuery struct {
	InterviewerID *int64
	CandidateID   *int64

	Start time.Time
	End   time.Time

	// ExcludeID lets a reschedule ignore its own prior reservation.
	ExcludeID string
}

// Repo is the persistence contract the engine requires. Implementations live
// in internal/repo; mutating methods must be atomic per document.
type Repo interface {
	// Insert stores a new interview and returns its id.
	Insert(ctx context.Context, i Interview) (string, error)

	// Get returns NotFoundError when the id is unknown.
	Get(ctx context.Context, id string) (*Interview, error)

	// Update applies mutate to the stored document and persists the result
	// as one atomic step. A mutate error aborts without writing.
	Update(ctx context.Context, id string, mutate func(*Interview) error) (*Interview, error)

	// FindConflicts answers the interval overlap query over active interviews.
	FindConflicts(ctx context.Context, q ConflictQuery) ([]Interview, error)

	// FindFlow returns all rounds for a candidate/job pair, ordered by round.
	FindFlow(ctx context.Context, candidateID, jobID int64) ([]Interview, error)

	// FindDueReminders returns unreminded scheduled interviews with
	// from <= scheduled_at <= to.
	FindDueReminders(ctx context.Context, from, to time.Time) ([]Interview, error)

	// MarkReminded sets reminder_sent as a test-and-set; it reports false
	// when the flag was already up, which makes re-marking a no-op.
	MarkReminded(ctx context.Context, id string) (bool, error)

	// WithTxn runs fn inside one storage transaction so the conflict check
	// and the write commit or roll back together. Contention surfaces as an
	// error wrapping ErrTransient.
	WithTxn(ctx context.Context, fn func(ctx context.Context) error) error

	Close(ctx context.Context) error
}
