package interviews

import (
	"context"
	"time"
)

// ScheduleRequest is the input of the booking path. Panel members are
// informational; only the primary interviewer takes part in conflict checks.
type ScheduleRequest struct {
	JobID         int64   `json:"job_id"`
	CandidateID   int64   `json:"candidate_id"`
	InterviewerID int64   `json:"interviewer_id"`
	PanelMembers  []int64 `json:"panel_members,omitempty"`

	Type  InterviewType `json:"type"`
	Round Round         `json:"round"`

	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`

	Location    string `json:"location,omitempty"`
	MeetingLink string `json:"meeting_link,omitempty"`
	Mode        Mode   `json:"mode,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// API is the engine's contract, invoked by the HTTP layer and by the
// reminder dispatcher.
type API interface {
	// Schedule books a new interview, guaranteeing no active interview of
	// either participant overlaps the reserved window. Fails with
	// ConflictError (with the offending records), ValidationError, or
	// RetryExhaustedError under unresolved contention.
	Schedule(ctx context.Context, req ScheduleRequest) (*Interview, error)

	Get(ctx context.Context, id string) (*Interview, error)

	// Confirm sets the participant confirmation flags; once both hold, the
	// interview moves to CONFIRMED. Idempotent.
	Confirm(ctx context.Context, id string, candidate, interviewer bool) (*Interview, error)

	Start(ctx context.Context, id string) (*Interview, error)
	Complete(ctx context.Context, id string) (*Interview, error)

	// Cancel requires a non-empty reason and is legal from any non-terminal
	// state. The record is kept; only its slot is released.
	Cancel(ctx context.Context, id string, reason string) error

	// Reschedule moves the interview to newTime after re-running the
	// conflict check (excluding the interview itself). Confirmations and the
	// reminder flag reset.
	Reschedule(ctx context.Context, id string, newTime time.Time) (*Interview, error)

	MarkNoShow(ctx context.Context, id string) (*Interview, error)

	// Evaluate records the evaluation provider's outcome on a completed
	// interview.
	Evaluate(ctx context.Context, id string, eval Evaluation) (*Interview, error)

	// Conflicts exposes the conflict detector for diagnostics.
	Conflicts(ctx context.Context, q ConflictQuery) ([]Interview, error)

	// SuggestAlternatives probes a widening neighbourhood around preferred
	// and returns up to max admissible start times, closest first. A
	// best-effort heuristic: an empty result is not an error.
	SuggestAlternatives(ctx context.Context, interviewerID, candidateID int64, preferred time.Time, durationMinutes, max int) ([]time.Time, error)

	// CanAdvance reports whether the interview authorizes the next round.
	CanAdvance(ctx context.Context, id string) (bool, error)

	// ScheduleNextRound books the successor round for the same candidate,
	// job and interviewer through the regular booking path. Fails with
	// NotEligibleError or TerminalRoundError; ConflictError propagates
	// unchanged. A zero `at` defaults to the current round's time + 24h.
	ScheduleNextRound(ctx context.Context, currentID string, nextType InterviewType, at time.Time) (*Interview, error)

	// Flow returns all rounds for the candidate/job pair in round order.
	Flow(ctx context.Context, candidateID, jobID int64) ([]Interview, error)

	// DueForReminder lists scheduled, unreminded interviews starting within
	// the lead window. Safe to call concurrently with itself.
	DueForReminder(ctx context.Context, lead time.Duration) ([]Interview, error)

	// MarkReminded flags the given interviews as reminded. Partial success
	// is acceptable; each mark is individually atomic and idempotent.
	MarkReminded(ctx context.Context, ids []string) error

	Close(ctx context.Context) error
}
