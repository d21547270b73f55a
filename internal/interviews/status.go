package interviews

import (
	"time"
)

// allowed is the transition table, keyed by canonical current status.
// Status mutation happens nowhere else; every operation below consults it
// and either applies a defined next status or reports InvalidStateError.
var allowed = map[Status]map[Status]struct{}{
	StatusScheduled: {
		StatusConfirmed:   {},
		StatusInProgress:  {},
		StatusCancelled:   {},
		StatusNoShow:      {},
		StatusRescheduled: {},
	},
	StatusConfirmed: {
		StatusScheduled:   {},
		StatusConfirmed:   {},
		StatusInProgress:  {},
		StatusCancelled:   {},
		StatusNoShow:      {},
		StatusRescheduled: {},
	},
	StatusInProgress: {
		StatusCompleted:   {},
		StatusCancelled:   {},
		StatusRescheduled: {},
	},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusNoShow:    {},
}

// CanTransition reports whether the move is defined by the table.
func (s Status) CanTransition(to Status) bool {
	_, ok := allowed[s.Canonical()][to]
	return ok
}

func (i *Interview) transitionTo(to Status) error {
	if !i.Status.CanTransition(to) {
		return &InvalidStateError{ID: i.ID, Current: i.Status, Requested: to}
	}
	i.Status = to
	return nil
}

// applyConfirm raises the participant flags and promotes to CONFIRMED once
// both hold. Repeating the call with the same flags is a no-op.
func (i *Interview) applyConfirm(candidate, interviewer bool) error {
	if !i.Status.CanTransition(StatusConfirmed) {
		return &InvalidStateError{ID: i.ID, Current: i.Status, Requested: StatusConfirmed}
	}

	i.CandidateConfirmed = candidate
	i.InterviewerConfirmed = interviewer

	if i.CandidateConfirmed && i.InterviewerConfirmed {
		return i.transitionTo(StatusConfirmed)
	}

	// a withdrawn confirmation demotes back to awaiting the other side
	if i.Status.Canonical() == StatusConfirmed {
		return i.transitionTo(StatusScheduled)
	}
	return nil
}

func (i *Interview) applyStart(now time.Time) error {
	if err := i.transitionTo(StatusInProgress); err != nil {
		return err
	}
	i.ActualStart = &now
	return nil
}

func (i *Interview) applyComplete(now time.Time) error {
	if err := i.transitionTo(StatusCompleted); err != nil {
		return err
	}
	i.ActualEnd = &now
	return nil
}

func (i *Interview) applyCancel(reason string) error {
	if reason == "" {
		return &ValidationError{Field: "reason", Reason: "cancellation reason is required"}
	}
	if err := i.transitionTo(StatusCancelled); err != nil {
		return err
	}
	i.CancellationReason = reason
	return nil
}

// applyReschedule moves the reserved window and resets confirmations and the
// reminder flag: the previously confirmed time no longer applies. Legal from
// any non-terminal state; an interview rescheduled mid-progress restarts, so
// its recorded start is dropped too. The caller has already verified the new
// window is conflict-free.
func (i *Interview) applyReschedule(newTime time.Time, now time.Time) error {
	if err := i.transitionTo(StatusRescheduled); err != nil {
		return err
	}

	i.ScheduledAt = newTime
	i.EndsAt = newTime.Add(time.Duration(i.DurationMinutes) * time.Minute)
	i.RescheduleCount++
	i.LastRescheduledAt = &now
	i.CandidateConfirmed = false
	i.InterviewerConfirmed = false
	i.ReminderSent = false
	i.ActualStart = nil
	return nil
}

// applyNoShow is legal from SCHEDULED or CONFIRMED once the scheduled time
// has been reached.
func (i *Interview) applyNoShow(now time.Time) error {
	if now.Before(i.ScheduledAt) {
		return &ValidationError{Field: "time", Reason: "cannot mark no-show before the scheduled time"}
	}
	return i.transitionTo(StatusNoShow)
}

// applyEvaluation records the provider's outcome. Only completed interviews
// can carry an evaluation.
func (i *Interview) applyEvaluation(eval Evaluation) error {
	if i.Status != StatusCompleted {
		return &InvalidStateError{ID: i.ID, Current: i.Status, Requested: StatusCompleted}
	}
	eval.Completed = true
	i.Evaluation = eval
	return nil
}
