package interviews

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hireflow/interviewd/internal/locker"
	"github.com/hireflow/interviewd/pkg/errors"
	"github.com/hireflow/interviewd/pkg/logger"
	"github.com/hireflow/interviewd/pkg/tools/retry"
)

type Config struct {
	// AdvanceThreshold is the minimal overall score that authorizes the
	// next round. Policy lives here, not in the state machine.
	AdvanceThreshold int `yaml:"advance_threshold"`

	Advisor AdvisorConfig `yaml:"advisor"`
	Booking retry.Policy  `yaml:"booking_retry"`
}

const defaultAdvanceThreshold = 70

func (c Config) withDefaults() Config {
	if c.AdvanceThreshold <= 0 {
		c.AdvanceThreshold = defaultAdvanceThreshold
	}
	c.Advisor = c.Advisor.withDefaults()
	c.Booking = c.Booking.WithDefaults()
	return c
}

type Option func(*service)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

func New(log logger.Logger, repo Repo, locks locker.Locker, cfg Config, opts ...Option) API {
	s := &service{
		repo:  repo,
		locks: locks,
		cfg:   cfg.withDefaults(),
		log:   log.With("interviews"),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type service struct {
	repo  Repo
	locks locker.Locker
	cfg   Config
	log   logger.Logger
	now   func() time.Time
}

func (s *service) Schedule(ctx context.Context, req ScheduleRequest) (*Interview, error) {
	now := s.now()

	i, err := s.buildInterview(req, now)
	if err != nil {
		return nil, err
	}

	err = s.book(ctx, i.InterviewerID, i.CandidateID, func(ctx context.Context) error {
		conflicts, err := s.repo.FindConflicts(ctx, ConflictQuery{
			InterviewerID: &i.InterviewerID,
			CandidateID:   &i.CandidateID,
			Start:         i.ScheduledAt,
			End:           i.EndsAt,
		})
		if err != nil {
			return errors.WrapFail(err, "check conflicts")
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}

		_, err = s.repo.Insert(ctx, *i)
		return errors.WrapFail(err, "insert interview")
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("scheduled interview %s for candidate %d at %s", i.ID, i.CandidateID, i.ScheduledAt)
	return i, nil
}

func (s *service) buildInterview(req ScheduleRequest, now time.Time) (*Interview, error) {
	switch {
	case req.InterviewerID <= 0:
		return nil, &ValidationError{Field: "interviewer_id", Reason: "must be a positive identity"}
	case req.CandidateID <= 0:
		return nil, &ValidationError{Field: "candidate_id", Reason: "must be a positive identity"}
	case req.JobID <= 0:
		return nil, &ValidationError{Field: "job_id", Reason: "must be a positive identity"}
	case req.ScheduledAt.IsZero():
		return nil, &ValidationError{Field: "scheduled_at", Reason: "is required"}
	case req.ScheduledAt.Before(now):
		return nil, &ValidationError{Field: "scheduled_at", Reason: "must not be in the past"}
	case req.DurationMinutes < 0:
		return nil, &ValidationError{Field: "duration_minutes", Reason: "must be positive"}
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = DefaultDurationMinutes
	}

	round := req.Round
	if round == "" {
		round = RoundFirst
	}
	if round.Ordinal() == 0 {
		return nil, &ValidationError{Field: "round", Reason: "unknown round tag"}
	}

	return &Interview{
		ID:              uuid.NewString(),
		JobID:           req.JobID,
		CandidateID:     req.CandidateID,
		InterviewerID:   req.InterviewerID,
		PanelMembers:    req.PanelMembers,
		Type:            req.Type,
		Round:           round,
		ScheduledAt:     req.ScheduledAt,
		EndsAt:          req.ScheduledAt.Add(time.Duration(duration) * time.Minute),
		DurationMinutes: duration,
		Status:          StatusScheduled,
		Location:        req.Location,
		MeetingLink:     req.MeetingLink,
		Mode:            req.Mode,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// book runs the check-then-write under the participant advisory locks and a
// storage transaction, retrying transient contention within the budget.
// Genuine conflicts and state errors are never retried.
func (s *service) book(ctx context.Context, interviewerID, candidateID int64, do func(ctx context.Context) error) error {
	keys := locker.ParticipantKeys(interviewerID, candidateID)

	attempt := func(ctx context.Context) error {
		release, err := s.locks.Acquire(ctx, keys)
		if errors.Is(err, locker.ErrNotAcquired) {
			return errors.Wrap(ErrTransient, "acquire participant locks")
		}
		if err != nil {
			return errors.WrapFail(err, "acquire participant locks")
		}
		defer release()

		return s.repo.WithTxn(ctx, do)
	}

	transient := func(err error) bool {
		return errors.Is(err, ErrTransient)
	}

	err := retry.Do(ctx, s.cfg.Booking, transient, attempt)
	if err != nil && errors.Is(err, ErrTransient) {
		return &RetryExhaustedError{Attempts: s.cfg.Booking.Attempts, Last: err}
	}
	return err
}

func (s *service) Get(ctx context.Context, id string) (*Interview, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) Confirm(ctx context.Context, id string, candidate, interviewer bool) (*Interview, error) {
	return s.mutate(ctx, id, func(i *Interview) error {
		return i.applyConfirm(candidate, interviewer)
	})
}

func (s *service) Start(ctx context.Context, id string) (*Interview, error) {
	now := s.now()
	return s.mutate(ctx, id, func(i *Interview) error {
		return i.applyStart(now)
	})
}

func (s *service) Complete(ctx context.Context, id string) (*Interview, error) {
	now := s.now()
	return s.mutate(ctx, id, func(i *Interview) error {
		return i.applyComplete(now)
	})
}

func (s *service) Cancel(ctx context.Context, id string, reason string) error {
	_, err := s.mutate(ctx, id, func(i *Interview) error {
		return i.applyCancel(reason)
	})
	return err
}

func (s *service) Reschedule(ctx context.Context, id string, newTime time.Time) (*Interview, error) {
	now := s.now()
	if newTime.IsZero() || newTime.Before(now) {
		return nil, &ValidationError{Field: "new_time", Reason: "must not be in the past"}
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated *Interview
	err = s.book(ctx, current.InterviewerID, current.CandidateID, func(ctx context.Context) error {
		// the window is re-checked inside the transaction, excluding the
		// interview's own prior reservation
		newEnd := newTime.Add(time.Duration(current.DurationMinutes) * time.Minute)
		conflicts, err := s.repo.FindConflicts(ctx, ConflictQuery{
			InterviewerID: &current.InterviewerID,
			CandidateID:   &current.CandidateID,
			Start:         newTime,
			End:           newEnd,
			ExcludeID:     id,
		})
		if err != nil {
			return errors.WrapFail(err, "check conflicts")
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}

		updated, err = s.repo.Update(ctx, id, func(i *Interview) error {
			if err := i.applyReschedule(newTime, now); err != nil {
				return err
			}
			i.UpdatedAt = now
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("rescheduled interview %s to %s (count %d)", id, newTime, updated.RescheduleCount)
	return updated, nil
}

func (s *service) MarkNoShow(ctx context.Context, id string) (*Interview, error) {
	now := s.now()
	return s.mutate(ctx, id, func(i *Interview) error {
		return i.applyNoShow(now)
	})
}

func (s *service) Evaluate(ctx context.Context, id string, eval Evaluation) (*Interview, error) {
	return s.mutate(ctx, id, func(i *Interview) error {
		return i.applyEvaluation(eval)
	})
}

func (s *service) Conflicts(ctx context.Context, q ConflictQuery) ([]Interview, error) {
	if !q.End.After(q.Start) {
		return nil, &ValidationError{Field: "window", Reason: "end must be after start"}
	}
	if q.InterviewerID == nil && q.CandidateID == nil {
		return nil, &ValidationError{Field: "participants", Reason: "at least one participant is required"}
	}
	return s.repo.FindConflicts(ctx, q)
}

// mutate funnels every lifecycle transition through the state machine and
// persists the result atomically.
func (s *service) mutate(ctx context.Context, id string, fn func(*Interview) error) (*Interview, error) {
	now := s.now()
	return s.repo.Update(ctx, id, func(i *Interview) error {
		if err := fn(i); err != nil {
			return err
		}
		i.UpdatedAt = now
		return nil
	})
}

func (s *service) Close(ctx context.Context) error {
	return s.repo.Close(ctx)
}
