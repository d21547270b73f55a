package interviews

import (
	"context"
	"time"

	"github.com/hireflow/interviewd/pkg/errors"
)

// AdvisorConfig bounds the alternative-slot search. The advisor is a
// best-effort heuristic over a symmetric neighbourhood, not an exhaustive
// free/busy solver.
type AdvisorConfig struct {
	// Step is the distance between probes.
	Step time.Duration `yaml:"step"`
	// Horizon is the maximal offset from the preferred time in either
	// direction.
	Horizon time.Duration `yaml:"horizon"`
	// MaxSuggestions caps the result when the caller does not.
	MaxSuggestions int `yaml:"max_suggestions"`
}

func (c AdvisorConfig) withDefaults() AdvisorConfig {
	if c.Step <= 0 {
		c.Step = time.Hour
	}
	if c.Horizon <= 0 {
		c.Horizon = 4 * time.Hour
	}
	if c.MaxSuggestions <= 0 {
		c.MaxSuggestions = 3
	}
	return c
}

// SuggestAlternatives probes offsets ±step, ±2·step, … around preferred and
// returns up to max admissible start times in increasing distance order,
// the earlier slot first within one distance. Probes in the past are
// skipped. Exhausting the horizon yields an empty slice, not an error.
func (s *service) SuggestAlternatives(ctx context.Context, interviewerID, candidateID int64, preferred time.Time, durationMinutes, max int) ([]time.Time, error) {
	if interviewerID <= 0 || candidateID <= 0 {
		return nil, &ValidationError{Field: "participants", Reason: "both identities are required"}
	}
	if preferred.IsZero() {
		return nil, &ValidationError{Field: "preferred_time", Reason: "is required"}
	}

	cfg := s.cfg.Advisor
	if max <= 0 {
		max = cfg.MaxSuggestions
	}

	duration := time.Duration(durationMinutes) * time.Minute
	if durationMinutes <= 0 {
		duration = DefaultDurationMinutes * time.Minute
	}

	// one storage round-trip per participant covers every probe
	busy, err := s.neighbourhood(ctx, interviewerID, candidateID, preferred.Add(-cfg.Horizon), preferred.Add(cfg.Horizon).Add(duration))
	if err != nil {
		return nil, err
	}

	now := s.now()
	suggestions := make([]time.Time, 0, max)

	admit := func(start time.Time) bool {
		if start.Before(now) {
			return false
		}
		_, ok := fits(busy, toWindow(start, start.Add(duration)))
		return ok
	}

	for offset := cfg.Step; offset <= cfg.Horizon && len(suggestions) < max; offset += cfg.Step {
		for _, probe := range []time.Time{preferred.Add(-offset), preferred.Add(offset)} {
			if admit(probe) {
				suggestions = append(suggestions, probe)
				if len(suggestions) == max {
					break
				}
			}
		}
	}

	return suggestions, nil
}

// neighbourhood loads the merged busy windows of both participants over the
// probing range.
func (s *service) neighbourhood(ctx context.Context, interviewerID, candidateID int64, from, to time.Time) ([]window, error) {
	reserved, err := s.repo.FindConflicts(ctx, ConflictQuery{
		InterviewerID: &interviewerID,
		CandidateID:   &candidateID,
		Start:         from,
		End:           to,
	})
	if err != nil {
		return nil, errors.WrapFail(err, "load reserved windows")
	}

	return busyWindows(reserved), nil
}
