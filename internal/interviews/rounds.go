package interviews

import (
	"context"
	"fmt"
	"time"
)

// advanceReason explains why an interview cannot authorize the next round;
// empty means it can.
func (s *service) advanceReason(i *Interview) string {
	switch {
	case i.Status != StatusCompleted:
		return fmt.Sprintf("status is %s, not %s", i.Status, StatusCompleted)
	case !i.Evaluation.Completed:
		return "evaluation is not completed"
	case !i.Evaluation.Recommendation.AdvanceEligible():
		return fmt.Sprintf("recommendation %q does not authorize advancement", i.Evaluation.Recommendation)
	case i.Evaluation.OverallScore == nil:
		return "overall score is missing"
	case *i.Evaluation.OverallScore < s.cfg.AdvanceThreshold:
		return fmt.Sprintf("overall score %d is below the threshold %d", *i.Evaluation.OverallScore, s.cfg.AdvanceThreshold)
	}
	return ""
}

func (s *service) CanAdvance(ctx context.Context, id string) (bool, error) {
	i, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return s.advanceReason(i) == "", nil
}

// ScheduleNextRound books the strict successor round for the same candidate,
// job and interviewer through the regular booking path, so the next round
// obeys the same overlap guarantees as any other booking.
func (s *service) ScheduleNextRound(ctx context.Context, currentID string, nextType InterviewType, at time.Time) (*Interview, error) {
	current, err := s.repo.Get(ctx, currentID)
	if err != nil {
		return nil, err
	}

	if reason := s.advanceReason(current); reason != "" {
		return nil, &NotEligibleError{ID: currentID, Reason: reason}
	}

	nextRound, err := current.Round.Next()
	if err != nil {
		return nil, err
	}

	if at.IsZero() {
		// the original default: same slot next day
		at = current.ScheduledAt.Add(24 * time.Hour)
		if now := s.now(); at.Before(now) {
			at = now.Add(24 * time.Hour)
		}
	}

	if nextType == "" {
		nextType = current.Type
	}

	next, err := s.Schedule(ctx, ScheduleRequest{
		JobID:         current.JobID,
		CandidateID:   current.CandidateID,
		InterviewerID: current.InterviewerID,
		Type:          nextType,
		Round:         nextRound,
		ScheduledAt:   at,
		Mode:          current.Mode,
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("advanced candidate %d to round %s (interview %s)", next.CandidateID, next.Round, next.ID)
	return next, nil
}

func (s *service) Flow(ctx context.Context, candidateID, jobID int64) ([]Interview, error) {
	if candidateID <= 0 || jobID <= 0 {
		return nil, &ValidationError{Field: "flow", Reason: "candidate and job identities are required"}
	}
	return s.repo.FindFlow(ctx, candidateID, jobID)
}
