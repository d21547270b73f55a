package interviews

import (
	"context"
	"time"

	"github.com/hireflow/interviewd/pkg/errors"
)

// DueForReminder returns scheduled, unreminded interviews whose start lies
// in [now, now+lead]. Concurrent scans may return the same interviews; the
// notification path tolerates at-least-once delivery and MarkReminded is
// idempotent.
func (s *service) DueForReminder(ctx context.Context, lead time.Duration) ([]Interview, error) {
	if lead <= 0 {
		return nil, &ValidationError{Field: "lead_time", Reason: "must be positive"}
	}

	now := s.now()
	return s.repo.FindDueReminders(ctx, now, now.Add(lead))
}

// MarkReminded flags each interview individually; one failure does not roll
// back the others.
func (s *service) MarkReminded(ctx context.Context, ids []string) error {
	var errs []error

	for _, id := range ids {
		marked, err := s.repo.MarkReminded(ctx, id)
		if err != nil {
			errs = append(errs, errors.WrapFailf(err, " mark interview %s reminded", id))
			continue
		}
		if !marked {
			s.log.Debugf("interview %s already reminded", id)
		}
	}

	return errors.Collapse(errs)
}
