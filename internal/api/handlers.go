package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hireflow/interviewd/internal/interviews"
	"github.com/hireflow/interviewd/pkg/errors"
)

func (s *server) handleSchedule(c *fiber.Ctx) error {
	var req interviews.ScheduleRequest
	err := c.BodyParser(&req)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "unmarshal schedule payload"))
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	booked, err := s.engine.Schedule(c.Context(), req)
	if err != nil {
		bookingsTotal.WithLabelValues(bookingOutcome(err)).Inc()
		return s.sendDomainError(c, err)
	}

	bookingsTotal.WithLabelValues(outcomeScheduled).Inc()
	return c.Status(http.StatusCreated).JSON(booked)
}

func (s *server) handleGet(c *fiber.Ctx) error {
	i, err := s.engine.Get(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(i)
}

func (s *server) handleConfirm(c *fiber.Ctx) error {
	var body struct {
		CandidateConfirmed   bool `json:"candidate_confirmed"`
		InterviewerConfirmed bool `json:"interviewer_confirmed"`
	}
	err := c.BodyParser(&body)
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	i, err := s.engine.Confirm(c.Context(), c.Params("id"), body.CandidateConfirmed, body.InterviewerConfirmed)
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(i)
}

func (s *server) handleStart(c *fiber.Ctx) error {
	i, err := s.engine.Start(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(i)
}

func (s *server) handleComplete(c *fiber.Ctx) error {
	i, err := s.engine.Complete(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(i)
}

func (s *server) handleCancel(c *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	err := c.BodyParser(&body)
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	err = s.engine.Cancel(c.Context(), c.Params("id"), body.Reason)
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).Send(nil)
}

func (s *server) handleNoShow(c *fiber.Ctx) error {
	i, err := s.engine.MarkNoShow(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(i)
}

func (s *server) handleReschedule(c *fiber.Ctx) error {
	var body struct {
		NewTime time.Time `json:"new_time"`
	}
	err := c.BodyParser(&body)
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	i, err := s.engine.Reschedule(c.Context(), c.Params("id"), body.NewTime)
	if err != nil {
		bookingsTotal.WithLabelValues(bookingOutcome(err)).Inc()
		return s.sendDomainError(c, err)
	}

	bookingsTotal.WithLabelValues(outcomeScheduled).Inc()
	return c.Status(http.StatusOK).JSON(i)
}

func (s *server) handleEvaluate(c *fiber.Ctx) error {
	var eval interviews.Evaluation
	err := c.BodyParser(&eval)
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	i, err := s.engine.Evaluate(c.Context(), c.Params("id"), eval)
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(i)
}

func (s *server) handleCanProceed(c *fiber.Ctx) error {
	ok, err := s.engine.CanAdvance(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(map[string]bool{"can_proceed": ok})
}

func (s *server) handleNextRound(c *fiber.Ctx) error {
	var body struct {
		NextType    interviews.InterviewType `json:"next_type"`
		ScheduledAt time.Time                `json:"scheduled_at"`
	}
	err := c.BodyParser(&body)
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	next, err := s.engine.ScheduleNextRound(c.Context(), c.Params("id"), body.NextType, body.ScheduledAt)
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(next)
}

func (s *server) handleConflicts(c *fiber.Ctx) error {
	q := interviews.ConflictQuery{ExcludeID: c.Query("exclude_id")}

	if raw := c.Query("interviewer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return s.sendError(c, http.StatusBadRequest, "malformed \"interviewer_id\"")
		}
		q.InterviewerID = &id
	}
	if raw := c.Query("candidate_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return s.sendError(c, http.StatusBadRequest, "malformed \"candidate_id\"")
		}
		q.CandidateID = &id
	}

	var err error
	q.Start, err = s.getTimeOrErr(c, "start")
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, err.Error())
	}
	q.End, err = s.getTimeOrErr(c, "end")
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, err.Error())
	}

	conflicts, err := s.engine.Conflicts(c.Context(), q)
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(map[string]any{"conflicts": conflicts})
}

func (s *server) handleSuggestions(c *fiber.Ctx) error {
	interviewerID, err := s.getInt64OrErr(c, "interviewer_id")
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, err.Error())
	}
	candidateID, err := s.getInt64OrErr(c, "candidate_id")
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, err.Error())
	}
	preferred, err := s.getTimeOrErr(c, "preferred_time")
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, err.Error())
	}

	duration := c.QueryInt("duration_minutes")
	limit := c.QueryInt("max")

	suggestions, err := s.engine.SuggestAlternatives(c.Context(), interviewerID, candidateID, preferred, duration, limit)
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(map[string]any{
		"preferred_time": preferred,
		"suggestions":    suggestions,
	})
}

func (s *server) handleFlow(c *fiber.Ctx) error {
	candidateID, err := s.getInt64OrErr(c, "candidate_id")
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, err.Error())
	}
	jobID, err := s.getInt64OrErr(c, "job_id")
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, err.Error())
	}

	flow, err := s.engine.Flow(c.Context(), candidateID, jobID)
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(map[string]any{"flow": flow})
}

func (s *server) handleDueReminders(c *fiber.Ctx) error {
	hours := c.QueryInt("lead_hours", 24)

	due, err := s.engine.DueForReminder(c.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(map[string]any{"due": due})
}

func (s *server) handleMarkReminded(c *fiber.Ctx) error {
	var body struct {
		IDs []string `json:"ids"`
	}
	err := c.BodyParser(&body)
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	err = s.engine.MarkReminded(c.Context(), body.IDs)
	if err != nil {
		return s.sendDomainError(c, err)
	}
	return c.Status(http.StatusOK).Send(nil)
}

// sendDomainError maps the engine's typed errors onto HTTP statuses; the
// conflict payload carries the offending records so a UI can render "why"
// without another round-trip.
func (s *server) sendDomainError(c *fiber.Ctx, err error) error {
	var (
		conflict   *interviews.ConflictError
		invalid    *interviews.InvalidStateError
		notFound   *interviews.NotFoundError
		notElig    *interviews.NotEligibleError
		terminal   *interviews.TerminalRoundError
		exhausted  *interviews.RetryExhaustedError
		validation *interviews.ValidationError
	)

	switch {
	case errors.As(err, &conflict):
		return c.Status(http.StatusConflict).JSON(map[string]any{
			"status":    "CONFLICT",
			"message":   conflict.Error(),
			"conflicts": conflict.Conflicts,
		})
	case errors.As(err, &invalid):
		return c.Status(http.StatusConflict).JSON(map[string]any{
			"status":    "INVALID_STATE",
			"message":   invalid.Error(),
			"current":   invalid.Current,
			"requested": invalid.Requested,
		})
	case errors.As(err, &notFound):
		return s.sendError(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &notElig):
		return s.sendError(c, http.StatusUnprocessableEntity, notElig.Error())
	case errors.As(err, &terminal):
		return s.sendError(c, http.StatusUnprocessableEntity, terminal.Error())
	case errors.As(err, &exhausted):
		return s.sendError(c, http.StatusServiceUnavailable, exhausted.Error())
	case errors.As(err, &validation):
		return s.sendError(c, http.StatusBadRequest, validation.Error())
	}

	// unknown errors fall through to the fiber error handler
	return err
}

func bookingOutcome(err error) string {
	var (
		conflict  *interviews.ConflictError
		exhausted *interviews.RetryExhaustedError
	)
	switch {
	case errors.As(err, &conflict):
		return outcomeConflict
	case errors.As(err, &exhausted):
		return outcomeContended
	}
	return outcomeError
}

func (s *server) sendError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(map[string]string{"status": "ERROR", "message": msg})
}

func (s *server) getInt64OrErr(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Query(name, "")
	if raw == "" {
		return 0, errors.Errorf("got empty %q param", name)
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Errorf("got malformed %q param", name)
	}

	return v, nil
}

func (s *server) getTimeOrErr(c *fiber.Ctx, name string) (time.Time, error) {
	raw := c.Query(name, "")
	if raw == "" {
		return time.Time{}, errors.Errorf("got empty %q param", name)
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.Errorf("got malformed %q param, want RFC3339", name)
	}

	return t, nil
}
