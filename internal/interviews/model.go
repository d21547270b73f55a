package interviews

import (
	"time"
)

// Interview is the single persisted entity of the engine. Conflict checks
// always use the scheduled window, never the actual one.
type Interview struct {
	ID string `json:"id" bson:"_id,omitempty"`

	JobID         int64   `json:"job_id"         bson:"job_id"`
	CandidateID   int64   `json:"candidate_id"   bson:"candidate_id"`
	InterviewerID int64   `json:"interviewer_id" bson:"interviewer_id"`
	PanelMembers  []int64 `json:"panel_members,omitempty" bson:"panel_members,omitempty"`

	Type  InterviewType `json:"type"  bson:"type"`
	Round Round         `json:"round" bson:"round"`

	ScheduledAt     time.Time `json:"scheduled_at"     bson:"scheduled_at"`
	EndsAt          time.Time `json:"ends_at"          bson:"ends_at"`
	DurationMinutes int       `json:"duration_minutes" bson:"duration_minutes"`

	ActualStart *time.Time `json:"actual_start,omitempty" bson:"actual_start,omitempty"`
	ActualEnd   *time.Time `json:"actual_end,omitempty"   bson:"actual_end,omitempty"`

	Status Status `json:"status" bson:"status"`

	Location    string `json:"location,omitempty"     bson:"location,omitempty"`
	MeetingLink string `json:"meeting_link,omitempty" bson:"meeting_link,omitempty"`
	Mode        Mode   `json:"mode,omitempty"         bson:"mode,omitempty"`
	Notes       string `json:"notes,omitempty"        bson:"notes,omitempty"`

	CandidateConfirmed   bool `json:"candidate_confirmed"   bson:"candidate_confirmed"`
	InterviewerConfirmed bool `json:"interviewer_confirmed" bson:"interviewer_confirmed"`

	RescheduleCount   int        `json:"reschedule_count"              bson:"reschedule_count"`
	LastRescheduledAt *time.Time `json:"last_rescheduled_at,omitempty" bson:"last_rescheduled_at,omitempty"`

	ReminderSent bool `json:"reminder_sent" bson:"reminder_sent"`

	Evaluation Evaluation `json:"evaluation" bson:"evaluation"`

	CancellationReason string `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Window is the reserved half-open interval [ScheduledAt, EndsAt).
func (i Interview) Window() (start, end time.Time) {
	return i.ScheduledAt, i.EndsAt
}

// Evaluation is the outcome supplied by the evaluation provider. The engine
// records it and consumes it for round progression; it never computes scores.
type Evaluation struct {
	OverallScore        *int           `json:"overall_score,omitempty"         bson:"overall_score,omitempty"`
	TechnicalScore      *int           `json:"technical_score,omitempty"       bson:"technical_score,omitempty"`
	CommunicationScore  *int           `json:"communication_score,omitempty"   bson:"communication_score,omitempty"`
	CulturalFitScore    *int           `json:"cultural_fit_score,omitempty"    bson:"cultural_fit_score,omitempty"`
	ProblemSolvingScore *int           `json:"problem_solving_score,omitempty" bson:"problem_solving_score,omitempty"`
	Feedback            string         `json:"feedback,omitempty"              bson:"feedback,omitempty"`
	Recommendation      Recommendation `json:"recommendation,omitempty"        bson:"recommendation,omitempty"`
	Completed           bool           `json:"completed"                       bson:"completed"`
}

type Status string

const (
	StatusScheduled   Status = "SCHEDULED"
	StatusConfirmed   Status = "CONFIRMED"
	StatusInProgress  Status = "IN_PROGRESS"
	StatusCompleted   Status = "COMPLETED"
	StatusCancelled   Status = "CANCELLED"
	StatusNoShow      Status = "NO_SHOW"
	StatusRescheduled Status = "RESCHEDULED"
)

// Canonical folds the transient RESCHEDULED marker back to SCHEDULED.
// Every legality or activity decision goes through the canonical status;
// the marker stays in the stored record for audit only.
func (s Status) Canonical() Status {
	if s == StatusRescheduled {
		return StatusScheduled
	}
	return s
}

// Active reports whether the interview still holds its time slot.
// Terminal statuses release it for future bookings.
func (s Status) Active() bool {
	switch s.Canonical() {
	case StatusScheduled, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// ActiveStatuses is the set counted by conflict queries. RESCHEDULED is
// included because it is canonically SCHEDULED.
func ActiveStatuses() []Status {
	return []Status{StatusScheduled, StatusRescheduled, StatusConfirmed, StatusInProgress}
}

type Round string

const (
	RoundFirst  Round = "FIRST"
	RoundSecond Round = "SECOND"
	RoundThird  Round = "THIRD"
	RoundFinal  Round = "FINAL"
)

// Ordinal gives the position of the round in a flow, starting from 1.
// Unknown rounds map to 0.
func (r Round) Ordinal() int {
	switch r {
	case RoundFirst:
		return 1
	case RoundSecond:
		return 2
	case RoundThird:
		return 3
	case RoundFinal:
		return 4
	}
	return 0
}

// Next returns the successor round. TerminalRoundError is returned for
// FINAL, which has no successor.
func (r Round) Next() (Round, error) {
	switch r {
	case RoundFirst:
		return RoundSecond, nil
	case RoundSecond:
		return RoundThird, nil
	case RoundThird:
		return RoundFinal, nil
	case RoundFinal:
		return "", &TerminalRoundError{Round: r}
	}
	return "", &TerminalRoundError{Round: r}
}

type InterviewType string

const (
	TypePhoneScreening InterviewType = "PHONE_SCREENING"
	TypeVideo          InterviewType = "VIDEO_INTERVIEW"
	TypeTechnical      InterviewType = "TECHNICAL"
	TypeBehavioral     InterviewType = "BEHAVIORAL"
	TypeCaseStudy      InterviewType = "CASE_STUDY"
	TypePresentation   InterviewType = "PRESENTATION"
	TypeGroup          InterviewType = "GROUP_INTERVIEW"
	TypeFinal          InterviewType = "FINAL"
	TypeHR             InterviewType = "HR_INTERVIEW"
	TypeManager        InterviewType = "MANAGER_INTERVIEW"
)

type Mode string

const (
	ModeInPerson  Mode = "IN_PERSON"
	ModeVideoCall Mode = "VIDEO_CALL"
	ModePhoneCall Mode = "PHONE_CALL"
	ModeHybrid    Mode = "HYBRID"
)

type Recommendation string

const (
	RecommendationHire      Recommendation = "HIRE"
	RecommendationReject    Recommendation = "REJECT"
	RecommendationHold      Recommendation = "HOLD"
	RecommendationNextRound Recommendation = "NEXT_ROUND"
)

// AdvanceEligible reports whether the recommendation authorizes the next
// round. HIRE keeps the original meaning; NEXT_ROUND is the explicit signal.
func (r Recommendation) AdvanceEligible() bool {
	switch r {
	case RecommendationHire, RecommendationNextRound:
		return true
	}
	return false
}

// DefaultDurationMinutes applies when a booking request omits the duration.
const DefaultDurationMinutes = 60
