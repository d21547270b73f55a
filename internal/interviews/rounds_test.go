package interviews_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hireflow/interviewd/internal/interviews"
)

// completeWithScore walks one interview to COMPLETED and records the given
// evaluation.
func completeWithScore(t *testing.T, engine interviews.API, id string, score int, rec interviews.Recommendation) {
	t.Helper()
	ctx := context.Background()

	_, err := engine.Start(ctx, id)
	require.NoError(t, err)
	_, err = engine.Complete(ctx, id)
	require.NoError(t, err)

	_, err = engine.Evaluate(ctx, id, interviews.Evaluation{
		OverallScore:   &score,
		Recommendation: rec,
	})
	require.NoError(t, err)
}

func TestCanAdvance(t *testing.T) {
	ctx := context.Background()

	type testcase struct {
		name    string
		prepare func(t *testing.T, engine interviews.API, id string)
		want    bool
	}

	tests := [...]testcase{
		{
			name:    "not completed yet",
			prepare: func(*testing.T, interviews.API, string) {},
			want:    false,
		},
		{
			name: "completed without evaluation",
			prepare: func(t *testing.T, engine interviews.API, id string) {
				_, err := engine.Start(ctx, id)
				require.NoError(t, err)
				_, err = engine.Complete(ctx, id)
				require.NoError(t, err)
			},
			want: false,
		},
		{
			name: "hire above threshold",
			prepare: func(t *testing.T, engine interviews.API, id string) {
				completeWithScore(t, engine, id, 85, interviews.RecommendationHire)
			},
			want: true,
		},
		{
			name: "next round at exactly the threshold",
			prepare: func(t *testing.T, engine interviews.API, id string) {
				completeWithScore(t, engine, id, 70, interviews.RecommendationNextRound)
			},
			want: true,
		},
		{
			name: "score below threshold",
			prepare: func(t *testing.T, engine interviews.API, id string) {
				completeWithScore(t, engine, id, 69, interviews.RecommendationHire)
			},
			want: false,
		},
		{
			name: "reject regardless of score",
			prepare: func(t *testing.T, engine interviews.API, id string) {
				completeWithScore(t, engine, id, 95, interviews.RecommendationReject)
			},
			want: false,
		},
		{
			name: "hold is not an authorization",
			prepare: func(t *testing.T, engine interviews.API, id string) {
				completeWithScore(t, engine, id, 95, interviews.RecommendationHold)
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)

			booked, err := engine.Schedule(ctx, scheduleReq(1, 2, time.Hour, 60))
			require.NoError(t, err)

			tt.prepare(t, engine, booked.ID)

			got, err := engine.CanAdvance(ctx, booked.ID)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestScheduleNextRound(t *testing.T) {
	ctx := context.Background()

	t.Run("books the successor round", func(t *testing.T) {
		engine := newTestEngine(t)

		first, err := engine.Schedule(ctx, scheduleReq(1, 2, time.Hour, 60))
		require.NoError(t, err)
		completeWithScore(t, engine, first.ID, 88, interviews.RecommendationHire)

		at := testNow.Add(48 * time.Hour)
		next, err := engine.ScheduleNextRound(ctx, first.ID, interviews.TypeBehavioral, at)
		require.NoError(t, err)

		require.Equal(t, interviews.RoundSecond, next.Round)
		require.Equal(t, interviews.TypeBehavioral, next.Type)
		require.Equal(t, at, next.ScheduledAt)
		require.Equal(t, first.CandidateID, next.CandidateID)
		require.Equal(t, first.JobID, next.JobID)
		require.Equal(t, first.InterviewerID, next.InterviewerID)
	})

	t.Run("defaults to the same slot next day", func(t *testing.T) {
		engine := newTestEngine(t)

		first, err := engine.Schedule(ctx, scheduleReq(1, 2, time.Hour, 60))
		require.NoError(t, err)
		completeWithScore(t, engine, first.ID, 88, interviews.RecommendationHire)

		next, err := engine.ScheduleNextRound(ctx, first.ID, "", time.Time{})
		require.NoError(t, err)

		require.Equal(t, first.ScheduledAt.Add(24*time.Hour), next.ScheduledAt)
		require.Equal(t, first.Type, next.Type)
	})

	t.Run("refuses an unfinished round", func(t *testing.T) {
		engine := newTestEngine(t)

		first, err := engine.Schedule(ctx, scheduleReq(1, 2, time.Hour, 60))
		require.NoError(t, err)

		_, err = engine.ScheduleNextRound(ctx, first.ID, "", time.Time{})

		var notEligible *interviews.NotEligibleError
		require.ErrorAs(t, err, &notEligible)
	})

	t.Run("refuses after the final round", func(t *testing.T) {
		engine := newTestEngine(t)

		final, err := engine.Schedule(ctx, interviews.ScheduleRequest{
			JobID:         77,
			CandidateID:   2,
			InterviewerID: 1,
			Type:          interviews.TypeFinal,
			Round:         interviews.RoundFinal,
			ScheduledAt:   testNow.Add(time.Hour),
		})
		require.NoError(t, err)
		completeWithScore(t, engine, final.ID, 92, interviews.RecommendationHire)

		_, err = engine.ScheduleNextRound(ctx, final.ID, "", time.Time{})

		var terminal *interviews.TerminalRoundError
		require.ErrorAs(t, err, &terminal)
	})

	t.Run("conflicting slot propagates unchanged", func(t *testing.T) {
		engine := newTestEngine(t)

		first, err := engine.Schedule(ctx, scheduleReq(1, 2, time.Hour, 60))
		require.NoError(t, err)
		completeWithScore(t, engine, first.ID, 88, interviews.RecommendationHire)

		blocker, err := engine.Schedule(ctx, scheduleReq(1, 9, 48*time.Hour, 60))
		require.NoError(t, err)

		_, err = engine.ScheduleNextRound(ctx, first.ID, "", blocker.ScheduledAt)

		var conflict *interviews.ConflictError
		require.ErrorAs(t, err, &conflict)
	})
}

func TestFlow(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	first, err := engine.Schedule(ctx, scheduleReq(1, 2, time.Hour, 60))
	require.NoError(t, err)
	completeWithScore(t, engine, first.ID, 80, interviews.RecommendationNextRound)

	second, err := engine.ScheduleNextRound(ctx, first.ID, "", time.Time{})
	require.NoError(t, err)
	completeWithScore(t, engine, second.ID, 90, interviews.RecommendationNextRound)

	third, err := engine.ScheduleNextRound(ctx, second.ID, "", time.Time{})
	require.NoError(t, err)

	// unrelated candidate must not appear in the flow
	_, err = engine.Schedule(ctx, scheduleReq(5, 6, time.Hour, 60))
	require.NoError(t, err)

	flow, err := engine.Flow(ctx, 2, 77)
	require.NoError(t, err)

	require.Len(t, flow, 3)
	require.Equal(t, []string{first.ID, second.ID, third.ID}, []string{flow[0].ID, flow[1].ID, flow[2].ID})
	require.Equal(t,
		[]interviews.Round{interviews.RoundFirst, interviews.RoundSecond, interviews.RoundThird},
		[]interviews.Round{flow[0].Round, flow[1].Round, flow[2].Round},
	)

	_, err = engine.Flow(ctx, 0, 77)
	var validation *interviews.ValidationError
	require.ErrorAs(t, err, &validation)
}
