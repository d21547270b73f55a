package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hireflow/interviewd/internal/interviews"
	"github.com/hireflow/interviewd/pkg/logger"
)

var repoNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func storedInterview(id string, interviewer, candidate int64, startOffset time.Duration) interviews.Interview {
	start := repoNow.Add(startOffset)
	return interviews.Interview{
		ID:              id,
		JobID:           77,
		CandidateID:     candidate,
		InterviewerID:   interviewer,
		Type:            interviews.TypeTechnical,
		Round:           interviews.RoundFirst,
		ScheduledAt:     start,
		EndsAt:          start.Add(time.Hour),
		DurationMinutes: 60,
		Status:          interviews.StatusScheduled,
		CreatedAt:       repoNow,
		UpdatedAt:       repoNow,
	}
}

func Test_memoryRepo_crud(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(MemoryConfig{}, logger.NewStub())

	id, err := m.Insert(ctx, storedInterview("i1", 1, 2, time.Hour))
	require.NoError(t, err)
	require.Equal(t, "i1", id)

	// duplicate ids are refused
	_, err = m.Insert(ctx, storedInterview("i1", 3, 4, time.Hour))
	require.Error(t, err)

	got, err := m.Get(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, int64(2), got.CandidateID)

	var notFound *interviews.NotFoundError
	_, err = m.Get(ctx, "missing")
	require.ErrorAs(t, err, &notFound)

	updated, err := m.Update(ctx, "i1", func(i *interviews.Interview) error {
		i.Notes = "bring the whiteboard"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "bring the whiteboard", updated.Notes)

	// a failed mutation leaves the stored document untouched
	boom := interviews.ValidationError{Field: "x", Reason: "boom"}
	_, err = m.Update(ctx, "i1", func(i *interviews.Interview) error {
		i.Notes = "half-applied"
		return &boom
	})
	require.ErrorAs(t, err, new(*interviews.ValidationError))

	got, err = m.Get(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, "bring the whiteboard", got.Notes)
}

func Test_memoryRepo_FindConflicts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(MemoryConfig{}, logger.NewStub())

	_, err := m.Insert(ctx, storedInterview("i1", 1, 2, time.Hour))
	require.NoError(t, err)

	terminated := storedInterview("i2", 1, 3, time.Hour)
	terminated.Status = interviews.StatusCancelled
	_, err = m.Insert(ctx, terminated)
	require.NoError(t, err)

	interviewer := int64(1)
	candidate := int64(2)
	stranger := int64(9)

	type testcase struct {
		name string
		q    interviews.ConflictQuery
		want []string
	}

	tests := [...]testcase{
		{
			name: "interviewer role matches",
			q: interviews.ConflictQuery{
				InterviewerID: &interviewer,
				Start:         repoNow.Add(time.Hour),
				End:           repoNow.Add(2 * time.Hour),
			},
			want: []string{"i1"},
		},
		{
			name: "candidate role matches",
			q: interviews.ConflictQuery{
				CandidateID: &candidate,
				Start:       repoNow.Add(90 * time.Minute),
				End:         repoNow.Add(3 * time.Hour),
			},
			want: []string{"i1"},
		},
		{
			name: "roles are independent",
			q: interviews.ConflictQuery{
				// id 1 interviews, it never conflicts as a candidate
				CandidateID: &interviewer,
				Start:       repoNow.Add(time.Hour),
				End:         repoNow.Add(2 * time.Hour),
			},
			want: nil,
		},
		{
			name: "stranger is free",
			q: interviews.ConflictQuery{
				InterviewerID: &stranger,
				CandidateID:   &stranger,
				Start:         repoNow.Add(time.Hour),
				End:           repoNow.Add(2 * time.Hour),
			},
			want: nil,
		},
		{
			name: "adjacent window does not conflict",
			q: interviews.ConflictQuery{
				InterviewerID: &interviewer,
				Start:         repoNow.Add(2 * time.Hour),
				End:           repoNow.Add(3 * time.Hour),
			},
			want: nil,
		},
		{
			name: "excluded id is skipped",
			q: interviews.ConflictQuery{
				InterviewerID: &interviewer,
				Start:         repoNow.Add(time.Hour),
				End:           repoNow.Add(2 * time.Hour),
				ExcludeID:     "i1",
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := m.FindConflicts(ctx, tt.q)
			require.NoError(t, err)

			var ids []string
			for _, i := range found {
				ids = append(ids, i.ID)
			}
			require.Equal(t, tt.want, ids)
		})
	}
}

func Test_memoryRepo_MarkReminded(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(MemoryConfig{}, logger.NewStub())

	_, err := m.Insert(ctx, storedInterview("i1", 1, 2, 6*time.Hour))
	require.NoError(t, err)

	marked, err := m.MarkReminded(ctx, "i1")
	require.NoError(t, err)
	require.True(t, marked)

	// the second mark loses the test-and-set
	marked, err = m.MarkReminded(ctx, "i1")
	require.NoError(t, err)
	require.False(t, marked)

	var notFound *interviews.NotFoundError
	_, err = m.MarkReminded(ctx, "missing")
	require.ErrorAs(t, err, &notFound)
}

func Test_memoryRepo_FindDueReminders(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(MemoryConfig{}, logger.NewStub())

	_, err := m.Insert(ctx, storedInterview("due", 1, 2, 6*time.Hour))
	require.NoError(t, err)

	_, err = m.Insert(ctx, storedInterview("late", 3, 4, 30*time.Hour))
	require.NoError(t, err)

	reminded := storedInterview("reminded", 5, 6, 6*time.Hour)
	reminded.ReminderSent = true
	_, err = m.Insert(ctx, reminded)
	require.NoError(t, err)

	due, err := m.FindDueReminders(ctx, repoNow, repoNow.Add(24*time.Hour))
	require.NoError(t, err)

	require.Len(t, due, 1)
	require.Equal(t, "due", due[0].ID)
}

func Test_memoryRepo_snapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "interviews.json")

	m := NewMemory(MemoryConfig{SnapshotPath: path}, logger.NewStub())
	_, err := m.Insert(ctx, storedInterview("i1", 1, 2, time.Hour))
	require.NoError(t, err)
	require.NoError(t, m.Close(ctx))

	// a fresh repo picks the data set up from disk
	restored := NewMemory(MemoryConfig{SnapshotPath: path}, logger.NewStub())

	got, err := restored.Get(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, int64(2), got.CandidateID)
	require.Equal(t, interviews.StatusScheduled, got.Status)
}
