package locker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ParticipantKeys(t *testing.T) {
	type testcase struct {
		name string
		ids  []int64
		want []string
	}

	tests := [...]testcase{
		{
			name: "ordered lower id first",
			ids:  []int64{7, 3},
			want: []string{"interviewd:participant:3", "interviewd:participant:7"},
		},
		{
			name: "duplicates collapse",
			ids:  []int64{5, 5},
			want: []string{"interviewd:participant:5"},
		},
		{
			name: "single id",
			ids:  []int64{1},
			want: []string{"interviewd:participant:1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParticipantKeys(tt.ids...))
		})
	}
}

func Test_localLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("acquire and release", func(t *testing.T) {
		l := NewLocal()

		release, err := l.Acquire(ctx, []string{"a", "b"})
		require.NoError(t, err)

		_, err = l.Acquire(ctx, []string{"b", "c"})
		require.ErrorIs(t, err, ErrNotAcquired)

		release()

		release2, err := l.Acquire(ctx, []string{"b", "c"})
		require.NoError(t, err)
		release2()
	})

	t.Run("all or nothing", func(t *testing.T) {
		l := NewLocal()

		release, err := l.Acquire(ctx, []string{"b"})
		require.NoError(t, err)

		// a partial overlap must not leave "a" behind
		_, err = l.Acquire(ctx, []string{"a", "b"})
		require.ErrorIs(t, err, ErrNotAcquired)

		releaseA, err := l.Acquire(ctx, []string{"a"})
		require.NoError(t, err)

		releaseA()
		release()
	})

	t.Run("double release is safe", func(t *testing.T) {
		l := NewLocal()

		release, err := l.Acquire(ctx, []string{"a"})
		require.NoError(t, err)

		release()
		require.NotPanics(t, release)

		releaseAgain, err := l.Acquire(ctx, []string{"a"})
		require.NoError(t, err)
		releaseAgain()
	})
}
