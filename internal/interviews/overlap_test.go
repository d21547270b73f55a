package interviews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Overlaps(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	at := func(m int) time.Time { return base.Add(time.Duration(m) * time.Minute) }

	type args struct {
		a0, a1 int
		b0, b1 int
	}

	type testcase struct {
		name string
		args args
		want bool
	}

	tests := [...]testcase{
		{
			name: "identical windows",
			args: args{0, 60, 0, 60},
			want: true,
		},
		{
			name: "partial overlap",
			args: args{0, 60, 30, 90},
			want: true,
		},
		{
			name: "containment",
			args: args{0, 90, 30, 60},
			want: true,
		},
		{
			name: "back to back",
			args: args{0, 60, 60, 120},
			want: false,
		},
		{
			name: "back to back reversed",
			args: args{60, 120, 0, 60},
			want: false,
		},
		{
			name: "disjoint",
			args: args{0, 60, 120, 180},
			want: false,
		},
		{
			name: "one minute overlap",
			args: args{0, 61, 60, 120},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(at(tt.args.a0), at(tt.args.a1), at(tt.args.b0), at(tt.args.b1))
			require.Equal(t, tt.want, got)

			// overlap is symmetric
			require.Equal(t, tt.want, Overlaps(at(tt.args.b0), at(tt.args.b1), at(tt.args.a0), at(tt.args.a1)))
		})
	}
}

func Test_fits(t *testing.T) {
	type args struct {
		busy []window
		w    window
	}

	type testcase struct {
		name string
		args args

		wantIdx int
		wantOk  bool
	}

	tests := [...]testcase{
		{
			name: "empty sequence",
			args: args{
				busy: nil,
				w:    window{2, 4},
			},
			wantIdx: 0,
			wantOk:  true,
		},
		{
			name: "fits at the end",
			args: args{
				busy: []window{{0, 2}, {2, 3}},
				w:    window{3, 4},
			},
			wantIdx: 2,
			wantOk:  true,
		},
		{
			name: "fits in the middle",
			args: args{
				busy: []window{{0, 2}, {2, 3}, {4, 5}},
				w:    window{3, 4},
			},
			wantIdx: 2,
			wantOk:  true,
		},
		{
			name: "fits at the beginning",
			args: args{
				busy: []window{{2, 3}, {3, 4}},
				w:    window{0, 1},
			},
			wantIdx: 0,
			wantOk:  true,
		},
		{
			name: "overlaps first",
			args: args{
				busy: []window{{2, 3}, {3, 4}},
				w:    window{0, 3},
			},
			wantIdx: 0,
			wantOk:  false,
		},
		{
			name: "overlaps last",
			args: args{
				busy: []window{{2, 3}, {3, 5}},
				w:    window{4, 6},
			},
			wantIdx: 2,
			wantOk:  false,
		},
		{
			name: "no space between neighbours",
			args: args{
				busy: []window{{0, 2}, {2, 3}},
				w:    window{1, 2},
			},
			wantIdx: 1,
			wantOk:  false,
		},
		{
			name: "covers many",
			args: args{
				busy: []window{{0, 1}, {1, 2}, {2, 3}, {4, 6}},
				w:    window{1, 8},
			},
			wantIdx: 1,
			wantOk:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotIdx, gotOk := fits(tt.args.busy, tt.args.w)
			require.Equal(t, tt.wantIdx, gotIdx)
			require.Equal(t, tt.wantOk, gotOk)
		})
	}
}

func Test_busyWindows(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	slot := func(startMin, durMin int) Interview {
		start := base.Add(time.Duration(startMin) * time.Minute)
		return Interview{
			ScheduledAt: start,
			EndsAt:      start.Add(time.Duration(durMin) * time.Minute),
		}
	}
	ms := func(m int) int64 { return base.Add(time.Duration(m) * time.Minute).UnixMilli() }

	type testcase struct {
		name string
		list []Interview
		want []window
	}

	tests := [...]testcase{
		{
			name: "empty",
			list: nil,
			want: nil,
		},
		{
			name: "unordered input gets sorted",
			list: []Interview{slot(120, 60), slot(0, 60)},
			want: []window{{ms(0), ms(60)}, {ms(120), ms(180)}},
		},
		{
			name: "touching windows merge",
			list: []Interview{slot(0, 60), slot(60, 60)},
			want: []window{{ms(0), ms(120)}},
		},
		{
			name: "contained window collapses",
			list: []Interview{slot(0, 120), slot(30, 30)},
			want: []window{{ms(0), ms(120)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, busyWindows(tt.list))
		})
	}
}
