package interviews

import (
	"sort"
	"time"
)

// Overlaps implements the half-open interval rule: [a0,a1) and [b0,b1)
// intersect iff a0 < b1 && b0 < a1. A window ending exactly when another
// starts does not conflict, so back-to-back bookings are legal.
func Overlaps(a0, a1, b0, b1 time.Time) bool {
	return a0.Before(b1) && b0.Before(a1)
}

// window is a half-open [start, end) pair in unix milliseconds.
type window [2]int64

func toWindow(start, end time.Time) window {
	return window{start.UnixMilli(), end.UnixMilli()}
}

// busyWindows collects the scheduled windows of the given interviews into a
// sorted, merged sequence suitable for probing with fits.
func busyWindows(list []Interview) []window {
	if len(list) == 0 {
		return nil
	}

	ws := make([]window, 0, len(list))
	for _, i := range list {
		ws = append(ws, toWindow(i.Window()))
	}

	sort.Slice(ws, func(a, b int) bool {
		return ws[a][0] < ws[b][0]
	})

	// merge touching or overlapping neighbours
	merged := ws[:1]
	for _, w := range ws[1:] {
		last := &merged[len(merged)-1]
		if w[0] <= (*last)[1] {
			if w[1] > (*last)[1] {
				(*last)[1] = w[1]
			}
			continue
		}
		merged = append(merged, w)
	}

	return merged
}

// fits reports whether w can be inserted into the sorted non-overlapping
// busy sequence without intersecting any window, and at which position.
func fits(busy []window, w window) (int, bool) {
	n := len(busy)

	if n == 0 {
		return 0, true
	}

	// find position for beginning to insert
	idx := sort.Search(n, func(i int) bool {
		return w[0] <= busy[i][0]
	})

	if idx == n {
		// all windows start earlier, check
		// overlap with last one's end
		return idx, w[0] >= busy[n-1][1]
	}

	if w[1] > busy[idx][0] {
		return idx, false
	}

	// check overlap with previous one
	if idx > 0 && w[0] < busy[idx-1][1] {
		return idx, false
	}

	return idx, true
}
