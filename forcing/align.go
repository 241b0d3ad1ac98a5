package forcing

import (
	"fmt"
	"time"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Window slices w to the inclusive [start, end] window located by
// exact match against the adjusted time coordinate. Either endpoint
// missing from the coordinate is an ErrTimeNotFound.
func (w *WaterLevel) Window(start, end time.Time) (*WaterLevel, error) {
	at := w.AdjustedTimes()
	i0, i1 := -1, -1
	for i, t := range at {
		if i0 < 0 && t.Equal(start) {
			i0 = i
		}
		if t.Equal(end) {
			i1 = i
		}
	}
	if i0 < 0 {
		return nil, fmt.Errorf("%w: start %s", ErrTimeNotFound, start.UTC().Format(time.RFC3339))
	}
	if i1 < 0 {
		return nil, fmt.Errorf("%w: end %s", ErrTimeNotFound, end.UTC().Format(time.RFC3339))
	}
	if i1 < i0 {
		return nil, fmt.Errorf("forcing.Window: end %s precedes start %s", end.UTC().Format(time.RFC3339), start.UTC().Format(time.RFC3339))
	}

	nt, nl := i1-i0+1, w.NLoc()
	lv := sparse.ZerosDense(nt, nl)
	for j := 0; j < nt; j++ {
		for i := 0; i < nl; i++ {
			lv.Set(w.Levels.Get(j+i0, i), j, i)
		}
	}
	return &WaterLevel{
		T:            append([]time.Time{}, w.T[i0:i1+1]...),
		StartTimeSec: w.StartTimeSec,
		Levels:       lv,
	}, nil
}

// UniformAxis returns n instants evenly spanning [start, end].
func UniformAxis(start, end time.Time, n int) []time.Time {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []time.Time{start}
	}
	s := make([]float64, n)
	floats.Span(s, float64(start.UnixNano()), float64(end.UnixNano()))
	o := make([]time.Time, n)
	for i, v := range s {
		o[i] = time.Unix(0, int64(v)).UTC()
	}
	return o
}
