// Package forcing carries boundary forcing records for the model
// builders: water levels at a set of offshore locations on a shared
// time coordinate.
package forcing

import (
	"errors"
	"time"

	"github.com/ctessum/sparse"
)

// ErrTimeNotFound reports a requested instant absent from a record's
// (adjusted) time coordinate.
var ErrTimeNotFound = errors.New("forcing: time not found in record")

// WaterLevel is a time-indexed water-level record for a set of
// boundary locations. T holds the raw time coordinate as read from the
// source; StartTimeSec is the calendar offset (seconds) carried in the
// source's time metadata. Levels is sized [len(T)][location].
type WaterLevel struct {
	T            []time.Time
	StartTimeSec float64
	Levels       *sparse.DenseArray
}

// NLoc returns the record's location count.
func (w *WaterLevel) NLoc() int {
	if w.Levels == nil || len(w.Levels.Shape) != 2 {
		return 0
	}
	return w.Levels.Shape[1]
}

// AdjustedTimes returns the time coordinate shifted to calendar time
// by the record's start-time offset.
func (w *WaterLevel) AdjustedTimes() []time.Time {
	d := time.Duration(w.StartTimeSec * float64(time.Second))
	o := make([]time.Time, len(w.T))
	for i, t := range w.T {
		o[i] = t.Add(d)
	}
	return o
}
