package forcing

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// ReadWaterLevelNC loads a water-level record from a NetCDF file
// holding a one-dimensional time coordinate (seconds since the Unix
// epoch, carrying a start_time offset attribute in seconds) and a
// [time][location] time_series variable.
func ReadWaterLevelNC(fp string) (*WaterLevel, error) {
	ff, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("forcing.ReadWaterLevelNC: %w", err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("forcing.ReadWaterLevelNC %s: %v", fp, err)
	}

	if !hasVar(f, "time") || !hasVar(f, "time_series") {
		return nil, fmt.Errorf("forcing.ReadWaterLevelNC %s: requires time and time_series variables", fp)
	}
	dims := f.Header.Lengths("time_series")
	if len(dims) != 2 {
		return nil, fmt.Errorf("forcing.ReadWaterLevelNC %s: time_series must be [time][location], got %d dims", fp, len(dims))
	}
	nt, nl := dims[0], dims[1]
	tdims := f.Header.Lengths("time")
	if len(tdims) != 1 || tdims[0] != nt {
		return nil, fmt.Errorf("forcing.ReadWaterLevelNC %s: time coordinate length %v does not match series length %d", fp, tdims, nt)
	}

	off, err := startTimeAttr(f)
	if err != nil {
		return nil, fmt.Errorf("forcing.ReadWaterLevelNC %s: %v", fp, err)
	}

	tbuf := make([]float64, nt)
	if _, err := f.Reader("time", []int{0}, []int{nt}).Read(tbuf); err != nil {
		return nil, fmt.Errorf("forcing.ReadWaterLevelNC %s: reading time: %v", fp, err)
	}
	ts := make([]time.Time, nt)
	for i, v := range tbuf {
		sec, frac := math.Modf(v)
		ts[i] = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}

	buf := make([]float64, nt*nl)
	if _, err := f.Reader("time_series", []int{0, 0}, []int{nt, nl}).Read(buf); err != nil {
		return nil, fmt.Errorf("forcing.ReadWaterLevelNC %s: reading time_series: %v", fp, err)
	}
	lv := sparse.ZerosDense(nt, nl)
	copy(lv.Elements, buf)

	return &WaterLevel{T: ts, StartTimeSec: off, Levels: lv}, nil
}

func startTimeAttr(f *cdf.File) (float64, error) {
	a := f.Header.GetAttribute("time", "start_time")
	if a == nil {
		return 0, fmt.Errorf("time coordinate lacks start_time attribute")
	}
	switch v := a.(type) {
	case []float64:
		if len(v) > 0 {
			return v[0], nil
		}
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), nil
		}
	case []int32:
		if len(v) > 0 {
			return float64(v[0]), nil
		}
	}
	return 0, fmt.Errorf("start_time attribute has unexpected type %T", a)
}

func hasVar(f *cdf.File, v string) bool {
	for _, s := range f.Header.Variables() {
		if s == v {
			return true
		}
	}
	return false
}
