package forcing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hourlyRecord builds an nt-step hourly record for nl locations with
// value j+i/10 at step j, location i.
func hourlyRecord(t0 time.Time, nt, nl int, offsetSec float64) *WaterLevel {
	ts := make([]time.Time, nt)
	lv := sparse.ZerosDense(nt, nl)
	for j := 0; j < nt; j++ {
		ts[j] = t0.Add(time.Duration(j) * time.Hour)
		for i := 0; i < nl; i++ {
			lv.Set(float64(j)+float64(i)/10, j, i)
		}
	}
	return &WaterLevel{T: ts, StartTimeSec: offsetSec, Levels: lv}
}

func TestWindow(t *testing.T) {
	t0 := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	w := hourlyRecord(t0, 48, 3, 0)

	win, err := w.Window(t0.Add(6*time.Hour), t0.Add(30*time.Hour))
	require.NoError(t, err)
	assert.Len(t, win.T, 25)
	assert.Equal(t, 3, win.NLoc())
	assert.InDelta(t, 6.0, win.Levels.Get(0, 0), 1e-12)
	assert.InDelta(t, 30.2, win.Levels.Get(24, 2), 1e-12)

	// slicing must not alias the source coordinate
	win.T[0] = time.Time{}
	assert.Equal(t, t0.Add(6*time.Hour), w.T[6])
}

func TestWindowAdjustsForStartTime(t *testing.T) {
	t0 := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	w := hourlyRecord(t0, 24, 2, 3600) // record is calendar-shifted by one hour

	win, err := w.Window(t0.Add(1*time.Hour), t0.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Len(t, win.T, 4)
	assert.InDelta(t, 0.0, win.Levels.Get(0, 0), 1e-12)

	// the raw coordinate value is not a valid endpoint once shifted
	_, err = w.Window(t0, t0.Add(4*time.Hour))
	assert.ErrorIs(t, err, ErrTimeNotFound)
}

func TestWindowTimeNotFound(t *testing.T) {
	t0 := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	w := hourlyRecord(t0, 24, 1, 0)

	_, err := w.Window(t0.Add(30*time.Minute), t0.Add(4*time.Hour))
	assert.ErrorIs(t, err, ErrTimeNotFound)

	_, err = w.Window(t0, t0.Add(100*time.Hour))
	assert.ErrorIs(t, err, ErrTimeNotFound)
}

func TestWindowEndBeforeStart(t *testing.T) {
	t0 := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	w := hourlyRecord(t0, 24, 1, 0)

	_, err := w.Window(t0.Add(5*time.Hour), t0.Add(2*time.Hour))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeNotFound)
}

func TestUniformAxis(t *testing.T) {
	start := time.Date(2023, 4, 1, 1, 0, 0, 0, time.UTC)
	end := time.Date(2023, 4, 3, 0, 0, 0, 0, time.UTC)

	axis := UniformAxis(start, end, 48)
	require.Len(t, axis, 48)
	assert.WithinDuration(t, start, axis[0], time.Microsecond)
	assert.WithinDuration(t, end, axis[47], time.Microsecond)
	step := axis[1].Sub(axis[0])
	for i := 2; i < len(axis); i++ {
		assert.WithinDuration(t, axis[i-1].Add(step), axis[i], time.Microsecond)
	}

	assert.Nil(t, UniformAxis(start, end, 0))
	one := UniformAxis(start, end, 1)
	require.Len(t, one, 1)
	assert.Equal(t, start, one[0])
}

func TestReadWaterLevelNC(t *testing.T) {
	t0 := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	nt, nl := 6, 2
	times := make([]float64, nt)
	flat := make([]float64, nt*nl)
	for j := 0; j < nt; j++ {
		times[j] = float64(t0.Add(time.Duration(j) * time.Hour).Unix())
		for i := 0; i < nl; i++ {
			flat[j*nl+i] = float64(j*10 + i)
		}
	}

	fp := filepath.Join(t.TempDir(), "stofs.nc")
	writeWaterLevelNC(t, fp, times, 7200., flat, nl)

	w, err := ReadWaterLevelNC(fp)
	require.NoError(t, err)
	assert.Equal(t, 7200., w.StartTimeSec)
	assert.Equal(t, nl, w.NLoc())
	require.Len(t, w.T, nt)
	assert.Equal(t, t0, w.T[0])
	assert.Equal(t, t0.Add(2*time.Hour), w.AdjustedTimes()[0])
	assert.InDelta(t, 51., w.Levels.Get(5, 1), 1e-9)
}

func TestReadWaterLevelNCMissingVariables(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "bad.nc")
	h := cdf.NewHeader([]string{"time"}, []int{3})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.Define()
	ff, err := os.Create(fp)
	require.NoError(t, err)
	f, err := cdf.Create(ff, h)
	require.NoError(t, err)
	_, err = f.Writer("time", []int{0}, []int{3}).Write([]float64{0, 1, 2})
	require.NoError(t, err)
	require.NoError(t, ff.Close())

	_, err = ReadWaterLevelNC(fp)
	assert.Error(t, err)
}

func writeWaterLevelNC(t *testing.T, fp string, times []float64, offset float64, flat []float64, nl int) {
	t.Helper()
	nt := len(times)
	h := cdf.NewHeader([]string{"time", "loc"}, []int{nt, nl})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "start_time", []float64{offset})
	h.AddVariable("time_series", []string{"time", "loc"}, []float64{0})
	h.Define()
	for _, err := range h.Check() {
		require.NoError(t, err)
	}
	ff, err := os.Create(fp)
	require.NoError(t, err)
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	require.NoError(t, err)
	_, err = f.Writer("time", []int{0}, []int{nt}).Write(times)
	require.NoError(t, err)
	_, err = f.Writer("time_series", []int{0, 0}, []int{nt, nl}).Write(flat)
	require.NoError(t, err)
}
