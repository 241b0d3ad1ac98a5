package coastal

import (
	"fmt"
	"strconv"
	"time"

	"github.com/taddyb/coastal-tools/forcing"
	"github.com/taddyb/coastal-tools/hydrofab"
	"github.com/taddyb/coastal-tools/sfincs"
)

// BoundaryPoint is an offshore forcing location in geographic
// (EPSG:4326) coordinates.
type BoundaryPoint struct {
	Lon, Lat float64
}

// SetupWaterLevelBoundaries configures the simulation window
// (reference, start and stop times) and attaches one water-level
// series per boundary location. Points are reprojected from geographic
// coordinates into the session's spatial reference and assigned
// 1-based sequential ids matching the forcing record's per-location
// columns; the record's time coordinate is shifted by its start-time
// offset, sliced to the exact [start, end] window, and re-expressed on
// a uniform axis with the same sample count.
//
// The location count must equal the record's second dimension. A
// window endpoint absent from the shifted coordinate is a
// forcing.ErrTimeNotFound.
func SetupWaterLevelBoundaries(sf Session, start, end time.Time, points []BoundaryPoint, wl *forcing.WaterLevel) error {
	if len(points) == 0 {
		return fmt.Errorf("coastal.SetupWaterLevelBoundaries: no boundary points supplied")
	}
	if wl == nil || wl.NLoc() == 0 {
		return fmt.Errorf("coastal.SetupWaterLevelBoundaries: no forcing record supplied")
	}
	if wl.NLoc() != len(points) {
		return fmt.Errorf("coastal.SetupWaterLevelBoundaries: %d boundary points vs %d forcing locations", len(points), wl.NLoc())
	}
	gd, ok := sf.Grid()
	if !ok {
		return fmt.Errorf("coastal.SetupWaterLevelBoundaries: grid not set")
	}

	sf.SetConfig("tref", start.Format(sfincs.TimeLayout))
	sf.SetConfig("tstart", start.Format(sfincs.TimeLayout))
	sf.SetConfig("tstop", end.Format(sfincs.TimeLayout))

	gridSR, err := hydrofab.SRFromEPSG(gd.EPSG)
	if err != nil {
		return fmt.Errorf("coastal.SetupWaterLevelBoundaries: %v", err)
	}
	locs := &hydrofab.Collection{SR: gridSR, Features: make([]hydrofab.Feature, len(points))}
	for i, bp := range points {
		p, err := hydrofab.ProjectPoint(bp.Lon, bp.Lat, gd.EPSG)
		if err != nil {
			return fmt.Errorf("coastal.SetupWaterLevelBoundaries: point %d: %v", i+1, err)
		}
		locs.Features[i] = hydrofab.Feature{ID: strconv.Itoa(i + 1), Geom: p}
	}

	win, err := wl.Window(start, end)
	if err != nil {
		return fmt.Errorf("coastal.SetupWaterLevelBoundaries: %w", err)
	}
	axis := forcing.UniformAxis(start, end, len(win.T))
	if err := sf.SetForcing1D(axis, win.Levels, locs); err != nil {
		return fmt.Errorf("coastal.SetupWaterLevelBoundaries: %w", err)
	}
	return nil
}
