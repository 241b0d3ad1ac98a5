package sfincs

import (
	"fmt"
	"time"

	"github.com/ctessum/sparse"

	"github.com/taddyb/coastal-tools/catalog"
	"github.com/taddyb/coastal-tools/hydrofab"
)

// TimeLayout is the SFINCS configuration timestamp form.
const TimeLayout = "20060102 150405"

// SetConfig records a configuration keyword.
func (m *Model) SetConfig(key, value string) {
	m.cfg[key] = value
}

// SetForcing1D attaches a per-location boundary time series. values is
// sized [len(t)][locations]; its second dimension must equal the
// location count.
func (m *Model) SetForcing1D(t []time.Time, values *sparse.DenseArray, locs *hydrofab.Collection) error {
	if locs == nil || locs.Len() == 0 {
		return fmt.Errorf("sfincs.SetForcing1D: no boundary locations supplied")
	}
	if values == nil || len(values.Shape) != 2 {
		return fmt.Errorf("sfincs.SetForcing1D: values must be [time][location]")
	}
	if values.Shape[0] != len(t) {
		return fmt.Errorf("sfincs.SetForcing1D: %d times vs %d value rows", len(t), values.Shape[0])
	}
	if values.Shape[1] != locs.Len() {
		return fmt.Errorf("sfincs.SetForcing1D: %d locations vs %d value columns", locs.Len(), values.Shape[1])
	}
	m.bndT = t
	m.bndVal = values
	m.bndLoc = locs
	return nil
}

// SetForcing attaches a named raster forcing layer.
func (m *Model) SetForcing(r *catalog.Raster, name string) error {
	if r == nil {
		return fmt.Errorf("sfincs.SetForcing: nil raster for %q", name)
	}
	m.grds[name] = r
	return nil
}
