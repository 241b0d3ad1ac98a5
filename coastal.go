// Package coastal assembles SFINCS hydrodynamic model inputs from
// hydrofabric geometry, data-catalog rasters and boundary forcing
// records. Each builder takes the model session and one class of
// input; in practice they compose in a fixed order (initialize, add
// outflow, add river inflow, add subgrid, add water-level boundaries,
// add meteorological forcing, add observation cross-sections), which
// BuildCoastal drives from a control file.
//
// The session is single-writer: no builder is safe to invoke
// concurrently on the same session.
package coastal

import (
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"

	"github.com/taddyb/coastal-tools/catalog"
	"github.com/taddyb/coastal-tools/hydrofab"
	"github.com/taddyb/coastal-tools/sfincs"
)

// Session is the modeling-session surface the builders drive: the
// setup operations of the external model builder actually used here,
// nothing more.
type Session interface {
	SetupGrid(g sfincs.GridDef) error
	SetupDep(datasets []sfincs.DepSource) error
	SetupMaskActive(zmin float64, resetMask bool) error
	SetupMaskBounds(btype string, include *hydrofab.Collection, resetBounds bool, zmax float64) error
	SetupRiverInflow(rivers *hydrofab.Collection, keepGeom bool) error
	SetupSubgrid(datasetsDep []sfincs.DepSource, manning *sparse.DenseArray, rivers []sfincs.River, nrSubgridPixels int, writeDep bool) error
	SetConfig(key, value string)
	SetForcing1D(t []time.Time, values *sparse.DenseArray, locs *hydrofab.Collection) error
	SetForcing(r *catalog.Raster, name string) error
	SetupObservationLines(locations *hydrofab.Collection, merge bool) error

	Grid() (sfincs.GridDef, bool)
	Geoms(name string) (*hydrofab.Collection, bool)
	Region() (*geom.Bounds, error)
	Catalog() *catalog.DataCatalog
	Write() error
}

var _ Session = (*sfincs.Model)(nil)
