// Package sfincs materializes SFINCS model input state: the
// computational grid, merged depth and mask rasters, boundary and
// meteorological forcing, river geometry and observation lines, and
// their on-disk input-file forms. It implements the modeling-session
// surface the coastal builders drive; the hydrodynamic solver itself
// is external and out of scope.
//
// A Model is single-writer: the builders mutate it in place, in
// sequence, on one goroutine.
package sfincs

import (
	"fmt"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"

	"github.com/maseology/mmio"
	"github.com/taddyb/coastal-tools/catalog"
	"github.com/taddyb/coastal-tools/hydrofab"
)

// Model is an in-memory SFINCS model input set rooted at a working
// directory.
type Model struct {
	root string
	cat  *catalog.DataCatalog

	gd      GridDef
	gridSet bool
	dep     *sparse.DenseArray // [Nmax][Mmax], NaN where unset
	msk     *sparse.DenseArray // 0 inactive, 1 active, 2 waterlevel boundary

	cfg   map[string]string
	geoms map[string]*hydrofab.Collection

	bndT   []time.Time
	bndVal *sparse.DenseArray // [time][location]
	bndLoc *hydrofab.Collection

	grds map[string]*catalog.Raster
	obs  *hydrofab.Collection
	sbg  *SubgridTables
}

// New opens a model session rooted at root, resolving the given data
// catalog files. Mode "w" requires root to not exist yet; mode "w+"
// creates or reuses it.
func New(dataLibs []string, root, mode string) (*Model, error) {
	dc, err := catalog.Load(dataLibs...)
	if err != nil {
		return nil, fmt.Errorf("sfincs.New: %w", err)
	}
	switch mode {
	case "w":
		if mmio.DirExists(root) {
			return nil, fmt.Errorf("sfincs.New: root %s already exists (mode w)", root)
		}
	case "w+":
	default:
		return nil, fmt.Errorf("sfincs.New: unknown mode %q", mode)
	}
	mmio.MakeDir(root)
	if !mmio.DirExists(root) {
		return nil, fmt.Errorf("sfincs.New: cannot create root %s", root)
	}
	return &Model{
		root:  root,
		cat:   dc,
		cfg:   make(map[string]string),
		geoms: make(map[string]*hydrofab.Collection),
		grds:  make(map[string]*catalog.Raster),
	}, nil
}

// Root returns the session's working directory.
func (m *Model) Root() string { return m.root }

// Catalog returns the session's merged data catalog.
func (m *Model) Catalog() *catalog.DataCatalog { return m.cat }

// Grid returns the grid definition. The second return is false before
// SetupGrid.
func (m *Model) Grid() (GridDef, bool) { return m.gd, m.gridSet }

// Region returns the axis-aligned extent of the grid in its projected
// spatial reference.
func (m *Model) Region() (*geom.Bounds, error) {
	if !m.gridSet {
		return nil, fmt.Errorf("sfincs.Region: grid not set")
	}
	return m.gd.Bounds(), nil
}

// Geoms returns the named geometry collection held on the session.
func (m *Model) Geoms(name string) (*hydrofab.Collection, bool) {
	c, ok := m.geoms[name]
	return c, ok
}

// Config returns the configuration value set for key.
func (m *Model) Config(key string) (string, bool) {
	v, ok := m.cfg[key]
	return v, ok
}

// Dep returns the merged depth raster.
func (m *Model) Dep() *sparse.DenseArray { return m.dep }

// Mask returns the cell mask raster.
func (m *Model) Mask() *sparse.DenseArray { return m.msk }

// Subgrid returns the generated subgrid tables, nil before
// SetupSubgrid.
func (m *Model) Subgrid() *SubgridTables { return m.sbg }

// ObservationLines returns the registered observation cross-sections.
func (m *Model) ObservationLines() *hydrofab.Collection { return m.obs }

// BoundaryForcing returns the attached 1-D water-level forcing: its
// time axis, value table and locations.
func (m *Model) BoundaryForcing() ([]time.Time, *sparse.DenseArray, *hydrofab.Collection) {
	return m.bndT, m.bndVal, m.bndLoc
}

// Forcing returns the named raster forcing layer.
func (m *Model) Forcing(name string) (*catalog.Raster, bool) {
	r, ok := m.grds[name]
	return r, ok
}
