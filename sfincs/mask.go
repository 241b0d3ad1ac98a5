package sfincs

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/taddyb/coastal-tools/hydrofab"
)

// Mask cell states.
const (
	MaskInactive   = 0
	MaskActive     = 1
	MaskWaterLevel = 2
)

// DepSource names one elevation source in a depth definition. ZMin and
// ZMax, when set, clip the source's usable elevation range; values
// outside the range are left for later sources to fill.
type DepSource struct {
	Elevtn     string
	ZMin, ZMax *float64
}

// SetupDep merges the ordered elevation sources onto the grid. Sources
// are applied in priority order: a cell keeps the first valid value it
// receives, later sources fill only the gaps.
func (m *Model) SetupDep(datasets []DepSource) error {
	if !m.gridSet {
		return fmt.Errorf("sfincs.SetupDep: grid not set")
	}
	if len(datasets) == 0 {
		return fmt.Errorf("sfincs.SetupDep: no elevation sources supplied")
	}
	for _, src := range datasets {
		r, err := m.cat.GetRasterDataset(src.Elevtn, m.gd.Bounds(), m.gd.EPSG, 0, "")
		if err != nil {
			return fmt.Errorf("sfincs.SetupDep %s: %w", src.Elevtn, err)
		}
		for n := 0; n < m.gd.Nmax; n++ {
			for mm := 0; mm < m.gd.Mmax; mm++ {
				if !math.IsNaN(m.dep.Get(n, mm)) {
					continue
				}
				p := m.gd.CellCenter(n, mm)
				v, ok := r.Value(p.X, p.Y)
				if !ok {
					continue
				}
				if src.ZMin != nil && v < *src.ZMin {
					continue
				}
				if src.ZMax != nil && v > *src.ZMax {
					continue
				}
				m.dep.Set(v, n, mm)
			}
		}
	}
	return nil
}

// SetupMaskActive marks cells whose merged elevation meets zmin as
// active. resetMask first clears every cell to inactive.
func (m *Model) SetupMaskActive(zmin float64, resetMask bool) error {
	if !m.gridSet {
		return fmt.Errorf("sfincs.SetupMaskActive: grid not set")
	}
	if resetMask {
		for i := range m.msk.Elements {
			m.msk.Elements[i] = MaskInactive
		}
	}
	for n := 0; n < m.gd.Nmax; n++ {
		for mm := 0; mm < m.gd.Mmax; mm++ {
			v := m.dep.Get(n, mm)
			if !math.IsNaN(v) && v >= zmin {
				m.msk.Set(MaskActive, n, mm)
			}
		}
	}
	return nil
}

// SetupMaskBounds marks open-boundary cells of the given type within
// the include mask. Only waterlevel boundaries are supported; a cell
// becomes a boundary cell when its centre falls inside an include
// geometry (or its cell contains an include point), its merged
// elevation is valid, and that elevation does not exceed zmax.
func (m *Model) SetupMaskBounds(btype string, include *hydrofab.Collection, resetBounds bool, zmax float64) error {
	if !m.gridSet {
		return fmt.Errorf("sfincs.SetupMaskBounds: grid not set")
	}
	if btype != "waterlevel" {
		return fmt.Errorf("sfincs.SetupMaskBounds: unsupported boundary type %q", btype)
	}
	if include == nil || include.Len() == 0 {
		return fmt.Errorf("sfincs.SetupMaskBounds: empty include mask")
	}
	gridSR, err := hydrofab.SRFromEPSG(m.gd.EPSG)
	if err != nil {
		return fmt.Errorf("sfincs.SetupMaskBounds: %v", err)
	}
	inc := include
	if include.SR != nil {
		if inc, err = include.ToSR(gridSR); err != nil {
			return fmt.Errorf("sfincs.SetupMaskBounds: %v", err)
		}
	}

	if resetBounds {
		for i, v := range m.msk.Elements {
			if v == MaskWaterLevel {
				m.msk.Elements[i] = MaskActive
			}
		}
	}

	for _, f := range inc.Features {
		switch g := f.Geom.(type) {
		case geom.Point:
			m.markBoundCell(g, zmax)
		case geom.MultiPoint:
			for _, p := range g {
				m.markBoundCell(p, zmax)
			}
		default:
			m.markBoundPolygonal(f.Geom, zmax)
		}
	}
	return nil
}

func (m *Model) markBoundCell(p geom.Point, zmax float64) {
	n, mm, ok := m.gd.CellIndex(p)
	if !ok {
		return
	}
	if v := m.dep.Get(n, mm); !math.IsNaN(v) && v <= zmax {
		m.msk.Set(MaskWaterLevel, n, mm)
	}
}

func (m *Model) markBoundPolygonal(g geom.Geom, zmax float64) {
	poly, ok := g.(geom.Polygonal)
	if !ok {
		return
	}
	b := g.Bounds()
	for n := 0; n < m.gd.Nmax; n++ {
		for mm := 0; mm < m.gd.Mmax; mm++ {
			if v := m.dep.Get(n, mm); math.IsNaN(v) || v > zmax {
				continue
			}
			p := m.gd.CellCenter(n, mm)
			if p.X < b.Min.X || p.X > b.Max.X || p.Y < b.Min.Y || p.Y > b.Max.Y {
				continue
			}
			if p.Within(poly) == geom.Inside {
				m.msk.Set(MaskWaterLevel, n, mm)
			}
		}
	}
}
