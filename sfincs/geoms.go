package sfincs

import (
	"fmt"

	"github.com/ctessum/geom"

	"github.com/taddyb/coastal-tools/hydrofab"
)

// RiversInflowGeom is the session key the inflow river geometry is
// held under.
const RiversInflowGeom = "rivers_inflow"

// SetupRiverInflow registers the inflow river network. Inflow source
// points are taken at each flowpath's first vertex falling inside the
// mesh. keepGeom retains the line geometry on the session for the
// subgrid stage.
func (m *Model) SetupRiverInflow(rivers *hydrofab.Collection, keepGeom bool) error {
	if !m.gridSet {
		return fmt.Errorf("sfincs.SetupRiverInflow: grid not set")
	}
	if rivers == nil || rivers.Len() == 0 {
		return fmt.Errorf("sfincs.SetupRiverInflow: no rivers supplied")
	}
	gridSR, err := hydrofab.SRFromEPSG(m.gd.EPSG)
	if err != nil {
		return fmt.Errorf("sfincs.SetupRiverInflow: %v", err)
	}
	rv := rivers
	if rivers.SR != nil {
		if rv, err = rivers.ToSR(gridSR); err != nil {
			return fmt.Errorf("sfincs.SetupRiverInflow: %v", err)
		}
	}

	src := &hydrofab.Collection{SR: rv.SR}
	for _, f := range rv.Features {
		for _, p := range lineVertices(f.Geom) {
			if _, _, ok := m.gd.CellIndex(p); ok {
				src.Features = append(src.Features, hydrofab.Feature{ID: f.ID, Geom: p})
				break
			}
		}
	}
	m.geoms["rivers_src"] = src
	if keepGeom {
		m.geoms[RiversInflowGeom] = rv
	}
	return nil
}

// SetupObservationLines registers observation cross-sections. merge
// appends to any existing set, reprojecting the newcomers as needed.
func (m *Model) SetupObservationLines(locations *hydrofab.Collection, merge bool) error {
	if locations == nil || locations.Len() == 0 {
		return fmt.Errorf("sfincs.SetupObservationLines: no lines supplied")
	}
	if merge && m.obs != nil && m.obs.Len() > 0 {
		o, err := hydrofab.Concat(m.obs, locations)
		if err != nil {
			return fmt.Errorf("sfincs.SetupObservationLines: %v", err)
		}
		m.obs = o
		return nil
	}
	m.obs = locations
	return nil
}

// lineVertices flattens a line geometry to its ordered vertices.
func lineVertices(g geom.Geom) []geom.Point {
	switch gg := g.(type) {
	case geom.LineString:
		return gg
	case geom.MultiLineString:
		var o []geom.Point
		for _, ls := range gg {
			o = append(o, ls...)
		}
		return o
	case geom.Point:
		return []geom.Point{gg}
	}
	return nil
}
