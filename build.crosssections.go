package coastal

import (
	"fmt"
	"sort"

	"github.com/ctessum/geom"

	"github.com/taddyb/coastal-tools/hydrofab"
)

// DefaultCrossSectionEPSG is the spatial reference assumed for
// cross-section coordinates when the caller passes 0.
const DefaultCrossSectionEPSG = 5070

// CrossSectionPoint is one surveyed point of an observation cross
// section: the catchment it belongs to, the section id, the point's
// position along the section, projected coordinates, elevation, and
// the section's total length.
type CrossSectionPoint struct {
	ID               string
	CSID             string
	RelativeDistance float64
	X, Y, Z          float64
	LengthM          float64
}

// SetupObservationalCrossSections groups the terminal catchment's
// cross-section points by section id, orders each group by relative
// distance, builds one line per group with id, generated name, section
// length and minimum elevation attributes, and registers the lines as
// observation cross-sections, merging with any already present. epsg
// locates the point coordinates (0 selects DefaultCrossSectionEPSG).
//
// A group with fewer than two points cannot form a line and is an
// error.
func SetupObservationalCrossSections(sf Session, pts []CrossSectionPoint, terminalCatchment string, epsg int) error {
	if epsg == 0 {
		epsg = DefaultCrossSectionEPSG
	}

	groups := make(map[string][]CrossSectionPoint)
	var order []string
	for _, p := range pts {
		if p.ID != terminalCatchment {
			continue
		}
		if _, ok := groups[p.CSID]; !ok {
			order = append(order, p.CSID)
		}
		groups[p.CSID] = append(groups[p.CSID], p)
	}
	if len(order) == 0 {
		return fmt.Errorf("coastal.SetupObservationalCrossSections: no cross sections for catchment %q", terminalCatchment)
	}

	sr, err := hydrofab.SRFromEPSG(epsg)
	if err != nil {
		return fmt.Errorf("coastal.SetupObservationalCrossSections: %v", err)
	}
	coll := &hydrofab.Collection{SR: sr, Features: make([]hydrofab.Feature, 0, len(order))}
	for _, csid := range order {
		g := groups[csid]
		if len(g) < 2 {
			return fmt.Errorf("coastal.SetupObservationalCrossSections: section %q has %d point(s), cannot form a line", csid, len(g))
		}
		sort.SliceStable(g, func(i, j int) bool { return g[i].RelativeDistance < g[j].RelativeDistance })

		line := make(geom.LineString, len(g))
		zmin := g[0].Z
		for i, p := range g {
			line[i] = geom.Point{X: p.X, Y: p.Y}
			if p.Z < zmin {
				zmin = p.Z
			}
		}
		coll.Features = append(coll.Features, hydrofab.Feature{
			ID:   csid,
			Geom: line,
			Fields: map[string]string{
				"name":   "CS_" + csid,
				"length": fmt.Sprintf("%g", g[0].LengthM),
				"Z_min":  fmt.Sprintf("%g", zmin),
			},
		})
	}

	if err := sf.SetupObservationLines(coll, true); err != nil {
		return fmt.Errorf("coastal.SetupObservationalCrossSections: %w", err)
	}
	return nil
}
