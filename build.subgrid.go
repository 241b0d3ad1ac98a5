package coastal

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"

	"github.com/taddyb/coastal-tools/hydrofab"
	"github.com/taddyb/coastal-tools/sfincs"
)

// Flowpath attribute columns carrying the channel parameters.
const (
	attrTopWidth = "TopWdth" // top width [m]
	attrManning  = "n"       // Manning coefficient [s/m^(1/3)]
	attrDepth    = "Y"       // bankfull depth [m]
)

// SubgridPixels is the subgrid oversampling factor: subgrid pixels per
// grid cell in each direction.
const SubgridPixels = 5

// SetupSubgrid joins channel attributes onto the inflow river geometry
// held on the session, rasterizes the Manning coefficient over each
// river's corridor (centerline buffered by half the top width), and
// generates the subgrid tables from the elevation sources at
// SubgridPixels oversampling, writing the subgrid elevation artifact
// under the session root.
//
// Every river feature must have an attribute row; an id with no match
// is an error.
func SetupSubgrid(sf Session, depths []sfincs.DepSource, flowpathAttrs *hydrofab.Collection) error {
	rv, ok := sf.Geoms(sfincs.RiversInflowGeom)
	if !ok || rv.Len() == 0 {
		return fmt.Errorf("coastal.SetupSubgrid: session holds no %s geometry; set up river inflow first", sfincs.RiversInflowGeom)
	}
	gd, ok := sf.Grid()
	if !ok {
		return fmt.Errorf("coastal.SetupSubgrid: grid not set")
	}

	rivers := make([]sfincs.River, 0, rv.Len())
	for _, f := range rv.Features {
		attr, ok := flowpathAttrs.Find(f.ID)
		if !ok {
			return fmt.Errorf("coastal.SetupSubgrid: no flowpath attributes for river %q", f.ID)
		}
		w, err := attrFloat(attr, attrTopWidth)
		if err != nil {
			return fmt.Errorf("coastal.SetupSubgrid %s: %v", f.ID, err)
		}
		n, err := attrFloat(attr, attrManning)
		if err != nil {
			return fmt.Errorf("coastal.SetupSubgrid %s: %v", f.ID, err)
		}
		d, err := attrFloat(attr, attrDepth)
		if err != nil {
			return fmt.Errorf("coastal.SetupSubgrid %s: %v", f.ID, err)
		}
		line, err := centerline(f.Geom)
		if err != nil {
			return fmt.Errorf("coastal.SetupSubgrid %s: %v", f.ID, err)
		}
		rivers = append(rivers, sfincs.River{ID: f.ID, Line: line, Width: w, Depth: d, Manning: n})
	}

	manning := rasterizeManning(gd, rivers)
	if err := sf.SetupSubgrid(depths, manning, rivers, SubgridPixels, true); err != nil {
		return fmt.Errorf("coastal.SetupSubgrid: %w", err)
	}
	return nil
}

// rasterizeManning burns each river's Manning coefficient onto the
// grid cells whose centres fall within the buffered corridor. Cells
// outside every corridor stay NaN (nodata).
func rasterizeManning(gd sfincs.GridDef, rivers []sfincs.River) *sparse.DenseArray {
	da := sparse.ZerosDense(gd.Nmax, gd.Mmax)
	for i := range da.Elements {
		da.Elements[i] = math.NaN()
	}
	for _, r := range rivers {
		half := r.Width / 2
		b := r.Line.Bounds()
		for n := 0; n < gd.Nmax; n++ {
			for m := 0; m < gd.Mmax; m++ {
				p := gd.CellCenter(n, m)
				if p.X < b.Min.X-half || p.X > b.Max.X+half || p.Y < b.Min.Y-half || p.Y > b.Max.Y+half {
					continue
				}
				if sfincs.DistanceToLine(p, r.Line) <= half {
					da.Set(r.Manning, n, m)
				}
			}
		}
	}
	return da
}

func attrFloat(f hydrofab.Feature, col string) (float64, error) {
	s, ok := f.Fields[col]
	if !ok || s == "" {
		return 0, fmt.Errorf("attribute column %q missing", col)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute column %q: %v", col, err)
	}
	return v, nil
}

func centerline(g geom.Geom) (geom.LineString, error) {
	switch gg := g.(type) {
	case geom.LineString:
		return gg, nil
	case geom.MultiLineString:
		if len(gg) == 1 {
			return gg[0], nil
		}
		var o geom.LineString
		for _, ls := range gg {
			o = append(o, ls...)
		}
		return o, nil
	}
	return nil, fmt.Errorf("geometry is not a line (%T)", g)
}
