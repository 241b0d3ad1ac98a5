package catalog

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Raster is a regular, axis-aligned raster read from a catalog source.
// (X0,Y0) is the centre of the south-west cell; Data is sized [Ny][Nx]
// with row 0 at the south edge.
type Raster struct {
	Name           string
	X0, Y0, Dx, Dy float64
	Nx, Ny         int
	EPSG           int
	Nodata         float64
	Data           *sparse.DenseArray
}

// Bounds returns the outer cell-edge extent.
func (r *Raster) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: r.X0 - r.Dx/2, Y: r.Y0 - r.Dy/2},
		Max: geom.Point{
			X: r.X0 + (float64(r.Nx)-.5)*r.Dx,
			Y: r.Y0 + (float64(r.Ny)-.5)*r.Dy,
		},
	}
}

// Value samples the nearest cell to (x,y). The second return is false
// outside the extent or on a nodata cell.
func (r *Raster) Value(x, y float64) (float64, bool) {
	i := int(math.Round((x - r.X0) / r.Dx))
	j := int(math.Round((y - r.Y0) / r.Dy))
	if i < 0 || i >= r.Nx || j < 0 || j >= r.Ny {
		return 0, false
	}
	v := r.Data.Get(j, i)
	if math.IsNaN(v) || v == r.Nodata {
		return 0, false
	}
	return v, true
}
