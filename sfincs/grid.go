package sfincs

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// GridDef locates the computational mesh: a regular grid of Nmax rows
// by Mmax columns of Dx-by-Dy cells anchored at (X0,Y0) and rotated
// Rotation degrees counter-clockwise about the anchor, in the EPSG
// spatial reference.
type GridDef struct {
	X0, Y0   float64
	Dx, Dy   float64
	Nmax     int
	Mmax     int
	Rotation float64
	EPSG     int
}

// Validate checks the definition for degenerate parameters.
func (g *GridDef) Validate() error {
	if g.Dx <= 0 || g.Dy <= 0 {
		return fmt.Errorf("sfincs: grid cell size must be positive, got dx=%g dy=%g", g.Dx, g.Dy)
	}
	if g.Nmax <= 0 || g.Mmax <= 0 {
		return fmt.Errorf("sfincs: grid dimensions must be positive, got nmax=%d mmax=%d", g.Nmax, g.Mmax)
	}
	if g.EPSG <= 0 {
		return fmt.Errorf("sfincs: grid requires a spatial reference id")
	}
	return nil
}

// Ncells returns the cell count.
func (g *GridDef) Ncells() int { return g.Nmax * g.Mmax }

func (g *GridDef) sincos() (s, c float64) {
	return math.Sincos(g.Rotation * math.Pi / 180)
}

// CellCenter returns the projected coordinate of the centre of cell
// (n,m), n being the row offset from the anchored edge.
func (g *GridDef) CellCenter(n, m int) geom.Point {
	u := (float64(m) + .5) * g.Dx
	v := (float64(n) + .5) * g.Dy
	s, c := g.sincos()
	return geom.Point{X: g.X0 + u*c - v*s, Y: g.Y0 + u*s + v*c}
}

// CellIndex returns the (row, column) of the cell containing p, or
// false when p falls outside the mesh.
func (g *GridDef) CellIndex(p geom.Point) (n, m int, ok bool) {
	s, c := g.sincos()
	u := (p.X-g.X0)*c + (p.Y-g.Y0)*s
	v := -(p.X-g.X0)*s + (p.Y-g.Y0)*c
	m, n = int(math.Floor(u/g.Dx)), int(math.Floor(v/g.Dy))
	if m < 0 || m >= g.Mmax || n < 0 || n >= g.Nmax {
		return 0, 0, false
	}
	return n, m, true
}

// Bounds returns the axis-aligned extent of the rotated mesh.
func (g *GridDef) Bounds() *geom.Bounds {
	w, h := float64(g.Mmax)*g.Dx, float64(g.Nmax)*g.Dy
	s, c := g.sincos()
	xs := []float64{g.X0, g.X0 + w*c, g.X0 - h*s, g.X0 + w*c - h*s}
	ys := []float64{g.Y0, g.Y0 + w*s, g.Y0 + h*c, g.Y0 + w*s + h*c}
	b := &geom.Bounds{Min: geom.Point{X: xs[0], Y: ys[0]}, Max: geom.Point{X: xs[0], Y: ys[0]}}
	for i := 1; i < 4; i++ {
		b.Min.X = math.Min(b.Min.X, xs[i])
		b.Min.Y = math.Min(b.Min.Y, ys[i])
		b.Max.X = math.Max(b.Max.X, xs[i])
		b.Max.Y = math.Max(b.Max.Y, ys[i])
	}
	return b
}

// SetupGrid establishes the computational mesh and resets the depth
// and mask rasters to unset.
func (m *Model) SetupGrid(g GridDef) error {
	if err := g.Validate(); err != nil {
		return err
	}
	m.gd = g
	m.gridSet = true
	m.dep = sparse.ZerosDense(g.Nmax, g.Mmax)
	for i := range m.dep.Elements {
		m.dep.Elements[i] = math.NaN()
	}
	m.msk = sparse.ZerosDense(g.Nmax, g.Mmax)
	return nil
}
