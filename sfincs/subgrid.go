package sfincs

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"github.com/gosuri/uiprogress"
	"github.com/maseology/mmio"
)

// River is a channel centerline with its derived hydraulic parameters:
// top width [m], bankfull depth [m] and Manning roughness [s/m^(1/3)].
type River struct {
	ID      string
	Line    geom.LineString
	Width   float64
	Depth   float64
	Manning float64
}

// SubgridTables holds the sub-cell-resolution elevation and roughness
// representation: Npx subgrid pixels per grid cell in each direction.
type SubgridTables struct {
	Npx          int
	Dep, Manning *sparse.DenseArray
}

// SetupSubgrid builds the subgrid tables from the ordered elevation
// sources and the cell-level Manning raster, carving each river's
// channel into the subgrid elevation within its corridor (centerline
// buffered by half the top width). The subgrid elevation artifact is
// written under the session root when writeDep is set.
func (m *Model) SetupSubgrid(datasetsDep []DepSource, manning *sparse.DenseArray, rivers []River, nrSubgridPixels int, writeDep bool) error {
	if !m.gridSet {
		return fmt.Errorf("sfincs.SetupSubgrid: grid not set")
	}
	if nrSubgridPixels < 1 {
		return fmt.Errorf("sfincs.SetupSubgrid: oversampling factor must be >= 1, got %d", nrSubgridPixels)
	}
	if len(datasetsDep) == 0 {
		return fmt.Errorf("sfincs.SetupSubgrid: no elevation sources supplied")
	}
	if manning != nil && (len(manning.Shape) != 2 || manning.Shape[0] != m.gd.Nmax || manning.Shape[1] != m.gd.Mmax) {
		return fmt.Errorf("sfincs.SetupSubgrid: manning raster shape does not match the grid")
	}
	for _, r := range rivers {
		if len(r.Line) < 2 {
			return fmt.Errorf("sfincs.SetupSubgrid: river %s has a degenerate centerline", r.ID)
		}
		if r.Width <= 0 {
			return fmt.Errorf("sfincs.SetupSubgrid: river %s has non-positive width %g", r.ID, r.Width)
		}
	}

	npx := nrSubgridPixels
	sn, sm := m.gd.Nmax*npx, m.gd.Mmax*npx
	dep := sparse.ZerosDense(sn, sm)
	rgh := sparse.ZerosDense(sn, sm)
	for i := range dep.Elements {
		dep.Elements[i] = math.NaN()
		rgh.Elements[i] = math.NaN()
	}

	// merged elevation at subgrid resolution, priority order
	uiprogress.Start()
	bar := uiprogress.AddBar(len(datasetsDep) * sn).AppendCompleted().PrependElapsed()
	for _, src := range datasetsDep {
		r, err := m.cat.GetRasterDataset(src.Elevtn, m.gd.Bounds(), m.gd.EPSG, 0, "")
		if err != nil {
			uiprogress.Stop()
			return fmt.Errorf("sfincs.SetupSubgrid %s: %w", src.Elevtn, err)
		}
		for jn := 0; jn < sn; jn++ {
			bar.Incr()
			for jm := 0; jm < sm; jm++ {
				if !math.IsNaN(dep.Get(jn, jm)) {
					continue
				}
				p := m.subCellCenter(npx, jn, jm)
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
				dep.Set(v, jn, jm)
			}
		}
	}
	uiprogress.Stop()

	// cell-level roughness onto the subgrid
	if manning != nil {
		for jn := 0; jn < sn; jn++ {
			for jm := 0; jm < sm; jm++ {
				v := manning.Get(jn/npx, jm/npx)
				if !math.IsNaN(v) {
					rgh.Set(v, jn, jm)
				}
			}
		}
	}

	// carve river channels into the corridor
	for _, r := range rivers {
		half := r.Width / 2
		b := r.Line.Bounds()
		for jn := 0; jn < sn; jn++ {
			for jm := 0; jm < sm; jm++ {
				p := m.subCellCenter(npx, jn, jm)
				if p.X < b.Min.X-half || p.X > b.Max.X+half || p.Y < b.Min.Y-half || p.Y > b.Max.Y+half {
					continue
				}
				if DistanceToLine(p, r.Line) > half {
					continue
				}
				if v := dep.Get(jn, jm); !math.IsNaN(v) {
					dep.Set(v-r.Depth, jn, jm)
				}
				if r.Manning > 0 {
					rgh.Set(r.Manning, jn, jm)
				}
			}
		}
	}

	m.sbg = &SubgridTables{Npx: npx, Dep: dep, Manning: rgh}

	if writeDep {
		dir := filepath.Join(m.root, "subgrid")
		mmio.MakeDir(dir)
		if err := writeFloats32(filepath.Join(dir, "dep_subgrid.bil"), dep.Elements); err != nil {
			return fmt.Errorf("sfincs.SetupSubgrid: %v", err)
		}
		if err := m.writeSubgridHdr(filepath.Join(dir, "dep_subgrid.hdr"), npx); err != nil {
			return fmt.Errorf("sfincs.SetupSubgrid: %v", err)
		}
	}
	return nil
}

// subCellCenter returns the projected centre of subgrid pixel (jn,jm)
// at npx pixels per cell.
func (m *Model) subCellCenter(npx, jn, jm int) geom.Point {
	du, dv := m.gd.Dx/float64(npx), m.gd.Dy/float64(npx)
	u := (float64(jm) + .5) * du
	v := (float64(jn) + .5) * dv
	s, c := m.gd.sincos()
	return geom.Point{X: m.gd.X0 + u*c - v*s, Y: m.gd.Y0 + u*s + v*c}
}

func (m *Model) writeSubgridHdr(fp string, npx int) error {
	tw, err := mmio.NewTXTwriter(fp)
	if err != nil {
		return err
	}
	defer tw.Close()
	tw.WriteLine(fmt.Sprintf("nrows %d", m.gd.Nmax*npx))
	tw.WriteLine(fmt.Sprintf("ncols %d", m.gd.Mmax*npx))
	tw.WriteLine(fmt.Sprintf("xdim %g", m.gd.Dx/float64(npx)))
	tw.WriteLine(fmt.Sprintf("ydim %g", m.gd.Dy/float64(npx)))
	tw.WriteLine(fmt.Sprintf("ulxmap %g", m.gd.X0))
	tw.WriteLine(fmt.Sprintf("ulymap %g", m.gd.Y0))
	tw.WriteLine("nbits 32")
	tw.WriteLine("pixeltype float")
	tw.WriteLine("byteorder I")
	return nil
}

// DistanceToLine returns the distance from p to the nearest segment of
// the polyline.
func DistanceToLine(p geom.Point, ls geom.LineString) float64 {
	d := math.Inf(1)
	for i := 1; i < len(ls); i++ {
		d = math.Min(d, distToSegment(p, ls[i-1], ls[i]))
	}
	return d
}

func distToSegment(p, a, b geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
