package catalog

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"

	"github.com/taddyb/coastal-tools/hydrofab"
)

// GetRasterDataset reads the named source, clipped to bbox (given in
// the bboxEPSG spatial reference) padded by bufferPx source pixels.
// A nil bbox reads the full extent. variable overrides the catalog's
// variable name when non-empty; an empty variable on both falls back
// to the source name itself.
//
// Source files are NetCDF rasters with ascending cell-centre
// coordinate variables x and y and a [y][x] data variable.
func (dc *DataCatalog) GetRasterDataset(name string, bbox *geom.Bounds, bboxEPSG, bufferPx int, variable string) (*Raster, error) {
	src, err := dc.Resolve(name)
	if err != nil {
		return nil, err
	}

	ff, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", name, err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %v", name, err)
	}

	v := variable
	if v == "" {
		v = src.Variable
	}
	if v == "" {
		v = name
	}
	if !hasVariable(f, v) {
		return nil, fmt.Errorf("catalog %s: variable %q not in %s", name, v, src.Path)
	}

	xs, err := readCoord(f, "x")
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %v", name, err)
	}
	ys, err := readCoord(f, "y")
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %v", name, err)
	}
	nx, ny := len(xs), len(ys)
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("catalog %s: degenerate %dx%d raster", name, nx, ny)
	}
	dx, dy := xs[1]-xs[0], ys[1]-ys[0]
	if dx <= 0 || dy <= 0 {
		return nil, fmt.Errorf("catalog %s: coordinates must ascend (dx=%g, dy=%g)", name, dx, dy)
	}

	dims := f.Header.Lengths(v)
	if len(dims) != 2 || dims[0] != ny || dims[1] != nx {
		return nil, fmt.Errorf("catalog %s: %q dims %v do not match coordinates %dx%d", name, v, dims, ny, nx)
	}
	buf := make([]float64, ny*nx)
	if _, err := f.Reader(v, []int{0, 0}, []int{ny, nx}).Read(buf); err != nil {
		return nil, fmt.Errorf("catalog %s: reading %q: %v", name, v, err)
	}

	// clip window in source pixel space
	i0, i1, j0, j1 := 0, nx-1, 0, ny-1
	if bbox != nil {
		bb, err := boundsToEPSG(bbox, bboxEPSG, src.EPSG)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %v", name, err)
		}
		i0 = int(math.Floor((bb.Min.X-xs[0])/dx)) - bufferPx
		i1 = int(math.Ceil((bb.Max.X-xs[0])/dx)) + bufferPx
		j0 = int(math.Floor((bb.Min.Y-ys[0])/dy)) - bufferPx
		j1 = int(math.Ceil((bb.Max.Y-ys[0])/dy)) + bufferPx
		if i1 < 0 || i0 > nx-1 || j1 < 0 || j0 > ny-1 {
			return nil, fmt.Errorf("catalog %s: bounding box does not intersect source extent", name)
		}
		i0, i1 = clampIdx(i0, nx), clampIdx(i1, nx)
		j0, j1 = clampIdx(j0, ny), clampIdx(j1, ny)
	}

	cnx, cny := i1-i0+1, j1-j0+1
	data := sparse.ZerosDense(cny, cnx)
	for j := 0; j < cny; j++ {
		for i := 0; i < cnx; i++ {
			data.Set(buf[(j+j0)*nx+i+i0], j, i)
		}
	}

	return &Raster{
		Name:   name,
		X0:     xs[i0],
		Y0:     ys[j0],
		Dx:     dx,
		Dy:     dy,
		Nx:     cnx,
		Ny:     cny,
		EPSG:   src.EPSG,
		Nodata: src.Nodata,
		Data:   data,
	}, nil
}

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

func hasVariable(f *cdf.File, v string) bool {
	for _, s := range f.Header.Variables() {
		if s == v {
			return true
		}
	}
	return false
}

func readCoord(f *cdf.File, v string) ([]float64, error) {
	if !hasVariable(f, v) {
		return nil, fmt.Errorf("coordinate %q not found", v)
	}
	dims := f.Header.Lengths(v)
	if len(dims) != 1 {
		return nil, fmt.Errorf("coordinate %q is not one-dimensional", v)
	}
	buf := make([]float64, dims[0])
	if _, err := f.Reader(v, []int{0}, []int{dims[0]}).Read(buf); err != nil {
		return nil, fmt.Errorf("reading coordinate %q: %v", v, err)
	}
	return buf, nil
}

// boundsToEPSG re-expresses b (in the from reference) in the to
// reference by transforming its corners and taking their extent.
func boundsToEPSG(b *geom.Bounds, from, to int) (*geom.Bounds, error) {
	if from == to || from == 0 || to == 0 {
		return b, nil
	}
	srcSR, err := hydrofab.SRFromEPSG(from)
	if err != nil {
		return nil, err
	}
	dstSR, err := hydrofab.SRFromEPSG(to)
	if err != nil {
		return nil, err
	}
	ct, err := srcSR.NewTransform(dstSR)
	if err != nil {
		return nil, err
	}
	corners := []geom.Point{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Min.X, Y: b.Max.Y},
		{X: b.Max.X, Y: b.Max.Y},
	}
	var o *geom.Bounds
	for _, p := range corners {
		gg, err := p.Transform(ct)
		if err != nil {
			return nil, err
		}
		q := gg.(geom.Point)
		if o == nil {
			o = &geom.Bounds{Min: q, Max: q}
			continue
		}
		o.Min.X = math.Min(o.Min.X, q.X)
		o.Min.Y = math.Min(o.Min.Y, q.Y)
		o.Max.X = math.Max(o.Max.X, q.X)
		o.Max.Y = math.Max(o.Max.Y, q.Y)
	}
	return o, nil
}
