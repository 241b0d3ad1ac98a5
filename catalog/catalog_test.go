package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeGridNC writes a nx by ny raster with ascending cell-centre
// coordinates starting at (x0,y0) and cell value j*100+i.
func writeGridNC(t *testing.T, fp, variable string, x0, y0, dx, dy float64, nx, ny int) {
	t.Helper()
	h := cdf.NewHeader([]string{"y", "x"}, []int{ny, nx})
	h.AddVariable("x", []string{"x"}, []float64{0})
	h.AddVariable("y", []string{"y"}, []float64{0})
	h.AddVariable(variable, []string{"y", "x"}, []float64{0})
	h.Define()
	for _, err := range h.Check() {
		require.NoError(t, err)
	}
	ff, err := os.Create(fp)
	require.NoError(t, err)
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	require.NoError(t, err)

	xs := make([]float64, nx)
	for i := range xs {
		xs[i] = x0 + float64(i)*dx
	}
	ys := make([]float64, ny)
	for j := range ys {
		ys[j] = y0 + float64(j)*dy
	}
	buf := make([]float64, ny*nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			buf[j*nx+i] = float64(j*100 + i)
		}
	}
	_, err = f.Writer("x", []int{0}, []int{nx}).Write(xs)
	require.NoError(t, err)
	_, err = f.Writer("y", []int{0}, []int{ny}).Write(ys)
	require.NoError(t, err)
	_, err = f.Writer(variable, []int{0, 0}, []int{ny, nx}).Write(buf)
	require.NoError(t, err)
}

func writeCatalogYML(t *testing.T, dir, body string) string {
	t.Helper()
	fp := filepath.Join(dir, "catalog.yml")
	require.NoError(t, os.WriteFile(fp, []byte(body), 0644))
	return fp
}

func TestLoadResolve(t *testing.T) {
	dir := t.TempDir()
	fp := writeCatalogYML(t, dir, `
dem:
  path: rasters/dem.nc
  type: raster
  variable: elevation
  epsg: 3857
  nodata: -9999
`)

	dc, err := Load(fp)
	require.NoError(t, err)
	assert.True(t, dc.Has("dem"))
	assert.False(t, dc.Has("bathy"))

	s, err := dc.Resolve("dem")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rasters", "dem.nc"), s.Path)
	assert.Equal(t, "elevation", s.Variable)
	assert.Equal(t, 3857, s.EPSG)
	assert.Equal(t, -9999., s.Nodata)

	_, err = dc.Resolve("bathy")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMergeOverride(t *testing.T) {
	d1, d2 := t.TempDir(), t.TempDir()
	fp1 := writeCatalogYML(t, d1, "dem:\n  path: a.nc\n  epsg: 4326\n")
	fp2 := writeCatalogYML(t, d2, "dem:\n  path: b.nc\n  epsg: 3857\n")

	dc, err := Load(fp1, fp2)
	require.NoError(t, err)
	s, err := dc.Resolve("dem")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(d2, "b.nc"), s.Path)
	assert.Equal(t, 3857, s.EPSG)
}

func TestGetRasterDatasetFullExtent(t *testing.T) {
	dir := t.TempDir()
	writeGridNC(t, filepath.Join(dir, "dem.nc"), "elevation", 5, 5, 10, 10, 10, 8)
	fp := writeCatalogYML(t, dir, `
dem:
  path: dem.nc
  type: raster
  variable: elevation
  epsg: 3857
  nodata: -9999
`)
	dc, err := Load(fp)
	require.NoError(t, err)

	r, err := dc.GetRasterDataset("dem", nil, 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 10, r.Nx)
	assert.Equal(t, 8, r.Ny)
	assert.Equal(t, 5., r.X0)
	assert.Equal(t, 10., r.Dx)
	assert.Equal(t, 3857, r.EPSG)

	v, ok := r.Value(35.1, 24.9) // nearest cell (i=3, j=2)
	require.True(t, ok)
	assert.Equal(t, 203., v)

	_, ok = r.Value(-50, 5)
	assert.False(t, ok)
}

func TestGetRasterDatasetClip(t *testing.T) {
	dir := t.TempDir()
	writeGridNC(t, filepath.Join(dir, "dem.nc"), "elevation", 5, 5, 10, 10, 10, 8)
	fp := writeCatalogYML(t, dir, "dem:\n  path: dem.nc\n  variable: elevation\n  epsg: 3857\n  nodata: -9999\n")
	dc, err := Load(fp)
	require.NoError(t, err)

	bbox := &geom.Bounds{Min: geom.Point{X: 22, Y: 18}, Max: geom.Point{X: 48, Y: 42}}
	r, err := dc.GetRasterDataset("dem", bbox, 3857, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Nx)
	assert.Equal(t, 4, r.Ny)
	assert.Equal(t, 15., r.X0)
	assert.Equal(t, 15., r.Y0)
	assert.Equal(t, 101., r.Data.Get(0, 0))

	// buffered window clamps at the source extent
	r, err = dc.GetRasterDataset("dem", bbox, 3857, 100, "")
	require.NoError(t, err)
	assert.Equal(t, 10, r.Nx)
	assert.Equal(t, 8, r.Ny)
}

func TestGetRasterDatasetDescendingCoord(t *testing.T) {
	dir := t.TempDir()
	// north-up export: y descends from 75
	writeGridNC(t, filepath.Join(dir, "dem.nc"), "elevation", 5, 75, 10, -10, 10, 8)
	fp := writeCatalogYML(t, dir, "dem:\n  path: dem.nc\n  variable: elevation\n  epsg: 3857\n")
	dc, err := Load(fp)
	require.NoError(t, err)

	_, err = dc.GetRasterDataset("dem", nil, 0, 0, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ascend")
}

func TestGetRasterDatasetNoIntersection(t *testing.T) {
	dir := t.TempDir()
	writeGridNC(t, filepath.Join(dir, "dem.nc"), "elevation", 5, 5, 10, 10, 10, 8)
	fp := writeCatalogYML(t, dir, "dem:\n  path: dem.nc\n  variable: elevation\n  epsg: 3857\n")
	dc, err := Load(fp)
	require.NoError(t, err)

	bbox := &geom.Bounds{Min: geom.Point{X: 2000, Y: 2000}, Max: geom.Point{X: 3000, Y: 3000}}
	_, err = dc.GetRasterDataset("dem", bbox, 3857, 0, "")
	assert.Error(t, err)
}

func TestGetRasterDatasetUnknownSource(t *testing.T) {
	dir := t.TempDir()
	fp := writeCatalogYML(t, dir, "dem:\n  path: dem.nc\n")
	dc, err := Load(fp)
	require.NoError(t, err)
	_, err = dc.GetRasterDataset("bathy", nil, 0, 0, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRasterDatasetMissingVariable(t *testing.T) {
	dir := t.TempDir()
	writeGridNC(t, filepath.Join(dir, "dem.nc"), "elevation", 5, 5, 10, 10, 4, 4)
	fp := writeCatalogYML(t, dir, "dem:\n  path: dem.nc\n  variable: elevation\n  epsg: 3857\n")
	dc, err := Load(fp)
	require.NoError(t, err)
	_, err = dc.GetRasterDataset("dem", nil, 0, 0, "slope")
	assert.Error(t, err)
}

func TestRasterBoundsAndNodata(t *testing.T) {
	dir := t.TempDir()
	writeGridNC(t, filepath.Join(dir, "dem.nc"), "elevation", 5, 5, 10, 10, 10, 8)
	fp := writeCatalogYML(t, dir, "dem:\n  path: dem.nc\n  variable: elevation\n  epsg: 3857\n  nodata: 0\n")
	dc, err := Load(fp)
	require.NoError(t, err)
	r, err := dc.GetRasterDataset("dem", nil, 0, 0, "")
	require.NoError(t, err)

	b := r.Bounds()
	assert.Equal(t, 0., b.Min.X)
	assert.Equal(t, 0., b.Min.Y)
	assert.Equal(t, 100., b.Max.X)
	assert.Equal(t, 80., b.Max.Y)

	// cell (0,0) holds the nodata value 0
	_, ok := r.Value(5, 5)
	assert.False(t, ok)
}
