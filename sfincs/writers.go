package sfincs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ctessum/cdf"
	"github.com/maseology/mmio"

	"github.com/taddyb/coastal-tools/catalog"
	"github.com/taddyb/coastal-tools/hydrofab"
)

const depNodata = -9999.

// Write persists the assembled model inputs under the session root:
// sfincs.inp, the dep/msk rasters, boundary location and time-series
// tables, river source points, observation cross-sections and any
// raster forcing layers.
func (m *Model) Write() error {
	if !m.gridSet {
		return fmt.Errorf("sfincs.Write: grid not set")
	}
	if err := m.writeInp(); err != nil {
		return err
	}

	dep := make([]float64, len(m.dep.Elements))
	for i, v := range m.dep.Elements {
		if math.IsNaN(v) {
			dep[i] = depNodata
		} else {
			dep[i] = v
		}
	}
	if err := writeFloats32(filepath.Join(m.root, "sfincs.dep"), dep); err != nil {
		return fmt.Errorf("sfincs.Write: %v", err)
	}
	msk := make([]int32, len(m.msk.Elements))
	for i, v := range m.msk.Elements {
		msk[i] = int32(v)
	}
	if err := writeInts32(filepath.Join(m.root, "sfincs.msk"), msk); err != nil {
		return fmt.Errorf("sfincs.Write: %v", err)
	}

	if m.bndLoc != nil {
		if err := m.writeBnd(); err != nil {
			return err
		}
	}
	if src, ok := m.geoms["rivers_src"]; ok && src.Len() > 0 {
		if err := m.writeSrc(src); err != nil {
			return err
		}
	}
	if m.obs != nil && m.obs.Len() > 0 {
		if err := m.writeCrs(); err != nil {
			return err
		}
	}
	for name, r := range m.grds {
		if err := writeRasterNC(filepath.Join(m.root, name+".nc"), name, r); err != nil {
			return fmt.Errorf("sfincs.Write %s: %v", name, err)
		}
	}
	return nil
}

func (m *Model) writeInp() error {
	tw, err := mmio.NewTXTwriter(filepath.Join(m.root, "sfincs.inp"))
	if err != nil {
		return fmt.Errorf("sfincs.Write: %v", err)
	}
	defer tw.Close()
	tw.WriteLine(fmt.Sprintf("mmax = %d", m.gd.Mmax))
	tw.WriteLine(fmt.Sprintf("nmax = %d", m.gd.Nmax))
	tw.WriteLine(fmt.Sprintf("dx = %g", m.gd.Dx))
	tw.WriteLine(fmt.Sprintf("dy = %g", m.gd.Dy))
	tw.WriteLine(fmt.Sprintf("x0 = %g", m.gd.X0))
	tw.WriteLine(fmt.Sprintf("y0 = %g", m.gd.Y0))
	tw.WriteLine(fmt.Sprintf("rotation = %g", m.gd.Rotation))
	tw.WriteLine(fmt.Sprintf("epsg = %d", m.gd.EPSG))
	keys := make([]string, 0, len(m.cfg))
	for k := range m.cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		tw.WriteLine(fmt.Sprintf("%s = %s", k, m.cfg[k]))
	}
	tw.WriteLine("depfile = sfincs.dep")
	tw.WriteLine("mskfile = sfincs.msk")
	if m.bndLoc != nil {
		tw.WriteLine("bndfile = sfincs.bnd")
		tw.WriteLine("bzsfile = sfincs.bzs")
	}
	if src, ok := m.geoms["rivers_src"]; ok && src.Len() > 0 {
		tw.WriteLine("srcfile = sfincs.src")
	}
	if m.obs != nil && m.obs.Len() > 0 {
		tw.WriteLine("crsfile = sfincs.crs")
	}
	for name := range m.grds {
		if name == "precip" {
			tw.WriteLine("netamprfile = precip.nc")
		}
	}
	return nil
}

func (m *Model) writeBnd() error {
	tw, err := mmio.NewTXTwriter(filepath.Join(m.root, "sfincs.bnd"))
	if err != nil {
		return fmt.Errorf("sfincs.Write: %v", err)
	}
	defer tw.Close()
	for _, f := range m.bndLoc.Features {
		p := lineVertices(f.Geom)
		if len(p) == 0 {
			continue
		}
		tw.WriteLine(fmt.Sprintf("%.3f %.3f", p[0].X, p[0].Y))
	}

	tref := m.bndT[0]
	if s, ok := m.cfg["tref"]; ok {
		if t, err := time.Parse(TimeLayout, s); err == nil {
			tref = t
		}
	}
	tz, err := mmio.NewTXTwriter(filepath.Join(m.root, "sfincs.bzs"))
	if err != nil {
		return fmt.Errorf("sfincs.Write: %v", err)
	}
	defer tz.Close()
	for j, t := range m.bndT {
		line := fmt.Sprintf("%.1f", t.Sub(tref).Seconds())
		for i := 0; i < m.bndVal.Shape[1]; i++ {
			line += fmt.Sprintf(" %.4f", m.bndVal.Get(j, i))
		}
		tz.WriteLine(line)
	}
	return nil
}

func (m *Model) writeSrc(src *hydrofab.Collection) error {
	tw, err := mmio.NewTXTwriter(filepath.Join(m.root, "sfincs.src"))
	if err != nil {
		return fmt.Errorf("sfincs.Write: %v", err)
	}
	defer tw.Close()
	for _, f := range src.Features {
		pts := lineVertices(f.Geom)
		if len(pts) == 0 {
			continue
		}
		tw.WriteLine(fmt.Sprintf("%.3f %.3f", pts[0].X, pts[0].Y))
	}
	return nil
}

func (m *Model) writeCrs() error {
	tw, err := mmio.NewTXTwriter(filepath.Join(m.root, "sfincs.crs"))
	if err != nil {
		return fmt.Errorf("sfincs.Write: %v", err)
	}
	defer tw.Close()
	for _, f := range m.obs.Features {
		name := f.ID
		if n, ok := f.Fields["name"]; ok && n != "" {
			name = n
		}
		pts := lineVertices(f.Geom)
		tw.WriteLine(fmt.Sprintf("NAME %s", name))
		for _, p := range pts {
			tw.WriteLine(fmt.Sprintf("%.3f %.3f", p.X, p.Y))
		}
	}
	return nil
}

// writeRasterNC persists a raster forcing layer as a NetCDF grid with
// x/y cell-centre coordinates.
func writeRasterNC(fp, name string, r *catalog.Raster) error {
	h := cdf.NewHeader([]string{"y", "x"}, []int{r.Ny, r.Nx})
	h.AddVariable("x", []string{"x"}, []float64{0})
	h.AddVariable("y", []string{"y"}, []float64{0})
	h.AddVariable(name, []string{"y", "x"}, []float64{0})
	h.AddAttribute("", "epsg", []int32{int32(r.EPSG)})
	h.AddAttribute(name, "nodata", []float64{r.Nodata})
	h.Define()
	for _, err := range h.Check() {
		if err != nil {
			return err
		}
	}

	ff, err := os.Create(fp)
	if err != nil {
		return err
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		return err
	}

	xs := make([]float64, r.Nx)
	for i := range xs {
		xs[i] = r.X0 + float64(i)*r.Dx
	}
	ys := make([]float64, r.Ny)
	for j := range ys {
		ys[j] = r.Y0 + float64(j)*r.Dy
	}
	if _, err := f.Writer("x", []int{0}, []int{r.Nx}).Write(xs); err != nil {
		return err
	}
	if _, err := f.Writer("y", []int{0}, []int{r.Ny}).Write(ys); err != nil {
		return err
	}
	if _, err := f.Writer(name, []int{0, 0}, []int{r.Ny, r.Nx}).Write(r.Data.Elements); err != nil {
		return err
	}
	return nil
}

func writeFloats32(fp string, f []float64) error {
	f32 := make([]float32, len(f))
	for i, v := range f {
		f32[i] = float32(v)
	}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, f32); err != nil {
		return fmt.Errorf("writeFloats32 failed: %v", err)
	}
	if err := os.WriteFile(fp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writeFloats32 failed: %v", err)
	}
	return nil
}

func writeInts32(fp string, i []int32) error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, i); err != nil {
		return fmt.Errorf("writeInts32 failed: %v", err)
	}
	if err := os.WriteFile(fp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writeInts32 failed: %v", err)
	}
	return nil
}
