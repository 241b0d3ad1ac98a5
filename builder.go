package coastal

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/maseology/mmio"
	"github.com/rs/zerolog"

	"github.com/taddyb/coastal-tools/forcing"
	"github.com/taddyb/coastal-tools/hydrofab"
	"github.com/taddyb/coastal-tools/sfincs"
)

// BuildCoastal assembles a complete SFINCS model input set from a
// keyword control file and writes it under the configured root.
// Recognized keywords:
//
//	root                         output root directory
//	catalog                      data-catalog yaml files
//	x0 y0 dx dy nmax mmax rotation epsg   grid definition
//	dem                          elevation sources, "name[,zmin[,zmax]]"
//	divides nexus flowpaths attrs          hydrofabric shapefiles
//	terminal                     terminal nexus id
//	catchment                    terminal catchment id
//	tstart tstop                 simulation window (RFC 3339)
//	waterlevel                   boundary forcing NetCDF
//	points                       boundary points csv (ref_id,Lon,Lat)
//	met                          catalog source for precipitation
//	crosssections                cross-section points csv
//	csepsg                       cross-section EPSG (optional)
func BuildCoastal(controlFP string, lg zerolog.Logger) error {
	ins := mmio.NewInstruct(controlFP)
	one := func(k string) (string, error) {
		v, ok := ins.Param[k]
		if !ok || len(v) == 0 {
			return "", fmt.Errorf("coastal.BuildCoastal: control file lacks keyword %q", k)
		}
		return v[0], nil
	}
	f64 := func(k string) (float64, error) {
		s, err := one(k)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("coastal.BuildCoastal: keyword %q: %v", k, err)
		}
		return v, nil
	}
	i64 := func(k string) (int, error) {
		s, err := one(k)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("coastal.BuildCoastal: keyword %q: %v", k, err)
		}
		return v, nil
	}

	root, err := one("root")
	if err != nil {
		return err
	}
	var gd sfincs.GridDef
	if gd.X0, err = f64("x0"); err != nil {
		return err
	}
	if gd.Y0, err = f64("y0"); err != nil {
		return err
	}
	if gd.Dx, err = f64("dx"); err != nil {
		return err
	}
	if gd.Dy, err = f64("dy"); err != nil {
		return err
	}
	if gd.Nmax, err = i64("nmax"); err != nil {
		return err
	}
	if gd.Mmax, err = i64("mmax"); err != nil {
		return err
	}
	if gd.Rotation, err = f64("rotation"); err != nil {
		return err
	}
	if gd.EPSG, err = i64("epsg"); err != nil {
		return err
	}
	depths, err := parseDepthSources(ins.Param["dem"])
	if err != nil {
		return err
	}

	lg.Info().Str("root", root).Msg("initializing model")
	sf, err := InitializeModel(root, ins.Param["catalog"], gd, depths)
	if err != nil {
		return err
	}

	divFP, err := one("divides")
	if err != nil {
		return err
	}
	nexFP, err := one("nexus")
	if err != nil {
		return err
	}
	terminal, err := one("terminal")
	if err != nil {
		return err
	}
	divides, err := hydrofab.ReadShapefile(divFP)
	if err != nil {
		return err
	}
	nexus, err := hydrofab.ReadShapefile(nexFP)
	if err != nil {
		return err
	}
	lg.Info().Str("terminal", terminal).Msg("adding hydrofabric outflow")
	if err := AddHydrofabricOutflow(sf, divides, nexus, terminal); err != nil {
		return err
	}

	fpFP, err := one("flowpaths")
	if err != nil {
		return err
	}
	flowpaths, err := hydrofab.ReadShapefile(fpFP)
	if err != nil {
		return err
	}
	lg.Info().Int("rivers", flowpaths.Len()).Msg("adding river inflow")
	if err := sf.SetupRiverInflow(flowpaths, true); err != nil {
		return err
	}

	attrFP, err := one("attrs")
	if err != nil {
		return err
	}
	attrs, err := hydrofab.ReadShapefile(attrFP, attrTopWidth, attrManning, attrDepth)
	if err != nil {
		return err
	}
	lg.Info().Msg("generating subgrid")
	if err := SetupSubgrid(sf, depths, attrs); err != nil {
		return err
	}

	startS, err := one("tstart")
	if err != nil {
		return err
	}
	stopS, err := one("tstop")
	if err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, startS)
	if err != nil {
		return fmt.Errorf("coastal.BuildCoastal: tstart: %v", err)
	}
	stop, err := time.Parse(time.RFC3339, stopS)
	if err != nil {
		return fmt.Errorf("coastal.BuildCoastal: tstop: %v", err)
	}
	wlFP, err := one("waterlevel")
	if err != nil {
		return err
	}
	wl, err := forcing.ReadWaterLevelNC(wlFP)
	if err != nil {
		return err
	}
	ptsFP, err := one("points")
	if err != nil {
		return err
	}
	points, err := readBoundaryPoints(ptsFP)
	if err != nil {
		return err
	}
	lg.Info().Int("points", len(points)).Time("start", start).Time("stop", stop).Msg("attaching water-level boundaries")
	if err := SetupWaterLevelBoundaries(sf, start, stop, points, wl); err != nil {
		return err
	}

	if met, err := one("met"); err == nil {
		lg.Info().Str("source", met).Msg("attaching meteorological forcing")
		if err := SetupMeteorologicalForcings(sf, met); err != nil {
			return err
		}
	}

	if csFP, err := one("crosssections"); err == nil {
		catchment, err := one("catchment")
		if err != nil {
			return err
		}
		epsg := 0
		if v, err := i64("csepsg"); err == nil {
			epsg = v
		}
		pts, err := readCrossSectionPoints(csFP)
		if err != nil {
			return err
		}
		lg.Info().Str("catchment", catchment).Msg("registering observation cross-sections")
		if err := SetupObservationalCrossSections(sf, pts, catchment, epsg); err != nil {
			return err
		}
	}

	lg.Info().Msg("writing model inputs")
	return sf.Write()
}

// parseDepthSources expands "name[,zmin[,zmax]]" descriptors into the
// ordered depth definition.
func parseDepthSources(descs []string) ([]sfincs.DepSource, error) {
	if len(descs) == 0 {
		return nil, fmt.Errorf("coastal.BuildCoastal: control file lacks keyword %q", "dem")
	}
	o := make([]sfincs.DepSource, len(descs))
	for i, d := range descs {
		parts := strings.Split(d, ",")
		o[i] = sfincs.DepSource{Elevtn: parts[0]}
		if len(parts) > 1 && parts[1] != "" {
			v, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return nil, fmt.Errorf("coastal.BuildCoastal: dem %q: %v", d, err)
			}
			o[i].ZMin = &v
		}
		if len(parts) > 2 && parts[2] != "" {
			v, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("coastal.BuildCoastal: dem %q: %v", d, err)
			}
			o[i].ZMax = &v
		}
	}
	return o, nil
}

// readBoundaryPoints loads a ref_id,Lon,Lat table, skipping a header
// row when present.
func readBoundaryPoints(fp string) ([]BoundaryPoint, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("coastal: reading boundary points: %w", err)
	}
	defer f.Close()
	var o []BoundaryPoint
	first := true
	for rec := range mmio.LoadCSV(io.Reader(f), 0) {
		if len(rec) < 3 {
			continue
		}
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if errLon != nil || errLat != nil {
			if first {
				first = false
				continue // header
			}
			return nil, fmt.Errorf("coastal: boundary points %s: malformed row %v", fp, rec)
		}
		first = false
		o = append(o, BoundaryPoint{Lon: lon, Lat: lat})
	}
	return o, nil
}

// readCrossSectionPoints loads an id,cs_id,relative_distance,X,Y,Z,
// cs_lengthm table, skipping a header row when present.
func readCrossSectionPoints(fp string) ([]CrossSectionPoint, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("coastal: reading cross sections: %w", err)
	}
	defer f.Close()
	var o []CrossSectionPoint
	first := true
	for rec := range mmio.LoadCSV(io.Reader(f), 0) {
		if len(rec) < 7 {
			continue
		}
		vals := make([]float64, 5)
		bad := false
		for i, k := range []int{2, 3, 4, 5, 6} {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[k]), 64)
			if err != nil {
				bad = true
				break
			}
			vals[i] = v
		}
		if bad {
			if first {
				first = false
				continue // header
			}
			return nil, fmt.Errorf("coastal: cross sections %s: malformed row %v", fp, rec)
		}
		first = false
		o = append(o, CrossSectionPoint{
			ID:               strings.TrimSpace(rec[0]),
			CSID:             strings.TrimSpace(rec[1]),
			RelativeDistance: vals[0],
			X:                vals[1],
			Y:                vals[2],
			Z:                vals[3],
			LengthM:          vals[4],
		})
	}
	return o, nil
}
