package hydrofab

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/im7mortal/UTM"
)

// SRFromEPSG returns the spatial reference for the EPSG codes the
// coastal workflows use.
func SRFromEPSG(epsg int) (*proj.SR, error) {
	s, err := proj4FromEPSG(epsg)
	if err != nil {
		return nil, err
	}
	sr, err := proj.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("hydrofab: parsing EPSG:%d: %v", epsg, err)
	}
	return sr, nil
}

func proj4FromEPSG(epsg int) (string, error) {
	switch {
	case epsg == 4326:
		return "+proj=longlat +datum=WGS84 +no_defs", nil
	case epsg == 3857:
		return "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs", nil
	case epsg == 5070: // CONUS Albers
		return "+proj=aea +lat_0=23 +lon_0=-96 +lat_1=29.5 +lat_2=45.5 +x_0=0 +y_0=0 +datum=NAD83 +units=m +no_defs", nil
	case epsg >= 32601 && epsg <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", epsg-32600), nil
	case epsg >= 32701 && epsg <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", epsg-32700), nil
	}
	return "", fmt.Errorf("hydrofab: no spatial reference registered for EPSG:%d", epsg)
}

// ProjectPoint converts a geographic (EPSG:4326) coordinate into the
// projection identified by epsg. UTM targets take the direct
// conversion; other codes go through the registered proj4 transforms.
// The UTM conversion derives its zone from the longitude, so a point
// outside the requested zone is an error rather than coordinates
// mislabelled with the wrong CRS.
func ProjectPoint(lon, lat float64, epsg int) (geom.Point, error) {
	if (epsg >= 32601 && epsg <= 32660) || (epsg >= 32701 && epsg <= 32760) {
		e, n, zone, _, err := UTM.FromLatLon(lat, lon, epsg < 32700)
		if err != nil {
			return geom.Point{}, fmt.Errorf("hydrofab.ProjectPoint: %v", err)
		}
		if want := epsg % 100; zone != want {
			return geom.Point{}, fmt.Errorf("hydrofab.ProjectPoint: longitude %g falls in UTM zone %d, not zone %d (EPSG:%d)", lon, zone, want, epsg)
		}
		return geom.Point{X: e, Y: n}, nil
	}
	src, err := SRFromEPSG(4326)
	if err != nil {
		return geom.Point{}, err
	}
	dst, err := SRFromEPSG(epsg)
	if err != nil {
		return geom.Point{}, err
	}
	ct, err := src.NewTransform(dst)
	if err != nil {
		return geom.Point{}, fmt.Errorf("hydrofab.ProjectPoint: %v", err)
	}
	gg, err := geom.Point{X: lon, Y: lat}.Transform(ct)
	if err != nil {
		return geom.Point{}, fmt.Errorf("hydrofab.ProjectPoint: %v", err)
	}
	return gg.(geom.Point), nil
}
