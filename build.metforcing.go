package coastal

import (
	"fmt"
)

// PrecipForcing is the name the precipitation layer is attached under.
const PrecipForcing = "precip"

// precipBufferPx pads the clip window by this many source pixels so
// interpolation at the region edge has support.
const precipBufferPx = 100

// SetupMeteorologicalForcings requests the precip variable of the
// named catalog source clipped to the session's spatial bounding box
// with a 100-pixel buffer, and attaches it as the precipitation
// forcing layer.
func SetupMeteorologicalForcings(sf Session, source string) error {
	region, err := sf.Region()
	if err != nil {
		return fmt.Errorf("coastal.SetupMeteorologicalForcings: %w", err)
	}
	gd, _ := sf.Grid()
	r, err := sf.Catalog().GetRasterDataset(source, region, gd.EPSG, precipBufferPx, PrecipForcing)
	if err != nil {
		return fmt.Errorf("coastal.SetupMeteorologicalForcings: %w", err)
	}
	if err := sf.SetForcing(r, PrecipForcing); err != nil {
		return fmt.Errorf("coastal.SetupMeteorologicalForcings: %w", err)
	}
	return nil
}
