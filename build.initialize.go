package coastal

import (
	"fmt"

	"github.com/taddyb/coastal-tools/sfincs"
)

// ActiveMaskZmin is the elevation threshold above which initialized
// cells are marked active.
const ActiveMaskZmin = 0.3

// InitializeModel opens a model session at root over the given
// data-catalog files, establishes the grid and the merged elevation
// (sources applied in priority order, later entries filling gaps), and
// activates every cell at or above ActiveMaskZmin. Files under root
// are created or overwritten.
func InitializeModel(root string, dataLibs []string, gd sfincs.GridDef, depths []sfincs.DepSource) (*sfincs.Model, error) {
	sf, err := sfincs.New(dataLibs, root, "w+")
	if err != nil {
		return nil, fmt.Errorf("coastal.InitializeModel: %w", err)
	}
	if err := sf.SetupGrid(gd); err != nil {
		return nil, fmt.Errorf("coastal.InitializeModel: %w", err)
	}
	if err := sf.SetupDep(depths); err != nil {
		return nil, fmt.Errorf("coastal.InitializeModel: %w", err)
	}
	if err := sf.SetupMaskActive(ActiveMaskZmin, true); err != nil {
		return nil, fmt.Errorf("coastal.InitializeModel: %w", err)
	}
	return sf, nil
}
