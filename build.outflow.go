package coastal

import (
	"errors"
	"fmt"

	"github.com/taddyb/coastal-tools/hydrofab"
)

// ErrTerminalNodeNotFound reports a terminal node id matching no nexus
// feature.
var ErrTerminalNodeNotFound = errors.New("coastal: terminal node not found")

// AddHydrofabricOutflow opens the model's ocean boundary at the
// hydrofabric's terminal node: the matching nexus feature is
// reprojected into the divides' spatial reference, unioned with every
// divide geometry into one inclusion mask, and set as an always-open
// water-level boundary (maximum elevation 0).
func AddHydrofabricOutflow(sf Session, divides, nexus *hydrofab.Collection, terminalNode string) error {
	term := nexus.Filter(terminalNode)
	if term.Len() == 0 {
		return fmt.Errorf("%w: %q", ErrTerminalNodeNotFound, terminalNode)
	}
	term, err := term.ToSR(divides.SR)
	if err != nil {
		return fmt.Errorf("coastal.AddHydrofabricOutflow: %v", err)
	}
	include, err := hydrofab.Concat(term, divides)
	if err != nil {
		return fmt.Errorf("coastal.AddHydrofabricOutflow: %v", err)
	}
	if err := sf.SetupMaskBounds("waterlevel", include, true, 0); err != nil {
		return fmt.Errorf("coastal.AddHydrofabricOutflow: %w", err)
	}
	return nil
}
