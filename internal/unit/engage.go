package unit

import (
	"fmt"

	"github.com/tal-engine/tal/internal/hexgraph"
)

// CanEngage checks weapon gating: cannon needs LOW altitude and the same hex,
// strike needs the same or an adjacent hex. Line of sight is checked by the caller.
func CanEngage(a *Aircraft, target *EnemyUnit, w WeaponType, g *hexgraph.Graph) error {
	if a.Destroyed() {
		return fmt.Errorf("aircraft %s destroyed: %w", a.ID, ErrInvalidTarget)
	}
	if !target.IsAlive() {
		return fmt.Errorf("enemy %s already dead: %w", target.ID, ErrInvalidTarget)
	}
	switch w {
	case Cannon:
		if a.Altitude() != Low {
			return fmt.Errorf("cannon requires LOW altitude: %w", ErrPreconditionFailed)
		}
		if a.Hex() != target.Location() {
			return fmt.Errorf("cannon requires target in hex %d: %w", a.Hex(), ErrPreconditionFailed)
		}
	case Strike:
		near, err := g.SameOrAdjacent(a.Hex(), target.Location())
		if err != nil {
			return err
		}
		if !near {
			return fmt.Errorf("strike requires target in or next to hex %d: %w", a.Hex(), ErrPreconditionFailed)
		}
	default:
		return fmt.Errorf("unknown weapon %q: %w", w, ErrPreconditionFailed)
	}
	return nil
}
