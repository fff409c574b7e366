package unit

import "fmt"

// Status is the battalion tier derived from its remaining hit points.
type Status string

const (
	StatusDestroyed Status = "DESTROYED"
	StatusReduced   Status = "REDUCED"
	StatusSurvived  Status = "SURVIVED"
)

// StatusFor maps remaining hit points to a tier.
func StatusFor(hp int) Status {
	switch {
	case hp <= 0:
		return StatusDestroyed
	case hp <= 2:
		return StatusReduced
	default:
		return StatusSurvived
	}
}

// Battalion is the ordered set of enemy units.
type Battalion struct {
	units []*EnemyUnit
}

// NewBattalion keeps units in the given order.
func NewBattalion(units ...*EnemyUnit) *Battalion {
	return &Battalion{units: append([]*EnemyUnit(nil), units...)}
}

// Units returns every unit, dead or alive, in battalion order.
func (b *Battalion) Units() []*EnemyUnit {
	return append([]*EnemyUnit(nil), b.units...)
}

// Alive returns the living units in battalion order.
func (b *Battalion) Alive() []*EnemyUnit {
	var out []*EnemyUnit
	for _, u := range b.units {
		if u.IsAlive() {
			out = append(out, u)
		}
	}
	return out
}

// Find looks up a unit by id.
func (b *Battalion) Find(id string) (*EnemyUnit, error) {
	for _, u := range b.units {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("enemy %q: %w", id, ErrInvalidTarget)
}

// RemainingHP sums the hit points of living units.
func (b *Battalion) RemainingHP() int {
	total := 0
	for _, u := range b.units {
		if u.IsAlive() {
			total += u.HP()
		}
	}
	return total
}

// Destroyed reports whether no unit is left alive.
func (b *Battalion) Destroyed() bool {
	return len(b.Alive()) == 0
}

func (b *Battalion) Status() Status {
	return StatusFor(b.RemainingHP())
}
