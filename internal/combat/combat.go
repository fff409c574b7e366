// Package combat holds the dice and hit arithmetic of the air-to-ground rules.
package combat

import (
	"github.com/tal-engine/tal/internal/hexgraph"
)

// AttackOutcome is the result of a player attack roll.
type AttackOutcome int

const (
	Miss AttackOutcome = iota
	Hit
)

func (o AttackOutcome) String() string {
	if o == Hit {
		return "hit"
	}
	return "miss"
}

// FireOutcome is the result of one enemy fire roll against an aircraft.
type FireOutcome int

const (
	NoEffect FireOutcome = iota
	StressHit
	StructureHit
)

func (o FireOutcome) String() string {
	switch o {
	case StructureHit:
		return "structure"
	case StressHit:
		return "stress"
	default:
		return "none"
	}
}

// ResolveAttack hits when roll+skill reaches threshold+cover.
func ResolveAttack(roll, skill, threshold, cover int) AttackOutcome {
	if roll+skill >= threshold+cover {
		return Hit
	}
	return Miss
}

// ResolveEnemyFire compares a bare roll to the firing unit's attack value.
// At or above the attack value the aircraft structure is hit; within
// stressMargin below it the pilot takes stress; anything lower has no effect.
func ResolveEnemyFire(roll, attackValue, stressMargin int) FireOutcome {
	switch {
	case roll >= attackValue:
		return StructureHit
	case stressMargin > 0 && roll >= attackValue-stressMargin:
		return StressHit
	default:
		return NoEffect
	}
}

// Position is anything placed on the board that can lend cover.
type Position interface {
	UnitID() string
	Location() hexgraph.Hex
	IsAlive() bool
}

// CoverBonus counts the other living units in or adjacent to the target's hex.
// Units on hexes unknown to the graph lend no cover.
func CoverBonus[P Position](target P, units []P, g *hexgraph.Graph) int {
	bonus := 0
	for _, u := range units {
		if u.UnitID() == target.UnitID() || !u.IsAlive() {
			continue
		}
		near, err := g.SameOrAdjacent(u.Location(), target.Location())
		if err != nil {
			continue
		}
		if near {
			bonus++
		}
	}
	return bonus
}
