package unit

import (
	"github.com/tal-engine/tal/internal/hexgraph"
	"github.com/tal-engine/tal/pkg/core"
)

// EnemyUnit is one ground unit of the battalion.
type EnemyUnit struct {
	ID          string
	Name        string
	AttackValue int
	hex         hexgraph.Hex
	hp          int
	defense     map[WeaponType]int
	alive       bool
}

// NewEnemy returns a living unit. A unit created with hp below 1 starts dead.
func NewEnemy(id, name string, hex hexgraph.Hex, hp int, defense map[WeaponType]int, attack int) *EnemyUnit {
	if hp < 0 {
		hp = 0
	}
	d := make(map[WeaponType]int, len(defense))
	for k, v := range defense {
		d[k] = v
	}
	return &EnemyUnit{
		ID:          id,
		Name:        name,
		AttackValue: attack,
		hex:         hex,
		hp:          hp,
		defense:     d,
		alive:       hp > 0,
	}
}

// UnitID, Location and IsAlive let the unit lend cover.
func (e *EnemyUnit) UnitID() string         { return e.ID }
func (e *EnemyUnit) Location() hexgraph.Hex { return e.hex }
func (e *EnemyUnit) IsAlive() bool          { return e.alive }
func (e *EnemyUnit) HP() int                { return e.hp }

// Defense returns the hit threshold against w. Missing entries are unhittable
// on a single die.
func (e *EnemyUnit) Defense(w WeaponType) int {
	if d, ok := e.defense[w]; ok {
		return d
	}
	return 99
}

// TakeHit removes one hit point. It reports whether this hit killed the unit.
// Hits on a dead unit do nothing.
func (e *EnemyUnit) TakeHit() bool {
	if !e.alive {
		return false
	}
	e.hp--
	if e.hp <= 0 {
		e.hp = 0
		e.alive = false
		return true
	}
	return false
}

// State returns a snapshot for recording.
func (e *EnemyUnit) State() core.EnemyState {
	return core.EnemyState{ID: e.ID, Name: e.Name, Hex: int(e.hex), HP: e.hp, Alive: e.alive}
}
