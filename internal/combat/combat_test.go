package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tal-engine/tal/internal/hexgraph"
)

type testUnit struct {
	id    string
	hex   hexgraph.Hex
	alive bool
}

func (u testUnit) UnitID() string         { return u.id }
func (u testUnit) Location() hexgraph.Hex { return u.hex }
func (u testUnit) IsAlive() bool          { return u.alive }

func TestResolveAttack_Exhaustive(t *testing.T) {
	for roll := 1; roll <= 10; roll++ {
		for skill := 0; skill <= 4; skill++ {
			for threshold := 1; threshold <= 12; threshold++ {
				for cover := 0; cover <= 4; cover++ {
					want := Miss
					if roll+skill >= threshold+cover {
						want = Hit
					}
					got := ResolveAttack(roll, skill, threshold, cover)
					require.Equal(t, want, got, "roll=%d skill=%d threshold=%d cover=%d", roll, skill, threshold, cover)
				}
			}
		}
	}
}

func TestResolveAttack_Boundary(t *testing.T) {
	assert.Equal(t, Hit, ResolveAttack(5, 2, 6, 1))
	assert.Equal(t, Miss, ResolveAttack(4, 2, 6, 1))
	assert.Equal(t, "hit", Hit.String())
	assert.Equal(t, "miss", Miss.String())
}

func TestResolveEnemyFire_Bands(t *testing.T) {
	tests := []struct {
		roll int
		want FireOutcome
	}{
		{10, StructureHit},
		{8, StructureHit},
		{7, StressHit},
		{5, StressHit},
		{4, NoEffect},
		{1, NoEffect},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveEnemyFire(tt.roll, 8, 3), "roll %d", tt.roll)
	}
}

func TestResolveEnemyFire_NoStressBand(t *testing.T) {
	assert.Equal(t, NoEffect, ResolveEnemyFire(7, 8, 0))
	assert.Equal(t, StructureHit, ResolveEnemyFire(8, 8, 0))
	assert.Equal(t, "structure", StructureHit.String())
	assert.Equal(t, "stress", StressHit.String())
	assert.Equal(t, "none", NoEffect.String())
}

func TestCoverBonus(t *testing.T) {
	g := hexgraph.Canonical()
	target := testUnit{id: "E1", hex: 4, alive: true}
	units := []testUnit{
		target,
		{id: "E2", hex: 4, alive: true},  // same hex
		{id: "E3", hex: 3, alive: true},  // adjacent across a ridge still counts
		{id: "E4", hex: 5, alive: false}, // dead
		{id: "E5", hex: 1, alive: true},  // adjacent
	}
	assert.Equal(t, 3, CoverBonus(target, units, g))
}

func TestCoverBonus_FarUnitsGiveNothing(t *testing.T) {
	g := hexgraph.Canonical()
	target := testUnit{id: "E1", hex: 1, alive: true}
	units := []testUnit{
		target,
		{id: "E2", hex: 7, alive: true},
		{id: "E3", hex: 5, alive: true},
	}
	assert.Equal(t, 0, CoverBonus(target, units, g))
}

func TestCoverBonus_Unbounded(t *testing.T) {
	g := hexgraph.Canonical()
	target := testUnit{id: "T", hex: 4, alive: true}
	units := []testUnit{target}
	for i := 0; i < 12; i++ {
		units = append(units, testUnit{id: string(rune('a' + i)), hex: 4, alive: true})
	}
	assert.Equal(t, 12, CoverBonus(target, units, g))
}

func TestRandomDie_Range(t *testing.T) {
	for _, sides := range []int{D6, D10} {
		d := NewDie(sides, 7)
		assert.Equal(t, sides, d.Sides())
		seen := make(map[int]int)
		for i := 0; i < 5000; i++ {
			r := d.Roll()
			require.GreaterOrEqual(t, r, 1)
			require.LessOrEqual(t, r, sides)
			seen[r]++
		}
		// every face shows up, and none dominates
		assert.Len(t, seen, sides)
		for face, n := range seen {
			assert.Greater(t, n, 5000/sides/2, "face %d under-represented", face)
		}
	}
}

func TestRandomDie_SeedRepeats(t *testing.T) {
	a := NewDie(D10, 42)
	b := NewDie(D10, 42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Roll(), b.Roll())
	}
}

func TestRandomDie_InvalidSidesDefaultsToD10(t *testing.T) {
	assert.Equal(t, D10, NewDie(0, 1).Sides())
}

func TestFixedDie(t *testing.T) {
	d := Fixed(3, 9)
	assert.Equal(t, 3, d.Roll())
	assert.Equal(t, 9, d.Roll())
	assert.Equal(t, 3, d.Roll())
	assert.Equal(t, 3, d.Used())
	assert.Equal(t, D10, d.Sides())

	assert.Equal(t, 1, Fixed().Roll())
}
