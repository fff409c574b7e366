package combat

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Standard die sizes. The d10 drives the canonical rules; the d6 belongs to
// the simplified board.
const (
	D6  = 6
	D10 = 10
)

// Die produces independent rolls in [1, Sides()].
type Die interface {
	Roll() int
	Sides() int
}

// RandomDie rolls a uniformly distributed die.
type RandomDie struct {
	sides int
	rng   *rand.Rand
}

// NewDie returns a die with the given number of sides. A zero seed seeds from
// the clock; any other seed gives a repeatable sequence.
func NewDie(sides int, seed uint64) *RandomDie {
	if sides < 1 {
		sides = D10
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomDie{
		sides: sides,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Roll returns a value in [1, sides].
func (d *RandomDie) Roll() int {
	return 1 + d.rng.IntN(d.sides)
}

// Sides returns the number of faces.
func (d *RandomDie) Sides() int {
	return d.sides
}

// FixedDie replays a fixed sequence of rolls, cycling when exhausted.
// Used to script deterministic fights.
type FixedDie struct {
	mu    sync.Mutex
	sides int
	rolls []int
	next  int
}

// Fixed returns a d10 that yields rolls in order.
func Fixed(rolls ...int) *FixedDie {
	return &FixedDie{sides: D10, rolls: rolls}
}

// Roll returns the next scripted value. An empty script always rolls 1.
func (d *FixedDie) Roll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.rolls) == 0 {
		return 1
	}
	r := d.rolls[d.next%len(d.rolls)]
	d.next++
	return r
}

// Sides returns the number of faces.
func (d *FixedDie) Sides() int {
	return d.sides
}

// Used returns how many rolls have been drawn.
func (d *FixedDie) Used() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}
