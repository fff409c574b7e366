// Package hexgraph provides the static hex board: adjacency between numbered
// hexes and the ridges that block line of sight between adjacent hexes.
// Hexes carry no coordinates, only graph adjacency.
package hexgraph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidHex is returned when a hex id is not a node of the graph.
var ErrInvalidHex = errors.New("invalid hex")

// Hex identifies a board cell.
type Hex int

// Pair is an unordered pair of hexes. Use NewPair so that equal pairs compare equal.
type Pair struct {
	A, B Hex
}

// NewPair returns the normalised pair with the lower id first.
func NewPair(a, b Hex) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Graph is an immutable adjacency graph with a ridge set.
type Graph struct {
	name      string
	neighbors map[Hex][]Hex
	adjacent  map[Pair]struct{}
	ridges    map[Pair]struct{}
	nodes     map[Hex]struct{}
	hexes     []Hex
}

// New builds a graph from an adjacency list and a ridge list.
// Adjacency is symmetrised: an edge listed in one direction exists in both.
// Every neighbour and ridge endpoint must be a key of adjacency, and ridges
// may only separate adjacent hexes.
func New(name string, adjacency map[Hex][]Hex, ridges []Pair) (*Graph, error) {
	if len(adjacency) == 0 {
		return nil, fmt.Errorf("graph %q has no hexes: %w", name, ErrInvalidHex)
	}

	g := &Graph{
		name:      name,
		neighbors: make(map[Hex][]Hex, len(adjacency)),
		adjacent:  make(map[Pair]struct{}),
		ridges:    make(map[Pair]struct{}, len(ridges)),
		nodes:     make(map[Hex]struct{}, len(adjacency)),
	}

	for h := range adjacency {
		g.nodes[h] = struct{}{}
		g.hexes = append(g.hexes, h)
	}
	sort.Slice(g.hexes, func(i, j int) bool { return g.hexes[i] < g.hexes[j] })

	for h, ns := range adjacency {
		for _, n := range ns {
			if _, ok := adjacency[n]; !ok {
				return nil, fmt.Errorf("hex %d lists neighbour %d: %w", h, n, ErrInvalidHex)
			}
			if n == h {
				continue
			}
			g.adjacent[NewPair(h, n)] = struct{}{}
		}
	}

	for p := range g.adjacent {
		g.neighbors[p.A] = append(g.neighbors[p.A], p.B)
		g.neighbors[p.B] = append(g.neighbors[p.B], p.A)
	}
	for _, h := range g.hexes {
		ns := g.neighbors[h]
		sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
		g.neighbors[h] = ns
	}

	for _, r := range ridges {
		p := NewPair(r.A, r.B)
		if !g.Valid(p.A) || !g.Valid(p.B) {
			return nil, fmt.Errorf("ridge %d-%d: %w", p.A, p.B, ErrInvalidHex)
		}
		if _, ok := g.adjacent[p]; !ok {
			return nil, fmt.Errorf("ridge %d-%d joins hexes that are not adjacent: %w", p.A, p.B, ErrInvalidHex)
		}
		g.ridges[p] = struct{}{}
	}

	return g, nil
}

// Name returns the board name the graph was built with.
func (g *Graph) Name() string {
	return g.name
}

// Hexes returns every node in ascending order.
func (g *Graph) Hexes() []Hex {
	out := make([]Hex, len(g.hexes))
	copy(out, g.hexes)
	return out
}

// Valid reports whether h is a node of the graph.
func (g *Graph) Valid(h Hex) bool {
	_, ok := g.nodes[h]
	return ok
}

func (g *Graph) check(hexes ...Hex) error {
	for _, h := range hexes {
		if !g.Valid(h) {
			return fmt.Errorf("hex %d on board %q: %w", h, g.name, ErrInvalidHex)
		}
	}
	return nil
}

// Neighbors returns the hexes adjacent to h in ascending order.
func (g *Graph) Neighbors(h Hex) ([]Hex, error) {
	if err := g.check(h); err != nil {
		return nil, err
	}
	ns := g.neighbors[h]
	out := make([]Hex, len(ns))
	copy(out, ns)
	return out, nil
}

// IsAdjacent reports whether b is a neighbour of a.
func (g *Graph) IsAdjacent(a, b Hex) (bool, error) {
	if err := g.check(a, b); err != nil {
		return false, err
	}
	_, ok := g.adjacent[NewPair(a, b)]
	return ok, nil
}

// RidgeBlocks reports whether a ridge lies between a and b.
func (g *Graph) RidgeBlocks(a, b Hex) (bool, error) {
	if err := g.check(a, b); err != nil {
		return false, err
	}
	_, ok := g.ridges[NewPair(a, b)]
	return ok, nil
}

// HasLineOfSight is true within a hex and between adjacent hexes without a
// ridge. There is no sight across more than one hex boundary.
func (g *Graph) HasLineOfSight(a, b Hex) (bool, error) {
	if err := g.check(a, b); err != nil {
		return false, err
	}
	if a == b {
		return true, nil
	}
	p := NewPair(a, b)
	if _, ok := g.adjacent[p]; !ok {
		return false, nil
	}
	_, blocked := g.ridges[p]
	return !blocked, nil
}

// SameOrAdjacent reports whether a and b are the same hex or neighbours.
func (g *Graph) SameOrAdjacent(a, b Hex) (bool, error) {
	if a == b {
		return true, g.check(a)
	}
	return g.IsAdjacent(a, b)
}

// Ridges returns the ridge pairs in ascending order.
func (g *Graph) Ridges() []Pair {
	out := make([]Pair, 0, len(g.ridges))
	for p := range g.ridges {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}
