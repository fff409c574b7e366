package hexgraph

import (
	"fmt"
	"strings"
)

// Board names accepted by Board.
const (
	BoardCanonical = "canonical"
	BoardGraphical = "graphical"
)

// CanonicalAdjacency is the seven-hex board laid out in rows of 2-3-2:
//
//	  1   2
//	3   4   5
//	  6   7
var CanonicalAdjacency = map[Hex][]Hex{
	1: {2, 3, 4},
	2: {1, 4, 5},
	3: {1, 4, 6},
	4: {1, 2, 3, 5, 6, 7},
	5: {2, 4, 7},
	6: {3, 4, 7},
	7: {4, 5, 6},
}

// CanonicalRidges are the default ridges of the seven-hex board.
var CanonicalRidges = []Pair{
	{A: 3, B: 4},
	{A: 2, B: 5},
}

// GraphicalAdjacency is the nine-hex board of the tile renderer. It lists
// 5->2 without 2->5; New symmetrises it.
var GraphicalAdjacency = map[Hex][]Hex{
	0: {1, 3},
	1: {0, 2, 3, 4},
	2: {1, 4},
	3: {0, 1, 4, 6},
	4: {1, 2, 3, 5, 6, 7},
	5: {2, 4, 7},
	6: {3, 4, 8},
	7: {4, 5, 8},
	8: {6, 7},
}

// Canonical returns the seven-hex board with its default ridges.
func Canonical() *Graph {
	g, err := New(BoardCanonical, CanonicalAdjacency, CanonicalRidges)
	if err != nil {
		panic(err)
	}
	return g
}

// Graphical returns the nine-hex board without ridges.
func Graphical() *Graph {
	g, err := New(BoardGraphical, GraphicalAdjacency, nil)
	if err != nil {
		panic(err)
	}
	return g
}

// Board builds the named board. When ridges is nil the board's default
// ridges are used; pass an empty non-nil slice for a board without ridges.
func Board(name string, ridges []Pair) (*Graph, error) {
	switch strings.ToLower(name) {
	case "", BoardCanonical:
		if ridges == nil {
			ridges = CanonicalRidges
		}
		return New(BoardCanonical, CanonicalAdjacency, ridges)
	case BoardGraphical:
		return New(BoardGraphical, GraphicalAdjacency, ridges)
	default:
		return nil, fmt.Errorf("unknown board: %s", name)
	}
}
