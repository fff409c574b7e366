package handlers

import (
	"fmt"
	"strings"

	"github.com/tal-engine/tal/internal/engine"
	"github.com/tal-engine/tal/internal/hexgraph"
)

// Status renders the round header, every aircraft and every ground unit.
func Status(e *engine.Engine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ROUND %d  PHASE %s  LOITER %d\n", e.Round(), e.State(), e.Loiter())
	for _, id := range e.AircraftIDs() {
		a, _ := e.Aircraft(id)
		state := "ready"
		switch {
		case a.Destroyed():
			state = "DESTROYED"
		case !contains(e.Pending(), id):
			state = "done"
		}
		fmt.Fprintf(&b, "  %-3s %-10s hex %d %-4s dmg %d/%d stress %d  %s\n",
			a.ID, a.Name, a.Hex(), a.Altitude(), a.Damage(), a.Limit(), a.Pilot.Stress(), state)
	}
	bat := e.Battalion()
	for _, u := range bat.Units() {
		state := "active"
		if !u.IsAlive() {
			state = "DESTROYED"
		}
		fmt.Fprintf(&b, "  %-3s %-14s hex %d hp %d  %s\n", u.ID, u.Name, u.Location(), u.HP(), state)
	}
	fmt.Fprintf(&b, "BATTALION %d hp (%s)", bat.RemainingHP(), bat.Status())
	return b.String()
}

// Debrief renders the final outcome line.
func Debrief(e *engine.Engine) string {
	return fmt.Sprintf("DEBRIEF: %s after %d rounds, battalion %d hp (%s)",
		e.Outcome(), e.Round(), e.Battalion().RemainingHP(), e.Battalion().Status())
}

// Board renders the adjacency of every hex and the ridges.
func Board(g *hexgraph.Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BOARD %s", g.Name())
	for _, h := range g.Hexes() {
		n, _ := g.Neighbors(h)
		fmt.Fprintf(&b, "\n  hex %d: %s", h, joinHexes(n))
	}
	for _, r := range g.Ridges() {
		fmt.Fprintf(&b, "\n  ridge %d-%d", r.A, r.B)
	}
	return b.String()
}

// Neighbours renders the neighbours of h, marking those behind a ridge.
func Neighbours(g *hexgraph.Graph, h hexgraph.Hex) (string, error) {
	n, err := g.Neighbors(h)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(n))
	for _, o := range n {
		blocked, _ := g.RidgeBlocks(h, o)
		if blocked {
			parts = append(parts, fmt.Sprintf("%d (ridge)", o))
		} else {
			parts = append(parts, fmt.Sprint(o))
		}
	}
	return fmt.Sprintf("hex %d: %s", h, strings.Join(parts, ", ")), nil
}

func joinHexes(hs []hexgraph.Hex) string {
	parts := make([]string, len(hs))
	for i, h := range hs {
		parts[i] = fmt.Sprint(h)
	}
	return strings.Join(parts, ", ")
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
