package engine

import (
	"github.com/tal-engine/tal/internal/hexgraph"
	"github.com/tal-engine/tal/internal/unit"
	"github.com/tal-engine/tal/pkg/core"
)

func (e *Engine) State() State               { return e.state }
func (e *Engine) Outcome() Outcome           { return e.outcome }
func (e *Engine) Round() int                 { return e.round }
func (e *Engine) Loiter() int                { return e.loiter }
func (e *Engine) Battalion() *unit.Battalion { return e.battalion }
func (e *Engine) Graph() *hexgraph.Graph     { return e.graph }
func (e *Engine) MissionID() string          { return e.missionID }
func (e *Engine) Complete() bool             { return e.state == MissionComplete }

// Aircraft looks up an aircraft by id, destroyed or not.
func (e *Engine) Aircraft(id string) (*unit.Aircraft, error) {
	return e.findAircraft(id)
}

// AircraftIDs lists every aircraft in setup order.
func (e *Engine) AircraftIDs() []string {
	ids := make([]string, 0, len(e.aircraft))
	for _, a := range e.aircraft {
		ids = append(ids, a.ID)
	}
	return ids
}

// Pending lists the aircraft that can still act this round.
func (e *Engine) Pending() []string {
	if e.state == MissionComplete {
		return nil
	}
	var ids []string
	for _, a := range e.aircraft {
		if !a.Destroyed() && !e.acted[a.ID] {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// LegalMoves returns the hexes an aircraft may move to.
func (e *Engine) LegalMoves(id string) ([]hexgraph.Hex, error) {
	a, err := e.findAircraft(id)
	if err != nil {
		return nil, err
	}
	return e.graph.Neighbors(a.Hex())
}

// Snapshot captures the board as it is now.
func (e *Engine) Snapshot() core.RoundSnapshot {
	s := core.RoundSnapshot{
		MissionID:       e.missionID,
		Round:           e.round,
		State:           e.state.String(),
		Loiter:          e.loiter,
		BattalionHP:     e.battalion.RemainingHP(),
		BattalionStatus: string(e.battalion.Status()),
		Time:            e.now(),
	}
	for _, a := range e.aircraft {
		s.Aircraft = append(s.Aircraft, a.State())
	}
	for _, u := range e.battalion.Units() {
		s.Enemies = append(s.Enemies, u.State())
	}
	return s
}
