package unit

import (
	"fmt"
	"strings"

	"github.com/tal-engine/tal/internal/hexgraph"
	"github.com/tal-engine/tal/pkg/core"
)

// Altitude band of an aircraft.
type Altitude string

const (
	High Altitude = "HIGH"
	Low  Altitude = "LOW"
)

// ParseAltitude accepts HIGH/LOW and the H/L shorthand, in any case.
func ParseAltitude(s string) (Altitude, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH", "H":
		return High, nil
	case "LOW", "L":
		return Low, nil
	}
	return "", fmt.Errorf("unknown altitude %q: %w", s, ErrPreconditionFailed)
}

// Toggle returns the other altitude band.
func (a Altitude) Toggle() Altitude {
	if a == Low {
		return High
	}
	return Low
}

// WeaponType selects the attack profile of a Fire action.
type WeaponType string

const (
	Strike WeaponType = "strike"
	Cannon WeaponType = "cannon"
)

// ParseWeapon accepts strike or cannon, in any case.
func ParseWeapon(s string) (WeaponType, error) {
	switch WeaponType(strings.ToLower(strings.TrimSpace(s))) {
	case Strike:
		return Strike, nil
	case Cannon:
		return Cannon, nil
	}
	return "", fmt.Errorf("unknown weapon %q: %w", s, ErrPreconditionFailed)
}

// Aircraft is one player-controlled airframe.
type Aircraft struct {
	ID       string
	Name     string
	Pilot    *Pilot
	hex      hexgraph.Hex
	altitude Altitude
	damage   int
	limit    int
}

// NewAircraft places an aircraft on the board. A limit below 1 is raised to 1.
func NewAircraft(id, name string, pilot *Pilot, hex hexgraph.Hex, alt Altitude, limit int) *Aircraft {
	if limit < 1 {
		limit = 1
	}
	if alt != Low {
		alt = High
	}
	if pilot == nil {
		pilot = NewPilot(name, 0, 0, 0)
	}
	return &Aircraft{ID: id, Name: name, Pilot: pilot, hex: hex, altitude: alt, limit: limit}
}

func (a *Aircraft) Hex() hexgraph.Hex  { return a.hex }
func (a *Aircraft) Altitude() Altitude { return a.altitude }
func (a *Aircraft) Damage() int        { return a.damage }
func (a *Aircraft) Limit() int         { return a.limit }
func (a *Aircraft) Destroyed() bool    { return a.damage >= a.limit }

// Move flies to an adjacent hex. The aircraft is unchanged on error.
func (a *Aircraft) Move(target hexgraph.Hex, g *hexgraph.Graph) error {
	adjacent, err := g.IsAdjacent(a.hex, target)
	if err != nil {
		return err
	}
	if !adjacent {
		return fmt.Errorf("hex %d to %d not adjacent: %w", a.hex, target, ErrInvalidMove)
	}
	a.hex = target
	return nil
}

// ChangeAltitude toggles between HIGH and LOW.
func (a *Aircraft) ChangeAltitude() {
	a.altitude = a.altitude.Toggle()
}

// TakeStructureHit adds one point of structure damage.
func (a *Aircraft) TakeStructureHit() {
	a.damage++
}

// Skill returns the pilot skill used with the given weapon.
func (a *Aircraft) Skill(w WeaponType) int {
	if w == Cannon {
		return a.Pilot.CannonSkill
	}
	return a.Pilot.StrikeSkill
}

// State returns a snapshot for recording.
func (a *Aircraft) State() core.AircraftState {
	return core.AircraftState{
		ID:          a.ID,
		Name:        a.Name,
		Pilot:       a.Pilot.Name,
		Hex:         int(a.hex),
		Altitude:    string(a.altitude),
		Damage:      a.damage,
		Limit:       a.limit,
		Destroyed:   a.Destroyed(),
		Stress:      a.Pilot.Stress(),
		Coolness:    a.Pilot.Coolness,
		StrikeSkill: a.Pilot.StrikeSkill,
		CannonSkill: a.Pilot.CannonSkill,
	}
}
