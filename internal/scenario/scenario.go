// Package scenario turns a mission configuration into a ready engine.
package scenario

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/tal-engine/tal/internal/combat"
	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/internal/engine"
	"github.com/tal-engine/tal/internal/hexgraph"
	"github.com/tal-engine/tal/internal/unit"
)

// Defaults for anything the mission configuration leaves out.
const (
	DefaultLoiter       = 6
	DefaultStressMargin = 3
	DefaultLimit        = 2
	DefaultHP           = 2
	DefaultAttack       = 8
	DefaultDefense      = 6
)

// DefaultAircraft is a single A-10 over the western edge of the canonical board.
func DefaultAircraft() []config.AircraftConfig {
	return []config.AircraftConfig{
		{
			ID: "A1", Name: "Hog 1", Hex: 1, Altitude: "HIGH", Limit: DefaultLimit,
			Pilot: config.PilotConfig{Name: "Kowalski", Strike: 2, Cannon: 3, Coolness: 5},
		},
	}
}

// DefaultEnemies is a four unit mechanised battalion dug in around the centre.
func DefaultEnemies() []config.EnemyConfig {
	return []config.EnemyConfig{
		{ID: "E1", Name: "T-72 platoon", Hex: 4, HP: 2, Attack: 8, Defense: map[string]int{"strike": 6, "cannon": 7}},
		{ID: "E2", Name: "BMP platoon", Hex: 5, HP: 2, Attack: 8, Defense: map[string]int{"strike": 5, "cannon": 6}},
		{ID: "E3", Name: "ZSU-23-4", Hex: 6, HP: 2, Attack: 7, Defense: map[string]int{"strike": 6, "cannon": 6}},
		{ID: "E4", Name: "HQ company", Hex: 7, HP: 2, Attack: 9, Defense: map[string]int{"strike": 5, "cannon": 5}},
	}
}

// Options carries the runtime collaborators of the engine.
type Options struct {
	MissionID string
	Die       combat.Die
	Logger    *slog.Logger
	Recorder  engine.Recorder
}

// Build creates the board, forces and engine described by mc.
func Build(mc config.MissionConfig, opts Options) (*engine.Engine, error) {
	var ridges []hexgraph.Pair
	if mc.RidgesSet {
		ridges = []hexgraph.Pair{}
		for _, r := range mc.Ridges {
			if len(r) != 2 {
				return nil, fmt.Errorf("ridge %v needs two hexes: %w", r, hexgraph.ErrInvalidHex)
			}
			ridges = append(ridges, hexgraph.NewPair(hexgraph.Hex(r[0]), hexgraph.Hex(r[1])))
		}
	}
	g, err := hexgraph.Board(mc.Board, ridges)
	if err != nil {
		return nil, fmt.Errorf("build board: %w", err)
	}

	aircraftCfg := mc.Aircraft
	if len(aircraftCfg) == 0 {
		aircraftCfg = DefaultAircraft()
	}
	planes := make([]*unit.Aircraft, 0, len(aircraftCfg))
	for i, ac := range aircraftCfg {
		a, err := buildAircraft(i, ac)
		if err != nil {
			return nil, err
		}
		planes = append(planes, a)
	}

	enemyCfg := mc.Enemies
	if len(enemyCfg) == 0 {
		enemyCfg = DefaultEnemies()
	}
	enemies := make([]*unit.EnemyUnit, 0, len(enemyCfg))
	for i, ec := range enemyCfg {
		enemies = append(enemies, buildEnemy(i, ec))
	}

	die := opts.Die
	if die == nil {
		sides := mc.DieSides
		if sides == 0 {
			sides = combat.D10
		}
		die = combat.NewDie(sides, mc.Seed)
	}
	loiter := mc.Loiter
	if loiter == 0 {
		loiter = DefaultLoiter
	}
	margin := mc.StressMargin
	if margin == 0 {
		margin = DefaultStressMargin
	}

	return engine.New(engine.Config{
		MissionID:    opts.MissionID,
		Graph:        g,
		Aircraft:     planes,
		Battalion:    unit.NewBattalion(enemies...),
		Die:          die,
		Loiter:       loiter,
		StressMargin: margin,
		Logger:       opts.Logger,
		Recorder:     opts.Recorder,
	})
}

func buildAircraft(i int, ac config.AircraftConfig) (*unit.Aircraft, error) {
	id := ac.ID
	if id == "" {
		id = fmt.Sprintf("A%d", i+1)
	}
	name := ac.Name
	if name == "" {
		name = id
	}
	alt := unit.High
	if ac.Altitude != "" {
		parsed, err := unit.ParseAltitude(ac.Altitude)
		if err != nil {
			return nil, fmt.Errorf("aircraft %s: %w", id, err)
		}
		alt = parsed
	}
	limit := ac.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	pilotName := ac.Pilot.Name
	if pilotName == "" {
		pilotName = name
	}
	pilot := unit.NewPilot(pilotName, ac.Pilot.Strike, ac.Pilot.Cannon, ac.Pilot.Coolness)
	return unit.NewAircraft(id, name, pilot, hexgraph.Hex(ac.Hex), alt, limit), nil
}

func buildEnemy(i int, ec config.EnemyConfig) *unit.EnemyUnit {
	id := ec.ID
	if id == "" {
		id = fmt.Sprintf("E%d", i+1)
	}
	name := ec.Name
	if name == "" {
		name = id
	}
	hp := ec.HP
	if hp == 0 {
		hp = DefaultHP
	}
	attack := ec.Attack
	if attack == 0 {
		attack = DefaultAttack
	}
	defense := map[unit.WeaponType]int{unit.Strike: DefaultDefense, unit.Cannon: DefaultDefense}
	for k, v := range ec.Defense {
		w, err := unit.ParseWeapon(k)
		if err != nil {
			continue
		}
		defense[w] = v
	}
	return unit.NewEnemy(id, name, hexgraph.Hex(ec.Hex), hp, defense, attack)
}

// Describe renders a short briefing of the board for the console.
func Describe(e *engine.Engine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Board %s, %d hexes, loiter %d\n", e.Graph().Name(), len(e.Graph().Hexes()), e.Loiter())
	for _, r := range e.Graph().Ridges() {
		fmt.Fprintf(&b, "  ridge between hex %d and hex %d\n", r.A, r.B)
	}
	for _, id := range e.AircraftIDs() {
		a, _ := e.Aircraft(id)
		fmt.Fprintf(&b, "  %s %q (%s) at hex %d, %s\n", a.ID, a.Name, a.Pilot.Name, a.Hex(), a.Altitude())
	}
	for _, u := range e.Battalion().Units() {
		fmt.Fprintf(&b, "  %s %q at hex %d, hp %d\n", u.ID, u.Name, u.Location(), u.HP())
	}
	return b.String()
}
