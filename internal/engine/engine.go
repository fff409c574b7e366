// Package engine runs the turn loop of a mission: player actions, enemy fire,
// the loiter countdown and the end conditions.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tal-engine/tal/internal/combat"
	"github.com/tal-engine/tal/internal/hexgraph"
	"github.com/tal-engine/tal/internal/unit"
	"github.com/tal-engine/tal/pkg/core"
)

// Recorder receives the mission record as it is produced.
type Recorder interface {
	RecordEvent(core.Event)
	RecordRound(core.RoundSnapshot)
	RecordResult(core.MissionResult)
}

// Config holds everything an engine is built from.
type Config struct {
	MissionID    string
	Graph        *hexgraph.Graph
	Aircraft     []*unit.Aircraft
	Battalion    *unit.Battalion
	Die          combat.Die
	Loiter       int
	StressMargin int
	Logger       *slog.Logger
	Recorder     Recorder
	Now          func() time.Time
}

// Result describes the effect of one command.
type Result struct {
	Accepted    bool
	Description string
	Events      []core.Event
	State       State
}

// Engine is single-threaded and owned by its caller.
type Engine struct {
	missionID    string
	graph        *hexgraph.Graph
	aircraft     []*unit.Aircraft
	battalion    *unit.Battalion
	die          combat.Die
	loiter       int
	stressMargin int
	logger       *slog.Logger
	recorder     Recorder
	now          func() time.Time

	state   State
	outcome Outcome
	round   int
	seq     uint
	acted   map[string]bool
	events  []core.Event
}

// New validates cfg and returns an engine awaiting the first player action.
func New(cfg Config) (*Engine, error) {
	if cfg.Graph == nil {
		return nil, fmt.Errorf("no board: %w", ErrInvalidSetup)
	}
	if len(cfg.Aircraft) == 0 {
		return nil, fmt.Errorf("no aircraft: %w", ErrInvalidSetup)
	}
	if cfg.Battalion == nil || len(cfg.Battalion.Units()) == 0 {
		return nil, fmt.Errorf("no enemy units: %w", ErrInvalidSetup)
	}
	if cfg.Loiter < 1 {
		return nil, fmt.Errorf("loiter %d: %w", cfg.Loiter, ErrInvalidSetup)
	}
	if cfg.StressMargin < 0 {
		return nil, fmt.Errorf("stress margin %d: %w", cfg.StressMargin, ErrInvalidSetup)
	}

	ids := make(map[string]bool)
	for _, a := range cfg.Aircraft {
		if ids[a.ID] {
			return nil, fmt.Errorf("duplicate unit id %q: %w", a.ID, ErrInvalidSetup)
		}
		ids[a.ID] = true
		if !cfg.Graph.Valid(a.Hex()) {
			return nil, fmt.Errorf("aircraft %s at hex %d: %w", a.ID, a.Hex(), ErrInvalidHex)
		}
	}
	for _, u := range cfg.Battalion.Units() {
		if ids[u.ID] {
			return nil, fmt.Errorf("duplicate unit id %q: %w", u.ID, ErrInvalidSetup)
		}
		ids[u.ID] = true
		if !cfg.Graph.Valid(u.Location()) {
			return nil, fmt.Errorf("enemy %s at hex %d: %w", u.ID, u.Location(), ErrInvalidHex)
		}
	}

	e := &Engine{
		missionID:    cfg.MissionID,
		graph:        cfg.Graph,
		aircraft:     append([]*unit.Aircraft(nil), cfg.Aircraft...),
		battalion:    cfg.Battalion,
		die:          cfg.Die,
		loiter:       cfg.Loiter,
		stressMargin: cfg.StressMargin,
		logger:       cfg.Logger,
		recorder:     cfg.Recorder,
		now:          cfg.Now,
		state:        AwaitingPlayerAction,
		round:        1,
		acted:        make(map[string]bool),
	}
	if e.die == nil {
		e.die = combat.NewDie(combat.D10, 0)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// Move flies an aircraft to an adjacent hex.
func (e *Engine) Move(id string, to hexgraph.Hex) (Result, error) {
	a, err := e.actor(id)
	if err != nil {
		return e.reject(id, err)
	}
	from := a.Hex()
	if err := a.Move(to, e.graph); err != nil {
		return e.reject(id, fmt.Errorf("invalid move: %w", err))
	}
	e.acted[id] = true
	e.emit(core.Event{
		Kind:    core.EventMove,
		Actor:   id,
		FromHex: int(from),
		ToHex:   int(to),
		Message: fmt.Sprintf("%s MOVES: HEX %d -> HEX %d", id, from, to),
	})
	return e.accept(fmt.Sprintf("%s moved to hex %d", id, to))
}

// ChangeAltitude toggles an aircraft between HIGH and LOW.
func (e *Engine) ChangeAltitude(id string) (Result, error) {
	a, err := e.actor(id)
	if err != nil {
		return e.reject(id, err)
	}
	return e.changeAltitude(a)
}

// SetAltitude moves an aircraft to the given band. Asking for the current band
// is rejected.
func (e *Engine) SetAltitude(id string, alt unit.Altitude) (Result, error) {
	a, err := e.actor(id)
	if err != nil {
		return e.reject(id, err)
	}
	if alt != unit.High && alt != unit.Low {
		return e.reject(id, fmt.Errorf("unknown altitude %q: %w", alt, ErrPreconditionFailed))
	}
	if a.Altitude() == alt {
		return e.reject(id, fmt.Errorf("%s already at %s: %w", id, alt, ErrPreconditionFailed))
	}
	return e.changeAltitude(a)
}

func (e *Engine) changeAltitude(a *unit.Aircraft) (Result, error) {
	a.ChangeAltitude()
	e.acted[a.ID] = true
	e.emit(core.Event{
		Kind:    core.EventAltitude,
		Actor:   a.ID,
		FromHex: int(a.Hex()),
		ToHex:   int(a.Hex()),
		Outcome: string(a.Altitude()),
		Message: fmt.Sprintf("%s ALTITUDE: %s", a.ID, a.Altitude()),
	})
	return e.accept(fmt.Sprintf("%s now at %s", a.ID, a.Altitude()))
}

// Fire attacks an enemy unit with the given weapon.
func (e *Engine) Fire(id, targetID string, w unit.WeaponType) (Result, error) {
	a, err := e.actor(id)
	if err != nil {
		return e.reject(id, err)
	}
	e.state = ResolvingPlayerAttack

	target, err := e.battalion.Find(targetID)
	if err != nil {
		return e.reject(id, fmt.Errorf("attack aborted: %w", err))
	}
	if !target.IsAlive() {
		return e.reject(id, fmt.Errorf("attack aborted: %s already destroyed: %w", targetID, ErrInvalidTarget))
	}
	los, err := e.graph.HasLineOfSight(a.Hex(), target.Location())
	if err != nil {
		return e.reject(id, err)
	}
	if !los {
		return e.reject(id, fmt.Errorf("attack aborted: no line of sight from hex %d to hex %d: %w",
			a.Hex(), target.Location(), ErrPreconditionFailed))
	}
	if err := unit.CanEngage(a, target, w, e.graph); err != nil {
		return e.reject(id, fmt.Errorf("attack aborted: %w", err))
	}

	cover := combat.CoverBonus(target, e.battalion.Units(), e.graph)
	skill := a.Skill(w)
	threshold := target.Defense(w)
	roll := e.die.Roll()
	outcome := combat.ResolveAttack(roll, skill, threshold, cover)

	msg := fmt.Sprintf("%s %s on %s: roll %d+%d vs %d+%d", id, w, targetID, roll, skill, threshold, cover)
	if outcome == combat.Hit {
		msg += " HIT CONFIRMED"
	} else {
		msg += " MISS"
	}
	e.acted[id] = true
	e.emit(core.Event{
		Kind:      core.EventAttack,
		Actor:     id,
		Target:    targetID,
		Weapon:    string(w),
		FromHex:   int(a.Hex()),
		ToHex:     int(target.Location()),
		Roll:      roll,
		Modifier:  skill,
		Threshold: threshold,
		Cover:     cover,
		Outcome:   outcome.String(),
		Message:   msg,
	})

	if outcome == combat.Hit && target.TakeHit() {
		e.emit(core.Event{
			Kind:    core.EventUnitDestroyed,
			Actor:   id,
			Target:  targetID,
			ToHex:   int(target.Location()),
			Message: fmt.Sprintf("%s TARGET DESTROYED", targetID),
		})
	}

	e.state = AwaitingPlayerAction
	if e.battalion.Destroyed() {
		e.complete(OutcomeBattalionDestroyed)
	}
	return e.accept(fmt.Sprintf("%s attack on %s: %s", id, targetID, outcome))
}

// Skip spends an aircraft's action doing nothing.
func (e *Engine) Skip(id string) (Result, error) {
	if _, err := e.actor(id); err != nil {
		return e.reject(id, err)
	}
	e.skip(id, "")
	return e.accept(fmt.Sprintf("%s holds", id))
}

func (e *Engine) skip(id, reason string) {
	e.acted[id] = true
	msg := fmt.Sprintf("%s HOLDS", id)
	if reason != "" {
		msg += " (" + reason + ")"
	}
	e.emit(core.Event{Kind: core.EventSkip, Actor: id, Outcome: reason, Message: msg})
}

// AdvanceTurn ends the player phase: pending aircraft skip, the enemy fires,
// the loiter countdown drops and the end conditions are checked.
func (e *Engine) AdvanceTurn() (Result, error) {
	if err := e.phase(); err != nil {
		return e.reject("", err)
	}
	for _, id := range e.Pending() {
		e.skip(id, "auto")
	}

	e.state = EnemyFirePhase
	e.enemyFire()
	if e.allAircraftDestroyed() {
		e.complete(OutcomeFailed)
		return e.accept("all aircraft lost")
	}

	e.state = TurnEnd
	e.loiter--
	e.emit(core.Event{
		Kind:    core.EventLoiter,
		Outcome: fmt.Sprintf("%d", e.loiter),
		Message: fmt.Sprintf("LOITER: %d turns remaining", e.loiter),
	})
	if e.loiter <= 0 {
		e.complete(outcomeForStatus(e.battalion.Status()))
		return e.accept("loiter expired")
	}

	e.recordRound()
	e.round++
	e.acted = make(map[string]bool)
	e.state = AwaitingPlayerAction
	return e.accept(fmt.Sprintf("round %d begins", e.round))
}

// enemyFire lets every living unit fire once at each aircraft it can engage.
func (e *Engine) enemyFire() {
	for _, enemy := range e.battalion.Alive() {
		for _, a := range e.aircraft {
			if a.Destroyed() {
				continue
			}
			if !e.canReach(enemy.Location(), a.Hex()) {
				continue
			}
			roll := e.die.Roll()
			outcome := combat.ResolveEnemyFire(roll, enemy.AttackValue, e.stressMargin)
			ev := core.Event{
				Kind:      core.EventEnemyFire,
				Actor:     enemy.ID,
				Target:    a.ID,
				FromHex:   int(enemy.Location()),
				ToHex:     int(a.Hex()),
				Roll:      roll,
				Threshold: enemy.AttackValue,
				Outcome:   outcome.String(),
			}
			switch outcome {
			case combat.StructureHit:
				a.TakeStructureHit()
				ev.Message = fmt.Sprintf("%s FIRES ON %s: roll %d, STRUCTURE HIT", enemy.ID, a.ID, roll)
			case combat.StressHit:
				// stress is non-negative so AddStress cannot fail here
				_ = a.Pilot.AddStress(1)
				ev.Message = fmt.Sprintf("%s FIRES ON %s: roll %d, PILOT STRESSED", enemy.ID, a.ID, roll)
			default:
				ev.Message = fmt.Sprintf("%s FIRES ON %s: roll %d, no effect", enemy.ID, a.ID, roll)
			}
			e.emit(ev)

			if outcome == combat.StructureHit && a.Destroyed() {
				e.emit(core.Event{
					Kind:    core.EventAircraftDestroyed,
					Actor:   enemy.ID,
					Target:  a.ID,
					ToHex:   int(a.Hex()),
					Message: fmt.Sprintf("%s DESTROYED", a.ID),
				})
			}
		}
	}
}

func (e *Engine) canReach(from, to hexgraph.Hex) bool {
	los, err := e.graph.HasLineOfSight(from, to)
	if err != nil || !los {
		return false
	}
	near, err := e.graph.SameOrAdjacent(from, to)
	return err == nil && near
}

func (e *Engine) allAircraftDestroyed() bool {
	for _, a := range e.aircraft {
		if !a.Destroyed() {
			return false
		}
	}
	return true
}

func (e *Engine) complete(o Outcome) {
	e.state = MissionComplete
	e.outcome = o
	e.emit(core.Event{
		Kind:    core.EventMissionComplete,
		Outcome: string(o),
		Message: fmt.Sprintf("MISSION COMPLETE: %s", o),
	})
	e.recordRound()
	if e.recorder != nil {
		e.recorder.RecordResult(core.MissionResult{
			MissionID:       e.missionID,
			Outcome:         string(o),
			Rounds:          e.round,
			BattalionHP:     e.battalion.RemainingHP(),
			BattalionStatus: string(e.battalion.Status()),
			EndTime:         e.now(),
		})
	}
	e.logger.Info("mission complete", "outcome", o, "rounds", e.round)
}

func (e *Engine) recordRound() {
	if e.recorder != nil {
		e.recorder.RecordRound(e.Snapshot())
	}
}

// phase checks that player commands are accepted right now.
func (e *Engine) phase() error {
	if e.state == MissionComplete {
		return fmt.Errorf("outcome %s: %w", e.outcome, ErrMissionComplete)
	}
	if e.state != AwaitingPlayerAction {
		return fmt.Errorf("state %s: %w", e.state, ErrWrongPhase)
	}
	return nil
}

// actor returns the aircraft that may act now.
func (e *Engine) actor(id string) (*unit.Aircraft, error) {
	if err := e.phase(); err != nil {
		return nil, err
	}
	a, err := e.findAircraft(id)
	if err != nil {
		return nil, err
	}
	if a.Destroyed() {
		return nil, fmt.Errorf("aircraft %s destroyed: %w", id, ErrInvalidTarget)
	}
	if e.acted[id] {
		return nil, fmt.Errorf("aircraft %s in round %d: %w", id, e.round, ErrAlreadyActed)
	}
	return a, nil
}

func (e *Engine) findAircraft(id string) (*unit.Aircraft, error) {
	for _, a := range e.aircraft {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("aircraft %q: %w", id, ErrInvalidTarget)
}

func (e *Engine) emit(ev core.Event) {
	e.seq++
	ev.MissionID = e.missionID
	ev.Seq = e.seq
	ev.Round = e.round
	ev.Phase = e.state.String()
	ev.Time = e.now()
	e.events = append(e.events, ev)

	e.logger.Debug(ev.Message, "kind", ev.Kind, "round", ev.Round, "seq", ev.Seq)
	if e.recorder != nil {
		e.recorder.RecordEvent(ev)
	}
}

func (e *Engine) accept(desc string) (Result, error) {
	r := Result{Accepted: true, Description: desc, Events: e.events, State: e.state}
	e.events = nil
	return r, nil
}

// reject restores the player phase and reports err. Absorbing and wrong-phase
// errors leave the state as it was.
func (e *Engine) reject(actor string, err error) (Result, error) {
	if e.state == ResolvingPlayerAttack {
		e.state = AwaitingPlayerAction
	}
	e.emit(core.Event{Kind: core.EventRejected, Actor: actor, Message: err.Error()})
	e.logger.Debug("command rejected", "actor", actor, "error", err)
	r := Result{Description: err.Error(), Events: e.events, State: e.state}
	e.events = nil
	return r, err
}

// IsRejection reports whether err is a game-rule rejection rather than a fault.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidHex, ErrInvalidMove, ErrPreconditionFailed, ErrInvalidTarget,
		ErrAlreadyActed, ErrWrongPhase, ErrMissionComplete,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
