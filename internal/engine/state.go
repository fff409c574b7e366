package engine

import (
	"errors"

	"github.com/tal-engine/tal/internal/hexgraph"
	"github.com/tal-engine/tal/internal/unit"
)

// State is the phase the engine is in.
type State int

const (
	AwaitingPlayerAction State = iota
	ResolvingPlayerAttack
	EnemyFirePhase
	TurnEnd
	MissionComplete
)

func (s State) String() string {
	switch s {
	case AwaitingPlayerAction:
		return "AWAITING_PLAYER_ACTION"
	case ResolvingPlayerAttack:
		return "RESOLVING_PLAYER_ATTACK"
	case EnemyFirePhase:
		return "ENEMY_FIRE"
	case TurnEnd:
		return "TURN_END"
	case MissionComplete:
		return "MISSION_COMPLETE"
	}
	return "UNKNOWN"
}

// Outcome is set once the mission reaches MissionComplete.
type Outcome string

const (
	OutcomeNone               Outcome = ""
	OutcomeFailed             Outcome = "FAILED"
	OutcomeBattalionDestroyed Outcome = "BATTALION_DESTROYED"
	OutcomeDestroyed          Outcome = "DESTROYED"
	OutcomeReduced            Outcome = "REDUCED"
	OutcomeSurvived           Outcome = "SURVIVED"
)

func outcomeForStatus(s unit.Status) Outcome {
	switch s {
	case unit.StatusDestroyed:
		return OutcomeDestroyed
	case unit.StatusReduced:
		return OutcomeReduced
	default:
		return OutcomeSurvived
	}
}

// Errors returned by engine commands. All of them leave the engine unchanged.
var (
	ErrInvalidHex         = hexgraph.ErrInvalidHex
	ErrInvalidMove        = unit.ErrInvalidMove
	ErrPreconditionFailed = unit.ErrPreconditionFailed
	ErrInvalidTarget      = unit.ErrInvalidTarget
	ErrAlreadyActed       = errors.New("aircraft already acted this round")
	ErrWrongPhase         = errors.New("command not allowed in this phase")
	ErrMissionComplete    = errors.New("mission complete")
	ErrInvalidSetup       = errors.New("invalid engine setup")
)
