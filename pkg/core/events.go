// pkg/core/events.go
package core

import (
	"time"
)

// EventKind classifies a combat log entry.
type EventKind string

const (
	EventMove              EventKind = "move"
	EventAltitude          EventKind = "altitude"
	EventAttack            EventKind = "attack"
	EventSkip              EventKind = "skip"
	EventEnemyFire         EventKind = "enemy_fire"
	EventUnitDestroyed     EventKind = "unit_destroyed"
	EventAircraftDestroyed EventKind = "aircraft_destroyed"
	EventLoiter            EventKind = "loiter"
	EventMissionComplete   EventKind = "mission_complete"
	EventRejected          EventKind = "rejected"
)

// Event is one entry of the combat log.
// Roll, Modifier, Threshold and Cover are only meaningful for attack and
// enemy_fire events; FromHex/ToHex only for moves.
type Event struct {
	MissionID string
	Seq       uint
	Round     int
	Phase     string
	Kind      EventKind
	Actor     string
	Target    string
	Weapon    string
	FromHex   int
	ToHex     int
	Roll      int
	Modifier  int
	Threshold int
	Cover     int
	Outcome   string
	Message   string
	Time      time.Time
}
