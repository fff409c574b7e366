// pkg/core/mission.go
package core

import "time"

// Mission identifies a recorded mission.
type Mission struct {
	ID        string
	Name      string
	Board     string
	DieSides  int
	Loiter    int
	StartTime time.Time
}

// MissionResult is the final record of a mission once it reaches a terminal state.
type MissionResult struct {
	MissionID       string
	Outcome         string
	Rounds          int
	BattalionHP     int
	BattalionStatus string
	EndTime         time.Time
}

// AircraftState is a point-in-time view of one aircraft and its pilot.
type AircraftState struct {
	ID          string
	Name        string
	Pilot       string
	Hex         int
	Altitude    string
	Damage      int
	Limit       int
	Destroyed   bool
	Stress      int
	Coolness    int
	StrikeSkill int
	CannonSkill int
}

// EnemyState is a point-in-time view of one ground unit.
type EnemyState struct {
	ID    string
	Name  string
	Hex   int
	HP    int
	Alive bool
}

// RoundSnapshot captures the board at the end of a round.
type RoundSnapshot struct {
	MissionID       string
	Round           int
	State           string
	Loiter          int
	Aircraft        []AircraftState
	Enemies         []EnemyState
	BattalionHP     int
	BattalionStatus string
	Time            time.Time
}
