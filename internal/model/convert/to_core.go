package convert

import (
	"encoding/json"

	"github.com/tal-engine/tal/internal/model"
	"github.com/tal-engine/tal/pkg/core"
)

// CombatEventToCore converts a stored row back to a core.Event. missionUUID
// replaces the numeric foreign key.
func CombatEventToCore(e model.CombatEvent, missionUUID string) core.Event {
	return core.Event{
		MissionID: missionUUID,
		Seq:       e.Seq,
		Round:     e.Round,
		Phase:     e.Phase,
		Kind:      core.EventKind(e.Kind),
		Actor:     e.Actor,
		Target:    e.Target,
		Weapon:    e.Weapon,
		FromHex:   e.FromHex,
		ToHex:     e.ToHex,
		Roll:      e.Roll,
		Modifier:  e.Modifier,
		Threshold: e.Threshold,
		Cover:     e.Cover,
		Outcome:   e.Outcome,
		Message:   e.Message,
		Time:      e.Time,
	}
}

// RoundStateToCore converts a stored round back to a snapshot. Malformed unit
// JSON yields empty unit lists.
func RoundStateToCore(s model.RoundState, missionUUID string) core.RoundSnapshot {
	snap := core.RoundSnapshot{
		MissionID:       missionUUID,
		Round:           s.Round,
		State:           s.State,
		Loiter:          s.Loiter,
		BattalionHP:     s.BattalionHP,
		BattalionStatus: s.BattalionStatus,
		Time:            s.Time,
	}
	_ = json.Unmarshal(s.Aircraft, &snap.Aircraft)
	_ = json.Unmarshal(s.Enemies, &snap.Enemies)
	return snap
}

// MissionToCore converts a stored mission row.
func MissionToCore(m model.Mission) core.Mission {
	return core.Mission{
		ID:        m.MissionUUID,
		Name:      m.Name,
		Board:     m.Board,
		DieSides:  m.DieSides,
		Loiter:    m.Loiter,
		StartTime: m.StartTime,
	}
}

// MissionResultToCore converts a stored result row.
func MissionResultToCore(r model.MissionResult, missionUUID string) core.MissionResult {
	return core.MissionResult{
		MissionID:       missionUUID,
		Outcome:         r.Outcome,
		Rounds:          r.Rounds,
		BattalionHP:     r.BattalionHP,
		BattalionStatus: r.BattalionStatus,
		EndTime:         r.EndTime,
	}
}
