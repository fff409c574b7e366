// Package convert maps core records to GORM rows and back.
package convert

import (
	"database/sql"
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/tal-engine/tal/internal/model"
	"github.com/tal-engine/tal/pkg/core"
)

// toJSON marshals v for a jsonb column, falling back to an empty array.
func toJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// CoreToMission converts a core.Mission to a GORM model.Mission.
// core.Mission.ID maps to MissionUUID; the row ID is assigned by the database.
func CoreToMission(m core.Mission) model.Mission {
	return model.Mission{
		MissionUUID: m.ID,
		Name:        m.Name,
		Board:       m.Board,
		DieSides:    m.DieSides,
		Loiter:      m.Loiter,
		StartTime:   m.StartTime,
	}
}

// CoreToCombatEvent converts a core.Event. missionID is the mission row ID.
func CoreToCombatEvent(e core.Event, missionID uint) model.CombatEvent {
	return model.CombatEvent{
		Time:      e.Time,
		MissionID: missionID,
		Seq:       e.Seq,
		Round:     e.Round,
		Phase:     e.Phase,
		Kind:      string(e.Kind),
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
	}
}

// CoreToRoundState converts a core.RoundSnapshot. missionID is the mission row ID.
func CoreToRoundState(s core.RoundSnapshot, missionID uint) model.RoundState {
	return model.RoundState{
		Time:            s.Time,
		MissionID:       missionID,
		Round:           s.Round,
		State:           s.State,
		Loiter:          s.Loiter,
		BattalionHP:     s.BattalionHP,
		BattalionStatus: s.BattalionStatus,
		Aircraft:        toJSON(s.Aircraft),
		Enemies:         toJSON(s.Enemies),
	}
}

// CoreToMissionResult converts a core.MissionResult. missionID is the mission row ID.
func CoreToMissionResult(r core.MissionResult, missionID uint) model.MissionResult {
	return model.MissionResult{
		MissionID:       missionID,
		Outcome:         r.Outcome,
		Rounds:          r.Rounds,
		BattalionHP:     r.BattalionHP,
		BattalionStatus: r.BattalionStatus,
		EndTime:         r.EndTime,
	}
}

// EndTime wraps a result end time for the mission row.
func EndTime(r core.MissionResult) sql.NullTime {
	return sql.NullTime{Time: r.EndTime, Valid: !r.EndTime.IsZero()}
}
