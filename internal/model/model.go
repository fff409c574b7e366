package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels lists every table of the recording schema, parents first.
var DatabaseModels = []interface{}{
	&Mission{},
	&CombatEvent{},
	&RoundState{},
	&MissionResult{},
}

// Mission is one recorded mission. MissionUUID is the id carried by core records.
type Mission struct {
	gorm.Model
	MissionUUID string       `json:"missionId" gorm:"size:36;uniqueIndex:idx_mission_uuid"`
	Name        string       `json:"name" gorm:"size:200"`
	Board       string       `json:"board" gorm:"size:32"`
	DieSides    int          `json:"dieSides"`
	Loiter      int          `json:"loiter"`
	StartTime   time.Time    `json:"startTime" gorm:"type:timestamptz;index:idx_mission_start"`
	EndTime     sql.NullTime `json:"endTime" gorm:"type:timestamptz"`
	Outcome     string       `json:"outcome" gorm:"size:32"`

	CombatEvents []CombatEvent
	RoundStates  []RoundState
}

func (*Mission) TableName() string {
	return "missions"
}

// CombatEvent is one engine event: a move, an attack roll, enemy fire, a rejection.
type CombatEvent struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time" gorm:"type:timestamptz;"`
	MissionID uint      `json:"missionId" gorm:"index:idx_combatevent_mission_id"`
	Mission   Mission   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	Seq       uint      `json:"seq" gorm:"index:idx_combatevent_seq"`
	Round     int       `json:"round" gorm:"index:idx_combatevent_round"`
	Phase     string    `json:"phase" gorm:"size:32"`
	Kind      string    `json:"kind" gorm:"size:32"`
	Actor     string    `json:"actor" gorm:"size:64"`
	Target    string    `json:"target" gorm:"size:64"`
	Weapon    string    `json:"weapon" gorm:"size:16"`
	FromHex   int       `json:"fromHex"`
	ToHex     int       `json:"toHex"`
	Roll      int       `json:"roll"`
	Modifier  int       `json:"modifier"`
	Threshold int       `json:"threshold"`
	Cover     int       `json:"cover"`
	Outcome   string    `json:"outcome" gorm:"size:32"`
	Message   string    `json:"message"`
}

func (*CombatEvent) TableName() string {
	return "combat_events"
}

// RoundState is the board at the end of a round. Unit states are stored as JSON.
type RoundState struct {
	ID              uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time            time.Time      `json:"time" gorm:"type:timestamptz;"`
	MissionID       uint           `json:"missionId" gorm:"index:idx_roundstate_mission_id"`
	Mission         Mission        `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	Round           int            `json:"round"`
	State           string         `json:"state" gorm:"size:32"`
	Loiter          int            `json:"loiter"`
	BattalionHP     int            `json:"battalionHp"`
	BattalionStatus string         `json:"battalionStatus" gorm:"size:16"`
	Aircraft        datatypes.JSON `json:"aircraft" gorm:"type:jsonb;default:'[]'"`
	Enemies         datatypes.JSON `json:"enemies" gorm:"type:jsonb;default:'[]'"`
}

func (*RoundState) TableName() string {
	return "round_states"
}

// MissionResult is the final record of a mission.
type MissionResult struct {
	ID              uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	MissionID       uint      `json:"missionId" gorm:"uniqueIndex:idx_missionresult_mission_id"`
	Mission         Mission   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	Outcome         string    `json:"outcome" gorm:"size:32"`
	Rounds          int       `json:"rounds"`
	BattalionHP     int       `json:"battalionHp"`
	BattalionStatus string    `json:"battalionStatus" gorm:"size:16"`
	EndTime         time.Time `json:"endTime" gorm:"type:timestamptz;"`
}

func (*MissionResult) TableName() string {
	return "mission_results"
}
