package gormstorage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tal-engine/tal/internal/model"
	"github.com/tal-engine/tal/internal/model/convert"
	"github.com/tal-engine/tal/pkg/core"
)

// ErrMissionNotFound is returned by Load when no mission matches.
var ErrMissionNotFound = errors.New("mission not found")

// Recording is a stored mission read back as core records. Result is nil
// for a mission that never finished.
type Recording struct {
	Mission core.Mission
	Events  []core.Event
	Rounds  []core.RoundSnapshot
	Result  *core.MissionResult
}

// Load reads one mission back. An empty missionUUID selects the most recently
// started mission.
func Load(db *gorm.DB, missionUUID string) (*Recording, error) {
	var m model.Mission
	q := db.Order("start_time desc, id desc")
	if missionUUID != "" {
		q = q.Where("mission_uuid = ?", missionUUID)
	}
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%q: %w", missionUUID, ErrMissionNotFound)
		}
		return nil, fmt.Errorf("failed to query mission: %w", err)
	}

	rec := &Recording{Mission: convert.MissionToCore(m)}

	var events []model.CombatEvent
	if err := db.Where("mission_id = ?", m.ID).Order("seq").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query combat events: %w", err)
	}
	for _, e := range events {
		rec.Events = append(rec.Events, convert.CombatEventToCore(e, m.MissionUUID))
	}

	var rounds []model.RoundState
	if err := db.Where("mission_id = ?", m.ID).Order("round").Find(&rounds).Error; err != nil {
		return nil, fmt.Errorf("failed to query round states: %w", err)
	}
	for _, s := range rounds {
		rec.Rounds = append(rec.Rounds, convert.RoundStateToCore(s, m.MissionUUID))
	}

	var result model.MissionResult
	err := db.Where("mission_id = ?", m.ID).Limit(1).Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query mission result: %w", err)
	}
	if result.ID != 0 {
		r := convert.MissionResultToCore(result, m.MissionUUID)
		rec.Result = &r
	}
	return rec, nil
}
