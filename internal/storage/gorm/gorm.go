// Package gormstorage implements storage.Backend with synchronous GORM writes.
// It is dialect-agnostic; the sqlite backend embeds it.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/tal-engine/tal/internal/database"
	"github.com/tal-engine/tal/internal/model"
	"github.com/tal-engine/tal/internal/model/convert"
	"github.com/tal-engine/tal/pkg/core"
)

// ErrNoMission is returned when records arrive before StartMission.
var ErrNoMission = errors.New("no mission started")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend writes every record straight to the database.
type Backend struct {
	deps Dependencies

	mu        sync.Mutex
	missionID uint
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// MissionRowID returns the database id of the current mission, 0 before StartMission.
func (b *Backend) MissionRowID() uint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.missionID
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("init gorm backend: no connection")
	}
	if err := database.Migrate(b.deps.DB); err != nil {
		return err
	}
	b.deps.Logger.Debug("Schema migrated", "dialect", b.deps.DB.Name())
	return nil
}

// Close is a no-op; the connection belongs to whoever opened it.
func (b *Backend) Close() error {
	return nil
}

// StartMission inserts the mission row.
func (b *Backend) StartMission(m *core.Mission) error {
	row := convert.CoreToMission(*m)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new mission: %w", err)
	}

	b.mu.Lock()
	b.missionID = row.ID
	b.mu.Unlock()

	b.deps.Logger.Info("Mission row created", "missionId", m.ID, "rowId", row.ID)
	return nil
}

// RecordEvent inserts one combat event.
func (b *Backend) RecordEvent(e *core.Event) error {
	id, err := b.currentMission()
	if err != nil {
		return err
	}
	row := convert.CoreToCombatEvent(*e, id)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert combat event: %w", err)
	}
	return nil
}

// RecordRound inserts one round snapshot.
func (b *Backend) RecordRound(s *core.RoundSnapshot) error {
	id, err := b.currentMission()
	if err != nil {
		return err
	}
	row := convert.CoreToRoundState(*s, id)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert round state: %w", err)
	}
	return nil
}

// EndMission stores the result and closes the mission row.
func (b *Backend) EndMission(r *core.MissionResult) error {
	id, err := b.currentMission()
	if err != nil {
		return err
	}
	return WriteResult(b.deps.DB, id, r)
}

func (b *Backend) currentMission() (uint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.missionID == 0 {
		return 0, ErrNoMission
	}
	return b.missionID, nil
}

// WriteResult inserts the mission result and stamps end time and outcome on
// the mission row in one transaction.
func WriteResult(db *gorm.DB, missionID uint, r *core.MissionResult) error {
	return db.Transaction(func(tx *gorm.DB) error {
		row := convert.CoreToMissionResult(*r, missionID)
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert mission result: %w", err)
		}
		err := tx.Model(&model.Mission{}).Where("id = ?", missionID).Updates(map[string]any{
			"end_time": convert.EndTime(*r),
			"outcome":  r.Outcome,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update mission: %w", err)
		}
		return nil
	})
}
