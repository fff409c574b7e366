// Package postgres implements the storage.Backend interface using GORM/PostgreSQL
// with internal queues and a background DB writer goroutine.
package postgres

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/internal/database"
	"github.com/tal-engine/tal/internal/logging"
	"github.com/tal-engine/tal/internal/model"
	"github.com/tal-engine/tal/internal/model/convert"
	"github.com/tal-engine/tal/internal/queue"
	gormstorage "github.com/tal-engine/tal/internal/storage/gorm"
	"github.com/tal-engine/tal/pkg/core"
)

const (
	defaultFlushInterval = 2 * time.Second
	batchSize            = 500
)

// Dependencies holds all dependencies for the Postgres storage backend.
// When Manager has no connection yet, Init connects using DBConfig.
type Dependencies struct {
	Manager       *database.Manager
	DBConfig      config.DBConfig
	LogManager    *logging.SlogManager
	FlushInterval time.Duration
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Events *queue.Queue[model.CombatEvent]
	Rounds *queue.Queue[model.RoundState]
}

func newQueues() *queues {
	return &queues{
		Events: queue.New[model.CombatEvent](),
		Rounds: queue.New[model.RoundState](),
	}
}

// Backend implements storage.Backend using GORM/PostgreSQL with queue-based batch writes.
type Backend struct {
	deps      Dependencies
	queues    *queues
	missionID atomic.Uint64
	stopChan  chan struct{}
	wg        sync.WaitGroup
	flushMu   sync.Mutex
}

// New creates a new Postgres storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// Init connects if needed, runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	m := b.deps.Manager
	if m.DB == nil {
		if err := m.Connect(b.deps.DBConfig, false); err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}
	if err := m.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.wg.Add(1)
	go b.writer()
	return nil
}

// Close stops the writer goroutine and flushes what is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	close(b.stopChan)
	b.wg.Wait()
	b.stopChan = nil
	b.flush()
	return nil
}

// StartMission inserts the mission row synchronously so queued rows can reference it.
func (b *Backend) StartMission(m *core.Mission) error {
	row := convert.CoreToMission(*m)
	if err := b.db().Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new mission: %w", err)
	}
	b.missionID.Store(uint64(row.ID))
	b.deps.LogManager.WriteLog("postgres:StartMission", fmt.Sprintf("Mission %s stored with id %d", m.ID, row.ID), "INFO")
	return nil
}

// RecordEvent converts and queues a combat event.
func (b *Backend) RecordEvent(e *core.Event) error {
	id, err := b.currentMission()
	if err != nil {
		return err
	}
	b.queues.Events.Push(convert.CoreToCombatEvent(*e, id))
	return nil
}

// RecordRound converts and queues a round snapshot.
func (b *Backend) RecordRound(s *core.RoundSnapshot) error {
	id, err := b.currentMission()
	if err != nil {
		return err
	}
	b.queues.Rounds.Push(convert.CoreToRoundState(*s, id))
	return nil
}

// EndMission flushes the queues, then writes the result.
func (b *Backend) EndMission(r *core.MissionResult) error {
	id, err := b.currentMission()
	if err != nil {
		return err
	}
	b.flush()
	return gormstorage.WriteResult(b.db(), id, r)
}

func (b *Backend) db() *gorm.DB {
	return b.deps.Manager.DB
}

func (b *Backend) currentMission() (uint, error) {
	id := uint(b.missionID.Load())
	if id == 0 {
		return 0, gormstorage.ErrNoMission
	}
	return id, nil
}

// flush drains both queues into the database. EndMission and the writer
// goroutine never flush at the same time.
func (b *Backend) flush() {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	log := b.deps.LogManager.WriteLog
	for !b.queues.Events.Empty() {
		if !writeQueue(b.db(), b.queues.Events, "combat events", log) {
			break
		}
	}
	for !b.queues.Rounds.Empty() {
		if !writeQueue(b.db(), b.queues.Rounds, "round states", log) {
			break
		}
	}
}

// writeQueue writes one batch from a queue in a transaction. On failure the
// batch is requeued and false is returned.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string)) bool {
	if q.Empty() {
		return true
	}

	items := q.Drain(batchSize)
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&items).Error
	})
	if err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		q.Push(items...)
		return false
	}
	return true
}

// writer periodically drains the queues into the DB until Close.
func (b *Backend) writer() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			b.flush()
		}
	}
}
