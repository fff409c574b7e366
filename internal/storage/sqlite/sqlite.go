// Package sqlitestorage records into an in-memory SQLite database and dumps it
// to disk via VACUUM INTO. Writes go through the embedded GORM backend.
package sqlitestorage

import (
	"fmt"
	"sync"
	"time"

	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/internal/database"
	"github.com/tal-engine/tal/internal/logging"
	gormstorage "github.com/tal-engine/tal/internal/storage/gorm"
	"github.com/tal-engine/tal/pkg/core"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *database.Manager
	cfg      config.SQLiteConfig
	log      *logging.SlogManager
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// New creates a new SQLite storage backend over a fresh in-memory database.
func New(cfg config.SQLiteConfig, db *database.Manager, logManager *logging.SlogManager) (*Backend, error) {
	if err := db.ConnectSQLite(database.MemoryPath); err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	gormBackend := gormstorage.New(gormstorage.Dependencies{
		DB:     db.DB,
		Logger: logManager.Logger(),
	})

	return &Backend{
		Backend:  gormBackend,
		db:       db,
		cfg:      cfg,
		log:      logManager,
		stopChan: make(chan struct{}),
	}, nil
}

// Init migrates the schema and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}

	return nil
}

// EndMission records the result and dumps immediately so the file is complete.
func (b *Backend) EndMission(r *core.MissionResult) error {
	if err := b.Backend.EndMission(r); err != nil {
		return err
	}
	return b.dump()
}

// Close stops the dump goroutine, writes a final dump and closes the database.
func (b *Backend) Close() error {
	var err error
	b.once.Do(func() {
		close(b.stopChan)
		b.wg.Wait()
		if dumpErr := b.dump(); dumpErr != nil {
			err = dumpErr
		}
		if closeErr := b.db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}

// GetExportedFilePath returns the dump file, or "" when dumping is disabled.
func (b *Backend) GetExportedFilePath() string {
	return b.cfg.DumpPath
}

func (b *Backend) dump() error {
	if b.cfg.DumpPath == "" {
		return nil
	}
	if err := b.db.Dump(b.cfg.DumpPath); err != nil {
		b.log.WriteLog("sqlite:dump", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
		return err
	}
	return nil
}

// dumpLoop periodically dumps the in-memory SQLite database to disk.
// VACUUM INTO creates a point-in-time snapshot, so writers are not paused.
func (b *Backend) dumpLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.dump(); err == nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
			}
		}
	}
}
