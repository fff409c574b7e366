package memory

import (
	"fmt"
	"sync"

	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/pkg/core"
)

// Backend keeps the mission record in memory and exports it to JSON when the
// mission ends.
type Backend struct {
	cfg     config.MemoryConfig
	mission *core.Mission

	events []core.Event
	rounds []core.RoundSnapshot
	result *core.MissionResult

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartMission begins recording a new mission
func (b *Backend) StartMission(mission *core.Mission) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mission = mission
	b.events = nil
	b.rounds = nil
	b.result = nil
	b.lastExportPath = ""
	return nil
}

// RecordEvent appends an engine event.
func (b *Backend) RecordEvent(e *core.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mission == nil {
		return errNoMission
	}
	b.events = append(b.events, *e)
	return nil
}

// RecordRound appends an end-of-round snapshot.
func (b *Backend) RecordRound(s *core.RoundSnapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mission == nil {
		return errNoMission
	}
	b.rounds = append(b.rounds, *s)
	return nil
}

// EndMission stores the result and exports the mission data
func (b *Backend) EndMission(result *core.MissionResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mission == nil {
		return errNoMission
	}
	b.result = result
	return b.exportJSON()
}

// Report returns the after-action report built from what has been recorded so far.
func (b *Backend) Report() Report {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.buildReport()
}

// GetExportedFilePath returns the path of the last export, or "" before one.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

var errNoMission = fmt.Errorf("no mission started")
