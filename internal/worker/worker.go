// Package worker moves the mission record from the engine to storage off the
// game loop.
package worker

import (
	"fmt"
	"sync/atomic"

	"github.com/tal-engine/tal/internal/dispatcher"
	"github.com/tal-engine/tal/internal/logging"
	"github.com/tal-engine/tal/internal/mission"
	"github.com/tal-engine/tal/internal/storage"
)

// ErrUnknownRecord is returned for a :RECORD: payload of an unexpected type.
var ErrUnknownRecord = fmt.Errorf("unknown record payload")

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	LogManager     *logging.SlogManager
	MissionContext *mission.Context
}

// Stats counts what reached the backend.
type Stats struct {
	Written uint64
	Failed  uint64
}

// Manager forwards records to one backend.
type Manager struct {
	deps     Dependencies
	backend  storage.Backend
	dispatch func(dispatcher.Event) (any, error)

	written atomic.Uint64
	failed  atomic.Uint64
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// Stats returns the write counters.
func (m *Manager) Stats() Stats {
	return Stats{Written: m.written.Load(), Failed: m.failed.Load()}
}

func (m *Manager) writeLog(function, data, level string) {
	if m.deps.LogManager != nil {
		m.deps.LogManager.WriteLog(function, data, level)
	}
}
