package mission

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tal-engine/tal/pkg/core"
)

// Context holds the current mission and the progress of its turn loop.
// The game loop writes it; loggers and recorders read it.
type Context struct {
	mu      sync.RWMutex
	Mission *core.Mission
	round   int
	phase   string
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{
		Mission: &core.Mission{Name: "No mission loaded"},
	}
}

// Start begins a new mission with a fresh ID.
func (mc *Context) Start(name, board string, dieSides, loiter int) *core.Mission {
	m := &core.Mission{
		ID:        uuid.NewString(),
		Name:      name,
		Board:     board,
		DieSides:  dieSides,
		Loiter:    loiter,
		StartTime: time.Now().UTC(),
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Mission = m
	mc.round = 1
	mc.phase = ""
	return m
}

// GetMission returns the current mission
func (mc *Context) GetMission() *core.Mission {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.Mission
}

// SetProgress records the round and phase the engine is in.
func (mc *Context) SetProgress(round int, phase string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.round = round
	mc.phase = phase
}

// Progress returns the last recorded round and phase.
func (mc *Context) Progress() (int, string) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.round, mc.phase
}

// LogAttrs returns the attributes stamped on every log record.
func (mc *Context) LogAttrs() []slog.Attr {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	if mc.Mission.ID == "" {
		return nil
	}
	return []slog.Attr{
		slog.String("mission", mc.Mission.Name),
		slog.Int("round", mc.round),
		slog.String("phase", mc.phase),
	}
}
