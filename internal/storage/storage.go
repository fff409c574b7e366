// Package storage defines the recording backends a mission is written to.
package storage

import (
	"errors"
	"fmt"

	"github.com/tal-engine/tal/pkg/core"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Mission management
	StartMission(mission *core.Mission) error
	EndMission(result *core.MissionResult) error

	// Recording
	RecordEvent(e *core.Event) error
	RecordRound(s *core.RoundSnapshot) error
}

// Exporter is an optional interface for backends that produce a file
// once a mission ends.
type Exporter interface {
	GetExportedFilePath() string
}

// Fanout writes every record to each of its backends in order. A failing
// backend does not stop the others; errors are joined.
type Fanout struct {
	backends []Backend
}

// NewFanout combines backends. Nil entries are skipped.
func NewFanout(backends ...Backend) *Fanout {
	f := &Fanout{}
	for _, b := range backends {
		if b != nil {
			f.backends = append(f.backends, b)
		}
	}
	return f
}

// Backends returns the wrapped backends.
func (f *Fanout) Backends() []Backend {
	return f.backends
}

func (f *Fanout) each(op string, fn func(Backend) error) error {
	var errs []error
	for _, b := range f.backends {
		if err := fn(b); err != nil {
			errs = append(errs, fmt.Errorf("%s %T: %w", op, b, err))
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) Init() error {
	return f.each("init", Backend.Init)
}

func (f *Fanout) Close() error {
	return f.each("close", Backend.Close)
}

func (f *Fanout) StartMission(m *core.Mission) error {
	return f.each("start mission", func(b Backend) error { return b.StartMission(m) })
}

func (f *Fanout) EndMission(r *core.MissionResult) error {
	return f.each("end mission", func(b Backend) error { return b.EndMission(r) })
}

func (f *Fanout) RecordEvent(e *core.Event) error {
	return f.each("record event", func(b Backend) error { return b.RecordEvent(e) })
}

func (f *Fanout) RecordRound(s *core.RoundSnapshot) error {
	return f.each("record round", func(b Backend) error { return b.RecordRound(s) })
}

// GetExportedFilePath returns the first export path among the backends.
func (f *Fanout) GetExportedFilePath() string {
	for _, b := range f.backends {
		if e, ok := b.(Exporter); ok {
			if p := e.GetExportedFilePath(); p != "" {
				return p
			}
		}
	}
	return ""
}
