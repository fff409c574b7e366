package worker

import (
	"fmt"

	"github.com/tal-engine/tal/internal/dispatcher"
	"github.com/tal-engine/tal/internal/parser"
	"github.com/tal-engine/tal/pkg/core"
)

// recordBuffer holds one mission's worth of events several times over.
const recordBuffer = 1000

// RegisterHandlers registers the :RECORD: handler and binds the manager to d as
// the sink for engine records. Records share one queue so the backend sees
// them in emission order; the queue blocks rather than drops.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(parser.CmdRecord, m.handleRecord, dispatcher.Buffered(recordBuffer), dispatcher.Blocking())
	m.dispatch = d.Dispatch
}

func (m *Manager) handleRecord(e dispatcher.Event) (any, error) {
	if m.backend == nil {
		return nil, nil
	}

	var err error
	switch p := e.Payload.(type) {
	case core.Mission:
		err = m.backend.StartMission(&p)
	case core.Event:
		err = m.backend.RecordEvent(&p)
	case core.RoundSnapshot:
		err = m.backend.RecordRound(&p)
	case core.MissionResult:
		err = m.backend.EndMission(&p)
	default:
		err = fmt.Errorf("%T: %w", e.Payload, ErrUnknownRecord)
	}

	if err != nil {
		m.failed.Add(1)
		return nil, fmt.Errorf("failed to record %T: %w", e.Payload, err)
	}
	m.written.Add(1)
	return nil, nil
}

func (m *Manager) record(payload any) {
	if m.dispatch == nil {
		return
	}
	if _, err := m.dispatch(dispatcher.Event{Command: parser.CmdRecord, Payload: payload}); err != nil {
		m.writeLog(parser.CmdRecord, fmt.Sprintf("Error queueing record: %v", err), "ERROR")
	}
}

// StartMission queues the mission header ahead of its events.
func (m *Manager) StartMission(mission core.Mission) {
	m.record(mission)
}

// RecordEvent implements engine.Recorder.
func (m *Manager) RecordEvent(e core.Event) {
	m.record(e)
	if m.deps.MissionContext != nil {
		m.deps.MissionContext.SetProgress(e.Round, e.Phase)
	}
}

// RecordRound implements engine.Recorder.
func (m *Manager) RecordRound(s core.RoundSnapshot) {
	m.record(s)
}

// RecordResult implements engine.Recorder.
func (m *Manager) RecordResult(r core.MissionResult) {
	m.record(r)
}
