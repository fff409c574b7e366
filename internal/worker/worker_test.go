package worker

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tal-engine/tal/internal/dispatcher"
	"github.com/tal-engine/tal/internal/engine"
	"github.com/tal-engine/tal/internal/mission"
	"github.com/tal-engine/tal/internal/parser"
	"github.com/tal-engine/tal/internal/storage"
	"github.com/tal-engine/tal/pkg/core"
)

// mockLogger implements dispatcher.Logger for testing
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *mockLogger) add(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *mockLogger) Debug(msg string, _ ...any) { l.add(msg) }
func (l *mockLogger) Info(msg string, _ ...any)  { l.add(msg) }
func (l *mockLogger) Error(msg string, _ ...any) { l.add(msg) }

// mockBackend implements storage.Backend for testing
type mockBackend struct {
	mu      sync.Mutex
	calls   []string
	mission *core.Mission
	events  []core.Event
	rounds  []core.RoundSnapshot
	result  *core.MissionResult
	failOn  string
}

func (b *mockBackend) call(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, name)
	if name == b.failOn {
		return errors.New("backend down")
	}
	return nil
}

func (b *mockBackend) Init() error  { return nil }
func (b *mockBackend) Close() error { return nil }

func (b *mockBackend) StartMission(m *core.Mission) error {
	b.mission = m
	return b.call("start")
}

func (b *mockBackend) RecordEvent(e *core.Event) error {
	b.events = append(b.events, *e)
	return b.call("event")
}

func (b *mockBackend) RecordRound(s *core.RoundSnapshot) error {
	b.rounds = append(b.rounds, *s)
	return b.call("round")
}

func (b *mockBackend) EndMission(r *core.MissionResult) error {
	b.result = r
	return b.call("end")
}

var (
	_ storage.Backend = (*mockBackend)(nil)
	_ engine.Recorder = (*Manager)(nil)
)

func newTestManager(t *testing.T, backend storage.Backend) (*Manager, *dispatcher.Dispatcher, *mockLogger) {
	t.Helper()
	logger := &mockLogger{}
	d, err := dispatcher.New(logger)
	require.NoError(t, err)
	m := NewManager(Dependencies{MissionContext: mission.NewContext()}, backend)
	m.RegisterHandlers(d)
	return m, d, logger
}

func TestRegisterHandlers(t *testing.T) {
	_, d, _ := newTestManager(t, &mockBackend{})
	defer d.Close()
	assert.True(t, d.HasHandler(parser.CmdRecord))
}

func TestRecordsInOrder(t *testing.T) {
	b := &mockBackend{}
	m, d, _ := newTestManager(t, b)

	m.StartMission(core.Mission{ID: "m-1"})
	for i := 1; i <= 50; i++ {
		m.RecordEvent(core.Event{Seq: uint(i), Round: 1, Phase: "AWAITING_PLAYER_ACTION"})
	}
	m.RecordRound(core.RoundSnapshot{Round: 1})
	m.RecordResult(core.MissionResult{Outcome: "SURVIVED"})
	d.Close()

	require.Len(t, b.calls, 53)
	assert.Equal(t, "start", b.calls[0])
	assert.Equal(t, "round", b.calls[51])
	assert.Equal(t, "end", b.calls[52])
	for i, e := range b.events {
		assert.Equal(t, uint(i+1), e.Seq)
	}
	assert.Equal(t, "m-1", b.mission.ID)
	assert.Equal(t, "SURVIVED", b.result.Outcome)
	assert.Equal(t, Stats{Written: 53}, m.Stats())
}

func TestRecordEvent_UpdatesMissionContext(t *testing.T) {
	m, d, _ := newTestManager(t, &mockBackend{})
	defer d.Close()

	m.RecordEvent(core.Event{Round: 3, Phase: "TURN_END"})
	round, phase := m.deps.MissionContext.Progress()
	assert.Equal(t, 3, round)
	assert.Equal(t, "TURN_END", phase)
}

func TestBackendFailure_IsCountedAndLogged(t *testing.T) {
	b := &mockBackend{failOn: "event"}
	m, d, logger := newTestManager(t, b)

	m.RecordEvent(core.Event{Seq: 1})
	m.RecordRound(core.RoundSnapshot{})
	d.Close()

	assert.Equal(t, Stats{Written: 1, Failed: 1}, m.Stats())
	logger.mu.Lock()
	defer logger.mu.Unlock()
	assert.Contains(t, logger.messages, "buffered event failed")
}

func TestHandleRecord_UnknownPayload(t *testing.T) {
	m := NewManager(Dependencies{}, &mockBackend{})
	_, err := m.handleRecord(dispatcher.Event{Command: parser.CmdRecord, Payload: 42})
	assert.ErrorIs(t, err, ErrUnknownRecord)
}

func TestNilBackend(t *testing.T) {
	m := NewManager(Dependencies{}, nil)
	out, err := m.handleRecord(dispatcher.Event{Payload: core.Event{}})
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestRecordWithoutDispatcher(t *testing.T) {
	m := NewManager(Dependencies{}, &mockBackend{})
	assert.NotPanics(t, func() { m.RecordEvent(core.Event{}) })
}

func TestRecordAfterClose_Logs(t *testing.T) {
	m, d, _ := newTestManager(t, &mockBackend{})
	d.Close()
	assert.NotPanics(t, func() { m.RecordResult(core.MissionResult{}) })
	assert.Zero(t, m.Stats().Written)
}
