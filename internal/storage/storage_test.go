package storage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tal-engine/tal/internal/storage"
	"github.com/tal-engine/tal/pkg/core"
)

type stubBackend struct {
	calls  []string
	fail   error
	export string
}

func (s *stubBackend) record(op string) error {
	s.calls = append(s.calls, op)
	return s.fail
}

func (s *stubBackend) Init() error                           { return s.record("init") }
func (s *stubBackend) Close() error                          { return s.record("close") }
func (s *stubBackend) StartMission(*core.Mission) error      { return s.record("start") }
func (s *stubBackend) EndMission(*core.MissionResult) error  { return s.record("end") }
func (s *stubBackend) RecordEvent(*core.Event) error         { return s.record("event") }
func (s *stubBackend) RecordRound(*core.RoundSnapshot) error { return s.record("round") }
func (s *stubBackend) GetExportedFilePath() string           { return s.export }

func TestFanout_ReachesEveryBackend(t *testing.T) {
	a, b := &stubBackend{}, &stubBackend{}
	f := storage.NewFanout(a, nil, b)
	require.Len(t, f.Backends(), 2)

	require.NoError(t, f.Init())
	require.NoError(t, f.StartMission(&core.Mission{}))
	require.NoError(t, f.RecordEvent(&core.Event{}))
	require.NoError(t, f.RecordRound(&core.RoundSnapshot{}))
	require.NoError(t, f.EndMission(&core.MissionResult{}))
	require.NoError(t, f.Close())

	want := []string{"init", "start", "event", "round", "end", "close"}
	assert.Equal(t, want, a.calls)
	assert.Equal(t, want, b.calls)
}

func TestFanout_JoinsErrorsAndContinues(t *testing.T) {
	boom := errors.New("boom")
	bad, good := &stubBackend{fail: boom}, &stubBackend{}
	f := storage.NewFanout(bad, good)

	err := f.RecordEvent(&core.Event{})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "record event")
	assert.Equal(t, []string{"event"}, good.calls)
}

func TestFanout_ExportPath(t *testing.T) {
	f := storage.NewFanout(&stubBackend{}, &stubBackend{export: "/tmp/a.json.gz"})
	assert.Equal(t, "/tmp/a.json.gz", f.GetExportedFilePath())
	assert.Empty(t, storage.NewFanout().GetExportedFilePath())
}

var _ storage.Backend = (*storage.Fanout)(nil)
