package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/pkg/core"
)

func testMission() *core.Mission {
	return &core.Mission{
		ID:        "0b7c",
		Name:      "Fulda Gap: Dawn",
		Board:     "canonical",
		DieSides:  10,
		Loiter:    6,
		StartTime: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func recordMission(t *testing.T, b *Backend) {
	t.Helper()
	require.NoError(t, b.StartMission(testMission()))
	require.NoError(t, b.RecordEvent(&core.Event{Seq: 1, Round: 1, Kind: core.EventMove, Actor: "A1", Message: "A1 MOVES: HEX 1 -> HEX 4"}))
	require.NoError(t, b.RecordEvent(&core.Event{Seq: 2, Round: 1, Kind: core.EventAttack, Actor: "A1", Target: "E1", Outcome: "hit", Message: "A1 strike on E1 HIT CONFIRMED"}))
	require.NoError(t, b.RecordRound(&core.RoundSnapshot{Round: 1, Loiter: 5, BattalionHP: 7}))
}

func TestInitAndClose(t *testing.T) {
	b := New(config.MemoryConfig{})
	assert.NoError(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestRecordBeforeStart(t *testing.T) {
	b := New(config.MemoryConfig{})
	assert.Error(t, b.RecordEvent(&core.Event{}))
	assert.Error(t, b.RecordRound(&core.RoundSnapshot{}))
	assert.Error(t, b.EndMission(&core.MissionResult{}))
}

func TestReport_BeforeEnd(t *testing.T) {
	b := New(config.MemoryConfig{})
	recordMission(t, b)

	r := b.Report()
	assert.Equal(t, "0b7c", r.MissionID)
	assert.Len(t, r.Events, 2)
	assert.Len(t, r.RoundStates, 1)
	assert.Empty(t, r.Outcome)
	assert.Empty(t, b.GetExportedFilePath())
}

func TestStartMission_Resets(t *testing.T) {
	b := New(config.MemoryConfig{})
	recordMission(t, b)
	require.NoError(t, b.StartMission(testMission()))
	assert.Empty(t, b.Report().Events)
}

func TestEndMission_PlainJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: false})
	recordMission(t, b)

	end := time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)
	require.NoError(t, b.EndMission(&core.MissionResult{Outcome: "REDUCED", Rounds: 6, BattalionHP: 2, BattalionStatus: "REDUCED", EndTime: end}))

	path := b.GetExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "Fulda_Gap__Dawn_20240115_103000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var r Report
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, "REDUCED", r.Outcome)
	assert.Equal(t, 6, r.Rounds)
	assert.Equal(t, end, r.EndTime)
	require.Len(t, r.Events, 2)
	assert.Equal(t, core.EventAttack, r.Events[1].Kind)
}

func TestEndMission_Gzip(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	recordMission(t, b)
	require.NoError(t, b.EndMission(&core.MissionResult{Outcome: "SURVIVED"}))

	path := b.GetExportedFilePath()
	assert.Equal(t, ".gz", filepath.Ext(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	var r Report
	require.NoError(t, json.NewDecoder(gz).Decode(&r))
	assert.Equal(t, "SURVIVED", r.Outcome)
	assert.Len(t, r.RoundStates, 1)
}

func TestReport_Text(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	recordMission(t, b)
	require.NoError(t, b.EndMission(&core.MissionResult{Outcome: "REDUCED", Rounds: 6, BattalionHP: 2, BattalionStatus: "REDUCED"}))

	text := b.Report().Text()
	assert.Contains(t, text, "Outcome: REDUCED after 6 rounds")
	assert.Contains(t, text, "HIT CONFIRMED")
	assert.NotContains(t, text, "MOVES")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a_b_c_d", sanitize("a b:c/d"))
}

func TestNewReport_Unfinished(t *testing.T) {
	m := &core.Mission{ID: "m-2", Name: "Night Strike", Board: "graphical"}
	events := []core.Event{{Seq: 1, Round: 1, Kind: core.EventMove, Message: "A1 MOVES TO 3"}}

	r := NewReport(m, events, nil, nil)
	assert.Equal(t, "m-2", r.MissionID)
	assert.Empty(t, r.Outcome)
	assert.True(t, r.EndTime.IsZero())
	assert.Len(t, r.Events, 1)
	assert.NotNil(t, r.RoundStates)

	events[0].Message = "changed"
	assert.Equal(t, "A1 MOVES TO 3", r.Events[0].Message, "report keeps its own copy")
}
