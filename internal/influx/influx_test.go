package influx

import (
	"bufio"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/internal/storage"
	"github.com/tal-engine/tal/pkg/core"
)

var _ storage.Backend = (*Manager)(nil)

func line(p *influxdb2_write.Point) string {
	return influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
}

func unreachable(t *testing.T) config.InfluxConfig {
	return config.InfluxConfig{
		Enabled:    true,
		Protocol:   "http",
		Host:       "127.0.0.1",
		Port:       "1",
		Org:        "tal",
		Bucket:     "missions",
		BackupPath: filepath.Join(t.TempDir(), "backup.lp.gz"),
	}
}

func readBackup(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var lines []string
	sc := bufio.NewScanner(gz)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{})
	assert.ErrorIs(t, m.Connect(context.Background()), ErrDisabled)
	assert.NoError(t, m.Close())
}

func TestURL(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{Protocol: "https", Host: "influx.local", Port: "8086"})
	assert.Equal(t, "https://influx.local:8086", m.URL())
}

func TestWritePoint_NoWriter(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{})
	assert.Error(t, m.WritePoint(influxdb2_write.NewPointWithMeasurement("x").AddField("v", 1)))
}

func TestBackupFallback(t *testing.T) {
	cfg := unreachable(t)
	m := NewManager(zerolog.Nop(), cfg)
	require.NoError(t, m.Init())
	assert.False(t, m.IsValid)

	require.NoError(t, m.StartMission(&core.Mission{ID: "m-1"}))
	require.NoError(t, m.RecordEvent(&core.Event{Seq: 1, Round: 1, Kind: core.EventAttack, Actor: "A1", Target: "E1", Weapon: "strike", Roll: 7, Outcome: "hit"}))
	require.NoError(t, m.RecordRound(&core.RoundSnapshot{Round: 1, Loiter: 5, BattalionHP: 7}))
	require.NoError(t, m.EndMission(&core.MissionResult{Outcome: "SURVIVED", Rounds: 6}))
	require.NoError(t, m.Close())

	lines := readBackup(t, cfg.BackupPath)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "combat_event,")
	assert.Contains(t, lines[0], "mission=m-1")
	assert.Contains(t, lines[1], "round_state,")
	assert.Contains(t, lines[2], "mission_result,")
	assert.Contains(t, lines[2], "outcome=SURVIVED")
}

func TestEventPoint(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	p := EventPoint("m", &core.Event{Seq: 4, Round: 2, Kind: core.EventEnemyFire, Actor: "E1", Target: "A1", Roll: 6, Modifier: 8, Threshold: 10, Outcome: "stress", Time: ts})
	l := line(p)
	assert.Contains(t, l, "combat_event,")
	assert.Contains(t, l, "actor=E1")
	assert.Contains(t, l, "kind=enemy_fire")
	assert.Contains(t, l, "roll=6i")
	assert.Contains(t, l, "threshold=10i")
	assert.Contains(t, l, "seq=4i")
	assert.NotContains(t, l, "weapon=")
}

func TestEventPoint_MoveHasNoRoll(t *testing.T) {
	l := line(EventPoint("m", &core.Event{Seq: 1, Kind: core.EventMove, Actor: "A1"}))
	assert.NotContains(t, l, "roll=")
}

func TestRoundPoint_CountsSurvivors(t *testing.T) {
	s := &core.RoundSnapshot{
		Round:       3,
		Aircraft:    []core.AircraftState{{ID: "A1"}, {ID: "A2", Destroyed: true}},
		Enemies:     []core.EnemyState{{ID: "E1", Alive: true}, {ID: "E2", Alive: true}, {ID: "E3"}},
		BattalionHP: 3,
	}
	l := line(RoundPoint("m", s))
	assert.Contains(t, l, "aircraft_alive=1i")
	assert.Contains(t, l, "enemies_alive=2i")
	assert.Contains(t, l, "battalion_hp=3i")
}

func TestResultPoint(t *testing.T) {
	l := line(ResultPoint("m", &core.MissionResult{Outcome: "REDUCED", BattalionStatus: "REDUCED", Rounds: 6, BattalionHP: 2}))
	assert.Contains(t, l, "mission_result,")
	assert.Contains(t, l, "status=REDUCED")
	assert.Contains(t, l, "rounds=6i")
}
