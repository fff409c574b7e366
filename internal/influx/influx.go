// Package influx writes mission telemetry to InfluxDB, falling back to a
// gzip line-protocol backup file when the server is unreachable.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/pkg/core"
)

// Measurement names.
const (
	MeasurementEvent  = "combat_event"
	MeasurementRound  = "round_state"
	MeasurementResult = "mission_result"
)

// ErrDisabled is returned by Connect when influx.enabled is false.
var ErrDisabled = errors.New("influx is disabled")

const retentionSeconds = 60 * 60 * 24 * 90

// Manager handles the InfluxDB connection and writes. It implements storage.Backend.
type Manager struct {
	Client  influxdb2.Client
	Writer  influxdb2_api.WriteAPI
	IsValid bool
	Logger  zerolog.Logger

	cfg        config.InfluxConfig
	backupFile *os.File
	backup     *gzip.Writer

	mu        sync.Mutex
	missionID string
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, cfg config.InfluxConfig) *Manager {
	return &Manager{Logger: log, cfg: cfg}
}

// URL returns the server address built from the configuration.
func (m *Manager) URL() string {
	return fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port)
}

// Connect establishes a connection to InfluxDB. When the server does not
// answer a ping, points go to the backup file instead.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(m.URL(), m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(ctx)
	m.IsValid = err == nil && running
	if !m.IsValid {
		m.Logger.Warn().Err(err).Str("backupPath", m.cfg.BackupPath).
			Msg("InfluxDB client failed to initialize, writing to backup file")
		return m.openBackup()
	}

	if err := m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	m.createWriter()
	m.Logger.Info().Str("url", m.URL()).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.backup != nil {
		return nil
	}
	file, err := os.OpenFile(m.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backup = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgs := m.Client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.Logger.Info().Str("org", m.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", m.cfg.Org).Msg("Error creating organization")
			return err
		}
	}

	if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err == nil {
		return nil
	}
	m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")
	rule := domain.RetentionRuleTypeExpire
	_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: retentionSeconds,
	})
	if err != nil {
		m.Logger.Error().Err(err).Str("bucket", m.cfg.Bucket).Msg("Error creating bucket")
		return err
	}
	return nil
}

func (m *Manager) createWriter() {
	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	if m.IsValid {
		m.Writer.WritePoint(point)
		return nil
	}
	if m.backup == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.backup.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Init connects with a bounded ping.
func (m *Manager) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Connect(ctx)
}

// Close flushes pending points and releases the client and backup file.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backup == nil {
		return nil
	}
	err := errors.Join(m.backup.Close(), m.backupFile.Close())
	m.backup = nil
	return err
}

// StartMission tags subsequent points with the mission id.
func (m *Manager) StartMission(mission *core.Mission) error {
	m.mu.Lock()
	m.missionID = mission.ID
	m.mu.Unlock()
	return nil
}

func (m *Manager) mission() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.missionID
}

func (m *Manager) RecordEvent(e *core.Event) error {
	return m.WritePoint(EventPoint(m.mission(), e))
}

func (m *Manager) RecordRound(s *core.RoundSnapshot) error {
	return m.WritePoint(RoundPoint(m.mission(), s))
}

func (m *Manager) EndMission(r *core.MissionResult) error {
	return m.WritePoint(ResultPoint(m.mission(), r))
}

// EventPoint builds a combat_event point.
func EventPoint(missionID string, e *core.Event) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementEvent).
		AddTag("mission", missionID).
		AddTag("kind", string(e.Kind)).
		AddField("seq", int64(e.Seq)).
		AddField("round", e.Round).
		SetTime(e.Time)
	if e.Actor != "" {
		p.AddTag("actor", e.Actor)
	}
	if e.Target != "" {
		p.AddTag("target", e.Target)
	}
	if e.Weapon != "" {
		p.AddTag("weapon", e.Weapon)
	}
	if e.Outcome != "" {
		p.AddTag("outcome", e.Outcome)
	}
	switch e.Kind {
	case core.EventAttack, core.EventEnemyFire:
		p.AddField("roll", e.Roll).
			AddField("modifier", e.Modifier).
			AddField("threshold", e.Threshold).
			AddField("cover", e.Cover)
	}
	return p
}

// RoundPoint builds a round_state point.
func RoundPoint(missionID string, s *core.RoundSnapshot) *influxdb2_write.Point {
	aircraftUp := 0
	for _, a := range s.Aircraft {
		if !a.Destroyed {
			aircraftUp++
		}
	}
	enemiesUp := 0
	for _, e := range s.Enemies {
		if e.Alive {
			enemiesUp++
		}
	}
	return influxdb2_write.NewPointWithMeasurement(MeasurementRound).
		AddTag("mission", missionID).
		AddField("round", s.Round).
		AddField("loiter", s.Loiter).
		AddField("battalion_hp", s.BattalionHP).
		AddField("aircraft_alive", aircraftUp).
		AddField("enemies_alive", enemiesUp).
		SetTime(s.Time)
}

// ResultPoint builds a mission_result point.
func ResultPoint(missionID string, r *core.MissionResult) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement(MeasurementResult).
		AddTag("mission", missionID).
		AddTag("outcome", r.Outcome).
		AddTag("status", r.BattalionStatus).
		AddField("rounds", r.Rounds).
		AddField("battalion_hp", r.BattalionHP).
		SetTime(r.EndTime)
}
