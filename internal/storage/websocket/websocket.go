// Package websocket streams a mission recording to a remote collector as
// envelope messages.
package websocket

import (
	"log/slog"
	"sync"

	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/pkg/core"
	"github.com/tal-engine/tal/pkg/streaming"
)

// Backend streams mission data over WebSocket. It implements storage.Backend.
type Backend struct {
	conn *connection
	cfg  config.WebSocketConfig

	mu        sync.Mutex
	missionID string
}

// New creates a new WebSocket storage backend.
func New(cfg config.WebSocketConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger.With("backend", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

func (b *Backend) mission() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.missionID
}

// send marshals the payload and pushes it to the write loop (fire-and-forget).
func (b *Backend) send(msgType string, payload any) error {
	data, err := streaming.Marshal(msgType, b.mission(), payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartMission sends the mission header and waits for the server ack.
func (b *Backend) StartMission(m *core.Mission) error {
	data, err := streaming.Marshal(streaming.TypeStartMission, m.ID, streaming.StartMissionPayload{Mission: m})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.missionID = m.ID
	b.mu.Unlock()
	b.conn.setReplay(data)

	return b.conn.sendAndWait(data, streaming.TypeStartMission, ackTimeout)
}

// EndMission sends end_mission and waits for the server ack.
func (b *Backend) EndMission(r *core.MissionResult) error {
	data, err := streaming.Marshal(streaming.TypeEndMission, b.mission(), streaming.EndMissionPayload{Result: r})
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeEndMission, ackTimeout)

	// the mission is over whether or not the ack arrived
	b.conn.setReplay(nil)
	b.mu.Lock()
	b.missionID = ""
	b.mu.Unlock()

	return err
}

func (b *Backend) RecordEvent(e *core.Event) error {
	return b.send(streaming.TypeEvent, e)
}

func (b *Backend) RecordRound(s *core.RoundSnapshot) error {
	return b.send(streaming.TypeRound, s)
}
