package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/internal/storage"
	"github.com/tal-engine/tal/pkg/core"
	"github.com/tal-engine/tal/pkg/streaming"
)

// Compile-time interface check.
var _ storage.Backend = (*Backend)(nil)

// testServer upgrades to WebSocket, records received envelopes and acks
// start_mission/end_mission unless ack is false.
func testServer(t *testing.T, ack bool) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ml.setSecret(r.URL.Query().Get("secret"))
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			if ack && streaming.IsAcked(env.Type) {
				data, _ := json.Marshal(streaming.AckMessage{Type: streaming.TypeAck, For: env.Type})
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	secret   string
	messages []streaming.Envelope
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) setSecret(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secret = s
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestInit_BadURL(t *testing.T) {
	b := New(config.WebSocketConfig{URL: "ws://127.0.0.1:1/ingest"}, nil)
	assert.ErrorContains(t, b.Init(), "websocket dial failed")
	assert.NoError(t, b.Close())
}

func TestStartAndEndMission(t *testing.T) {
	srv, ml := testServer(t, true)
	defer srv.Close()

	b := New(config.WebSocketConfig{URL: wsURL(srv), Secret: "test"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartMission(&core.Mission{ID: "m-1", Name: "Close Air Support"}))
	require.NoError(t, b.EndMission(&core.MissionResult{Outcome: "SURVIVED"}))

	msgs := ml.all()
	require.Len(t, msgs, 2)
	assert.Equal(t, streaming.TypeStartMission, msgs[0].Type)
	assert.Equal(t, "m-1", msgs[0].Mission)
	assert.Equal(t, streaming.TypeEndMission, msgs[1].Type)

	var end streaming.EndMissionPayload
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &end))
	assert.Equal(t, "SURVIVED", end.Result.Outcome)

	ml.mu.Lock()
	assert.Equal(t, "test", ml.secret)
	ml.mu.Unlock()
}

func TestFireAndForgetMessages(t *testing.T) {
	srv, ml := testServer(t, true)
	defer srv.Close()

	b := New(config.WebSocketConfig{URL: wsURL(srv)}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartMission(&core.Mission{ID: "m-2"}))
	require.NoError(t, b.RecordEvent(&core.Event{Seq: 1, Kind: core.EventMove}))
	require.NoError(t, b.RecordEvent(&core.Event{Seq: 2, Kind: core.EventAttack}))
	require.NoError(t, b.RecordRound(&core.RoundSnapshot{Round: 1}))
	require.NoError(t, b.EndMission(&core.MissionResult{}))

	// the single writer keeps send order, so end_mission arrives last
	msgs := ml.all()
	types := make([]string, 0, len(msgs))
	for _, m := range msgs {
		types = append(types, m.Type)
		assert.Equal(t, "m-2", m.Mission)
	}
	assert.Equal(t, []string{
		streaming.TypeStartMission,
		streaming.TypeEvent,
		streaming.TypeEvent,
		streaming.TypeRound,
		streaming.TypeEndMission,
	}, types)
}

func TestSendAndWait_Timeout(t *testing.T) {
	srv, _ := testServer(t, false)
	defer srv.Close()

	b := New(config.WebSocketConfig{URL: wsURL(srv)}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	data, err := streaming.Marshal(streaming.TypeStartMission, "m", nil)
	require.NoError(t, err)
	err = b.conn.sendAndWait(data, streaming.TypeStartMission, 50*time.Millisecond)
	assert.ErrorContains(t, err, "timeout waiting for ack")
}

func TestClose_Idempotent(t *testing.T) {
	srv, _ := testServer(t, true)
	defer srv.Close()

	b := New(config.WebSocketConfig{URL: wsURL(srv)}, nil)
	require.NoError(t, b.Init())
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}
