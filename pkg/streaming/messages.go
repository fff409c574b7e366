// Package streaming defines the envelope protocol a mission recording is
// streamed with over WebSocket.
package streaming

import (
	"encoding/json"
	"fmt"

	"github.com/tal-engine/tal/pkg/core"
)

// Message types. Start and end are acknowledged by the server; the rest are
// fire-and-forget.
const (
	TypeStartMission = "start_mission"
	TypeEvent        = "event"
	TypeRound        = "round"
	TypeEndMission   = "end_mission"
	TypeAck          = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Mission string          `json:"mission,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartMissionPayload carries the mission header.
type StartMissionPayload struct {
	Mission *core.Mission `json:"mission"`
}

// EndMissionPayload carries the final result.
type EndMissionPayload struct {
	Result *core.MissionResult `json:"result"`
}

// Marshal builds a JSON-encoded Envelope from a message type and payload.
func Marshal(msgType, missionID string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(Envelope{Type: msgType, Mission: missionID, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// IsAcked reports whether the server acknowledges msgType.
func IsAcked(msgType string) bool {
	return msgType == TypeStartMission || msgType == TypeEndMission
}
