package collab

import (
	"encoding/json"

	"github.com/inamate/pinboard/internal/command"
	"github.com/inamate/pinboard/internal/scene"
)

type Message struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

const (
	TypeError = "error"

	// Connection
	TypeWelcome = "welcome"

	// Scene sync. Clients may send an empty doc.sync to request a resend.
	TypeDocSync = "doc.sync"

	// Operations
	TypeOpSubmit = "op.submit"
	TypeOpAck    = "op.ack"
	TypeOpNack   = "op.nack"
)

type WelcomePayload struct {
	ClientID    string         `json:"clientId"`
	UserID      string         `json:"userId"`
	DisplayName string         `json:"displayName"`
	Snapshot    scene.Snapshot `json:"snapshot"`
}

type DocSyncPayload struct {
	ServerSeq int64          `json:"serverSeq"`
	Snapshot  scene.Snapshot `json:"snapshot"`
}

// OpSubmitPayload carries one operation in the command package's JSON form.
type OpSubmitPayload struct {
	Operation json.RawMessage `json:"operation"`
}

type OpAckPayload struct {
	command.Result
	ServerSeq       int64 `json:"serverSeq"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

type OpNackPayload struct {
	OperationID string `json:"operationId,omitempty"`
	Code        string `json:"code"`
	Reason      string `json:"reason"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newMessage(typ string, seq int64, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Seq: seq, Payload: data}, nil
}
