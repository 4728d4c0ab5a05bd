package amqp

import (
	"encoding/json"
	"time"
)

// EntrySyncMessage tells the worker that a ledger entry changed. It carries
// only the ID and version; the worker fetches the full row from the database,
// so a stale message never overwrites newer data.
type EntrySyncMessage struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(id string, version int64) *EntrySyncMessage {
	return &EntrySyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
