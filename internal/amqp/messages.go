package amqp

import (
	"encoding/json"
	"time"
)

// StateChangedMessage announces that the finance state reached a new
// version. Consumers reload the full snapshot from storage; the message
// carries only what is needed to dedupe and diagnose.
type StateChangedMessage struct {
	Section   string    `json:"section"` // incomes, expenses, loans, creditCards, goals
	RecordID  string    `json:"recordId"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStateChangedMessage(section, recordID string, version int64) *StateChangedMessage {
	return &StateChangedMessage{
		Section:   section,
		RecordID:  recordID,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *StateChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func StateChangedMessageFromJSON(data []byte) (*StateChangedMessage, error) {
	var msg StateChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
