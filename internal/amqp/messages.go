package amqp

import (
	"encoding/json"
	"time"
)

// Debt event actions carried on the wire.
const (
	ActionCreated = "created"
	ActionPaid    = "paid"
	ActionDeleted = "deleted"
)

// DebtEventMessage is a lightweight change notification. It carries only the
// debt ID and the action; consumers fetch the current row from storage, so a
// stale message never overwrites fresher data.
type DebtEventMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDebtEventMessage creates an event for one debt ID.
func NewDebtEventMessage(id, action string) *DebtEventMessage {
	return &DebtEventMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DebtEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DebtEventMessageFromJSON creates a message from JSON bytes
func DebtEventMessageFromJSON(data []byte) (*DebtEventMessage, error) {
	var msg DebtEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
