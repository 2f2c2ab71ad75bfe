package amqp

import (
	"encoding/json"
	"time"
)

// DeliveryMessage asks the worker to deliver one outbox row. It carries
// only the ID; the worker loads recipient and body from the database.
type DeliveryMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDeliveryMessage creates a delivery message for an outbox row.
func NewDeliveryMessage(id int64) *DeliveryMessage {
	return &DeliveryMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *DeliveryMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DeliveryMessageFromJSON creates a message from JSON bytes.
func DeliveryMessageFromJSON(data []byte) (*DeliveryMessage, error) {
	var msg DeliveryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
