package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budgetbook/internal/store"
)

// ChangeMessage announces a repository write. It carries only the record key;
// consumers reload whatever they need from the repository.
type ChangeMessage struct {
	Entity    store.Entity     `json:"entity"`
	Kind      store.ChangeKind `json:"kind"`
	Key       string           `json:"key"`
	Timestamp time.Time        `json:"timestamp"`
}

func NewChangeMessage(c store.Change) *ChangeMessage {
	return &ChangeMessage{
		Entity:    c.Entity,
		Kind:      c.Kind,
		Key:       c.Key,
		Timestamp: time.Now().UTC(),
	}
}

// Change returns the repository change the message describes.
func (m *ChangeMessage) Change() store.Change {
	return store.Change{Entity: m.Entity, Kind: m.Kind, Key: m.Key}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses a message and rejects ones without an entity
// or key.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Entity == "" || msg.Key == "" {
		return nil, fmt.Errorf("change message missing entity or key")
	}
	return &msg, nil
}
