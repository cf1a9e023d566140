package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotSyncMessage tells the mirror worker a new snapshot version
// exists. It carries only the version; the worker reads the snapshot from
// local storage, so a burst of messages collapses into whichever version is
// current when each is processed.
type SnapshotSyncMessage struct {
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotSyncMessage creates a sync message for the given version.
func NewSnapshotSyncMessage(version int64) *SnapshotSyncMessage {
	return &SnapshotSyncMessage{
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *SnapshotSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotSyncMessageFromJSON creates a message from JSON bytes.
func SnapshotSyncMessageFromJSON(data []byte) (*SnapshotSyncMessage, error) {
	var msg SnapshotSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
