package amqp

import (
	"testing"
	"time"
)

func TestSnapshotSyncMessageRoundTrip(t *testing.T) {
	msg := NewSnapshotSyncMessage(42)
	if msg.Version != 42 {
		t.Fatalf("Version = %d, want 42", msg.Version)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("Timestamp not set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := SnapshotSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if decoded.Version != msg.Version {
		t.Errorf("Version = %d, want %d", decoded.Version, msg.Version)
	}
	if !decoded.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestSnapshotSyncMessageFromJSONInvalid(t *testing.T) {
	if _, err := SnapshotSyncMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestSnapshotSyncMessageTimestampMonotonic(t *testing.T) {
	before := time.Now().Add(-time.Second)
	msg := NewSnapshotSyncMessage(1)
	if msg.Timestamp.Before(before) {
		t.Errorf("Timestamp %v is implausibly old", msg.Timestamp)
	}
}
