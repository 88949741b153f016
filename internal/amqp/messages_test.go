package amqp

import (
	"testing"
)

func TestStateChangedMessage_RoundTrip(t *testing.T) {
	msg := NewStateChangedMessage("loans", "l-42", 17)
	if msg.Timestamp.IsZero() {
		t.Fatal("NewStateChangedMessage() must stamp the message")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := StateChangedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("StateChangedMessageFromJSON() error = %v", err)
	}
	if got.Section != "loans" || got.RecordID != "l-42" || got.Version != 17 {
		t.Errorf("round trip = %+v, want original fields", got)
	}
}

func TestStateChangedMessageFromJSON_Invalid(t *testing.T) {
	if _, err := StateChangedMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
