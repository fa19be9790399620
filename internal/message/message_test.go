package message

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestKindTable(t *testing.T) {
	tests := []struct {
		inbound  string
		kind     Kind
		outbound string
	}{
		{EventMessage, KindChat, EventChatMessage},
		{EventFile, KindFile, EventChatFile},
		{EventAudio, KindAudio, EventChatAudio},
		{EventFeedback, KindFeedback, EventFeedback},
	}

	for _, tt := range tests {
		t.Run(tt.inbound, func(t *testing.T) {
			kind, ok := KindFromEvent(tt.inbound)
			if !ok {
				t.Fatalf("KindFromEvent(%q) not found", tt.inbound)
			}
			if kind != tt.kind {
				t.Errorf("KindFromEvent(%q) = %v, want %v", tt.inbound, kind, tt.kind)
			}
			if got := kind.Inbound(); got != tt.inbound {
				t.Errorf("Inbound() = %q, want %q", got, tt.inbound)
			}
			if got := kind.Outbound(); got != tt.outbound {
				t.Errorf("Outbound() = %q, want %q", got, tt.outbound)
			}
		})
	}
}

func TestKindFromEventRejectsOutboundNames(t *testing.T) {
	for _, name := range []string{EventUsersTotal, EventChatMessage, EventChatFile, EventChatAudio, ""} {
		if _, ok := KindFromEvent(name); ok {
			t.Errorf("KindFromEvent(%q) should not resolve", name)
		}
	}
}

func TestDecode(t *testing.T) {
	frame := []byte(`{"event":"message","data":{"name":"A","message":"hi","dateTime":"2024-01-01T10:00:00Z"}}`)

	ev, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ev.Kind != KindChat {
		t.Errorf("Kind = %v, want %v", ev.Kind, KindChat)
	}
	want := `{"name":"A","message":"hi","dateTime":"2024-01-01T10:00:00Z"}`
	if string(ev.Payload) != want {
		t.Errorf("Payload = %s, want %s", ev.Payload, want)
	}
}

func TestDecodeUnknownEvent(t *testing.T) {
	_, err := Decode([]byte(`{"event":"users-total","data":3}`))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("Decode() error = %v, want ErrUnknownEvent", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	if err == nil {
		t.Fatal("Decode() expected error for malformed frame")
	}
	if errors.Is(err, ErrUnknownEvent) {
		t.Error("malformed frame should not be reported as unknown event")
	}
}

func TestDecodeKeepsUnexpectedPayloadShape(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"feedback","data":[1,"two",null]}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(ev.Payload) != `[1,"two",null]` {
		t.Errorf("Payload = %s", ev.Payload)
	}
}

func TestEncode(t *testing.T) {
	data, _ := json.Marshal(Feedback{Feedback: ""})

	frame, err := Encode(EventFeedback, data)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(frame) != `{"event":"feedback","data":{"feedback":""}}` {
		t.Errorf("Encode() = %s", frame)
	}
}

func TestEncodeMissingData(t *testing.T) {
	frame, err := Encode(EventChatMessage, nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(frame) != `{"event":"chat-message","data":null}` {
		t.Errorf("Encode() = %s", frame)
	}
}

func TestEncodePresence(t *testing.T) {
	frame, err := EncodePresence(3)
	if err != nil {
		t.Fatalf("EncodePresence() error = %v", err)
	}
	if string(frame) != `{"event":"users-total","data":3}` {
		t.Errorf("EncodePresence() = %s", frame)
	}
}
