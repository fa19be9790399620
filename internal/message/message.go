// internal/message/message.go
// Contains the wire envelope and event kinds exchanged between clients and the relay.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies one of the relayable event variants.
type Kind int

const (
	KindChat Kind = iota + 1
	KindFile
	KindAudio
	KindFeedback
)

// Wire names of the events.
const (
	EventUsersTotal  = "users-total"
	EventMessage     = "message"
	EventFile        = "file"
	EventAudio       = "audio"
	EventFeedback    = "feedback"
	EventChatMessage = "chat-message"
	EventChatFile    = "chat-file"
	EventChatAudio   = "chat-audio"
)

// ErrUnknownEvent is returned by Decode for envelopes naming an event the relay has no route for.
var ErrUnknownEvent = errors.New("unknown event")

type route struct {
	inbound  string
	outbound string
}

// routes is the single inbound -> outbound table for relayable kinds.
var routes = map[Kind]route{
	KindChat:     {inbound: EventMessage, outbound: EventChatMessage},
	KindFile:     {inbound: EventFile, outbound: EventChatFile},
	KindAudio:    {inbound: EventAudio, outbound: EventChatAudio},
	KindFeedback: {inbound: EventFeedback, outbound: EventFeedback},
}

var kindsByInbound = func() map[string]Kind {
	m := make(map[string]Kind, len(routes))
	for k, r := range routes {
		m[r.inbound] = k
	}
	return m
}()

// KindFromEvent resolves an inbound wire name.
func KindFromEvent(name string) (Kind, bool) {
	k, ok := kindsByInbound[name]
	return k, ok
}

// Inbound returns the wire name clients use to send this kind.
func (k Kind) Inbound() string { return routes[k].inbound }

// Outbound returns the wire name the relay uses when fanning this kind out.
func (k Kind) Outbound() string { return routes[k].outbound }

func (k Kind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindFile:
		return "file"
	case KindAudio:
		return "audio"
	case KindFeedback:
		return "feedback"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Envelope is one WebSocket text frame. Data is kept raw so relayed
// payloads leave the server exactly as they arrived.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Event is a decoded inbound frame ready for the router.
type Event struct {
	Kind    Kind
	Payload json.RawMessage
}

// Decode parses an inbound frame.
func Decode(frame []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Event{}, fmt.Errorf("decode envelope: %w", err)
	}
	kind, ok := KindFromEvent(env.Event)
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
	return Event{Kind: kind, Payload: env.Data}, nil
}

// Encode builds an outbound frame.
func Encode(event string, data json.RawMessage) ([]byte, error) {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// EncodePresence builds the users-total frame.
func EncodePresence(count int) ([]byte, error) {
	data, err := json.Marshal(count)
	if err != nil {
		return nil, err
	}
	return Encode(EventUsersTotal, data)
}

// The payload shapes below document what browsers send. The relay never
// decodes them; they exist for clients written in Go and for tests.

type ChatMessage struct {
	Name     string `json:"name"`
	Message  string `json:"message"`
	DateTime string `json:"dateTime"`
}

type FileTransfer struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	DateTime string `json:"dateTime"`
}

type AudioClip struct {
	Name     string `json:"name"`
	Audio    string `json:"audio"`
	DateTime string `json:"dateTime"`
}

// Feedback with an empty text clears the typing indicator on receivers.
type Feedback struct {
	Feedback string `json:"feedback"`
}
