package ws

import "encoding/json"

// MessageType names one event on the room-scoped message surface.
type MessageType string

// Client to server.
const (
	TypeJoinRoom    MessageType = "join-room"
	TypeStartGame   MessageType = "start-game"
	TypeSelectWord  MessageType = "select-word"
	TypeChatMessage MessageType = "chat-message"
	TypeDraw        MessageType = "draw"
	TypeFill        MessageType = "fill"
	TypeClear       MessageType = "clear"
	TypeUndo        MessageType = "undo"
	TypeRedo        MessageType = "redo"
	TypeEndDraw     MessageType = "end-draw"
	TypeVoiceSignal MessageType = "voice-signal"
	TypeVoiceState  MessageType = "voice-state-change"
)

// Server to client.
const (
	TypeGameUpdate  MessageType = "game-update"
	TypeJoinError   MessageType = "join-error"
	TypeNotice      MessageType = "notice"
	TypeTimerUpdate MessageType = "timer-update"
	TypeGameEnded   MessageType = "game-ended"
)

// Envelope is one WebSocket message. Payloads stay raw so canvas
// events can be relayed to other room members exactly as received.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals v as the payload of a typed envelope. The
// payload structs in this codebase are always marshalable, so a
// failure here indicates a programming error and yields an empty
// payload rather than a crash.
func NewEnvelope(t MessageType, v any) Envelope {
	data, err := json.Marshal(v)
	if err != nil {
		return Envelope{Type: t}
	}
	return Envelope{Type: t, Payload: data}
}
