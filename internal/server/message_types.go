package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypeJoin            MessageType = "join"
	MessageTypePlayCard        MessageType = "play_card"
	MessageTypeDrawCard        MessageType = "draw_card"
	MessageTypeEndTurn         MessageType = "end_turn"
	MessageTypeCallDeclaration MessageType = "call_declaration"
	MessageTypeState           MessageType = "state"

	// Server to client messages. A state message answers a state request
	// and is also pushed after every change.
	MessageTypeJoined      MessageType = "joined"
	MessageTypeTurnStart   MessageType = "turn_start"
	MessageTypeTurnTimeout MessageType = "turn_timeout"
	MessageTypeResult      MessageType = "result"
	MessageTypeError       MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// IsIntent reports whether mt is an in-match action sent to the engine
func (mt MessageType) IsIntent() bool {
	switch mt {
	case MessageTypePlayCard, MessageTypeDrawCard, MessageTypeEndTurn, MessageTypeCallDeclaration:
		return true
	}
	return false
}
