// Package proto defines the JSON wire messages exchanged between peers.
package proto

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
)

const (
	// Version tracks the wire-protocol revision expected by peers.
	Version = 1

	// Type identifiers for peer payloads.
	TypeJoin      = "join"
	TypeJoinAck   = "joinAck"
	TypeInput     = "input"
	TypeHeartbeat = "heartbeat"
	TypeBye       = "bye"
)

// Message is the single envelope every peer payload travels in. Fields
// beyond Ver and Type are populated per message type.
type Message struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`

	// Join / joinAck.
	SessionID  string `json:"sessionId,omitempty"`
	Handle     int    `json:"handle,omitempty"`
	NumPlayers int    `json:"numPlayers,omitempty"`
	InputSize  int    `json:"inputSize,omitempty"`

	// Input. Frame is a pointer so frame 0 survives the round trip.
	Frame *int32 `json:"frame,omitempty"`
	Input []byte `json:"input,omitempty"`

	// Heartbeat.
	SentAt int64 `json:"sentAt,omitempty"`
}

// NewSessionID mints the identifier a host assigns when a peer joins.
func NewSessionID() string {
	return uuid.NewString()
}

// Decode converts a raw peer payload into a structured message, rejecting
// unsupported protocol versions and unknown types.
func Decode(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported peer protocol version %d", msg.Ver)
	}
	switch msg.Type {
	case TypeJoin, TypeJoinAck, TypeInput, TypeHeartbeat, TypeBye:
		return msg, nil
	default:
		return msg, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// Encode renders a message, stamping the protocol version.
func Encode(msg Message) ([]byte, error) {
	msg.Ver = Version
	return json.Marshal(msg)
}

// Join constructs the handshake a peer sends after connecting.
func Join(handle int) Message {
	return Message{Type: TypeJoin, Handle: handle}
}

// JoinAck constructs the host's handshake response.
func JoinAck(sessionID string, handle, numPlayers, inputSize int) Message {
	return Message{
		Type:       TypeJoinAck,
		SessionID:  sessionID,
		Handle:     handle,
		NumPlayers: numPlayers,
		InputSize:  inputSize,
	}
}

// Input constructs a confirmed-input broadcast for one frame.
func Input(handle int, frame int32, input []byte) Message {
	return Message{Type: TypeInput, Handle: handle, Frame: &frame, Input: input}
}

// Heartbeat constructs a keepalive carrying the sender's clock.
func Heartbeat(sentAt int64) Message {
	return Message{Type: TypeHeartbeat, SentAt: sentAt}
}

// Bye constructs the orderly-disconnect notice.
func Bye(handle int) Message {
	return Message{Type: TypeBye, Handle: handle}
}

// Schema renders the JSON schema of the wire envelope, for client codegen
// and payload validation outside this module.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	schema := reflector.Reflect(&Message{})
	return json.MarshalIndent(schema, "", "  ")
}
