// Package intake validates decoded wire messages before they reach the
// session, so malformed remote traffic never mutates queue state.
package intake

import (
	"frameloop/netcode/internal/frames"
	"frameloop/netcode/internal/net/proto"
)

// Reject reasons reported back to the transport layer.
const (
	RejectWrongType     = "wrong_type"
	RejectUnknownHandle = "unknown_handle"
	RejectBadFrame      = "bad_frame"
	RejectBadInputSize  = "bad_input_size"
)

// Context carries the session parameters an input is validated against.
type Context struct {
	NumPlayers int
	InputSize  int

	// RemoteHandle reports whether the handle belongs to a connected
	// remote peer. Nil accepts any handle in range.
	RemoteHandle func(int) bool
}

// RemoteInput is a validated input ready to be confirmed into a queue.
type RemoteInput struct {
	Handle int
	Frame  frames.Frame
	Bytes  []byte
}

// StageInput converts an input message into a RemoteInput, or reports the
// reason it was refused.
func StageInput(ctx Context, msg proto.Message) (RemoteInput, bool, string) {
	var zero RemoteInput

	if msg.Type != proto.TypeInput {
		return zero, false, RejectWrongType
	}
	if msg.Handle < 0 || msg.Handle >= ctx.NumPlayers {
		return zero, false, RejectUnknownHandle
	}
	if ctx.RemoteHandle != nil && !ctx.RemoteHandle(msg.Handle) {
		return zero, false, RejectUnknownHandle
	}
	if msg.Frame == nil || *msg.Frame < 0 {
		return zero, false, RejectBadFrame
	}
	if len(msg.Input) != ctx.InputSize {
		return zero, false, RejectBadInputSize
	}

	input := make([]byte, len(msg.Input))
	copy(input, msg.Input)
	return RemoteInput{
		Handle: msg.Handle,
		Frame:  frames.Frame(*msg.Frame),
		Bytes:  input,
	}, true, ""
}
