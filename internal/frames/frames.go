// Package frames holds the primitive frame vocabulary shared by the session
// core and its internal components.
package frames

// Frame counts simulation steps, starting at 0 once a session begins
// advancing. During a rollback the session revisits earlier frames, but the
// counter handed to hosts never regresses past the confirmed watermark.
type Frame int32

// Null marks the absence of a frame value.
const Null Frame = -1

// InputStatus tags each input handed to the simulation. The tag is
// informational: the session does not change its own behaviour based on it.
type InputStatus int

const (
	// InputConfirmed marks an input that arrived from its player.
	InputConfirmed InputStatus = iota
	// InputPredicted marks a synthesized input standing in for one that has
	// not arrived yet.
	InputPredicted
	// InputDisconnected marks an input for a player no longer participating.
	InputDisconnected
)

// String renders the status for logs and test failures.
func (s InputStatus) String() string {
	switch s {
	case InputConfirmed:
		return "confirmed"
	case InputPredicted:
		return "predicted"
	case InputDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
