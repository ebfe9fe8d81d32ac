package netcode

// EventKind discriminates the observational events a session reports
// alongside successful advancement. Events are not errors: play continues.
type EventKind int

const (
	// EventDesyncDetected reports that the checksum recorded when a frame
	// was first simulated differs from the checksum of its replay.
	EventDesyncDetected EventKind = iota
	// EventPlayerDisconnected reports that a player stopped contributing
	// inputs; subsequent frames carry InputDisconnected for that handle.
	EventPlayerDisconnected
)

// Event is one observation drained from a session via DrainEvents.
type Event struct {
	Kind     EventKind
	Frame    Frame
	Handle   PlayerHandle
	Recorded Checksum
	Replayed Checksum
}
