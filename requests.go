package netcode

// RequestKind discriminates the closed set of requests a session issues. The
// set is fixed; hosts dispatch with an exhaustive switch rather than open
// virtual dispatch.
type RequestKind int

const (
	// RequestSaveState asks the host to capture its current state into the
	// provided cell, stamped with the given frame.
	RequestSaveState RequestKind = iota
	// RequestLoadState asks the host to replace its current state with the
	// cell's snapshot.
	RequestLoadState
	// RequestAdvanceFrame asks the host to advance its state by one frame
	// using the provided inputs.
	RequestAdvanceFrame
)

// String renders the request kind for traces and logs.
func (k RequestKind) String() string {
	switch k {
	case RequestSaveState:
		return "save"
	case RequestLoadState:
		return "load"
	case RequestAdvanceFrame:
		return "advance"
	default:
		return "unknown"
	}
}

// PlayerInput pairs one player's input bytes with their provenance tag.
type PlayerInput struct {
	Bytes  []byte
	Status InputStatus
}

// Request is one instruction of an advance batch. Frame and Cell are set for
// save requests, Cell alone for loads, and Inputs (ordered by ascending
// player handle) for advances.
type Request[S any] struct {
	Kind   RequestKind
	Frame  Frame
	Cell   *StateCell[S]
	Inputs []PlayerInput
}

// RequestHandler is implemented by the host simulation. The host must perform
// every request of the batch exactly once, in order, synchronously, before
// returning: a save must complete before a later load of the same cell, and
// an advance uses whatever state exists after the prior requests in the
// batch.
type RequestHandler[S any] interface {
	HandleRequests(batch []Request[S])
}
