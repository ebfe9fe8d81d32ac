// Package netcode implements a rollback session core for deterministic
// simulations. Peers exchange only player inputs; the session predicts inputs
// that have not arrived, asks the host to save and reload state snapshots
// through a request protocol, and replays frames when a prediction turns out
// wrong. Divergence between replay passes is detected by comparing
// host-supplied state checksums.
//
// The host simulation stays outside this package: it owns the state
// representation, advances it from inputs, and fulfils the request batches
// produced by AdvanceFrame. The core assumes the simulation is bit-exact
// deterministic for identical (state, inputs) pairs; checksum comparison is
// the only verification the core can offer for that contract.
package netcode

import "frameloop/netcode/internal/frames"

// Frame counts simulation steps from 0 once a session starts.
type Frame = frames.Frame

// NullFrame marks the absence of a frame value.
const NullFrame = frames.Null

// PlayerHandle identifies a player slot within a session. Handles are
// assigned by the caller at add time and must lie in [0, numPlayers).
type PlayerHandle int

// PlayerKind discriminates the player variants a session can host.
type PlayerKind int

const (
	// PlayerKindLocal is a player whose inputs originate in this process.
	PlayerKindLocal PlayerKind = iota
	// PlayerKindRemote is a player whose inputs arrive over a transport.
	PlayerKindRemote
	// PlayerKindSpectator receives confirmed inputs but contributes none.
	PlayerKindSpectator
)

// PlayerType pairs a player kind with the address a remote variant lives at.
type PlayerType struct {
	Kind PlayerKind
	Addr string
}

// Local describes a player controlled in this process.
func Local() PlayerType {
	return PlayerType{Kind: PlayerKindLocal}
}

// Remote describes a player reached at the given transport address.
func Remote(addr string) PlayerType {
	return PlayerType{Kind: PlayerKindRemote, Addr: addr}
}

// Spectator describes a non-participating observer at the given address.
func Spectator(addr string) PlayerType {
	return PlayerType{Kind: PlayerKindSpectator, Addr: addr}
}

// InputStatus tags each input handed to the simulation.
type InputStatus = frames.InputStatus

// Re-exported input status values.
const (
	InputConfirmed    = frames.InputConfirmed
	InputPredicted    = frames.InputPredicted
	InputDisconnected = frames.InputDisconnected
)

// Checksum is a caller-supplied 128-bit integrity value computed over a state
// snapshot. The core only ever compares checksums for equality.
type Checksum [16]byte
