// Package stubgame is a minimal deterministic simulation used by the CLI and
// the session tests. The state is a frame counter and one scalar; the advance
// rule rewards agreeing inputs and punishes disagreeing ones, which makes
// replay divergence visible immediately.
package stubgame

import (
	"encoding/binary"

	"frameloop/netcode"
	"frameloop/netcode/internal/checksum"
)

// InputSize is the fixed input payload width the stub expects: one 32-bit
// little-endian value per player per frame.
const InputSize = 4

// State is the complete game state.
type State struct {
	Frame int32
	Value int32
}

// Encode renders the state for checksum computation.
func (s State) Encode() []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint32(out[0:4], uint32(s.Frame))
	binary.LittleEndian.PutUint32(out[4:8], uint32(s.Value))
	return out
}

// Checksum digests the state.
func (s State) Checksum() netcode.Checksum {
	return netcode.Checksum(checksum.Sum128(s.Encode()))
}

// Game hosts the simulation and fulfils session request batches.
type Game struct {
	State State
	// LoadErr records a failed load request; a non-nil value means the
	// session asked for a cell it never saved, which is a protocol bug.
	LoadErr error
}

// New constructs a game at frame zero.
func New() *Game {
	return &Game{}
}

// HandleRequests performs each request in order, synchronously.
func (g *Game) HandleRequests(batch []netcode.Request[State]) {
	for _, req := range batch {
		switch req.Kind {
		case netcode.RequestSaveState:
			sum := g.State.Checksum()
			req.Cell.Save(req.Frame, g.State, &sum)
		case netcode.RequestLoadState:
			_, state, err := req.Cell.Load()
			if err != nil {
				g.LoadErr = err
				continue
			}
			g.State = state
		case netcode.RequestAdvanceFrame:
			g.State = Advance(g.State, req.Inputs)
		}
	}
}

// Advance computes the successor state: matching inputs across all players
// add two to the value, any disagreement subtracts one.
func Advance(state State, inputs []netcode.PlayerInput) State {
	agree := true
	for i := 1; i < len(inputs); i++ {
		if !equalBytes(inputs[0].Bytes, inputs[i].Bytes) {
			agree = false
			break
		}
	}
	if agree {
		state.Value += 2
	} else {
		state.Value--
	}
	state.Frame++
	return state
}

// EncodeInput renders a player input value as the stub's wire payload.
func EncodeInput(value uint32) []byte {
	out := make([]byte, InputSize)
	binary.LittleEndian.PutUint32(out, value)
	return out
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
