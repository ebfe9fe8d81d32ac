package stubgame

import (
	"testing"

	"frameloop/netcode"
)

func TestAdvanceRule(t *testing.T) {
	inputs := []netcode.PlayerInput{
		{Bytes: EncodeInput(3)},
		{Bytes: EncodeInput(3)},
	}
	state := Advance(State{}, inputs)
	if state.Value != 2 || state.Frame != 1 {
		t.Fatalf("expected agreeing inputs to yield value 2 frame 1, got %+v", state)
	}

	inputs[1].Bytes = EncodeInput(4)
	state = Advance(state, inputs)
	if state.Value != 1 || state.Frame != 2 {
		t.Fatalf("expected disagreeing inputs to yield value 1 frame 2, got %+v", state)
	}
}

func TestChecksumTracksState(t *testing.T) {
	a := State{Frame: 1, Value: 2}.Checksum()
	b := State{Frame: 1, Value: 2}.Checksum()
	c := State{Frame: 1, Value: 3}.Checksum()
	if a != b {
		t.Fatalf("expected identical checksums for identical states")
	}
	if a == c {
		t.Fatalf("expected differing checksums for differing states")
	}
}

func TestHandleRequestsRoundTrip(t *testing.T) {
	game := New()
	game.State = State{Frame: 4, Value: 9}

	var cell netcode.StateCell[State]
	game.HandleRequests([]netcode.Request[State]{
		{Kind: netcode.RequestSaveState, Frame: 4, Cell: &cell},
	})

	game.State = State{Frame: 7, Value: 0}
	game.HandleRequests([]netcode.Request[State]{
		{Kind: netcode.RequestLoadState, Cell: &cell},
	})
	if game.LoadErr != nil {
		t.Fatalf("load failed: %v", game.LoadErr)
	}
	if game.State.Frame != 4 || game.State.Value != 9 {
		t.Fatalf("expected restored state {4 9}, got %+v", game.State)
	}
}
