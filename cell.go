package netcode

import "fmt"

// StateCell holds one host-captured snapshot of game state, stamped with the
// frame it was taken at and an optional checksum. Cells are owned by the
// session's history ring; hosts receive a cell only inside request
// fulfilment and must copy state in and out rather than retain references,
// because the same cell is overwritten in place during rollback replays.
type StateCell[S any] struct {
	valid    bool
	frame    Frame
	state    S
	checksum *Checksum
}

// Save stores the snapshot unconditionally, replacing any previous content.
// The host must only call this while fulfilling a SaveState request for the
// given frame. The checksum may be nil when desync detection is not in use.
func (c *StateCell[S]) Save(frame Frame, state S, checksum *Checksum) {
	c.valid = true
	c.frame = frame
	c.state = state
	if checksum != nil {
		sum := *checksum
		c.checksum = &sum
	} else {
		c.checksum = nil
	}
}

// Load returns the stored snapshot. Loading a cell that was never saved into
// fails with ErrLoadOnEmpty: receiving a LoadState request without a matching
// prior SaveState is a protocol violation on the session side, and fulfilling
// it would hand the simulation garbage.
func (c *StateCell[S]) Load() (Frame, S, error) {
	if !c.valid {
		var zero S
		return NullFrame, zero, fmt.Errorf("state cell: %w", ErrLoadOnEmpty)
	}
	return c.frame, c.state, nil
}

// Frame reports the frame of the stored snapshot, or NullFrame when empty.
func (c *StateCell[S]) Frame() Frame {
	if !c.valid {
		return NullFrame
	}
	return c.frame
}

// Checksum reports the checksum recorded with the last save, if any.
func (c *StateCell[S]) Checksum() (Checksum, bool) {
	if !c.valid || c.checksum == nil {
		return Checksum{}, false
	}
	return *c.checksum, true
}
