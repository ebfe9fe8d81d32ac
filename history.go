package netcode

// savedStates is the arena of state cells backing a session's rollback
// window. Frames map onto slots cyclically (frame mod capacity), so a slot is
// reused once the window moves past its previous occupant. The check-distance
// invariant guarantees a cell is never loaded for a frame it no longer holds;
// cellForLoad verifies that anyway and refuses mismatches.
type savedStates[S any] struct {
	cells []*StateCell[S]
}

func newSavedStates[S any](capacity int) *savedStates[S] {
	if capacity < 1 {
		capacity = 1
	}
	cells := make([]*StateCell[S], capacity)
	for i := range cells {
		cells[i] = &StateCell[S]{}
	}
	return &savedStates[S]{cells: cells}
}

// cellForSave returns the slot the given frame saves into, evicting whatever
// older frame occupied it.
func (s *savedStates[S]) cellForSave(frame Frame) *StateCell[S] {
	return s.cells[int(frame)%len(s.cells)]
}

// cellForLoad returns the slot holding the given frame's snapshot. It fails
// when the slot is empty or has been reused for a newer frame.
func (s *savedStates[S]) cellForLoad(frame Frame) (*StateCell[S], bool) {
	if frame < 0 {
		return nil, false
	}
	cell := s.cells[int(frame)%len(s.cells)]
	if cell.Frame() != frame {
		return nil, false
	}
	return cell, true
}

// window reports the oldest and newest frames currently saved.
func (s *savedStates[S]) window() (oldest, newest Frame) {
	oldest, newest = NullFrame, NullFrame
	for _, cell := range s.cells {
		f := cell.Frame()
		if f == NullFrame {
			continue
		}
		if oldest == NullFrame || f < oldest {
			oldest = f
		}
		if f > newest {
			newest = f
		}
	}
	return oldest, newest
}

func (s *savedStates[S]) capacity() int {
	return len(s.cells)
}
