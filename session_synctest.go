package netcode

import (
	"fmt"

	"frameloop/netcode/internal/inputqueue"
)

// SyncTestSession is the single-process correctness harness. All players are
// local. Every advance past the check distance reloads the snapshot from
// checkDistance frames back and replays forward through a deliberately
// delayed second pass, comparing the checksum each replayed frame produces
// against the checksum recorded when the frame was first simulated. A
// mismatch means the simulation is not deterministic (or mutates state
// outside the request protocol) and surfaces as a DesyncDetected event.
type SyncTestSession[S any] struct {
	numPlayers    int
	inputSize     int
	checkDistance int

	running      bool
	currentFrame Frame
	registered   []bool
	queues       []*inputqueue.Queue
	saved        *savedStates[S]
	firstPass    map[Frame]Checksum
	events       []Event
}

// NewSyncTestSession constructs a local session for the given player count,
// input payload size, and checksum comparison distance. A check distance of
// zero disables replay verification.
func NewSyncTestSession[S any](numPlayers, inputSize, checkDistance int) (*SyncTestSession[S], error) {
	if numPlayers < 1 {
		return nil, fmt.Errorf("sync test session: need at least one player, got %d", numPlayers)
	}
	if inputSize < 1 {
		return nil, fmt.Errorf("sync test session: input size must be positive, got %d", inputSize)
	}
	if checkDistance < 0 {
		return nil, fmt.Errorf("sync test session: check distance must not be negative, got %d", checkDistance)
	}
	queues := make([]*inputqueue.Queue, numPlayers)
	for i := range queues {
		queues[i] = inputqueue.New(inputSize, inputqueue.DefaultCapacity)
	}
	return &SyncTestSession[S]{
		numPlayers:    numPlayers,
		inputSize:     inputSize,
		checkDistance: checkDistance,
		registered:    make([]bool, numPlayers),
		queues:        queues,
		saved:         newSavedStates[S](checkDistance + 2),
		firstPass:     make(map[Frame]Checksum),
	}, nil
}

// AddPlayer registers a player slot. Only local players are supported; the
// handle must lie in [0, numPlayers) and be unused.
func (s *SyncTestSession[S]) AddPlayer(player PlayerType, handle PlayerHandle) error {
	if s.running {
		return fmt.Errorf("add player %d: %w", handle, ErrSessionAlreadyStarted)
	}
	if player.Kind != PlayerKindLocal {
		return fmt.Errorf("add player %d: %w", handle, ErrUnsupportedPlayerType)
	}
	if int(handle) < 0 || int(handle) >= s.numPlayers {
		return fmt.Errorf("add player %d of %d: %w", handle, s.numPlayers, ErrInvalidHandle)
	}
	if s.registered[handle] {
		return fmt.Errorf("add player %d twice: %w", handle, ErrInvalidHandle)
	}
	s.registered[handle] = true
	return nil
}

// SetFrameDelay holds a player's local inputs back by the given number of
// frames. Splicing a delay into an advancing queue would corrupt predictions
// already handed out, so this is only allowed before the session starts.
func (s *SyncTestSession[S]) SetFrameDelay(delay int, handle PlayerHandle) error {
	if s.running {
		return fmt.Errorf("set frame delay: %w", ErrSessionAlreadyStarted)
	}
	if int(handle) < 0 || int(handle) >= s.numPlayers {
		return fmt.Errorf("set frame delay for player %d: %w", handle, ErrInvalidHandle)
	}
	s.queues[handle].SetFrameDelay(delay)
	return nil
}

// SetDefaultInput overrides the zero-filled payload used when a frame must be
// predicted with no confirmed history at all.
func (s *SyncTestSession[S]) SetDefaultInput(input []byte) error {
	if s.running {
		return fmt.Errorf("set default input: %w", ErrSessionAlreadyStarted)
	}
	if len(input) != s.inputSize {
		return fmt.Errorf("set default input of %d bytes, want %d: %w", len(input), s.inputSize, ErrInvalidInputSize)
	}
	for _, q := range s.queues {
		q.SetDefaultInput(input)
	}
	return nil
}

// StartSession moves the session into its running state. The sync test
// variant has no minimum player policy: handles that never received inputs
// simply contribute the default payload every frame.
func (s *SyncTestSession[S]) StartSession() error {
	if s.running {
		return fmt.Errorf("start session: %w", ErrSessionAlreadyStarted)
	}
	s.running = true
	return nil
}

// AddLocalInput queues an input for the current frame, shifted by the
// player's frame delay.
func (s *SyncTestSession[S]) AddLocalInput(handle PlayerHandle, input []byte) error {
	if !s.running {
		return fmt.Errorf("add local input: %w", ErrSessionNotRunning)
	}
	if int(handle) < 0 || int(handle) >= s.numPlayers {
		return fmt.Errorf("add local input for player %d: %w", handle, ErrInvalidHandle)
	}
	if len(input) != s.inputSize {
		return fmt.Errorf("add local input of %d bytes, want %d: %w", len(input), s.inputSize, ErrInvalidInputSize)
	}
	if _, err := s.queues[handle].Add(s.currentFrame, input); err != nil {
		return fmt.Errorf("add local input for player %d: %w", handle, err)
	}
	return nil
}

// AdvanceFrame computes the request batch for one frame step and hands it to
// the host synchronously. Once the session is more than checkDistance frames
// in, the batch first reloads the snapshot from checkDistance frames back and
// replays forward, so every confirmed frame is simulated twice before its
// checksums are compared.
func (s *SyncTestSession[S]) AdvanceFrame(host RequestHandler[S]) error {
	if !s.running {
		return fmt.Errorf("advance frame: %w", ErrSessionNotRunning)
	}

	var requests []Request[S]
	replayFrom := NullFrame
	if s.checkDistance > 0 && s.currentFrame > Frame(s.checkDistance) {
		replayFrom = s.currentFrame - Frame(s.checkDistance)
		cell, ok := s.saved.cellForLoad(replayFrom)
		if !ok {
			return fmt.Errorf("advance frame %d: replay from %d: %w", s.currentFrame, replayFrom, ErrRollbackTooFar)
		}
		requests = append(requests, Request[S]{Kind: RequestLoadState, Cell: cell})
		for f := replayFrom; f < s.currentFrame; f++ {
			requests = append(requests,
				Request[S]{Kind: RequestSaveState, Frame: f, Cell: s.saved.cellForSave(f)},
				Request[S]{Kind: RequestAdvanceFrame, Inputs: s.inputsForFrame(f)},
			)
		}
	}

	advanced := s.currentFrame
	requests = append(requests,
		Request[S]{Kind: RequestSaveState, Frame: advanced, Cell: s.saved.cellForSave(advanced)},
		Request[S]{Kind: RequestAdvanceFrame, Inputs: s.inputsForFrame(advanced)},
	)
	s.currentFrame++

	host.HandleRequests(requests)

	if replayFrom != NullFrame {
		for f := replayFrom; f < advanced; f++ {
			s.compareChecksum(f)
		}
	}
	s.recordFirstPass(advanced)
	s.pruneFirstPass()

	// Inputs age out in lockstep with the checksum window so the queues stay
	// bounded over arbitrarily long runs.
	if horizon := s.currentFrame - Frame(s.checkDistance) - 1; horizon > 0 {
		for _, q := range s.queues {
			q.DiscardBefore(horizon)
		}
	}
	return nil
}

// DrainEvents returns the events accumulated since the previous drain.
func (s *SyncTestSession[S]) DrainEvents() []Event {
	if len(s.events) == 0 {
		return nil
	}
	out := make([]Event, len(s.events))
	copy(out, s.events)
	s.events = s.events[:0]
	return out
}

// CurrentFrame reports the next frame the session will advance.
func (s *SyncTestSession[S]) CurrentFrame() Frame {
	return s.currentFrame
}

// NumPlayers reports the configured player count.
func (s *SyncTestSession[S]) NumPlayers() int {
	return s.numPlayers
}

func (s *SyncTestSession[S]) inputsForFrame(frame Frame) []PlayerInput {
	inputs := make([]PlayerInput, s.numPlayers)
	for handle, q := range s.queues {
		bytes, status := q.InputForFrame(frame)
		inputs[handle] = PlayerInput{Bytes: bytes, Status: status}
	}
	return inputs
}

// recordFirstPass stores the checksum the host saved for the frame's first
// simulation, the reference every later replay is compared against.
func (s *SyncTestSession[S]) recordFirstPass(frame Frame) {
	cell, ok := s.saved.cellForLoad(frame)
	if !ok {
		return
	}
	if sum, ok := cell.Checksum(); ok {
		s.firstPass[frame] = sum
	}
}

func (s *SyncTestSession[S]) compareChecksum(frame Frame) {
	recorded, ok := s.firstPass[frame]
	if !ok {
		return
	}
	cell, ok := s.saved.cellForLoad(frame)
	if !ok {
		return
	}
	replayed, ok := cell.Checksum()
	if !ok {
		return
	}
	if replayed != recorded {
		s.events = append(s.events, Event{
			Kind:     EventDesyncDetected,
			Frame:    frame,
			Recorded: recorded,
			Replayed: replayed,
		})
	}
}

func (s *SyncTestSession[S]) pruneFirstPass() {
	horizon := s.currentFrame - Frame(s.checkDistance) - 1
	for frame := range s.firstPass {
		if frame < horizon {
			delete(s.firstPass, frame)
		}
	}
}
