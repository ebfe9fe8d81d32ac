package netcode

import (
	"fmt"

	"frameloop/netcode/internal/inputqueue"
)

// P2PSession is the networked session variant. Local inputs enter through
// AddLocalInput; remote inputs arrive whenever the transport delivers them,
// through AddRemoteInput. Frames are simulated optimistically with predicted
// remote inputs, and when a late real input disagrees with its prediction the
// next AdvanceFrame emits a rollback batch: load the snapshot from the first
// incorrect frame, then replay forward with corrected inputs, re-saving along
// the way.
//
// The session itself is synchronous and single-threaded; the transport must
// hand it complete, already-decoded inputs from the same goroutine that calls
// AdvanceFrame.
type P2PSession[S any] struct {
	numPlayers    int
	inputSize     int
	maxPrediction int

	running      bool
	currentFrame Frame
	players      []PlayerType
	registered   []bool
	disconnected []bool
	queues       []*inputqueue.Queue
	saved        *savedStates[S]
	events       []Event
}

// NewP2PSession constructs a networked session. maxPrediction is the check
// distance: the maximum number of frames the session may run ahead of the
// last confirmed frame, and therefore the size of the rollback window.
func NewP2PSession[S any](numPlayers, inputSize, maxPrediction int) (*P2PSession[S], error) {
	if numPlayers < 1 {
		return nil, fmt.Errorf("p2p session: need at least one player, got %d", numPlayers)
	}
	if inputSize < 1 {
		return nil, fmt.Errorf("p2p session: input size must be positive, got %d", inputSize)
	}
	if maxPrediction < 1 {
		return nil, fmt.Errorf("p2p session: max prediction must be positive, got %d", maxPrediction)
	}
	queues := make([]*inputqueue.Queue, numPlayers)
	for i := range queues {
		queues[i] = inputqueue.New(inputSize, inputqueue.DefaultCapacity)
	}
	return &P2PSession[S]{
		numPlayers:    numPlayers,
		inputSize:     inputSize,
		maxPrediction: maxPrediction,
		players:       make([]PlayerType, numPlayers),
		registered:    make([]bool, numPlayers),
		disconnected:  make([]bool, numPlayers),
		queues:        queues,
		saved:         newSavedStates[S](maxPrediction + 2),
	}, nil
}

// AddPlayer registers a local or remote player. Spectators are rejected:
// spectator fan-out is not implemented, and accepting the handle while never
// delivering inputs to it would fail silently instead.
func (s *P2PSession[S]) AddPlayer(player PlayerType, handle PlayerHandle) error {
	if s.running {
		return fmt.Errorf("add player %d: %w", handle, ErrSessionAlreadyStarted)
	}
	switch player.Kind {
	case PlayerKindLocal:
	case PlayerKindRemote:
		if player.Addr == "" {
			return fmt.Errorf("add remote player %d without address: %w", handle, ErrUnsupportedPlayerType)
		}
	default:
		return fmt.Errorf("add player %d: %w", handle, ErrUnsupportedPlayerType)
	}
	if int(handle) < 0 || int(handle) >= s.numPlayers {
		return fmt.Errorf("add player %d of %d: %w", handle, s.numPlayers, ErrInvalidHandle)
	}
	if s.registered[handle] {
		return fmt.Errorf("add player %d twice: %w", handle, ErrInvalidHandle)
	}
	s.players[handle] = player
	s.registered[handle] = true
	return nil
}

// SetFrameDelay configures the local input delay for a local player. Only
// allowed before the session starts.
func (s *P2PSession[S]) SetFrameDelay(delay int, handle PlayerHandle) error {
	if s.running {
		return fmt.Errorf("set frame delay: %w", ErrSessionAlreadyStarted)
	}
	if int(handle) < 0 || int(handle) >= s.numPlayers || !s.registered[handle] {
		return fmt.Errorf("set frame delay for player %d: %w", handle, ErrInvalidHandle)
	}
	if s.players[handle].Kind != PlayerKindLocal {
		return fmt.Errorf("set frame delay for non-local player %d: %w", handle, ErrInvalidHandle)
	}
	s.queues[handle].SetFrameDelay(delay)
	return nil
}

// SetDefaultInput overrides the zero-filled payload used to predict a player
// with no confirmed history. Both sides of a session must configure the same
// default or their predictions diverge.
func (s *P2PSession[S]) SetDefaultInput(input []byte) error {
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

// StartSession moves the session into its running state. Every player slot
// must be filled first: an unmapped handle would never confirm an input and
// the session could not advance past the prediction window.
func (s *P2PSession[S]) StartSession() error {
	if s.running {
		return fmt.Errorf("start session: %w", ErrSessionAlreadyStarted)
	}
	for handle, ok := range s.registered {
		if !ok {
			return fmt.Errorf("start session: player %d missing: %w", handle, ErrInsufficientPlayers)
		}
	}
	s.running = true
	return nil
}

// AddLocalInput queues a local player's input for the current frame, shifted
// by the player's frame delay.
func (s *P2PSession[S]) AddLocalInput(handle PlayerHandle, input []byte) error {
	if !s.running {
		return fmt.Errorf("add local input: %w", ErrSessionNotRunning)
	}
	if int(handle) < 0 || int(handle) >= s.numPlayers || s.players[handle].Kind != PlayerKindLocal {
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

// AddRemoteInput records an input delivered by the transport for a remote
// player. If the frame was already simulated with a prediction, the entry is
// confirmed in place; a payload mismatch schedules a rollback for the next
// AdvanceFrame.
func (s *P2PSession[S]) AddRemoteInput(handle PlayerHandle, frame Frame, input []byte) error {
	if !s.running {
		return fmt.Errorf("add remote input: %w", ErrSessionNotRunning)
	}
	if int(handle) < 0 || int(handle) >= s.numPlayers || s.players[handle].Kind != PlayerKindRemote {
		return fmt.Errorf("add remote input for player %d: %w", handle, ErrInvalidHandle)
	}
	if len(input) != s.inputSize {
		return fmt.Errorf("add remote input of %d bytes, want %d: %w", len(input), s.inputSize, ErrInvalidInputSize)
	}
	if err := s.queues[handle].AddRemote(frame, input); err != nil {
		return fmt.Errorf("add remote input for player %d frame %d: %w", handle, frame, err)
	}
	return nil
}

// DisconnectPlayer marks a player as gone. Their inputs from here on repeat
// the last confirmed payload, tagged InputDisconnected.
func (s *P2PSession[S]) DisconnectPlayer(handle PlayerHandle) error {
	if int(handle) < 0 || int(handle) >= s.numPlayers || !s.registered[handle] {
		return fmt.Errorf("disconnect player %d: %w", handle, ErrInvalidHandle)
	}
	if !s.disconnected[handle] {
		s.disconnected[handle] = true
		s.events = append(s.events, Event{
			Kind:   EventPlayerDisconnected,
			Frame:  s.currentFrame,
			Handle: handle,
		})
	}
	return nil
}

// AdvanceFrame computes the request batch for one frame step and hands it to
// the host synchronously. If a misprediction is pending, the batch starts
// with the rollback-and-resimulate sequence. The call fails without mutating
// the session when the prediction window is exhausted (ErrPredictionThreshold)
// or the misprediction lies outside the saved history (ErrRollbackTooFar).
func (s *P2PSession[S]) AdvanceFrame(host RequestHandler[S]) error {
	if !s.running {
		return fmt.Errorf("advance frame: %w", ErrSessionNotRunning)
	}
	confirmed := s.lastConfirmedFrame()
	if s.currentFrame-confirmed > Frame(s.maxPrediction) {
		return fmt.Errorf("advance frame %d with confirmed %d: %w", s.currentFrame, confirmed, ErrPredictionThreshold)
	}

	var requests []Request[S]
	first := s.firstIncorrectFrame()
	if first != NullFrame && first < s.currentFrame {
		cell, ok := s.saved.cellForLoad(first)
		if !ok {
			return fmt.Errorf("advance frame %d: rollback to %d: %w", s.currentFrame, first, ErrRollbackTooFar)
		}
		for _, q := range s.queues {
			q.ResetPrediction(first)
		}
		requests = append(requests, Request[S]{Kind: RequestLoadState, Cell: cell})
		for f := first; f < s.currentFrame; f++ {
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

	// Inputs age out in lockstep with saved-state eviction: the ring slot for
	// a discarded frame has been reused, so its input can never be needed.
	if horizon := s.currentFrame - Frame(s.saved.capacity()); horizon > 0 {
		for _, q := range s.queues {
			q.DiscardBefore(horizon)
		}
	}
	return nil
}

// DrainEvents returns the events accumulated since the previous drain.
func (s *P2PSession[S]) DrainEvents() []Event {
	if len(s.events) == 0 {
		return nil
	}
	out := make([]Event, len(s.events))
	copy(out, s.events)
	s.events = s.events[:0]
	return out
}

// CurrentFrame reports the next frame the session will advance.
func (s *P2PSession[S]) CurrentFrame() Frame {
	return s.currentFrame
}

// LastConfirmedFrame reports the newest frame for which every player's input
// is confirmed.
func (s *P2PSession[S]) LastConfirmedFrame() Frame {
	return s.lastConfirmedFrame()
}

func (s *P2PSession[S]) lastConfirmedFrame() Frame {
	confirmed := NullFrame
	firstSeen := true
	for handle, q := range s.queues {
		if s.disconnected[handle] {
			continue
		}
		f := q.LastConfirmedFrame()
		if firstSeen || f < confirmed {
			confirmed = f
			firstSeen = false
		}
	}
	return confirmed
}

func (s *P2PSession[S]) firstIncorrectFrame() Frame {
	first := NullFrame
	for _, q := range s.queues {
		f := q.FirstIncorrectFrame()
		if f == NullFrame {
			continue
		}
		if first == NullFrame || f < first {
			first = f
		}
	}
	return first
}

func (s *P2PSession[S]) inputsForFrame(frame Frame) []PlayerInput {
	inputs := make([]PlayerInput, s.numPlayers)
	for handle, q := range s.queues {
		bytes, status := q.InputForFrame(frame)
		if s.disconnected[handle] {
			status = InputDisconnected
		}
		inputs[handle] = PlayerInput{Bytes: bytes, Status: status}
	}
	return inputs
}
