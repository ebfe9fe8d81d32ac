package netcode

import (
	"errors"

	"frameloop/netcode/internal/inputqueue"
)

// Configuration errors. Raised at the call that violates a precondition; no
// session state is mutated, so the caller may correct the arguments and retry.
var (
	// ErrInvalidHandle reports a player handle outside the configured range
	// or one that is already taken.
	ErrInvalidHandle = errors.New("invalid player handle")
	// ErrUnsupportedPlayerType reports a player variant this session type
	// cannot host.
	ErrUnsupportedPlayerType = errors.New("unsupported player type")
	// ErrInsufficientPlayers reports a start attempt before the session's
	// player policy is satisfied.
	ErrInsufficientPlayers = errors.New("insufficient players")
)

// Protocol errors. They indicate caller misuse; internal state is unchanged.
var (
	// ErrSessionNotRunning reports an operation that requires a started
	// session.
	ErrSessionNotRunning = errors.New("session not running")
	// ErrSessionAlreadyStarted reports a setup operation after start.
	ErrSessionAlreadyStarted = errors.New("session already started")
	// ErrInvalidInputSize reports an input payload that does not match the
	// configured input size.
	ErrInvalidInputSize = errors.New("invalid input size")
	// ErrStaleInput reports an input for a frame already confirmed.
	ErrStaleInput = inputqueue.ErrStale
	// ErrQueueOverflow reports an input too far ahead of the input window.
	ErrQueueOverflow = inputqueue.ErrOverflow
	// ErrLoadOnEmpty reports a load from a cell that was never saved into.
	ErrLoadOnEmpty = errors.New("load from empty state cell")
)

// Advance errors.
var (
	// ErrPredictionThreshold reports that the session is a full check
	// distance ahead of the last confirmed frame. The advance did not run;
	// retry once remote inputs catch up.
	ErrPredictionThreshold = errors.New("prediction threshold reached")
	// ErrRollbackTooFar reports a misprediction older than the oldest
	// retained state snapshot. The configured history window was too small
	// for the observed conditions.
	ErrRollbackTooFar = errors.New("rollback beyond saved history")
)
