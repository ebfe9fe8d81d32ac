// Package inputqueue stores the per-player input history a session consults
// every frame. Missing inputs are synthesized with the repeat-last policy and
// remembered, so a later replay of the same frame sees identical bytes unless
// the real input arrived and corrected the entry in between.
package inputqueue

import (
	"bytes"
	"errors"
	"fmt"

	"frameloop/netcode/internal/frames"
	"frameloop/netcode/internal/ringbuf"
)

// DefaultCapacity is the queue length used when the caller does not size the
// queue explicitly.
const DefaultCapacity = 128

var (
	// ErrStale reports an input for a frame the queue has already passed.
	ErrStale = errors.New("stale input frame")
	// ErrOverflow reports an input too far ahead of the retained window.
	ErrOverflow = errors.New("input queue overflow")
)

// Entry is one frame of input together with its provenance tag.
type Entry struct {
	Frame  frames.Frame
	Bytes  []byte
	Status frames.InputStatus
}

// Queue keeps a contiguous run of input entries indexed by frame.
type Queue struct {
	inputSize    int
	frameDelay   int
	defaultInput []byte

	entries        *ringbuf.Ring[*Entry]
	lastAdded      frames.Frame
	lastConfirmed  frames.Frame
	lastRequested  frames.Frame
	firstIncorrect frames.Frame
}

// New constructs a queue for fixed-size inputs. A capacity below 1 falls back
// to DefaultCapacity.
func New(inputSize, capacity int) *Queue {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Queue{
		inputSize:      inputSize,
		defaultInput:   make([]byte, inputSize),
		entries:        ringbuf.New[*Entry](capacity),
		lastAdded:      frames.Null,
		lastConfirmed:  frames.Null,
		lastRequested:  frames.Null,
		firstIncorrect: frames.Null,
	}
}

// SetFrameDelay configures how many frames a local input is held back before
// it becomes visible. The session only allows this before it starts.
func (q *Queue) SetFrameDelay(delay int) {
	if delay < 0 {
		delay = 0
	}
	q.frameDelay = delay
}

// FrameDelay reports the configured local input delay.
func (q *Queue) FrameDelay() int {
	return q.frameDelay
}

// SetDefaultInput overrides the zero-filled input used when predicting with
// no confirmed history at all.
func (q *Queue) SetDefaultInput(input []byte) {
	q.defaultInput = cloneInput(input)
}

// Add appends a local input for the given session frame, shifted by the
// configured frame delay. Gaps caused by a delay change are padded with
// repeats of the newest entry so the run stays contiguous. Returns the frame
// the input landed on.
func (q *Queue) Add(frame frames.Frame, input []byte) (frames.Frame, error) {
	target := frame + frames.Frame(q.frameDelay)
	return target, q.insert(target, input, frames.InputConfirmed)
}

// AddRemote records an input that arrived from a remote player. If the frame
// was already predicted the entry is confirmed in place; a differing payload
// marks the frame as the start of the misprediction window.
func (q *Queue) AddRemote(frame frames.Frame, input []byte) error {
	if _, ok := q.entryIndex(frame); ok {
		return q.Confirm(frame, input)
	}
	return q.insert(frame, input, frames.InputPredicted)
}

// Confirm resolves a previously stored entry against the real input. A
// byte-for-byte mismatch records the frame in FirstIncorrectFrame so the
// session knows how far back the next rollback must reach.
func (q *Queue) Confirm(frame frames.Frame, input []byte) error {
	idx, ok := q.entryIndex(frame)
	if !ok {
		return fmt.Errorf("confirm frame %d: %w", frame, ErrStale)
	}
	entry, _ := q.entries.At(idx)
	if entry.Status == frames.InputConfirmed {
		return fmt.Errorf("confirm frame %d: %w", frame, ErrStale)
	}
	if !bytes.Equal(entry.Bytes, input) {
		copy(entry.Bytes, input)
		if q.firstIncorrect == frames.Null || frame < q.firstIncorrect {
			q.firstIncorrect = frame
		}
	}
	entry.Status = frames.InputConfirmed
	q.advanceConfirmed()
	return nil
}

// InputForFrame returns the input to simulate the given frame with. A frame
// without a stored entry gets a prediction that repeats the newest entry (or
// the default input when the queue has no history), and the prediction is
// stored so replays of the frame are deterministic.
func (q *Queue) InputForFrame(frame frames.Frame) ([]byte, frames.InputStatus) {
	if frame > q.lastRequested {
		q.lastRequested = frame
	}
	if idx, ok := q.entryIndex(frame); ok {
		entry, _ := q.entries.At(idx)
		return cloneInput(entry.Bytes), entry.Status
	}
	if front, ok := q.entries.Front(); ok && frame < front.Frame {
		// The entry was discarded; the session's window invariants keep this
		// path unreachable during a legal rollback.
		return cloneInput(q.defaultInput), frames.InputPredicted
	}
	prediction := q.repeatBytes()
	for f := q.lastAdded + 1; f <= frame; f++ {
		q.append(&Entry{Frame: f, Bytes: cloneInput(prediction), Status: frames.InputPredicted})
	}
	return cloneInput(prediction), frames.InputPredicted
}

// FirstIncorrectFrame reports the lowest frame whose prediction has been
// proven wrong since the last rollback, or frames.Null.
func (q *Queue) FirstIncorrectFrame() frames.Frame {
	return q.firstIncorrect
}

// ResetPrediction drops the stale predictions past the given frame and clears
// the misprediction marker. Fresh requests re-predict from the corrected
// history.
func (q *Queue) ResetPrediction(frame frames.Frame) {
	for {
		back, ok := q.entries.Back()
		if !ok || back.Frame <= frame || back.Status != frames.InputPredicted {
			break
		}
		q.entries.PopBack()
	}
	if back, ok := q.entries.Back(); ok {
		q.lastAdded = back.Frame
	} else {
		q.lastAdded = frames.Null
	}
	q.firstIncorrect = frames.Null
}

// LastConfirmedFrame reports the contiguous confirmed watermark.
func (q *Queue) LastConfirmedFrame() frames.Frame {
	return q.lastConfirmed
}

// DiscardBefore drops entries older than the given frame. The session calls
// this in lockstep with saved-state eviction so an input is never retained
// for a frame whose state is gone.
func (q *Queue) DiscardBefore(frame frames.Frame) {
	for {
		front, ok := q.entries.Front()
		if !ok || front.Frame >= frame {
			return
		}
		q.entries.PopFront()
	}
}

// Len reports the number of stored entries.
func (q *Queue) Len() int {
	return q.entries.Len()
}

func (q *Queue) insert(target frames.Frame, input []byte, padStatus frames.InputStatus) error {
	expected := q.lastAdded + 1
	if target < expected {
		return fmt.Errorf("frame %d already recorded through %d: %w", target, q.lastAdded, ErrStale)
	}
	base := expected
	if front, ok := q.entries.Front(); ok {
		base = front.Frame
	}
	if int(target-base)+1 > q.entries.Cap() {
		return fmt.Errorf("frame %d exceeds window starting at %d: %w", target, base, ErrOverflow)
	}
	pad := q.repeatBytes()
	for f := expected; f < target; f++ {
		q.append(&Entry{Frame: f, Bytes: cloneInput(pad), Status: padStatus})
	}
	q.append(&Entry{Frame: target, Bytes: cloneInput(input), Status: frames.InputConfirmed})
	q.advanceConfirmed()
	return nil
}

func (q *Queue) append(entry *Entry) {
	q.entries.PushBack(entry)
	q.lastAdded = entry.Frame
}

// advanceConfirmed pushes the confirmed watermark over every contiguous
// confirmed entry.
func (q *Queue) advanceConfirmed() {
	for {
		idx, ok := q.entryIndex(q.lastConfirmed + 1)
		if !ok {
			return
		}
		entry, _ := q.entries.At(idx)
		if entry.Status != frames.InputConfirmed {
			return
		}
		q.lastConfirmed++
	}
}

func (q *Queue) entryIndex(frame frames.Frame) (int, bool) {
	front, ok := q.entries.Front()
	if !ok {
		return 0, false
	}
	idx := int(frame - front.Frame)
	if idx < 0 || idx >= q.entries.Len() {
		return 0, false
	}
	return idx, true
}

// repeatBytes returns the newest stored input, or the default input when the
// queue has no history yet.
func (q *Queue) repeatBytes() []byte {
	if back, ok := q.entries.Back(); ok {
		return back.Bytes
	}
	return q.defaultInput
}

func cloneInput(input []byte) []byte {
	out := make([]byte, len(input))
	copy(out, input)
	return out
}
