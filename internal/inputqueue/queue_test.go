package inputqueue

import (
	"errors"
	"testing"

	"frameloop/netcode/internal/frames"
)

func input(b byte, size int) []byte {
	out := make([]byte, size)
	out[0] = b
	return out
}

func TestAddAndLookup(t *testing.T) {
	q := New(4, 16)
	for f := frames.Frame(0); f < 3; f++ {
		landed, err := q.Add(f, input(byte(f+1), 4))
		if err != nil {
			t.Fatalf("add frame %d: %v", f, err)
		}
		if landed != f {
			t.Fatalf("expected frame %d, landed on %d", f, landed)
		}
	}
	got, status := q.InputForFrame(1)
	if status != frames.InputConfirmed {
		t.Fatalf("expected confirmed input, got %v", status)
	}
	if got[0] != 2 {
		t.Fatalf("expected payload 2, got %d", got[0])
	}
	if q.LastConfirmedFrame() != 2 {
		t.Fatalf("expected confirmed watermark 2, got %d", q.LastConfirmedFrame())
	}
}

func TestStaleInputRejected(t *testing.T) {
	q := New(4, 16)
	if _, err := q.Add(0, input(1, 4)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := q.Add(0, input(2, 4)); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
}

func TestOverflowRejected(t *testing.T) {
	q := New(4, 8)
	if _, err := q.Add(0, input(1, 4)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := q.AddRemote(20, input(2, 4)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestPredictionRepeatsLastConfirmed(t *testing.T) {
	q := New(4, 16)
	if _, err := q.Add(0, input(7, 4)); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, status := q.InputForFrame(1)
	if status != frames.InputPredicted {
		t.Fatalf("expected predicted input, got %v", status)
	}
	if got[0] != 7 {
		t.Fatalf("expected prediction to repeat 7, got %d", got[0])
	}
	// The same frame must replay with identical bytes.
	again, _ := q.InputForFrame(1)
	if again[0] != 7 {
		t.Fatalf("expected stable replay bytes, got %d", again[0])
	}
}

func TestPredictionWithoutHistoryUsesDefault(t *testing.T) {
	q := New(4, 16)
	got, status := q.InputForFrame(0)
	if status != frames.InputPredicted {
		t.Fatalf("expected predicted input, got %v", status)
	}
	for i, b := range got {
		if b != 0 {
			t.Fatalf("expected zero default at byte %d, got %d", i, b)
		}
	}

	q2 := New(4, 16)
	q2.SetDefaultInput(input(9, 4))
	got, _ = q2.InputForFrame(0)
	if got[0] != 9 {
		t.Fatalf("expected configured default 9, got %d", got[0])
	}
}

func TestConfirmMismatchMarksFirstIncorrect(t *testing.T) {
	q := New(4, 16)
	if _, err := q.Add(0, input(1, 4)); err != nil {
		t.Fatalf("add: %v", err)
	}
	q.InputForFrame(1)
	q.InputForFrame(2)

	// Matching payload resolves the prediction without flagging an error.
	if err := q.AddRemote(1, input(1, 4)); err != nil {
		t.Fatalf("confirm frame 1: %v", err)
	}
	if q.FirstIncorrectFrame() != frames.Null {
		t.Fatalf("expected no misprediction, got %d", q.FirstIncorrectFrame())
	}

	if err := q.AddRemote(2, input(5, 4)); err != nil {
		t.Fatalf("confirm frame 2: %v", err)
	}
	if q.FirstIncorrectFrame() != 2 {
		t.Fatalf("expected first incorrect frame 2, got %d", q.FirstIncorrectFrame())
	}
	got, status := q.InputForFrame(2)
	if status != frames.InputConfirmed || got[0] != 5 {
		t.Fatalf("expected corrected confirmed input 5, got %d (%v)", got[0], status)
	}

	q.ResetPrediction(2)
	if q.FirstIncorrectFrame() != frames.Null {
		t.Fatalf("expected cleared misprediction marker")
	}
	// New predictions repeat the corrected input.
	got, _ = q.InputForFrame(3)
	if got[0] != 5 {
		t.Fatalf("expected prediction to repeat corrected 5, got %d", got[0])
	}
}

func TestFrameDelayPadsWithDefault(t *testing.T) {
	q := New(4, 16)
	q.SetFrameDelay(2)
	landed, err := q.Add(0, input(3, 4))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if landed != 2 {
		t.Fatalf("expected input to land on frame 2, got %d", landed)
	}
	for f := frames.Frame(0); f < 2; f++ {
		got, status := q.InputForFrame(f)
		if status != frames.InputConfirmed {
			t.Fatalf("expected padded frame %d to be confirmed, got %v", f, status)
		}
		if got[0] != 0 {
			t.Fatalf("expected zero pad at frame %d, got %d", f, got[0])
		}
	}
	got, _ := q.InputForFrame(2)
	if got[0] != 3 {
		t.Fatalf("expected delayed input visible at frame 2, got %d", got[0])
	}
}

func TestDiscardBefore(t *testing.T) {
	q := New(4, 16)
	for f := frames.Frame(0); f < 6; f++ {
		if _, err := q.Add(f, input(byte(f), 4)); err != nil {
			t.Fatalf("add frame %d: %v", f, err)
		}
	}
	q.DiscardBefore(4)
	if q.Len() != 2 {
		t.Fatalf("expected 2 retained entries, got %d", q.Len())
	}
	if _, err := q.Add(3, input(1, 4)); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale for discarded frame, got %v", err)
	}
}
