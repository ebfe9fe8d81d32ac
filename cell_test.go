package netcode_test

import (
	"errors"
	"testing"

	"frameloop/netcode"
)

func TestLoadOnEmptyCell(t *testing.T) {
	var cell netcode.StateCell[int]
	for i := 0; i < 2; i++ {
		if _, _, err := cell.Load(); !errors.Is(err, netcode.ErrLoadOnEmpty) {
			t.Fatalf("expected ErrLoadOnEmpty, got %v", err)
		}
	}
	if cell.Frame() != netcode.NullFrame {
		t.Fatalf("expected NullFrame for empty cell, got %d", cell.Frame())
	}
	if _, ok := cell.Checksum(); ok {
		t.Fatalf("expected no checksum on empty cell")
	}
}

func TestSaveThenLoadIsIdempotent(t *testing.T) {
	var cell netcode.StateCell[string]
	sum := netcode.Checksum{1, 2, 3}
	cell.Save(9, "state-nine", &sum)

	for i := 0; i < 3; i++ {
		frame, state, err := cell.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if frame != 9 || state != "state-nine" {
			t.Fatalf("expected (9, state-nine), got (%d, %q)", frame, state)
		}
	}
	got, ok := cell.Checksum()
	if !ok || got != sum {
		t.Fatalf("expected stored checksum %v, got %v (%v)", sum, got, ok)
	}
}

func TestSaveOverwrites(t *testing.T) {
	var cell netcode.StateCell[string]
	sum := netcode.Checksum{7}
	cell.Save(1, "one", &sum)
	cell.Save(2, "two", nil)

	frame, state, err := cell.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if frame != 2 || state != "two" {
		t.Fatalf("expected overwritten content (2, two), got (%d, %q)", frame, state)
	}
	if _, ok := cell.Checksum(); ok {
		t.Fatalf("expected nil checksum after checksum-less save")
	}
}
