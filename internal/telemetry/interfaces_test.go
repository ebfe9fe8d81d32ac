package telemetry

import (
	"bytes"
	"log"
	"testing"
)

func TestWrapLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogger(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := log.New(&buf, "", 0)
		logger := WrapLogger(base)
		logger.Printf("hello %s", "world")
		if got := buf.String(); got != "hello world\n" {
			t.Fatalf("unexpected log output: %q", got)
		}
	})
}

func TestMapMetrics(t *testing.T) {
	metrics := NewMapMetrics()

	metrics.Add("test_counter", 2)
	metrics.Store("test_counter", 5)
	metrics.Add("test_counter", 3)

	if got := metrics.Value("test_counter"); got != 8 {
		t.Fatalf("unexpected metric value: %d", got)
	}
	metrics.Add("another", 1)
	keys := metrics.Keys()
	if len(keys) != 2 || keys[0] != "another" || keys[1] != "test_counter" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	// Ensure nil receivers do not panic.
	var nilMetrics *MapMetrics
	nilMetrics.Add("ignored", 1)
	nilMetrics.Store("ignored", 1)
	if nilMetrics.Value("ignored") != 0 {
		t.Fatalf("expected zero value from nil metrics")
	}
}
