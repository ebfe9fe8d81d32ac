// Package telemetry defines the logging and metrics seams the boundary
// components report through. The session core itself never logs; these
// interfaces belong to the transport, recording, and CLI layers.
package telemetry

import (
	"log"
	"sort"
	"sync"
)

// Logger exposes the logging capability required by boundary components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// Metrics exposes the counter and gauge methods boundary components emit to.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) Add(string, uint64)   {}
func (NopMetrics) Store(string, uint64) {}

// MapMetrics accumulates measurements in memory. Safe for concurrent use;
// backs tests and the CLI summary output.
type MapMetrics struct {
	mu     sync.Mutex
	values map[string]uint64
}

// NewMapMetrics constructs an empty in-memory metrics collector.
func NewMapMetrics() *MapMetrics {
	return &MapMetrics{values: make(map[string]uint64)}
}

// Add increments a counter.
func (m *MapMetrics) Add(key string, delta uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] += delta
}

// Store overwrites a gauge.
func (m *MapMetrics) Store(key string, value uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Value reports a single measurement.
func (m *MapMetrics) Value(key string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// Keys reports the recorded metric keys in sorted order.
func (m *MapMetrics) Keys() []string {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
