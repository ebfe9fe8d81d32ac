package logging

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// ConsoleSink renders events as single text lines.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSink constructs a sink writing to the given writer.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

// Write implements Sink.
func (s *ConsoleSink) Write(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.out, "%s %-5s [%s] %s%s\n",
		event.Time.Format("15:04:05.000"),
		event.Severity,
		event.Category,
		event.Message,
		formatFields(event.Fields),
	)
	return err
}

// Close implements Sink.
func (s *ConsoleSink) Close(context.Context) error {
	return nil
}

func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += fmt.Sprintf(" %s=%v", k, fields[k])
	}
	return out
}
