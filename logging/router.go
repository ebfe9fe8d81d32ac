package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts functions into the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// Sink receives routed events.
type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

// NamedSink pairs a sink with the name it is reported under.
type NamedSink struct {
	Name string
	Sink Sink
}

// Router queues events and dispatches them to sinks from a single goroutine.
// Publish never blocks: events beyond the buffer are dropped and counted.
type Router struct {
	cfg      Config
	queue    chan Event
	sinks    []NamedSink
	clock    Clock
	fallback *log.Logger
	fields   map[string]any

	closed       atomic.Bool
	wg           sync.WaitGroup
	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
}

// RouterStats reports routing counters.
type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

// NewRouter constructs and starts a router over the given sinks.
func NewRouter(clock Clock, cfg Config, sinks []NamedSink) *Router {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 512
	}
	r := &Router{
		cfg:      cfg,
		queue:    make(chan Event, bufferSize),
		clock:    clock,
		fallback: log.New(os.Stderr, "[logging] ", log.LstdFlags),
		fields:   cfg.CloneFields(),
	}
	for _, named := range sinks {
		if named.Sink == nil {
			continue
		}
		r.sinks = append(r.sinks, named)
	}
	r.wg.Add(1)
	go r.dispatch()
	return r
}

// Publish enqueues an event, stamping the time and ambient fields.
func (r *Router) Publish(event Event) {
	if r == nil || r.closed.Load() {
		return
	}
	if event.Severity < r.cfg.MinimumSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.fields) > 0 {
		merged := make(map[string]any, len(r.fields)+len(event.Fields))
		for k, v := range r.fields {
			merged[k] = v
		}
		for k, v := range event.Fields {
			merged[k] = v
		}
		event.Fields = merged
	}
	select {
	case r.queue <- event:
		r.eventsTotal.Add(1)
	default:
		r.droppedTotal.Add(1)
	}
}

// Stats reports the routing counters so far.
func (r *Router) Stats() RouterStats {
	if r == nil {
		return RouterStats{}
	}
	return RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
}

// Close drains the queue, closes the sinks, and waits for the dispatcher.
func (r *Router) Close(ctx context.Context) error {
	if r == nil || !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(r.queue)
	r.wg.Wait()
	var firstErr error
	for _, named := range r.sinks {
		if err := named.Sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) dispatch() {
	defer r.wg.Done()
	for event := range r.queue {
		for _, named := range r.sinks {
			if err := named.Sink.Write(event); err != nil {
				r.fallback.Printf("sink %s write failed: %v", named.Name, err)
			}
		}
	}
}
