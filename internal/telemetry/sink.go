// Package telemetry provides the structured event sink handed to every agent
// at construction. Agents record lifecycle events; there is no ambient global
// logging state.
package telemetry

import (
	"sync"
	"time"

	"adinsight/internal"
)

// Fields carries arbitrary event attributes.
type Fields map[string]interface{}

// Event is one recorded agent lifecycle event.
type Event struct {
	Agent  string
	Name   string
	Status string
	Fields Fields
	At     time.Time
}

// EventSink receives agent execution events.
type EventSink interface {
	Emit(agent, name, status string, fields Fields)
}

// LogSink writes events through the leveled logger.
type LogSink struct {
	log *internal.Logger
}

// NewLogSink creates an event sink backed by the given logger.
func NewLogSink(log *internal.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(agent, name, status string, fields Fields) {
	if status == "error" {
		s.log.Error("[%s] %s: %v", agent, name, fields)
		return
	}
	s.log.Info("[%s] %s: %v", agent, name, fields)
}

// CaptureSink records events in memory. Used by tests.
type CaptureSink struct {
	mu     sync.Mutex
	Events []Event
}

func (s *CaptureSink) Emit(agent, name, status string, fields Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, Event{
		Agent:  agent,
		Name:   name,
		Status: status,
		Fields: fields,
		At:     time.Now(),
	})
}

// Named returns captured events matching the given event name.
func (s *CaptureSink) Named(name string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.Events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type nopSink struct{}

func (nopSink) Emit(string, string, string, Fields) {}

// Nop returns a sink that discards all events.
func Nop() EventSink { return nopSink{} }
