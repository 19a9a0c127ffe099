package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskboard/internal/events"
)

// MockEventEmitter implements events.EventEmitter and records every
// emitted event for test assertions.
type MockEventEmitter struct {
	mu sync.Mutex

	// EmitEventFn allows test cases to mock the EmitEvent behavior
	EmitEventFn func(ctx context.Context, event *events.Event) error

	// Emitted holds every event passed to EmitEvent, in order
	Emitted []*events.Event

	// Err is returned by the default implementation when set
	Err error
}

// EmitEvent implements the events.EventEmitter interface
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	m.mu.Lock()
	m.Emitted = append(m.Emitted, event)
	m.mu.Unlock()

	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}
	return m.Err
}

// EventsOfType returns the recorded events matching the given type.
func (m *MockEventEmitter) EventsOfType(eventType string) []*events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*events.Event
	for _, e := range m.Emitted {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}
