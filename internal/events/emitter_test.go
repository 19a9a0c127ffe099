package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEventHandler records handled events and optionally fails.
type mockEventHandler struct {
	handled []*Event
	err     error
}

func (m *mockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	m.handled = append(m.handled, event)
	return m.err
}

func TestInMemoryEventEmitter(t *testing.T) {
	// Create a minimal logger that discards output
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewEvent(TypeTaskCreated, map[string]string{"key": "value"})
		require.NoError(t, err)

		// Should not error even with no handlers
		err = emitter.EmitEvent(context.Background(), event)
		assert.NoError(t, err)
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		handler1 := &mockEventHandler{}
		handler2 := &mockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event, err := NewEvent(TypeUserRegistered, map[string]string{"email": "a@example.com"})
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.NoError(t, err)
		assert.Len(t, handler1.handled, 1)
		assert.Len(t, handler2.handled, 1)
		assert.Equal(t, event.ID, handler1.handled[0].ID)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		handlerErr := errors.New("handler failure")
		failing := &mockEventHandler{err: handlerErr}
		succeeding := &mockEventHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(succeeding)

		event, err := NewEvent(TypeTaskCompleted, nil)
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.ErrorIs(t, err, handlerErr)
		// The second handler still received the event.
		assert.Len(t, succeeding.handled, 1)
	})
}

func TestEventPayloadRoundTrip(t *testing.T) {
	type payload struct {
		Email    string `json:"email"`
		FullName string `json:"fullName"`
	}

	event, err := NewEvent(TypeUserRegistered, payload{
		Email:    "user@example.com",
		FullName: "Test User",
	})
	require.NoError(t, err)
	require.NotEqual(t, event.ID.String(), "00000000-0000-0000-0000-000000000000")
	require.False(t, event.CreatedAt.IsZero())

	var decoded payload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, "user@example.com", decoded.Email)
	assert.Equal(t, "Test User", decoded.FullName)
}

func TestNewEvent_UnserializablePayload(t *testing.T) {
	_, err := NewEvent(TypeTaskCreated, make(chan int))
	assert.Error(t, err)
}
