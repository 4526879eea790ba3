package task

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chayma544/BookMate-back/internal/domain"
)

// fakeNotifier records notifications and can be configured to fail.
type fakeNotifier struct {
	mu       sync.Mutex
	received []Notification
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.received = append(f.received, n)
	return nil
}

func (f *fakeNotifier) notifications() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.received))
	copy(out, f.received)
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRequestDecidedTask(t *testing.T) {
	notifier := &fakeNotifier{}
	logger := testLogger()
	requestID := uuid.New()
	recipientID := uuid.New()

	t.Run("valid task", func(t *testing.T) {
		task, err := NewRequestDecidedTask(
			requestID, recipientID, "Kindred", domain.RequestStatusAccepted, notifier, logger)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, task.ID())
		assert.Equal(t, TaskTypeRequestDecided, task.Type())
		assert.Equal(t, TaskStatusPending, task.Status())
	})

	t.Run("nil notifier", func(t *testing.T) {
		_, err := NewRequestDecidedTask(
			requestID, recipientID, "Kindred", domain.RequestStatusAccepted, nil, logger)
		assert.ErrorIs(t, err, ErrNilNotifier)
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewRequestDecidedTask(
			requestID, recipientID, "Kindred", domain.RequestStatusAccepted, notifier, nil)
		assert.ErrorIs(t, err, ErrNilLogger)
	})

	t.Run("empty request ID", func(t *testing.T) {
		_, err := NewRequestDecidedTask(
			uuid.Nil, recipientID, "Kindred", domain.RequestStatusAccepted, notifier, logger)
		assert.ErrorIs(t, err, ErrEmptyRequestID)
	})

	t.Run("empty recipient ID", func(t *testing.T) {
		_, err := NewRequestDecidedTask(
			requestID, uuid.Nil, "Kindred", domain.RequestStatusAccepted, notifier, logger)
		assert.ErrorIs(t, err, ErrEmptyRecipientID)
	})

	t.Run("non-terminal status", func(t *testing.T) {
		_, err := NewRequestDecidedTask(
			requestID, recipientID, "Kindred", domain.RequestStatusPending, notifier, logger)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestRequestDecidedTaskPayload(t *testing.T) {
	requestID := uuid.New()
	recipientID := uuid.New()

	task, err := NewRequestDecidedTask(
		requestID, recipientID, "Beloved", domain.RequestStatusRejected, &fakeNotifier{}, testLogger())
	require.NoError(t, err)

	var payload requestDecidedPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, requestID, payload.RequestID)
	assert.Equal(t, recipientID, payload.RecipientID)
	assert.Equal(t, "Beloved", payload.BookTitle)
	assert.Equal(t, string(domain.RequestStatusRejected), payload.Status)
}

func TestRequestDecidedTaskExecute(t *testing.T) {
	requestID := uuid.New()
	recipientID := uuid.New()

	t.Run("delivers notification", func(t *testing.T) {
		notifier := &fakeNotifier{}
		task, err := NewRequestDecidedTask(
			requestID, recipientID, "Beloved", domain.RequestStatusAccepted, notifier, testLogger())
		require.NoError(t, err)

		require.NoError(t, task.Execute(context.Background()))
		assert.Equal(t, TaskStatusCompleted, task.Status())

		got := notifier.notifications()
		require.Len(t, got, 1)
		assert.Equal(t, recipientID, got[0].RecipientID)
		assert.Equal(t, requestID, got[0].RequestID)
		assert.Equal(t, domain.RequestStatusAccepted, got[0].Status)
	})

	t.Run("notifier failure fails the task", func(t *testing.T) {
		notifier := &fakeNotifier{err: errors.New("smtp down")}
		task, err := NewRequestDecidedTask(
			requestID, recipientID, "Beloved", domain.RequestStatusAccepted, notifier, testLogger())
		require.NoError(t, err)

		err = task.Execute(context.Background())
		assert.Error(t, err)
		assert.Equal(t, TaskStatusFailed, task.Status())
	})

	t.Run("cancelled context fails the task", func(t *testing.T) {
		notifier := &fakeNotifier{}
		task, err := NewRequestDecidedTask(
			requestID, recipientID, "Beloved", domain.RequestStatusAccepted, notifier, testLogger())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = task.Execute(ctx)
		assert.Error(t, err)
		assert.Equal(t, TaskStatusFailed, task.Status())
		assert.Empty(t, notifier.notifications())
	})
}

func TestRequestDecidedTaskFactoryResolveExecutor(t *testing.T) {
	notifier := &fakeNotifier{}
	factory := NewRequestDecidedTaskFactory(notifier, testLogger())

	payload, err := json.Marshal(requestDecidedPayload{
		RequestID:   uuid.New(),
		RecipientID: uuid.New(),
		BookTitle:   "Middlemarch",
		Status:      string(domain.RequestStatusAccepted),
	})
	require.NoError(t, err)

	t.Run("resolves known type", func(t *testing.T) {
		fn, err := factory.ResolveExecutor(TaskTypeRequestDecided, payload)
		require.NoError(t, err)
		require.NoError(t, fn(context.Background()))
		assert.Len(t, notifier.notifications(), 1)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := factory.ResolveExecutor("mystery", payload)
		assert.Error(t, err)
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		_, err := factory.ResolveExecutor(TaskTypeRequestDecided, []byte("{"))
		assert.Error(t, err)
	})
}
