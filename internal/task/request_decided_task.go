package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
)

// Common errors
var (
	ErrNilNotifier      = errors.New("notifier cannot be nil")
	ErrNilLogger        = errors.New("logger cannot be nil")
	ErrEmptyRecipientID = errors.New("recipient ID cannot be empty")
	ErrEmptyRequestID   = errors.New("request ID cannot be empty")
	ErrInvalidStatus    = errors.New("status must be a terminal request status")
)

// requestDecidedPayload represents the serialized data stored in the task
type requestDecidedPayload struct {
	RequestID   uuid.UUID `json:"request_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	BookTitle   string    `json:"book_title"`
	Status      string    `json:"status"`
}

// RequestDecidedTask implements the Task interface for notifying a requester
// that their request was accepted or rejected.
type RequestDecidedTask struct {
	id          uuid.UUID
	requestID   uuid.UUID
	recipientID uuid.UUID
	bookTitle   string
	reqStatus   domain.RequestStatus
	notifier    Notifier
	logger      *slog.Logger
	status      TaskStatus
}

// NewRequestDecidedTask creates a notification task for one recipient.
func NewRequestDecidedTask(
	requestID uuid.UUID,
	recipientID uuid.UUID,
	bookTitle string,
	reqStatus domain.RequestStatus,
	notifier Notifier,
	logger *slog.Logger,
) (*RequestDecidedTask, error) {
	if notifier == nil {
		return nil, ErrNilNotifier
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if requestID == uuid.Nil {
		return nil, ErrEmptyRequestID
	}
	if recipientID == uuid.Nil {
		return nil, ErrEmptyRecipientID
	}
	if reqStatus != domain.RequestStatusAccepted && reqStatus != domain.RequestStatusRejected {
		return nil, ErrInvalidStatus
	}

	return &RequestDecidedTask{
		id:          uuid.New(),
		requestID:   requestID,
		recipientID: recipientID,
		bookTitle:   bookTitle,
		reqStatus:   reqStatus,
		notifier:    notifier,
		logger:      logger.With("task_type", TaskTypeRequestDecided, "request_id", requestID),
		status:      TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *RequestDecidedTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *RequestDecidedTask) Type() string {
	return TaskTypeRequestDecided
}

// Payload returns the task data as a byte slice
func (t *RequestDecidedTask) Payload() []byte {
	payload := requestDecidedPayload{
		RequestID:   t.requestID,
		RecipientID: t.recipientID,
		BookTitle:   t.bookTitle,
		Status:      string(t.reqStatus),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// If marshal fails, return an empty payload with error logged
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *RequestDecidedTask) Status() TaskStatus {
	return t.status
}

// Execute delivers the notification.
func (t *RequestDecidedTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	err := t.notifier.Notify(ctx, Notification{
		RecipientID: t.recipientID,
		RequestID:   t.requestID,
		BookTitle:   t.bookTitle,
		Status:      t.reqStatus,
	})
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to deliver notification",
			"recipient_id", t.recipientID,
			"error", err)
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("notification delivered", "recipient_id", t.recipientID)
	return nil
}
