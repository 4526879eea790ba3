package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
)

// RequestDecidedTaskFactory creates RequestDecidedTask instances
type RequestDecidedTaskFactory struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewRequestDecidedTaskFactory creates a new factory for RequestDecidedTasks
func NewRequestDecidedTaskFactory(notifier Notifier, logger *slog.Logger) *RequestDecidedTaskFactory {
	return &RequestDecidedTaskFactory{
		notifier: notifier,
		logger:   logger.With("component", "request_decided_task_factory"),
	}
}

// CreateTask creates a notification task for the given request decision.
func (f *RequestDecidedTaskFactory) CreateTask(
	requestID uuid.UUID,
	recipientID uuid.UUID,
	bookTitle string,
	status domain.RequestStatus,
) (Task, error) {
	return NewRequestDecidedTask(requestID, recipientID, bookTitle, status, f.notifier, f.logger)
}

// ResolveExecutor implements TaskExecutorResolver for tasks recovered from
// the database after a restart.
func (f *RequestDecidedTaskFactory) ResolveExecutor(
	taskType string,
	payload []byte,
) (func(ctx context.Context) error, error) {
	if taskType != TaskTypeRequestDecided {
		return nil, fmt.Errorf("unknown task type: %q", taskType)
	}

	var p requestDecidedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", taskType, err)
	}

	return func(ctx context.Context) error {
		return f.notifier.Notify(ctx, Notification{
			RecipientID: p.RecipientID,
			RequestID:   p.RequestID,
			BookTitle:   p.BookTitle,
			Status:      domain.RequestStatus(p.Status),
		})
	}, nil
}

// Ensure RequestDecidedTaskFactory implements TaskExecutorResolver
var _ TaskExecutorResolver = (*RequestDecidedTaskFactory)(nil)
