package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/events"
)

// taskSubmitter is the slice of TaskRunner the handler needs.
type taskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// notificationTaskFactory is the slice of RequestDecidedTaskFactory the
// handler needs.
type notificationTaskFactory interface {
	CreateTask(requestID, recipientID uuid.UUID, bookTitle string, status domain.RequestStatus) (Task, error)
}

// TaskFactoryEventHandler implements the events.EventHandler interface.
// It turns request_decided events into notification tasks and submits them
// to the runner.
type TaskFactoryEventHandler struct {
	taskFactory notificationTaskFactory
	taskRunner  taskSubmitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given
// task factory to create tasks, and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	taskFactory notificationTaskFactory,
	taskRunner taskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != events.EventTypeRequestDecided {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.RequestDecidedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	task, err := h.taskFactory.CreateTask(
		payload.RequestID,
		payload.RecipientID,
		payload.BookTitle,
		domain.RequestStatus(payload.Status),
	)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"request_id", payload.RequestID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", task.ID(),
		"request_id", payload.RequestID,
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
