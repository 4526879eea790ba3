package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoExecutor is returned when a recovered task is executed before a
// concrete executor has been attached to it.
var ErrNoExecutor = errors.New("no executor attached to recovered task")

// recoveredTask is a Task loaded back from its database row. It carries the
// persisted identity and payload; the runner attaches a type-specific
// executor (via a TaskExecutorResolver) before running it.
type recoveredTask struct {
	id        uuid.UUID
	taskType  string
	payload   []byte
	status    TaskStatus
	executeFn func(ctx context.Context) error
}

// NewRecoveredTask wraps a persisted task row as a Task. The returned task
// fails with ErrNoExecutor if executed before an executor is attached.
func NewRecoveredTask(id uuid.UUID, taskType string, payload []byte, status TaskStatus) Task {
	return &recoveredTask{
		id:       id,
		taskType: taskType,
		payload:  payload,
		status:   status,
	}
}

func (t *recoveredTask) ID() uuid.UUID      { return t.id }
func (t *recoveredTask) Type() string       { return t.taskType }
func (t *recoveredTask) Payload() []byte    { return t.payload }
func (t *recoveredTask) Status() TaskStatus { return t.status }

func (t *recoveredTask) Execute(ctx context.Context) error {
	if t.executeFn == nil {
		return ErrNoExecutor
	}
	return t.executeFn(ctx)
}

// TaskExecutorResolver rebuilds the executable form of a recovered task from
// its persisted type and payload. Returns an error for unknown task types or
// undecodable payloads.
type TaskExecutorResolver interface {
	ResolveExecutor(taskType string, payload []byte) (func(ctx context.Context) error, error)
}

// AttachExecutor resolves and attaches an executor to a recovered task.
// Tasks that were not loaded from the database are returned unchanged.
func AttachExecutor(t Task, resolver TaskExecutorResolver) (Task, error) {
	rt, ok := t.(*recoveredTask)
	if !ok {
		return t, nil
	}

	fn, err := resolver.ResolveExecutor(rt.taskType, rt.payload)
	if err != nil {
		return nil, err
	}
	rt.executeFn = fn
	return rt, nil
}
