package storage

import (
	"context"
	"fmt"

	"reminder-board/entity"
)

// TaskStore is the durable table of tasks. ListAll returns newest first.
// Delete of a missing id is not an error.
type TaskStore interface {
	Create(ctx context.Context, text, timeOfDay string) (int64, error)
	ListAll(ctx context.Context) ([]entity.Task, error)
	Delete(ctx context.Context, id int64) error
}

// EventStore keeps the task event log.
type EventStore interface {
	RecordEvent(ctx context.Context, ev entity.TaskEvent) error
	RecentEvents(ctx context.Context, limit int) ([]entity.TaskEvent, error)
}

// PersistenceError wraps any failure of the underlying database.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s task: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
