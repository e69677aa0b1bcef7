package tasks

import (
	"context"
	"database/sql"
	"errors"
)

var ErrTaskNotFound = errors.New("task not found")
var ErrTaskInactive = errors.New("task is inactive")
var ErrInvalidReward = errors.New("task reward must be positive")

// Task is a catalog entry. data is an opaque payload for the transport layer
// (e.g. a channel id to verify membership against).
type Task struct {
	ID     int64
	Type   string
	Title  string
	Data   string
	Reward int64
	Active bool
}

type Tasks interface {
	// ListActive returns active tasks only, order insignificant.
	ListActive(ctx context.Context) ([]Task, error)

	// Get loads a task inside a completion transaction.
	Get(tx *sql.Tx, id int64) (Task, error)

	Add(ctx context.Context, taskType, title, data string, reward int64) (int64, error)

	// Remove hard-deletes the task; an absent id is a no-op.
	Remove(ctx context.Context, id int64) error
}
