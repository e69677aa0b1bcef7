package completions

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrAlreadyCompletedToday = errors.New("task already completed today")

// DayLayout formats the calendar day a completion counts against, computed
// in the deployment's reference timezone.
const DayLayout = "2006-01-02"

type Completion struct {
	ID             int64
	UserExternalID int64
	TaskID         int64
	CompletedAt    time.Time
}

type Completions interface {
	// Insert records a completion for the given day. A second completion for
	// the same (user, task, day) hits the unique index and comes back as
	// ErrAlreadyCompletedToday, regardless of interleaving.
	Insert(tx *sql.Tx, userExternalID, taskID int64, completedAt time.Time, day string) error

	// CompletedOn reports whether a completion exists for the given day.
	CompletedOn(ctx context.Context, userExternalID, taskID int64, day string) (bool, error)
}
