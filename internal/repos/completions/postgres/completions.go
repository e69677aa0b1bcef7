package completions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/completions"
)

var _ completions.Completions = (*completionsRepo)(nil)

type completionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *completionsRepo {
	return &completionsRepo{db: db}
}

func (r *completionsRepo) Insert(tx *sql.Tx, userExternalID, taskID int64, completedAt time.Time, day string) error {
	_, err := tx.Exec(`
		INSERT INTO task_completions (user_external_id, task_id, completed_at, completed_on)
		VALUES ($1, $2, $3, $4::date)
	`, userExternalID, taskID, completedAt, day)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return completions.ErrAlreadyCompletedToday
			}
		}

		return fmt.Errorf("insert completion: %w", err)
	}

	return nil
}

func (r *completionsRepo) CompletedOn(ctx context.Context, userExternalID, taskID int64, day string) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM task_completions
			WHERE user_external_id = $1
			  AND task_id = $2
			  AND completed_on = $3::date
		)
	`, userExternalID, taskID, day).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check completion: %w", err)
	}

	return exists, nil
}
