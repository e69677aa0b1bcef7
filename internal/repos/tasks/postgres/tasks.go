package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/tasks"
)

var _ tasks.Tasks = (*tasksRepo)(nil)

type tasksRepo struct{ db *sql.DB }

func New(db *sql.DB) *tasksRepo {
	return &tasksRepo{db: db}
}

func (r *tasksRepo) ListActive(ctx context.Context) ([]tasks.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, title, data, reward, active
		FROM tasks
		WHERE active
	`)
	if err != nil {
		return nil, fmt.Errorf("list active tasks: %w", err)
	}
	defer rows.Close()

	var out []tasks.Task

	for rows.Next() {
		var t tasks.Task

		err = rows.Scan(&t.ID, &t.Type, &t.Title, &t.Data, &t.Reward, &t.Active)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}

		out = append(out, t)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return out, nil
}

func (r *tasksRepo) Get(tx *sql.Tx, id int64) (tasks.Task, error) {
	var t tasks.Task

	err := tx.QueryRow(`
		SELECT id, type, title, data, reward, active
		FROM tasks
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Type, &t.Title, &t.Data, &t.Reward, &t.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tasks.Task{}, tasks.ErrTaskNotFound
		}

		return tasks.Task{}, fmt.Errorf("get task: %w", err)
	}

	return t, nil
}

func (r *tasksRepo) Add(ctx context.Context, taskType, title, data string, reward int64) (int64, error) {
	if reward <= 0 {
		return 0, tasks.ErrInvalidReward
	}

	var id int64

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO tasks (type, title, data, reward, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id
	`, taskType, title, data, reward).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}

	return id, nil
}

func (r *tasksRepo) Remove(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM tasks
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return nil
}
