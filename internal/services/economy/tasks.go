package economy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rainbowsquirrel/squirrelcoins/internal/infra/pgutils"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/completions"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/tasks"
)

// TaskJoinType marks membership-style tasks. Adding one with reward 0 falls
// back to the configured default join reward.
const TaskJoinType = "join"

// TaskStatus is the read model for rendering a user's task list.
type TaskStatus struct {
	Task           tasks.Task
	CompletedToday bool
}

func (s *EconomyService) ListTasks(ctx context.Context) ([]tasks.Task, error) {
	list, err := s.tasks.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return list, nil
}

func (s *EconomyService) AddTask(ctx context.Context, taskType, title, data string, reward int64) (int64, error) {
	if reward == 0 && taskType == TaskJoinType {
		reward = s.rewards.TaskJoinReward
	}

	id, err := s.tasks.Add(ctx, taskType, title, data, reward)
	if err != nil {
		return 0, fmt.Errorf("add task: %w", err)
	}

	return id, nil
}

func (s *EconomyService) RemoveTask(ctx context.Context, id int64) error {
	err := s.tasks.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("remove task: %w", err)
	}

	return nil
}

// HasCompletedToday reports whether the user already collected this task's
// reward today, in the reference timezone.
func (s *EconomyService) HasCompletedToday(ctx context.Context, externalID, taskID int64) (bool, error) {
	done, err := s.completions.CompletedOn(ctx, externalID, taskID, s.today())
	if err != nil {
		return false, fmt.Errorf("completed today: %w", err)
	}

	return done, nil
}

// TasksOverview joins the active catalog with the user's today-completions.
func (s *EconomyService) TasksOverview(ctx context.Context, externalID int64) ([]TaskStatus, error) {
	list, err := s.tasks.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	day := s.today()
	out := make([]TaskStatus, 0, len(list))

	for _, t := range list {
		done, err := s.completions.CompletedOn(ctx, externalID, t.ID, day)
		if err != nil {
			return nil, fmt.Errorf("completed today (task %d): %w", t.ID, err)
		}

		out = append(out, TaskStatus{Task: t, CompletedToday: done})
	}

	return out, nil
}

// CompleteTask runs the full completion flow in a single DB transaction:
//
// 1) Load the task; missing -> ErrTaskNotFound, inactive -> ErrTaskInactive.
// 2) Lock the user row (FOR UPDATE); missing -> ErrUserNotFound.
// 3) Insert the completion; a same-day duplicate (including a concurrent
//    racer) -> ErrAlreadyCompletedToday, no payout.
// 4) Pay the task reward and return the new balance.
func (s *EconomyService) CompleteTask(ctx context.Context, externalID, taskID int64) (int64, error) {
	now := s.now()
	day := now.In(s.rewards.Timezone.Location()).Format(completions.DayLayout)

	var newBalance int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		task, err := s.tasks.Get(tx, taskID)
		if err != nil {
			return fmt.Errorf("get task: %w", err)
		}

		if !task.Active {
			return tasks.ErrTaskInactive
		}

		_, err = s.users.LockAndGetBalance(tx, externalID)
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		err = s.completions.Insert(tx, externalID, taskID, now, day)
		if err != nil {
			return fmt.Errorf("insert completion: %w", err)
		}

		newBalance, err = s.users.IncreaseBalance(tx, externalID, task.Reward)
		if err != nil {
			return fmt.Errorf("pay reward: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("complete task: %w", err)
	}

	return newBalance, nil
}

func (s *EconomyService) today() string {
	return s.now().In(s.rewards.Timezone.Location()).Format(completions.DayLayout)
}
