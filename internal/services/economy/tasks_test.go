package economy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/completions"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/tasks"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/users"
)

func TestEconomy_CompleteTask_Scenario(t *testing.T) {
	t.Parallel()

	svc, cleanup := newTestService(t)
	defer cleanup()

	ctx := testContext(t)

	_, _, err := svc.RegisterUser(ctx, 333, nil)
	require.NoError(t, err)

	taskID, err := svc.AddTask(ctx, "join", "Join the channel", "@chan", 100)
	require.NoError(t, err)

	bal, err := svc.CompleteTask(ctx, 333, taskID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)

	done, err := svc.HasCompletedToday(ctx, 333, taskID)
	require.NoError(t, err)
	assert.True(t, done)

	// Same day, same task: no second payout.
	_, err = svc.CompleteTask(ctx, 333, taskID)
	require.ErrorIs(t, err, completions.ErrAlreadyCompletedToday)

	bal, err = svc.GetBalance(ctx, 333)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)
}

func TestEconomy_CompleteTask_Concurrent(t *testing.T) {
	t.Parallel()

	svc, cleanup := newTestService(t)
	defer cleanup()

	ctx := testContext(t)

	_, _, err := svc.RegisterUser(ctx, 334, nil)
	require.NoError(t, err)

	taskID, err := svc.AddTask(ctx, "generic", "Race me", "", 100)
	require.NoError(t, err)

	const workers = 6

	errCh := make(chan error, workers)

	for w := 0; w < workers; w++ {
		go func() {
			_, err := svc.CompleteTask(ctx, 334, taskID)
			errCh <- err
		}()
	}

	successes, conflicts := 0, 0

	for w := 0; w < workers; w++ {
		select {
		case err := <-errCh:
			switch {
			case err == nil:
				successes++
			case errors.Is(err, completions.ErrAlreadyCompletedToday):
				conflicts++
			default:
				t.Fatalf("unexpected complete error: %v", err)
			}
		case <-time.After(15 * time.Second):
			t.Fatalf("timeout waiting for workers")
		}
	}

	assert.Equal(t, 1, successes, "exactly one completion wins")
	assert.Equal(t, workers-1, conflicts)

	bal, err := svc.GetBalance(ctx, 334)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal, "exactly one payout")

	var rows int
	err = svc.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM task_completions WHERE user_external_id = $1 AND task_id = $2
	`, 334, taskID).Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 1, rows, "exactly one completion row")
}

func TestEconomy_CompleteTask_Failures(t *testing.T) {
	t.Parallel()

	svc, cleanup := newTestService(t)
	defer cleanup()

	ctx := testContext(t)

	_, _, err := svc.RegisterUser(ctx, 335, nil)
	require.NoError(t, err)

	taskID, err := svc.AddTask(ctx, "generic", "Dormant", "", 10)
	require.NoError(t, err)

	_, err = svc.db.ExecContext(ctx, `UPDATE tasks SET active = FALSE WHERE id = $1`, taskID)
	require.NoError(t, err)

	_, err = svc.CompleteTask(ctx, 335, taskID)
	require.ErrorIs(t, err, tasks.ErrTaskInactive)

	_, err = svc.CompleteTask(ctx, 335, 987654)
	require.ErrorIs(t, err, tasks.ErrTaskNotFound)

	activeID, err := svc.AddTask(ctx, "generic", "Live", "", 10)
	require.NoError(t, err)

	// Unregistered user: the whole unit rolls back, no orphan completion.
	_, err = svc.CompleteTask(ctx, 31337, activeID)
	require.ErrorIs(t, err, users.ErrUserNotFound)

	var rows int
	err = svc.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM task_completions WHERE user_external_id = $1
	`, 31337).Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
}

func TestEconomy_AddTask_JoinDefaultReward(t *testing.T) {
	t.Parallel()

	svc, cleanup := newTestService(t)
	defer cleanup()

	ctx := testContext(t)

	// A join task submitted without a reward gets the configured default.
	id, err := svc.AddTask(ctx, TaskJoinType, "Join us", "@chan", 0)
	require.NoError(t, err)

	list, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, int64(100), list[0].Reward)

	// A non-join task without a reward stays invalid.
	_, err = svc.AddTask(ctx, "generic", "No reward", "", 0)
	require.ErrorIs(t, err, tasks.ErrInvalidReward)
}

func TestEconomy_TasksOverview(t *testing.T) {
	t.Parallel()

	svc, cleanup := newTestService(t)
	defer cleanup()

	ctx := testContext(t)

	_, _, err := svc.RegisterUser(ctx, 336, nil)
	require.NoError(t, err)

	doneID, err := svc.AddTask(ctx, "generic", "Done one", "", 30)
	require.NoError(t, err)

	openID, err := svc.AddTask(ctx, "generic", "Open one", "", 40)
	require.NoError(t, err)

	_, err = svc.CompleteTask(ctx, 336, doneID)
	require.NoError(t, err)

	overview, err := svc.TasksOverview(ctx, 336)
	require.NoError(t, err)
	require.Len(t, overview, 2)

	byID := make(map[int64]TaskStatus, len(overview))
	for _, ts := range overview {
		byID[ts.Task.ID] = ts
	}

	assert.True(t, byID[doneID].CompletedToday)
	assert.False(t, byID[openID].CompletedToday)
}
