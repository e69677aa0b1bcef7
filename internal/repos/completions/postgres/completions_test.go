package completions

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/rainbowsquirrel/squirrelcoins/internal/infra/pgtestutil"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/completions"
)

func insertCompletion(t *testing.T, db *sql.DB, repo *completionsRepo, userID, taskID int64, at time.Time, day string) error {
	t.Helper()

	tx, err := db.BeginTx(testContext(t), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = repo.Insert(tx, userID, taskID, at, day)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	return nil
}

func TestCompletions_InsertAndCompletedOn(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := testContext(t)

	now := time.Date(2025, 3, 10, 23, 55, 0, 0, time.UTC)
	day := now.Format(completions.DayLayout)

	err := insertCompletion(t, db, repo, 333, 1, now, day)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	done, err := repo.CompletedOn(ctx, 333, 1, day)
	if err != nil {
		t.Fatalf("completed on: %v", err)
	}
	if !done {
		t.Fatalf("completion not visible for its day")
	}

	// Other user, other task and other day all read false.
	for _, probe := range []struct {
		user, task int64
		day        string
	}{
		{user: 334, task: 1, day: day},
		{user: 333, task: 2, day: day},
		{user: 333, task: 1, day: "2025-03-11"},
	} {
		done, err = repo.CompletedOn(ctx, probe.user, probe.task, probe.day)
		if err != nil {
			t.Fatalf("completed on probe: %v", err)
		}
		if done {
			t.Fatalf("unexpected completion for %+v", probe)
		}
	}
}

func TestCompletions_SameDayDuplicateRejected(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	day := now.Format(completions.DayLayout)

	err := insertCompletion(t, db, repo, 333, 7, now, day)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err = insertCompletion(t, db, repo, 333, 7, now.Add(2*time.Hour), day)
	if !errors.Is(err, completions.ErrAlreadyCompletedToday) {
		t.Fatalf("want ErrAlreadyCompletedToday, got %v", err)
	}
}

func TestCompletions_NextDayAllowedAgain(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	first := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)

	err := insertCompletion(t, db, repo, 333, 7, first, first.Format(completions.DayLayout))
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// Two minutes later, but across the day boundary.
	second := time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC)

	err = insertCompletion(t, db, repo, 333, 7, second, second.Format(completions.DayLayout))
	if err != nil {
		t.Fatalf("next-day insert: %v", err)
	}
}
