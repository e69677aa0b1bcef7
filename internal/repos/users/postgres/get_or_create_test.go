package users

import (
	"testing"
	"time"

	"github.com/rainbowsquirrel/squirrelcoins/internal/infra/pgtestutil"
)

func TestUsers_GetOrCreate_CreatesOnce(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := testContext(t)

	referrer := int64(111)

	user, created, err := repo.GetOrCreate(ctx, 222, &referrer)
	if err != nil {
		t.Fatalf("first get or create: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true on first contact")
	}
	if user.ExternalID != 222 {
		t.Fatalf("external id: want 222, got %d", user.ExternalID)
	}
	if user.Coins != 0 {
		t.Fatalf("new user coins: want 0, got %d", user.Coins)
	}
	if user.ReferredBy == nil || *user.ReferredBy != 111 {
		t.Fatalf("referred by: want 111, got %v", user.ReferredBy)
	}
	if user.LastDailyClaim != nil {
		t.Fatalf("new user must have no daily claim")
	}
	if user.JoinedAt.IsZero() {
		t.Fatalf("joined at not set")
	}

	// Second call with a different referrer: existing row wins untouched.
	otherReferrer := int64(999)

	again, created, err := repo.GetOrCreate(ctx, 222, &otherReferrer)
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if created {
		t.Fatalf("expected created=false on second contact")
	}
	if again.ReferredBy == nil || *again.ReferredBy != 111 {
		t.Fatalf("referral is write-once: want 111, got %v", again.ReferredBy)
	}
	if again.ID != user.ID {
		t.Fatalf("same row expected: want id %d, got %d", user.ID, again.ID)
	}
}

func TestUsers_GetOrCreate_NoReferrer(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	user, created, err := repo.GetOrCreate(testContext(t), 333, nil)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true")
	}
	if user.ReferredBy != nil {
		t.Fatalf("referred by: want nil, got %v", user.ReferredBy)
	}
}

func TestUsers_GetOrCreate_ReferrerNeedNotExist(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	// Referral linkage is best effort: 424242 was never registered.
	ghost := int64(424242)

	user, created, err := repo.GetOrCreate(testContext(t), 444, &ghost)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true")
	}
	if user.ReferredBy == nil || *user.ReferredBy != ghost {
		t.Fatalf("referred by stored verbatim: want %d, got %v", ghost, user.ReferredBy)
	}
}

func TestUsers_GetOrCreate_Concurrent(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := testContext(t)

	const workers = 8

	type result struct {
		created bool
		err     error
	}

	resCh := make(chan result, workers)

	for w := 0; w < workers; w++ {
		go func() {
			_, created, err := repo.GetOrCreate(ctx, 555, nil)
			resCh <- result{created: created, err: err}
		}()
	}

	createdCount := 0

	for w := 0; w < workers; w++ {
		select {
		case res := <-resCh:
			if res.err != nil {
				t.Fatalf("worker error: %v", res.err)
			}
			if res.created {
				createdCount++
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("timeout waiting for workers")
		}
	}

	if createdCount != 1 {
		t.Fatalf("exactly one creator expected, got %d", createdCount)
	}
}
