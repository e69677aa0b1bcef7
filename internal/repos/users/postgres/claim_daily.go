package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/users"
)

func (r *usersRepo) CanClaim(ctx context.Context, externalID int64, now time.Time) (bool, error) {
	var last sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT last_daily_claim
		FROM users
		WHERE external_id = $1
	`, externalID).Scan(&last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, users.ErrUserNotFound
		}

		return false, fmt.Errorf("get last claim: %w", err)
	}

	if !last.Valid {
		return true, nil
	}

	return now.Sub(last.Time) >= users.ClaimWindow, nil
}

// ClaimDaily is the check and the act in one statement: the window condition
// is re-evaluated against the locked row at commit time, so a stale earlier
// CanClaim cannot enable a double claim.
func (r *usersRepo) ClaimDaily(ctx context.Context, externalID int64, reward int64, now time.Time) (int64, error) {
	cutoff := now.Add(-users.ClaimWindow)

	var balance int64

	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET coins = coins + $2, last_daily_claim = $3
		WHERE external_id = $1
		  AND (last_daily_claim IS NULL OR last_daily_claim <= $4)
		RETURNING coins
	`, externalID, reward, now, cutoff).Scan(&balance)
	if err == nil {
		return balance, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("claim daily: %w", err)
	}

	// Zero rows: either the user is unknown or the window has not elapsed.
	var exists bool

	err = r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE external_id = $1)
	`, externalID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check exists after claim: %w", err)
	}

	if !exists {
		return 0, users.ErrUserNotFound
	}

	return 0, users.ErrAlreadyClaimed
}
