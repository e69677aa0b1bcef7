package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/users"
)

const userColumns = `id, external_id, coins, referred_by, joined_at, last_daily_claim`

func (r *usersRepo) GetOrCreate(ctx context.Context, externalID int64, referredBy *int64) (users.User, bool, error) {
	var u users.User

	// Idempotent insert: a concurrent creator wins and we fall through to
	// the plain select. referred_by is write-once, existing rows keep theirs.
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (external_id, referred_by)
		VALUES ($1, $2)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING `+userColumns+`
	`, externalID, referredBy).Scan(
		&u.ID, &u.ExternalID, &u.Coins, &u.ReferredBy, &u.JoinedAt, &u.LastDailyClaim,
	)
	if err == nil {
		return u, true, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return users.User{}, false, fmt.Errorf("insert user: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE external_id = $1
	`, externalID).Scan(
		&u.ID, &u.ExternalID, &u.Coins, &u.ReferredBy, &u.JoinedAt, &u.LastDailyClaim,
	)
	if err != nil {
		return users.User{}, false, fmt.Errorf("select user: %w", err)
	}

	return u, false, nil
}
