package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/users"
)

func (r *usersRepo) SetCoins(ctx context.Context, externalID int64, amount int64) (int64, error) {
	if amount < 0 {
		return 0, users.ErrInvalidAmount
	}

	var balance int64

	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET coins = $2
		WHERE external_id = $1
		RETURNING coins
	`, externalID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, users.ErrUserNotFound
		}

		return 0, fmt.Errorf("set coins: %w", err)
	}

	return balance, nil
}
