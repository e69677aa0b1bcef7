package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/users"
)

func (r *usersRepo) AddCoins(ctx context.Context, externalID int64, amount int64) (int64, error) {
	var balance int64

	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET coins = coins + $2
		WHERE external_id = $1
		RETURNING coins
	`, externalID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, users.ErrUserNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23514" { // check_violation: coins would go negative
				return 0, users.ErrInvalidAmount
			}
		}

		return 0, fmt.Errorf("add coins: %w", err)
	}

	return balance, nil
}
