package users

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/users"
)

// IncreaseBalance is the in-transaction variant of AddCoins, for flows that
// already hold the user row lock.
func (r *usersRepo) IncreaseBalance(tx *sql.Tx, externalID int64, amount int64) (int64, error) {
	var balance int64

	err := tx.QueryRow(`
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
			if pgErr.Code == "23514" {
				return 0, users.ErrInvalidAmount
			}
		}

		return 0, fmt.Errorf("increase balance: %w", err)
	}

	return balance, nil
}
