package users

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/users"
)

func (r *usersRepo) LockAndGetBalance(tx *sql.Tx, externalID int64) (int64, error) {
	var balance int64

	err := tx.QueryRow(`
		SELECT coins
		FROM users
		WHERE external_id = $1
		FOR UPDATE
	`, externalID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, users.ErrUserNotFound
		}

		return 0, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}
