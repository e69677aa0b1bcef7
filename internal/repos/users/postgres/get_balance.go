package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (r *usersRepo) GetBalance(ctx context.Context, externalID int64) (int64, error) {
	var balance int64

	err := r.db.QueryRowContext(ctx, `
		SELECT coins
		FROM users
		WHERE external_id = $1
	`, externalID).Scan(&balance)
	if err != nil {
		// Unknown users read as zero balance.
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}
