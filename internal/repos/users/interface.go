package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrAlreadyClaimed = errors.New("daily reward already claimed")
var ErrInvalidAmount = errors.New("invalid amount")

// ClaimWindow is the rolling eligibility window for the daily claim,
// measured on an absolute clock (not calendar days).
const ClaimWindow = 24 * time.Hour

// User is an immutable snapshot of a users row. Mutations happen only
// through repo operations, never by writing the struct back.
type User struct {
	ID             int64
	ExternalID     int64
	Coins          int64
	ReferredBy     *int64
	JoinedAt       time.Time
	LastDailyClaim *time.Time
}

type Users interface {
	// GetOrCreate returns the user with the given external id, creating it
	// with zero coins when absent. referredBy is stored verbatim on creation
	// and ignored for an existing user.
	GetOrCreate(ctx context.Context, externalID int64, referredBy *int64) (User, bool, error)

	// GetBalance treats an unknown user as zero balance.
	GetBalance(ctx context.Context, externalID int64) (int64, error)

	// AddCoins atomically adjusts the balance. amount may be negative; a
	// result below zero fails with ErrInvalidAmount and leaves the row alone.
	AddCoins(ctx context.Context, externalID int64, amount int64) (int64, error)

	// SetCoins overwrites the balance with a non-negative amount.
	SetCoins(ctx context.Context, externalID int64, amount int64) (int64, error)

	CanClaim(ctx context.Context, externalID int64, now time.Time) (bool, error)

	// ClaimDaily grants reward and stamps last_daily_claim in one conditional
	// statement: it succeeds only when the window still holds at commit time.
	ClaimDaily(ctx context.Context, externalID int64, reward int64, now time.Time) (int64, error)

	LockAndGetBalance(tx *sql.Tx, externalID int64) (int64, error)
	IncreaseBalance(tx *sql.Tx, externalID int64, amount int64) (int64, error)
}
