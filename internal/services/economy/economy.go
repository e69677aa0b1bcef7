package economy

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rainbowsquirrel/squirrelcoins/internal/config"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/completions"
	pgcompletions "github.com/rainbowsquirrel/squirrelcoins/internal/repos/completions/postgres"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/tasks"
	pgtasks "github.com/rainbowsquirrel/squirrelcoins/internal/repos/tasks/postgres"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/users"
	pgusers "github.com/rainbowsquirrel/squirrelcoins/internal/repos/users/postgres"
)

// EconomyService owns the reward-economy operations: user registry with
// referral bonuses, the coin ledger, the daily claim gate and per-task
// completion rewards. All state lives in the store; the service holds only
// the reward policy and the reference timezone.
type EconomyService struct {
	db          *sql.DB
	users       users.Users
	tasks       tasks.Tasks
	completions completions.Completions
	rewards     config.RewardsConfig
	now         func() time.Time
}

func New(dbx *sql.DB, rewards config.RewardsConfig) *EconomyService {
	return &EconomyService{
		db:          dbx,
		users:       pgusers.New(dbx),
		tasks:       pgtasks.New(dbx),
		completions: pgcompletions.New(dbx),
		rewards:     rewards,
		now:         time.Now,
	}
}

// RegisterUser is the idempotent first-contact entry point. On creation with
// a referrer distinct from the new user, the referrer is paid the referral
// bonus. The grant runs after the creating statement commits: a crash in
// between loses the bonus, a retry sees created=false and never double-pays.
func (s *EconomyService) RegisterUser(ctx context.Context, externalID int64, referredBy *int64) (users.User, bool, error) {
	user, created, err := s.users.GetOrCreate(ctx, externalID, referredBy)
	if err != nil {
		return users.User{}, false, fmt.Errorf("get or create user: %w", err)
	}

	if created && referredBy != nil && *referredBy != externalID {
		// Referral linkage is best effort: the referrer was never validated
		// at link time, so an unknown referrer skips the bonus.
		_, err = s.users.AddCoins(ctx, *referredBy, s.rewards.ReferralReward)
		if err != nil {
			slog.WarnContext(ctx, "referral bonus not granted",
				"referrer", *referredBy, "user", externalID, "error", err)
		}
	}

	return user, created, nil
}

// GetBalance reads the current balance; unknown users read as zero.
func (s *EconomyService) GetBalance(ctx context.Context, externalID int64) (int64, error) {
	balance, err := s.users.GetBalance(ctx, externalID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

func (s *EconomyService) AddCoins(ctx context.Context, externalID int64, amount int64) (int64, error) {
	balance, err := s.users.AddCoins(ctx, externalID, amount)
	if err != nil {
		return 0, fmt.Errorf("add coins: %w", err)
	}

	return balance, nil
}

func (s *EconomyService) SetBalance(ctx context.Context, externalID int64, amount int64) (int64, error) {
	balance, err := s.users.SetCoins(ctx, externalID, amount)
	if err != nil {
		return 0, fmt.Errorf("set balance: %w", err)
	}

	return balance, nil
}

// CanClaimDaily reports whether the rolling 24h window has elapsed.
func (s *EconomyService) CanClaimDaily(ctx context.Context, externalID int64) (bool, error) {
	ok, err := s.users.CanClaim(ctx, externalID, s.now())
	if err != nil {
		return false, fmt.Errorf("can claim: %w", err)
	}

	return ok, nil
}

// ClaimDaily grants the configured daily reward. Eligibility is re-checked
// inside the same statement that pays out, so two racing claims settle as
// one success and one users.ErrAlreadyClaimed.
func (s *EconomyService) ClaimDaily(ctx context.Context, externalID int64) (int64, error) {
	balance, err := s.users.ClaimDaily(ctx, externalID, s.rewards.DailyReward, s.now())
	if err != nil {
		return 0, fmt.Errorf("claim daily: %w", err)
	}

	return balance, nil
}
