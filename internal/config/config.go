package config

import (
	"fmt"
	"time"
)

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RewardsConfig is the reward policy consumed by the economy service.
// Amounts are whole coins.
type RewardsConfig struct {
	DailyReward    int64    `env:"DAILY_REWARD" envDefault:"100"`
	ReferralReward int64    `env:"REFERRAL_REWARD" envDefault:"200"`
	TaskJoinReward int64    `env:"TASK_JOIN_REWARD" envDefault:"100"`
	Timezone       Timezone `env:"TIMEZONE" envDefault:"UTC"`
}

// Timezone is the reference timezone used to compute "start of day" for
// task-completion resets. It parses IANA names via envconf's
// TextUnmarshaler path.
type Timezone struct {
	loc *time.Location
}

func (tz *Timezone) UnmarshalText(text []byte) error {
	loc, err := time.LoadLocation(string(text))
	if err != nil {
		return fmt.Errorf("load location %q: %w", text, err)
	}

	tz.loc = loc

	return nil
}

// Location never returns nil; the zero value means UTC.
func (tz Timezone) Location() *time.Location {
	if tz.loc == nil {
		return time.UTC
	}

	return tz.loc
}

func (tz Timezone) String() string {
	return tz.Location().String()
}
