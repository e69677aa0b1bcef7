package main

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/rainbowsquirrel/squirrelcoins/internal/infra/logging"
	"github.com/rainbowsquirrel/squirrelcoins/pkg/envconf"
)

//go:embed migrations/*.sql
var baseFS embed.FS

//go:embed test_data/*.sql
var devFS embed.FS

type migratorConfig struct {
	DSN      string     `env:"PG_DSN"`
	LogLevel slog.Level `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	AppEnv   string     `env:"APP_ENV" envDefault:""`
}

func main() {
	err := migrateAll()
	if err != nil {
		slog.Error("migration run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("migration run finished successfully")
}

func migrateAll() error {
	// .env values never override an already-set environment.
	_ = godotenv.Load()

	cfg := new(migratorConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	//nolint:errcheck
	defer db.Close()

	err = db.Ping()
	if err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("init postgres driver: %w", err)
	}

	src, err := iofs.New(baseFS, "migrations")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}

	slog.Info("base migrations applied")

	if cfg.AppEnv == "DEV" {
		err = applySeeds(db)
		if err != nil {
			return fmt.Errorf("dev seed failed: %w", err)
		}

		slog.Info("dev seed applied")
	}

	return nil
}

// applySeeds executes the embedded seed scripts directly. Seeds are
// idempotent SQL, not versioned migrations, so DEV can re-run them freely.
func applySeeds(db *sql.DB) error {
	entries, err := fs.Glob(devFS, "test_data/*.sql")
	if err != nil {
		return fmt.Errorf("glob seeds: %w", err)
	}

	for _, name := range entries {
		raw, err := devFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read seed %s: %w", name, err)
		}

		_, err = db.Exec(string(raw))
		if err != nil {
			return fmt.Errorf("exec seed %s: %w", name, err)
		}
	}

	return nil
}
