package db

import (
	"embed"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending up migration for the dialect.
func Migrate(conn *sqlx.DB, dialect Dialect) error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}

	var driver database.Driver
	switch dialect {
	case DialectPostgres:
		driver, err = postgres.WithInstance(conn.DB, &postgres.Config{})
	default:
		driver, err = sqlite.WithInstance(conn.DB, &sqlite.Config{})
	}
	if err != nil {
		return errors.Wrap(err, "init migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		return errors.Wrap(err, "init migrations")
	}
	// m.Close would close the shared *sql.DB through the sqlite driver.
	defer func() {
		_ = src.Close()
		if dialect == DialectPostgres {
			_ = driver.Close()
		}
	}()

	fromVer, _, _ := m.Version()

	start := time.Now()
	upErr := m.Up()
	took := time.Since(start)

	switch {
	case upErr == nil:
	case errors.Is(upErr, migrate.ErrNoChange):
		log.Info().Uint("version", fromVer).Str("dialect", string(dialect)).Msg("schema is up to date")
		return nil
	default:
		return errors.Wrap(upErr, "apply migrations")
	}

	toVer, _, _ := m.Version()
	log.Info().
		Uint("from_ver", fromVer).
		Uint("to_ver", toVer).
		Str("dialect", string(dialect)).
		Dur("duration", took).
		Msg("migrations applied")

	return nil
}
