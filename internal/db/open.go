package db

import (
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// DialectOf picks the engine from the DSN: postgres:// URLs go to Postgres,
// anything else is a SQLite path.
func DialectOf(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open connects to the database named by dsn and verifies the connection.
func Open(dsn string) (*sqlx.DB, Dialect, error) {
	dialect := DialectOf(dsn)

	if dialect == DialectPostgres {
		conn, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, dialect, errors.Wrap(err, "connect postgres")
		}
		return conn, dialect, nil
	}

	if dsn == "" {
		dsn = "portfolio.db"
	}
	if dsn != ":memory:" && !strings.Contains(dsn, "_pragma=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + sqlitePragmas
	}

	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, dialect, errors.Wrap(err, "open sqlite")
	}
	// A single connection keeps :memory: databases alive between calls.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, dialect, errors.Wrap(err, "ping sqlite")
	}
	return conn, dialect, nil
}
