package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *DBQueue {
	t.Helper()

	conn, dialect, err := Open(":memory:")
	require.NoError(t, err)
	require.Equal(t, DialectSQLite, dialect)
	require.NoError(t, Migrate(conn, dialect))

	queue := NewDBQueue(conn)
	t.Cleanup(func() {
		queue.Close()
		_ = conn.Close()
	})
	return queue
}

func TestMigrateIsIdempotent(t *testing.T) {
	queue := newTestQueue(t)

	require.NoError(t, Migrate(queue.DB(), DialectSQLite))

	for _, table := range []string{"projects", "settings", "conversation_sessions"} {
		var n int
		err := queue.DB().GetContext(context.Background(), &n,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		require.NoError(t, err)
		require.Equal(t, 1, n, "table %s", table)
	}
}

func TestDialectOf(t *testing.T) {
	require.Equal(t, DialectPostgres, DialectOf("postgres://u:p@localhost/db"))
	require.Equal(t, DialectPostgres, DialectOf("postgresql://localhost/db"))
	require.Equal(t, DialectSQLite, DialectOf("portfolio.db"))
	require.Equal(t, DialectSQLite, DialectOf(":memory:"))
}
