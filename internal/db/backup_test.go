package db

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad/go-portfolio-admin/internal/models"
)

func TestBackupDumpsTablesAndRows(t *testing.T) {
	ctx := context.Background()
	queue := newTestQueue(t)

	projects := NewProjectRepository(queue)
	_, err := projects.Create(ctx, models.NewProject{Title: "It's mine", ProjectURL: models.StringPtr("https://example.com")})
	require.NoError(t, err)
	require.NoError(t, NewSettingsRepository(queue).SetAdminIDs(ctx, []string{"100"}))

	var dump bytes.Buffer
	require.NoError(t, queue.Backup(ctx, &dump))

	out := dump.String()
	assert.True(t, bytes.HasPrefix(dump.Bytes(), []byte("BEGIN TRANSACTION;\n")))
	assert.Contains(t, out, "CREATE TABLE")
	assert.Contains(t, out, `INSERT INTO "projects" VALUES (1, 'It''s mine', NULL`)
	assert.Contains(t, out, `'["100"]'`)
	assert.Contains(t, out, "COMMIT;\n")
}

func TestBackupRestoresIntoFreshDatabase(t *testing.T) {
	ctx := context.Background()
	source := newTestQueue(t)

	_, err := NewProjectRepository(source).Create(ctx, models.NewProject{Title: "Kept"})
	require.NoError(t, err)

	var dump bytes.Buffer
	require.NoError(t, source.Backup(ctx, &dump))

	conn, _, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.ExecContext(ctx, dump.String())
	require.NoError(t, err)

	var title string
	require.NoError(t, conn.GetContext(ctx, &title, `SELECT title FROM projects`))
	assert.Equal(t, "Kept", title)
}

func TestSQLLiteral(t *testing.T) {
	assert.Equal(t, "NULL", sqlLiteral(nil))
	assert.Equal(t, "42", sqlLiteral(int64(42)))
	assert.Equal(t, "'a''b'", sqlLiteral("a'b"))
	assert.Equal(t, "'x'", sqlLiteral([]byte("x")))
	assert.Equal(t, "1", sqlLiteral(true))
	assert.Equal(t, "'2024-01-02 03:04:05'", sqlLiteral(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}
