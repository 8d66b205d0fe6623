package db

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var ErrBackupUnsupported = errors.New("backup is only supported for sqlite; use pg_dump for postgres")

type tableSchema struct {
	Name string `db:"name"`
	SQL  string `db:"sql"`
}

// Backup writes a SQL dump of every table to w. It runs on the writer
// goroutine inside one transaction, so the dump is a consistent snapshot.
func (q *DBQueue) Backup(ctx context.Context, w io.Writer) error {
	if q.dialect != DialectSQLite {
		return ErrBackupUnsupported
	}

	return q.ExecuteTx(ctx, func(tx *sqlx.Tx) error {
		var tables []tableSchema
		err := tx.SelectContext(ctx, &tables, `
			SELECT name, sql FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name
		`)
		if err != nil {
			return errors.Wrap(err, "list tables")
		}

		if _, err := io.WriteString(w, "BEGIN TRANSACTION;\n"); err != nil {
			return errors.Wrap(err, "write dump")
		}
		for _, table := range tables {
			if err := dumpTable(ctx, tx, w, table); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, "COMMIT;\n")
		return errors.Wrap(err, "write dump")
	})
}

func dumpTable(ctx context.Context, tx *sqlx.Tx, w io.Writer, table tableSchema) error {
	if _, err := fmt.Fprintf(w, "%s;\n", table.SQL); err != nil {
		return errors.Wrap(err, "write dump")
	}

	rows, err := tx.QueryxContext(ctx, fmt.Sprintf(`SELECT * FROM %q`, table.Name))
	if err != nil {
		return errors.Wrapf(err, "select %s", table.Name)
	}
	defer rows.Close()

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return errors.Wrapf(err, "scan %s", table.Name)
		}

		literals := make([]string, len(values))
		for i, v := range values {
			literals[i] = sqlLiteral(v)
		}
		if _, err := fmt.Fprintf(w, "INSERT INTO %q VALUES (%s);\n", table.Name, strings.Join(literals, ", ")); err != nil {
			return errors.Wrap(err, "write dump")
		}
	}
	return errors.Wrapf(rows.Err(), "iterate %s", table.Name)
}

func sqlLiteral(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return quote(string(v))
	case string:
		return quote(v)
	case int64, float64:
		return fmt.Sprintf("%v", v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case time.Time:
		return quote(v.UTC().Format("2006-01-02 15:04:05"))
	default:
		return quote(fmt.Sprintf("%v", v))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
