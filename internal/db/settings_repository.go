package db

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	SettingAdminIDs  = "admin_telegram_ids"
	SettingMenuPhoto = "menu_photo"
)

// SettingsRepository keeps key/value settings: the admin registry as a JSON
// array of id strings and the menu photo URL.
type SettingsRepository struct {
	queue *DBQueue
}

func NewSettingsRepository(queue *DBQueue) *SettingsRepository {
	return &SettingsRepository{queue: queue}
}

type querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Rebind(query string) string
}

func getSetting(ctx context.Context, q querier, key string) (string, bool, error) {
	var value string
	err := q.GetContext(ctx, &value, q.Rebind(`SELECT value FROM settings WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "read setting %s", key)
	}
	return value, true, nil
}

func putSetting(ctx context.Context, q querier, key, value string) error {
	_, err := q.ExecContext(ctx, q.Rebind(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`), key, value)
	return errors.Wrapf(err, "write setting %s", key)
}

// decodeAdminIDs accepts both ["1","2"] and [1,2].
func decodeAdminIDs(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}

	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.UseNumber()

	var items []interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, errors.Wrap(err, "decode admin ids")
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			ids = append(ids, v)
		case json.Number:
			ids = append(ids, v.String())
		default:
			return nil, errors.Errorf("unexpected admin id %v", item)
		}
	}
	return ids, nil
}

func encodeAdminIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", errors.Wrap(err, "encode admin ids")
	}
	return string(data), nil
}

// AdminIDs returns the registry in stored order; an unset registry is empty.
func (r *SettingsRepository) AdminIDs(ctx context.Context) ([]string, error) {
	raw, _, err := getSetting(ctx, r.queue.DB(), SettingAdminIDs)
	if err != nil {
		return nil, err
	}
	return decodeAdminIDs(raw)
}

func (r *SettingsRepository) SetAdminIDs(ctx context.Context, ids []string) error {
	raw, err := encodeAdminIDs(ids)
	if err != nil {
		return err
	}
	_, err = r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		return nil, putSetting(ctx, db, SettingAdminIDs, raw)
	})
	return err
}

// MutateAdminIDs reads the registry, passes it to fn and stores the result in
// one queued transaction. An error from fn leaves the registry unchanged.
func (r *SettingsRepository) MutateAdminIDs(ctx context.Context, fn func(ids []string) ([]string, error)) ([]string, error) {
	var updated []string
	err := r.queue.ExecuteTx(ctx, func(tx *sqlx.Tx) error {
		raw, _, err := getSetting(ctx, tx, SettingAdminIDs)
		if err != nil {
			return err
		}
		current, err := decodeAdminIDs(raw)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		encoded, err := encodeAdminIDs(next)
		if err != nil {
			return err
		}
		if err := putSetting(ctx, tx, SettingAdminIDs, encoded); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MenuPhoto returns the menu photo URL or an empty string.
func (r *SettingsRepository) MenuPhoto(ctx context.Context) (string, error) {
	value, _, err := getSetting(ctx, r.queue.DB(), SettingMenuPhoto)
	return value, err
}

// SetMenuPhoto stores url; an empty url removes the menu photo.
func (r *SettingsRepository) SetMenuPhoto(ctx context.Context, url string) error {
	_, err := r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		if url == "" {
			_, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM settings WHERE key = ?`), SettingMenuPhoto)
			return nil, errors.Wrap(err, "clear menu photo")
		}
		return nil, putSetting(ctx, db, SettingMenuPhoto, url)
	})
	return err
}
