package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ad/go-portfolio-admin/internal/models"
	"github.com/ad/go-portfolio-admin/internal/session"
)

// SessionRepository persists conversation sessions so flows survive restarts.
// It implements session.Store.
type SessionRepository struct {
	queue *DBQueue
}

func NewSessionRepository(queue *DBQueue) *SessionRepository {
	return &SessionRepository{queue: queue}
}

var _ session.Store = (*SessionRepository)(nil)

type sessionRow struct {
	State     string    `db:"state"`
	Payload   string    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *SessionRepository) Get(ctx context.Context, key models.SessionKey) (*models.Session, error) {
	db := r.queue.DB()

	var row sessionRow
	err := db.GetContext(ctx, &row, db.Rebind(`
		SELECT state, payload, updated_at
		FROM conversation_sessions
		WHERE chat_id = ? AND user_id = ?
	`), key.ChatID, key.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select session %s", key)
	}

	var s models.Session
	if err := json.Unmarshal([]byte(row.Payload), &s); err != nil {
		return nil, errors.Wrapf(err, "decode session %s", key)
	}
	s.ChatID = key.ChatID
	s.UserID = key.UserID
	s.State = row.State
	s.UpdatedAt = row.UpdatedAt
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, s *models.Session) error {
	s.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}

	_, err = r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		_, err := db.ExecContext(ctx, db.Rebind(`
			INSERT INTO conversation_sessions (chat_id, user_id, state, payload, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(chat_id, user_id) DO UPDATE SET
				state = excluded.state,
				payload = excluded.payload,
				updated_at = excluded.updated_at
		`), s.ChatID, s.UserID, s.State, string(payload))
		return nil, err
	})
	return errors.Wrapf(err, "save session %s", s.Key())
}

func (r *SessionRepository) Clear(ctx context.Context, key models.SessionKey) error {
	_, err := r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		_, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM conversation_sessions WHERE chat_id = ? AND user_id = ?`), key.ChatID, key.UserID)
		return nil, err
	})
	return errors.Wrapf(err, "clear session %s", key)
}
