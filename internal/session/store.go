// Package session stores conversation sessions keyed by chat and user.
package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ad/go-portfolio-admin/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Store keeps at most one session per key. Get returns ErrNotFound for an
// unknown key; Clear of an unknown key is not an error.
type Store interface {
	Get(ctx context.Context, key models.SessionKey) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Clear(ctx context.Context, key models.SessionKey) error
}

// Clone returns a deep copy so stored sessions never alias caller memory.
func Clone(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Fields != nil {
		out.Fields = make(map[models.Field]*string, len(s.Fields))
		for k, v := range s.Fields {
			if v != nil {
				v = models.StringPtr(*v)
			}
			out.Fields[k] = v
		}
	}
	if s.PendingMessageIDs != nil {
		out.PendingMessageIDs = append([]int(nil), s.PendingMessageIDs...)
	}
	return &out
}
