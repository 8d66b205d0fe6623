package models

import (
	"fmt"
	"time"
)

type SessionKey struct {
	ChatID int64
	UserID int64
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%d:%d", k.ChatID, k.UserID)
}

// Session is the per chat/user conversation state. A key present in Fields
// means the field was resolved; a nil value means it was skipped.
type Session struct {
	ChatID            int64             `json:"chat_id"`
	UserID            int64             `json:"user_id"`
	State             string            `json:"state"`
	Fields            map[Field]*string `json:"fields,omitempty"`
	SubjectID         int64             `json:"subject_id,omitempty"`
	AdminTarget       string            `json:"admin_target,omitempty"`
	PendingMessageIDs []int             `json:"pending_message_ids,omitempty"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func NewSession(key SessionKey, state string) *Session {
	return &Session{
		ChatID: key.ChatID,
		UserID: key.UserID,
		State:  state,
	}
}

func (s *Session) Key() SessionKey {
	return SessionKey{ChatID: s.ChatID, UserID: s.UserID}
}

// Resolve records a collected value; nil marks the field as skipped.
func (s *Session) Resolve(field Field, value *string) {
	if s.Fields == nil {
		s.Fields = make(map[Field]*string)
	}
	s.Fields[field] = value
}

func (s *Session) Value(field Field) (value *string, resolved bool) {
	value, resolved = s.Fields[field]
	return value, resolved
}

// Reset drops everything collected by the current flow. Pending message ids
// survive so the next sweep can still remove them.
func (s *Session) Reset() {
	s.Fields = nil
	s.SubjectID = 0
	s.AdminTarget = ""
}
