package services

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AdminSource returns the current admin registry.
type AdminSource interface {
	AdminIDs(ctx context.Context) ([]string, error)
}

// AccessGate authorizes users against the admin registry. The registry is
// read on every call so changes apply to all sessions at once.
type AccessGate struct {
	admins AdminSource
}

func NewAccessGate(admins AdminSource) *AccessGate {
	return &AccessGate{admins: admins}
}

func (g *AccessGate) IsAuthorized(ctx context.Context, userID int64) bool {
	ids, err := g.admins.AdminIDs(ctx)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to load admin ids, denying access")
		return false
	}
	return containsID(ids, strconv.FormatInt(userID, 10))
}

// CanSelfRegister allows /add_admin while the registry is empty, and for
// existing admins afterwards.
func (g *AccessGate) CanSelfRegister(ctx context.Context, userID int64) bool {
	ids, err := g.admins.AdminIDs(ctx)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to load admin ids, denying registration")
		return false
	}
	return len(ids) == 0 || containsID(ids, strconv.FormatInt(userID, 10))
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
