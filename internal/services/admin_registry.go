package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// RegistryStore reads and atomically rewrites the admin id list.
type RegistryStore interface {
	AdminIDs(ctx context.Context) ([]string, error)
	MutateAdminIDs(ctx context.Context, fn func(ids []string) ([]string, error)) ([]string, error)
}

// AdminRegistry applies the admin list rules: ids are digit strings, unique,
// and the last admin can never be removed. Admins are addressed by id.
type AdminRegistry struct {
	store RegistryStore
}

func NewAdminRegistry(store RegistryStore) *AdminRegistry {
	return &AdminRegistry{store: store}
}

// ValidateAdminID trims raw and checks that it is a non-empty digit string.
func ValidateAdminID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrInvalidAdminID
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", ErrInvalidAdminID
		}
	}
	return id, nil
}

func (r *AdminRegistry) List(ctx context.Context) ([]string, error) {
	ids, err := r.store.AdminIDs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list admins")
	}
	return ids, nil
}

// Add appends id. A duplicate leaves the registry unchanged and returns
// ErrAdminExists.
func (r *AdminRegistry) Add(ctx context.Context, id string) ([]string, error) {
	id, err := ValidateAdminID(id)
	if err != nil {
		return nil, err
	}
	return r.store.MutateAdminIDs(ctx, func(ids []string) ([]string, error) {
		if containsID(ids, id) {
			return nil, ErrAdminExists
		}
		return append(ids, id), nil
	})
}

// Replace swaps oldID for newID in place, keeping its position.
func (r *AdminRegistry) Replace(ctx context.Context, oldID, newID string) ([]string, error) {
	newID, err := ValidateAdminID(newID)
	if err != nil {
		return nil, err
	}
	return r.store.MutateAdminIDs(ctx, func(ids []string) ([]string, error) {
		pos := indexOf(ids, oldID)
		if pos < 0 {
			return nil, ErrAdminNotFound
		}
		if newID != oldID && containsID(ids, newID) {
			return nil, ErrAdminExists
		}
		out := append([]string(nil), ids...)
		out[pos] = newID
		return out, nil
	})
}

// CheckRemoval reports why id could not be removed by actorID, or nil.
func CheckRemoval(ids []string, id, actorID string) error {
	if len(ids) <= 1 {
		return ErrLastAdmin
	}
	if id == actorID {
		return ErrSelfRemoval
	}
	if !containsID(ids, id) {
		return ErrAdminNotFound
	}
	return nil
}

// Remove deletes id on behalf of actorID, re-checking the rules against the
// live registry.
func (r *AdminRegistry) Remove(ctx context.Context, id, actorID string) ([]string, error) {
	return r.store.MutateAdminIDs(ctx, func(ids []string) ([]string, error) {
		if err := CheckRemoval(ids, id, actorID); err != nil {
			return nil, err
		}
		out := make([]string, 0, len(ids)-1)
		for _, v := range ids {
			if v != id {
				out = append(out, v)
			}
		}
		return out, nil
	})
}

// Seed stores ids only when the registry is empty. It reports whether
// anything was written.
func (r *AdminRegistry) Seed(ctx context.Context, ids []string) (bool, error) {
	clean := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, err := ValidateAdminID(raw)
		if err != nil {
			return false, errors.Wrapf(err, "seed admin %q", raw)
		}
		if !containsID(clean, id) {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return false, nil
	}

	seeded := false
	_, err := r.store.MutateAdminIDs(ctx, func(current []string) ([]string, error) {
		if len(current) > 0 {
			return current, nil
		}
		seeded = true
		return clean, nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
