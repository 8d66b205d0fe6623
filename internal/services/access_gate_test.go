package services

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestAccessGateAuthorizesExactlyRegisteredIDs(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ids := rapid.SliceOfDistinct(rapid.Int64Range(1, 1_000_000), func(v int64) int64 { return v }).Draw(rt, "ids")
		probe := rapid.Int64Range(1, 1_000_000).Draw(rt, "probe")

		raw := make([]string, 0, len(ids))
		registered := false
		for _, id := range ids {
			raw = append(raw, strconv.FormatInt(id, 10))
			if id == probe {
				registered = true
			}
		}

		gate := NewAccessGate(newMemoryRegistry(raw...))
		ctx := context.Background()

		if got := gate.IsAuthorized(ctx, probe); got != registered {
			rt.Fatalf("IsAuthorized(%d) = %v with registry %v", probe, got, raw)
		}
		wantSelf := len(raw) == 0 || registered
		if got := gate.CanSelfRegister(ctx, probe); got != wantSelf {
			rt.Fatalf("CanSelfRegister(%d) = %v with registry %v", probe, got, raw)
		}
	})
}

func TestAccessGateReadsRegistryOnEveryCall(t *testing.T) {
	ctx := context.Background()
	store := newMemoryRegistry("1")
	gate := NewAccessGate(store)

	assert.False(t, gate.IsAuthorized(ctx, 2))

	_, err := NewAdminRegistry(store).Add(ctx, "2")
	assert.NoError(t, err)
	assert.True(t, gate.IsAuthorized(ctx, 2))

	_, err = NewAdminRegistry(store).Remove(ctx, "2", "1")
	assert.NoError(t, err)
	assert.False(t, gate.IsAuthorized(ctx, 2))
}

func TestAccessGateDeniesWhenRegistryFails(t *testing.T) {
	store := newMemoryRegistry("1")
	store.err = errors.New("database is locked")
	gate := NewAccessGate(store)

	assert.False(t, gate.IsAuthorized(context.Background(), 1))
	assert.False(t, gate.CanSelfRegister(context.Background(), 1))
}

func TestAccessGateSelfRegistrationClosesAfterFirstAdmin(t *testing.T) {
	ctx := context.Background()
	store := newMemoryRegistry()
	gate := NewAccessGate(store)

	assert.True(t, gate.CanSelfRegister(ctx, 5))
	_, err := NewAdminRegistry(store).Add(ctx, "5")
	assert.NoError(t, err)

	assert.True(t, gate.CanSelfRegister(ctx, 5))
	assert.False(t, gate.CanSelfRegister(ctx, 6))
}
