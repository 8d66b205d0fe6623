// Package sessiontest checks that a session.Store implementation behaves
// like the in-memory one.
package sessiontest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ad/go-portfolio-admin/internal/models"
	"github.com/ad/go-portfolio-admin/internal/session"
)

// Run exercises store. Keys used by the checks are derived from base so
// several runs can share one backend.
func Run(t *testing.T, store session.Store, base int64) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, models.SessionKey{ChatID: base, UserID: -1})
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("clear missing key", func(t *testing.T) {
		assert.NoError(t, store.Clear(ctx, models.SessionKey{ChatID: base, UserID: -2}))
	})

	t.Run("save get clear", func(t *testing.T) {
		key := models.SessionKey{ChatID: base, UserID: 1}
		s := models.NewSession(key, "awaiting_image")
		s.Resolve(models.FieldTitle, models.StringPtr("Demo"))
		s.Resolve(models.FieldDescription, nil)
		s.SubjectID = 42
		s.AdminTarget = "777"
		s.PendingMessageIDs = []int{5, 6}

		require.NoError(t, store.Save(ctx, s))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "awaiting_image", got.State)
		assert.Equal(t, int64(42), got.SubjectID)
		assert.Equal(t, "777", got.AdminTarget)
		assert.Equal(t, []int{5, 6}, got.PendingMessageIDs)

		title, ok := got.Value(models.FieldTitle)
		require.True(t, ok)
		assert.Equal(t, "Demo", *title)

		desc, ok := got.Value(models.FieldDescription)
		assert.True(t, ok, "skipped field must stay resolved")
		assert.Nil(t, desc)

		_, ok = got.Value(models.FieldProjectURL)
		assert.False(t, ok)

		require.NoError(t, store.Clear(ctx, key))
		_, err = store.Get(ctx, key)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("saved copy is detached", func(t *testing.T) {
		key := models.SessionKey{ChatID: base, UserID: 2}
		s := models.NewSession(key, "awaiting_title")
		require.NoError(t, store.Save(ctx, s))

		s.State = "awaiting_description"
		s.PendingMessageIDs = append(s.PendingMessageIDs, 9)

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "awaiting_title", got.State)
		assert.Empty(t, got.PendingMessageIDs)
		require.NoError(t, store.Clear(ctx, key))
	})

	t.Run("keys are independent", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			chat := base + rapid.Int64Range(1, 50).Draw(rt, "chat")
			a := models.SessionKey{ChatID: chat, UserID: rapid.Int64Range(100, 200).Draw(rt, "a")}
			b := models.SessionKey{ChatID: chat, UserID: rapid.Int64Range(201, 300).Draw(rt, "b")}

			if err := store.Save(ctx, models.NewSession(a, "adding_admin")); err != nil {
				rt.Fatal(err)
			}
			if err := store.Save(ctx, models.NewSession(b, "editing_title")); err != nil {
				rt.Fatal(err)
			}
			if err := store.Clear(ctx, a); err != nil {
				rt.Fatal(err)
			}

			if _, err := store.Get(ctx, a); !errors.Is(err, session.ErrNotFound) {
				rt.Fatalf("cleared session still present: %v", err)
			}
			got, err := store.Get(ctx, b)
			if err != nil || got.State != "editing_title" {
				rt.Fatalf("other session lost: %v %v", got, err)
			}
			_ = store.Clear(ctx, b)
		})
	})
}
