package db

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ad/go-portfolio-admin/internal/models"
)

func optionalString(rt *rapid.T, label string) *string {
	if rapid.Bool().Draw(rt, label+"Set") {
		return models.StringPtr(rapid.StringMatching(`[a-zA-Z0-9 :/._-]{0,40}`).Draw(rt, label))
	}
	return nil
}

func TestProjectCreateStoresExactlySuppliedFields(t *testing.T) {
	queue := newTestQueue(t)
	repo := NewProjectRepository(queue)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		in := models.NewProject{
			Title:       rapid.StringMatching(`[a-zA-Zа-я0-9 ]{1,30}`).Draw(rt, "title"),
			Description: optionalString(rt, "description"),
			ImageURL:    optionalString(rt, "image"),
			ProjectURL:  optionalString(rt, "url"),
		}

		id, err := repo.Create(ctx, in)
		if err != nil {
			rt.Fatal(err)
		}

		got, err := repo.GetByID(ctx, id)
		if err != nil {
			rt.Fatal(err)
		}

		if got.Title != in.Title {
			rt.Fatalf("title %q, want %q", got.Title, in.Title)
		}
		for name, pair := range map[string][2]*string{
			"description": {got.Description, in.Description},
			"image_url":   {got.ImageURL, in.ImageURL},
			"project_url": {got.ProjectURL, in.ProjectURL},
		} {
			if (pair[0] == nil) != (pair[1] == nil) {
				rt.Fatalf("%s presence mismatch: got %v want %v", name, pair[0], pair[1])
			}
			if pair[0] != nil && *pair[0] != *pair[1] {
				rt.Fatalf("%s = %q, want %q", name, *pair[0], *pair[1])
			}
		}
	})
}

func TestProjectSkippedFieldsAreNull(t *testing.T) {
	queue := newTestQueue(t)
	repo := NewProjectRepository(queue)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.NewProject{
		Title:      "Demo",
		ProjectURL: models.StringPtr("https://x.example"),
	})
	require.NoError(t, err)

	var nulls struct {
		Description bool `db:"description_null"`
		Image       bool `db:"image_null"`
		URL         bool `db:"url_null"`
	}
	err = queue.DB().GetContext(ctx, &nulls, `
		SELECT description IS NULL AS description_null,
		       image_url IS NULL AS image_null,
		       project_url IS NULL AS url_null
		FROM projects WHERE id = ?`, id)
	require.NoError(t, err)

	assert.True(t, nulls.Description)
	assert.True(t, nulls.Image)
	assert.False(t, nulls.URL)
}

func TestProjectUpdateLeavesOtherFieldsUntouched(t *testing.T) {
	queue := newTestQueue(t)
	repo := NewProjectRepository(queue)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		id, err := repo.Create(ctx, models.NewProject{
			Title:       rapid.StringMatching(`[a-zA-Z ]{1,20}`).Draw(rt, "title"),
			Description: optionalString(rt, "description"),
			ImageURL:    optionalString(rt, "image"),
			ProjectURL:  optionalString(rt, "url"),
		})
		if err != nil {
			rt.Fatal(err)
		}
		before, err := repo.GetByID(ctx, id)
		if err != nil {
			rt.Fatal(err)
		}

		field := rapid.SampledFrom(models.ProjectFields).Draw(rt, "field")
		value := rapid.StringMatching(`[a-z]{1,15}`).Draw(rt, "value")
		if err := repo.Update(ctx, id, field.Patch(value)); err != nil {
			rt.Fatal(err)
		}

		after, err := repo.GetByID(ctx, id)
		if err != nil {
			rt.Fatal(err)
		}

		want := field.Patch(value).Apply(*before)
		if after.Title != want.Title ||
			!equalPtr(after.Description, want.Description) ||
			!equalPtr(after.ImageURL, want.ImageURL) ||
			!equalPtr(after.ProjectURL, want.ProjectURL) {
			rt.Fatalf("after %s update got %+v, want %+v", field, after, want)
		}
		if !after.CreatedAt.Equal(before.CreatedAt) {
			rt.Fatalf("created_at changed")
		}
	})
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func TestProjectUpdateMissing(t *testing.T) {
	repo := NewProjectRepository(newTestQueue(t))

	err := repo.Update(context.Background(), 999, models.FieldTitle.Patch("x"))
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectConcurrentFieldEditsBothLand(t *testing.T) {
	repo := NewProjectRepository(newTestQueue(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, models.NewProject{Title: "Demo"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, field := range models.ProjectFields {
		wg.Add(1)
		go func(field models.Field) {
			defer wg.Done()
			assert.NoError(t, repo.Update(ctx, id, field.Patch("new "+string(field))))
		}(field)
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, "new description", *got.Description)
	assert.Equal(t, "new project_url", *got.ProjectURL)
	assert.Equal(t, "new image", *got.ImageURL)
}

func TestProjectGetAllNewestFirst(t *testing.T) {
	repo := NewProjectRepository(newTestQueue(t))
	ctx := context.Background()

	var ids []int64
	for _, title := range []string{"first", "second", "third"} {
		id, err := repo.Create(ctx, models.NewProject{Title: title})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	projects, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, ids[2], projects[0].ID)
	assert.Equal(t, ids[1], projects[1].ID)
	assert.Equal(t, ids[0], projects[2].ID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestProjectDelete(t *testing.T) {
	repo := NewProjectRepository(newTestQueue(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, models.NewProject{Title: "Demo"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, id), ErrProjectNotFound)
}
