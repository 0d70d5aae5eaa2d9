package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h2hmarketing/site/internal/domain/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr(s string) *string { return &s }

func TestSQLiteInsertContact(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id1, err := s.InsertContact(ctx, model.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Rebrand please"})
	require.NoError(t, err)
	id2, err := s.InsertContact(ctx, model.ContactSubmission{Name: "Bob", Email: "bob@example.com", Budget: ptr("$10k"), Message: "Campaign"})
	require.NoError(t, err)

	assert.Len(t, id1, 26)
	assert.NotEqual(t, id1, id2)

	var budget *string
	var status string
	require.NoError(t, s.db.QueryRow(`SELECT budget, status FROM contact_submissions WHERE id = ?`, id1).Scan(&budget, &status))
	assert.Nil(t, budget)
	assert.Equal(t, model.StatusNew, status)
}

func TestSQLiteSeedAndRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	older := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	posts := []model.BlogPost{
		{Title: "Old", Slug: "old", Content: "<p>first</p>", Author: "A", Category: "SEO", Published: true, PublishedAt: &older},
		{Title: "New", Slug: "new", Content: "<h1>Title</h1><p>Body text</p>", Author: "B", Category: "Branding", Published: true, PublishedAt: &newer, Excerpt: ptr("Custom")},
		{Title: "Draft", Slug: "draft", Content: "x", Author: "C", Category: "SEO"},
	}
	projects := []model.Project{
		{Title: "Zen", Slug: "zen-wellness", OrderIndex: 2, Tags: []string{"identity"}},
		{Title: "Lumina", Slug: "lumina-tech", OrderIndex: 1, Featured: true},
	}
	require.NoError(t, s.Seed(ctx, posts, projects))
	// Seeding twice updates in place.
	require.NoError(t, s.Seed(ctx, posts, projects))

	got, err := s.PublishedPosts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Slug)
	assert.Equal(t, "Custom", *got[0].Excerpt)
	assert.Equal(t, "first", *got[1].Excerpt)
	assert.True(t, got[1].PublishedAt.Equal(older))

	list, err := s.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "lumina-tech", list[0].Slug)
	assert.True(t, list[0].Featured)
	assert.Equal(t, []string{}, list[0].Tags)
	assert.Equal(t, []string{"identity"}, list[1].Tags)

	p, err := s.ProjectBySlug(ctx, "zen-wellness")
	require.NoError(t, err)
	assert.Equal(t, "Zen", p.Title)

	_, err = s.ProjectBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "sqlite", s.Name())
}

func TestSQLitePostsOrderWithinASecond(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	whole := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	half := whole.Add(500 * time.Millisecond)
	posts := []model.BlogPost{
		{Title: "Whole", Slug: "whole", Content: "a", Author: "A", Category: "SEO", Published: true, PublishedAt: &whole},
		{Title: "Half", Slug: "half", Content: "b", Author: "B", Category: "SEO", Published: true, PublishedAt: &half},
	}
	require.NoError(t, s.Seed(ctx, posts, nil))

	got, err := s.PublishedPosts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"half", "whole"}, []string{got[0].Slug, got[1].Slug})
	assert.True(t, got[0].PublishedAt.Equal(half))
	assert.True(t, got[1].PublishedAt.Equal(whole))
}

func TestSQLiteClosed(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.InsertContact(context.Background(), model.ContactSubmission{Name: "Ada"})
	assert.ErrorIs(t, err, ErrUnavailable)
}
