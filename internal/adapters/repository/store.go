// Package repository is the record store: contact submissions are inserted,
// blog posts and projects are read. Nothing is updated or deleted.
package repository

import (
	"context"

	"github.com/h2hmarketing/site/internal/domain/model"
)

// Table names shared by every backend.
const (
	TableContacts = "contact_submissions"
	TablePosts    = "blog_posts"
	TableProjects = "projects"
)

// Store provides access to the site's records.
type Store interface {
	// InsertContact stores one submission and returns its id.
	InsertContact(ctx context.Context, c model.ContactSubmission) (string, error)

	// PublishedPosts returns published posts, newest first.
	PublishedPosts(ctx context.Context) ([]model.BlogPost, error)

	// Projects returns every project ordered by order_index ascending.
	Projects(ctx context.Context) ([]model.Project, error)

	// ProjectBySlug returns one project or ErrNotFound.
	ProjectBySlug(ctx context.Context, slug string) (model.Project, error)

	// Name identifies the backend in logs and stats.
	Name() string

	Close() error
}

// Seeder loads fixture rows. Only local backends implement it.
type Seeder interface {
	Seed(ctx context.Context, posts []model.BlogPost, projects []model.Project) error
}
