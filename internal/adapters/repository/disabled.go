package repository

import (
	"context"

	"github.com/h2hmarketing/site/internal/domain/model"
)

// Disabled is the store used when persistence is not configured. Every
// call fails with ErrUnavailable so callers degrade instead of crashing.
type Disabled struct{}

func (Disabled) InsertContact(context.Context, model.ContactSubmission) (string, error) {
	return "", ErrUnavailable
}

func (Disabled) PublishedPosts(context.Context) ([]model.BlogPost, error) {
	return nil, ErrUnavailable
}

func (Disabled) Projects(context.Context) ([]model.Project, error) {
	return nil, ErrUnavailable
}

func (Disabled) ProjectBySlug(context.Context, string) (model.Project, error) {
	return model.Project{}, ErrUnavailable
}

func (Disabled) Name() string { return "disabled" }

func (Disabled) Close() error { return nil }
