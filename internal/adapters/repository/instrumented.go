package repository

import (
	"context"
	"errors"
	"time"

	"github.com/h2hmarketing/site/internal/domain/model"
	"github.com/h2hmarketing/site/pkg/logger"
	"github.com/h2hmarketing/site/pkg/metrics"
)

// instrumented records latency and failures of every store call.
type instrumented struct {
	next Store
	log  logger.Logger
}

// Instrument wraps s with metrics and error logging.
func Instrument(s Store, opts ...InstrumentOption) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	i := &instrumented{next: s, log: logger.Discard()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Unwrap returns the wrapped store.
func (i *instrumented) Unwrap() Store { return i.next }

func (i *instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Milliseconds()))
	if err == nil || errors.Is(err, ErrNotFound) {
		return
	}
	metrics.RecordStoreError(op)
	kind := "unavailable"
	if errors.Is(err, ErrRejected) {
		kind = "rejected"
	}
	metrics.RecordErrorByComponent("store", kind)
	i.log.Error(ctx, "record store call failed",
		logger.String("op", op),
		logger.String("backend", i.next.Name()),
		logger.Error(err))
}

func (i *instrumented) InsertContact(ctx context.Context, c model.ContactSubmission) (string, error) {
	start := time.Now()
	id, err := i.next.InsertContact(ctx, c)
	i.observe(ctx, "insert_contact", start, err)
	return id, err
}

func (i *instrumented) PublishedPosts(ctx context.Context) ([]model.BlogPost, error) {
	start := time.Now()
	posts, err := i.next.PublishedPosts(ctx)
	i.observe(ctx, "published_posts", start, err)
	return posts, err
}

func (i *instrumented) Projects(ctx context.Context) ([]model.Project, error) {
	start := time.Now()
	projects, err := i.next.Projects(ctx)
	i.observe(ctx, "projects", start, err)
	return projects, err
}

func (i *instrumented) ProjectBySlug(ctx context.Context, slug string) (model.Project, error) {
	start := time.Now()
	p, err := i.next.ProjectBySlug(ctx, slug)
	i.observe(ctx, "project_by_slug", start, err)
	return p, err
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Close() error { return i.next.Close() }

// Seed forwards to the wrapped store when it can seed.
func (i *instrumented) Seed(ctx context.Context, posts []model.BlogPost, projects []model.Project) error {
	sd, ok := i.next.(Seeder)
	if !ok {
		return ErrUnavailable
	}
	return sd.Seed(ctx, posts, projects)
}
