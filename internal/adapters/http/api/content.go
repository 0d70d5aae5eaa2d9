package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/h2hmarketing/site/internal/adapters/repository"
	"github.com/h2hmarketing/site/internal/domain/model"
	"github.com/h2hmarketing/site/pkg/logger"
)

// RecordReader is the read side of the record store.
type RecordReader interface {
	PublishedPosts(ctx context.Context) ([]model.BlogPost, error)
	Projects(ctx context.Context) ([]model.Project, error)
	ProjectBySlug(ctx context.Context, slug string) (model.Project, error)
}

type blogResponse struct {
	Category   string           `json:"category"`
	Categories []string         `json:"categories"`
	Posts      []model.BlogPost `json:"posts"`
}

// ContentHandler serves blog posts and portfolio projects.
type ContentHandler struct {
	records RecordReader
	log     logger.Logger
}

// NewContentHandler creates a new content handler.
func NewContentHandler(records RecordReader, log logger.Logger) *ContentHandler {
	if records == nil {
		records = repository.Disabled{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &ContentHandler{records: records, log: log}
}

// HandleBlog handles GET /api/blog?category=X. An empty or "All" category
// returns every published post.
func (h *ContentHandler) HandleBlog(w http.ResponseWriter, r *http.Request) {
	const op = "api.blog"
	posts, err := h.records.PublishedPosts(r.Context())
	if err != nil {
		h.storeError(w, r, op, err)
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "All"
	}
	filtered := model.FilterCategory(posts, category)
	if filtered == nil {
		filtered = []model.BlogPost{}
	}
	writeJSON(w, http.StatusOK, blogResponse{
		Category:   category,
		Categories: append([]string{"All"}, model.Categories(posts)...),
		Posts:      filtered,
	})
}

// HandleProjects handles GET /api/projects.
func (h *ContentHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.records.Projects(r.Context())
	if err != nil {
		h.storeError(w, r, "api.projects", err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// HandleProject handles GET /api/projects/{slug}.
func (h *ContentHandler) HandleProject(w http.ResponseWriter, r *http.Request) {
	const op = "api.project"
	slug := r.PathValue("slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	p, err := h.records.ProjectBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		h.storeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// storeError maps record store failures to 503 so pages render their
// empty state instead of an error.
func (h *ContentHandler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if !errors.Is(err, repository.ErrUnavailable) {
		h.log.Warn(r.Context(), "record store read failed", logger.String("op", op), logger.Error(err))
	}
	writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
}
