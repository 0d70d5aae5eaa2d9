package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/h2hmarketing/site/internal/domain/model"
)

const (
	restPath       = "/rest/v1/"
	defaultTimeout = 8 * time.Second
	maxErrorBody   = 512
)

// SupabaseStore talks PostgREST to a hosted Supabase project using the
// anonymous key, the same access the public site has.
type SupabaseStore struct {
	base       *url.URL
	anonKey    string
	client     *http.Client
	timeout    time.Duration
	excerptLen int
}

// NewSupabaseStore creates a client for the project at baseURL.
func NewSupabaseStore(baseURL, anonKey string, opts ...SupabaseOption) (*SupabaseStore, error) {
	if baseURL == "" || anonKey == "" {
		return nil, fmt.Errorf("%w: supabase url and anon key are required", ErrUnavailable)
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid supabase url %q", ErrUnavailable, baseURL)
	}
	s := &SupabaseStore{
		base:       u,
		anonKey:    anonKey,
		client:     &http.Client{},
		timeout:    defaultTimeout,
		excerptLen: DefaultExcerptLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type contactRow struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company *string `json:"company,omitempty"`
	Service *string `json:"service,omitempty"`
	Budget  *string `json:"budget"`
	Message string  `json:"message"`
}

// InsertContact posts one row and reads the id back from the representation.
func (s *SupabaseStore) InsertContact(ctx context.Context, c model.ContactSubmission) (string, error) {
	rows := []contactRow{{
		Name:    c.Name,
		Email:   c.Email,
		Company: c.Company,
		Service: c.Service,
		Budget:  c.Budget,
		Message: c.Message,
	}}
	var out []model.ContactSubmission
	if err := s.do(ctx, http.MethodPost, TableContacts, nil, rows, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", ErrNoRows
	}
	return out[0].ID, nil
}

// PublishedPosts selects published posts, newest first.
func (s *SupabaseStore) PublishedPosts(ctx context.Context) ([]model.BlogPost, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("published", "eq.true")
	q.Set("order", "published_at.desc")
	var posts []model.BlogPost
	if err := s.do(ctx, http.MethodGet, TablePosts, q, nil, &posts); err != nil {
		return nil, err
	}
	fillExcerpts(posts, s.excerptLen)
	return posts, nil
}

// Projects selects every project by order_index.
func (s *SupabaseStore) Projects(ctx context.Context) ([]model.Project, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "order_index.asc")
	var projects []model.Project
	if err := s.do(ctx, http.MethodGet, TableProjects, q, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ProjectBySlug selects at most one project.
func (s *SupabaseStore) ProjectBySlug(ctx context.Context, slug string) (model.Project, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("slug", "eq."+slug)
	q.Set("limit", "1")
	var projects []model.Project
	if err := s.do(ctx, http.MethodGet, TableProjects, q, nil, &projects); err != nil {
		return model.Project{}, err
	}
	if len(projects) == 0 {
		return model.Project{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return projects[0], nil
}

func (s *SupabaseStore) Name() string { return "supabase" }

// Close releases idle connections.
func (s *SupabaseStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *SupabaseStore) do(ctx context.Context, method, table string, q url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + restPath + table
	u.RawQuery = q.Encode()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", table, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+s.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		kind := ErrUnavailable
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			kind = ErrRejected
		}
		return fmt.Errorf("%w: %s %s: status %d: %s", kind, method, table, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode %s: %w", ErrUnavailable, table, err)
	}
	return nil
}
