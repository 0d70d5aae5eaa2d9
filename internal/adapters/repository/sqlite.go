package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/h2hmarketing/site/internal/domain/model"
)

// SQLiteStore keeps records in a local file for development and for
// running without a hosted backend.
type SQLiteStore struct {
	db         *sql.DB
	mu         sync.Mutex
	entropy    *rand.Rand
	excerptLen int
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &SQLiteStore{
		db:         db,
		entropy:    rand.New(rand.NewSource(time.Now().UnixNano())),
		excerptLen: DefaultExcerptLength,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) newID(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contact_submissions (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		company    TEXT,
		service    TEXT,
		budget     TEXT,
		message    TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'new',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS blog_posts (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		slug         TEXT NOT NULL UNIQUE,
		excerpt      TEXT,
		content      TEXT NOT NULL,
		author       TEXT NOT NULL,
		category     TEXT NOT NULL,
		image_url    TEXT,
		published    INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		published_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_blog_posts_published ON blog_posts(published, published_at DESC);

	CREATE TABLE IF NOT EXISTS projects (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL,
		slug             TEXT NOT NULL UNIQUE,
		category         TEXT NOT NULL DEFAULT '',
		description      TEXT NOT NULL DEFAULT '',
		full_description TEXT NOT NULL DEFAULT '',
		thumbnail_url    TEXT NOT NULL DEFAULT '',
		hero_image_url   TEXT NOT NULL DEFAULT '',
		client           TEXT NOT NULL DEFAULT '',
		year             TEXT NOT NULL DEFAULT '',
		tags             TEXT NOT NULL DEFAULT '[]',
		color_primary    TEXT NOT NULL DEFAULT '',
		color_secondary  TEXT NOT NULL DEFAULT '',
		featured         INTEGER NOT NULL DEFAULT 0,
		order_index      INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_projects_order ON projects(order_index);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertContact stores one submission.
func (s *SQLiteStore) InsertContact(ctx context.Context, c model.ContactSubmission) (string, error) {
	now := time.Now().UTC()
	id := s.newID(now)
	status := c.Status
	if status == "" {
		status = model.StatusNew
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_submissions (id, name, email, company, service, budget, message, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, c.Name, c.Email, nullable(c.Company), nullable(c.Service), nullable(c.Budget), c.Message, status, now.Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("%w: insert contact: %w", ErrUnavailable, err)
	}
	return id, nil
}

// PublishedPosts returns published posts, newest first.
func (s *SQLiteStore) PublishedPosts(ctx context.Context) ([]model.BlogPost, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, slug, excerpt, content, author, category, image_url, published, created_at, updated_at, published_at
		 FROM blog_posts WHERE published = 1 ORDER BY published_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: select posts: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var posts []model.BlogPost
	for rows.Next() {
		var (
			p                   model.BlogPost
			excerpt, image, pub sql.NullString
			created, updated    string
			published           int
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &excerpt, &p.Content, &p.Author, &p.Category, &image, &published, &created, &updated, &pub); err != nil {
			return nil, fmt.Errorf("%w: scan post: %w", ErrUnavailable, err)
		}
		p.Excerpt = fromNull(excerpt)
		p.ImageURL = fromNull(image)
		p.Published = published != 0
		p.CreatedAt = parseTime(created)
		p.UpdatedAt = parseTime(updated)
		if pub.Valid {
			t := parseTime(pub.String)
			p.PublishedAt = &t
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	fillExcerpts(posts, s.excerptLen)
	return posts, nil
}

const projectColumns = `id, title, slug, category, description, full_description, thumbnail_url, hero_image_url,
	client, year, tags, color_primary, color_secondary, featured, order_index, created_at`

// Projects returns every project by order_index.
func (s *SQLiteStore) Projects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY order_index ASC, slug ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: select projects: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return out, nil
}

// ProjectBySlug returns one project or ErrNotFound.
func (s *SQLiteStore) ProjectBySlug(ctx context.Context, slug string) (model.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = ? LIMIT 1`, slug)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (model.Project, error) {
	var (
		p        model.Project
		tags     string
		featured int
		created  string
	)
	err := sc.Scan(&p.ID, &p.Title, &p.Slug, &p.Category, &p.Description, &p.FullDescription, &p.ThumbnailURL,
		&p.HeroImageURL, &p.Client, &p.Year, &tags, &p.ColorPrimary, &p.ColorSecondary, &featured, &p.OrderIndex, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("%w: scan project: %w", ErrUnavailable, err)
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		p.Tags = nil
	}
	p.Featured = featured != 0
	p.CreatedAt = parseTime(created)
	return p, nil
}

// Seed upserts fixture posts and projects by slug.
func (s *SQLiteStore) Seed(ctx context.Context, posts []model.BlogPost, projects []model.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, p := range posts {
		id := p.ID
		if id == "" {
			id = s.newID(now)
		}
		created, updated := orNow(p.CreatedAt, now), orNow(p.UpdatedAt, now)
		var pub any
		if p.PublishedAt != nil {
			pub = p.PublishedAt.UTC().Format(timeLayout)
		} else if p.Published {
			pub = now.Format(timeLayout)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO blog_posts (id, title, slug, excerpt, content, author, category, image_url, published, created_at, updated_at, published_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(slug) DO UPDATE SET title=excluded.title, excerpt=excluded.excerpt, content=excluded.content,
			   author=excluded.author, category=excluded.category, image_url=excluded.image_url, published=excluded.published,
			   updated_at=excluded.updated_at, published_at=excluded.published_at`,
			id, p.Title, p.Slug, nullable(p.Excerpt), p.Content, p.Author, p.Category, nullable(p.ImageURL),
			boolInt(p.Published), created, updated, pub)
		if err != nil {
			return fmt.Errorf("seed post %s: %w", p.Slug, err)
		}
	}
	for _, p := range projects {
		id := p.ID
		if id == "" {
			id = s.newID(now)
		}
		tags, err := json.Marshal(nonNil(p.Tags))
		if err != nil {
			return fmt.Errorf("seed project %s tags: %w", p.Slug, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO projects (`+projectColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(slug) DO UPDATE SET title=excluded.title, category=excluded.category, description=excluded.description,
			   full_description=excluded.full_description, thumbnail_url=excluded.thumbnail_url, hero_image_url=excluded.hero_image_url,
			   client=excluded.client, year=excluded.year, tags=excluded.tags, color_primary=excluded.color_primary,
			   color_secondary=excluded.color_secondary, featured=excluded.featured, order_index=excluded.order_index`,
			id, p.Title, p.Slug, p.Category, p.Description, p.FullDescription, p.ThumbnailURL, p.HeroImageURL,
			p.Client, p.Year, string(tags), p.ColorPrimary, p.ColorSecondary, boolInt(p.Featured), p.OrderIndex, orNow(p.CreatedAt, now))
		if err != nil {
			return fmt.Errorf("seed project %s: %w", p.Slug, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Name() string { return "sqlite" }

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// timeLayout is fixed width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func orNow(t, now time.Time) string {
	if t.IsZero() {
		t = now
	}
	return t.UTC().Format(timeLayout)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
