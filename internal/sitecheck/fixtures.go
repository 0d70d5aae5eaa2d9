package sitecheck

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/h2hmarketing/site/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// DefaultFixtures is the built-in seed data.
//
//go:embed fixtures.yaml
var DefaultFixtures []byte

// ErrFixture reports an unusable fixture document.
var ErrFixture = errors.New("invalid fixture")

// Fixtures is the YAML seed document.
type Fixtures struct {
	Posts    []PostFixture    `yaml:"posts"`
	Projects []ProjectFixture `yaml:"projects"`
}

// PostFixture is one blog post row.
type PostFixture struct {
	Title       string     `yaml:"title"`
	Slug        string     `yaml:"slug"`
	Excerpt     string     `yaml:"excerpt"`
	Content     string     `yaml:"content"`
	Author      string     `yaml:"author"`
	Category    string     `yaml:"category"`
	ImageURL    string     `yaml:"image_url"`
	Published   bool       `yaml:"published"`
	PublishedAt *time.Time `yaml:"published_at"`
}

// ProjectFixture is one project row.
type ProjectFixture struct {
	Title           string   `yaml:"title"`
	Slug            string   `yaml:"slug"`
	Category        string   `yaml:"category"`
	Description     string   `yaml:"description"`
	FullDescription string   `yaml:"full_description"`
	ThumbnailURL    string   `yaml:"thumbnail_url"`
	HeroImageURL    string   `yaml:"hero_image_url"`
	Client          string   `yaml:"client"`
	Year            string   `yaml:"year"`
	Tags            []string `yaml:"tags"`
	ColorPrimary    string   `yaml:"color_primary"`
	ColorSecondary  string   `yaml:"color_secondary"`
	Featured        bool     `yaml:"featured"`
	OrderIndex      int      `yaml:"order_index"`
}

// LoadFixtures decodes a fixture document. Every row needs a title and a slug,
// and slugs must be unique per table.
func LoadFixtures(r io.Reader) ([]model.BlogPost, []model.Project, error) {
	var f Fixtures
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: %w", ErrFixture, err)
	}

	seen := make(map[string]bool)
	posts := make([]model.BlogPost, 0, len(f.Posts))
	for i, p := range f.Posts {
		if p.Title == "" || p.Slug == "" {
			return nil, nil, fmt.Errorf("%w: post %d needs title and slug", ErrFixture, i)
		}
		if seen[p.Slug] {
			return nil, nil, fmt.Errorf("%w: duplicate post slug %q", ErrFixture, p.Slug)
		}
		seen[p.Slug] = true
		posts = append(posts, model.BlogPost{
			Title:       p.Title,
			Slug:        p.Slug,
			Excerpt:     model.OptionalString(p.Excerpt),
			Content:     p.Content,
			Author:      p.Author,
			Category:    p.Category,
			ImageURL:    model.OptionalString(p.ImageURL),
			Published:   p.Published,
			PublishedAt: p.PublishedAt,
		})
	}

	clear(seen)
	projects := make([]model.Project, 0, len(f.Projects))
	for i, p := range f.Projects {
		if p.Title == "" || p.Slug == "" {
			return nil, nil, fmt.Errorf("%w: project %d needs title and slug", ErrFixture, i)
		}
		if seen[p.Slug] {
			return nil, nil, fmt.Errorf("%w: duplicate project slug %q", ErrFixture, p.Slug)
		}
		seen[p.Slug] = true
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		projects = append(projects, model.Project{
			Title:           p.Title,
			Slug:            p.Slug,
			Category:        p.Category,
			Description:     p.Description,
			FullDescription: p.FullDescription,
			ThumbnailURL:    p.ThumbnailURL,
			HeroImageURL:    p.HeroImageURL,
			Client:          p.Client,
			Year:            p.Year,
			Tags:            tags,
			ColorPrimary:    p.ColorPrimary,
			ColorSecondary:  p.ColorSecondary,
			Featured:        p.Featured,
			OrderIndex:      p.OrderIndex,
		})
	}
	return posts, projects, nil
}
