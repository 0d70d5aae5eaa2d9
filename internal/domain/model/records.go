// Package model contains the records exchanged with the record store.
package model

import (
	"strings"
	"time"
)

// Contact submission statuses. New rows start as StatusNew.
const (
	StatusNew = "new"
)

// ContactSubmission is one row of contact_submissions.
type ContactSubmission struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company"`
	Service   *string   `json:"service"`
	Budget    *string   `json:"budget"`
	Message   string    `json:"message"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// BlogPost is one row of blog_posts.
type BlogPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	Category    string     `json:"category"`
	ImageURL    *string    `json:"image_url"`
	Published   bool       `json:"published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// Project is one row of projects.
type Project struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	FullDescription string    `json:"full_description"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	HeroImageURL    string    `json:"hero_image_url"`
	Client          string    `json:"client"`
	Year            string    `json:"year"`
	Tags            []string  `json:"tags"`
	ColorPrimary    string    `json:"color_primary"`
	ColorSecondary  string    `json:"color_secondary"`
	Featured        bool      `json:"featured"`
	OrderIndex      int       `json:"order_index"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
}

// OptionalString maps blank strings to nil, the way the form sends null
// for an empty budget.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FilterCategory keeps posts in category. "" and "All" keep everything.
func FilterCategory(posts []BlogPost, category string) []BlogPost {
	if category == "" || strings.EqualFold(category, "all") {
		return posts
	}
	out := make([]BlogPost, 0, len(posts))
	for _, p := range posts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists the distinct categories in first-seen order.
func Categories(posts []BlogPost) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range posts {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
