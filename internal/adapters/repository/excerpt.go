package repository

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/h2hmarketing/site/internal/domain/model"
)

// DefaultExcerptLength is the rune length of derived excerpts.
const DefaultExcerptLength = 160

// Excerpt extracts visible text from HTML content, collapses whitespace
// and truncates to n runes on a word boundary.
func Excerpt(content string, n int) string {
	if n <= 0 {
		n = DefaultExcerptLength
	}
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return truncate(collapse(content), n)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
			return
		}
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteByte(' ')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return truncate(collapse(b.String()), n)
}

func collapse(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := n
	for i := n; i > n/2; i-- {
		if unicode.IsSpace(r[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(r[:cut]), unicode.IsSpace) + "…"
}

// fillExcerpts derives an excerpt for posts stored without one.
func fillExcerpts(posts []model.BlogPost, n int) {
	for i := range posts {
		if posts[i].Excerpt == nil || strings.TrimSpace(*posts[i].Excerpt) == "" {
			e := Excerpt(posts[i].Content, n)
			posts[i].Excerpt = &e
		}
	}
}
