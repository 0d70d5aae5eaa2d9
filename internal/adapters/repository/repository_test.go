package repository

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/h2hmarketing/site/internal/config"
	"github.com/h2hmarketing/site/internal/domain/model"
	"github.com/h2hmarketing/site/pkg/logger"
)

func TestExcerpt(t *testing.T) {
	Convey("Excerpts come from visible text", t, func() {
		So(Excerpt("<div><style>p{}</style><p>Hello</p>\n\n<p>  big   world </p><script>x()</script></div>", 0), ShouldEqual, "Hello big world")

		long := "<p>" + strings.Repeat("word ", 60) + "</p>"
		got := Excerpt(long, 20)
		So(got, ShouldEndWith, "…")
		So(len([]rune(got)), ShouldBeLessThanOrEqualTo, 21)
		So(got, ShouldNotContainSubstring, "wor…")
	})
}

func TestDisabled(t *testing.T) {
	Convey("Every disabled call is unavailable", t, func() {
		ctx := context.Background()
		var d Disabled
		_, err := d.InsertContact(ctx, model.ContactSubmission{})
		So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
		_, err = d.PublishedPosts(ctx)
		So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
		_, err = d.Projects(ctx)
		So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
		_, err = d.ProjectBySlug(ctx, "x")
		So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
		So(d.Close(), ShouldBeNil)
	})
}

func TestFactory(t *testing.T) {
	ctx := context.Background()

	Convey("Given a supabase backend without secrets", t, func() {
		var buf bytes.Buffer
		So(logger.InitWithWriter(&buf), ShouldBeNil)
		cfg := config.New()

		s, err := New(ctx, cfg, logger.Get())

		Convey("Then persistence is disabled with a warning", func() {
			So(err, ShouldBeNil)
			So(s.Name(), ShouldEqual, "disabled")
			So(buf.String(), ShouldContainSubstring, "database features will be disabled")
			_, err := s.InsertContact(ctx, model.ContactSubmission{})
			So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
			So(buf.String(), ShouldContainSubstring, "record store call failed")
		})
	})

	Convey("Given a sqlite backend", t, func() {
		cfg := config.New()
		cfg.StoreBackend = config.BackendSQLite
		cfg.SQLitePath = filepath.Join(t.TempDir(), "site.db")

		s, err := New(ctx, cfg, logger.Discard())
		So(err, ShouldBeNil)
		defer s.Close()

		Convey("Then it seeds through the instrumented wrapper", func() {
			So(s.Name(), ShouldEqual, "sqlite")
			sd, ok := s.(Seeder)
			So(ok, ShouldBeTrue)
			So(sd.Seed(ctx, nil, []model.Project{{Title: "A", Slug: "a"}}), ShouldBeNil)
			p, err := s.ProjectBySlug(ctx, "a")
			So(err, ShouldBeNil)
			So(p.Title, ShouldEqual, "A")
			So(Instrument(s), ShouldEqual, s)
		})
	})

	Convey("Given a configured supabase backend", t, func() {
		cfg := config.New()
		cfg.SupabaseURL = "https://example.supabase.co"
		cfg.SupabaseAnonKey = "anon"
		s, err := New(ctx, cfg, logger.Discard())
		So(err, ShouldBeNil)
		So(s.Name(), ShouldEqual, "supabase")

		_, isSeeder := s.(Seeder)
		So(isSeeder, ShouldBeTrue)
		So(errors.Is(s.(Seeder).Seed(ctx, nil, nil), ErrUnavailable), ShouldBeTrue)
	})

	Convey("An unknown backend fails", t, func() {
		cfg := config.New()
		cfg.StoreBackend = "mongo"
		_, err := New(ctx, cfg, logger.Discard())
		So(err, ShouldNotBeNil)
	})
}
