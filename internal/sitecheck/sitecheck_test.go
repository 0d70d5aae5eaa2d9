package sitecheck

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/h2hmarketing/site/internal/adapters/http/api"
	"github.com/h2hmarketing/site/internal/adapters/http/site"
	"github.com/h2hmarketing/site/internal/adapters/repository"
	service "github.com/h2hmarketing/site/internal/app"
	"github.com/h2hmarketing/site/internal/config"
	"github.com/h2hmarketing/site/internal/domain/form"
	"github.com/h2hmarketing/site/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

// liveSite starts a full service on a seeded sqlite store.
func liveSite(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "site.db"))
	if err != nil {
		t.Fatal(err)
	}
	posts, projects, err := LoadFixtures(bytes.NewReader(DefaultFixtures))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Seed(ctx, posts, projects); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.ChatTypingMinMS = 0
	cfg.ChatTypingMaxMS = 0
	svc := service.New(
		service.WithConfig(cfg),
		service.WithStore(store),
		service.WithLogger(logger.Discard()),
	)
	if err := svc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	deps, err := svc.Dependencies()
	if err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	api.NewServer(deps).Register(ctx, mux)
	site.Register(ctx, mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
	})
	return srv
}

func TestLoadFixtures(t *testing.T) {
	Convey("Given the built-in fixtures", t, func() {
		posts, projects, err := LoadFixtures(bytes.NewReader(DefaultFixtures))

		Convey("Then every row decodes", func() {
			So(err, ShouldBeNil)
			So(posts, ShouldHaveLength, 4)
			So(projects, ShouldHaveLength, 4)
			So(posts[0].PublishedAt, ShouldNotBeNil)
			So(posts[0].Excerpt, ShouldBeNil)
			So(*posts[1].Excerpt, ShouldStartWith, "Planning is easy")
			So(posts[3].Published, ShouldBeFalse)
			So(projects[0].Tags, ShouldResemble, []string{"saas", "ux"})
			So(projects[2].Tags, ShouldResemble, []string{})
			So(projects[0].Year, ShouldEqual, "2024")
		})
	})

	Convey("Given broken fixture documents", t, func() {
		cases := map[string]string{
			"missing slug":   "posts:\n  - title: A\n",
			"duplicate slug": "projects:\n  - {title: A, slug: a}\n  - {title: B, slug: a}\n",
			"not yaml":       "posts: [",
		}
		for name, doc := range cases {
			Convey("Then "+name+" is rejected", func() {
				_, _, err := LoadFixtures(strings.NewReader(doc))
				So(errors.Is(err, ErrFixture), ShouldBeTrue)
			})
		}
	})

	Convey("Given an empty document", t, func() {
		posts, projects, err := LoadFixtures(strings.NewReader(""))
		So(err, ShouldBeNil)
		So(posts, ShouldBeEmpty)
		So(projects, ShouldBeEmpty)
	})
}

func TestGenerator(t *testing.T) {
	Convey("Given generated contacts", t, func() {
		stats := &Stats{}
		contacts, err := generateContacts(context.Background(), logger.Discard(), &Config{Contacts: 20}, stats)
		So(err, ShouldBeNil)

		Convey("Then each one passes form validation with a unique key", func() {
			So(stats.ContactsGenerated, ShouldEqual, 20)
			keys := map[string]bool{}
			for _, c := range contacts {
				fc := form.Contact{Name: c.Name, Email: c.Email, Company: c.Company, Service: c.Service, Budget: c.Budget, Message: c.Message}
				So(form.Validate(fc), ShouldBeEmpty)
				keys[c.Key] = true
			}
			So(keys, ShouldHaveLength, 20)
		})

		Convey("And replays reuse keys from the head", func() {
			all := withReplays(contacts, 3)
			So(all, ShouldHaveLength, 23)
			So(all[20].Key, ShouldEqual, contacts[0].Key)
			So(all[22].Key, ShouldEqual, contacts[2].Key)
			So(withReplays(nil, 3), ShouldBeEmpty)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := generateContacts(ctx, logger.Discard(), &Config{Contacts: 1}, &Stats{})
		So(err, ShouldNotBeNil)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a live site", t, func() {
		srv := liveSite(t)
		report := filepath.Join(t.TempDir(), "out", "report.yaml")
		cfg := &Config{
			BaseURL:    srv.URL,
			Contacts:   6,
			Replays:    3,
			Chats:      len(Questions),
			Workers:    3,
			Timeout:    5 * time.Second,
			ReplyWait:  5 * time.Second,
			OutputFile: report,
		}

		Convey("When the smoke test runs", func() {
			stats, err := Run(context.Background(), logger.Discard(), cfg)

			Convey("Then every check passes", func() {
				So(err, ShouldBeNil)
				So(stats.PagesChecked, ShouldEqual, len(Pages))
				So(stats.ContactsSubmitted, ShouldEqual, 9)
				So(stats.ContactsSent, ShouldEqual, 6)
				So(stats.ContactsDuplicate, ShouldEqual, 3)
				So(stats.ContactsFailed, ShouldEqual, 0)
				So(stats.ChatsOpened, ShouldEqual, len(Questions))
				So(stats.ChatReplies, ShouldEqual, len(Questions))
			})

			Convey("And the report is written as YAML", func() {
				data, err := os.ReadFile(report)
				So(err, ShouldBeNil)
				var r Report
				So(yaml.Unmarshal(data, &r), ShouldBeNil)
				So(r.BaseURL, ShouldEqual, srv.URL)
				So(r.Contacts, ShouldHaveLength, 6)
				So(r.Chats, ShouldHaveLength, len(Questions))
			})
		})
	})

	Convey("Given an unhealthy server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		Convey("Then the run stops at the health check", func() {
			_, err := Run(context.Background(), logger.Discard(), &Config{BaseURL: srv.URL, Timeout: time.Second})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}

func TestVerifyResults(t *testing.T) {
	Convey("Given inconsistent client counts", t, func() {
		cfg := &Config{BaseURL: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond}
		log := logger.Discard()
		ctx := context.Background()

		So(errors.Is(verifyResults(ctx, log, cfg, nil, &Stats{ContactsFailed: 1}), ErrSubmissions), ShouldBeTrue)
		So(errors.Is(verifyResults(ctx, log, cfg, nil, &Stats{ContactsSubmitted: 2, ContactsSent: 1}), ErrSubmissions), ShouldBeTrue)
		So(errors.Is(verifyResults(ctx, log, cfg, []ChatResult{{Question: "zebra", Replied: false}}, &Stats{}), ErrChat), ShouldBeTrue)
		So(errors.Is(verifyResults(ctx, log, cfg, []ChatResult{{Question: "zebra", Replied: true, Intent: "help"}}, &Stats{}), ErrChat), ShouldBeTrue)

		Convey("And an unreachable stats endpoint is only a warning", func() {
			So(verifyResults(ctx, log, cfg, nil, &Stats{}), ShouldBeNil)
		})
	})
}

func TestSetupLogging(t *testing.T) {
	Convey("Given a log file", t, func() {
		path := filepath.Join(t.TempDir(), "run.log")
		var buf bytes.Buffer
		closer, err := SetupLogging(&buf, path)
		So(err, ShouldBeNil)
		logger.Get().Info(context.Background(), "tee")
		So(closer.Close(), ShouldBeNil)

		Convey("Then records land in both places", func() {
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "msg=tee")
			So(buf.String(), ShouldContainSubstring, "msg=tee")
		})
	})
}
