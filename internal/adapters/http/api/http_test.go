package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/h2hmarketing/site/internal/adapters/http/api"
	"github.com/h2hmarketing/site/internal/adapters/mq/queue"
	"github.com/h2hmarketing/site/internal/adapters/repository"
	"github.com/h2hmarketing/site/internal/domain/chat"
	"github.com/h2hmarketing/site/internal/domain/dedupe"
	"github.com/h2hmarketing/site/internal/domain/model"
	"github.com/h2hmarketing/site/internal/frame"
	"github.com/h2hmarketing/site/internal/scene"
)

type mockRecords struct {
	posts    []model.BlogPost
	projects []model.Project
	err      error
}

func (m *mockRecords) PublishedPosts(context.Context) ([]model.BlogPost, error) {
	return m.posts, m.err
}

func (m *mockRecords) Projects(context.Context) ([]model.Project, error) {
	return m.projects, m.err
}

func (m *mockRecords) ProjectBySlug(_ context.Context, slug string) (model.Project, error) {
	if m.err != nil {
		return model.Project{}, m.err
	}
	for _, p := range m.projects {
		if p.Slug == slug {
			return p, nil
		}
	}
	return model.Project{}, fmt.Errorf("%w: %s", repository.ErrNotFound, slug)
}

type mockSubmitter struct {
	calls []model.ContactSubmission
	err   error
}

func (m *mockSubmitter) SubmitContact(_ context.Context, c model.ContactSubmission) (string, error) {
	m.calls = append(m.calls, c)
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("contact-%d", len(m.calls)), nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any {
	return m.stats
}

type fixture struct {
	mux       *http.ServeMux
	loop      *frame.Loop
	clock     *frame.ManualClock
	records   *mockRecords
	submitter *mockSubmitter
}

func newFixture() *fixture {
	clock := frame.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	loop := frame.NewLoop(frame.WithClock(clock))
	responder := chat.NewResponder(chat.DefaultBrand)
	renderer, err := scene.NewRenderer()
	if err != nil {
		panic(err)
	}
	f := &fixture{
		mux:   http.NewServeMux(),
		loop:  loop,
		clock: clock,
		records: &mockRecords{
			posts: []model.BlogPost{
				{Slug: "seo-basics", Category: "SEO", Published: true},
				{Slug: "brand-voice", Category: "Branding", Published: true},
			},
			projects: []model.Project{{Slug: "lumina-tech", Title: "Lumina"}},
		},
		submitter: &mockSubmitter{},
	}
	server := api.NewServer(api.Dependencies{
		Responder: responder,
		Sessions: chat.NewRegistry(responder, loop,
			chat.WithSessionOptions(chat.WithDelay(chat.UniformDelay(time.Second, time.Second)))),
		Records:  f.records,
		Contacts: f.submitter,
		Deduper:  dedupe.NewInMemoryDeduper(),
		Scene:    renderer,
		Stats:    &mockStatsProvider{stats: map[string]any{"store": "mock"}},
	})
	server.Register(context.Background(), f.mux)
	return f
}

func (f *fixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

const validContact = `{"name":"Ada Lovelace","email":"ada@example.com","budget":"","message":"We need a full rebrand this spring."}`

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		f := newFixture()

		Convey("Then health serves the metrics exposition", func() {
			w := f.do("GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats returns the provider snapshot", func() {
			w := f.do("GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["store"], ShouldEqual, "mock")
		})

		Convey("Then unknown paths are not found and wrong methods refused", func() {
			So(f.do("GET", "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
			So(f.do("GET", "/api/contact", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Then registering on a nil mux panics", func() {
			So(func() { api.NewServer(api.Dependencies{}).Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestChatHandlers(t *testing.T) {
	Convey("Given the chat endpoints", t, func() {
		f := newFixture()

		Convey("When asking a stateless question", func() {
			w := f.do("POST", "/api/chat/reply", `{"message":"How much does it cost?"}`)

			Convey("Then the matching template comes back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["intent"], ShouldEqual, "pricing")
				So(body["response"], ShouldContainSubstring, "$50,000+")
			})
		})

		Convey("When the message is blank or malformed", func() {
			So(f.do("POST", "/api/chat/reply", `{"message":"   "}`).Code, ShouldEqual, http.StatusBadRequest)
			So(f.do("POST", "/api/chat/reply", `{`).Code, ShouldEqual, http.StatusBadRequest)
			So(f.do("POST", "/api/chat/reply", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When holding a conversation in a session", func() {
			w := f.do("POST", "/api/chat/sessions", "")
			So(w.Code, ShouldEqual, http.StatusCreated)
			id, _ := decode(w)["id"].(string)
			So(id, ShouldNotBeEmpty)
			path := "/api/chat/sessions/" + id

			f.loop.Advance(f.clock, 600*time.Millisecond)
			So(len(decode(f.do("GET", path, ""))["messages"].([]any)), ShouldEqual, 1)

			So(f.do("POST", path+"/messages", `{"message":"hello"}`).Code, ShouldEqual, http.StatusAccepted)
			busy := f.do("POST", path+"/messages", `{"message":"what services do you offer"}`)

			Convey("Then a second message while typing is refused", func() {
				So(busy.Code, ShouldEqual, http.StatusConflict)
				So(decode(busy)["code"], ShouldEqual, "reply_pending")
				So(decode(f.do("GET", path, ""))["typing"], ShouldEqual, true)
			})

			Convey("Then the reply lands after the typing delay", func() {
				f.loop.Advance(f.clock, 1100*time.Millisecond)
				body := decode(f.do("GET", path, ""))
				So(body["typing"], ShouldEqual, false)
				msgs := body["messages"].([]any)
				So(len(msgs), ShouldEqual, 3)
				So(msgs[2].(map[string]any)["intent"], ShouldEqual, "greeting")
				So(f.do("POST", path+"/messages", `{"message":""}`).Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the session does not exist", func() {
			So(f.do("GET", "/api/chat/sessions/nope", "").Code, ShouldEqual, http.StatusNotFound)
			So(f.do("POST", "/api/chat/sessions/nope/messages", `{"message":"hi"}`).Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestContactHandlers(t *testing.T) {
	Convey("Given the contact endpoints", t, func() {
		f := newFixture()

		Convey("When validating a single field on blur", func() {
			w := f.do("POST", "/api/contact/validate", `{"field":"email","value":"nope"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["valid"], ShouldEqual, false)
			So(body["error"].(map[string]any)["code"], ShouldEqual, "invalid_format")

			ok := decode(f.do("POST", "/api/contact/validate", `{"field":"budget","value":""}`))
			So(ok["valid"], ShouldEqual, true)
			So(f.do("POST", "/api/contact/validate", `{"field":"phone","value":"1"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When submitting an invalid form", func() {
			w := f.do("POST", "/api/contact", `{"name":"","email":"bad","message":"hi"}`)

			Convey("Then every failing field is reported and nothing is stored", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(len(decode(w)["errors"].([]any)), ShouldEqual, 3)
				So(f.submitter.calls, ShouldBeEmpty)
			})
		})

		Convey("When submitting a valid form", func() {
			w := f.do("POST", "/api/contact", validContact)

			Convey("Then it is stored with a null budget", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(decode(w)["id"], ShouldEqual, "contact-1")
				So(decode(w)["dismissMs"], ShouldEqual, 5000.0)
				So(len(f.submitter.calls), ShouldEqual, 1)
				So(f.submitter.calls[0].Budget, ShouldBeNil)
				So(f.submitter.calls[0].Name, ShouldEqual, "Ada Lovelace")
			})
		})

		Convey("When the same idempotency key is retried", func() {
			first := f.do("POST", "/api/contact", validContact, api.IdempotencyHeader, "k-1")
			second := f.do("POST", "/api/contact", validContact, api.IdempotencyHeader, "k-1")

			Convey("Then the second call replays the first id", func() {
				So(first.Code, ShouldEqual, http.StatusCreated)
				So(second.Code, ShouldEqual, http.StatusOK)
				So(decode(second)["duplicate"], ShouldEqual, true)
				So(decode(second)["id"], ShouldEqual, "contact-1")
				So(len(f.submitter.calls), ShouldEqual, 1)
			})
		})

		Convey("When the record store is unreachable", func() {
			f.submitter.err = fmt.Errorf("%w: dial tcp", repository.ErrUnavailable)
			w := f.do("POST", "/api/contact", validContact, api.IdempotencyHeader, "k-2")

			Convey("Then the visitor sees the generic failure and may retry", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decode(w)["message"], ShouldEqual, "failed to send, please try again")

				f.submitter.err = nil
				retry := f.do("POST", "/api/contact", validContact, api.IdempotencyHeader, "k-2")
				So(retry.Code, ShouldEqual, http.StatusCreated)
				So(len(f.submitter.calls), ShouldEqual, 2)
			})
		})

		Convey("When the banner lifetime is configured", func() {
			mux := http.NewServeMux()
			api.NewServer(api.Dependencies{
				Contacts:      f.submitter,
				StatusDismiss: 2500 * time.Millisecond,
			}).Register(context.Background(), mux)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("POST", "/api/contact", strings.NewReader(validContact)))

			Convey("Then the submit response reports it", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(decode(w)["dismissMs"], ShouldEqual, 2500.0)
			})
		})

		Convey("When the writer queue is full", func() {
			f.submitter.err = queue.ErrFull
			w := f.do("POST", "/api/contact", validContact)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(decode(w)["code"], ShouldEqual, "backpressure")
		})
	})
}

func TestContentHandlers(t *testing.T) {
	Convey("Given the content endpoints", t, func() {
		f := newFixture()

		Convey("When filtering the blog by category", func() {
			all := decode(f.do("GET", "/api/blog", ""))
			seo := decode(f.do("GET", "/api/blog?category=SEO", ""))

			So(len(all["posts"].([]any)), ShouldEqual, 2)
			So(all["categories"], ShouldResemble, []any{"All", "SEO", "Branding"})
			So(len(seo["posts"].([]any)), ShouldEqual, 1)
			So(len(decode(f.do("GET", "/api/blog?category=Video", ""))["posts"].([]any)), ShouldEqual, 0)
		})

		Convey("When reading projects", func() {
			So(f.do("GET", "/api/projects", "").Code, ShouldEqual, http.StatusOK)
			one := f.do("GET", "/api/projects/lumina-tech", "")
			So(one.Code, ShouldEqual, http.StatusOK)
			So(decode(one)["title"], ShouldEqual, "Lumina")
			So(f.do("GET", "/api/projects/missing", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When persistence is disabled", func() {
			f.records.err = repository.ErrUnavailable
			So(f.do("GET", "/api/blog", "").Code, ShouldEqual, http.StatusServiceUnavailable)
			So(f.do("GET", "/api/projects", "").Code, ShouldEqual, http.StatusServiceUnavailable)
			So(f.do("GET", "/api/projects/lumina-tech", "").Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestSceneAndSchemaHandlers(t *testing.T) {
	Convey("Given the scene and schema endpoints", t, func() {
		f := newFixture()

		Convey("When posting a desktop snapshot", func() {
			w := f.do("POST", "/api/scene/frame", `{"viewport":{"width":1280,"height":800},"pointer":{"x":600,"y":400},"scroll":{"y":0,"height":800}}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["pointer_enabled"], ShouldEqual, true)
			So(len(body["objects"].([]any)), ShouldEqual, 8)
		})

		Convey("When the viewport is empty", func() {
			So(f.do("POST", "/api/scene/frame", `{"viewport":{"width":0,"height":0}}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching schemas", func() {
			w := f.do("GET", "/api/schemas/contact", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/schema+json")
			So(w.Body.String(), ShouldContainSubstring, `"email"`)
			So(decode(w)["required"], ShouldResemble, []any{"name", "email", "message"})
			So(f.do("GET", "/api/schemas/scene", "").Code, ShouldEqual, http.StatusOK)
			So(f.do("GET", "/api/schemas/nope", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("op", api.ErrBadRequest, cause)
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "op: boom")
		So(api.NewKind("op", api.ErrNotFound).Error(), ShouldEqual, "op: not found")
		So(errors.Is(api.Wrap("op", cause), cause), ShouldBeTrue)
	})
}
