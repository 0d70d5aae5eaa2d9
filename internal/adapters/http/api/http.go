// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/h2hmarketing/site/internal/domain/chat"
	"github.com/h2hmarketing/site/internal/domain/dedupe"
	"github.com/h2hmarketing/site/pkg/logger"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Each handler only sees the
// narrow interface it declares.
type Dependencies struct {
	Responder *chat.Responder
	Sessions  SessionStore
	Records   RecordReader
	Contacts  ContactSubmitter
	Deduper   dedupe.Deduper
	Scene     SceneRenderer
	Stats     StatsProvider
	Logger    logger.Logger

	// StatusDismiss is how long clients keep a submit outcome visible.
	StatusDismiss time.Duration
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	chatHandler    *ChatHandler
	contactHandler *ContactHandler
	contentHandler *ContentHandler
	sceneHandler   *SceneHandler
	schemaHandler  *SchemaHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps.Stats),
		chatHandler:    NewChatHandler(deps.Responder, deps.Sessions),
		contactHandler: NewContactHandler(deps.Contacts, deps.Deduper, log.Named("contact"), WithStatusDismiss(deps.StatusDismiss)),
		contentHandler: NewContentHandler(deps.Records, log.Named("content")),
		sceneHandler:   NewSceneHandler(deps.Scene),
		schemaHandler:  NewSchemaHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /api/chat/reply", MetricsMiddleware(s.chatHandler.HandleReply, "chat_reply"))
	mux.HandleFunc("POST /api/chat/sessions", MetricsMiddleware(s.chatHandler.HandleCreateSession, "chat_sessions"))
	mux.HandleFunc("GET /api/chat/sessions/{id}", MetricsMiddleware(s.chatHandler.HandleGetSession, "chat_session"))
	mux.HandleFunc("POST /api/chat/sessions/{id}/messages", MetricsMiddleware(s.chatHandler.HandlePostMessage, "chat_messages"))

	mux.HandleFunc("POST /api/contact/validate", MetricsMiddleware(s.contactHandler.HandleValidate, "contact_validate"))
	mux.HandleFunc("POST /api/contact", MetricsMiddleware(s.contactHandler.HandleSubmit, "contact"))

	mux.HandleFunc("GET /api/blog", MetricsMiddleware(s.contentHandler.HandleBlog, "blog"))
	mux.HandleFunc("GET /api/projects", MetricsMiddleware(s.contentHandler.HandleProjects, "projects"))
	mux.HandleFunc("GET /api/projects/{slug}", MetricsMiddleware(s.contentHandler.HandleProject, "project"))

	mux.HandleFunc("POST /api/scene/frame", MetricsMiddleware(s.sceneHandler.HandleFrame, "scene"))
	mux.HandleFunc("GET /api/schemas/{name}", MetricsMiddleware(s.schemaHandler.HandleSchema, "schemas"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads one JSON document from a bounded body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}
