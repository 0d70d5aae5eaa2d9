package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/h2hmarketing/site/internal/domain/chat"
	"github.com/h2hmarketing/site/pkg/metrics"
)

// SessionStore opens and finds chat sessions.
type SessionStore interface {
	Create() (*chat.Session, error)
	Get(id string) (*chat.Session, error)
}

type chatRequest struct {
	Message string `json:"message" jsonschema:"required,minLength=1,description=Visitor message"`
}

type sessionResponse struct {
	ID       string         `json:"id"`
	Typing   bool           `json:"typing"`
	Messages []chat.Message `json:"messages"`
}

type messageAck struct {
	Status  string       `json:"status"`
	Message chat.Message `json:"message"`
}

// ChatHandler serves the rule-based assistant.
type ChatHandler struct {
	responder *chat.Responder
	sessions  SessionStore
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(r *chat.Responder, sessions SessionStore) *ChatHandler {
	if r == nil {
		r = chat.NewResponder(chat.DefaultBrand)
	}
	return &ChatHandler{responder: r, sessions: sessions}
}

// HandleReply handles POST /api/chat/reply. It answers immediately
// without a session or typing delay.
func (h *ChatHandler) HandleReply(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat_reply"
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		metrics.RecordChatRejected("empty")
		writeError(w, http.StatusBadRequest, "empty_message", WrapKind(op, ErrBadRequest, chat.ErrEmptyMessage))
		return
	}
	reply := h.responder.Respond(req.Message)
	metrics.RecordChatReply(string(reply.Intent))
	writeJSON(w, http.StatusOK, reply)
}

// HandleCreateSession handles POST /api/chat/sessions.
func (h *ChatHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat_create_session"
	if h.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
		return
	}
	s, err := h.sessions.Create()
	if err != nil {
		if errors.Is(err, chat.ErrTooManySessions) {
			writeError(w, http.StatusTooManyRequests, "too_many_sessions", WrapKind(op, ErrBackpressure, err))
			return
		}
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusCreated, view(s))
}

// HandleGetSession handles GET /api/chat/sessions/{id}.
func (h *ChatHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r, "api.chat_get_session")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view(s))
}

// HandlePostMessage handles POST /api/chat/sessions/{id}/messages. The
// reply is appended to the transcript after the typing delay.
func (h *ChatHandler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat_post_message"
	s, ok := h.lookup(w, r, op)
	if !ok {
		return
	}
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := s.Submit(req.Message)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, messageAck{Status: "accepted", Message: m})
	case errors.Is(err, chat.ErrEmptyMessage):
		metrics.RecordChatRejected("empty")
		writeError(w, http.StatusBadRequest, "empty_message", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, chat.ErrBusy):
		metrics.RecordChatRejected("busy")
		writeError(w, http.StatusConflict, "reply_pending", WrapKind(op, ErrConflict, err))
	case errors.Is(err, chat.ErrClosed):
		writeError(w, http.StatusGone, "session_closed", WrapKind(op, ErrNotFound, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

func (h *ChatHandler) lookup(w http.ResponseWriter, r *http.Request, op string) (*chat.Session, bool) {
	if h.sessions == nil {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return nil, false
	}
	s, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return nil, false
	}
	return s, true
}

func view(s *chat.Session) sessionResponse {
	msgs := s.Messages()
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return sessionResponse{ID: s.ID(), Typing: s.Typing(), Messages: msgs}
}
