package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/h2hmarketing/site/internal/adapters/mq/queue"
	"github.com/h2hmarketing/site/internal/domain/dedupe"
	"github.com/h2hmarketing/site/internal/domain/form"
	"github.com/h2hmarketing/site/internal/domain/model"
	"github.com/h2hmarketing/site/pkg/logger"
	"github.com/h2hmarketing/site/pkg/metrics"
)

// IdempotencyHeader names the header that makes contact submits retry-safe.
const IdempotencyHeader = "Idempotency-Key"

// maxIdempotencyKey bounds stored keys.
const maxIdempotencyKey = 128

// ContactSubmitter persists a contact submission.
type ContactSubmitter interface {
	SubmitContact(ctx context.Context, c model.ContactSubmission) (string, error)
}

type validateRequest struct {
	Field string `json:"field" jsonschema:"required,enum=name,enum=email,enum=budget,enum=message"`
	Value string `json:"value"`
}

type validateResponse struct {
	Field string           `json:"field"`
	Valid bool             `json:"valid"`
	Error *form.FieldError `json:"error,omitempty"`
}

type validationErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Errors  form.Errors `json:"errors"`
}

type contactResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate"`
	DismissMs int64  `json:"dismissMs"` // how long the success banner stays up
}

// ContactHandler validates and stores contact submissions.
type ContactHandler struct {
	submitter ContactSubmitter
	dedupe    dedupe.Deduper
	dismiss   time.Duration
	log       logger.Logger
}

// ContactOption configures a ContactHandler.
type ContactOption func(*ContactHandler)

// WithStatusDismiss sets the banner lifetime reported to clients.
func WithStatusDismiss(d time.Duration) ContactOption {
	return func(h *ContactHandler) {
		if d > 0 {
			h.dismiss = d
		}
	}
}

// NewContactHandler creates a new contact handler. A nil deduper disables
// idempotency keys.
func NewContactHandler(sub ContactSubmitter, d dedupe.Deduper, log logger.Logger, opts ...ContactOption) *ContactHandler {
	if log == nil {
		log = logger.Discard()
	}
	h := &ContactHandler{submitter: sub, dedupe: d, dismiss: form.DefaultDismiss, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleValidate handles POST /api/contact/validate, the blur check of a
// single field.
func (h *ContactHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.contact_validate"
	var req validateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if !slices.Contains(form.Fields, req.Field) {
		writeError(w, http.StatusBadRequest, "unknown_field", NewKind(op, ErrBadRequest))
		return
	}
	fe := form.ValidateField(req.Field, req.Value)
	if fe != nil {
		metrics.RecordValidationFailure(fe.Field, string(fe.Code))
	}
	writeJSON(w, http.StatusOK, validateResponse{Field: req.Field, Valid: fe == nil, Error: fe})
}

// HandleSubmit handles POST /api/contact.
func (h *ContactHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.contact_submit"
	var c form.Contact
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	c = c.Trimmed()
	if errs := form.Validate(c); errs != nil {
		for _, fe := range errs {
			metrics.RecordValidationFailure(fe.Field, string(fe.Code))
		}
		metrics.RecordContactSubmission("invalid")
		writeJSON(w, http.StatusUnprocessableEntity, validationErrorResponse{
			Code:    "validation_failed",
			Message: errs.Error(),
			Errors:  errs,
		})
		return
	}

	ctx := r.Context()
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if len(key) > maxIdempotencyKey {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	keyed := key != "" && h.dedupe != nil
	if keyed && h.dedupe.SeenAndRecord(ctx, key) {
		if id, ok := h.dedupe.Result(ctx, key); ok {
			metrics.RecordContactSubmission("duplicate")
			writeJSON(w, http.StatusOK, contactResponse{Status: "duplicate", ID: id, Duplicate: true, DismissMs: h.dismiss.Milliseconds()})
			return
		}
		writeError(w, http.StatusConflict, "in_progress", NewKind(op, ErrConflict))
		return
	}

	id, err := h.submit(ctx, c)
	if err != nil {
		if keyed {
			h.dedupe.Unrecord(ctx, key)
		}
		if errors.Is(err, queue.ErrFull) {
			metrics.RecordContactSubmission("backpressure")
			writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
			return
		}
		metrics.RecordContactSubmission("failure")
		h.log.Error(ctx, "contact submission failed", logger.Error(err))
		// The visitor sees one generic message whatever the backend said.
		writeError(w, http.StatusServiceUnavailable, "unavailable", form.ErrSubmitFailed)
		return
	}
	if keyed {
		h.dedupe.Complete(ctx, key, id)
	}
	metrics.RecordContactSubmission("success")
	writeJSON(w, http.StatusCreated, contactResponse{Status: "sent", ID: id, DismissMs: h.dismiss.Milliseconds()})
}

func (h *ContactHandler) submit(ctx context.Context, c form.Contact) (string, error) {
	if h.submitter == nil {
		return "", ErrUnavailable
	}
	return h.submitter.SubmitContact(ctx, c.Record())
}
