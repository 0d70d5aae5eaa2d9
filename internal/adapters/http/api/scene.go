package api

import (
	"net/http"

	"github.com/h2hmarketing/site/internal/scene"
)

// SceneRenderer computes one motion frame.
type SceneRenderer interface {
	Render(req scene.Request) (scene.Response, error)
}

// SceneHandler serves POST /api/scene/frame.
type SceneHandler struct {
	renderer SceneRenderer
}

// NewSceneHandler creates a new scene handler.
func NewSceneHandler(r SceneRenderer) *SceneHandler {
	return &SceneHandler{renderer: r}
}

// HandleFrame renders the posted snapshot.
func (h *SceneHandler) HandleFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.scene_frame"
	if h.renderer == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
		return
	}
	var req scene.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	resp, err := h.renderer.Render(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_scene", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
