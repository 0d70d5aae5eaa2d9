// Package site serves the single-page application shell and its assets.
package site

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("site serve failed")
)

// Routes are the client-side pages answered with the shell.
var Routes = []string{
	"/{$}",
	"/about",
	"/services",
	"/work",
	"/work/{slug}",
	"/blog",
	"/contact",
	"/privacy",
	"/terms",
}

// Register attaches the shell routes and /assets/ to mux. Any other path
// falls through to the mux's 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	root := NewRootHandler()
	for _, route := range Routes {
		mux.HandleFunc("GET "+route, root.HandleRoot)
	}
	mux.Handle("GET /assets/", http.FileServer(FS()))
}

// RootHandler serves index.html for every client route.
type RootHandler struct {
	fs http.FileSystem
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{fs: FS()}
}

// HandleRoot writes the shell.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	f, err := h.fs.Open("index.html")
	if err != nil {
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = io.Copy(w, f)
}
