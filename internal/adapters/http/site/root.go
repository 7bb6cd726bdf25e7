// Package site serves the embedded operator console.
package site

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

// Register attaches the console to mux at /. Paths claimed by more
// specific routes keep their handlers; anything else that is not a
// console asset is a 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler())
}

// RootHandler serves the console's static files.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a handler over the embedded console assets.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(http.FS(console()))}
}

// ServeHTTP serves GET and HEAD requests for embedded files.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	h.files.ServeHTTP(w, r)
}

func console() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		return static
	}
	return sub
}
