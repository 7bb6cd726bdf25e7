// Package swagger serves the OpenAPI document and a ReDoc page for it.
package swagger

import (
	"context"
	_ "embed"
	"net/http"
)

// OpenAPI is the embedded API description.
//
//go:embed openapi.yaml
var OpenAPI []byte

const (
	docsPath = "/api-docs"
	specPath = "/openapi.yaml"
)

// Register attaches the API docs routes to mux.
//
//	GET /api-docs     -> ReDoc page
//	GET /openapi.yaml -> embedded OpenAPI document
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle(docsPath, readOnly("text/html; charset=utf-8", []byte(docsPage)))
	mux.Handle(specPath, readOnly("application/yaml; charset=utf-8", OpenAPI))
}

func readOnly(contentType string, body []byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", contentType)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(body)
	})
}

// ReDoc is loaded from its CDN so the binary does not carry the bundle.
const docsPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Tactile API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
    <script>Redoc.init('` + specPath + `', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
