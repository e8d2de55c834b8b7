// ABOUTME: Embeds the livereload client script served at /livereload.js.
// ABOUTME: Embedding keeps the binary self-contained with no runtime asset paths.
package devserver

import (
	_ "embed"
	"net/http"
)

//go:embed static/livereload.js
var livereloadJS []byte

// handleLivereload serves the embedded reload client. Pages under the served
// root opt in with <script src="/livereload.js"></script>.
func (s *Server) handleLivereload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(livereloadJS)
}
