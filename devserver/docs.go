// ABOUTME: Serves the project docs page by rendering a markdown file to HTML.
// ABOUTME: The source file defaults to README.md under the served root.
package devserver

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// handleDocs reads the configured markdown file and renders it inside the
// layout. A missing file is a 404, not an error: projects without a README
// simply have no docs page.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	raw, err := os.ReadFile(s.cfg.DocsFile)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "no docs file found", http.StatusNotFound)
			return
		}
		log.Printf("serve: reading docs file %s: %v", s.cfg.DocsFile, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := PageData{
		Title:    docsTitle(s.cfg.DocsFile),
		Instance: s.instanceID,
		Markdown: string(raw),
	}
	if err := s.templates.Render(w, "docs.html", data); err != nil {
		log.Printf("serve: rendering docs: %v", err)
	}
}

// docsTitle derives a page title from the docs file name, e.g. "README".
func docsTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
