// ABOUTME: JSON API handlers for the graph data the browser front-end consumes.
// ABOUTME: Covers the function list, per-function graphs, graphviz renders, and build history.
package devserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cfglab/flowviz/catalog"
	"github.com/cfglab/flowviz/graph"
	"github.com/cfglab/flowviz/history"
)

// defaultBuildsLimit caps /api/builds responses when no limit is given.
const defaultBuildsLimit = 50

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("serve: encoding response: %v", err)
	}
}

// handleFunctions returns the sorted names of all functions with graph dumps.
func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	names, err := s.catalog.List()
	if err != nil {
		log.Printf("serve: listing functions: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// loadGraph reads the named function's graph and maps catalog errors onto
// HTTP status codes. It writes the error response itself and returns nil when
// the caller should stop.
func (s *Server) loadGraph(w http.ResponseWriter, name string) *graph.Graph {
	g, err := s.catalog.Graph(name)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidName):
			http.Error(w, "invalid function name", http.StatusBadRequest)
		case errors.Is(err, catalog.ErrNotFound):
			http.Error(w, "function not found", http.StatusNotFound)
		default:
			log.Printf("serve: loading graph %q: %v", name, err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return nil
	}
	return g
}

// handleFunctionGraph returns the raw mir.json graph for one function.
func (s *Server) handleFunctionGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	g := s.loadGraph(w, name)
	if g == nil {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := g.Encode(w); err != nil {
		log.Printf("serve: encoding graph %q: %v", name, err)
	}
}

// handleFunctionRender renders one function's graph through graphviz.
// ?format=dot|svg|png selects the output; ?focus=bbN fills one block.
func (s *Server) handleFunctionRender(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "dot"
	}
	switch format {
	case "dot", "svg", "png":
	default:
		http.Error(w, "unsupported format: want dot, svg, or png", http.StatusNotAcceptable)
		return
	}

	g := s.loadGraph(w, name)
	if g == nil {
		return
	}

	var dotText string
	if focus := r.URL.Query().Get("focus"); focus != "" {
		dotText = graph.ToDOTWithFocus(g, name, focus)
	} else {
		dotText = graph.ToDOT(g, name)
	}

	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(dotText))
		return
	}

	if !s.graphvizAvailable() {
		http.Error(w, "graphviz not installed: only format=dot is available", http.StatusServiceUnavailable)
		return
	}

	data, err := s.renders.Render(r.Context(), dotText, format)
	if err != nil {
		log.Printf("serve: rendering %q as %s: %v", name, format, err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	switch format {
	case "svg":
		w.Header().Set("Content-Type", "image/svg+xml")
	case "png":
		w.Header().Set("Content-Type", "image/png")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleBuilds returns recent build history, newest first. Without a history
// store the list is empty rather than an error: serve-only sessions have no
// build loop.
func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []history.Build{})
		return
	}

	limit := defaultBuildsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	builds, err := s.history.List(limit)
	if err != nil {
		log.Printf("serve: listing builds: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if builds == nil {
		builds = []history.Build{}
	}
	writeJSON(w, http.StatusOK, builds)
}
