// ABOUTME: Development HTTP server for the graph visualization front-end behind a chi router.
// ABOUTME: Serves static files with caching disabled plus the graph data API and the SSE change feed.
package devserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/cfglab/flowviz/catalog"
	"github.com/cfglab/flowviz/history"
)

// renderCacheTTL bounds how long a graphviz render may be served without
// re-rendering. The dev loop also clears the cache after every rebuild.
const renderCacheTTL = 30 * time.Second

// Config holds the configuration for the dev server.
type Config struct {
	Host     string         // listen host (default 127.0.0.1)
	Port     int            // listen port (default 8080)
	Root     string         // static file root served at / (default ".")
	DataDir  string         // analyzer data directory with per-function dumps
	DocsFile string         // markdown file rendered at /docs (default <Root>/README.md)
	History  *history.Store // optional build history backing /api/builds
	Bus      *EventBus      // optional shared event bus; created when nil
}

// Server is the flowviz dev server. It serves the front-end's static files
// with caching disabled, exposes the graph data API, and streams build events
// over SSE so the page can live-reload.
type Server struct {
	cfg        Config
	router     chi.Router
	catalog    *catalog.Catalog
	bus        *EventBus
	history    *history.Store
	templates  *TemplateEngine
	instanceID string

	// Injection points for tests; default to the graphviz implementations.
	renders           *renderCache
	graphvizAvailable func() bool

	// heartbeat is the SSE keepalive interval. Tests shorten it.
	heartbeat time.Duration
}

// NewServer creates a dev server for the given configuration. The static root
// must exist; the data directory may appear later.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}

	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("static root %s: %w", cfg.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static root %s is not a directory", cfg.Root)
	}

	if cfg.DocsFile == "" {
		cfg.DocsFile = filepath.Join(cfg.Root, "README.md")
	}

	bus := cfg.Bus
	if bus == nil {
		bus = NewEventBus(DefaultHistorySize)
	}

	tmpl, err := NewTemplateEngine()
	if err != nil {
		return nil, fmt.Errorf("initializing templates: %w", err)
	}

	s := &Server{
		cfg:               cfg,
		catalog:           catalog.New(cfg.DataDir),
		bus:               bus,
		history:           cfg.History,
		templates:         tmpl,
		instanceID:        uuid.NewString(),
		renders:           newRenderCache(RenderDOTSource, renderCacheTTL),
		graphvizAvailable: GraphvizAvailable,
		heartbeat:         30 * time.Second,
	}

	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Addr returns the host:port listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// Bus returns the event bus the server streams from, so the build loop can
// publish into it.
func (s *Server) Bus() *EventBus {
	return s.bus
}

// InstanceID returns the per-process UUID reported by /health. Live-reload
// clients compare it across reconnects to detect server restarts.
func (s *Server) InstanceID() string {
	return s.instanceID
}

// InvalidateRenderCache drops cached graphviz output. The dev loop calls this
// after every build so re-analyzed graphs render fresh.
func (s *Server) InvalidateRenderCache() {
	s.renders.Clear()
}

// ListenAndServe runs the server until ctx is cancelled. WriteTimeout stays
// zero because /events holds its response open for the whole session; the
// remaining timeouts guard against stuck clients.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(noCache)

	r.Get("/health", s.handleHealth)
	r.Get("/events", s.handleEvents)
	r.Get("/docs", s.handleDocs)
	r.Get("/livereload.js", s.handleLivereload)

	r.Route("/api", func(r chi.Router) {
		r.Get("/functions", s.handleFunctions)
		r.Get("/functions/{name}/graph", s.handleFunctionGraph)
		r.Get("/functions/{name}/render", s.handleFunctionRender)
		r.Get("/builds", s.handleBuilds)
	})

	// Everything else is the front-end's own tree. http.Dir confines
	// lookups to the root.
	r.Handle("/*", http.FileServer(http.Dir(s.cfg.Root)))

	return r
}

// noCache disables client and proxy caching on every response. The whole
// point of a dev server is that a refresh shows the latest build.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns the server identity. The instance ID changes on every
// process start, which the live-reload client uses to detect restarts.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"instance": s.instanceID,
		"graphviz": s.graphvizAvailable(),
	})
}

// handleEvents streams the change feed as server-sent events: a replay of
// recent history, then live events, with periodic keepalive comments.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	replay, events, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	for _, evt := range replay {
		fmt.Fprint(w, evt.Format())
	}
	if canFlush {
		flusher.Flush()
	}

	keepalive := time.NewTicker(s.heartbeat)
	defer keepalive.Stop()

	for {
		select {
		case evt, ok := <-events:
			if !ok {
				// Bus closed; the dev session is over.
				return
			}
			fmt.Fprint(w, evt.Format())
			if canFlush {
				flusher.Flush()
			}
		case <-keepalive.C:
			fmt.Fprint(w, ": ping\n\n")
			if canFlush {
				flusher.Flush()
			}
		case <-r.Context().Done():
			// Client disconnected.
			return
		}
	}
}
