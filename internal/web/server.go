// Package web provides a read-only HTTP status page for the poolmon daemon,
// rendered from a point-in-time snapshot of the store.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/kowhai/poolmon/internal/display"
	"github.com/kowhai/poolmon/internal/store"
)

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	registry   *display.Registry
	start      time.Time
}

// New creates a Server that reads state from the given store.
func New(addr string, ds *store.Store) *Server {
	// registry failure means a broken page table, which the daemon has
	// already validated at startup; the snapshot tolerates nil
	registry, _ := display.NewRegistry()
	s := &Server{store: ds, registry: registry, start: time.Now()}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.snapshot())
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatJSON(s.snapshot()))
}
