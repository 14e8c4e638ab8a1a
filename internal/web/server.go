// Package web serves a virtual copy of the watch screen over HTTP.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/sweeney/watchface/internal/display"
)

// Server serves the screen page over HTTP.
type Server struct {
	httpServer *http.Server
	screen     *display.Screen
	scriptPath string
}

// Option configures a Server.
type Option func(*Server)

// WithMQTTScript serves the MQTT websocket client library from a local file
// at /mqtt.min.js, so the live page works without internet access.
func WithMQTTScript(path string) Option {
	return func(s *Server) {
		s.scriptPath = path
	}
}

// New creates a Server that reads state from the given screen.
func New(addr string, screen *display.Screen, opts ...Option) *Server {
	s := &Server{screen: screen}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/mqtt.min.js", s.handleScript)

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
	st := s.screen.State()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, st)
}

// handleJSON serves the current frame. Pollers must never see a cached
// frame: the time slot changes every minute.
func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	st := s.screen.State()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(display.FormatJSON(st))
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	if s.scriptPath == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	http.ServeFile(w, r, s.scriptPath)
}
