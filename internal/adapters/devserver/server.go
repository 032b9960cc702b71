// Package devserver serves the build output over HTTP and pushes reload
// messages to connected browsers over a websocket.
package devserver

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	socketPath = "/__glaze/ws"
	clientPath = "/__glaze/client.js"

	readHeaderTimeout = 10 * time.Second
)

//go:embed client.js
var clientScript []byte

var _ ports.DevServer = (*Server)(nil)

// Message is the JSON payload pushed to browsers.
type Message struct {
	Type  string   `json:"type"`
	Paths []string `json:"paths,omitempty"`
}

// Server implements ports.DevServer.
type Server struct {
	logger ports.Logger

	mu      sync.Mutex
	hub     *hub
	srv     *http.Server
	ln      net.Listener
	stopHub context.CancelFunc
}

// NewServer creates a Server. It does not listen until Init.
func NewServer(logger ports.Logger) *Server {
	return &Server{logger: logger}
}

// Init starts serving dir on addr (host:port). The port may be 0.
func (s *Server) Init(_ context.Context, dir, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return zerr.With(zerr.Wrap(domain.ErrDevServerStartFailed, "already running"), "addr", s.ln.Addr().String())
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrDevServerStartFailed, err.Error()), "addr", addr)
	}

	h := newHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	go h.run(hubCtx)

	mux := http.NewServeMux()
	mux.HandleFunc(socketPath, s.handleWebSocket)
	mux.HandleFunc(clientPath, handleClient)
	mux.Handle("/", serveFiles(dir))

	s.hub = h
	s.ln = ln
	s.stopHub = stopHub
	s.srv = &http.Server{
		Handler:           noCache(mux),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	srv := s.srv
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(zerr.Wrap(err, "dev server stopped"))
		}
	}()

	return nil
}

// Addr returns the address the server listens on, or "" before Init.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Clients returns the number of connected browsers.
func (s *Server) Clients() int {
	s.mu.Lock()
	h := s.hub
	s.mu.Unlock()

	if h == nil {
		return 0
	}
	return int(h.count.Load())
}

// NotifyFullReload tells connected browsers to reload the page.
func (s *Server) NotifyFullReload() {
	s.broadcast(Message{Type: "reload"})
}

// NotifyPartialUpdate tells connected browsers which served paths changed.
func (s *Server) NotifyPartialUpdate(paths []string) {
	if len(paths) == 0 {
		return
	}
	s.broadcast(Message{Type: "update", Paths: paths})
}

func (s *Server) broadcast(msg Message) {
	s.mu.Lock()
	h := s.hub
	s.mu.Unlock()

	if h == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(zerr.Wrap(err, "failed to encode reload message"))
		return
	}
	h.send(data)
}

// Shutdown disconnects every browser and stops the HTTP server. It is a no-op
// when the server is not running.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, h, stopHub := s.srv, s.hub, s.stopHub
	s.srv, s.stopHub = nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	stopHub()
	<-h.done

	if err := srv.Shutdown(ctx); err != nil {
		return zerr.Wrap(err, "failed to shut down dev server")
	}
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	h := s.hub
	s.mu.Unlock()

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if h == nil || !h.add(c) {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.remove(c)

	ctx := conn.CloseRead(r.Context())
	c.writePump(ctx)
}

func handleClient(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(clientScript)
}

// serveFiles serves dir, injecting the live-reload client into HTML pages.
func serveFiles(dir string) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if strings.HasSuffix(name, "/") {
			name += "index.html"
		}
		if path.Ext(name) != ".html" {
			files.ServeHTTP(w, r)
			return
		}

		f, err := root.Open(name)
		if err != nil {
			files.ServeHTTP(w, r)
			return
		}
		defer f.Close()

		if info, err := f.Stat(); err != nil || info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}

		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "failed to read file", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(InjectClient(data))
	})
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
