package inspect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/dndlist/pkg/dnd"
	"github.com/vango-dev/dndlist/pkg/dom"
)

// Config configures the inspector.
type Config struct {
	// Addr is the listen address (default: "localhost:7070").
	Addr string

	// AllowedOrigins lists websocket origins accepted besides the server's
	// own host. "*" accepts any origin.
	AllowedOrigins []string

	// Gatherer backs /metrics. Default: prometheus.DefaultGatherer. A nil
	// Gatherer disables the route.
	Gatherer prometheus.Gatherer

	// Logger is the server logger. Default: the logger given to the
	// coordinator.
	Logger *slog.Logger

	// ShutdownTimeout bounds graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration

	// RequestLog enables chi's request logger.
	RequestLog bool
}

// Option configures the inspector.
type Option func(*Config)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Addr = addr
	}
}

// WithAllowedOrigins sets the accepted websocket origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(c *Config) {
		c.AllowedOrigins = origins
	}
}

// WithGatherer sets the metrics source for /metrics. Passing nil turns
// /metrics off.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *Config) {
		c.Gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithRequestLog enables per-request logging.
func WithRequestLog(enabled bool) Option {
	return func(c *Config) {
		c.RequestLog = enabled
	}
}

// Server is the diagnostics HTTP server.
type Server struct {
	coord  *dnd.Coordinator
	doc    *dom.Document
	config Config
	logger *slog.Logger
	router chi.Router

	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*client]struct{}

	removeObserver func()
	httpServer     *http.Server
}

// New creates an inspector for coord. Drag frames from websocket clients
// are dispatched on elements of doc; doc may be nil, in which case those
// frames are rejected. The server observes coord until Close.
func New(coord *dnd.Coordinator, doc *dom.Document, opts ...Option) *Server {
	config := Config{
		Addr:            "localhost:7070",
		Gatherer:        prometheus.DefaultGatherer,
		ShutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&config)
	}
	logger := coord.ComponentLogger("inspect")
	if config.Logger != nil {
		logger = config.Logger.With("component", "inspect")
	}

	s := &Server{
		coord:   coord,
		doc:     doc,
		config:  config,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	s.removeObserver = coord.Store().Observe(s)
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	if s.config.RequestLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/state", s.handleState)
	r.Get("/lists", s.handleLists)
	r.Get("/elements", s.handleElements)
	if s.config.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/ws", s.handleWebSocket)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, []byte(s.coord.Store().JSON()))
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, []byte(s.coord.Lists().JSON()))
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	ids := []string{}
	if s.doc != nil {
		ids = s.doc.IDs()
	}
	data, err := json.Marshal(ids)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, data)
}

func writeJSON(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// checkOrigin accepts requests without an Origin header, same-host
// origins, and configured origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(s.config.AllowedOrigins, "*") || slices.Contains(s.config.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes websocket clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("inspector shutdown complete")
	return nil
}

// Close stops observing the coordinator and closes all websocket clients.
func (s *Server) Close() {
	s.removeObserver()

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.conn.Close()
		delete(s.clients, c)
	}
}
