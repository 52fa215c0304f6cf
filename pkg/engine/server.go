package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getmockd/mockdir/pkg/accesslog"
	"github.com/getmockd/mockdir/pkg/config"
	"github.com/getmockd/mockdir/pkg/logging"
	"github.com/getmockd/mockdir/pkg/lookup"
	"github.com/getmockd/mockdir/pkg/script"
)

// ErrAlreadyRunning is returned by Start on a running server.
var ErrAlreadyRunning = errors.New("server is already running")

// readHeaderTimeout bounds slow clients; handlers themselves have no timeout.
const readHeaderTimeout = 10 * time.Second

// Server is the mock server.
type Server struct {
	cfg         *config.ServerConfig
	root        *config.Root
	log         *slog.Logger // For operational logging (developer-facing)
	accessOpts  []accesslog.Option
	access      *accesslog.Logger // For the console request log (user-facing)
	lookup      *lookup.Engine
	invoker     *script.Invoker
	handler     *Handler
	httpHandler http.Handler
	httpServer  *http.Server
	listener    net.Listener
	mu          sync.RWMutex
	running     bool
	startTime   time.Time
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger for the server.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAccessLog configures the console request logger.
func WithAccessLog(opts ...accesslog.Option) ServerOption {
	return func(s *Server) {
		s.accessOpts = append(s.accessOpts, opts...)
	}
}

// NewServer creates a Server for cfg serving files from root.
func NewServer(cfg *config.ServerConfig, root *config.Root, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg:  cfg,
		root: root,
		log:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.lookup = lookup.New(root.FS, lookup.WithLogger(s.log.With("component", "lookup")))
	s.invoker = script.New(root.FS, script.WithLogger(s.log.With("component", "script")))

	accessOpts := append([]accesslog.Option{accesslog.WithExtensions(s.lookup.Extensions()...)}, s.accessOpts...)
	s.access = accesslog.New(root.Dir, accessOpts...)

	s.handler = NewHandler(s.lookup, s.invoker)
	s.handler.SetAccessLog(s.access)
	s.handler.SetOperationalLogger(s.log.With("component", "handler"))
	s.httpHandler = Wrap(s.handler, s.log)

	return s
}

// Start binds the listener and serves in the background. Bind failures are
// returned; errors after that are logged.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.httpHandler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.With("component", "http").Handler(), slog.LevelWarn),
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	s.access.Started(s.cfg.Public, s.port())
	s.log.Info("mock server started", "addr", ln.Addr().String(), "root", s.root.Dir, "mode", s.cfg.Mode())
	return nil
}

// Stop gracefully shuts down the server, waiting for in-flight requests
// until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	s.log.Info("mock server stopped", "uptime", time.Since(s.startTime).Round(time.Millisecond))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns the server uptime in seconds.
func (s *Server) Uptime() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return int(time.Since(s.startTime).Seconds())
}

// Handler returns the full middleware chain, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.httpHandler
}

// port returns the bound port. Callers hold s.mu.
func (s *Server) port() int {
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return s.cfg.Port
}
