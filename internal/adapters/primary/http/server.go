package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fredcamaral/patterndeck/internal/adapters/secondary/parser"
	"github.com/fredcamaral/patterndeck/internal/domain/entities"
	"github.com/fredcamaral/patterndeck/internal/domain/ports"
	"github.com/fredcamaral/patterndeck/internal/logging"
	"github.com/fredcamaral/patterndeck/internal/metrics"
)

// Server hosts the deck: it runs the entrypoint once per page load and serves
// the result, plus a small JSON API and the navigation sync socket.
type Server struct {
	server    *http.Server
	listener  net.Listener
	connMgr   *ConnectionManager
	presenter ports.Presenter
	renderer  ports.PageRenderer
	parser    ports.SectionParser
	config    *entities.Config
	logger    *logging.Logger
	metrics   *metrics.ServerMetrics
	version   string

	// baseCtx lives from construction until Stop and owns background goroutines
	baseCtx    context.Context
	baseCancel context.CancelFunc

	handlerOnce sync.Once
	handler     http.Handler

	position   navigationState
	positionMu sync.RWMutex

	mu      sync.RWMutex
	running bool
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics enables request metrics and the /metrics endpoint
func WithMetrics(m *metrics.ServerMetrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithParser overrides the section parser used by /api/slides
func WithParser(p ports.SectionParser) Option {
	return func(s *Server) {
		if p != nil {
			s.parser = p
		}
	}
}

// WithVersion sets the version reported by /api/config and /healthz
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a new HTTP server
// config must not be nil - use config.GetDefaultConfig() if needed
func NewServer(presenter ports.Presenter, renderer ports.PageRenderer, config *entities.Config, opts ...Option) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid Config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		presenter:  presenter,
		renderer:   renderer,
		parser:     parser.NewSectionParser(),
		connMgr:    NewConnectionManager(),
		config:     config,
		logger:     logging.Discard(),
		version:    "dev",
		baseCtx:    ctx,
		baseCancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the fully wrapped HTTP handler. The first call starts the
// connection manager, so the handler can be served without Start.
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		go s.connMgr.Run(s.baseCtx)
		s.handler = s.buildHandler()
	})
	return s.handler
}

// Start binds the configured address and serves in the background
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}
	if err := s.baseCtx.Err(); err != nil {
		return errors.New("server has been stopped")
	}

	handler := s.Handler()

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.Server.Address())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Server.Address(), err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           handler,
		ReadTimeout:       s.config.Server.GetReadTimeout(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.Server.GetWriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}
	s.running = true

	go func() {
		s.logger.Info("HTTP server listening on %s", listener.Addr())
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server and closes sync connections
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// background goroutines stop even when Start was never called
	s.baseCancel()
	s.connMgr.CloseAll()

	if !s.running {
		return errors.New("server not running")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.GetShutdownTimeout())
	defer cancel()

	s.running = false
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// URL returns the browsable address of the bound listener, or the configured one before Start
func (s *Server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return s.config.Server.URL()
}

// buildHandler configures routes and wraps them in middleware
func (s *Server) buildHandler() http.Handler {
	router := mux.NewRouter()
	if s.metrics != nil {
		router.Use(s.metrics.Middleware)
	}

	router.HandleFunc("/", s.handlePresentation).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/api/slides", s.handleSlides).Methods(http.MethodGet)
	router.HandleFunc("/api/config", s.handleConfig).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("no route for %s", r.URL.Path), http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("method %s not allowed on %s", r.Method, r.URL.Path), http.StatusMethodNotAllowed)
	})

	perSecond, burst := s.config.Server.GetRate()
	limiter := NewIPLimiter(s.baseCtx,
		WithRate(perSecond, burst),
		WithOnFirstDenied(func(ip string) {
			s.logger.Warn("Rate limit exceeded for %s", ip)
		}),
		WithOnDenied(func(string) {
			if s.metrics != nil {
				s.metrics.IncRateLimitDenied()
			}
		}),
	)

	// Apply middleware in order: security -> rate limiting -> client IP -> logging -> recovery
	var handler http.Handler = router
	handler = createSecurityHeadersMiddleware(handler, s.config.Presentation.GetRevealURL())
	handler = limiter.Middleware(handler)
	handler = ClientIPWithOptions(ClientIPOptions{TrustedHops: s.config.Server.TrustedHops})(handler)
	handler = createLoggingMiddleware(handler, s.logger)
	handler = createRecoveryMiddleware(handler, s.logger, s.metrics)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.Server.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	return c.Handler(handler)
}

// Ensure Server implements ports.HTTPServer
var _ ports.HTTPServer = (*Server)(nil)
