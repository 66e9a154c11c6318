// Package http serves the vidwatch pages, the JSON API and the WebSocket
// relay that connects watch pages to their player sessions.
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

	"github.com/fredcamaral/vidwatch/internal/adapters/secondary/logging"
	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
	"github.com/fredcamaral/vidwatch/internal/domain/services"
)

// Server implements the HTTPServer interface
type Server struct {
	server   *http.Server
	listener net.Listener
	connMgr  *ConnectionManager
	catalog  *services.Catalog
	sessions *services.SessionManager
	renderer ports.DescriptionRenderer
	pages    *pageRenderer
	limiter  *rateLimiter
	config   *entities.Config
	logger   ports.Logger
	mu       sync.RWMutex
	running  bool
}

// NewServer creates a new HTTP server.
// config must not be nil - use config.GetDefaultConfig() if needed
func NewServer(config *entities.Config, catalog *services.Catalog, sessions *services.SessionManager, renderer ports.DescriptionRenderer, logger ports.Logger) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid Config")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Server{
		connMgr:  NewConnectionManager(),
		catalog:  catalog,
		sessions: sessions,
		renderer: renderer,
		pages:    newPageRenderer(),
		limiter:  newRateLimiter(config.Server.GetRateLimit()),
		config:   config,
		logger:   logger,
	}
}

// Start starts the HTTP server. It returns once the listener is bound.
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.GetReadTimeout(),
		WriteTimeout: s.config.Server.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	s.running = true

	go func(srv *http.Server) {
		s.logger.Info("HTTP server listening on http://%s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error: %v", err)
		}
	}(s.server)

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	// Close all surface connections
	s.connMgr.CloseAll()

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

// Addr returns the bound address, empty before Start
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler returns the complete handler: routes, middleware and CORS
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.Server.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	})
	return c.Handler(s.setupRoutes())
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	// Surface relay
	router.HandleFunc("/ws/surface", s.handleSurfaceWebSocket).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Listings
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/videos/popular", s.handlePopular).Methods(http.MethodGet)
	api.HandleFunc("/videos/trending", s.handleTrending).Methods(http.MethodGet)
	api.HandleFunc("/videos/music", s.handleMusic).Methods(http.MethodGet)
	api.HandleFunc("/videos/{id}", s.handleVideo).Methods(http.MethodGet)
	api.HandleFunc("/videos/{id}/related", s.handleRelated).Methods(http.MethodGet)
	api.HandleFunc("/channels/{id}", s.handleChannel).Methods(http.MethodGet)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)

	// Player sessions
	api.HandleFunc("/player/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/player/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/player/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/player/sessions/{id}/gestures", s.handleGesture).Methods(http.MethodPost)
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("no API route for %s", r.URL.Path), http.StatusNotFound)
	})

	// Pages
	router.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	router.HandleFunc("/watch", s.handleWatch).Methods(http.MethodGet)
	router.HandleFunc("/search", s.handleSearchPage).Methods(http.MethodGet)
	router.HandleFunc("/trending", s.handleTrendingPage).Methods(http.MethodGet)
	router.HandleFunc("/explore", s.handleExplore).Methods(http.MethodGet)
	router.HandleFunc("/music", s.handleMusicPage).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	// Apply middleware in order: security -> rate limiting -> logging -> recovery
	var handler http.Handler = router
	handler = createSecurityHeadersMiddleware(handler, s.config.Player.GetEmbedOrigin())
	handler = createRateLimitMiddleware(handler, s.limiter)
	handler = createLoggingMiddleware(handler, s.logger)
	handler = createRecoveryMiddleware(handler, s.logger)

	return handler
}

// CloseSession drops every surface connected to a session
func (s *Server) CloseSession(sessionID string) {
	s.connMgr.CloseSession(sessionID)
}

var _ ports.HTTPServer = (*Server)(nil)
