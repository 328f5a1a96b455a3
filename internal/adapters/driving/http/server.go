package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/custodia-labs/clinref/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the driving ports served over HTTP
type Services struct {
	Auth       driving.AuthService
	Users      driving.UserService
	Guidelines driving.GuidelineService
	Drugs      driving.DrugService
	References driving.ReferenceService
	Navigation driving.NavigationService
	Assistant  driving.AssistantService
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	cfg        Config
	logger     *zap.Logger
	cors       *CORSMiddleware

	authService       driving.AuthService
	userService       driving.UserService
	guidelineService  driving.GuidelineService
	drugService       driving.DrugService
	referenceService  driving.ReferenceService
	navigationService driving.NavigationService
	assistantService  driving.AssistantService

	// Infrastructure
	db          Pinger // PostgreSQL health check (optional)
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host              string
	Port              int
	Version           string
	AllowedOrigins    []string
	MetricsEnabled    bool
	TypeaheadDebounce time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              8080,
		Version:           "dev",
		AllowedOrigins:    []string{"*"},
		MetricsEnabled:    true,
		TypeaheadDebounce: 300 * time.Millisecond,
	}
}

// NewServer creates a new HTTP server. db and redisClient may be nil.
func NewServer(cfg Config, svc Services, db, redisClient Pinger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TypeaheadDebounce <= 0 {
		cfg.TypeaheadDebounce = DefaultConfig().TypeaheadDebounce
	}

	s := &Server{
		router:            http.NewServeMux(),
		cfg:               cfg,
		logger:            logger,
		cors:              NewCORSMiddleware(cfg.AllowedOrigins),
		authService:       svc.Auth,
		userService:       svc.Users,
		guidelineService:  svc.Guidelines,
		drugService:       svc.Drugs,
		referenceService:  svc.References,
		navigationService: svc.Navigation,
		assistantService:  svc.Assistant,
		db:                db,
		redisClient:       redisClient,
	}

	s.setupRoutes()

	s.handler = NewRecoveryMiddleware(logger).Handler(
		NewLoggingMiddleware(logger).Handler(
			s.cors.Handler(s.router)))

	// No WriteTimeout: answer streams and websockets stay open as long as
	// the backend keeps talking.
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)
	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(authMiddleware.RequireAdmin(h))
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	if s.cfg.MetricsEnabled {
		s.router.Handle("GET /metrics", promhttp.Handler())
	}

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)
	s.router.HandleFunc("POST /api/v1/auth/register", s.handleRegister)

	// Auth endpoints (authenticated)
	s.router.Handle("POST /api/v1/auth/logout", authed(s.handleLogout))

	// Current user and onboarding
	s.router.Handle("GET /api/v1/me", authed(s.handleGetMe))
	s.router.Handle("PUT /api/v1/me/profile", authed(s.handleUpdateProfile))
	s.router.Handle("POST /api/v1/me/nda", authed(s.handleAcceptNDA))
	s.router.Handle("POST /api/v1/me/onboarding", authed(s.handleCompleteOnboarding))

	// Admin-only user management
	s.router.Handle("GET /api/v1/users", admin(s.handleListUsers))
	s.router.Handle("POST /api/v1/users", admin(s.handleCreateUser))
	s.router.Handle("DELETE /api/v1/users/{id}", admin(s.handleDeleteUser))

	// Guidelines
	s.router.Handle("POST /api/v1/guidelines/summarize", authed(s.handleSummarize))
	s.router.Handle("POST /api/v1/guidelines/followup", authed(s.handleFollowup))
	s.router.Handle("POST /api/v1/guidelines/search", authed(s.handleGuidelineSearch))
	s.router.Handle("GET /api/v1/guidelines/summaries/{id}", authed(s.handleGetSummary))

	// Drugs
	s.router.Handle("GET /api/v1/drugs", authed(s.handleDrugLibrary))
	s.router.Handle("GET /api/v1/drugs/{name}", authed(s.handleDrugInfo))
	s.router.Handle("POST /api/v1/drugs/search", authed(s.handleDrugSearch))

	// Reference panels
	s.router.Handle("POST /api/v1/panels", authed(s.handleOpenPanel))
	s.router.Handle("GET /api/v1/panels/{id}", authed(s.handleGetPanel))
	s.router.Handle("POST /api/v1/panels/{id}/click", authed(s.handlePanelClick))
	s.router.Handle("DELETE /api/v1/panels/{id}", authed(s.handleClosePanel))

	// Citation navigation decides on its own whether a session is needed
	s.router.Handle("POST /api/v1/citations/navigate",
		authMiddleware.OptionalAuthenticate(http.HandlerFunc(s.handleNavigate)))

	// Assistant and chat history
	s.router.Handle("POST /api/v1/assistant/ask", authed(s.handleAsk))
	s.router.Handle("GET /api/v1/conversations", authed(s.handleListConversations))
	s.router.Handle("GET /api/v1/conversations/{id}", authed(s.handleGetConversation))
	s.router.Handle("DELETE /api/v1/conversations/{id}", authed(s.handleDeleteConversation))
	s.router.Handle("POST /api/v1/conversations/{id}/threads/{threadID}/feedback", authed(s.handleFeedback))

	// Typeahead
	s.router.Handle("GET /api/v1/ws/search", authed(s.handleTypeahead))
}

// Start serves until ctx is canceled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
