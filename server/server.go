// Package server implements the TaskHub HTTP server: route registration,
// token authentication middleware, and request logging.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub/auth"
	"github.com/taskhub/taskhub/config"
	"github.com/taskhub/taskhub/server/api"
	"github.com/taskhub/taskhub/service"
	"github.com/taskhub/taskhub/store"
)

// Server is the TaskHub HTTP server.
type Server struct {
	cfg     config.Config
	mux     *http.ServeMux
	httpSrv *http.Server
	logger  *slog.Logger

	tokens   *auth.TokenIssuer
	authSvc  *service.AuthService
	handlers *api.Handlers

	startTime time.Time
	version   string
}

// New creates a Server wired to the given store and config.
func New(cfg config.Config, ver string, logger *slog.Logger, st *store.Store) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret)
	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		logger: logger,
		tokens: tokens,
		authSvc: service.NewAuthService(st, tokens, service.SystemCredentials{
			Username: cfg.SystemAuth.Username,
			Password: cfg.SystemAuth.Password,
		}),
		handlers: &api.Handlers{
			Tasks:     service.NewTaskService(st),
			Users:     service.NewUserService(st),
			Comments:  service.NewCommentService(st),
			Dashboard: service.NewDashboardService(st),
			Logger:    logger,
			Version:   ver,
		},
		startTime: time.Now(),
		version:   ver,
	}
	return s
}

// Start registers routes and begins listening.
func (s *Server) Start() error {
	s.registerRoutes()

	addr := s.cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.logMiddleware(s.mux),
		ReadHeaderTimeout: 15 * time.Second,
	}
	s.logger.Info("server listening", slog.String("addr", addr))
	return s.httpSrv.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	// Public routes (no auth required). POST /api/users stays anonymous so
	// the first admin can be provisioned.
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/token", s.handleSystemToken)
	s.mux.HandleFunc("POST /api/users", s.handlers.CreateUserHandler())
	s.mux.HandleFunc("GET /api/status", s.handlers.StatusHandler())

	// Protected API, wrapped in auth middleware. The specific public
	// patterns above take precedence over this subtree.
	apiMux := http.NewServeMux()
	s.handlers.RegisterRoutes(apiMux)
	apiMux.HandleFunc("GET /api/auth/me", s.handleMe)

	s.mux.Handle("/api/", s.authMiddleware(apiMux))
}

// logMiddleware logs one line per request with a generated request id.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			slog.String("id", uuid.NewString()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
