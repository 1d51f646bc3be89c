package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskhub/taskhub/policy"
	"github.com/taskhub/taskhub/service"
)

// credentialsRequest is the body accepted by the login and system token
// endpoints.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// registerRequest is the body accepted by POST /api/auth/register.
type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// handleLogin validates credentials and issues a token with the user's role.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.authSvc.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSONError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.logger.Error("login", slog.Any("err", err))
		writeJSONError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleRegister creates an account with the default role and issues a token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.authSvc.Register(req.Username, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			writeJSONError(w, http.StatusConflict, "username already exists")
		case errors.Is(err, service.ErrInvalidArgument):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("register", slog.Any("err", err))
			writeJSONError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleSystemToken grants an Admin token with subject id 0 against the
// static system credentials.
func (s *Server) handleSystemToken(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.authSvc.SystemToken(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSONError(w, http.StatusUnauthorized, "invalid system credentials")
			return
		}
		s.logger.Error("system token", slog.Any("err", err))
		writeJSONError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleMe returns the currently authenticated principal.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := policy.PrincipalFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "no principal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userId": p.UserID, "role": p.Role})
}

// authMiddleware validates the Bearer token and passes the asserted
// principal to wrapped handlers via the request context. Domain services
// never re-validate tokens; this is the only place identity is established.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		principal, err := s.tokens.Verify(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := policy.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
