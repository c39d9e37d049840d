package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"lessonplanner-ai/internal/auth"
	"lessonplanner-ai/internal/contextutil"
	"lessonplanner-ai/internal/handlers"
	"lessonplanner-ai/internal/storage"
)

const healthPath = "/api/health"

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// RoleLookup returns a user's role.
type RoleLookup interface {
	GetRole(ctx context.Context, userID int64) (storage.Role, error)
}

// LoggerMiddleware adds a structured logger to the request context.
func LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default().With(
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		if id := middleware.GetReqID(r.Context()); id != "" {
			logger = logger.With("request_id", id)
		}
		ctx := contextutil.WithLogger(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// responseWriter records the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request. Successful health checks are not
// logged.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		if r.URL.Path == healthPath && rw.statusCode == http.StatusOK {
			return
		}
		ctx := r.Context()
		contextutil.LoggerFromContext(ctx).InfoContext(ctx, "request completed",
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// CORS adds CORS headers to allow cross-origin requests.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Location")
		w.Header().Set("Access-Control-Max-Age", "3600")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Authenticate verifies the bearer token, looks up the caller's role and
// stores the caller in the request context. A missing or invalid token is
// 401; a user without a role is 403.
func Authenticate(verifier TokenVerifier, roles RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := contextutil.LoggerFromContext(ctx)

			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			identity, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "rejected bearer token", "error", err)
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			role, err := roles.GetRole(ctx, identity.UserID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					logger.WarnContext(ctx, "user has no role", "user_id", identity.UserID)
					writeError(w, http.StatusForbidden, "Forbidden")
					return
				}
				logger.ErrorContext(ctx, "failed to look up role", "user_id", identity.UserID, "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx = contextutil.WithUser(ctx, contextutil.User{
				ID:       identity.UserID,
				Username: identity.Username,
				Role:     string(role),
			})
			ctx = contextutil.WithLogger(ctx, logger.With("user_id", identity.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only callers holding one of roles. It must run after
// Authenticate.
func RequireRole(roles ...storage.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := contextutil.UserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !slices.Contains(roles, storage.Role(user.Role)) {
				contextutil.LoggerFromContext(r.Context()).WarnContext(r.Context(), "role not permitted", "role", user.Role)
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(handlers.ErrorResponse{Error: message})
}
