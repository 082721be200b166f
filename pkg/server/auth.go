package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gridscope/gridscope/pkg/log"
)

func withUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// User is the authenticated preference owner attached to the request context.
type User struct {
	ID    string
	Email string
	Admin bool
}

func (s *Server) getUser(r *http.Request) User {
	if user, ok := r.Context().Value(userContextKey).(User); ok {
		return user
	}
	// auth middleware always stores a user for /api routes
	panic("no user in context")
}

func (s *Server) isAdmin(user User) bool {
	for _, adminEmail := range s.adminEmails {
		if user.Email == adminEmail {
			return true
		}
	}
	return false
}

// authMiddleware resolves the preference owner for API requests. In
// single-user mode every request maps to the default user; otherwise a
// Google ID token is required, either as a bearer token or from the auth
// cookie set by the frontend.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("reqPath", r.URL.Path)))

		var user User
		if s.bypassAuth {
			user = User{ID: DefaultUserID, Admin: true}
		} else {
			rawToken := ""
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				if !strings.HasPrefix(authHeader, "Bearer ") {
					writeJSONError(w, "invalid auth header", http.StatusBadRequest)
					return
				}
				rawToken = strings.TrimPrefix(authHeader, "Bearer ")
			} else if cookie, err := r.Cookie(authTokenCookie); err == nil {
				rawToken = cookie.Value
			}
			if rawToken == "" {
				writeJSONError(w, "authentication required", http.StatusUnauthorized)
				return
			}

			idToken, err := s.verifier(ctx, rawToken)
			if err != nil {
				log.Ctx(ctx).WarnContext(ctx, "token validation failed", slog.Any("error", err))
				writeJSONError(w, "invalid token", http.StatusUnauthorized)
				return
			}
			var claims struct {
				Email string `json:"email"`
			}
			if err := idToken.Claims(&claims); err != nil {
				log.Ctx(ctx).WarnContext(ctx, "failed to parse token claims", slog.Any("error", err))
				writeJSONError(w, "invalid token", http.StatusUnauthorized)
				return
			}
			user = User{ID: idToken.Subject, Email: claims.Email}
			user.Admin = s.isAdmin(user)
		}

		ctx = withUser(ctx, user)
		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("userID", user.ID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestMiddleware tags every request with an id, logs it, and records
// request metrics.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		ctx := log.With(r.Context(), log.Ctx(r.Context()).With(slog.String("requestID", requestID)))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		r = r.WithContext(ctx)
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		// label with the matched mux pattern, not the raw URL, so arbitrary
		// paths cannot mint unbounded series
		route := r.Pattern
		if route == "" {
			route = "other"
		}
		s.metrics.requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
		log.Ctx(ctx).DebugContext(ctx, "request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", duration))
	})
}
