package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/christianmesinas/famplan/internal/models"
	"github.com/christianmesinas/famplan/internal/security"
	"github.com/christianmesinas/famplan/internal/service"
	"github.com/christianmesinas/famplan/pkg/logger"
)

// ContextKey is the type for request context keys
type ContextKey string

const (
	// UserContextKey holds the authenticated *models.User
	UserContextKey ContextKey = "user"

	// SessionCookieName is the login session cookie
	SessionCookieName = "session_id"
)

// Middleware wires the auth and calendar guards
type Middleware struct {
	authService     *service.AuthService
	calendarService *service.CalendarService
}

// NewMiddleware creates the middleware set
func NewMiddleware(authService *service.AuthService, calendarService *service.CalendarService) *Middleware {
	return &Middleware{
		authService:     authService,
		calendarService: calendarService,
	}
}

// RequireAuth resolves the session cookie to a user and stores it in
// the request context. Requests without a valid session get 401.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := m.authService.ValidateSession(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		m.authService.TouchLastSeen(user.ID)

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireCalendarAuth rejects requests from users without a stored
// calendar credential bundle. Must run inside RequireAuth.
func (m *Middleware) RequireCalendarAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		if user == nil {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		connected, err := m.calendarService.IsConnected(user.ID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		if !connected {
			respondError(w, http.StatusForbidden, "calendar not connected")
			return
		}
		next(w, r)
	}
}

// GetUserFromContext returns the authenticated user, or nil
func GetUserFromContext(r *http.Request) *models.User {
	user, _ := r.Context().Value(UserContextKey).(*models.User)
	return user
}

// RateLimit rejects requests over the limiter's budget with 429
func RateLimit(limiter *security.RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !limiter.Allow(ip) {
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs each request with method, path, status and duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}
