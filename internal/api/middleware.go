package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/safar/sweet-shop/internal/auth"
	"github.com/safar/sweet-shop/internal/models"
)

type contextKey int

const claimsKey contextKey = iota

// claimsFrom returns the authenticated principal attached by authenticate.
func claimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// authenticate verifies the bearer token and attaches its claims to the
// request context. Absent, malformed or expired tokens short-circuit with 401.
func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.respondError(w, http.StatusUnauthorized, "Missing token")
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.respondError(w, http.StatusUnauthorized, "Invalid token format")
			return
		}

		claims, err := auth.ParseToken(parts[1], s.cfg.Auth.JWTSecret)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

// requireAdmin gates a handler on the ADMIN role. It must run after
// authenticate; the role is trusted from the signed token.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r.Context())
		if !ok || claims.Role != models.RoleAdmin {
			s.respondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// observe records request count, error count and duration, and logs the
// request. It is registered on the router with Use so it runs after route
// matching and can read the matched path template.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)

		route := "unknown"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		if s.metrics != nil {
			attrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.Int("http.status_code", rec.status),
			)

			ctx := r.Context()
			s.metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
			if rec.status >= 400 {
				s.metrics.HTTPRequestsErrors.Add(ctx, 1, attrs)
			}
			s.metrics.HTTPRequestDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
		}

		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", elapsed),
		)
	})
}
