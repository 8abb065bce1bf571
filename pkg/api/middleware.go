package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/rangeops/rangecore/pkg/audit"
	"github.com/rangeops/rangecore/pkg/auth"
	"github.com/rangeops/rangecore/pkg/team"
)

// Context key for storing claims
type contextKey string

const claimsContextKey contextKey = "claims"

// claimsFrom returns the authenticated caller's claims, if any.
func claimsFrom(r *http.Request) (*auth.Claims, bool) {
	claims, ok := r.Context().Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

// callerRole resolves the caller's role from request claims; unauthenticated
// requests resolve to RoleNone, which the visibility engine denies outright.
func callerRole(r *http.Request) team.Role {
	claims, ok := claimsFrom(r)
	if !ok {
		return team.RoleNone
	}
	return claims.Role
}

// panicRecoveryMiddleware recovers from panics in HTTP handlers
func (s *Server) panicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()
				log.Printf("PANIC in HTTP handler [%s %s]: %v\n%s",
					r.Method, r.URL.Path, err, stack)

				http.Error(w,
					fmt.Sprintf("Internal server error: %v", err),
					http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusResponseWriter wraps http.ResponseWriter to capture status code
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// metricsMiddleware tracks HTTP request metrics
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		s.metricsRegistry.HTTPRequestsInFlight.Inc()
		defer s.metricsRegistry.HTTPRequestsInFlight.Dec()

		wrapper := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		s.metricsRegistry.RecordHTTPRequest(
			r.Method, r.URL.Path, strconv.Itoa(wrapper.statusCode), time.Since(start))
	})
}

// requireAuth validates the Bearer token and stores claims in the context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			s.respondError(w, http.StatusUnauthorized, "Missing authentication (Bearer token required)")
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := s.jwtManager.ValidateToken(r.Context(), token)
		if err != nil {
			log.Printf("Token validation failed: %v", err)
			s.metricsRegistry.AuthFailuresTotal.Inc()
			s.respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// Re-resolve the role against the live user record: a disabled
		// user or a stale role claim degrades to RoleNone, not an error.
		user, err := s.users.GetUserByID(claims.UserID)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "User not found")
			return
		}
		claims.Role = team.ResolveRole(team.Identity{
			PrincipalID: user.ID,
			Role:        string(claims.Role),
			Enabled:     user.Enabled,
		})

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// logDenied records an authorization denial in the audit log and metrics.
func (s *Server) logDenied(r *http.Request, resource audit.ResourceType, resourceID, reason string) {
	claims, _ := claimsFrom(r)
	userID, username, role := "", "", team.RoleNone
	if claims != nil {
		userID, username, role = claims.UserID, claims.Username, claims.Role
	}

	event := audit.NewDeniedEvent(userID, username, role, audit.ActionView, resource, resourceID, reason)
	event.IPAddress = getIPAddress(r)
	if err := s.auditLogger.Log(event); err != nil {
		log.Printf("Failed to log audit event: %v", err)
	}
	s.metricsRegistry.RecordAccessDenied(role, string(resource))
}

func getIPAddress(r *http.Request) string {
	// Try to get real IP from headers (for proxies)
	ip := r.Header.Get("X-Real-IP")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}
