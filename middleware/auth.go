package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openbill/openbill/security"
)

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	usernameKey contextKey = "username"
	phoneKey    contextKey = "phone_number"
)

// UsernameFromContext returns the authenticated username, or "" outside an
// authenticated request.
func UsernameFromContext(ctx context.Context) string {
	if username, ok := ctx.Value(usernameKey).(string); ok {
		return username
	}
	return ""
}

func PhoneFromContext(ctx context.Context) string {
	if phone, ok := ctx.Value(phoneKey).(string); ok {
		return phone
	}
	return ""
}

type AuthMiddleware struct {
	jwtManager  *security.JWTManager
	rateLimiter *security.RateLimiter
	rateLimit   security.RateLimitConfig
	publicPaths map[string]bool
}

func CreateAuthMiddleware(jwtManager *security.JWTManager, rateLimiter *security.RateLimiter, rateLimit security.RateLimitConfig) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:  jwtManager,
		rateLimiter: rateLimiter,
		rateLimit:   rateLimit,
		publicPaths: map[string]bool{
			"/health":         true,
			"/users/login":    true,
			"/users/register": true,
		},
	}
}

func (am *AuthMiddleware) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if am.publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			am.writeErrorResponse(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			am.writeErrorResponse(w, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := am.jwtManager.ValidateToken(token)
		if err != nil {
			am.writeErrorResponse(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, usernameKey, claims.Username)
		ctx = context.WithValue(ctx, phoneKey, claims.PhoneNumber)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimitMiddleware throttles per authenticated user, falling back to the
// remote address on public routes.
func (am *AuthMiddleware) RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := UsernameFromContext(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}

		if !am.rateLimiter.Allow(key, am.rateLimit) {
			am.writeErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (am *AuthMiddleware) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
