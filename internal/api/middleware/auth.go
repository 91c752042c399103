package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rrens/auth-service/internal/api/response"
	"github.com/Rrens/auth-service/internal/apperror"
	"github.com/Rrens/auth-service/internal/security"
)

type contextKey string

const PayloadKey contextKey = "tokenPayload"

// AccessVerifier verifies access tokens
type AccessVerifier interface {
	VerifyAccessToken(token string) (security.Payload, error)
}

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	tokens AccessVerifier
	dev    bool
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens AccessVerifier, dev bool) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, dev: dev}
}

// Authenticate validates the bearer access token
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, r, apperror.Unauthorized("Unauthorized"), m.dev)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			response.Error(w, r, apperror.Unauthorized("Unauthorized"), m.dev)
			return
		}

		payload, err := m.tokens.VerifyAccessToken(parts[1])
		if err != nil {
			response.Error(w, r, err, m.dev)
			return
		}

		ctx := context.WithValue(r.Context(), PayloadKey, payload)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPayload gets the verified token payload from context
func GetPayload(ctx context.Context) (security.Payload, bool) {
	payload, ok := ctx.Value(PayloadKey).(security.Payload)
	return payload, ok
}
