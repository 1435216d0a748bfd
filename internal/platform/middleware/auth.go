package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// JWTValidator defines the interface for validating JWT access tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	ProfileID string
	Tier      string
}

type contextKeyProfileID struct{}
type contextKeyTier struct{}

// Exported for handler tests that bypass the middleware chain.
var (
	ContextKeyProfileID = contextKeyProfileID{}
	ContextKeyTier      = contextKeyTier{}
)

// GetProfileID retrieves the authenticated profile ID from the context.
func GetProfileID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyProfileID).(string); ok {
		return id
	}
	return ""
}

// GetTier retrieves the authenticated subscription tier from the context.
func GetTier(ctx context.Context) string {
	if tier, ok := ctx.Value(ContextKeyTier).(string); ok {
		return tier
	}
	return ""
}

// WithOwner injects profile ID and tier into a context. Useful for handler
// tests that don't run the full middleware chain.
func WithOwner(ctx context.Context, profileID, tier string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyProfileID, profileID)
	return context.WithValue(ctx, ContextKeyTier, tier)
}

// RequireOwner validates the bearer token and stores the owning profile ID
// and subscription tier in the request context. Analytics read endpoints
// are gated on this; the redirect hot path never is.
func RequireOwner(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w)
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				writeUnauthorized(w)
				return
			}
			ctx := WithOwner(r.Context(), claims.ProfileID, claims.Tier)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
