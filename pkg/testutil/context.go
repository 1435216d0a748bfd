package testutil

import (
	"net/http"

	"linkdeck/internal/platform/middleware"
)

// WithOwner stamps an authenticated owner identity onto the request context.
// This simulates what the RequireOwner middleware would do for requests that
// carried a valid token.
func WithOwner(req *http.Request, profileID, tier string) *http.Request {
	ctx := middleware.WithOwner(req.Context(), profileID, tier)
	return req.WithContext(ctx)
}
