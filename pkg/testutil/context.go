package testutil

import (
	"net/http"

	"commune/internal/platform/middleware"
	id "commune/pkg/domain"
)

// WithUserID adds an authenticated user ID to the request context, simulating
// what the auth middleware does for authenticated requests. Invalid user IDs
// are silently ignored.
func WithUserID(req *http.Request, userID string) *http.Request {
	if _, err := id.ParseUserID(userID); err != nil {
		return req
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}
