package testutil

import (
	"net/http"

	id "fantasy/pkg/domain"
	"fantasy/pkg/requestcontext"
)

// WithUserID stands in for the bearer-token middleware on protected routes.
func WithUserID(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}
