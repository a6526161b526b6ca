package http

import (
	"net/http"
	"regexp"

	applog "vibebudget/internal/log"
)

// UserIDHeader carries the caller's identity. The API trusts the deployment
// in front of it (reverse proxy, gateway) to have authenticated the user and
// set this header; there is no session handling here.
const UserIDHeader = "X-User-ID"

var userIDRe = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,64}$`)

// userHandler is a handler that already knows who is calling.
type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// withUser rejects requests without a valid X-User-ID header. Every /api
// route goes through here, so no handler can forget the scoping.
func (s *Server) withUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			UnauthorizedError("missing " + UserIDHeader + " header").Write(w)
			return
		}
		if !userIDRe.MatchString(userID) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Rejected malformed user id header",
				applog.FieldPath, r.URL.Path)
			UnauthorizedError("invalid " + UserIDHeader + " header").Write(w)
			return
		}
		next(w, r, userID)
	}
}
