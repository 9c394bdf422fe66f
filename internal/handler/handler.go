package handler

import (
	"net/http"

	"github.com/templui/gallery/internal/auth"
	"github.com/templui/gallery/internal/ctxkeys"
	"github.com/templui/gallery/internal/model"
	"github.com/templui/gallery/internal/service"
)

// sessionToken returns the token of the session the auth middleware resolved
func sessionToken(r *http.Request) string {
	session := ctxkeys.Session(r.Context())
	if session == nil {
		return ""
	}
	return session.Token
}

// newGate builds the request's gate from the resolved session
func newGate(r *http.Request, authService *service.AuthService) (*auth.Gate, error) {
	return auth.NewGate(r.Context(), authService, sessionToken(r))
}

// withSession replaces the session in the request context, so pages
// rendered after a sign-in or sign-out show the new identity.
func withSession(r *http.Request, session *model.Session) *http.Request {
	var user *model.User
	if session != nil {
		user = session.User
	}

	ctx := ctxkeys.WithSession(r.Context(), session)
	ctx = ctxkeys.WithUser(ctx, user)
	return r.WithContext(ctx)
}
