package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/gallery/internal/ctxkeys"
	"github.com/templui/gallery/internal/service"
)

// Auth resolves the session cookie and puts the session and its user into
// the request context. Sessions close to expiry are refreshed and the new
// token is written back. Unusable cookies are cleared.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.SessionCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session, err := authService.Session(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, service.ErrInvalidSession) {
					slog.Error("failed to resolve session", "error", err)
				}
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}
			if session == nil {
				next.ServeHTTP(w, r)
				return
			}

			if authService.NeedsRefresh(session) {
				refreshed, err := authService.Refresh(r.Context(), session)
				if err != nil {
					slog.Warn("failed to refresh session", "error", err, "session_id", session.ID)
				} else {
					session = refreshed
					authService.SetSessionCookie(w, session)
				}
			}

			ctx := ctxkeys.WithSession(r.Context(), session)
			ctx = ctxkeys.WithUser(ctx, session.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth sends visitors without a session to the login form
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			redirect(w, r, "/auth")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireGuest keeps signed-in users away from pages meant for visitors
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) != nil {
			redirect(w, r, "/")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// redirect uses HX-Redirect for htmx requests so the whole page navigates
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
