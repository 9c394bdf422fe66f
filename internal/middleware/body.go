package middleware

import (
	"context"
	"net/http"
)

type bodyLimitKey struct{}

type bodyLimit struct {
	limit    int64
	tooLarge http.Handler
}

// LimitBody caps request bodies at limit bytes. Oversized requests are
// answered by tooLarge once CSRFProtection has put a token in the context,
// so the handler can render a full page. A nil tooLarge answers with a
// plain 413.
func LimitBody(limit int64, tooLarge http.Handler) func(http.Handler) http.Handler {
	if tooLarge == nil {
		tooLarge = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		})
	}
	bl := &bodyLimit{limit: limit, tooLarge: tooLarge}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyLimitKey{}, bl)))
		})
	}
}

// announcedTooLarge reports a Content-Length over the installed limit
func announcedTooLarge(r *http.Request) bool {
	bl, ok := r.Context().Value(bodyLimitKey{}).(*bodyLimit)
	return ok && r.ContentLength > bl.limit
}

func bodyTooLarge(w http.ResponseWriter, r *http.Request) {
	bl, ok := r.Context().Value(bodyLimitKey{}).(*bodyLimit)
	if !ok {
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	bl.tooLarge.ServeHTTP(w, r)
}
