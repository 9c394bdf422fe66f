package middleware

import "net/http"

// Chain wraps h so the middlewares run in the order given:
//
//	Chain(mux, RequestLogging, NonceMiddleware, Auth(authService))
//
// logs first, then sets the nonce, then resolves the session.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
