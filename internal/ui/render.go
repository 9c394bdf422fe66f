package ui

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// Render writes c to w. The page is rendered in full first, so a failure
// never leaves half a page behind.
func Render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	var buf bytes.Buffer
	err := c.Render(r.Context(), &buf)
	if err != nil {
		slog.Error("render failed", "error", err, "path", r.URL.Path)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	_, err = buf.WriteTo(w)
	if err != nil {
		slog.Debug("write failed", "error", err, "path", r.URL.Path)
	}
}
