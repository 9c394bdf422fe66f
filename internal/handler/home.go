package handler

import (
	"net/http"

	"github.com/templui/gallery/internal/ui"
	"github.com/templui/gallery/internal/ui/pages"
)

func NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	ui.Render(w, r, pages.NotFound())
}
