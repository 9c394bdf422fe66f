package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/gallery/internal/service"
	"github.com/templui/gallery/internal/ui"
	"github.com/templui/gallery/internal/ui/pages"
)

type LegalHandler struct {
	legalService *service.LegalService
}

func NewLegalHandler(legalService *service.LegalService) *LegalHandler {
	err := legalService.LoadPages()
	if err != nil {
		slog.Warn("failed to load legal pages", "error", err)
	}

	return &LegalHandler{
		legalService: legalService,
	}
}

func (h *LegalHandler) ShowPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.legalService.Page(r.PathValue("page"))
	if err != nil {
		if !errors.Is(err, service.ErrPageNotFound) {
			slog.Error("failed to load legal page", "error", err)
		}
		w.WriteHeader(http.StatusNotFound)
		ui.Render(w, r, pages.NotFound())
		return
	}

	ui.Render(w, r, pages.Legal(page))
}
