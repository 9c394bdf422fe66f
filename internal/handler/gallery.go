package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/templui/gallery/internal/auth"
	"github.com/templui/gallery/internal/config"
	"github.com/templui/gallery/internal/gallery"
	"github.com/templui/gallery/internal/repository"
	"github.com/templui/gallery/internal/service"
	"github.com/templui/gallery/internal/storage"
	"github.com/templui/gallery/internal/ui"
	"github.com/templui/gallery/internal/ui/pages"
	"github.com/templui/gallery/internal/validation"
)

type GalleryHandler struct {
	images      repository.ImageRepository
	objects     storage.Storage
	authService *service.AuthService
	anonymous   bool
	constraints validation.FileConstraints
}

func NewGalleryHandler(images repository.ImageRepository, objects storage.Storage, authService *service.AuthService, cfg *config.Config) *GalleryHandler {
	return &GalleryHandler{
		images:      images,
		objects:     objects,
		authService: authService,
		anonymous:   cfg.IsAnonymous(),
		constraints: validation.ImageConstraints.WithMaxSize(cfg.UploadMaxSize),
	}
}

// gate returns nil in anonymous mode, where uploads need no session
func (h *GalleryHandler) gate(r *http.Request) (*auth.Gate, error) {
	if h.anonymous {
		return nil, nil
	}
	return newGate(r, h.authService)
}

// uploader builds the view's uploader. It reports false when the gallery
// is gated and the gate is not signed in.
func (h *GalleryHandler) uploader(gate *auth.Gate) (*gallery.Uploader, bool) {
	if h.anonymous {
		return gallery.New(h.images, h.objects), true
	}
	if gate == nil || gate.State() != auth.Authenticated {
		return nil, false
	}
	return gallery.New(h.images, h.objects, gallery.WithOwner(gate.User())), true
}

func (h *GalleryHandler) Page(w http.ResponseWriter, r *http.Request) {
	gate, err := h.gate(r)
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if gate != nil {
		defer gate.Close()
	}

	h.show(w, r, gate, "")
}

// show renders the gallery for gate, or the login form when it is locked
func (h *GalleryHandler) show(w http.ResponseWriter, r *http.Request, gate *auth.Gate, status string) {
	u, ok := h.uploader(gate)
	if !ok {
		ui.Render(w, r, pages.Login(pages.LoginView{Status: status}))
		return
	}

	u.Load(r.Context())
	h.render(w, r, u, status)
}

func (h *GalleryHandler) render(w http.ResponseWriter, r *http.Request, u *gallery.Uploader, status string) {
	ui.Render(w, r, pages.Gallery(pages.GalleryView{
		State:  u.State(),
		Status: status,
		Watch:  !h.anonymous,
	}))
}

func (h *GalleryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	gate, err := h.gate(r)
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if gate != nil {
		defer gate.Close()
	}

	u, ok := h.uploader(gate)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		ui.Render(w, r, pages.Login(pages.LoginView{}))
		return
	}
	u.Load(r.Context())

	file, header, err := r.FormFile("file")
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		u.ShowError(validation.TooLarge(h.constraints.MaxSize))
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		h.render(w, r, u, "")
		return
	}
	if errors.Is(err, http.ErrMissingFile) {
		// Nothing picked, nothing to do
		h.render(w, r, u, "")
		return
	}
	if err != nil {
		slog.Warn("failed to read upload", "error", err)
		u.ShowError(errors.New("failed to read the uploaded file"))
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, u, "")
		return
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Warn("failed to close upload", "error", closeErr)
		}
	}()

	err = validation.ValidateFile(header, h.constraints)
	if err != nil {
		slog.Info("upload rejected", "error", err, "filename", header.Filename)
		u.ShowError(err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		h.render(w, r, u, "")
		return
	}

	err = u.Upload(r.Context(), &gallery.File{
		Name:        filepath.Base(header.Filename),
		Size:        header.Size,
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))),
		Body:        file,
	})
	if err != nil {
		w.WriteHeader(uploadStatus(err))
	}
	h.render(w, r, u, "")
}

// TooLarge answers requests whose body is over the upload limit. The body
// is never read, so it only renders the size error.
func (h *GalleryHandler) TooLarge(w http.ResponseWriter, r *http.Request) {
	gate, err := h.gate(r)
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if gate != nil {
		defer gate.Close()
	}

	u, ok := h.uploader(gate)
	if !ok {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		ui.Render(w, r, pages.Login(pages.LoginView{}))
		return
	}

	u.Load(r.Context())
	u.ShowError(validation.TooLarge(h.constraints.MaxSize))
	w.WriteHeader(http.StatusRequestEntityTooLarge)
	h.render(w, r, u, "")
}

func uploadStatus(err error) int {
	if errors.Is(err, storage.ErrObjectExists) {
		return http.StatusConflict
	}

	var uploadErr *gallery.UploadError
	if errors.As(err, &uploadErr) && uploadErr.Step == gallery.StepStore {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
