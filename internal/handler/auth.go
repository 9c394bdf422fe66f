package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/gallery/internal/auth"
	"github.com/templui/gallery/internal/service"
	"github.com/templui/gallery/internal/ui"
	"github.com/templui/gallery/internal/ui/pages"
)

const statusEmailConfirmed = "Email confirmed. You can log in now."

type AuthHandler struct {
	authService *service.AuthService
	gallery     *GalleryHandler
}

func NewAuthHandler(authService *service.AuthService, gallery *GalleryHandler) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		gallery:     gallery,
	}
}

func (h *AuthHandler) Page(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Login(pages.LoginView{}))
}

func credentials(r *http.Request) (string, string) {
	return strings.TrimSpace(r.FormValue("email")), r.FormValue("password")
}

// form opens the gate for the request and wraps it in a login form.
// The caller closes the gate.
func (h *AuthHandler) form(w http.ResponseWriter, r *http.Request) (*auth.Form, *auth.Gate, bool) {
	gate, err := newGate(r, h.authService)
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return nil, nil, false
	}
	return auth.NewForm(h.authService, gate), gate, true
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	form, gate, ok := h.form(w, r)
	if !ok {
		return
	}
	defer gate.Close()

	email, password := credentials(r)
	err := form.SignUp(r.Context(), email, password)
	if err != nil {
		slog.Info("sign-up failed", "error", err, "email", email)
	}

	ui.Render(w, r, pages.Login(pages.LoginView{Email: email, Status: form.Status()}))
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	form, gate, ok := h.form(w, r)
	if !ok {
		return
	}
	defer gate.Close()

	email, password := credentials(r)
	session, err := form.SignIn(r.Context(), email, password)
	if err != nil {
		slog.Info("sign-in failed", "error", err, "email", email)
		ui.Render(w, r, pages.Login(pages.LoginView{Email: email, Status: form.Status()}))
		return
	}

	h.authService.SetSessionCookie(w, session)
	h.gallery.show(w, withSession(r, session), gate, form.Status())
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	form, gate, ok := h.form(w, r)
	if !ok {
		return
	}
	defer gate.Close()

	err := form.SignOut(r.Context())
	if err != nil {
		slog.Error("sign-out failed", "error", err)
		ui.Render(w, r, pages.Login(pages.LoginView{Status: form.Status()}))
		return
	}

	h.authService.ClearSessionCookie(w)
	ui.Render(w, withSession(r, nil), pages.Login(pages.LoginView{Status: form.Status()}))
}

func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.ConfirmEmail(r.Context(), r.PathValue("token"))
	if err != nil {
		slog.Warn("email confirmation failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		ui.Render(w, r, pages.Login(pages.LoginView{Status: err.Error()}))
		return
	}

	ui.Render(w, r, pages.Login(pages.LoginView{Email: user.Email, Status: statusEmailConfirmed}))
}
