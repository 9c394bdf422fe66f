package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/templui/gallery/assets"
	"github.com/templui/gallery/internal/app"
	"github.com/templui/gallery/internal/handler"
	"github.com/templui/gallery/internal/middleware"
)

// multipart framing on top of the file itself
const uploadOverhead = 1 << 20

// SetupRoutes builds the HTTP handler. Rate limiter cleanup and open event
// streams stop when ctx is done.
func SetupRoutes(ctx context.Context, app *app.App) http.Handler {
	galleryHandler := handler.NewGalleryHandler(app.ImageRepository, app.Storage, app.AuthService, app.Cfg)
	authHandler := handler.NewAuthHandler(app.AuthService, galleryHandler)
	events := handler.NewEventsHandler(ctx, app.AuthService)
	legal := handler.NewLegalHandler(app.LegalService)

	authLimit := middleware.RateLimit(middleware.NewRateLimiter(ctx, 10, 15*time.Minute))
	uploadLimit := middleware.RateLimit(middleware.NewRateLimiter(ctx, 30, time.Minute))

	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(assets.AssetsFS))))

	// Gallery
	mux.HandleFunc("GET /{$}", galleryHandler.Page)
	mux.HandleFunc("POST /upload", uploadLimit(galleryHandler.Upload))

	// Auth pages
	mux.HandleFunc("GET /auth", middleware.RequireGuest(authHandler.Page))
	mux.HandleFunc("GET /auth/confirm/{token}", authHandler.Confirm)
	mux.HandleFunc("GET /auth/events", events.Stream)

	// Auth actions
	mux.HandleFunc("POST /auth/signup", authLimit(authHandler.SignUp))
	mux.HandleFunc("POST /auth/signin", authLimit(authHandler.SignIn))
	mux.HandleFunc("POST /auth/signout", authHandler.SignOut)

	// Content
	mux.HandleFunc("GET /legal/{page}", legal.ShowPage)

	// 404
	mux.HandleFunc("/{path...}", handler.NotFound)

	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Config(app.Cfg),
		middleware.NonceMiddleware,
		middleware.SecurityHeaders(app.Cfg),
		middleware.LimitBody(app.Cfg.UploadMaxSize+uploadOverhead, http.HandlerFunc(galleryHandler.TooLarge)),
		middleware.CSRFProtection,
		middleware.Auth(app.AuthService),
		middleware.WithURLPath,
	)
}
