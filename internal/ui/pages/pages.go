// Package pages holds the full HTML pages. The components live in the .templ
// files next to this one; run `templ generate` after editing them.
package pages

import (
	"context"

	"github.com/templui/gallery/internal/ctxkeys"
	"github.com/templui/gallery/internal/gallery"
)

const defaultAppName = "Gallery"

type GalleryView struct {
	State  gallery.State
	Status string
	// Watch subscribes the page to session events so it reloads on sign-out
	Watch bool
}

type LoginView struct {
	Email  string
	Status string
}

func appName(ctx context.Context) string {
	if cfg := ctxkeys.Config(ctx); cfg != nil && cfg.AppName != "" {
		return cfg.AppName
	}
	return defaultAppName
}

func pageTitle(ctx context.Context, title string) string {
	if title == "" {
		return appName(ctx)
	}
	return title + " · " + appName(ctx)
}
