package ui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	ok := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>hello</p>")
		return err
	})
	w := httptest.NewRecorder()
	Render(w, httptest.NewRequest(http.MethodGet, "/", nil), ok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>hello</p>", w.Body.String())

	partial := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, "<p>half")
		return errors.New("boom")
	})
	w = httptest.NewRecorder()
	Render(w, httptest.NewRequest(http.MethodGet, "/", nil), partial)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "<p>half")
}
