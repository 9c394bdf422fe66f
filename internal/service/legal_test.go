package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLegal(t *testing.T, root, name, content string) {
	t.Helper()

	dir := filepath.Join(root, "legal")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLegalPages(t *testing.T) {
	root := t.TempDir()
	writeLegal(t, root, "terms.md", "---\ntitle: Terms of Upload\nlastUpdated: 2025-01-15\n---\n\nBe nice.\n")
	writeLegal(t, root, "privacy-policy.md", "We store your email.\n")
	writeLegal(t, root, "notes.txt", "ignored")

	svc := NewLegalService(root, false)
	require.NoError(t, svc.LoadPages())

	terms, err := svc.Page("terms")
	require.NoError(t, err)
	assert.Equal(t, "Terms of Upload", terms.Title)
	assert.Equal(t, "January 15, 2025", terms.LastUpdated)
	assert.Contains(t, terms.Content, "<p>Be nice.</p>")

	privacy, err := svc.Page("privacy-policy")
	require.NoError(t, err)
	assert.Equal(t, "Privacy Policy", privacy.Title)
	assert.NotEmpty(t, privacy.LastUpdated)

	_, err = svc.Page("notes")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestLegalPagesReload(t *testing.T) {
	root := t.TempDir()
	svc := NewLegalService(root, true)

	require.NoError(t, svc.LoadPages(), "a missing directory is not an error")
	_, err := svc.Page("terms")
	assert.ErrorIs(t, err, ErrPageNotFound)

	writeLegal(t, root, "terms.md", "Fresh.\n")
	page, err := svc.Page("terms")
	require.NoError(t, err)
	assert.Contains(t, page.Content, "Fresh.")
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, "March 4, 2024", parseDate("2024-03-04"))
	assert.Equal(t, "March 4, 2024", parseDate(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "someday", parseDate("someday"))
	assert.Empty(t, parseDate(42))
}
