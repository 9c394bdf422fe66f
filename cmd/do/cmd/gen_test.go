package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUpToDate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.css")
	out := filepath.Join(dir, "output.css")

	require.NoError(t, os.WriteFile(in, []byte("@import 'tailwindcss';"), 0644))
	assert.False(t, isUpToDate(out, []string{in}), "missing output is stale")

	require.NoError(t, os.WriteFile(out, []byte("body{}"), 0644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(in, old, old))
	assert.True(t, isUpToDate(out, []string{in, filepath.Join(dir, "missing.js")}))

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(in, future, future))
	assert.False(t, isUpToDate(out, []string{in}))
}

func TestTemplStale(t *testing.T) {
	dir := t.TempDir()
	fresh := filepath.Join(dir, "fresh.templ")
	stale := filepath.Join(dir, "stale.templ")
	missing := filepath.Join(dir, "missing.templ")

	old := time.Now().Add(-time.Hour)
	for _, f := range []string{fresh, stale, missing} {
		require.NoError(t, os.WriteFile(f, []byte("package pages"), 0644))
		require.NoError(t, os.Chtimes(f, old, old))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fresh_templ.go"), nil, 0644))

	older := old.Add(-time.Hour)
	staleOut := filepath.Join(dir, "stale_templ.go")
	require.NoError(t, os.WriteFile(staleOut, nil, 0644))
	require.NoError(t, os.Chtimes(staleOut, older, older))

	assert.ElementsMatch(t, []string{stale, missing}, templStale(dir))
}
