package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, conn interface {
	Get(dest any, query string, args ...any) error
}, name string) bool {
	t.Helper()

	var n int
	require.NoError(t, conn.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = $1`, name))
	return n == 1
}

func TestMigrations(t *testing.T) {
	conn, err := Init("sqlite", filepath.Join(t.TempDir(), "nested", "gallery.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(conn) })

	require.NoError(t, RunMigrations(conn.DB, "sqlite"))
	assert.True(t, tableExists(t, conn, "users"))
	assert.True(t, tableExists(t, conn, "images"))

	// Applying again is a no-op
	require.NoError(t, RunMigrations(conn.DB, "sqlite"))

	require.NoError(t, MigrateDown(conn.DB, "sqlite"))
	assert.False(t, tableExists(t, conn, "images"))
	assert.True(t, tableExists(t, conn, "users"))
}

func TestUnknownDriver(t *testing.T) {
	_, err := newProvider(nil, "mysql")
	assert.Error(t, err)
}
