package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/gallery/internal/db"
	"github.com/templui/gallery/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))
	return conn
}

func createUser(t *testing.T, users UserRepository, email string) *model.User {
	t.Helper()

	user := &model.User{
		ID:           email,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestImageRepository(t *testing.T) {
	conn := newTestDB(t)
	images := NewImageRepository(conn)
	ctx := context.Background()

	list, err := images.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	user := createUser(t, NewUserRepository(conn), "ada@example.com")
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	older := &model.Image{URL: "https://cdn/1-a.png", StorageKey: "1-a.png", CreatedAt: base}
	newer := &model.Image{URL: "https://cdn/2-b.png", StorageKey: "2-b.png", UserID: &user.ID, CreatedAt: base.Add(time.Second)}
	require.NoError(t, images.Create(ctx, older))
	require.NoError(t, images.Create(ctx, newer))

	// Anonymous insert: the store stamps the time
	anon := &model.Image{URL: "https://cdn/3-c.png", StorageKey: "3-c.png"}
	require.NoError(t, images.Create(ctx, anon))
	assert.NotEmpty(t, anon.ID)
	assert.False(t, anon.CreatedAt.IsZero())

	list, err = images.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "3-c.png", list[0].StorageKey)
	assert.Equal(t, "2-b.png", list[1].StorageKey)
	assert.Equal(t, "1-a.png", list[2].StorageKey)
	assert.True(t, list[1].Owned())
	assert.False(t, list[2].Owned())

	keys, err := images.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"1-a.png": true, "2-b.png": true, "3-c.png": true}, keys)
}

func TestUserRepository(t *testing.T) {
	conn := newTestDB(t)
	users := NewUserRepository(conn)
	ctx := context.Background()

	user := createUser(t, users, "ada@example.com")

	err := users.Create(ctx, &model.User{ID: "other", Email: "ada@example.com", PasswordHash: "x", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = users.ByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, users.ConfirmEmail(ctx, user.ID, time.Now().UTC()))
	got, err := users.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Confirmed())
}

func TestSessionRepository(t *testing.T) {
	conn := newTestDB(t)
	sessions := NewSessionRepository(conn)
	user := createUser(t, NewUserRepository(conn), "ada@example.com")
	ctx := context.Background()

	session := &model.Session{UserID: user.ID, ExpiresAt: time.Now().UTC().Add(time.Hour)}
	require.NoError(t, sessions.Create(ctx, session))

	active, err := sessions.Active(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, active.UserID)

	require.NoError(t, sessions.Extend(ctx, session.ID, time.Now().UTC().Add(2*time.Hour)))

	revoked, err := sessions.Revoke(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, revoked.IsRevoked())

	_, err = sessions.Revoke(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = sessions.Active(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, sessions.Extend(ctx, session.ID, time.Now().Add(time.Hour)), ErrSessionNotFound)

	expired := &model.Session{UserID: user.ID, ExpiresAt: time.Now().UTC().Add(-time.Minute)}
	require.NoError(t, sessions.Create(ctx, expired))
	_, err = sessions.Active(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestTokenRepository(t *testing.T) {
	conn := newTestDB(t)
	tokens := NewTokenRepository(conn)
	user := createUser(t, NewUserRepository(conn), "ada@example.com")
	ctx := context.Background()

	require.NoError(t, tokens.Create(ctx, &model.Token{
		UserID:    user.ID,
		Type:      model.TokenTypeEmailConfirm,
		Token:     "abc",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))

	got, err := tokens.Consume(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	_, err = tokens.Consume(ctx, "abc")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, tokens.Create(ctx, &model.Token{
		UserID:    user.ID,
		Type:      model.TokenTypeEmailConfirm,
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}))
	_, err = tokens.Consume(ctx, "stale")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, tokens.DeleteByUserAndType(ctx, user.ID, model.TokenTypeEmailConfirm))
}
