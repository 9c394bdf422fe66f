package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/gallery/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Active(ctx context.Context, id string) (*model.Session, error)
	Extend(ctx context.Context, id string, expiresAt time.Time) error
	Revoke(ctx context.Context, id string) (*model.Session, error)
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, session.ID, session.UserID, session.ExpiresAt, session.CreatedAt)
	return err
}

// Active returns the session if it is neither revoked nor expired
func (r *sessionRepository) Active(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	query := `SELECT * FROM sessions WHERE id = $1 AND revoked_at IS NULL AND expires_at > $2`

	err := r.db.GetContext(ctx, session, query, id, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (r *sessionRepository) Extend(ctx context.Context, id string, expiresAt time.Time) error {
	query := `UPDATE sessions SET expires_at = $1 WHERE id = $2 AND revoked_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, expiresAt, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// Revoke ends the session. Only the first call for a given session succeeds,
// later calls get ErrSessionNotFound.
func (r *sessionRepository) Revoke(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session

	query := `
		UPDATE sessions
		SET revoked_at = $1
		WHERE id = $2
		AND revoked_at IS NULL
		RETURNING *
	`

	err := r.db.GetContext(ctx, &s, query, time.Now().UTC(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}
