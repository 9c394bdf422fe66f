package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/gallery/internal/model"
)

type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	List(ctx context.Context) ([]*model.Image, error)
	Keys(ctx context.Context) (map[string]bool, error)
}

type imageRepository struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) ImageRepository {
	return &imageRepository{db: db}
}

// Create inserts the record. The store assigns the ID, and the creation time
// when the caller did not supply one.
func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO images (id, url, storage_key, user_id, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		image.ID,
		image.URL,
		image.StorageKey,
		image.UserID,
		image.CreatedAt,
	)
	return err
}

// List returns every image, newest first
func (r *imageRepository) List(ctx context.Context) ([]*model.Image, error) {
	images := []*model.Image{}
	query := `SELECT * FROM images ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &images, query)
	if err != nil {
		return nil, err
	}

	return images, nil
}

// Keys returns the set of storage keys referenced by image records
func (r *imageRepository) Keys(ctx context.Context) (map[string]bool, error) {
	var keys []string
	query := `SELECT storage_key FROM images`

	err := r.db.SelectContext(ctx, &keys, query)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set, nil
}
