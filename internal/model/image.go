package model

import (
	"time"
)

type Image struct {
	ID         string    `db:"id"`
	URL        string    `db:"url"`
	StorageKey string    `db:"storage_key"`
	UserID     *string   `db:"user_id"` // Nil for anonymous uploads
	CreatedAt  time.Time `db:"created_at"`
}

// Owned reports whether the image was uploaded by a signed-in user
func (i *Image) Owned() bool {
	return i.UserID != nil && *i.UserID != ""
}
