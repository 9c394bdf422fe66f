package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	cfg "github.com/templui/gallery/internal/config"
)

// ErrObjectExists is returned by Upload when the key is already taken
var ErrObjectExists = errors.New("the resource already exists")

// Storage defines the object storage operations the gallery needs
type Storage interface {
	// Upload stores body under key. It fails with ErrObjectExists when the key is taken.
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// PublicURL maps a key to a publicly fetchable URL. It is deterministic and never fails.
	PublicURL(key string) string

	// Keys lists every stored key under prefix
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// New creates the storage backend selected by STORAGE_DRIVER
func New(c *cfg.Config) (Storage, error) {
	slog.Info("initializing storage",
		"driver", c.StorageDriver,
		"bucket", c.S3Bucket,
		"region", c.S3Region,
		"endpoint", c.S3Endpoint,
	)

	switch c.StorageDriver {
	case "s3", "":
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
			PublicURL: c.S3PublicURL,
			Timeout:   c.S3Timeout,
		})
	case "minio":
		return NewMinioStorage(MinioConfig{
			Endpoint:  c.S3Endpoint,
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			UseSSL:    c.S3UseSSL,
			PublicURL: c.S3PublicURL,
			Timeout:   c.S3Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

// objectURL joins base and key, escaping each key segment
func objectURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.Join(segments, "/")
}

// publicReadPolicy allows anonymous GetObject on the whole bucket
func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}
