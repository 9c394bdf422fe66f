package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultContentType = "application/octet-stream"

// minioClient is the subset of *minio.Client used by MinioStorage
type minioClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketPolicy(ctx context.Context, bucketName, policy string) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// MinioStorage implements Storage on the native MinIO client
type MinioStorage struct {
	client    minioClient
	bucket    string
	publicURL string
	timeout   time.Duration
}

type MinioConfig struct {
	Endpoint  string // host:port, or a URL whose scheme decides TLS
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
	Timeout   time.Duration
}

func NewMinioStorage(cfg MinioConfig) (*MinioStorage, error) {
	host, secure := minioEndpoint(cfg.Endpoint, cfg.UseSSL)

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, host, cfg.Bucket)
	}

	storage := newMinioStorage(client, cfg.Bucket, publicURL, cfg.Timeout)

	err = storage.ensureBucket(context.Background(), cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return storage, nil
}

func newMinioStorage(client minioClient, bucket, publicURL string, timeout time.Duration) *MinioStorage {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MinioStorage{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		timeout:   timeout,
	}
}

// minioEndpoint strips an optional scheme; https forces TLS
func minioEndpoint(endpoint string, useSSL bool) (string, bool) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), useSSL
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint, useSSL
	}
	return u.Host, u.Scheme == "https" || useSSL
}

func (s *MinioStorage) ensureBucket(ctx context.Context, region string) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", s.bucket, err)
	}

	err = s.client.SetBucketPolicy(ctx, s.bucket, publicReadPolicy(s.bucket))
	if err != nil {
		slog.Warn("failed to make bucket public, image URLs may not resolve", "bucket", s.bucket, "error", err)
	}

	slog.Info("created minio bucket", "bucket", s.bucket)
	return nil
}

// Upload refuses existing keys. The stat-then-put check is not atomic; two
// writers racing on one key can both pass it.
func (s *MinioStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return ErrObjectExists
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("failed to check object: %w", err)
	}

	if contentType == "" {
		contentType = defaultContentType
	}
	if size <= 0 {
		size = -1
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}

	return nil
}

func (s *MinioStorage) PublicURL(key string) string {
	return objectURL(s.publicURL, key)
}

func (s *MinioStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list minio objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}

	return keys, nil
}
