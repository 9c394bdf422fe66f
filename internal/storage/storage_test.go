package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMinio struct {
	objects map[string][]byte
	putErr  error
	statErr error
	puts    int
}

func newFakeMinio() *fakeMinio {
	return &fakeMinio{objects: map[string][]byte{}}
}

func (f *fakeMinio) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return true, nil
}

func (f *fakeMinio) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return nil
}

func (f *fakeMinio) SetBucketPolicy(ctx context.Context, bucketName, policy string) error {
	return nil
}

func (f *fakeMinio) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if f.statErr != nil {
		return minio.ObjectInfo{}, f.statErr
	}
	if _, ok := f.objects[objectName]; ok {
		return minio.ObjectInfo{Key: objectName}, nil
	}
	return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
}

func (f *fakeMinio) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.puts++
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[objectName] = b
	return minio.UploadInfo{Key: objectName, Size: int64(len(b))}, nil
}

func (f *fakeMinio) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(f.objects))
	for k := range f.objects {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func TestMinioUpload(t *testing.T) {
	client := newFakeMinio()
	s := newMinioStorage(client, "images", "http://localhost:9000/images/", 0)
	ctx := context.Background()

	err := s.Upload(ctx, "1000-cat.png", bytes.NewReader([]byte("png")), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), client.objects["1000-cat.png"])

	t.Run("existing key", func(t *testing.T) {
		err := s.Upload(ctx, "1000-cat.png", bytes.NewReader([]byte("other")), 5, "image/png")
		assert.ErrorIs(t, err, ErrObjectExists)
		assert.Equal(t, []byte("png"), client.objects["1000-cat.png"])
		assert.Equal(t, 1, client.puts)
	})

	t.Run("put failure", func(t *testing.T) {
		client.putErr = errors.New("quota exceeded")
		defer func() { client.putErr = nil }()

		err := s.Upload(ctx, "2000-dog.png", bytes.NewReader(nil), 0, "")
		assert.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("stat failure", func(t *testing.T) {
		client.statErr = errors.New("connection refused")
		defer func() { client.statErr = nil }()

		err := s.Upload(ctx, "3000-owl.png", bytes.NewReader(nil), 0, "")
		assert.ErrorContains(t, err, "connection refused")
		assert.NotErrorIs(t, err, ErrObjectExists)
	})

	keys, err := s.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1000-cat.png"}, keys)
}

func TestPublicURL(t *testing.T) {
	s := newMinioStorage(newFakeMinio(), "images", "https://cdn.example.com/images/", 0)

	assert.Equal(t, "https://cdn.example.com/images/1000-cat.png", s.PublicURL("1000-cat.png"))
	assert.Equal(t, "https://cdn.example.com/images/1000-my%20cat.png", s.PublicURL("1000-my cat.png"))
	assert.Equal(t, "https://cdn.example.com/images/a/b%3F.png", s.PublicURL("a/b?.png"))
	assert.Equal(t, s.PublicURL("1000-cat.png"), s.PublicURL("1000-cat.png"))
}

func TestS3PublicBase(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{
			name: "aws",
			cfg:  S3Config{Bucket: "images", Region: "eu-central-1"},
			want: "https://images.s3.eu-central-1.amazonaws.com",
		},
		{
			name: "custom endpoint",
			cfg:  S3Config{Bucket: "images", Endpoint: "http://localhost:9000/"},
			want: "http://localhost:9000/images",
		},
		{
			name: "public url override",
			cfg:  S3Config{Bucket: "images", Endpoint: "http://minio:9000", PublicURL: "https://cdn/"},
			want: "https://cdn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s3PublicBase(tt.cfg))
		})
	}
}

func TestMinioEndpoint(t *testing.T) {
	host, secure := minioEndpoint("https://minio.example.com", false)
	assert.Equal(t, "minio.example.com", host)
	assert.True(t, secure)

	host, secure = minioEndpoint("localhost:9000", false)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, secure)
}
