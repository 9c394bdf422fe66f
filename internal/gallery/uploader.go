// Package gallery implements the image uploader and the gallery listing
// shown beside it.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/templui/gallery/internal/model"
)

var ErrUploadInProgress = errors.New("an upload is already in progress")

// Images is the metadata store for uploaded images
type Images interface {
	List(ctx context.Context) ([]*model.Image, error)
	Create(ctx context.Context, image *model.Image) error
}

// Objects is the object store holding the image bytes
type Objects interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

// File is a single image picked for upload
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

type Step string

const (
	StepStore  Step = "store"
	StepInsert Step = "insert"
)

// UploadError records which step of an upload failed. Its message is the
// underlying error's message unchanged, since that is what gets displayed.
type UploadError struct {
	Step Step
	Err  error
}

func (e *UploadError) Error() string {
	return e.Err.Error()
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// State is a snapshot of everything the view renders
type State struct {
	Images    []*model.Image
	Preview   string
	Error     string
	Uploading bool
	Owner     *model.User
}

type Option func(*Uploader)

// WithClock replaces time.Now for key and timestamp generation
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) {
		u.now = now
	}
}

// WithOwner attributes uploads to user and stamps them with the uploader's
// clock. Without an owner, uploads are anonymous and the store picks the
// creation time.
func WithOwner(user *model.User) Option {
	return func(u *Uploader) {
		u.owner = user
	}
}

// Uploader holds one view's gallery list, preview and error text. Handlers
// build one per request.
type Uploader struct {
	images  Images
	objects Objects
	now     func() time.Time
	owner   *model.User

	mu        sync.Mutex
	list      []*model.Image
	preview   string
	errText   string
	uploading bool
}

func New(images Images, objects Objects, opts ...Option) *Uploader {
	u := &Uploader{
		images:  images,
		objects: objects,
		now:     time.Now,
		list:    []*model.Image{},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// StorageKey builds the object key for name uploaded at now. Two uploads of
// the same name within one millisecond collide; the object store rejects the
// second one.
func StorageKey(now time.Time, name string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), name)
}

// Load replaces the gallery list with the stored images, newest first. A
// failed fetch keeps the previous list and is only logged.
func (u *Uploader) Load(ctx context.Context) {
	images, err := u.images.List(ctx)
	if err != nil {
		slog.Error("failed to fetch images", "error", err)
		return
	}
	if images == nil {
		images = []*model.Image{}
	}

	u.mu.Lock()
	u.list = images
	u.mu.Unlock()
}

// Upload stores f, records it and refreshes the list. A nil file is ignored.
// On failure the error's message becomes the visible error text and the
// returned error is an *UploadError.
func (u *Uploader) Upload(ctx context.Context, f *File) error {
	if f == nil {
		return nil
	}

	u.mu.Lock()
	if u.uploading {
		u.mu.Unlock()
		return ErrUploadInProgress
	}
	u.uploading = true
	u.errText = ""
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.uploading = false
		u.mu.Unlock()
	}()

	now := u.now()
	key := StorageKey(now, f.Name)

	err := u.objects.Upload(ctx, key, f.Body, f.Size, f.ContentType)
	if err != nil {
		slog.Error("upload failed", "error", err, "key", key)
		return u.fail(&UploadError{Step: StepStore, Err: err})
	}

	url := u.objects.PublicURL(key)

	image := &model.Image{
		URL:        url,
		StorageKey: key,
	}
	if u.owner != nil {
		userID := u.owner.ID
		image.UserID = &userID
		image.CreatedAt = now.UTC()
	}

	err = u.images.Create(ctx, image)
	if err != nil {
		// The object stays behind; the orphans command reports it
		slog.Error("failed to record image", "error", err, "key", key)
		return u.fail(&UploadError{Step: StepInsert, Err: err})
	}

	u.mu.Lock()
	u.preview = url
	u.mu.Unlock()

	slog.Info("image uploaded", "key", key, "image_id", image.ID, "owned", image.Owned())

	u.Load(ctx)
	return nil
}

// ShowError puts err in the visible error area without touching the list
func (u *Uploader) ShowError(err error) {
	u.mu.Lock()
	u.errText = err.Error()
	u.mu.Unlock()
}

func (u *Uploader) fail(err *UploadError) error {
	u.ShowError(err)
	return err
}

func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()

	images := make([]*model.Image, len(u.list))
	copy(images, u.list)

	return State{
		Images:    images,
		Preview:   u.preview,
		Error:     u.errText,
		Uploading: u.uploading,
		Owner:     u.owner,
	}
}
