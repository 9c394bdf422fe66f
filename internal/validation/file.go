package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// FileConstraints lists what an upload may be. Content types are matched
// against the sniffed bytes, not the client's Content-Type header.
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// ImageConstraints accepts the formats browsers display inline
var ImageConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
		"image/bmp":  true,
	},
	AllowedExtensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
		".bmp":  true,
	},
	MaxSize: 5 << 20,
}

// WithMaxSize returns a copy of the constraints with a different size limit.
// Non-positive sizes keep the current limit.
func (c FileConstraints) WithMaxSize(size int64) FileConstraints {
	if size > 0 {
		c.MaxSize = size
	}
	return c
}

// ValidateFile checks size, sniffed type and extension, cheapest first.
// The error messages are shown to the uploader as they are.
func ValidateFile(header *multipart.FileHeader, c FileConstraints) error {
	if header.Size > c.MaxSize {
		return TooLarge(c.MaxSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !c.AllowedExtensions[ext] {
		return fmt.Errorf("invalid file extension: %q", ext)
	}

	detected, err := sniff(header)
	if err != nil {
		return err
	}
	if !c.AllowedMimeTypes[detected] {
		return fmt.Errorf("invalid file type (detected: %s)", detected)
	}

	return nil
}

// TooLarge is the error shown for uploads over limit bytes
func TooLarge(limit int64) error {
	return fmt.Errorf("file too large: maximum size is %s", formatSize(limit))
}

// sniff reads the leading bytes the content type detection looks at
func sniff(header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return http.DetectContentType(head[:n]), nil
}

func formatSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	if n >= 1<<10 {
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d bytes", n)
}
