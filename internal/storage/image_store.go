// Package storage persists uploaded story images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"inkwell/internal/models"
)

// MsgUnsupportedImage is returned for uploads that are not PNG or JPEG.
const MsgUnsupportedImage = "Only images files valid"

// PublicPrefix is the URL prefix uploaded images are served under.
const PublicPrefix = "/images"

var allowedContentTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpg":  {},
	"image/jpeg": {},
}

// ImageUpload is a single uploaded file.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ImageStore saves an upload and returns the public URL of the stored file.
type ImageStore interface {
	Save(ctx context.Context, upload ImageUpload) (string, error)
	// Remove deletes the file behind a URL returned by Save. A missing file is not an error.
	Remove(ctx context.Context, url string) error
}

// LocalImageStore writes uploads into a directory served statically.
type LocalImageStore struct {
	dir      string
	maxBytes int64
}

// NewLocalImageStore creates a store rooted at dir. maxBytes <= 0 disables the size limit.
func NewLocalImageStore(dir string, maxBytes int64) *LocalImageStore {
	return &LocalImageStore{dir: dir, maxBytes: maxBytes}
}

// Dir is the directory uploads are written to.
func (s *LocalImageStore) Dir() string {
	return s.dir
}

// IsAllowedContentType reports whether contentType is an accepted image type.
func IsAllowedContentType(contentType string) bool {
	_, ok := allowedContentTypes[normalizeContentType(contentType)]
	return ok
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// Save stores the upload as <dir>/<base filename>, replacing any file of the same name.
func (s *LocalImageStore) Save(ctx context.Context, upload ImageUpload) (string, error) {
	if !IsAllowedContentType(upload.ContentType) {
		return "", models.NewValidationError(MsgUnsupportedImage)
	}

	name := filepath.Base(filepath.Clean("/" + filepath.ToSlash(upload.Filename)))
	if name == "/" || name == "." || name == "" {
		return "", models.NewValidationError("Please provide an image file name")
	}
	if s.maxBytes > 0 && upload.Size > s.maxBytes {
		return "", s.tooLarge()
	}
	if upload.Content == nil {
		return "", errors.New("image upload has no content")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	src := upload.Content
	if s.maxBytes > 0 {
		src = io.LimitReader(upload.Content, s.maxBytes+1)
	}
	written, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		return "", s.tooLarge()
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	return path.Join(PublicPrefix, name), nil
}

// Remove deletes <dir>/<name> for a /images/<name> URL.
func (s *LocalImageStore) Remove(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasPrefix(url, PublicPrefix+"/") {
		return fmt.Errorf("not a stored image url: %q", url)
	}
	name := path.Base(url)
	if name == "/" || name == "." || name == ".." {
		return fmt.Errorf("not a stored image url: %q", url)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (s *LocalImageStore) tooLarge() error {
	return models.NewValidationError(fmt.Sprintf("Image must not be larger than %d MB", s.maxBytes/(1024*1024)))
}
