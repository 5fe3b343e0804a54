package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded files (event banners, identification images) and
// returns the relative key under which they are served.
type Store interface {
	// Save writes the file and returns its key, e.g. "uploads/<name>".
	Save(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes a previously saved file. Missing files are not an error.
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a collision-free key for an upload, keeping the original
// extension so browsers infer the content type.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return prefix + "/" + uuid.New().String() + ext
}

// ContentTypeForFilename guesses a content type from the file extension.
func ContentTypeForFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// ValidImageType reports whether the upload looks like an image we accept.
func ValidImageType(contentType, filename string) bool {
	if strings.HasPrefix(contentType, "image/") {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}
