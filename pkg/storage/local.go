package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Local stores uploads on the local filesystem under a base directory.
type Local struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocal creates a local store rooted at baseDir, creating it if needed.
func NewLocal(baseDir string, logger *zap.Logger) (*Local, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{baseDir: baseDir, logger: logger}, nil
}

// BaseDir returns the directory files are written under.
func (l *Local) BaseDir() string { return l.baseDir }

// Save writes the upload to disk and returns its key relative to the base dir.
func (l *Local) Save(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error) {
	key := ObjectKey(filepath.Base(l.baseDir), filename)
	dst := filepath.Join(l.baseDir, filepath.Base(key))
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	l.logger.Debug("stored upload", zap.String("key", key))
	return key, nil
}

// Delete removes a stored file. A missing file is not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	name := filepath.Base(strings.TrimPrefix(key, "/"))
	err := os.Remove(filepath.Join(l.baseDir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
