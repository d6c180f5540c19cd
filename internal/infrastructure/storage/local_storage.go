package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	catalogapp "github.com/marvelstore/backend/internal/application/catalog"
)

var _ catalogapp.MediaStorage = (*LocalMediaStorage)(nil)

// DefaultLocalURLPrefix is the route the HTTP router serves local media from
const DefaultLocalURLPrefix = "/uploads"

// LocalMediaStorage keeps images on the local filesystem
type LocalMediaStorage struct {
	dir       string
	urlPrefix string
	maxSize   int64
}

// NewLocalMediaStorage creates the directory if needed. An empty urlPrefix
// serves files from /uploads.
func NewLocalMediaStorage(dir, urlPrefix string, maxSize int64) (*LocalMediaStorage, error) {
	if dir == "" {
		return nil, errors.New("local storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = DefaultLocalURLPrefix
	}
	return &LocalMediaStorage{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		maxSize:   maxSize,
	}, nil
}

// Dir returns the storage directory
func (s *LocalMediaStorage) Dir() string {
	return s.dir
}

// Upload writes body to dir/key
func (s *LocalMediaStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if s.maxSize > 0 && size > s.maxSize {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.maxSize)
	}

	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	reader := body
	if s.maxSize > 0 {
		reader = io.LimitReader(body, s.maxSize+1)
	}
	n, err := io.Copy(f, reader)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && s.maxSize > 0 && n > s.maxSize {
		err = fmt.Errorf("file exceeds maximum size of %d bytes", s.maxSize)
	}
	if err != nil {
		_ = os.Remove(p)
		return "", err
	}

	return s.urlPrefix + "/" + key, nil
}

// Delete removes dir/publicID. Missing files are not an error.
func (s *LocalMediaStorage) Delete(ctx context.Context, publicID string) error {
	p, err := s.path(publicID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// path rejects keys that would escape the storage directory
func (s *LocalMediaStorage) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	if key != filepath.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

// LocalRoutePrefix returns the path the router serves local media under for
// a configured public URL, which may be a bare path or an absolute URL
func LocalRoutePrefix(publicURL string) string {
	prefix := publicURL
	if u, err := url.Parse(publicURL); err == nil && u.Host != "" {
		prefix = u.Path
	}
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return DefaultLocalURLPrefix
	}
	return prefix
}
