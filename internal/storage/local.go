package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype" // Content sniffing
	"github.com/google/uuid"             // Collision-free file names
)

var (
	// ErrUnsupportedType is returned for uploads that are not images
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrTooLarge is returned for uploads over the size cap
	ErrTooLarge = errors.New("file too large")
)

// allowedTypes maps accepted MIME types to the stored extension
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// FileStore persists uploaded product images
type FileStore interface {
	// Save stores the content and returns its public path
	Save(ctx context.Context, r io.Reader) (string, error)
	// Delete removes a file previously returned by Save
	Delete(ctx context.Context, publicPath string) error
}

// LocalStore keeps files in a directory served under PublicPrefix
type LocalStore struct {
	Dir          string // Directory on disk
	PublicPrefix string // URL prefix the directory is served under
	MaxBytes     int64  // Size cap per file
}

// NewLocalStore creates dir if needed
func NewLocalStore(dir, publicPrefix string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, PublicPrefix: strings.TrimRight(publicPrefix, "/"), MaxBytes: maxBytes}, nil
}

func (s *LocalStore) Save(ctx context.Context, r io.Reader) (string, error) {
	// Read one byte past the cap so oversize files are detected without trusting headers
	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > s.MaxBytes {
		return "", ErrTooLarge
	}
	ext, ok := allowedTypes[mimetype.Detect(data).String()]
	if !ok {
		return "", ErrUnsupportedType
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name()) // No-op once renamed
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, name)); err != nil {
		return "", err
	}
	return s.PublicPrefix + "/" + name, nil
}

func (s *LocalStore) Delete(_ context.Context, publicPath string) error {
	if !strings.HasPrefix(publicPath, s.PublicPrefix+"/") {
		return fmt.Errorf("path %q is not managed by this store", publicPath)
	}
	name := path.Base(publicPath)
	err := os.Remove(filepath.Join(s.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
