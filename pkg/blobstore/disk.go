package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// DiskStore keeps blobs as flat files in a single directory and maps them to
// a public path (served statically by the HTTP layer).
type DiskStore struct {
	dir        string
	publicPath string
	limits     Limits
}

func NewDiskStore(dir, publicPath string, limits Limits) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &DiskStore{
		dir:        dir,
		publicPath: publicPath,
		limits:     limits,
	}, nil
}

func (s *DiskStore) Store(ctx context.Context, file IncomingFile) (*AttachmentRef, error) {
	mimeType, size, err := s.limits.Check(file.Content)
	if err != nil {
		return nil, err
	}

	storedName := GenerateStoredName(file.OriginalName)

	dst, err := os.Create(filepath.Join(s.dir, storedName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if _, err := io.Copy(dst, file.Content); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &AttachmentRef{
		OriginalName: file.OriginalName,
		StoredName:   storedName,
		Url:          s.URLFor(storedName),
		MimeType:     mimeType,
		SizeBytes:    size,
	}, nil
}

func (s *DiskStore) Retire(ctx context.Context, storedName string) error {
	if storedName == "" {
		return nil
	}

	// Base strips any path components a stored name must never contain.
	err := os.Remove(filepath.Join(s.dir, filepath.Base(storedName)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

func (s *DiskStore) URLFor(storedName string) string {
	return path.Join(s.publicPath, storedName)
}
