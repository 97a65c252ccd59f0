package blobstore

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported file type")
	ErrPayloadTooLarge      = errors.New("file exceeds the maximum allowed size")

	// ErrUnavailable wraps backend failures so callers can surface them as a
	// service-unavailable condition.
	ErrUnavailable = errors.New("blob storage is unavailable")
)

// IncomingFile is an upload read from the request. Content must support
// seeking so the store can sniff and measure it before writing.
type IncomingFile struct {
	OriginalName string
	Content      io.ReadSeeker
}

// AttachmentRef describes a stored blob. StoredName is the collision-resistant
// key the blob lives under; it is never reused.
type AttachmentRef struct {
	OriginalName string
	StoredName   string
	Url          string
	MimeType     string
	SizeBytes    int64
}

// Store is the attachment lifecycle: upload, best-effort idempotent deletion,
// and a deterministic public URL per stored name.
type Store interface {
	Store(ctx context.Context, file IncomingFile) (*AttachmentRef, error)
	Retire(ctx context.Context, storedName string) error
	URLFor(storedName string) string
}

// Limits is the upload policy applied before anything is written.
type Limits struct {
	AllowedMimeTypes []string
	MaxSizeBytes     int64
}

// Check sniffs the content type, measures the file and rewinds it. It returns
// ErrUnsupportedMediaType or ErrPayloadTooLarge when the policy rejects it.
func (l Limits) Check(content io.ReadSeeker) (string, int64, error) {
	detected, err := mimetype.DetectReader(content)
	if err != nil {
		return "", 0, err
	}

	allowed := false
	for _, t := range l.AllowedMimeTypes {
		if detected.Is(t) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", 0, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, detected.String())
	}

	size, err := content.Seek(0, io.SeekEnd)
	if err != nil {
		return "", 0, err
	}
	if l.MaxSizeBytes > 0 && size > l.MaxSizeBytes {
		return "", 0, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, size)
	}

	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", 0, err
	}

	return detected.String(), size, nil
}

// GenerateStoredName builds a unique blob key from a nanosecond timestamp and
// a random suffix, preserving the original extension.
func GenerateStoredName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))

	var suffix [4]byte
	_, _ = rand.Read(suffix[:])

	return fmt.Sprintf("%d-%x%s", time.Now().UnixNano(), suffix, ext)
}
