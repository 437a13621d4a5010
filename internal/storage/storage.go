// Package storage persists uploaded files (profile pictures, verification
// documents) and returns opaque keys that are stored on the models.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PrefixProfilePictures = "profile_pictures"
	PrefixLoanDocuments   = "loan_documents"
)

var (
	ErrObjectNotFound = errors.New("stored object not found")
	ErrInvalidKey     = errors.New("invalid storage key")
)

// Upload is a file received from a client, already size-measured.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// Store is the file storage collaborator.
type Store interface {
	// Save writes r under prefix/YYYY/MM/DD/<uuid><ext> and returns the key.
	Save(ctx context.Context, prefix, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a date-partitioned key with a random name. The original
// file name only contributes its lower-cased extension.
func ObjectKey(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(prefix, now.Format("2006/01/02"), uuid.NewString()+ext)
}

func checkKey(key string) error {
	clean := path.Clean(key)
	if key == "" || clean != key || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Backends accepted by New.
const (
	BackendLocal = "local"
	BackendGCS   = "gcs"
)

// New builds the store selected by backend. The returned close function
// releases any client the store holds.
func New(ctx context.Context, backend, localRoot, bucket string) (Store, func(), error) {
	switch backend {
	case "", BackendLocal:
		return NewLocalStore(localRoot), func() {}, nil
	case BackendGCS:
		if bucket == "" {
			return nil, nil, errors.New("GCS bucket is required for the gcs storage backend")
		}
		g, err := NewGCSStore(ctx, bucket)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
