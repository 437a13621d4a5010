package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GCSStore keeps files in a Google Cloud Storage bucket.
type GCSStore struct {
	Client     *storage.Client
	BucketName string
	now        func() time.Time
}

// NewGCSStore uses application default credentials unless opts say otherwise.
func NewGCSStore(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStore{Client: client, BucketName: bucketName, now: time.Now}, nil
}

func (g *GCSStore) Save(ctx context.Context, prefix, filename string, r io.Reader) (string, error) {
	key := ObjectKey(prefix, filename, g.now())
	object := g.Client.Bucket(g.BucketName).Object(key)

	writer := object.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		writer.ContentType = ct
	}
	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to upload to bucket: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	logrus.WithFields(logrus.Fields{"bucket": g.BucketName, "object": key}).Debug("uploaded object")
	return key, nil
}

func (g *GCSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	reader, err := g.Client.Bucket(g.BucketName).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	return reader, err
}

func (g *GCSStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := g.Client.Bucket(g.BucketName).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	return err
}

// Close is nil-safe.
func (g *GCSStore) Close() {
	if g.Client == nil {
		return
	}
	if err := g.Client.Close(); err != nil {
		logrus.WithError(err).Warn("error closing GCS client")
	}
}
