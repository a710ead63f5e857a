// Package gcs stores attachment blobs in a Google Cloud Storage bucket,
// the hosted object store behind the production profile.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"

	"github.com/nexonotes/nexonotes/internal/notes"
)

// StoreConfig names the bucket holding attachment objects.
type StoreConfig struct {
	Bucket string
	Clock  func() time.Time
}

// Store implements notes.BlobStore over a GCS bucket.
type Store struct {
	client *storage.Client
	bucket string
	clock  func() time.Time
}

// NewStore connects to GCS and validates the configuration.
func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs blob store: bucket is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs blob store: creating client: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket, clock: clock}, nil
}

// Close releases the underlying client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Upload writes the blob under {owner}/{note}/{millis}_{name} and
// resolves its public object URL.
func (s *Store) Upload(ctx context.Context, owner notes.UserID, noteID string, file notes.FileUpload) (notes.Attachment, error) {
	path := notes.AttachmentPath(owner, noteID, file.Name, s.clock().UnixMilli())
	writer := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	writer.ContentType = file.ContentType
	if _, err := writer.Write(file.Data); err != nil {
		_ = writer.Close()
		return notes.Attachment{}, fmt.Errorf("%w: gcs write: %v", notes.ErrUploadFailed, err)
	}
	if err := writer.Close(); err != nil {
		return notes.Attachment{}, fmt.Errorf("%w: gcs close: %v", notes.ErrUploadFailed, err)
	}
	return notes.Attachment{
		Name:        file.Name,
		Size:        int64(len(file.Data)),
		ContentType: file.ContentType,
		URL:         fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, path),
		Path:        path,
	}, nil
}

// Delete removes one object. An object that is already gone is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	err := s.client.Bucket(s.bucket).Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: gcs delete: %v", notes.ErrDeleteFailed, err)
	}
	return nil
}
