// Package memory provides an in-memory blob store for tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nexonotes/nexonotes/internal/notes"
)

// Store keeps uploaded blobs in process memory.
type Store struct {
	mu    sync.Mutex
	blobs map[string][]byte
	clock func() time.Time
}

// NewStore constructs an empty in-memory blob store.
func NewStore(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{blobs: make(map[string][]byte), clock: clock}
}

// Upload records the blob and returns its metadata with a mem:// URL.
func (s *Store) Upload(_ context.Context, owner notes.UserID, noteID string, file notes.FileUpload) (notes.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := notes.AttachmentPath(owner, noteID, file.Name, s.clock().UnixMilli())
	s.blobs[path] = append([]byte(nil), file.Data...)
	return notes.Attachment{
		Name:        file.Name,
		Size:        int64(len(file.Data)),
		ContentType: file.ContentType,
		URL:         "mem://" + path,
		Path:        path,
	}, nil
}

// Delete removes the blob.
func (s *Store) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, path)
	return nil
}

// Len reports the number of stored blobs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.blobs)
}

// Has reports whether a blob exists at path.
func (s *Store) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.blobs[path]
	return ok
}
