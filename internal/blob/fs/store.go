// Package fs stores attachment blobs on the local filesystem for the
// development profile. Blobs are served back through a static route, so
// the retrieval URL is the configured base joined with the object path.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nexonotes/nexonotes/internal/notes"
)

// StoreConfig describes the local blob directory and its public base URL.
type StoreConfig struct {
	Root    string
	BaseURL string
	Clock   func() time.Time
}

// Store implements notes.BlobStore over a local directory.
type Store struct {
	root    string
	baseURL string
	clock   func() time.Time
}

// NewStore validates the configuration and ensures the root directory exists.
func NewStore(cfg StoreConfig) (*Store, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, fmt.Errorf("fs blob store: root directory is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("fs blob store: create root: %w", err)
	}
	return &Store{
		root:    cfg.Root,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		clock:   clock,
	}, nil
}

// Upload writes the blob under {owner}/{note}/{millis}_{name} and returns
// its metadata.
func (s *Store) Upload(_ context.Context, owner notes.UserID, noteID string, file notes.FileUpload) (notes.Attachment, error) {
	name := filepath.Base(file.Name)
	path := notes.AttachmentPath(owner, noteID, name, s.clock().UnixMilli())
	target := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return notes.Attachment{}, fmt.Errorf("%w: %v", notes.ErrUploadFailed, err)
	}
	if err := os.WriteFile(target, file.Data, 0o644); err != nil {
		return notes.Attachment{}, fmt.Errorf("%w: %v", notes.ErrUploadFailed, err)
	}
	return notes.Attachment{
		Name:        name,
		Size:        int64(len(file.Data)),
		ContentType: file.ContentType,
		URL:         s.baseURL + "/" + path,
		Path:        path,
	}, nil
}

// Delete removes one blob. A path that is already gone is not an error.
func (s *Store) Delete(_ context.Context, path string) error {
	target := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", notes.ErrDeleteFailed, err)
	}
	return nil
}

// Root exposes the blob directory for static serving.
func (s *Store) Root() string {
	return s.root
}
