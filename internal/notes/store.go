package notes

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Store is the remote document collection holding notes, keyed by the
// owning user identifier. Implementations map transport failures to
// ErrBackendUnavailable and report a missing document through the bool
// result of GetByID rather than an error.
type Store interface {
	// Create persists a new note and returns its identifier. The
	// caller may pre-assign note.ID (attachments are keyed under it
	// before the note exists); otherwise the store assigns one.
	// CreatedAt and UpdatedAt are stamped by the store.
	Create(ctx context.Context, note Note) (string, error)
	// ListByOwner fetches every note for the owner, unordered. An owner
	// with no notes yields an empty slice, not an error.
	ListByOwner(ctx context.Context, owner UserID) ([]Note, error)
	// GetByID fetches one note; the bool reports presence.
	GetByID(ctx context.Context, id NoteID) (Note, bool, error)
	// Update applies a partial merge and restamps UpdatedAt.
	Update(ctx context.Context, id NoteID, patch Patch) error
	// Delete removes the note. Deleting an absent id is not an error.
	Delete(ctx context.Context, id NoteID) error
	// SearchByOwner fetches all of the owner's notes and filters them
	// in memory to those matching term case-insensitively in title,
	// content, or any tag.
	SearchByOwner(ctx context.Context, owner UserID, term string) ([]Note, error)
}

// BlobStore is the remote object store holding attachment payloads,
// addressed by a path namespaced under owner and note.
type BlobStore interface {
	// Upload writes one blob and resolves its retrieval URL. Failures
	// map to ErrUploadFailed.
	Upload(ctx context.Context, owner UserID, noteID string, file FileUpload) (Attachment, error)
	// Delete removes one blob by path. Failures map to ErrDeleteFailed.
	Delete(ctx context.Context, path string) error
}

// IDProvider issues identifiers for stores that assign ids client-side.
type IDProvider interface {
	NewID() (string, error)
}

// UploadAll uploads every file concurrently and waits for all of them.
// The call is all-or-nothing: if any upload fails, blobs already written
// are deleted best-effort and the first error is returned. Results keep
// the input order.
func UploadAll(ctx context.Context, blobs BlobStore, owner UserID, noteID string, files []FileUpload) ([]Attachment, error) {
	uploaded := make([]Attachment, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	for index, file := range files {
		group.Go(func() error {
			attachment, err := blobs.Upload(groupCtx, owner, noteID, file)
			if err != nil {
				return err
			}
			uploaded[index] = attachment
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		for _, attachment := range uploaded {
			if attachment.Path == "" {
				continue
			}
			_ = blobs.Delete(ctx, attachment.Path)
		}
		return nil, err
	}
	return uploaded, nil
}
