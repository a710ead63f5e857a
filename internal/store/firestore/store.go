// Package firestore implements the note store against a hosted Cloud
// Firestore collection. Documents are queried by equality on the owner
// identifier only; every other predicate is evaluated client-side, so no
// composite indexes are required.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nexonotes/nexonotes/internal/notes"
)

const notesCollection = "notes"

// Store implements notes.Store over a Firestore client.
type Store struct {
	client *firestore.Client
}

// NewStore connects to Firestore in the given project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore store: project id is required")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore store: creating client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) notesCol() *firestore.CollectionRef {
	return s.client.Collection(notesCollection)
}

type attachmentDoc struct {
	Name        string `firestore:"name"`
	Size        int64  `firestore:"size"`
	ContentType string `firestore:"type"`
	URL         string `firestore:"url"`
	Path        string `firestore:"path"`
}

type noteDoc struct {
	OwnerID     string          `firestore:"owner_id"`
	Title       string          `firestore:"title"`
	Content     string          `firestore:"content"`
	Tags        []string        `firestore:"tags"`
	Attachments []attachmentDoc `firestore:"attachments"`
	CreatedAt   time.Time       `firestore:"created_at,serverTimestamp"`
	UpdatedAt   time.Time       `firestore:"updated_at,serverTimestamp"`
}

// Create writes the note document. Both timestamps are assigned by the
// Firestore server clock.
func (s *Store) Create(ctx context.Context, note notes.Note) (string, error) {
	ref := s.notesCol().NewDoc()
	if note.ID != "" {
		ref = s.notesCol().Doc(note.ID)
	}
	doc := noteDoc{
		OwnerID:     note.OwnerID,
		Title:       note.Title,
		Content:     note.Content,
		Tags:        note.Tags,
		Attachments: toAttachmentDocs(note.Attachments),
	}
	if _, err := ref.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("%w: firestore create: %v", notes.ErrBackendUnavailable, err)
	}
	return ref.ID, nil
}

// ListByOwner fetches every note for the owner, unordered at the query
// level; callers sort locally.
func (s *Store) ListByOwner(ctx context.Context, owner notes.UserID) ([]notes.Note, error) {
	iter := s.notesCol().Where("owner_id", "==", owner.String()).Documents(ctx)
	defer iter.Stop()

	listed := make([]notes.Note, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: firestore list: %v", notes.ErrBackendUnavailable, err)
		}
		note, err := fromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		listed = append(listed, note)
	}
	return listed, nil
}

// GetByID fetches one document; a missing document reports absence.
func (s *Store) GetByID(ctx context.Context, id notes.NoteID) (notes.Note, bool, error) {
	snap, err := s.notesCol().Doc(id.String()).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return notes.Note{}, false, nil
	}
	if err != nil {
		return notes.Note{}, false, fmt.Errorf("%w: firestore get: %v", notes.ErrBackendUnavailable, err)
	}
	note, err := fromSnapshot(snap)
	if err != nil {
		return notes.Note{}, false, err
	}
	return note, true, nil
}

// Update merges the changed fields and lets the server restamp updated_at.
func (s *Store) Update(ctx context.Context, id notes.NoteID, patch notes.Patch) error {
	updates := map[string]interface{}{
		"updated_at": firestore.ServerTimestamp,
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.Tags != nil {
		updates["tags"] = *patch.Tags
	}
	if _, err := s.notesCol().Doc(id.String()).Set(ctx, updates, firestore.MergeAll); err != nil {
		return fmt.Errorf("%w: firestore update: %v", notes.ErrBackendUnavailable, err)
	}
	return nil
}

// Delete removes the document. Firestore deletes are idempotent, so a
// missing document is not an error.
func (s *Store) Delete(ctx context.Context, id notes.NoteID) error {
	if _, err := s.notesCol().Doc(id.String()).Delete(ctx); err != nil {
		return fmt.Errorf("%w: firestore delete: %v", notes.ErrBackendUnavailable, err)
	}
	return nil
}

// SearchByOwner fetches all of the owner's notes and filters them in
// memory. Firestore's query layer cannot express a multi-field OR text
// match without maintaining composite indexes, so the full set is
// re-fetched per search.
func (s *Store) SearchByOwner(ctx context.Context, owner notes.UserID, term string) ([]notes.Note, error) {
	listed, err := s.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	matched := make([]notes.Note, 0, len(listed))
	for _, note := range listed {
		if notes.MatchesTerm(note, term) {
			matched = append(matched, note)
		}
	}
	return matched, nil
}

func fromSnapshot(snap *firestore.DocumentSnapshot) (notes.Note, error) {
	var doc noteDoc
	if err := snap.DataTo(&doc); err != nil {
		return notes.Note{}, fmt.Errorf("%w: firestore decode: %v", notes.ErrBackendUnavailable, err)
	}
	return notes.Note{
		ID:          snap.Ref.ID,
		OwnerID:     doc.OwnerID,
		Title:       doc.Title,
		Content:     doc.Content,
		Tags:        doc.Tags,
		Attachments: fromAttachmentDocs(doc.Attachments),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

func toAttachmentDocs(attachments []notes.Attachment) []attachmentDoc {
	docs := make([]attachmentDoc, 0, len(attachments))
	for _, attachment := range attachments {
		docs = append(docs, attachmentDoc{
			Name:        attachment.Name,
			Size:        attachment.Size,
			ContentType: attachment.ContentType,
			URL:         attachment.URL,
			Path:        attachment.Path,
		})
	}
	return docs
}

func fromAttachmentDocs(docs []attachmentDoc) []notes.Attachment {
	attachments := make([]notes.Attachment, 0, len(docs))
	for _, doc := range docs {
		attachments = append(attachments, notes.Attachment{
			Name:        doc.Name,
			Size:        doc.Size,
			ContentType: doc.ContentType,
			URL:         doc.URL,
			Path:        doc.Path,
		})
	}
	return attachments
}
