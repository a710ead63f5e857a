package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	errMissingStore      = errors.New("note store is required")
	errMissingBlobStore  = errors.New("blob store is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

// ServiceError wraps a failure with a dotted operation code for logging
// and API error payloads.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "notes.service.new"
	opCreate     = "notes.create"
	opGet        = "notes.get"
	opList       = "notes.list"
	opSearch     = "notes.search"
	opUpdate     = "notes.update"
	opDelete     = "notes.delete"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig describes the collaborators behind the notes service.
type ServiceConfig struct {
	Store      Store
	Blobs      BlobStore
	IDProvider IDProvider
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Service fronts the remote note and attachment stores with validation,
// ownership enforcement and structured error reporting.
type Service struct {
	store      Store
	blobs      BlobStore
	idProvider IDProvider
	clock      func() time.Time
	logger     *zap.Logger
}

// NewService constructs the notes service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, newServiceError(opServiceNew, "missing_store", errMissingStore)
	}
	if cfg.Blobs == nil {
		return nil, newServiceError(opServiceNew, "missing_blob_store", errMissingBlobStore)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		store:      cfg.Store,
		blobs:      cfg.Blobs,
		idProvider: cfg.IDProvider,
		clock:      clock,
		logger:     logger,
	}, nil
}

// Create validates the draft, uploads any attachments, then persists the
// note referencing the uploaded blobs. If the note write fails after
// uploads succeeded, the uploaded blobs are deleted again so no orphaned
// objects remain.
func (s *Service) Create(ctx context.Context, owner UserID, draft Draft, files []FileUpload) (Note, error) {
	if err := draft.Validate(); err != nil {
		return Note{}, newServiceError(opCreate, "invalid_draft", err)
	}

	noteID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreate, "id_generation_failed", err, zap.String("owner_id", owner.String()))
		return Note{}, newServiceError(opCreate, "id_generation_failed", err)
	}

	attachments, err := UploadAll(ctx, s.blobs, owner, noteID, files)
	if err != nil {
		s.logError(opCreate, "attachment_upload_failed", err,
			zap.String("owner_id", owner.String()),
			zap.String("note_id", noteID))
		return Note{}, newServiceError(opCreate, "attachment_upload_failed", err)
	}

	note := Note{
		ID:          noteID,
		OwnerID:     owner.String(),
		Title:       strings.TrimSpace(draft.Title),
		Content:     draft.Content,
		Tags:        draft.Tags,
		Attachments: attachments,
	}

	createdID, err := s.store.Create(ctx, note)
	if err != nil {
		for _, attachment := range attachments {
			_ = s.blobs.Delete(ctx, attachment.Path)
		}
		s.logError(opCreate, "store_create_failed", err,
			zap.String("owner_id", owner.String()),
			zap.String("note_id", noteID))
		return Note{}, newServiceError(opCreate, "store_create_failed", err)
	}

	stored, found, err := s.store.GetByID(ctx, NoteID(createdID))
	if err != nil || !found {
		// The note exists; return what we know rather than failing the call.
		note.ID = createdID
		now := s.clock().UTC()
		note.CreatedAt = now
		note.UpdatedAt = now
		return note, nil
	}
	return stored, nil
}

// Get fetches one note and enforces the ownership boundary: an absent id
// yields ErrNoteNotFound and a cross-owner read yields ErrForbidden
// without returning any content.
func (s *Service) Get(ctx context.Context, id NoteID, requester UserID) (Note, error) {
	note, found, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logError(opGet, "store_get_failed", err, zap.String("note_id", id.String()))
		return Note{}, newServiceError(opGet, "store_get_failed", err)
	}
	if !found {
		return Note{}, newServiceError(opGet, "not_found", ErrNoteNotFound)
	}
	if note.OwnerID != requester.String() {
		return Note{}, newServiceError(opGet, "forbidden", ErrForbidden)
	}
	return note, nil
}

// List returns every note owned by owner, unordered.
func (s *Service) List(ctx context.Context, owner UserID) ([]Note, error) {
	listed, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		s.logError(opList, "store_list_failed", err, zap.String("owner_id", owner.String()))
		return nil, newServiceError(opList, "store_list_failed", err)
	}
	return listed, nil
}

// Search applies the empty-term policy: a term that is empty after
// trimming lists everything instead of filtering.
func (s *Service) Search(ctx context.Context, owner UserID, term string) ([]Note, error) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return s.List(ctx, owner)
	}
	matched, err := s.store.SearchByOwner(ctx, owner, trimmed)
	if err != nil {
		s.logError(opSearch, "store_search_failed", err, zap.String("owner_id", owner.String()))
		return nil, newServiceError(opSearch, "store_search_failed", err)
	}
	return matched, nil
}

// Update applies a partial merge after verifying ownership.
func (s *Service) Update(ctx context.Context, id NoteID, requester UserID, patch Patch) (Note, error) {
	note, found, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logError(opUpdate, "store_get_failed", err, zap.String("note_id", id.String()))
		return Note{}, newServiceError(opUpdate, "store_get_failed", err)
	}
	if !found {
		return Note{}, newServiceError(opUpdate, "not_found", ErrNoteNotFound)
	}
	if note.OwnerID != requester.String() {
		return Note{}, newServiceError(opUpdate, "forbidden", ErrForbidden)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Note{}, newServiceError(opUpdate, "invalid_patch", fmt.Errorf("%w: title required", ErrValidation))
	}

	if err := s.store.Update(ctx, id, patch); err != nil {
		s.logError(opUpdate, "store_update_failed", err, zap.String("note_id", id.String()))
		return Note{}, newServiceError(opUpdate, "store_update_failed", err)
	}

	updated, found, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logError(opUpdate, "store_reload_failed", err, zap.String("note_id", id.String()))
		return Note{}, newServiceError(opUpdate, "store_reload_failed", err)
	}
	if !found {
		return Note{}, newServiceError(opUpdate, "not_found", ErrNoteNotFound)
	}
	return updated, nil
}

// Delete removes the note and best-effort deletes its attachment blobs.
// Deleting an id that no longer exists succeeds, keeping the operation
// idempotent for retrying callers.
func (s *Service) Delete(ctx context.Context, id NoteID, requester UserID) error {
	note, found, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logError(opDelete, "store_get_failed", err, zap.String("note_id", id.String()))
		return newServiceError(opDelete, "store_get_failed", err)
	}
	if !found {
		return nil
	}
	if note.OwnerID != requester.String() {
		return newServiceError(opDelete, "forbidden", ErrForbidden)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logError(opDelete, "store_delete_failed", err, zap.String("note_id", id.String()))
		return newServiceError(opDelete, "store_delete_failed", err)
	}

	for _, attachment := range note.Attachments {
		if attachment.Path == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, attachment.Path); err != nil {
			s.logger.Warn("attachment cleanup failed",
				zap.String("note_id", id.String()),
				zap.String("path", attachment.Path),
				zap.Error(err))
		}
	}
	return nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("notes service error", attrs...)
}
