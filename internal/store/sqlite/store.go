// Package sqlite persists notes in a local SQLite database. It backs the
// development profile where no hosted document store is available.
package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nexonotes/nexonotes/internal/notes"
)

type noteRecord struct {
	NoteID           string `gorm:"column:note_id;primaryKey;size:190;not null"`
	OwnerID          string `gorm:"column:owner_id;size:190;not null;index:idx_notes_owner_updated,priority:1"`
	Title            string `gorm:"column:title;type:text;not null"`
	Content          string `gorm:"column:content;type:text;not null"`
	TagsJSON         string `gorm:"column:tags_json;type:text;not null;default:'[]'"`
	AttachmentsJSON  string `gorm:"column:attachments_json;type:text;not null;default:'[]'"`
	CreatedAtSeconds int64  `gorm:"column:created_at_s;not null"`
	UpdatedAtSeconds int64  `gorm:"column:updated_at_s;not null;index:idx_notes_owner_updated,priority:2"`
}

// TableName provides the explicit table binding for GORM.
func (noteRecord) TableName() string {
	return "notes"
}

// StoreConfig describes the dependencies of the SQLite note store.
type StoreConfig struct {
	Database   *gorm.DB
	IDProvider notes.IDProvider
	Clock      func() time.Time
}

// Store implements notes.Store over a GORM SQLite handle.
type Store struct {
	db         *gorm.DB
	idProvider notes.IDProvider
	clock      func() time.Time
}

// NewStore constructs the store and migrates its schema.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("sqlite store: database handle is required")
	}
	idProvider := cfg.IDProvider
	if idProvider == nil {
		idProvider = notes.NewUUIDProvider()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	if err := cfg.Database.AutoMigrate(&noteRecord{}); err != nil {
		return nil, fmt.Errorf("sqlite store: migrate: %w", err)
	}
	return &Store{db: cfg.Database, idProvider: idProvider, clock: clock}, nil
}

// Create persists the note, assigning an id when none is provided and
// stamping both timestamps from the store clock.
func (s *Store) Create(ctx context.Context, note notes.Note) (string, error) {
	if note.ID == "" {
		id, err := s.idProvider.NewID()
		if err != nil {
			return "", fmt.Errorf("%w: %v", notes.ErrBackendUnavailable, err)
		}
		note.ID = id
	}
	now := s.clock().UTC().Unix()
	record, err := toRecord(note, now, now)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("%w: %v", notes.ErrBackendUnavailable, err)
	}
	return note.ID, nil
}

// ListByOwner fetches every note for the owner.
func (s *Store) ListByOwner(ctx context.Context, owner notes.UserID) ([]notes.Note, error) {
	var records []noteRecord
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", owner.String()).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", notes.ErrBackendUnavailable, err)
	}
	listed := make([]notes.Note, 0, len(records))
	for _, record := range records {
		note, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		listed = append(listed, note)
	}
	return listed, nil
}

// GetByID fetches one note; a missing row reports absence, not an error.
func (s *Store) GetByID(ctx context.Context, id notes.NoteID) (notes.Note, bool, error) {
	var record noteRecord
	err := s.db.WithContext(ctx).Where("note_id = ?", id.String()).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notes.Note{}, false, nil
	}
	if err != nil {
		return notes.Note{}, false, fmt.Errorf("%w: %v", notes.ErrBackendUnavailable, err)
	}
	note, err := fromRecord(record)
	if err != nil {
		return notes.Note{}, false, err
	}
	return note, true, nil
}

// Update applies a partial merge and restamps updated_at_s.
func (s *Store) Update(ctx context.Context, id notes.NoteID, patch notes.Patch) error {
	updates := map[string]interface{}{
		"updated_at_s": s.clock().UTC().Unix(),
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.Tags != nil {
		encoded, err := json.Marshal(*patch.Tags)
		if err != nil {
			return fmt.Errorf("%w: %v", notes.ErrBackendUnavailable, err)
		}
		updates["tags_json"] = string(encoded)
	}
	if err := s.db.WithContext(ctx).
		Model(&noteRecord{}).
		Where("note_id = ?", id.String()).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("%w: %v", notes.ErrBackendUnavailable, err)
	}
	return nil
}

// Delete removes the note row; deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id notes.NoteID) error {
	if err := s.db.WithContext(ctx).
		Where("note_id = ?", id.String()).
		Delete(&noteRecord{}).Error; err != nil {
		return fmt.Errorf("%w: %v", notes.ErrBackendUnavailable, err)
	}
	return nil
}

// SearchByOwner fetches all of the owner's notes and filters them in
// memory. The backing schema keeps no text index, matching the remote
// document store profile.
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

func toRecord(note notes.Note, createdAt, updatedAt int64) (noteRecord, error) {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	attachments := note.Attachments
	if attachments == nil {
		attachments = []notes.Attachment{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return noteRecord{}, fmt.Errorf("%w: %v", notes.ErrBackendUnavailable, err)
	}
	attachmentsJSON, err := json.Marshal(attachments)
	if err != nil {
		return noteRecord{}, fmt.Errorf("%w: %v", notes.ErrBackendUnavailable, err)
	}
	return noteRecord{
		NoteID:           note.ID,
		OwnerID:          note.OwnerID,
		Title:            note.Title,
		Content:          note.Content,
		TagsJSON:         string(tagsJSON),
		AttachmentsJSON:  string(attachmentsJSON),
		CreatedAtSeconds: createdAt,
		UpdatedAtSeconds: updatedAt,
	}, nil
}

func fromRecord(record noteRecord) (notes.Note, error) {
	var tags []string
	if err := json.Unmarshal([]byte(record.TagsJSON), &tags); err != nil {
		return notes.Note{}, fmt.Errorf("%w: %v", notes.ErrBackendUnavailable, err)
	}
	var attachments []notes.Attachment
	if err := json.Unmarshal([]byte(record.AttachmentsJSON), &attachments); err != nil {
		return notes.Note{}, fmt.Errorf("%w: %v", notes.ErrBackendUnavailable, err)
	}
	return notes.Note{
		ID:          record.NoteID,
		OwnerID:     record.OwnerID,
		Title:       record.Title,
		Content:     record.Content,
		Tags:        tags,
		Attachments: attachments,
		CreatedAt:   time.Unix(record.CreatedAtSeconds, 0).UTC(),
		UpdatedAt:   time.Unix(record.UpdatedAtSeconds, 0).UTC(),
	}, nil
}
