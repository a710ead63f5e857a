// Package memory provides an in-memory note store for tests and local
// development. It is not persistent.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nexonotes/nexonotes/internal/notes"
)

// Store keeps notes in process memory behind a mutex.
type Store struct {
	mu         sync.RWMutex
	byID       map[string]notes.Note
	idProvider notes.IDProvider
	clock      func() time.Time
}

// NewStore constructs an empty in-memory store.
func NewStore(idProvider notes.IDProvider, clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	if idProvider == nil {
		idProvider = notes.NewUUIDProvider()
	}
	return &Store{
		byID:       make(map[string]notes.Note),
		idProvider: idProvider,
		clock:      clock,
	}
}

// Create stores the note, assigning an id when none is provided and
// stamping both timestamps with the store clock.
func (s *Store) Create(_ context.Context, note notes.Note) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note.ID == "" {
		id, err := s.idProvider.NewID()
		if err != nil {
			return "", err
		}
		note.ID = id
	}
	now := s.clock().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	s.byID[note.ID] = cloneNote(note)
	return note.ID, nil
}

// ListByOwner returns every note owned by owner, unordered.
func (s *Store) ListByOwner(_ context.Context, owner notes.UserID) ([]notes.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listed := make([]notes.Note, 0)
	for _, note := range s.byID {
		if note.OwnerID == owner.String() {
			listed = append(listed, cloneNote(note))
		}
	}
	return listed, nil
}

// GetByID returns one note; the bool reports presence.
func (s *Store) GetByID(_ context.Context, id notes.NoteID) (notes.Note, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, ok := s.byID[id.String()]
	if !ok {
		return notes.Note{}, false, nil
	}
	return cloneNote(note), true, nil
}

// Update applies a partial merge and restamps UpdatedAt.
func (s *Store) Update(_ context.Context, id notes.NoteID, patch notes.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.byID[id.String()]
	if !ok {
		return notes.ErrNoteNotFound
	}
	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}
	if patch.Tags != nil {
		note.Tags = append([]string(nil), (*patch.Tags)...)
	}
	note.UpdatedAt = s.clock().UTC()
	s.byID[id.String()] = note
	return nil
}

// Delete removes the note; deleting an absent id is not an error.
func (s *Store) Delete(_ context.Context, id notes.NoteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, id.String())
	return nil
}

// SearchByOwner filters the owner's notes to those matching term.
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

func cloneNote(note notes.Note) notes.Note {
	cloned := note
	cloned.Tags = append([]string(nil), note.Tags...)
	cloned.Attachments = append([]notes.Attachment(nil), note.Attachments...)
	return cloned
}
