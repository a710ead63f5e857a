package notes

import (
	"fmt"
	"strings"
	"time"
)

const maxIdentifierLength = 190

// NoteID represents a validated note identifier.
type NoteID string

// NewNoteID validates raw input and returns a NoteID.
func NewNoteID(rawInput string) (NoteID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: note id empty", ErrValidation)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: note id exceeds %d characters", ErrValidation, maxIdentifierLength)
	}
	return NoteID(trimmed), nil
}

// String returns the underlying string identifier.
func (id NoteID) String() string {
	return string(id)
}

// UserID represents a validated user identifier.
type UserID string

// NewUserID validates raw input and returns a UserID.
func NewUserID(rawInput string) (UserID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: user id empty", ErrValidation)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: user id exceeds %d characters", ErrValidation, maxIdentifierLength)
	}
	return UserID(trimmed), nil
}

// String returns the underlying string identifier.
func (id UserID) String() string {
	return string(id)
}

// Attachment describes one uploaded blob referenced by a note.
type Attachment struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
	URL         string `json:"url"`
	Path        string `json:"path"`
}

// Note models one user-authored document. Identifier, owner and
// timestamps are assigned by the backing store on creation.
type Note struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Tags        []string     `json:"tags"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Draft carries the user-supplied fields of a note before creation.
type Draft struct {
	Title   string
	Content string
	Tags    []string
}

// Validate rejects drafts whose title or content is empty after trimming.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("%w: content required", ErrValidation)
	}
	return nil
}

// Patch describes a partial note update. Nil fields are left untouched;
// the store restamps UpdatedAt regardless of which fields change.
type Patch struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// IsEmpty reports whether the patch changes nothing beyond the update timestamp.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil
}

// FileUpload carries one pending attachment payload.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ParseTags splits a raw comma-separated tag field, trimming each piece
// and discarding empty pieces while preserving order. Duplicates are kept.
func ParseTags(raw string) []string {
	pieces := strings.Split(raw, ",")
	tags := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		trimmed := strings.TrimSpace(piece)
		if trimmed == "" {
			continue
		}
		tags = append(tags, trimmed)
	}
	return tags
}

// MatchesTerm reports whether term is a case-insensitive substring of the
// note's title, content, or any of its tags.
func MatchesTerm(note Note, term string) bool {
	lowered := strings.ToLower(term)
	if strings.Contains(strings.ToLower(note.Title), lowered) {
		return true
	}
	if strings.Contains(strings.ToLower(note.Content), lowered) {
		return true
	}
	for _, tag := range note.Tags {
		if strings.Contains(strings.ToLower(tag), lowered) {
			return true
		}
	}
	return false
}
