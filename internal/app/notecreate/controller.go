// Package notecreate collects the draft fields of a new note and its
// pending attachments, and persists them together on submission.
package notecreate

import (
	"context"
	"errors"
	"sync"

	"github.com/nexonotes/nexonotes/internal/notes"
	"github.com/nexonotes/nexonotes/internal/session"
)

var (
	errMissingService = errors.New("notecreate: note service is required")
	errMissingSession = errors.New("notecreate: session context is required")
)

// Creator is the slice of the notes service the controller depends on.
type Creator interface {
	Create(ctx context.Context, owner notes.UserID, draft notes.Draft, files []notes.FileUpload) (notes.Note, error)
}

// ControllerConfig describes the controller's collaborators.
type ControllerConfig struct {
	Service Creator
	Session *session.Context
}

// Controller holds one note draft. The draft survives a failed submit so
// the user can retry without retyping.
type Controller struct {
	service Creator
	session *session.Context

	mu      sync.Mutex
	title   string
	content string
	rawTags string
	files   []notes.FileUpload
	err     error
}

// NewController constructs the creation controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Service == nil {
		return nil, errMissingService
	}
	if cfg.Session == nil {
		return nil, errMissingSession
	}
	return &Controller{service: cfg.Service, session: cfg.Session}, nil
}

// SetTitle updates the draft title.
func (c *Controller) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
}

// SetContent updates the draft content.
func (c *Controller) SetContent(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = content
}

// SetRawTags updates the raw comma-separated tags field.
func (c *Controller) SetRawTags(rawTags string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rawTags = rawTags
}

// AddFile appends a pending attachment, whether selected or dropped.
func (c *Controller) AddFile(file notes.FileUpload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, file)
}

// RemoveFile drops the pending attachment at index.
func (c *Controller) RemoveFile(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.files) {
		return
	}
	c.files = append(c.files[:index], c.files[index+1:]...)
}

// Files lists the pending attachments.
func (c *Controller) Files() []notes.FileUpload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notes.FileUpload(nil), c.files...)
}

// Err returns the last submit failure, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Submit validates the draft, parses the raw tags field, and persists
// the note together with its attachments. On failure the draft and
// pending files are left intact for retry; on success they are cleared
// and the created note is returned.
func (c *Controller) Submit(ctx context.Context) (notes.Note, error) {
	c.mu.Lock()
	draft := notes.Draft{
		Title:   c.title,
		Content: c.content,
		Tags:    notes.ParseTags(c.rawTags),
	}
	files := append([]notes.FileUpload(nil), c.files...)
	c.mu.Unlock()

	// Validation failures block submission before any remote call.
	if err := draft.Validate(); err != nil {
		c.recordError(err)
		return notes.Note{}, err
	}

	userID, err := c.session.UserID()
	if err != nil {
		c.recordError(err)
		return notes.Note{}, err
	}
	owner, err := notes.NewUserID(userID)
	if err != nil {
		c.recordError(err)
		return notes.Note{}, err
	}

	created, err := c.service.Create(ctx, owner, draft, files)
	if err != nil {
		c.recordError(err)
		return notes.Note{}, err
	}

	c.mu.Lock()
	c.title = ""
	c.content = ""
	c.rawTags = ""
	c.files = nil
	c.err = nil
	c.mu.Unlock()
	return created, nil
}

// Draft returns the current draft fields.
func (c *Controller) Draft() notes.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return notes.Draft{Title: c.title, Content: c.content, Tags: notes.ParseTags(c.rawTags)}
}

func (c *Controller) recordError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}
