// Package notedetail loads a single note, enforces that the requesting
// user owns it, and exposes the edit and delete actions.
package notedetail

import (
	"context"
	"errors"
	"sync"

	"github.com/nexonotes/nexonotes/internal/notes"
	"github.com/nexonotes/nexonotes/internal/session"
)

// State describes what the detail view should render.
type State int

const (
	// StateIdle means no load has completed yet.
	StateIdle State = iota
	// StateLoaded means the note is present and owned by the requester.
	StateLoaded
	// StateNotFound means no note exists with the requested id.
	StateNotFound
	// StateForbidden means the note exists but belongs to another user;
	// no content is exposed in this state.
	StateForbidden
	// StateUnavailable means the remote store could not be reached.
	StateUnavailable
	// StateDeleted means the note was deleted and the caller should
	// navigate away from the detail view.
	StateDeleted
)

var (
	errMissingService = errors.New("notedetail: note service is required")
	errMissingSession = errors.New("notedetail: session context is required")
	// ErrConfirmationRequired indicates Delete was called without a prior Confirm.
	ErrConfirmationRequired = errors.New("notedetail: deletion requires confirmation")
	// ErrNotLoaded indicates no note is loaded.
	ErrNotLoaded = errors.New("notedetail: no note loaded")
)

// NoteService is the slice of the notes service the controller depends on.
type NoteService interface {
	Get(ctx context.Context, id notes.NoteID, requester notes.UserID) (notes.Note, error)
	Update(ctx context.Context, id notes.NoteID, requester notes.UserID, patch notes.Patch) (notes.Note, error)
	Delete(ctx context.Context, id notes.NoteID, requester notes.UserID) error
}

// ControllerConfig describes the controller's collaborators.
type ControllerConfig struct {
	Service NoteService
	Session *session.Context
}

// Controller holds the detail view state for one note.
type Controller struct {
	service NoteService
	session *session.Context

	mu        sync.Mutex
	state     State
	note      notes.Note
	err       error
	confirmed bool
}

// NewController constructs the detail controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Service == nil {
		return nil, errMissingService
	}
	if cfg.Session == nil {
		return nil, errMissingSession
	}
	return &Controller{service: cfg.Service, session: cfg.Session}, nil
}

// Load fetches the note and resolves the view state. A note owned by
// another user yields StateForbidden without retaining any content.
func (c *Controller) Load(ctx context.Context, id notes.NoteID) State {
	requester, err := c.requester()
	if err != nil {
		return c.setFailure(StateUnavailable, err)
	}

	note, err := c.service.Get(ctx, id, requester)
	switch {
	case err == nil:
		c.mu.Lock()
		defer c.mu.Unlock()
		c.state = StateLoaded
		c.note = note
		c.err = nil
		c.confirmed = false
		return c.state
	case errors.Is(err, notes.ErrNoteNotFound):
		return c.setFailure(StateNotFound, nil)
	case errors.Is(err, notes.ErrForbidden):
		return c.setFailure(StateForbidden, nil)
	default:
		return c.setFailure(StateUnavailable, err)
	}
}

// Note returns the loaded note. Only StateLoaded exposes content.
func (c *Controller) Note() (notes.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoaded {
		return notes.Note{}, false
	}
	return c.note, true
}

// State reports the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the last failure, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Confirm records the user's explicit affirmative step before deletion.
func (c *Controller) Confirm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmed = true
}

// Update applies an edit to the loaded note.
func (c *Controller) Update(ctx context.Context, patch notes.Patch) error {
	c.mu.Lock()
	if c.state != StateLoaded {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	noteID := notes.NoteID(c.note.ID)
	c.mu.Unlock()

	requester, err := c.requester()
	if err != nil {
		return err
	}
	updated, err := c.service.Update(ctx, noteID, requester, patch)
	if err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return err
	}
	c.mu.Lock()
	c.note = updated
	c.err = nil
	c.mu.Unlock()
	return nil
}

// Delete removes the loaded note. It refuses to fire without a prior
// Confirm. On failure the note stays visible; on success the state moves
// to StateDeleted, signalling the caller to navigate away.
func (c *Controller) Delete(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateLoaded {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	if !c.confirmed {
		c.mu.Unlock()
		return ErrConfirmationRequired
	}
	noteID := notes.NoteID(c.note.ID)
	c.mu.Unlock()

	requester, err := c.requester()
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx, noteID, requester); err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.state = StateDeleted
	c.note = notes.Note{}
	c.err = nil
	c.mu.Unlock()
	return nil
}

func (c *Controller) requester() (notes.UserID, error) {
	userID, err := c.session.UserID()
	if err != nil {
		return "", err
	}
	return notes.NewUserID(userID)
}

func (c *Controller) setFailure(state State, err error) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.note = notes.Note{}
	c.err = err
	c.confirmed = false
	return c.state
}
