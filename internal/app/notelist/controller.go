// Package notelist owns the in-memory note collection for one session:
// the active search term, tag filter and sort key, and the derived view
// the presentation layer renders.
package notelist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nexonotes/nexonotes/internal/notes"
	"github.com/nexonotes/nexonotes/internal/session"
)

const defaultQuietPeriod = 300 * time.Millisecond

var errMissingFetcher = errors.New("notelist: fetcher is required")
var errMissingSession = errors.New("notelist: session context is required")

// Fetcher is the slice of the notes service the controller depends on.
type Fetcher interface {
	List(ctx context.Context, owner notes.UserID) ([]notes.Note, error)
	Search(ctx context.Context, owner notes.UserID, term string) ([]notes.Note, error)
}

// ControllerConfig describes the controller's collaborators.
type ControllerConfig struct {
	Fetcher     Fetcher
	Session     *session.Context
	QuietPeriod time.Duration
	Logger      *zap.Logger
}

// Controller holds the list view state. All state is owned by the
// controller and mutated only under its lock; fetches run asynchronously
// and their results are applied only when still the latest issued.
type Controller struct {
	fetcher Fetcher
	session *session.Context
	quiet   time.Duration
	logger  *zap.Logger

	mu          sync.Mutex
	notes       []notes.Note
	searchTerm  string
	selectedTag string
	sortKey     notes.SortKey
	isLoading   bool
	err         error
	timer       *time.Timer
	latestSeq   uint64
	inFlight    sync.WaitGroup
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Notes       []notes.Note
	SearchTerm  string
	SelectedTag string
	SortKey     notes.SortKey
	IsLoading   bool
	Err         error
}

// NewController constructs the list controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Fetcher == nil {
		return nil, errMissingFetcher
	}
	if cfg.Session == nil {
		return nil, errMissingSession
	}
	quiet := cfg.QuietPeriod
	if quiet <= 0 {
		quiet = defaultQuietPeriod
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		fetcher: cfg.Fetcher,
		session: cfg.Session,
		quiet:   quiet,
		logger:  logger,
		sortKey: notes.SortByUpdated,
	}, nil
}

// Activate loads the session's notes immediately, without debouncing.
func (c *Controller) Activate(ctx context.Context) {
	c.mu.Lock()
	c.cancelTimerLocked()
	seq, term := c.beginFetchLocked()
	c.mu.Unlock()
	c.inFlight.Add(1)
	go c.fetch(ctx, seq, term)
}

// SetSearchTerm records the term and restarts the debounce timer: the
// fetch fires only after the quiet period passes with no further change,
// so rapid keystrokes coalesce into a single request carrying the final
// term.
func (c *Controller) SetSearchTerm(ctx context.Context, term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchTerm = term
	c.cancelTimerLocked()
	c.timer = time.AfterFunc(c.quiet, func() {
		c.mu.Lock()
		seq, current := c.beginFetchLocked()
		c.mu.Unlock()
		c.inFlight.Add(1)
		c.fetch(ctx, seq, current)
	})
}

// SetSelectedTag changes the tag filter applied to the derived view.
func (c *Controller) SetSelectedTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedTag = tag
}

// SetSortKey changes the ordering of the derived view.
func (c *Controller) SetSortKey(key notes.SortKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortKey = key
}

// Visible derives the displayed sequence: the loaded notes filtered by
// the selected tag, then sorted by the active sort key.
func (c *Controller) Visible() []notes.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return notes.SortNotes(notes.FilterByTag(c.notes, c.selectedTag), c.sortKey)
}

// AllTags returns the distinct tags across the full loaded set, not the
// filtered view, for populating the tag-choice control.
func (c *Controller) AllTags() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return notes.AllTags(c.notes)
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := make([]notes.Note, len(c.notes))
	copy(copied, c.notes)
	return Snapshot{
		Notes:       copied,
		SearchTerm:  c.searchTerm,
		SelectedTag: c.selectedTag,
		SortKey:     c.sortKey,
		IsLoading:   c.isLoading,
		Err:         c.err,
	}
}

// Close cancels any pending debounce timer and waits for in-flight
// fetches to settle.
func (c *Controller) Close() {
	c.mu.Lock()
	c.cancelTimerLocked()
	c.mu.Unlock()
	c.inFlight.Wait()
}

// beginFetchLocked stamps a new request sequence number and marks the
// controller loading. The sequence number is how stale responses are
// recognized: an in-flight request is never cancelled, but its result is
// discarded once a newer request has been issued.
func (c *Controller) beginFetchLocked() (uint64, string) {
	c.latestSeq++
	c.isLoading = true
	return c.latestSeq, c.searchTerm
}

func (c *Controller) fetch(ctx context.Context, seq uint64, term string) {
	defer c.inFlight.Done()

	userID, err := c.session.UserID()
	if err != nil {
		c.applyResult(seq, nil, err)
		return
	}
	owner, err := notes.NewUserID(userID)
	if err != nil {
		c.applyResult(seq, nil, err)
		return
	}

	var fetched []notes.Note
	if trimmed := strings.TrimSpace(term); trimmed == "" {
		fetched, err = c.fetcher.List(ctx, owner)
	} else {
		fetched, err = c.fetcher.Search(ctx, owner, trimmed)
	}
	c.applyResult(seq, fetched, err)
}

func (c *Controller) applyResult(seq uint64, fetched []notes.Note, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.latestSeq {
		// A newer request superseded this one; drop the response.
		return
	}
	c.isLoading = false
	if err != nil {
		// Keep the last successfully loaded notes visible.
		c.err = err
		c.logger.Warn("note list fetch failed", zap.Error(err))
		return
	}
	c.err = nil
	c.notes = fetched
}

func (c *Controller) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
