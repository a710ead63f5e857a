// Package session holds the authenticated identity for one client
// session. The holder is an explicit handle injected into each
// controller at construction rather than ambient global state.
package session

import (
	"errors"
	"sync"
)

var (
	// ErrSessionActive indicates Begin was called while a session is already active.
	ErrSessionActive = errors.New("session: already active")
	// ErrNoSession indicates no session has been begun.
	ErrNoSession = errors.New("session: none active")
)

// Session is the authenticated identity supplied by the identity service.
type Session struct {
	UserID      string
	DisplayName string
	Email       string
}

// Context owns one session's lifecycle: Begin at login, End at logout.
type Context struct {
	mu      sync.RWMutex
	current *Session
}

// NewContext returns an empty session holder.
func NewContext() *Context {
	return &Context{}
}

// Begin installs the identity for the session's lifetime.
func (c *Context) Begin(identity Session) error {
	if identity.UserID == "" {
		return errors.New("session: user id required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		return ErrSessionActive
	}
	copied := identity
	c.current = &copied
	return nil
}

// End discards the identity. Ending an inactive session is not an error.
func (c *Context) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// Current returns the active identity, if any.
func (c *Context) Current() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return Session{}, false
	}
	return *c.current, true
}

// UserID returns the active user identifier or ErrNoSession.
func (c *Context) UserID() (string, error) {
	identity, ok := c.Current()
	if !ok {
		return "", ErrNoSession
	}
	return identity.UserID, nil
}
