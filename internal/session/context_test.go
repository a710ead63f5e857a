package session

import (
	"errors"
	"testing"
)

func TestBeginCurrentEnd(t *testing.T) {
	holder := NewContext()

	if _, ok := holder.Current(); ok {
		t.Fatalf("fresh holder should have no session")
	}
	if _, err := holder.UserID(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	identity := Session{UserID: "user-1", DisplayName: "Alice", Email: "alice@example.com"}
	if err := holder.Begin(identity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	current, ok := holder.Current()
	if !ok {
		t.Fatalf("expected an active session")
	}
	if current != identity {
		t.Fatalf("unexpected identity %+v", current)
	}

	userID, err := holder.UserID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("unexpected user id %q", userID)
	}

	holder.End()
	if _, ok := holder.Current(); ok {
		t.Fatalf("session should be gone after End")
	}
}

func TestBeginTwiceFails(t *testing.T) {
	holder := NewContext()
	if err := holder.Begin(Session{UserID: "user-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := holder.Begin(Session{UserID: "user-2"}); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
}

func TestBeginRequiresUserID(t *testing.T) {
	holder := NewContext()
	if err := holder.Begin(Session{}); err == nil {
		t.Fatalf("expected an error for an empty user id")
	}
}

func TestEndWithoutSessionIsHarmless(t *testing.T) {
	holder := NewContext()
	holder.End()
	if err := holder.Begin(Session{UserID: "user-1"}); err != nil {
		t.Fatalf("unexpected error after redundant End: %v", err)
	}
}
