package auth

import (
	"context"
	"testing"
	"time"
)

func newTestIssuer(clock func() time.Time, ttl time.Duration) *TokenIssuer {
	return NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        "nexonotes-auth",
		Audience:      "nexonotes-api",
		TokenTTL:      ttl,
		Clock:         clock,
	})
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	issuer := newTestIssuer(func() time.Time { return now }, 30*time.Minute)

	token, expiresIn, err := issuer.IssueSessionToken(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expiresIn != int64((30 * time.Minute).Seconds()) {
		t.Fatalf("unexpected expiry %d", expiresIn)
	}

	subject, err := issuer.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "user-1" {
		t.Fatalf("unexpected subject %q", subject)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	current := time.Unix(1700000000, 0).UTC()
	clock := func() time.Time { return current }
	issuer := newTestIssuer(clock, 10*time.Minute)

	token, _, err := issuer.IssueSessionToken(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	current = current.Add(11 * time.Minute)
	if _, err := issuer.ValidateToken(token); err == nil {
		t.Fatalf("expected an expiry error")
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	clock := func() time.Time { return now }
	issuer := newTestIssuer(clock, 30*time.Minute)
	other := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("other-secret"),
		Issuer:        "nexonotes-auth",
		Audience:      "nexonotes-api",
		Clock:         clock,
	})

	token, _, err := other.IssueSessionToken(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := issuer.ValidateToken(token); err == nil {
		t.Fatalf("expected a signature error")
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	issuer := newTestIssuer(nil, 0)
	if _, _, err := issuer.IssueSessionToken(context.Background(), ""); err == nil {
		t.Fatalf("expected an error for an empty user id")
	}
}

func TestIssueRequiresSigningSecret(t *testing.T) {
	issuer := NewTokenIssuer(TokenIssuerConfig{})
	if _, _, err := issuer.IssueSessionToken(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected an error without a signing secret")
	}
}
