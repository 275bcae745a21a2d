package common

import (
	"context"
	"testing"
)

func TestUserContext_RoundTrip(t *testing.T) {
	ctx := context.Background()

	// Absent by default
	if uc := UserContextFromContext(ctx); uc != nil {
		t.Error("Expected nil UserContext from empty context")
	}

	ctx = WithUserContext(ctx, &UserContext{UserID: "user-123", Source: "jwt"})

	got := UserContextFromContext(ctx)
	if got == nil {
		t.Fatal("Expected non-nil UserContext")
	}
	if got.UserID != "user-123" {
		t.Errorf("Expected user-123, got %s", got.UserID)
	}
}

func TestResolveUserID(t *testing.T) {
	ctx := context.Background()
	if id := ResolveUserID(ctx); id != "default" {
		t.Errorf("ResolveUserID() = %q, want default", id)
	}

	ctx = WithUserContext(ctx, &UserContext{})
	if id := ResolveUserID(ctx); id != "default" {
		t.Errorf("ResolveUserID() with empty UserID = %q, want default", id)
	}

	ctx = WithUserContext(ctx, &UserContext{UserID: "alice"})
	if id := ResolveUserID(ctx); id != "alice" {
		t.Errorf("ResolveUserID() = %q, want alice", id)
	}
}

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc12345")
	if got := CorrelationIDFromContext(ctx); got != "abc12345" {
		t.Errorf("CorrelationIDFromContext() = %q", got)
	}
	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("CorrelationIDFromContext() on empty ctx = %q", got)
	}
}
