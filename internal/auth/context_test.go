package auth

import (
	"context"
	"testing"

	"github.com/userdeck/userdeck/internal/model"
)

func TestSessionContext_RoundTrip(t *testing.T) {
	t.Parallel()

	session := &model.Session{UserID: "user-42"}
	ctx := ContextWithSession(context.Background(), session)

	got := SessionFromContext(ctx)
	if got == nil {
		t.Fatal("expected session in context")
	}
	if got.UserID != "user-42" {
		t.Errorf("expected user-42, got %q", got.UserID)
	}

	if CallerID(ctx) != "user-42" {
		t.Errorf("CallerID mismatch: %q", CallerID(ctx))
	}
}

func TestSessionContext_Missing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if SessionFromContext(ctx) != nil {
		t.Error("expected nil session for empty context")
	}
	if CallerID(ctx) != "" {
		t.Error("expected empty caller ID for empty context")
	}
}
