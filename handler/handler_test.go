package handler

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"CampusEventBot/catalog"
	"CampusEventBot/dialog"
	"CampusEventBot/metrics"
	"CampusEventBot/repo"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := repo.NewFileStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("error creating file store: %v", err)
	}
	collector, err := metrics.NewCollector()
	if err != nil {
		t.Fatalf("error creating collector: %v", err)
	}
	m := catalog.NewManager(store, catalog.Config{}, zerolog.Nop())
	return New(dialog.NewSessions(), m, nil, collector, "", zerolog.Nop())
}

func TestStartSessionReleasesDisplacedCreationSlot(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	if err := h.catalog.RegisterUser(ctx, "42", "Alice", "Physics"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.catalog.BeginCreation(ctx, "42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.sessions.Start("42", dialog.FamilyEventCreate, dialog.StageEventName)

	s := h.startSession(ctx, "42", dialog.FamilyConsult, dialog.StageConversation)
	if s.Family != dialog.FamilyConsult {
		t.Fatalf("expected a consultation session, got family %v", s.Family)
	}

	if err := h.catalog.BeginCreation(ctx, "42"); err != nil {
		t.Errorf("expected the creation slot to be free again: %v", err)
	}
}

func TestStartSessionKeepsSlotForOtherFamilies(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	if err := h.catalog.RegisterUser(ctx, "42", "Alice", "Physics"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.catalog.BeginCreation(ctx, "42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.sessions.Start("42", dialog.FamilyConsult, dialog.StageConversation)

	h.startSession(ctx, "42", dialog.FamilyRegistration, dialog.StageRegName)

	if err := h.catalog.BeginCreation(ctx, "42"); err == nil {
		t.Error("expected the in-flight creation slot to stay reserved")
	}
}
