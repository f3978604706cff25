package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"CampusEventBot/model"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFileStore(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("error creating file store: %v", err)
	}
	return fs, dir
}

func TestNewFileStoreCreatesBackingFiles(t *testing.T) {
	_, dir := newTestFileStore(t)

	for _, name := range []string{"users.json", "events.json", "pending_events.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs, _ := newTestFileStore(t)
	ctx := context.Background()

	users := map[string]model.User{
		"42": {Name: "Alice", Faculty: "Physics", RegisteredEvents: []int{0}},
	}
	if err := fs.SaveUsers(ctx, users); err != nil {
		t.Fatalf("error saving users: %v", err)
	}
	loaded := fs.LoadUsers(ctx)
	if loaded["42"].Name != "Alice" || loaded["42"].Faculty != "Physics" {
		t.Errorf("unexpected users after reload: %+v", loaded)
	}

	events := []model.Event{{Name: "Hike", Category: "outdoor", CreatorID: "42"}}
	if err := fs.SaveEvents(ctx, events); err != nil {
		t.Fatalf("error saving events: %v", err)
	}
	if got := fs.LoadEvents(ctx); len(got) != 1 || got[0].Name != "Hike" {
		t.Errorf("unexpected events after reload: %+v", got)
	}

	if err := fs.SavePending(ctx, events); err != nil {
		t.Fatalf("error saving pending: %v", err)
	}
	if got := fs.LoadPending(ctx); len(got) != 1 {
		t.Errorf("unexpected pending after reload: %+v", got)
	}
}

func TestFileStoreLoadsEmptyDefaults(t *testing.T) {
	fs, _ := newTestFileStore(t)
	ctx := context.Background()

	if got := fs.LoadUsers(ctx); len(got) != 0 {
		t.Errorf("expected no users, got %+v", got)
	}
	if got := fs.LoadEvents(ctx); got == nil || len(got) != 0 {
		t.Errorf("expected an empty event list, got %+v", got)
	}
}

func TestFileStoreSurvivesCorruptFile(t *testing.T) {
	fs, dir := newTestFileStore(t)
	ctx := context.Background()

	path := filepath.Join(dir, "events.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("error corrupting file: %v", err)
	}

	if got := fs.LoadEvents(ctx); len(got) != 0 {
		t.Errorf("expected a corrupt file to load as empty, got %+v", got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("error rereading file: %v", err)
	}
	if string(raw) != "[]" {
		t.Errorf("expected the corrupt file to be rewritten as empty, got %q", raw)
	}
}

func TestFileStoreRecreatesDeletedFile(t *testing.T) {
	fs, dir := newTestFileStore(t)
	ctx := context.Background()

	path := filepath.Join(dir, "users.json")
	if err := os.Remove(path); err != nil {
		t.Fatalf("error removing file: %v", err)
	}

	if got := fs.LoadUsers(ctx); len(got) != 0 {
		t.Errorf("expected no users, got %+v", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected the file to be recreated: %v", err)
	}
}

func TestLoadDuringSaveSeesWholeCatalog(t *testing.T) {
	fs, _ := newTestFileStore(t)
	ctx := context.Background()

	events := make([]model.Event, 300)
	for i := range events {
		events[i] = model.Event{ID: fmt.Sprintf("id-%d", i), Name: fmt.Sprintf("Event %d", i)}
	}
	if err := fs.SaveEvents(ctx, events); err != nil {
		t.Fatalf("error saving events: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			if err := fs.SaveEvents(ctx, events); err != nil {
				t.Errorf("error saving events: %v", err)
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
			if got := fs.LoadEvents(ctx); len(got) != len(events) {
				t.Fatalf("expected %d events, got %d", len(events), len(got))
			}
		}
	}
}
