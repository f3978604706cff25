package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"CampusEventBot/model"
)

type mockStore struct {
	users   map[string]model.User
	events  []model.Event
	pending []model.Event

	saveUsersErr  error
	saveEventsErr error
}

func (m *mockStore) LoadUsers(context.Context) map[string]model.User {
	if m.users == nil {
		m.users = map[string]model.User{}
	}
	return m.users
}

func (m *mockStore) SaveUsers(_ context.Context, users map[string]model.User) error {
	if m.saveUsersErr != nil {
		return m.saveUsersErr
	}
	m.users = users
	return nil
}

func (m *mockStore) LoadEvents(context.Context) []model.Event {
	return m.events
}

func (m *mockStore) SaveEvents(_ context.Context, events []model.Event) error {
	if m.saveEventsErr != nil {
		return m.saveEventsErr
	}
	m.events = events
	return nil
}

func (m *mockStore) LoadPending(context.Context) []model.Event {
	return m.pending
}

func (m *mockStore) SavePending(_ context.Context, pending []model.Event) error {
	m.pending = pending
	return nil
}

func newTestManager(store *mockStore, cfg Config) *Manager {
	return NewManager(store, cfg, zerolog.Nop())
}

func TestRegisterUserCreatesProfile(t *testing.T) {
	store := &mockStore{}
	m := newTestManager(store, Config{})

	if err := m.RegisterUser(context.Background(), "42", "Alice", "Physics"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, ok := m.User(context.Background(), "42")
	if !ok {
		t.Fatal("expected user to exist after registration")
	}
	if user.Name != "Alice" || user.Faculty != "Physics" {
		t.Errorf("unexpected profile: %+v", user)
	}
	if user.RegisteredEvents == nil || len(user.RegisteredEvents) != 0 {
		t.Errorf("expected empty registration list, got %v", user.RegisteredEvents)
	}
}

func TestGrantAdmin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("error hashing passphrase: %v", err)
	}
	store := &mockStore{users: map[string]model.User{
		"42": {Name: "Alice"},
	}}
	m := newTestManager(store, Config{AdminPassphraseHash: string(hash)})

	if err := m.GrantAdmin(context.Background(), "42", "wrong"); !errors.Is(err, model.ErrBadPassphrase) {
		t.Errorf("expected ErrBadPassphrase, got %v", err)
	}
	if err := m.GrantAdmin(context.Background(), "99", "hunter2"); !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	if err := m.GrantAdmin(context.Background(), "42", "hunter2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user, _ := m.User(context.Background(), "42"); !user.IsAdmin {
		t.Error("expected admin flag to be set")
	}
}

func TestEventBoundsChecked(t *testing.T) {
	store := &mockStore{events: []model.Event{{Name: "Hike"}}}
	m := newTestManager(store, Config{})

	if _, err := m.Event(context.Background(), 1); !errors.Is(err, model.ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
	if _, err := m.Event(context.Background(), -1); !errors.Is(err, model.ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
	if ev, err := m.Event(context.Background(), 0); err != nil || ev.Name != "Hike" {
		t.Errorf("expected Hike, got %v (%v)", ev, err)
	}
}

func TestEventsByCategory(t *testing.T) {
	store := &mockStore{events: []model.Event{
		{Name: "Rave", Category: "party"},
		{Name: "Hike", Category: "outdoor"},
		{Name: "Ball", Category: "party"},
	}}
	m := newTestManager(store, Config{})

	parties := m.EventsByCategory(context.Background(), "party")
	if len(parties) != 2 {
		t.Fatalf("expected 2 party events, got %d", len(parties))
	}
	if parties[0].Index != 0 || parties[1].Index != 2 {
		t.Errorf("expected catalog indices 0 and 2, got %d and %d", parties[0].Index, parties[1].Index)
	}

	if all := m.EventsByCategory(context.Background(), "all"); len(all) != 3 {
		t.Errorf("expected the whole catalog for \"all\", got %d events", len(all))
	}
}

func TestUserEventsMergesCreatedAndRegistered(t *testing.T) {
	store := &mockStore{
		users: map[string]model.User{
			"42": {Name: "Alice", RegisteredEvents: []int{1}},
		},
		events: []model.Event{
			{Name: "Mine", CreatorID: "42"},
			{Name: "Theirs", CreatorID: "7"},
		},
	}
	m := newTestManager(store, Config{})

	rows := m.UserEvents(context.Background(), "42")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].IsRegistered || rows[0].Index != 1 {
		t.Errorf("expected registration row for index 1 first, got %+v", rows[0])
	}
	if !rows[1].IsCreator || rows[1].Index != 0 {
		t.Errorf("expected creator row for index 0, got %+v", rows[1])
	}
}

func TestUserEventsDropsStaleIndices(t *testing.T) {
	store := &mockStore{
		users: map[string]model.User{
			"42": {Name: "Alice", RegisteredEvents: []int{0, 5}},
		},
		events: []model.Event{{Name: "Hike", CreatorID: "7"}},
	}
	m := newTestManager(store, Config{})

	rows := m.UserEvents(context.Background(), "42")
	if len(rows) != 1 {
		t.Fatalf("expected stale index to be dropped, got %d rows", len(rows))
	}
	if rows[0].Event.Name != "Hike" {
		t.Errorf("unexpected event: %+v", rows[0].Event)
	}
}

// contentionStore flags any overlap between store calls. The manager's mutex
// must make every call, from readers and writers alike, run alone.
type contentionStore struct {
	mockStore

	active  atomic.Int32
	overlap atomic.Bool
}

func (c *contentionStore) enter() func() {
	if c.active.Add(1) > 1 {
		c.overlap.Store(true)
	}
	return func() { c.active.Add(-1) }
}

func (c *contentionStore) LoadUsers(ctx context.Context) map[string]model.User {
	defer c.enter()()
	return c.mockStore.LoadUsers(ctx)
}

func (c *contentionStore) SaveUsers(ctx context.Context, users map[string]model.User) error {
	defer c.enter()()
	return c.mockStore.SaveUsers(ctx, users)
}

func (c *contentionStore) LoadEvents(ctx context.Context) []model.Event {
	defer c.enter()()
	return c.mockStore.LoadEvents(ctx)
}

func (c *contentionStore) SaveEvents(ctx context.Context, events []model.Event) error {
	defer c.enter()()
	return c.mockStore.SaveEvents(ctx, events)
}

func (c *contentionStore) LoadPending(ctx context.Context) []model.Event {
	defer c.enter()()
	return c.mockStore.LoadPending(ctx)
}

func (c *contentionStore) SavePending(ctx context.Context, pending []model.Event) error {
	defer c.enter()()
	return c.mockStore.SavePending(ctx, pending)
}

func TestReadsAndWritesDoNotOverlapOnStore(t *testing.T) {
	store := &contentionStore{mockStore: mockStore{
		events: []model.Event{{ID: "a", Name: "Hike", CreatorID: "1", Category: "sport"}},
	}}
	m := NewManager(store, Config{}, zerolog.Nop())
	ctx := context.Background()

	if err := m.RegisterUser(ctx, "42", "Alice", "Physics"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			m.Events(ctx)
			m.UserEvents(ctx, "42")
			if _, err := m.Event(ctx, 0); err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if _, err := m.Register(ctx, "42", 0); err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if _, err := m.CancelRegistration(ctx, "42", 0); err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	if store.overlap.Load() {
		t.Error("expected store calls to run one at a time")
	}
}
