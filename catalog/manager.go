package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"CampusEventBot/model"
	"CampusEventBot/repo"
)

// Manager owns all catalog mutation. Every operation is a complete
// load→mutate→save cycle over the backing store; mu serializes those cycles
// so concurrent update handlers cannot interleave read-modify-write on the
// same collection. One lock covers all three collections because the delete
// cascade mutates events and users together.
type Manager struct {
	store repo.Store
	cfg   Config
	log   zerolog.Logger
	mu    sync.Mutex
}

// Config holds catalog policy knobs.
type Config struct {
	// AdminPassphraseHash is the bcrypt hash the /admin passphrase is
	// checked against.
	AdminPassphraseHash string
	// Moderation queues non-admin submissions as pending instead of
	// publishing them directly.
	Moderation bool
	// MaxActiveCreations bounds how many creation dialogues a user may
	// have in flight.
	MaxActiveCreations int
}

// NewManager creates a catalog manager over store.
func NewManager(store repo.Store, cfg Config, log zerolog.Logger) *Manager {
	if cfg.MaxActiveCreations <= 0 {
		cfg.MaxActiveCreations = 1
	}
	return &Manager{store: store, cfg: cfg, log: log}
}

// User returns the stored record for id.
func (m *Manager) User(ctx context.Context, id string) (model.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.store.LoadUsers(ctx)[id]
	return u, ok
}

// SaveUser persists a new or updated user record.
func (m *Manager) SaveUser(ctx context.Context, id string, user model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.store.LoadUsers(ctx)
	users[id] = user
	return m.store.SaveUsers(ctx, users)
}

// RegisterUser creates the profile record a completed registration dialogue
// produced.
func (m *Manager) RegisterUser(ctx context.Context, id, name, faculty string) error {
	return m.SaveUser(ctx, id, model.User{
		Name:             name,
		Faculty:          faculty,
		RegisteredEvents: []int{},
	})
}

// GrantAdmin flips the admin flag on an existing user record if the
// passphrase matches. Users without a prior record must register first.
func (m *Manager) GrantAdmin(ctx context.Context, id, passphrase string) error {
	if bcrypt.CompareHashAndPassword([]byte(m.cfg.AdminPassphraseHash), []byte(passphrase)) != nil {
		return model.ErrBadPassphrase
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.store.LoadUsers(ctx)
	user, ok := users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	user.IsAdmin = true
	users[id] = user
	return m.store.SaveUsers(ctx, users)
}

// Events returns the published catalog.
func (m *Manager) Events(ctx context.Context) []model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.LoadEvents(ctx)
}

// Event returns the published event at idx.
func (m *Manager) Event(ctx context.Context, idx int) (model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.store.LoadEvents(ctx)
	if idx < 0 || idx >= len(events) {
		return model.Event{}, model.ErrEventNotFound
	}
	return events[idx], nil
}

// IndexedEvent pairs an event with its catalog index, the handle keyboards
// and registrations use.
type IndexedEvent struct {
	Index int
	Event model.Event
}

// EventsByCategory returns published events carrying the given category tag,
// or the whole catalog for the "all" pseudo-category.
func (m *Manager) EventsByCategory(ctx context.Context, category string) []IndexedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []IndexedEvent
	for i, e := range m.store.LoadEvents(ctx) {
		if category == "all" || e.Category == category {
			out = append(out, IndexedEvent{Index: i, Event: e})
		}
	}
	return out
}

// Pending returns the queue of events awaiting approval.
func (m *Manager) Pending(ctx context.Context) []model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.LoadPending(ctx)
}

// PendingAt returns the pending event at idx.
func (m *Manager) PendingAt(ctx context.Context, idx int) (model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := m.store.LoadPending(ctx)
	if idx < 0 || idx >= len(pending) {
		return model.Event{}, model.ErrPendingNotFound
	}
	return pending[idx], nil
}

// UserEvent is one row of a user's "my events" view.
type UserEvent struct {
	Index        int
	Event        model.Event
	IsCreator    bool
	IsRegistered bool
}

// UserEvents merges the events a user registered for with the events they
// created. Registration indices that fall outside the catalog are dropped
// and logged.
func (m *Manager) UserEvents(ctx context.Context, id string) []UserEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.store.LoadUsers(ctx)
	events := m.store.LoadEvents(ctx)

	var out []UserEvent
	seen := make(map[int]bool)

	if user, ok := users[id]; ok {
		for _, idx := range user.RegisteredEvents {
			if idx < 0 || idx >= len(events) {
				m.log.Warn().Int("index", idx).Str("user", id).Msg("dropping stale registration index")
				continue
			}
			out = append(out, UserEvent{
				Index:        idx,
				Event:        events[idx],
				IsCreator:    events[idx].CreatorID == id,
				IsRegistered: true,
			})
			seen[idx] = true
		}
	}

	for i, e := range events {
		if e.CreatorID == id && !seen[i] {
			out = append(out, UserEvent{Index: i, Event: e, IsCreator: true})
		}
	}

	return out
}
