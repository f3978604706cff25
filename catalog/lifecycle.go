package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"CampusEventBot/model"
)

// RegistrationOutcome distinguishes the user-facing results of registering
// for an event. AlreadyRegistered is not an error.
type RegistrationOutcome int

const (
	Registered RegistrationOutcome = iota
	AlreadyRegistered
)

// CancelOutcome distinguishes the user-facing results of cancelling a
// registration. NotRegistered is not an error.
type CancelOutcome int

const (
	Cancelled CancelOutcome = iota
	NotRegistered
)

// BeginCreation reserves a creation slot for the user, enforcing the
// in-flight creation limit. The slot is released by AbortCreation or by a
// completed Submit.
func (m *Manager) BeginCreation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.store.LoadUsers(ctx)
	user, ok := users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	if user.ActiveEventCreations >= m.cfg.MaxActiveCreations {
		return model.ErrCreationLimit
	}
	user.ActiveEventCreations++
	users[id] = user
	return m.store.SaveUsers(ctx, users)
}

// AbortCreation releases a reserved creation slot after a cancelled dialogue.
func (m *Manager) AbortCreation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.store.LoadUsers(ctx)
	user, ok := users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	if user.ActiveEventCreations > 0 {
		user.ActiveEventCreations--
	}
	users[id] = user
	return m.store.SaveUsers(ctx, users)
}

// Submit turns a completed creation draft into a catalog entry. It stamps
// creator identity, a stable id and the creation time, normalizes links, and
// decides direct publication versus the pending queue: with moderation on,
// only admin submissions publish directly. The returned bool reports whether
// the event was published.
func (m *Manager) Submit(ctx context.Context, creatorID string, ev model.Event) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.store.LoadUsers(ctx)
	user, ok := users[creatorID]
	if !ok {
		return false, model.ErrUserNotFound
	}

	ev.ID = uuid.NewString()
	ev.CreatorID = creatorID
	ev.CreatorName = user.Name
	ev.CreatedAt = time.Now()
	ev.Official = user.IsAdmin
	ev.TgLink = normalizeLink(ev.TgLink)
	ev.TgChatLink = normalizeLink(ev.TgChatLink)

	published := !m.cfg.Moderation || user.IsAdmin
	if published {
		events := append(m.store.LoadEvents(ctx), ev)
		if err := m.store.SaveEvents(ctx, events); err != nil {
			return false, err
		}
	} else {
		pending := append(m.store.LoadPending(ctx), ev)
		if err := m.store.SavePending(ctx, pending); err != nil {
			return false, err
		}
	}

	if user.ActiveEventCreations > 0 {
		user.ActiveEventCreations--
		users[creatorID] = user
		if err := m.store.SaveUsers(ctx, users); err != nil {
			return published, err
		}
	}

	m.log.Info().Str("event_id", ev.ID).Str("creator", creatorID).Bool("published", published).Msg("event submitted")
	return published, nil
}

// Approve moves the pending event at pendingIdx into the published catalog.
// The event receives a new index at the end of the events list; its pending
// index is not stable across this operation.
func (m *Manager) Approve(ctx context.Context, pendingIdx int) (int, model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := m.store.LoadPending(ctx)
	if pendingIdx < 0 || pendingIdx >= len(pending) {
		return 0, model.Event{}, model.ErrPendingNotFound
	}
	ev := pending[pendingIdx]
	pending = append(pending[:pendingIdx], pending[pendingIdx+1:]...)

	events := append(m.store.LoadEvents(ctx), ev)
	newIdx := len(events) - 1

	if err := m.store.SaveEvents(ctx, events); err != nil {
		return 0, model.Event{}, err
	}
	if err := m.store.SavePending(ctx, pending); err != nil {
		return 0, model.Event{}, err
	}

	m.log.Info().Str("event_id", ev.ID).Int("index", newIdx).Msg("pending event approved")
	return newIdx, ev, nil
}

// Reject discards the pending event at pendingIdx.
func (m *Manager) Reject(ctx context.Context, pendingIdx int) (model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := m.store.LoadPending(ctx)
	if pendingIdx < 0 || pendingIdx >= len(pending) {
		return model.Event{}, model.ErrPendingNotFound
	}
	ev := pending[pendingIdx]
	pending = append(pending[:pendingIdx], pending[pendingIdx+1:]...)

	if err := m.store.SavePending(ctx, pending); err != nil {
		return model.Event{}, err
	}

	m.log.Info().Str("event_id", ev.ID).Msg("pending event rejected")
	return ev, nil
}

// Edit merges upd over the published event at idx and stamps the edit time.
// Only the creator may edit; authorization is re-checked against fresh data,
// never carried over from an earlier dialogue step.
func (m *Manager) Edit(ctx context.Context, idx int, userID string, upd model.EventUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.store.LoadEvents(ctx)
	if idx < 0 || idx >= len(events) {
		return model.ErrEventNotFound
	}
	if events[idx].CreatorID != userID {
		return model.ErrNotCreator
	}

	ev := events[idx]
	if upd.Name != nil {
		ev.Name = *upd.Name
	}
	if upd.Description != nil {
		ev.Description = *upd.Description
	}
	if upd.Location != nil {
		ev.Location = *upd.Location
	}
	if upd.Time != nil {
		ev.Time = *upd.Time
	}
	if upd.TgLink != nil {
		ev.TgLink = *upd.TgLink
	}
	if upd.TgChatLink != nil {
		ev.TgChatLink = *upd.TgChatLink
	}
	if upd.Category != nil {
		ev.Category = *upd.Category
	}
	now := time.Now()
	ev.EditedAt = &now
	events[idx] = ev

	return m.store.SaveEvents(ctx, events)
}

// Delete removes the published event at idx and repairs every user's
// registration list: the deleted index is dropped and every surviving index
// greater than it is decremented.
func (m *Manager) Delete(ctx context.Context, idx int, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.store.LoadEvents(ctx)
	if idx < 0 || idx >= len(events) {
		return model.ErrEventNotFound
	}
	if events[idx].CreatorID != userID {
		return model.ErrNotCreator
	}

	removed := events[idx]
	events = append(events[:idx], events[idx+1:]...)

	users := m.store.LoadUsers(ctx)
	for id, user := range users {
		repaired := user.RegisteredEvents[:0]
		for _, reg := range user.RegisteredEvents {
			switch {
			case reg == idx:
				// registration for the deleted event disappears
			case reg > idx:
				repaired = append(repaired, reg-1)
			default:
				repaired = append(repaired, reg)
			}
		}
		user.RegisteredEvents = repaired
		users[id] = user
	}

	if err := m.store.SaveEvents(ctx, events); err != nil {
		return err
	}
	if err := m.store.SaveUsers(ctx, users); err != nil {
		return err
	}

	m.log.Info().Str("event_id", removed.ID).Int("index", idx).Msg("event deleted")
	return nil
}

// Register adds an event index to the user's registration list. The creator
// is refused: creators are implicitly attending. Registering twice is
// idempotent and reported as AlreadyRegistered.
func (m *Manager) Register(ctx context.Context, userID string, idx int) (RegistrationOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.store.LoadEvents(ctx)
	if idx < 0 || idx >= len(events) {
		return 0, model.ErrEventNotFound
	}
	if events[idx].CreatorID == userID {
		return 0, model.ErrCreator
	}

	users := m.store.LoadUsers(ctx)
	user, ok := users[userID]
	if !ok {
		return 0, model.ErrUserNotFound
	}
	for _, reg := range user.RegisteredEvents {
		if reg == idx {
			return AlreadyRegistered, nil
		}
	}
	user.RegisteredEvents = append(user.RegisteredEvents, idx)
	users[userID] = user
	if err := m.store.SaveUsers(ctx, users); err != nil {
		return 0, err
	}
	return Registered, nil
}

// CancelRegistration removes an event index from the user's registration
// list. The creator cannot cancel their own authorship; cancelling a
// registration that does not exist is reported as NotRegistered.
func (m *Manager) CancelRegistration(ctx context.Context, userID string, idx int) (CancelOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.store.LoadEvents(ctx)
	if idx < 0 || idx >= len(events) {
		return 0, model.ErrEventNotFound
	}
	if events[idx].CreatorID == userID {
		return 0, model.ErrCreator
	}

	users := m.store.LoadUsers(ctx)
	user, ok := users[userID]
	if !ok {
		return 0, model.ErrUserNotFound
	}
	for i, reg := range user.RegisteredEvents {
		if reg == idx {
			user.RegisteredEvents = append(user.RegisteredEvents[:i], user.RegisteredEvents[i+1:]...)
			users[userID] = user
			if err := m.store.SaveUsers(ctx, users); err != nil {
				return 0, err
			}
			return Cancelled, nil
		}
	}
	return NotRegistered, nil
}

// Participants lists everyone registered for the event at idx, sorted by
// display name. Only the creator may ask.
func (m *Manager) Participants(ctx context.Context, idx int, requesterID string) ([]model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.store.LoadEvents(ctx)
	if idx < 0 || idx >= len(events) {
		return nil, model.ErrEventNotFound
	}
	if events[idx].CreatorID != requesterID {
		return nil, model.ErrNotCreator
	}

	var out []model.Participant
	for id, user := range m.store.LoadUsers(ctx) {
		for _, reg := range user.RegisteredEvents {
			if reg == idx {
				out = append(out, model.Participant{ID: id, Name: user.Name, Faculty: user.Faculty})
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// normalizeLink rewrites bare t.me paths and @handles into full https links.
// Empty links stay empty.
func normalizeLink(link string) string {
	if link == "" {
		return ""
	}
	if strings.HasPrefix(link, "https://t.me/") || strings.HasPrefix(link, "https://telegram.me/") {
		return link
	}
	if strings.HasPrefix(link, "t.me/") || strings.HasPrefix(link, "telegram.me/") {
		return "https://" + link
	}
	return "https://t.me/" + strings.TrimPrefix(link, "@")
}
