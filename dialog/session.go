package dialog

import (
	"sync"

	"CampusEventBot/model"
)

// Family groups the dialogue stages. A user is in at most one stage of at
// most one family at a time.
type Family int

const (
	FamilyNone Family = iota
	FamilyRegistration
	FamilyEventCreate
	FamilyEventEdit
	FamilyConsult
	FamilyAdmin
)

// Stage is one point in a linear input-collection sequence. Creation and edit
// share the event field stages and are told apart by the session's family.
type Stage int

const (
	StageRegName Stage = iota
	StageRegFaculty
	StageEventName
	StageEventDescription
	StageEventLocation
	StageEventTime
	StageEventTgLink
	StageEventTgChatLink
	StageEventCategory
	StageConversation
	StageAdminPassword
)

// Session is the transient per-user dialogue state: the current stage plus
// the draft fields collected so far. It lives in memory only; a process
// restart drops every in-flight dialogue. The catalog store alone is durable.
//
// Handlers run concurrently, so two quick messages from the same user can
// reach the same session on two goroutines. Callers hold the session lock
// for the duration of one dialogue step; that serializes steps per user in
// arrival order.
type Session struct {
	mu sync.Mutex

	Family Family
	Stage  Stage
	Draft  map[string]string

	// Edit family: the index being edited and a snapshot of the original
	// record, used by the keep-current shortcut.
	EventIdx int
	Original model.Event

	// Consult family: the accumulated conversation transcript replayed to
	// the recommendation backend on every turn.
	Transcript string
}

// Lock takes the session for one dialogue step.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session after a step.
func (s *Session) Unlock() { s.mu.Unlock() }

// Sessions tracks in-flight dialogues by user handle.
type Sessions struct {
	mu sync.Mutex
	m  map[string]*Session
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]*Session)}
}

// Get returns the user's active session, if any.
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	return sess, ok
}

// Start replaces any active session for the user with a fresh one at the
// given stage.
func (s *Sessions) Start(id string, family Family, stage Stage) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{Family: family, Stage: stage, Draft: make(map[string]string)}
	s.m[id] = sess
	return sess
}

// Clear ends the user's dialogue.
func (s *Sessions) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}
