package repo

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"CampusEventBot/model"
)

const (
	usersRef   = "users"
	eventsRef  = "events"
	pendingRef = "pending_events"
)

// FirebaseStore keeps the three catalog documents in Firebase Realtime
// Database, one node per collection. Like the file backend, every collection
// is read and written as a whole document.
type FirebaseStore struct {
	app    *firebase.App
	client *db.Client
	log    zerolog.Logger
}

// NewFirebaseStore creates a Firebase-backed store.
func NewFirebaseStore(ctx context.Context, serviceAccountKeyPath, databaseURL string, log zerolog.Logger) (*FirebaseStore, error) {
	opt := option.WithCredentialsFile(serviceAccountKeyPath)

	config := &firebase.Config{
		DatabaseURL: databaseURL,
	}
	app, err := firebase.NewApp(ctx, config, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting database client: %w", err)
	}

	return &FirebaseStore{
		app:    app,
		client: client,
		log:    log,
	}, nil
}

func (s *FirebaseStore) LoadUsers(ctx context.Context) map[string]model.User {
	var users map[string]model.User
	if err := s.client.NewRef(usersRef).Get(ctx, &users); err != nil {
		s.log.Error().Err(err).Str("ref", usersRef).Msg("error reading users, treating as empty")
	}
	if users == nil {
		users = make(map[string]model.User)
	}
	return users
}

func (s *FirebaseStore) SaveUsers(ctx context.Context, users map[string]model.User) error {
	if err := s.client.NewRef(usersRef).Set(ctx, users); err != nil {
		return fmt.Errorf("error writing users: %w", err)
	}
	return nil
}

func (s *FirebaseStore) LoadEvents(ctx context.Context) []model.Event {
	return s.loadList(ctx, eventsRef)
}

func (s *FirebaseStore) SaveEvents(ctx context.Context, events []model.Event) error {
	if err := s.client.NewRef(eventsRef).Set(ctx, events); err != nil {
		return fmt.Errorf("error writing events: %w", err)
	}
	return nil
}

func (s *FirebaseStore) LoadPending(ctx context.Context) []model.Event {
	return s.loadList(ctx, pendingRef)
}

func (s *FirebaseStore) SavePending(ctx context.Context, pending []model.Event) error {
	if err := s.client.NewRef(pendingRef).Set(ctx, pending); err != nil {
		return fmt.Errorf("error writing pending events: %w", err)
	}
	return nil
}

func (s *FirebaseStore) loadList(ctx context.Context, ref string) []model.Event {
	var events []model.Event
	if err := s.client.NewRef(ref).Get(ctx, &events); err != nil {
		s.log.Error().Err(err).Str("ref", ref).Msg("error reading events, treating as empty")
	}
	if events == nil {
		events = []model.Event{}
	}
	return events
}
