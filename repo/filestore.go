package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"CampusEventBot/model"
)

const (
	usersFile   = "users.json"
	eventsFile  = "events.json"
	pendingFile = "pending_events.json"
)

// FileStore keeps each collection in a JSON document on disk.
type FileStore struct {
	usersPath   string
	eventsPath  string
	pendingPath string
	log         zerolog.Logger
}

// NewFileStore creates a file-backed store under dir, creating the backing
// documents if they do not exist. A failure to create them is the one fatal
// storage error in the system.
func NewFileStore(dir string, log zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating data directory: %w", err)
	}

	fs := &FileStore{
		usersPath:   filepath.Join(dir, usersFile),
		eventsPath:  filepath.Join(dir, eventsFile),
		pendingPath: filepath.Join(dir, pendingFile),
		log:         log,
	}

	templates := map[string]string{
		fs.usersPath:   "{}",
		fs.eventsPath:  "[]",
		fs.pendingPath: "[]",
	}
	for path, template := range templates {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
				return nil, fmt.Errorf("error creating %s: %w", path, err)
			}
		}
	}

	return fs, nil
}

func (fs *FileStore) LoadUsers(ctx context.Context) map[string]model.User {
	users := make(map[string]model.User)
	fs.read(fs.usersPath, &users, func() { users = make(map[string]model.User) })
	return users
}

func (fs *FileStore) SaveUsers(ctx context.Context, users map[string]model.User) error {
	return fs.write(fs.usersPath, users)
}

func (fs *FileStore) LoadEvents(ctx context.Context) []model.Event {
	events := []model.Event{}
	fs.read(fs.eventsPath, &events, func() { events = []model.Event{} })
	return events
}

func (fs *FileStore) SaveEvents(ctx context.Context, events []model.Event) error {
	return fs.write(fs.eventsPath, events)
}

func (fs *FileStore) LoadPending(ctx context.Context) []model.Event {
	pending := []model.Event{}
	fs.read(fs.pendingPath, &pending, func() { pending = []model.Event{} })
	return pending
}

func (fs *FileStore) SavePending(ctx context.Context, pending []model.Event) error {
	return fs.write(fs.pendingPath, pending)
}

// read loads path into out. A missing file yields the default and recreates
// the file; a corrupt file is logged, reset to the default and rewritten.
func (fs *FileStore) read(path string, out any, reset func()) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if werr := fs.write(path, out); werr != nil {
			fs.log.Error().Err(werr).Str("file", path).Msg("error recreating missing data file")
		}
		return
	}
	if err != nil {
		fs.log.Error().Err(err).Str("file", path).Msg("error reading data file")
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		fs.log.Error().Err(err).Str("file", path).Msg("error decoding data file, resetting to empty")
		reset()
		if werr := fs.write(path, out); werr != nil {
			fs.log.Error().Err(werr).Str("file", path).Msg("error rewriting corrupt data file")
		}
	}
}

// write replaces the document at path through a temp file and rename, so a
// concurrent read sees either the old contents or the new, never a partial
// write.
func (fs *FileStore) write(path string, data any) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("error replacing %s: %w", path, err)
	}
	return nil
}
