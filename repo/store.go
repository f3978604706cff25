package repo

import (
	"context"

	"CampusEventBot/model"
)

// Store is the catalog's durable backing: three independent documents holding
// the users map, the published events list, and the pending events list. All
// mutation goes through whole-document read-modify-write; there is no partial
// update primitive. A missing or unreadable document loads as its empty
// default rather than failing the operation that needed it.
type Store interface {
	LoadUsers(ctx context.Context) map[string]model.User
	SaveUsers(ctx context.Context, users map[string]model.User) error

	LoadEvents(ctx context.Context) []model.Event
	SaveEvents(ctx context.Context, events []model.Event) error

	LoadPending(ctx context.Context) []model.Event
	SavePending(ctx context.Context, pending []model.Event) error
}
