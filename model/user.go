package model

// User is a registered bot user, keyed in the users document by the
// platform-assigned handle. RegisteredEvents holds indices into the published
// events list; the catalog's delete cascade keeps them valid.
type User struct {
	Name                 string `json:"name"`
	Faculty              string `json:"faculty"`
	IsAdmin              bool   `json:"is_admin"`
	RegisteredEvents     []int  `json:"registered_events"`
	ActiveEventCreations int    `json:"active_event_creations"`
}

// Participant is one row of a creator's participant listing.
type Participant struct {
	ID      string
	Name    string
	Faculty string
}
