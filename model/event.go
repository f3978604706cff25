package model

import "time"

// Event is one entry in the published catalog. Its position in the events
// list is its public handle: keyboards and callback actions address events by
// index, and user registrations store those indices. Deleting an event
// therefore requires the cascade re-index in the catalog package. The ID field
// is a stable uuid stamped at creation and is used for logging only.
type Event struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Time        string     `json:"time"`
	Category    string     `json:"category"`
	TgLink      string     `json:"tg_link,omitempty"`
	TgChatLink  string     `json:"tg_chat_link,omitempty"`
	Official    bool       `json:"official,omitempty"`
	CreatorID   string     `json:"creator_id"`
	CreatorName string     `json:"creator_name"`
	CreatedAt   time.Time  `json:"created_at"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
}

// EventUpdate carries the fields accumulated by an edit dialogue. Nil fields
// are left untouched on the stored record.
type EventUpdate struct {
	Name        *string
	Description *string
	Location    *string
	Time        *string
	TgLink      *string
	TgChatLink  *string
	Category    *string
}

// Category describes one entry of the fixed category set.
type Category struct {
	Key   string
	Name  string
	Emoji string
}

// Categories is the fixed set of event categories, in menu order.
var Categories = []Category{
	{Key: "party", Name: "Parties", Emoji: "🎉"},
	{Key: "outdoor", Name: "Outdoor trips", Emoji: "🌳"},
	{Key: "excursion", Name: "Excursions", Emoji: "🏛️"},
	{Key: "exhibition", Name: "Exhibitions & museums", Emoji: "🖼️"},
	{Key: "networking", Name: "Networking", Emoji: "👋"},
	{Key: "boardgames", Name: "Board games", Emoji: "🎲"},
	{Key: "other", Name: "Other", Emoji: "🔍"},
}

// UnknownCategory is the display fallback for records whose category tag is
// not in the fixed set. Rendering never fails on an unknown tag.
var UnknownCategory = Category{Key: "unknown", Name: "Uncategorized", Emoji: "🔍"}

// CategoryByKey returns the category for key, or UnknownCategory.
func CategoryByKey(key string) Category {
	for _, c := range Categories {
		if c.Key == key {
			return c
		}
	}
	return UnknownCategory
}

// ValidCategory reports whether key belongs to the fixed category set.
func ValidCategory(key string) bool {
	for _, c := range Categories {
		if c.Key == key {
			return true
		}
	}
	return false
}
