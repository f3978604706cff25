package handler

import (
	"fmt"
	"testing"

	"CampusEventBot/catalog"
	"CampusEventBot/model"
)

func indexedEvents(n int) []catalog.IndexedEvent {
	items := make([]catalog.IndexedEvent, n)
	for i := range items {
		items[i] = catalog.IndexedEvent{
			Index: i,
			Event: model.Event{Name: fmt.Sprintf("Event %d", i), Category: "party"},
		}
	}
	return items
}

func TestEventsListKeyboardPagination(t *testing.T) {
	items := indexedEvents(7)

	kb := eventsListKeyboard(items, "party", 0)
	// 5 events, a nav row, and the back row.
	if len(kb.InlineKeyboard) != 7 {
		t.Fatalf("expected 7 rows on the first page, got %d", len(kb.InlineKeyboard))
	}
	nav := kb.InlineKeyboard[5]
	if len(nav) != 1 || nav[0].CallbackData != "page_party_1" {
		t.Errorf("expected a single forward button to page 1, got %+v", nav)
	}

	kb = eventsListKeyboard(items, "party", 1)
	// 2 events, a nav row, and the back row.
	if len(kb.InlineKeyboard) != 4 {
		t.Fatalf("expected 4 rows on the last page, got %d", len(kb.InlineKeyboard))
	}
	nav = kb.InlineKeyboard[2]
	if len(nav) != 1 || nav[0].CallbackData != "page_party_0" {
		t.Errorf("expected a single back button to page 0, got %+v", nav)
	}
}

func TestEventsListKeyboardUsesCatalogIndices(t *testing.T) {
	items := []catalog.IndexedEvent{
		{Index: 3, Event: model.Event{Name: "Rave", Category: "party"}},
	}
	kb := eventsListKeyboard(items, "party", 0)
	if got := kb.InlineKeyboard[0][0].CallbackData; got != "event_3" {
		t.Errorf("expected the button to carry the catalog index, got %q", got)
	}
}

func TestMyEventsKeyboardMarksCreators(t *testing.T) {
	items := []catalog.UserEvent{
		{Index: 0, Event: model.Event{Name: "Mine", Category: "party"}, IsCreator: true},
		{Index: 1, Event: model.Event{Name: "Theirs", Category: "party"}, IsRegistered: true},
	}
	kb := myEventsKeyboard(items, 0)
	if got := kb.InlineKeyboard[0][0].Text; got != "👑 🎉 Mine" {
		t.Errorf("expected the creator crown, got %q", got)
	}
	if got := kb.InlineKeyboard[1][0].Text; got != "🎉 Theirs" {
		t.Errorf("expected no crown on a plain registration, got %q", got)
	}
}

func TestMainMenuKeyboard(t *testing.T) {
	if rows := mainMenuKeyboard(false).InlineKeyboard; len(rows) != 3 {
		t.Errorf("expected 3 rows for a regular user, got %d", len(rows))
	}
	rows := mainMenuKeyboard(true).InlineKeyboard
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows for an admin, got %d", len(rows))
	}
	if rows[3][0].CallbackData != "pending_events" {
		t.Errorf("expected the admin row to open the pending queue, got %q", rows[3][0].CallbackData)
	}
}

func TestCategoriesKeyboard(t *testing.T) {
	rows := categoriesKeyboard().InlineKeyboard
	// 7 categories, "all", the consultation entry, and back.
	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
	if rows[0][0].CallbackData != "category_party" {
		t.Errorf("unexpected first category: %q", rows[0][0].CallbackData)
	}
	if rows[7][0].CallbackData != "category_all" {
		t.Errorf("expected the all-events entry, got %q", rows[7][0].CallbackData)
	}
	if rows[8][0].CallbackData != "consult_ai" {
		t.Errorf("expected the consultation entry, got %q", rows[8][0].CallbackData)
	}
}
