package handler

import (
	"fmt"

	"github.com/go-telegram/bot/models"

	"CampusEventBot/catalog"
	"CampusEventBot/model"
)

const eventsPerPage = 5

func button(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

func keyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func mainMenuKeyboard(isAdmin bool) *models.InlineKeyboardMarkup {
	rows := [][]models.InlineKeyboardButton{
		{button("🎭 Events", "view_events")},
		{button("📅 My events", "my_events")},
		{button("➕ Register an event", "register_event")},
	}
	if isAdmin {
		rows = append(rows, []models.InlineKeyboardButton{button("🛠️ Pending events", "pending_events")})
	}
	return keyboard(rows...)
}

func categoriesKeyboard() *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for _, c := range model.Categories {
		rows = append(rows, []models.InlineKeyboardButton{
			button(c.Emoji+" "+c.Name, "category_"+c.Key),
		})
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{button("🔍 All events", "category_all")},
		[]models.InlineKeyboardButton{button("🤖 Recommend an event", "consult_ai")},
		[]models.InlineKeyboardButton{button("⬅️ Back", "back_to_main")},
	)
	return keyboard(rows...)
}

func eventsListKeyboard(items []catalog.IndexedEvent, category string, page int) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	start := page * eventsPerPage
	end := min(start+eventsPerPage, len(items))
	for i := start; i < end && i >= 0; i++ {
		c := model.CategoryByKey(items[i].Event.Category)
		rows = append(rows, []models.InlineKeyboardButton{
			button(c.Emoji+" "+items[i].Event.Name, fmt.Sprintf("event_%d", items[i].Index)),
		})
	}

	var nav []models.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, button("◀️ Back", fmt.Sprintf("page_%s_%d", category, page-1)))
	}
	if end < len(items) {
		nav = append(nav, button("Forward ▶️", fmt.Sprintf("page_%s_%d", category, page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, []models.InlineKeyboardButton{button("⬅️ Back to categories", "back_to_categories")})
	return keyboard(rows...)
}

func myEventsKeyboard(items []catalog.UserEvent, page int) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	start := page * eventsPerPage
	end := min(start+eventsPerPage, len(items))
	for i := start; i < end && i >= 0; i++ {
		c := model.CategoryByKey(items[i].Event.Category)
		prefix := ""
		if items[i].IsCreator {
			prefix = "👑 "
		}
		rows = append(rows, []models.InlineKeyboardButton{
			button(prefix+c.Emoji+" "+items[i].Event.Name, fmt.Sprintf("my_event_%d", items[i].Index)),
		})
	}

	var nav []models.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, button("◀️ Back", fmt.Sprintf("my_page_%d", page-1)))
	}
	if end < len(items) {
		nav = append(nav, button("Forward ▶️", fmt.Sprintf("my_page_%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, []models.InlineKeyboardButton{button("🏠 Back to menu", "back_to_main")})
	return keyboard(rows...)
}

func pendingListKeyboard(pending []model.Event, page int) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	start := page * eventsPerPage
	end := min(start+eventsPerPage, len(pending))
	for i := start; i < end && i >= 0; i++ {
		c := model.CategoryByKey(pending[i].Category)
		rows = append(rows, []models.InlineKeyboardButton{
			button(c.Emoji+" "+pending[i].Name, fmt.Sprintf("pending_event_%d", i)),
		})
	}

	var nav []models.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, button("◀️ Back", fmt.Sprintf("pending_page_%d", page-1)))
	}
	if end < len(pending) {
		nav = append(nav, button("Forward ▶️", fmt.Sprintf("pending_page_%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, []models.InlineKeyboardButton{button("🏠 Back to menu", "back_to_main")})
	return keyboard(rows...)
}

// eventTypeRows is the category picker used by the creation and edit
// dialogues' terminal stage.
func eventTypeRows() [][]models.InlineKeyboardButton {
	var rows [][]models.InlineKeyboardButton
	for _, c := range model.Categories {
		rows = append(rows, []models.InlineKeyboardButton{
			button(c.Emoji+" "+c.Name, "event_type_"+c.Key),
		})
	}
	return rows
}

func cancelCreationKeyboard() *models.InlineKeyboardMarkup {
	return keyboard([]models.InlineKeyboardButton{
		button("❌ Cancel event creation", "cancel_event_creation"),
	})
}

func keepCurrentKeyboard() *models.InlineKeyboardMarkup {
	return keyboard([]models.InlineKeyboardButton{
		button("🔄 Keep current", "keep_current"),
	})
}

func endConsultationKeyboard() *models.InlineKeyboardMarkup {
	return keyboard([]models.InlineKeyboardButton{
		button("🔚 End consultation", "end_consultation"),
	})
}

func confirmDeleteKeyboard(idx int) *models.InlineKeyboardMarkup {
	return keyboard([]models.InlineKeyboardButton{
		button("✅ Yes, delete", fmt.Sprintf("confirm_delete_%d", idx)),
		button("❌ No, go back", fmt.Sprintf("my_event_%d", idx)),
	})
}
