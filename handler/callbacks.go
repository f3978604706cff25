package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"CampusEventBot/catalog"
	"CampusEventBot/dialog"
	"CampusEventBot/model"
)

// handleCallback dispatches a button press. Exact actions first, then
// prefix-matched parameterized actions; longer prefixes are tried before the
// shorter prefixes they contain.
func (h *Handler) handleCallback(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery) {
	userID := strconv.FormatInt(cq.From.ID, 10)
	data := cq.Data

	switch data {
	case "view_events", "back_to_categories", "back_to_events":
		h.answer(ctx, b, cq, "")
		h.editCaption(ctx, b, cq, "🎭 Choose an event category:", categoriesKeyboard())
		return
	case "back_to_main":
		h.answer(ctx, b, cq, "")
		h.editCaption(ctx, b, cq, "🏠 Main menu", h.mainMenu(ctx, userID))
		return
	case "my_events":
		h.answer(ctx, b, cq, "")
		h.editCaption(ctx, b, cq, "📅 My events:", myEventsKeyboard(h.catalog.UserEvents(ctx, userID), 0))
		return
	case "register_event":
		h.startCreation(ctx, b, cq, userID)
		return
	case "cancel_event_creation":
		h.cancelCreation(ctx, b, cq, userID)
		return
	case "consult_ai":
		h.startConsultation(ctx, b, cq, userID)
		return
	case "end_consultation":
		h.answer(ctx, b, cq, "")
		h.sessions.Clear(userID)
		h.sendToChat(ctx, b, cq, "🔚 Consultation ended.", h.mainMenu(ctx, userID))
		return
	case "keep_current", "keep_category":
		h.keepCurrent(ctx, b, cq, userID)
		return
	case "pending_events":
		h.showPendingList(ctx, b, cq, userID)
		return
	case "none":
		h.answer(ctx, b, cq, "")
		return
	}

	prefixes := []struct {
		prefix string
		fn     func(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string)
	}{
		{"pending_page_", h.pendingPage},
		{"pending_event_", h.showPendingEvent},
		{"approve_event_", h.approveEvent},
		{"reject_event_", h.rejectEvent},
		{"register_for_event_", h.registerForEvent},
		{"cancel_registration_", h.cancelRegistration},
		{"confirm_delete_", h.confirmDelete},
		{"delete_event_", h.deleteEvent},
		{"edit_event_", h.editEvent},
		{"view_participants_", h.viewParticipants},
		{"creator_info_", h.creatorInfo},
		{"event_type_", h.pickEventType},
		{"category_", h.showCategory},
		{"my_page_", h.myPage},
		{"my_event_", h.showMyEvent},
		{"page_", h.eventsPage},
		{"event_", h.showEvent},
	}
	for _, r := range prefixes {
		if strings.HasPrefix(data, r.prefix) {
			r.fn(ctx, b, cq, userID, strings.TrimPrefix(data, r.prefix))
			return
		}
	}

	h.answer(ctx, b, cq, "")
	h.log.Debug().Str("data", data).Msg("unrecognized callback action")
}

func (h *Handler) mainMenu(ctx context.Context, userID string) *models.InlineKeyboardMarkup {
	isAdmin := false
	if user, ok := h.catalog.User(ctx, userID); ok {
		isAdmin = user.IsAdmin
	}
	return mainMenuKeyboard(isAdmin)
}

// sendToChat sends a menu photo message into the chat the button was pressed
// in.
func (h *Handler) sendToChat(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, caption string, kb models.ReplyMarkup) {
	if msg := cq.Message.Message; msg != nil {
		h.sendMenuPhoto(ctx, b, msg.Chat.ID, caption, kb)
	}
}

func (h *Handler) sendTextToChat(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, text string, kb models.ReplyMarkup) {
	if msg := cq.Message.Message; msg != nil {
		h.sendText(ctx, b, msg.Chat.ID, text, kb)
	}
}

func parseIndex(arg string) (int, bool) {
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// --- browsing ---

func (h *Handler) eventsPage(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")
	// arg is "<category>_<page>"; the category key never contains an
	// underscore.
	cut := strings.LastIndex(arg, "_")
	if cut < 0 {
		return
	}
	category := arg[:cut]
	page, ok := parseIndex(arg[cut+1:])
	if !ok {
		return
	}
	h.editKeyboard(ctx, b, cq, eventsListKeyboard(h.catalog.EventsByCategory(ctx, category), category, page))
}

func (h *Handler) showCategory(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")

	caption := "🔍 All events:"
	if arg != "all" {
		c := model.CategoryByKey(arg)
		caption = c.Emoji + " " + c.Name + ":"
	}

	items := h.catalog.EventsByCategory(ctx, arg)
	if len(items) == 0 {
		caption += "\n\nNothing here yet."
	}
	h.editCaption(ctx, b, cq, caption, eventsListKeyboard(items, arg, 0))
}

func (h *Handler) myPage(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")
	page, ok := parseIndex(arg)
	if !ok {
		return
	}
	h.editKeyboard(ctx, b, cq, myEventsKeyboard(h.catalog.UserEvents(ctx, userID), page))
}

func (h *Handler) showEvent(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")
	idx, ok := parseIndex(arg)
	if !ok {
		return
	}

	ev, err := h.catalog.Event(ctx, idx)
	if err != nil {
		h.editCaption(ctx, b, cq, "⚠️ Event not found", categoriesKeyboard())
		return
	}

	var rows [][]models.InlineKeyboardButton
	if ev.CreatorID == userID {
		rows = append(rows, []models.InlineKeyboardButton{
			button("👑 You created this event", fmt.Sprintf("creator_info_%d", idx)),
		})
	} else {
		rows = append(rows, []models.InlineKeyboardButton{
			button("✅ Register", fmt.Sprintf("register_for_event_%d", idx)),
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{button("⬅️ Back to the list", "back_to_events")})

	h.editCaption(ctx, b, cq, FormatEventCaption(ev, true), keyboard(rows...))
}

func (h *Handler) showMyEvent(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")
	idx, ok := parseIndex(arg)
	if !ok {
		return
	}

	ev, err := h.catalog.Event(ctx, idx)
	if err != nil {
		h.editCaption(ctx, b, cq, "⚠️ Event not found", h.mainMenu(ctx, userID))
		return
	}

	isRegistered := false
	if user, ok := h.catalog.User(ctx, userID); ok {
		for _, reg := range user.RegisteredEvents {
			if reg == idx {
				isRegistered = true
				break
			}
		}
	}

	var rows [][]models.InlineKeyboardButton
	switch {
	case ev.CreatorID == userID:
		rows = append(rows,
			[]models.InlineKeyboardButton{button("👑 You created this event", fmt.Sprintf("creator_info_%d", idx))},
			[]models.InlineKeyboardButton{button("✏️ Edit event", fmt.Sprintf("edit_event_%d", idx))},
			[]models.InlineKeyboardButton{button("👥 Participant list", fmt.Sprintf("view_participants_%d", idx))},
			[]models.InlineKeyboardButton{button("🗑️ Delete event", fmt.Sprintf("delete_event_%d", idx))},
		)
	case isRegistered:
		rows = append(rows, []models.InlineKeyboardButton{
			button("❌ Cancel registration", fmt.Sprintf("cancel_registration_%d", idx)),
		})
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{button("📅 Back to my events", "my_events")},
		[]models.InlineKeyboardButton{button("🏠 Back to menu", "back_to_main")},
	)

	h.editCaption(ctx, b, cq, FormatEventCaption(ev, true), keyboard(rows...))
}

func (h *Handler) creatorInfo(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "You are the creator of this event")
}

// --- registration for events ---

func (h *Handler) registerForEvent(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")
	idx, ok := parseIndex(arg)
	if !ok {
		return
	}

	outcome, err := h.catalog.Register(ctx, userID, idx)
	menu := h.mainMenu(ctx, userID)
	switch {
	case errors.Is(err, model.ErrEventNotFound):
		h.sendToChat(ctx, b, cq, "⚠️ Event not found", menu)
	case errors.Is(err, model.ErrCreator):
		h.sendToChat(ctx, b, cq, "ℹ️ You are the creator of this event and are registered automatically.", menu)
	case errors.Is(err, model.ErrUserNotFound):
		h.sendToChat(ctx, b, cq, "⚠️ Please register first with /start.", menu)
	case err != nil:
		h.log.Error().Err(err).Str("user", userID).Msg("error registering for event")
		h.sendToChat(ctx, b, cq, "⚠️ Something went wrong, please try again.", menu)
	case outcome == catalog.AlreadyRegistered:
		h.sendToChat(ctx, b, cq, "ℹ️ You are already registered for this event", menu)
	default:
		ev, evErr := h.catalog.Event(ctx, idx)
		caption := "✅ You are registered for \"" + ev.Name + "\"!"
		if evErr == nil {
			if ev.TgLink != "" {
				caption += "\n\n🔗 Telegram channel: " + ev.TgLink
			}
			if ev.TgChatLink != "" {
				caption += "\n💬 Telegram chat: " + ev.TgChatLink
			}
		}
		h.sendToChat(ctx, b, cq, caption, menu)
	}
}

func (h *Handler) cancelRegistration(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")
	idx, ok := parseIndex(arg)
	if !ok {
		return
	}

	ev, evErr := h.catalog.Event(ctx, idx)
	outcome, err := h.catalog.CancelRegistration(ctx, userID, idx)
	menu := h.mainMenu(ctx, userID)
	switch {
	case errors.Is(err, model.ErrEventNotFound) || evErr != nil:
		h.sendToChat(ctx, b, cq, "⚠️ Event not found", menu)
	case errors.Is(err, model.ErrCreator):
		h.sendToChat(ctx, b, cq, "⚠️ The event creator cannot cancel their registration", menu)
	case err != nil:
		h.log.Error().Err(err).Str("user", userID).Msg("error cancelling registration")
		h.sendToChat(ctx, b, cq, "⚠️ Something went wrong, please try again.", menu)
	case outcome == catalog.NotRegistered:
		h.sendToChat(ctx, b, cq, "ℹ️ You were not registered for this event", menu)
	default:
		h.sendToChat(ctx, b, cq, "✅ Registration for \""+ev.Name+"\" cancelled", menu)
	}
}

// --- creation, edit, delete ---

func (h *Handler) startCreation(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID string) {
	err := h.catalog.BeginCreation(ctx, userID)
	switch {
	case errors.Is(err, model.ErrCreationLimit):
		h.answer(ctx, b, cq, "⚠️ You already created an event, you cannot create another one.")
		return
	case errors.Is(err, model.ErrUserNotFound):
		h.answer(ctx, b, cq, "")
		h.sendTextToChat(ctx, b, cq, "⚠️ Please register first with /start.", nil)
		return
	case err != nil:
		h.log.Error().Err(err).Str("user", userID).Msg("error starting event creation")
		h.answer(ctx, b, cq, "⚠️ Something went wrong, please try again.")
		return
	}

	h.answer(ctx, b, cq, "")
	s := h.startSession(ctx, userID, dialog.FamilyEventCreate, dialog.StageEventName)
	s.Lock()
	prompt, kb := h.stagePrompt(s), h.stageKeyboard(s)
	s.Unlock()
	h.sendTextToChat(ctx, b, cq, prompt, kb)
}

func (h *Handler) cancelCreation(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID string) {
	s, ok := h.sessions.Get(userID)
	if !ok {
		h.answer(ctx, b, cq, "")
		return
	}
	s.Lock()
	family := s.Family
	s.Unlock()
	if family != dialog.FamilyEventCreate {
		h.answer(ctx, b, cq, "")
		return
	}
	h.sessions.Clear(userID)
	if err := h.catalog.AbortCreation(ctx, userID); err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("error releasing creation slot")
	}
	h.answer(ctx, b, cq, "Event creation cancelled")
	h.sendToChat(ctx, b, cq, "❌ Event creation cancelled", h.mainMenu(ctx, userID))
}

func (h *Handler) pickEventType(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")
	s, ok := h.sessions.Get(userID)
	if !ok {
		return
	}
	s.Lock()
	defer s.Unlock()
	if s.Stage != dialog.StageEventCategory {
		return
	}
	if s.Family != dialog.FamilyEventCreate && s.Family != dialog.FamilyEventEdit {
		return
	}

	res, ok := dialog.Advance(s, arg)
	if !ok {
		return
	}
	if res.Invalid != "" {
		h.sendTextToChat(ctx, b, cq, res.Invalid, h.stageKeyboard(s))
		return
	}

	h.collector.DialogStep(familyName(s.Family))
	if msg := cq.Message.Message; msg != nil && res.Done {
		h.completeDialogue(ctx, b, s, userID, msg.Chat.ID)
	}
}

func (h *Handler) keepCurrent(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID string) {
	h.answer(ctx, b, cq, "")
	s, ok := h.sessions.Get(userID)
	if !ok {
		return
	}
	s.Lock()
	defer s.Unlock()

	res, ok := dialog.KeepCurrent(s)
	if !ok {
		return
	}

	h.collector.DialogStep(familyName(s.Family))
	msg := cq.Message.Message
	if msg == nil {
		return
	}
	if res.Done {
		h.completeDialogue(ctx, b, s, userID, msg.Chat.ID)
		return
	}
	h.sendStagePrompt(ctx, b, msg.Chat.ID, s)
}

func (h *Handler) editEvent(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")
	idx, ok := parseIndex(arg)
	if !ok {
		return
	}

	ev, err := h.catalog.Event(ctx, idx)
	if err != nil {
		h.sendTextToChat(ctx, b, cq, "⚠️ Event not found", nil)
		return
	}
	if ev.CreatorID != userID {
		h.sendTextToChat(ctx, b, cq, "⚠️ You are not the creator of this event", nil)
		return
	}

	s := h.startSession(ctx, userID, dialog.FamilyEventEdit, dialog.StageEventName)
	s.Lock()
	s.EventIdx = idx
	s.Original = ev
	prompt, kb := h.stagePrompt(s), h.stageKeyboard(s)
	s.Unlock()
	h.sendTextToChat(ctx, b, cq, prompt, kb)
}

func (h *Handler) deleteEvent(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")
	idx, ok := parseIndex(arg)
	if !ok {
		return
	}

	ev, err := h.catalog.Event(ctx, idx)
	if err != nil {
		h.sendTextToChat(ctx, b, cq, "⚠️ Event not found", nil)
		return
	}
	if ev.CreatorID != userID {
		h.sendTextToChat(ctx, b, cq, "⚠️ Only the event creator may delete it", nil)
		return
	}

	h.editCaption(ctx, b, cq,
		"❓ Are you sure you want to delete \""+ev.Name+"\"?\n\nThis cannot be undone!",
		confirmDeleteKeyboard(idx))
}

func (h *Handler) confirmDelete(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")
	idx, ok := parseIndex(arg)
	if !ok {
		return
	}

	ev, evErr := h.catalog.Event(ctx, idx)
	err := h.catalog.Delete(ctx, idx, userID)
	menu := h.mainMenu(ctx, userID)
	switch {
	case errors.Is(err, model.ErrEventNotFound) || evErr != nil:
		h.sendTextToChat(ctx, b, cq, "⚠️ Event not found", nil)
	case errors.Is(err, model.ErrNotCreator):
		h.sendTextToChat(ctx, b, cq, "⚠️ Only the event creator may delete it", nil)
	case err != nil:
		h.log.Error().Err(err).Str("user", userID).Msg("error deleting event")
		h.editCaption(ctx, b, cq, "⚠️ Could not delete the event", menu)
	default:
		h.editCaption(ctx, b, cq, "✅ Event \""+ev.Name+"\" deleted", menu)
	}
}

func (h *Handler) viewParticipants(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	h.answer(ctx, b, cq, "")
	idx, ok := parseIndex(arg)
	if !ok {
		return
	}

	participants, err := h.catalog.Participants(ctx, idx, userID)
	switch {
	case errors.Is(err, model.ErrEventNotFound):
		h.sendTextToChat(ctx, b, cq, "⚠️ Event not found", nil)
		return
	case errors.Is(err, model.ErrNotCreator):
		h.sendTextToChat(ctx, b, cq, "⚠️ Only the event creator may view the participant list", nil)
		return
	case err != nil:
		h.log.Error().Err(err).Str("user", userID).Msg("error listing participants")
		h.sendTextToChat(ctx, b, cq, "⚠️ Something went wrong, please try again.", nil)
		return
	}

	ev, _ := h.catalog.Event(ctx, idx)
	kb := keyboard(
		[]models.InlineKeyboardButton{button("⬅️ Back to the event", fmt.Sprintf("my_event_%d", idx))},
		[]models.InlineKeyboardButton{button("🏠 Back to menu", "back_to_main")},
	)
	h.sendToChat(ctx, b, cq, participantsCaption(ev.Name, participants), kb)
}

// --- consultation ---

func (h *Handler) startConsultation(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID string) {
	h.answer(ctx, b, cq, "")
	s := h.startSession(ctx, userID, dialog.FamilyConsult, dialog.StageConversation)
	s.Lock()
	s.Transcript = catalogSummary(h.catalog.Events(ctx))
	s.Unlock()
	h.sendTextToChat(ctx, b, cq,
		"🤖 I can recommend an event from the catalog. Tell me what you are in the mood for!",
		endConsultationKeyboard())
}

// --- moderation ---

func (h *Handler) requireAdmin(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID string) bool {
	user, ok := h.catalog.User(ctx, userID)
	if !ok || !user.IsAdmin {
		h.answer(ctx, b, cq, "⚠️ Admins only")
		return false
	}
	return true
}

func (h *Handler) showPendingList(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID string) {
	if !h.requireAdmin(ctx, b, cq, userID) {
		return
	}
	h.answer(ctx, b, cq, "")
	pending := h.catalog.Pending(ctx)
	caption := "🛠️ Events awaiting approval:"
	if len(pending) == 0 {
		caption = "🛠️ No events are awaiting approval."
	}
	h.editCaption(ctx, b, cq, caption, pendingListKeyboard(pending, 0))
}

func (h *Handler) pendingPage(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	if !h.requireAdmin(ctx, b, cq, userID) {
		return
	}
	h.answer(ctx, b, cq, "")
	page, ok := parseIndex(arg)
	if !ok {
		return
	}
	h.editKeyboard(ctx, b, cq, pendingListKeyboard(h.catalog.Pending(ctx), page))
}

func (h *Handler) showPendingEvent(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	if !h.requireAdmin(ctx, b, cq, userID) {
		return
	}
	h.answer(ctx, b, cq, "")
	idx, ok := parseIndex(arg)
	if !ok {
		return
	}

	ev, err := h.catalog.PendingAt(ctx, idx)
	if err != nil {
		h.editCaption(ctx, b, cq, "⚠️ Pending event not found", pendingListKeyboard(h.catalog.Pending(ctx), 0))
		return
	}

	kb := keyboard(
		[]models.InlineKeyboardButton{
			button("✅ Approve", fmt.Sprintf("approve_event_%d", idx)),
			button("🗑️ Reject", fmt.Sprintf("reject_event_%d", idx)),
		},
		[]models.InlineKeyboardButton{button("⬅️ Back to pending", "pending_events")},
	)
	h.editCaption(ctx, b, cq, FormatEventCaption(ev, true), kb)
}

func (h *Handler) approveEvent(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	if !h.requireAdmin(ctx, b, cq, userID) {
		return
	}
	h.answer(ctx, b, cq, "")
	idx, ok := parseIndex(arg)
	if !ok {
		return
	}

	_, ev, err := h.catalog.Approve(ctx, idx)
	switch {
	case errors.Is(err, model.ErrPendingNotFound):
		h.editCaption(ctx, b, cq, "⚠️ Pending event not found", pendingListKeyboard(h.catalog.Pending(ctx), 0))
	case err != nil:
		h.log.Error().Err(err).Msg("error approving pending event")
		h.editCaption(ctx, b, cq, "⚠️ Something went wrong, please try again.", pendingListKeyboard(h.catalog.Pending(ctx), 0))
	default:
		h.editCaption(ctx, b, cq, "✅ \""+ev.Name+"\" approved and published.", pendingListKeyboard(h.catalog.Pending(ctx), 0))
	}
}

func (h *Handler) rejectEvent(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, userID, arg string) {
	if !h.requireAdmin(ctx, b, cq, userID) {
		return
	}
	h.answer(ctx, b, cq, "")
	idx, ok := parseIndex(arg)
	if !ok {
		return
	}

	ev, err := h.catalog.Reject(ctx, idx)
	switch {
	case errors.Is(err, model.ErrPendingNotFound):
		h.editCaption(ctx, b, cq, "⚠️ Pending event not found", pendingListKeyboard(h.catalog.Pending(ctx), 0))
	case err != nil:
		h.log.Error().Err(err).Msg("error rejecting pending event")
		h.editCaption(ctx, b, cq, "⚠️ Something went wrong, please try again.", pendingListKeyboard(h.catalog.Pending(ctx), 0))
	default:
		h.editCaption(ctx, b, cq, "🗑️ \""+ev.Name+"\" rejected.", pendingListKeyboard(h.catalog.Pending(ctx), 0))
	}
}
