package handler

import (
	"context"
	"errors"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"CampusEventBot/ai"
	"CampusEventBot/dialog"
	"CampusEventBot/model"
)

func familyName(f dialog.Family) string {
	switch f {
	case dialog.FamilyRegistration:
		return "registration"
	case dialog.FamilyEventCreate:
		return "event_create"
	case dialog.FamilyEventEdit:
		return "event_edit"
	case dialog.FamilyConsult:
		return "consult"
	case dialog.FamilyAdmin:
		return "admin"
	default:
		return "none"
	}
}

// handleDialogMessage feeds one text input into the sender's dialogue. An
// invalid value re-prompts and leaves the stage unchanged; a terminal stage
// hands the accumulated draft to the catalog.
func (h *Handler) handleDialogMessage(ctx context.Context, b *bot.Bot, s *dialog.Session, userID string, chatID int64, text string) {
	res, ok := dialog.Advance(s, text)
	if !ok {
		return
	}
	if res.Invalid != "" {
		h.sendText(ctx, b, chatID, res.Invalid, h.stageKeyboard(s))
		return
	}

	h.collector.DialogStep(familyName(s.Family))

	if res.Done {
		h.completeDialogue(ctx, b, s, userID, chatID)
		return
	}
	h.sendStagePrompt(ctx, b, chatID, s)
}

func (h *Handler) completeDialogue(ctx context.Context, b *bot.Bot, s *dialog.Session, userID string, chatID int64) {
	switch s.Family {
	case dialog.FamilyRegistration:
		h.completeRegistration(ctx, b, s, userID, chatID)
	case dialog.FamilyEventCreate:
		h.completeCreation(ctx, b, s, userID, chatID)
	case dialog.FamilyEventEdit:
		h.completeEdit(ctx, b, s, userID, chatID)
	}
}

func (h *Handler) completeRegistration(ctx context.Context, b *bot.Bot, s *dialog.Session, userID string, chatID int64) {
	name := s.Draft["name"]
	h.sessions.Clear(userID)

	if err := h.catalog.RegisterUser(ctx, userID, name, s.Draft["faculty"]); err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("error saving new user")
		h.sendText(ctx, b, chatID, "⚠️ Something went wrong, please try /start again.", nil)
		return
	}
	h.sendMenuPhoto(ctx, b, chatID, "✅ Registration complete! Welcome, "+name+"!", mainMenuKeyboard(false))
}

func (h *Handler) completeCreation(ctx context.Context, b *bot.Bot, s *dialog.Session, userID string, chatID int64) {
	h.sessions.Clear(userID)

	published, err := h.catalog.Submit(ctx, userID, s.DraftEvent())
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("error submitting event")
		h.sendText(ctx, b, chatID, "⚠️ Could not save the event. Please try again.", nil)
		return
	}

	caption := "✅ Your event has been registered!"
	if !published {
		caption = "🕓 Your event was sent for admin review. It will appear in the catalog once approved."
	}
	isAdmin := false
	if user, ok := h.catalog.User(ctx, userID); ok {
		isAdmin = user.IsAdmin
	}
	h.sendMenuPhoto(ctx, b, chatID, caption, mainMenuKeyboard(isAdmin))
}

func (h *Handler) completeEdit(ctx context.Context, b *bot.Bot, s *dialog.Session, userID string, chatID int64) {
	idx := s.EventIdx
	upd := s.DraftUpdate()
	h.sessions.Clear(userID)

	err := h.catalog.Edit(ctx, idx, userID, upd)
	switch {
	case err == nil:
		h.sendMenuPhoto(ctx, b, chatID, "✅ Event updated!", h.mainMenu(ctx, userID))
	case errors.Is(err, model.ErrEventNotFound):
		h.sendText(ctx, b, chatID, "⚠️ Event not found", nil)
	case errors.Is(err, model.ErrNotCreator):
		h.sendText(ctx, b, chatID, "⚠️ Only the event creator may edit it", nil)
	default:
		h.log.Error().Err(err).Str("user", userID).Msg("error editing event")
		h.sendText(ctx, b, chatID, "⚠️ Could not update the event. Please try again.", nil)
	}
}

// handleConsultMessage relays one consultation turn. The relay degrades to a
// fixed apology on repeated backend failure, leaving the transcript as it
// was.
func (h *Handler) handleConsultMessage(ctx context.Context, b *bot.Bot, s *dialog.Session, chatID int64, text string) {
	start := time.Now()
	reply, updated := h.recommender.Consult(ctx, s.Transcript, text)
	outcome := "ok"
	if reply == ai.Apology {
		outcome = "degraded"
	}
	h.collector.RelayCall(outcome, time.Since(start))

	s.Transcript = updated
	h.sendText(ctx, b, chatID, reply, endConsultationKeyboard())
}

func (h *Handler) handleAdminMessage(ctx context.Context, b *bot.Bot, s *dialog.Session, userID string, chatID int64, text string) {
	h.sessions.Clear(userID)

	err := h.catalog.GrantAdmin(ctx, userID, text)
	switch {
	case err == nil:
		h.sendMenuPhoto(ctx, b, chatID, "✅ Admin rights granted.", mainMenuKeyboard(true))
	case errors.Is(err, model.ErrBadPassphrase):
		h.sendText(ctx, b, chatID, "⚠️ Wrong passphrase.", nil)
	case errors.Is(err, model.ErrUserNotFound):
		h.sendText(ctx, b, chatID, "⚠️ Please register first with /start.", nil)
	default:
		h.log.Error().Err(err).Str("user", userID).Msg("error granting admin")
		h.sendText(ctx, b, chatID, "⚠️ Something went wrong, please try again.", nil)
	}
}

// sendStagePrompt asks for the input the session's current stage expects.
func (h *Handler) sendStagePrompt(ctx context.Context, b *bot.Bot, chatID int64, s *dialog.Session) {
	h.sendText(ctx, b, chatID, h.stagePrompt(s), h.stageKeyboard(s))
}

func (h *Handler) stagePrompt(s *dialog.Session) string {
	if s.Family == dialog.FamilyEventEdit {
		return editPrompt(s)
	}

	switch s.Stage {
	case dialog.StageRegName:
		return "👋 Welcome! Please enter your first and last name:"
	case dialog.StageRegFaculty:
		return "🏫 Enter your faculty (letters only):"
	case dialog.StageEventName:
		return "📝 Enter the event name:"
	case dialog.StageEventDescription:
		return "📋 Enter the event description:"
	case dialog.StageEventLocation:
		return "📍 Enter the event location:"
	case dialog.StageEventTime:
		return "📅 Enter the event date (DD.MM.YYYY):"
	case dialog.StageEventTgLink:
		return "🔗 Enter the Telegram channel link (or send \"no\" if there is none):"
	case dialog.StageEventTgChatLink:
		return "💬 Enter the Telegram chat link (or send \"no\" if there is none):"
	case dialog.StageEventCategory:
		return "🏷️ Choose the event type:"
	case dialog.StageAdminPassword:
		return "🔐 Enter the admin passphrase:"
	default:
		return ""
	}
}

// editPrompt shows the snapshot's current value so the creator can keep it.
func editPrompt(s *dialog.Session) string {
	orEmpty := func(v string) string {
		if v == "" {
			return "none"
		}
		return v
	}

	switch s.Stage {
	case dialog.StageEventName:
		return "✏️ Editing the event\n\nCurrent name: " + s.Original.Name + "\n\nSend a new name or keep the current one:"
	case dialog.StageEventDescription:
		return "Current description: " + s.Original.Description + "\n\nSend a new description or keep the current one:"
	case dialog.StageEventLocation:
		return "Current location: " + s.Original.Location + "\n\nSend a new location or keep the current one:"
	case dialog.StageEventTime:
		return "Current date: " + s.Original.Time + "\n\nSend a new date (DD.MM.YYYY) or keep the current one:"
	case dialog.StageEventTgLink:
		return "Current channel link: " + orEmpty(s.Original.TgLink) + "\n\nSend a new link (or \"no\") or keep the current one:"
	case dialog.StageEventTgChatLink:
		return "Current chat link: " + orEmpty(s.Original.TgChatLink) + "\n\nSend a new link (or \"no\") or keep the current one:"
	case dialog.StageEventCategory:
		c := model.CategoryByKey(s.Original.Category)
		return "Current category: " + c.Name + "\n\nChoose a new category or keep the current one:"
	default:
		return ""
	}
}

func (h *Handler) stageKeyboard(s *dialog.Session) models.ReplyMarkup {
	switch s.Family {
	case dialog.FamilyEventCreate:
		if s.Stage == dialog.StageEventCategory {
			rows := eventTypeRows()
			rows = append(rows, []models.InlineKeyboardButton{
				button("❌ Cancel event creation", "cancel_event_creation"),
			})
			return keyboard(rows...)
		}
		return cancelCreationKeyboard()
	case dialog.FamilyEventEdit:
		if s.Stage == dialog.StageEventCategory {
			rows := eventTypeRows()
			rows = append(rows, []models.InlineKeyboardButton{
				button("🔄 Keep current", "keep_category"),
			})
			return keyboard(rows...)
		}
		return keepCurrentKeyboard()
	default:
		return nil
	}
}
