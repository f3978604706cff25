package handler

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"CampusEventBot/ai"
	"CampusEventBot/catalog"
	"CampusEventBot/dialog"
	"CampusEventBot/metrics"
)

// Handler routes Telegram updates into the dialogue state machine and the
// event catalog. Text messages are routed by the sender's current dialogue
// stage; button presses are routed by callback-data prefix. The two routings
// are kept separate: browsing actions work regardless of dialogue state,
// while stage input only ever comes from text (or the few stage-bound
// buttons, which check the session themselves).
type Handler struct {
	sessions    *dialog.Sessions
	catalog     *catalog.Manager
	recommender ai.Recommender
	collector   *metrics.Collector
	menuImage   string
	log         zerolog.Logger
}

// New creates a handler.
func New(sessions *dialog.Sessions, cat *catalog.Manager, recommender ai.Recommender, collector *metrics.Collector, menuImage string, log zerolog.Logger) *Handler {
	return &Handler{
		sessions:    sessions,
		catalog:     cat,
		recommender: recommender,
		collector:   collector,
		menuImage:   menuImage,
		log:         log,
	}
}

// Handle is the bot's default handler for every update.
func (h *Handler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.collector.Update("callback")
		h.handleCallback(ctx, b, update.CallbackQuery)
	case update.Message != nil:
		h.collector.Update("message")
		h.handleMessage(ctx, b, update.Message)
	}
}

// handleMessage routes a text message: commands first, then the sender's
// active dialogue stage. Text from users with no active dialogue is ignored;
// all catalog actions are reachable through buttons regardless of state.
func (h *Handler) handleMessage(ctx context.Context, b *bot.Bot, msg *models.Message) {
	if msg.From == nil {
		return
	}
	userID := strconv.FormatInt(msg.From.ID, 10)
	chatID := msg.Chat.ID

	switch msg.Text {
	case "/start":
		h.handleStart(ctx, b, userID, chatID)
		return
	case "/admin":
		s := h.startSession(ctx, userID, dialog.FamilyAdmin, dialog.StageAdminPassword)
		s.Lock()
		prompt := h.stagePrompt(s)
		s.Unlock()
		h.sendText(ctx, b, chatID, prompt, nil)
		return
	}

	session, ok := h.sessions.Get(userID)
	if !ok {
		return
	}
	session.Lock()
	defer session.Unlock()

	switch session.Family {
	case dialog.FamilyConsult:
		h.handleConsultMessage(ctx, b, session, chatID, msg.Text)
	case dialog.FamilyAdmin:
		h.handleAdminMessage(ctx, b, session, userID, chatID, msg.Text)
	default:
		h.handleDialogMessage(ctx, b, session, userID, chatID, msg.Text)
	}
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, userID string, chatID int64) {
	if user, ok := h.catalog.User(ctx, userID); ok {
		h.sendMenuPhoto(ctx, b, chatID, "👋 Welcome back, "+user.Name+"!", mainMenuKeyboard(user.IsAdmin))
		return
	}
	h.startSession(ctx, userID, dialog.FamilyRegistration, dialog.StageRegName)
	h.sendText(ctx, b, chatID, "👋 Welcome! Please enter your first and last name:", nil)
}

// startSession replaces the user's dialogue with a fresh one. A displaced
// event-creation dialogue gives its reserved creation slot back; otherwise
// the slot would leak and the user would be refused future creations.
func (h *Handler) startSession(ctx context.Context, userID string, family dialog.Family, stage dialog.Stage) *dialog.Session {
	if old, ok := h.sessions.Get(userID); ok {
		old.Lock()
		wasCreation := old.Family == dialog.FamilyEventCreate
		old.Unlock()
		if wasCreation {
			if err := h.catalog.AbortCreation(ctx, userID); err != nil {
				h.log.Error().Err(err).Str("user", userID).Msg("error releasing creation slot")
			}
		}
	}
	return h.sessions.Start(userID, family, stage)
}

// sendText sends a plain message, logging failures. Nothing propagates out
// of the update loop.
func (h *Handler) sendText(ctx context.Context, b *bot.Bot, chatID int64, text string, kb models.ReplyMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("chat", chatID).Msg("error sending message")
	}
}

// sendMenuPhoto sends the menu image with a caption, falling back to a plain
// message if the image cannot be read.
func (h *Handler) sendMenuPhoto(ctx context.Context, b *bot.Bot, chatID int64, caption string, kb models.ReplyMarkup) {
	f, err := os.Open(h.menuImage)
	if err != nil {
		h.log.Warn().Err(err).Msg("menu image unavailable, sending text")
		h.sendText(ctx, b, chatID, caption, kb)
		return
	}
	defer f.Close()

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      chatID,
		Photo:       &models.InputFileUpload{Filename: filepath.Base(h.menuImage), Data: f},
		Caption:     caption,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("chat", chatID).Msg("error sending photo")
	}
}

// editCaption edits the caption and keyboard of the message a button was
// pressed on. If the edit target is not editable (wrong content type,
// message too old) it falls back to sending a fresh menu photo.
func (h *Handler) editCaption(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, caption string, kb models.ReplyMarkup) {
	msg := cq.Message.Message
	if msg == nil {
		return
	}
	_, err := b.EditMessageCaption(ctx, &bot.EditMessageCaptionParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Caption:     caption,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("error editing caption, sending new message")
		h.sendMenuPhoto(ctx, b, msg.Chat.ID, caption, kb)
	}
}

// editKeyboard swaps only the inline keyboard, used by pagination.
func (h *Handler) editKeyboard(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, kb models.ReplyMarkup) {
	msg := cq.Message.Message
	if msg == nil {
		return
	}
	_, err := b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("error editing reply markup")
	}
}

func (h *Handler) answer(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cq.ID,
		Text:            text,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("error answering callback query")
	}
}
