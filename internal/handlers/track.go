package handlers

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/index"
	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
)

// ---------------------------------------------------------------------------
// TrackHandler – /track [stop]
// ---------------------------------------------------------------------------

// TrackHandler handles the /track command to start or stop indexing the
// conversation for /ask queries.
type TrackHandler struct {
	store  *store.Store
	logger *logrus.Logger
}

// NewTrackHandler creates a new TrackHandler
func NewTrackHandler(st *store.Store, logger *logrus.Logger) *TrackHandler {
	return &TrackHandler{store: st, logger: logger}
}

// Handle processes the /track command
func (h *TrackHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) > 0 && strings.EqualFold(args[0], "stop") {
		h.store.UpdateTrip(func(t *models.Trip) {
			t.IsTracking = false
			t.TrackedConversationID = ""
		})
		h.logger.Info("Stopped tracking conversation")
		reply(bot, message.Chat.ID, "⏸️ Stopped tracking messages. Use /track to start again.")
		return nil
	}

	chatID := strconv.FormatInt(message.Chat.ID, 10)
	h.store.UpdateTrip(func(t *models.Trip) {
		t.IsTracking = true
		t.TrackedConversationID = chatID
	})

	h.logger.WithField("chat_id", chatID).Info("Started tracking conversation")
	reply(bot, message.Chat.ID,
		"✅ Now tracking messages in this conversation!\n\n"+
			"All messages will be indexed for the /ask command.\n"+
			"Use /track stop to stop tracking.")
	return nil
}

// ---------------------------------------------------------------------------
// ResetHandler – /reset
// ---------------------------------------------------------------------------

// ResetHandler handles the /reset command to clear the message index
type ResetHandler struct {
	index  *index.Client
	logger *logrus.Logger
}

// NewResetHandler creates a new ResetHandler
func NewResetHandler(idx *index.Client, logger *logrus.Logger) *ResetHandler {
	return &ResetHandler{index: idx, logger: logger}
}

// Handle processes the /reset command
func (h *ResetHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if err := h.index.Reset(context.Background()); err != nil {
		h.logger.WithError(err).Error("Failed to reset message index")
		reply(bot, message.Chat.ID, "❌ Error resetting the message index. Please try again.")
		return nil
	}

	h.logger.Info("Reset message index")
	reply(bot, message.Chat.ID,
		"🗑️ Message index reset! All indexed messages have been cleared.\n\n"+
			"Use /track to start indexing messages again.")
	return nil
}
