package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// StartHandler handles the /start command
type StartHandler struct {
	logger *logrus.Logger
}

// NewStartHandler creates a new StartHandler
func NewStartHandler(logger *logrus.Logger) *StartHandler {
	return &StartHandler{logger: logger}
}

// Handle processes the /start command
func (h *StartHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := "🤖 *Travel Planner Bot*\n\n" +
		"I help your group plan a trip: search stays and flights, save " +
		"booking links, track the budget, and mirror everything into a " +
		"shared Google Doc.\n\n" +
		"Quick start:\n" +
		"1. /track - start tracking this conversation\n" +
		"2. Paste Airbnb/Vrbo/Google Doc links - they're auto-saved\n" +
		"3. /venue Lake Tahoe, 4 people, Aug 25-30\n" +
		"4. /ask what's the wifi password?\n\n" +
		"Use /help for the full command list."

	replyMarkdown(bot, message.Chat.ID, text)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Start command")

	return nil
}
