package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

// NewHelpHandler creates a new HelpHandler
func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

// Handle processes the /help command
func (h *HelpHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := "🤖 Travel Planner Bot Commands:\n\n" +
		"💬 Conversation:\n" +
		"/track - Start tracking messages\n" +
		"/track stop - Stop tracking\n" +
		"/reset - Clear all indexed messages\n" +
		"/ask <question> - Ask about trip details\n" +
		"  Example: /ask what's the wifi password?\n\n" +
		"🏠 Venues:\n" +
		"/venue <criteria> - Search for accommodations\n" +
		"  Example: /venue Lake Tahoe, 4 people, Aug 25-30\n" +
		"/venue next - Show next 3 venues\n" +
		"💡 Tip: Just paste Airbnb/Vrbo/Google Doc links - auto-saved!\n\n" +
		"📋 Items (venues, docs, flights):\n" +
		"/list [venues|docs|flights|official] - List items\n" +
		"/show <number> - Show item details\n" +
		"/comment <number> <text> - Add feedback\n" +
		"/official <number> [number2]... - Mark as official\n" +
		"/delete <number> - Delete an item\n\n" +
		"📄 Documents:\n" +
		"/doc - List docs with official markers\n" +
		"/doc use <number|description> - Mark as official\n" +
		"/doc remove <number> - Unmark official\n" +
		"/docs - List documents in detail\n" +
		"/docs delete <number> - Delete document\n" +
		"/docs clear - Delete all documents\n\n" +
		"🎯 Trip Summary:\n" +
		"/trip - Show all official items\n\n" +
		"✈️ Flights:\n" +
		"/flight <criteria> - Search for flights\n" +
		"  Example: /flight from SFO to RNO on Aug 25\n\n" +
		"💰 Budget:\n" +
		"/budget show - Show budget summary\n" +
		"/budget set <amount> - Set total trip budget\n" +
		"/budget add <item> <amount> - Add expense\n\n" +
		"📄 Google Docs Sync:\n" +
		"/sync setup <url> - Connect to a Google Doc\n" +
		"/sync now - Force sync to doc\n" +
		"/sync status - Show sync status\n" +
		"/sync enable|disable - Toggle auto-sync\n\n" +
		"📊 Status:\n" +
		"/status - Show current trip status\n" +
		"/help - Show this help message"

	reply(bot, message.Chat.ID, text)

	h.logger.WithField("chat_id", message.Chat.ID).Info("Help command")
	return nil
}
