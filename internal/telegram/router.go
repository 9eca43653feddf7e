package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/metrics"
)

// Router handles message routing and command parsing
type Router struct {
	logger      *logrus.Logger
	handlers    map[string]CommandHandler
	defaultHand MessageHandler
}

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error
}

// MessageHandler processes non-command messages, used for conversation
// tracking and travel-link auto-saving
type MessageHandler interface {
	HandleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message) error
}

// NewRouter creates a new message router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger:   logger,
		handlers: make(map[string]CommandHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// SetDefaultHandler registers the handler for plain text messages
func (r *Router) SetDefaultHandler(handler MessageHandler) {
	r.defaultHand = handler
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	// Log the incoming message
	r.logger.WithFields(logrus.Fields{
		"chat_id":    message.Chat.ID,
		"user_id":    message.From.ID,
		"username":   message.From.UserName,
		"message_id": message.MessageID,
		"text":       message.Text,
	}).Info("Received message")

	// Only process text messages
	if message.Text == "" {
		return
	}

	// Plain chatter goes to the default handler
	if !message.IsCommand() {
		if r.defaultHand != nil {
			if err := r.defaultHand.HandleMessage(bot, message); err != nil {
				r.logger.WithFields(logrus.Fields{
					"chat_id": message.Chat.ID,
					"error":   err,
				}).Error("Message handler failed")
			}
		}
		return
	}

	command := message.Command()
	args := strings.Fields(message.CommandArguments())

	// Find and execute handler
	if handler, exists := r.handlers[command]; exists {
		if err := handler.Handle(bot, message, args); err != nil {
			r.logger.WithFields(logrus.Fields{
				"command": command,
				"chat_id": message.Chat.ID,
				"user_id": message.From.ID,
				"error":   err,
			}).Error("Command handler failed")
			metrics.CommandsHandled.WithLabelValues(command, "error").Inc()

			// Send error message to user
			errorMsg := tgbotapi.NewMessage(message.Chat.ID, "❌ An error occurred while processing your command. Please try again.")
			bot.Send(errorMsg)
			return
		}
		metrics.CommandsHandled.WithLabelValues(command, "ok").Inc()
	} else {
		// Unknown command
		r.logger.WithFields(logrus.Fields{
			"command": command,
			"chat_id": message.Chat.ID,
			"user_id": message.From.ID,
		}).Warn("Unknown command")
		metrics.CommandsHandled.WithLabelValues(command, "unknown").Inc()

		unknownMsg := tgbotapi.NewMessage(message.Chat.ID, "❓ Unknown command. Use /help to see available commands.")
		bot.Send(unknownMsg)
	}
}
