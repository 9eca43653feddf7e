package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/index"
	"github.com/tripbot/tripbot/internal/store"
)

// StatusHandler handles the /status command: the at-a-glance trip overview
type StatusHandler struct {
	store  *store.Store
	index  *index.Client
	logger *logrus.Logger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(st *store.Store, idx *index.Client, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{store: st, index: idx, logger: logger}
}

// Handle processes the /status command
func (h *StatusHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	trip, ok := h.store.Trip()
	if !ok {
		reply(bot, message.Chat.ID, "No active trip. Start planning by searching for venues or flights!")
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📍 %s\n", trip.Name))
	if trip.Destination != "" {
		sb.WriteString(fmt.Sprintf("Destination: %s\n", trip.Destination))
	}
	if trip.Dates.IsSet() {
		sb.WriteString(fmt.Sprintf("Dates: %s to %s\n", trip.Dates.Start, trip.Dates.End))
	}

	tracking := "🔴 Inactive"
	if trip.IsTracking {
		tracking = "🟢 Active"
	}
	sb.WriteString(fmt.Sprintf("\nTracking: %s\n", tracking))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if count, err := h.index.Count(ctx); err == nil {
		sb.WriteString(fmt.Sprintf("📝 Indexed messages: %d\n", count))
	}

	stats := h.store.Stats()
	sb.WriteString(fmt.Sprintf("\n👥 Members: %d\n", len(h.store.Members())))
	sb.WriteString(fmt.Sprintf("🏠 Venues found: %d\n", stats.Venues))
	sb.WriteString(fmt.Sprintf("✈️ Flights found: %d\n", stats.Flights))

	officialDocs := h.store.OfficialDocuments()
	if len(officialDocs) > 0 {
		sb.WriteString("\n⭐ Official Trip Docs:\n")
		for _, d := range officialDocs {
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", d.Title, d.DocType))
		}
	}
	sb.WriteString(fmt.Sprintf("\n📄 Total saved documents: %d\n", stats.Documents))

	totalSpent := h.store.TotalSpent()
	if trip.TotalBudget != nil && *trip.TotalBudget > 0 {
		sb.WriteString(fmt.Sprintf("💰 Budget: $%.2f / $%.2f ($%.2f left)\n",
			totalSpent, *trip.TotalBudget, *trip.TotalBudget-totalSpent))
	} else {
		sb.WriteString(fmt.Sprintf("💰 Total spent: $%.2f\n", totalSpent))
	}

	if len(officialDocs) == 0 && stats.Documents > 0 {
		sb.WriteString("\n💡 Tip: Use /doc use <number> to mark official trip docs")
	}

	reply(bot, message.Chat.ID, sb.String())

	h.logger.WithField("chat_id", message.Chat.ID).Info("Status command")
	return nil
}
