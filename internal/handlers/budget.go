package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/extract"
	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
)

// BudgetHandler handles the /budget command: total-budget management and
// the append-only expense ledger.
type BudgetHandler struct {
	store     *store.Store
	extractor *extract.Extractor
	logger    *logrus.Logger
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(st *store.Store, ex *extract.Extractor, logger *logrus.Logger) *BudgetHandler {
	return &BudgetHandler{store: st, extractor: ex, logger: logger}
}

// Handle processes the /budget command
func (h *BudgetHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID, h.summary())
		return nil
	}

	if strings.EqualFold(args[0], "set") {
		h.handleSet(bot, message.Chat.ID, args[1:])
		return nil
	}

	// Free-form: let the extractor decide between show and add
	parsed := h.extractor.ParseBudgetCommand(context.Background(), "budget "+strings.Join(args, " "))
	switch parsed.Action {
	case "add":
		if parsed.Amount <= 0 {
			reply(bot, message.Chat.ID, "Please provide a valid amount. Example: /budget add airbnb 500")
			return nil
		}
		item := parsed.Item
		if item == "" {
			item = "expense"
		}
		h.store.AddBudgetEntry(models.BudgetEntry{
			Item:   item,
			Amount: parsed.Amount,
			Date:   time.Now().Format(time.RFC3339),
			PaidBy: senderName(message),
			Notes:  parsed.Notes,
		})
		h.logger.WithFields(logrus.Fields{
			"item":   item,
			"amount": parsed.Amount,
		}).Info("Budget entry added")
		reply(bot, message.Chat.ID, fmt.Sprintf("✅ Added $%.2f for %s to the budget!", parsed.Amount, item))
	case "show":
		reply(bot, message.Chat.ID, h.summary())
	default:
		reply(bot, message.Chat.ID, "Usage: /budget show or /budget add <item> <amount>")
	}
	return nil
}

func (h *BudgetHandler) handleSet(bot *tgbotapi.BotAPI, chatID int64, args []string) {
	if len(args) == 0 {
		reply(bot, chatID, "Usage: /budget set <amount>\nExample: /budget set 5000")
		return
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		reply(bot, chatID, "❌ Invalid amount. Example: /budget set 5000")
		return
	}
	if amount <= 0 {
		reply(bot, chatID, "❌ Budget must be positive")
		return
	}

	h.store.UpdateTrip(func(t *models.Trip) {
		t.TotalBudget = &amount
	})
	h.logger.WithField("budget", amount).Info("Set trip budget")
	reply(bot, chatID, fmt.Sprintf("✅ Set trip budget to $%.2f", amount))
}

// summary renders the budget overview with a progress bar when a total
// budget has been set
func (h *BudgetHandler) summary() string {
	trip, _ := h.store.Trip()
	totalSpent := h.store.TotalSpent()

	var sb strings.Builder
	sb.WriteString("💰 Budget Summary\n")

	if trip.TotalBudget != nil && *trip.TotalBudget > 0 {
		budget := *trip.TotalBudget
		sb.WriteString(fmt.Sprintf("Total Budget: $%.2f\n", budget))
		sb.WriteString(fmt.Sprintf("Total Spent: $%.2f\n", totalSpent))
		sb.WriteString(fmt.Sprintf("Remaining: $%.2f\n", budget-totalSpent))

		percent := totalSpent / budget * 100
		if percent > 100 {
			percent = 100
		}
		const barLength = 20
		filled := int(barLength * percent / 100)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barLength-filled)
		sb.WriteString(fmt.Sprintf("Progress: [%s] %.0f%%\n", bar, percent))
	} else {
		sb.WriteString(fmt.Sprintf("Total Spent: $%.2f\n", totalSpent))
		sb.WriteString("💡 Set a budget with: /budget set <amount>\n")
	}

	sb.WriteString("\n")
	ledger := h.store.Ledger()
	if len(ledger) == 0 {
		sb.WriteString("No expenses recorded yet.")
	} else {
		sb.WriteString("Expenses:\n")
		for _, e := range ledger {
			sb.WriteString(fmt.Sprintf("• %s: $%.2f (%s)\n", e.Item, e.Amount, e.PaidBy))
		}
	}
	return sb.String()
}
