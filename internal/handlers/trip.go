package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
)

// TripHandler handles the /trip command: the consolidated view of every
// item marked official.
type TripHandler struct {
	store  *store.Store
	logger *logrus.Logger
}

// NewTripHandler creates a new TripHandler
func NewTripHandler(st *store.Store, logger *logrus.Logger) *TripHandler {
	return &TripHandler{store: st, logger: logger}
}

// Handle processes the /trip command
func (h *TripHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	official := h.store.OfficialItems()
	if len(official) == 0 {
		reply(bot, message.Chat.ID,
			"📋 No official items marked yet.\n\n"+
				"Use /official <number> to mark venues or documents as official.\n"+
				"Example: /official 16")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("📋 Official Trip Details:\n\n")

	for _, it := range official {
		switch v := it.(type) {
		case *models.Venue:
			sb.WriteString(fmt.Sprintf("🏠 %s\n", v.Title))
			sb.WriteString(fmt.Sprintf("   Source: %s\n", v.Source))
			if v.PricePerNight > 0 {
				sb.WriteString(fmt.Sprintf("   💰 $%.0f/night", v.PricePerNight))
				if v.TotalPrice > 0 {
					sb.WriteString(fmt.Sprintf(" ($%.0f total)", v.TotalPrice))
				}
				sb.WriteString("\n")
			}
			if v.Bedrooms > 0 {
				sb.WriteString(fmt.Sprintf("   🛏️ %d bedroom(s)", v.Bedrooms))
				if v.Beds > 0 {
					sb.WriteString(fmt.Sprintf(", %d bed(s)", v.Beds))
				}
				sb.WriteString("\n")
			}
			if v.Rating > 0 {
				sb.WriteString(fmt.Sprintf("   ⭐ %.1f/5", v.Rating))
				if v.ReviewCount > 0 {
					sb.WriteString(fmt.Sprintf(" (%d reviews)", v.ReviewCount))
				}
				sb.WriteString("\n")
			}
			writeLogistics(&sb, v.StructuredData)
			if v.URL != "" {
				sb.WriteString(fmt.Sprintf("   🔗 %s\n", v.URL))
			}
			sb.WriteString("\n")

		case *models.Document:
			sb.WriteString(fmt.Sprintf("📄 %s\n", v.Title))
			sb.WriteString(fmt.Sprintf("   Type: %s\n", v.DocType))
			writeLogistics(&sb, v.StructuredData)
			if v.URL != "" {
				sb.WriteString(fmt.Sprintf("   🔗 %s\n", v.URL))
			}
			sb.WriteString("\n")

		default:
			sb.WriteString(itemLabel(it) + "\n\n")
		}
	}

	sb.WriteString("💡 Tip: Use /ask to query all trip details!")
	reply(bot, message.Chat.ID, sb.String())
	return nil
}

// writeLogistics renders the shared scraped-logistics fields of venues and
// documents
func writeLogistics(sb *strings.Builder, data map[string]any) {
	if len(data) == 0 {
		return
	}
	if addr, ok := data["address"].(string); ok && addr != "" {
		sb.WriteString(fmt.Sprintf("   📍 %s\n", addr))
	}
	if s, ok := data["checkInTime"].(string); ok && s != "" {
		sb.WriteString(fmt.Sprintf("   🕐 Check-in: %s\n", s))
	}
	if s, ok := data["checkOutTime"].(string); ok && s != "" {
		sb.WriteString(fmt.Sprintf("   🕐 Check-out: %s\n", s))
	}
	if network, ok := data["wifiNetwork"].(string); ok && network != "" {
		sb.WriteString(fmt.Sprintf("   📶 WiFi: %s", network))
		if pass, ok := data["wifiPassword"].(string); ok && pass != "" {
			sb.WriteString(" / " + pass)
		}
		sb.WriteString("\n")
	}
	if phone, ok := data["phoneNumber"].(string); ok && phone != "" {
		sb.WriteString(fmt.Sprintf("   📞 %s\n", phone))
	}
	if codes, ok := data["accessCodes"].([]any); ok && len(codes) > 0 {
		sb.WriteString("   🔑 Access codes:\n")
		for _, c := range codes {
			if code, ok := c.(map[string]any); ok {
				sb.WriteString(fmt.Sprintf("      • %v: %v\n", code["name"], code["code"]))
			}
		}
	}
}
