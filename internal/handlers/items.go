package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/index"
	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
)

// ---------------------------------------------------------------------------
// ListHandler – /list [venues|docs|flights|official]
// ---------------------------------------------------------------------------

// ListHandler handles the /list command to display saved items
type ListHandler struct {
	store  *store.Store
	logger *logrus.Logger
}

// NewListHandler creates a new ListHandler
func NewListHandler(st *store.Store, logger *logrus.Logger) *ListHandler {
	return &ListHandler{store: st, logger: logger}
}

// Handle processes the /list command
func (h *ListHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	filter := "all"
	if len(args) > 0 {
		filter = strings.ToLower(args[0])
	}

	var (
		items []models.Item
		title string
	)
	switch filter {
	case "venues":
		for _, v := range h.store.Venues() {
			items = append(items, v)
		}
		title = "🏠 Venues"
	case "docs", "documents":
		for _, d := range h.store.Documents() {
			items = append(items, d)
		}
		title = "📄 Documents"
	case "flights":
		for _, f := range h.store.Flights() {
			items = append(items, f)
		}
		title = "✈️ Flights"
	case "official":
		items = h.store.OfficialItems()
		title = "⭐ Official Items"
	default:
		items = h.store.Items()
		title = fmt.Sprintf("📋 All Items (%d)", len(items))
	}

	if len(items) == 0 {
		reply(bot, message.Chat.ID, "No items found. Use /venue to search for accommodations or paste a link to save!")
		return nil
	}

	var sb strings.Builder
	if filter == "all" {
		sb.WriteString(title + "\n\n")
		writeItemGroup(&sb, "Venues:", itemsOf[*models.Venue](items))
		writeItemGroup(&sb, "Documents:", itemsOf[*models.Document](items))
		writeItemGroup(&sb, "Flights:", itemsOf[*models.Flight](items))
	} else {
		sb.WriteString(fmt.Sprintf("%s (%d)\n\n", title, len(items)))
		shown := items
		if len(shown) > 20 {
			shown = shown[:20]
		}
		for _, it := range shown {
			sb.WriteString(itemLabel(it) + "\n")
		}
		if len(items) > 20 {
			sb.WriteString(fmt.Sprintf("\n(+ %d more)\n", len(items)-20))
		}
	}
	sb.WriteString("\n💡 /show <number> for details | /comment <number> <text> to add feedback")

	reply(bot, message.Chat.ID, sb.String())

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"filter":  filter,
		"count":   len(items),
	}).Info("Listed items")
	return nil
}

// itemsOf filters items to one concrete variant, preserving order
func itemsOf[T models.Item](items []models.Item) []models.Item {
	var out []models.Item
	for _, it := range items {
		if _, ok := it.(T); ok {
			out = append(out, it)
		}
	}
	return out
}

func writeItemGroup(sb *strings.Builder, header string, items []models.Item) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(header + "\n")
	shown := items
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, it := range shown {
		sb.WriteString(itemLabel(it) + "\n")
	}
	if len(items) > 10 {
		sb.WriteString(fmt.Sprintf("   (+ %d more)\n", len(items)-10))
	}
	sb.WriteString("\n")
}

// ---------------------------------------------------------------------------
// ShowHandler – /show <id>
// ---------------------------------------------------------------------------

// ShowHandler handles the /show command to display one item's full details
type ShowHandler struct {
	store  *store.Store
	logger *logrus.Logger
}

// NewShowHandler creates a new ShowHandler
func NewShowHandler(st *store.Store, logger *logrus.Logger) *ShowHandler {
	return &ShowHandler{store: st, logger: logger}
}

// Handle processes the /show command
func (h *ShowHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID, "Usage: /show <number>\nExample: /show 3")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		reply(bot, message.Chat.ID, "Usage: /show <number>\nExample: /show 3")
		return nil
	}

	it := h.store.ItemByID(id)
	if it == nil {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Item #%d not found. Use /list to see all items.", id))
		return nil
	}

	reply(bot, message.Chat.ID, formatItemDetails(it))
	return nil
}

// formatItemDetails renders the full detail view per item variant
func formatItemDetails(it models.Item) string {
	meta := it.Meta()
	official := ""
	if meta.IsOfficial {
		official = " ⭐"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📍 Item #%d: %s%s\n\n", meta.ID, meta.Title, official))

	switch v := it.(type) {
	case *models.Venue:
		sb.WriteString(fmt.Sprintf("Type: %s Venue\n", strings.Title(string(v.Source))))
		if v.PricePerNight > 0 {
			sb.WriteString(fmt.Sprintf("Price: $%.0f/night", v.PricePerNight))
			if v.TotalPrice > 0 {
				sb.WriteString(fmt.Sprintf(" ($%.0f total)", v.TotalPrice))
			}
			sb.WriteString("\n")
		}
		if v.Rating > 0 {
			sb.WriteString(fmt.Sprintf("Rating: ⭐ %.1f", v.Rating))
			if v.ReviewCount > 0 {
				sb.WriteString(fmt.Sprintf(" (%d reviews)", v.ReviewCount))
			}
			sb.WriteString("\n")
		}
		if v.Bedrooms > 0 {
			sb.WriteString(fmt.Sprintf("Bedrooms: %d", v.Bedrooms))
			if v.Beds > 0 {
				sb.WriteString(fmt.Sprintf(" | Beds: %d", v.Beds))
			}
			sb.WriteString("\n")
		}
		if len(v.Amenities) > 0 {
			shown := v.Amenities
			if len(shown) > 5 {
				shown = shown[:5]
			}
			sb.WriteString("Amenities: " + strings.Join(shown, ", "))
			if len(v.Amenities) > 5 {
				sb.WriteString(fmt.Sprintf(" (+ %d more)", len(v.Amenities)-5))
			}
			sb.WriteString("\n")
		}

	case *models.Document:
		sb.WriteString(fmt.Sprintf("Type: %s Document\n", strings.Title(strings.ReplaceAll(string(v.DocType), "_", " "))))
		if addr, ok := v.StructuredData["address"].(string); ok && addr != "" {
			sb.WriteString(fmt.Sprintf("📍 %s\n", addr))
		}
		if s, ok := v.StructuredData["checkInTime"].(string); ok && s != "" {
			sb.WriteString(fmt.Sprintf("🕐 Check-in: %s\n", s))
		}
		if s, ok := v.StructuredData["checkOutTime"].(string); ok && s != "" {
			sb.WriteString(fmt.Sprintf("🕐 Check-out: %s\n", s))
		}
		if network, ok := v.StructuredData["wifiNetwork"].(string); ok && network != "" {
			sb.WriteString(fmt.Sprintf("📶 WiFi: %s", network))
			if pass, ok := v.StructuredData["wifiPassword"].(string); ok && pass != "" {
				sb.WriteString(" / " + pass)
			}
			sb.WriteString("\n")
		}

	case *models.Flight:
		sb.WriteString("Type: Flight\n")
		if v.Member != "" {
			sb.WriteString(fmt.Sprintf("Passenger: %s\n", v.Member))
		}
		if v.Route != "" {
			sb.WriteString(fmt.Sprintf("Route: %s\n", v.Route))
		}
		if v.DepartureTime != "" {
			sb.WriteString(fmt.Sprintf("Departure: %s\n", v.DepartureTime))
		}
		if v.ArrivalTime != "" {
			sb.WriteString(fmt.Sprintf("Arrival: %s\n", v.ArrivalTime))
		}
		if v.Duration != "" {
			sb.WriteString(fmt.Sprintf("Duration: %s\n", v.Duration))
		}
		if v.IsNonstop() {
			sb.WriteString("Nonstop\n")
		} else {
			sb.WriteString(fmt.Sprintf("Stops: %d\n", v.Stops))
		}
		if v.Price > 0 {
			sb.WriteString(fmt.Sprintf("💰 $%.2f\n", v.Price))
		}
	}

	if meta.URL != "" {
		sb.WriteString(fmt.Sprintf("🔗 %s\n", meta.URL))
	}

	if len(meta.Comments) > 0 {
		sb.WriteString(fmt.Sprintf("\n💬 Comments (%d):\n", len(meta.Comments)))
		for _, c := range meta.Comments {
			sb.WriteString(fmt.Sprintf("• %s: %s\n", c.User, c.Text))
		}
	}

	sb.WriteString(fmt.Sprintf("\n💡 /comment %d <text> | /official %d", meta.ID, meta.ID))
	return sb.String()
}

// ---------------------------------------------------------------------------
// CommentHandler – /comment <id> <text>
// ---------------------------------------------------------------------------

// CommentHandler handles the /comment command to append feedback to an item
type CommentHandler struct {
	store  *store.Store
	index  *index.Client
	logger *logrus.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(st *store.Store, idx *index.Client, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{store: st, index: idx, logger: logger}
}

// Handle processes the /comment command
func (h *CommentHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) < 2 {
		reply(bot, message.Chat.ID, "Usage: /comment <number> <your comment>\nExample: /comment 3 Love this place!")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		reply(bot, message.Chat.ID, "Usage: /comment <number> <your comment>\nExample: /comment 3 Love this place!")
		return nil
	}
	text := strings.Join(args[1:], " ")
	user := senderName(message)

	it := h.store.AddComment(id, user, text)
	if it == nil {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Item #%d not found. Use /list to see all items.", id))
		return nil
	}
	meta := it.Meta()

	// Make the comment findable through /ask, best effort
	entry := index.Entry{
		ID:   fmt.Sprintf("item_%d_comment_%d", meta.ID, len(meta.Comments)-1),
		Text: fmt.Sprintf("%s commented on %s: %s", user, meta.Title, text),
		Metadata: map[string]string{
			"type":    "comment",
			"item_id": strconv.Itoa(meta.ID),
			"user":    user,
		},
	}
	if err := h.index.Add(context.Background(), entry); err != nil {
		h.logger.WithError(err).Warn("Failed to index comment")
	}

	h.logger.WithFields(logrus.Fields{
		"item_id": meta.ID,
		"user":    user,
	}).Info("Comment added")
	reply(bot, message.Chat.ID, fmt.Sprintf("✅ Added your comment to Item #%d (%s)", meta.ID, meta.Title))
	return nil
}

// ---------------------------------------------------------------------------
// OfficialHandler – /official <id> [id2]...
// ---------------------------------------------------------------------------

// OfficialHandler handles the /official command to flag items as the trip's
// actual plan. Accommodations are mutually exclusive: marking one un-marks
// any previously official venue or Airbnb/Vrbo document.
type OfficialHandler struct {
	store  *store.Store
	logger *logrus.Logger
}

// NewOfficialHandler creates a new OfficialHandler
func NewOfficialHandler(st *store.Store, logger *logrus.Logger) *OfficialHandler {
	return &OfficialHandler{store: st, logger: logger}
}

// Handle processes the /official command
func (h *OfficialHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ids := parseIDs(strings.Join(args, " "))
	if len(ids) == 0 {
		reply(bot, message.Chat.ID,
			"Usage: /official <number> [number2] [number3]...\nExample: /official 16\nExample: /official 16 23 45")
		return nil
	}

	marked, notFound := h.store.MarkOfficial(ids...)

	if len(marked) == 0 {
		reply(bot, message.Chat.ID,
			fmt.Sprintf("❌ Item(s) not found: %s. Use /list to see all items.", joinIDs(notFound)))
		return nil
	}

	var sb strings.Builder
	sb.WriteString("⭐ Marked as official:\n")
	for _, it := range marked {
		icon := "📄"
		if _, ok := it.(*models.Venue); ok {
			icon = "🏠"
		}
		sb.WriteString(fmt.Sprintf("%s Item #%d: %s\n", icon, it.Meta().ID, it.Meta().Title))
		h.logger.WithField("item_id", it.Meta().ID).Info("Marked item as official")
	}
	if len(notFound) > 0 {
		sb.WriteString(fmt.Sprintf("\n❌ Not found: %s", joinIDs(notFound)))
	}

	reply(bot, message.Chat.ID, sb.String())
	return nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

// ---------------------------------------------------------------------------
// DeleteHandler – /delete <id>
// ---------------------------------------------------------------------------

// DeleteHandler handles the /delete command to remove an item and its
// indexed content
type DeleteHandler struct {
	store  *store.Store
	index  *index.Client
	logger *logrus.Logger
}

// NewDeleteHandler creates a new DeleteHandler
func NewDeleteHandler(st *store.Store, idx *index.Client, logger *logrus.Logger) *DeleteHandler {
	return &DeleteHandler{store: st, index: idx, logger: logger}
}

// Handle processes the /delete command
func (h *DeleteHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID, "Usage: /delete <number>\nExample: /delete 5")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		reply(bot, message.Chat.ID, "Usage: /delete <number>\nExample: /delete 5")
		return nil
	}

	it := h.store.ItemByID(id)
	if it == nil {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Item #%d not found.", id))
		return nil
	}
	title := it.Meta().Title

	if err := h.index.Delete(context.Background(), fmt.Sprintf("item_%d_", id)); err != nil {
		h.logger.WithError(err).Warn("Failed to delete item chunks from index")
	}
	if !h.store.DeleteItem(id) {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Failed to delete Item #%d", id))
		return nil
	}

	h.logger.WithField("item_id", id).Info("Deleted item")
	reply(bot, message.Chat.ID, fmt.Sprintf("🗑️ Deleted Item #%d (%s)", id, title))
	return nil
}
