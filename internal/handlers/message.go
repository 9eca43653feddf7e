package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/index"
	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/scraper"
	"github.com/tripbot/tripbot/internal/store"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)

// autoSaveDomains are the travel sites whose links pasted in chat are
// scraped and saved without an explicit command
var autoSaveDomains = []string{"airbnb.com", "vrbo.com", "docs.google.com"}

// ChatterHandler processes plain (non-command) messages: travel links are
// auto-scraped into saved documents, and everything else is indexed for
// /ask when conversation tracking is on.
type ChatterHandler struct {
	store         *store.Store
	scraper       *scraper.Client
	index         *index.Client
	logger        *logrus.Logger
	scrapeTimeout time.Duration
}

// NewChatterHandler creates a new ChatterHandler
func NewChatterHandler(st *store.Store, sc *scraper.Client, idx *index.Client, scrapeTimeout time.Duration, logger *logrus.Logger) *ChatterHandler {
	return &ChatterHandler{
		store:         st,
		scraper:       sc,
		index:         idx,
		logger:        logger,
		scrapeTimeout: scrapeTimeout,
	}
}

// HandleMessage processes a plain text message
func (h *ChatterHandler) HandleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message) error {
	text := strings.TrimSpace(message.Text)

	for _, rawURL := range urlPattern.FindAllString(text, -1) {
		if !isAutoSaveURL(rawURL) {
			continue
		}
		if existing := h.store.FindByURL(rawURL); existing != nil {
			h.logger.WithField("url", rawURL).Info("URL already saved, skipping")
			reply(bot, message.Chat.ID,
				fmt.Sprintf("ℹ️ Already saved as Item #%d (%s)", existing.Meta().ID, existing.Meta().Title))
			continue
		}

		h.logger.WithField("url", rawURL).Info("Auto-detected travel link")
		reply(bot, message.Chat.ID, "🔄 Scraping in progress, I'll notify you when ready...")
		go h.scrapeAndSave(bot, message.Chat.ID, rawURL, senderName(message))
	}

	h.indexMessage(message)
	return nil
}

func isAutoSaveURL(rawURL string) bool {
	for _, domain := range autoSaveDomains {
		if strings.Contains(rawURL, domain) {
			return true
		}
	}
	return false
}

// scrapeAndSave runs in the background: scrapes the page, stores it as a
// document item and indexes its text chunks.
func (h *ChatterHandler) scrapeAndSave(bot *tgbotapi.BotAPI, chatID int64, rawURL, sender string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("Panic in document scrape: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.scrapeTimeout)
	defer cancel()

	result, err := h.scraper.ScrapeDocument(ctx, rawURL)
	if err != nil {
		h.logger.WithError(err).Error("Document scrape failed")
		reply(bot, chatID, "❌ Failed to scrape the document. Please check the URL and try again.")
		return
	}

	title := result.Title
	if title == "" {
		title = "Untitled"
	}
	doc := &models.Document{
		ItemMeta: models.ItemMeta{
			Title:     title,
			URL:       rawURL,
			CreatedBy: sender,
		},
		DocType:        result.DocumentType,
		StructuredData: result.StructuredData,
	}
	h.store.AddItem(doc)
	h.logger.WithField("item_id", doc.ID).Info("Saved scraped document")

	// Index text chunks for /ask, best effort
	if len(result.TextChunks) > 0 {
		entries := make([]index.Entry, 0, len(result.TextChunks))
		for idx, chunk := range result.TextChunks {
			entries = append(entries, index.Entry{
				ID:   fmt.Sprintf("item_%d_chunk_%d", doc.ID, idx),
				Text: chunk,
				Metadata: map[string]string{
					"type":     "document",
					"item_id":  strconv.Itoa(doc.ID),
					"url":      rawURL,
					"doc_type": string(doc.DocType),
					"title":    doc.Title,
					"saved_by": sender,
				},
			})
		}
		if err := h.index.Add(ctx, entries...); err != nil {
			h.logger.WithError(err).Error("Failed to index document chunks")
		} else {
			h.logger.Infof("Indexed %d document chunks", len(entries))
		}
	}

	reply(bot, chatID, formatSavedDocument(doc))
}

// formatSavedDocument builds the save confirmation, surfacing the logistics
// fields people actually look for
func formatSavedDocument(doc *models.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Saved as Item #%d: %s\n", doc.ID, doc.Title))

	data := doc.StructuredData
	if addr, ok := data["address"].(string); ok && addr != "" {
		sb.WriteString(fmt.Sprintf("📍 %s\n", addr))
	}
	if v, ok := data["checkInTime"].(string); ok && v != "" {
		sb.WriteString(fmt.Sprintf("🕐 Check-in: %s\n", v))
	}
	if v, ok := data["checkOutTime"].(string); ok && v != "" {
		sb.WriteString(fmt.Sprintf("🕐 Check-out: %s\n", v))
	}
	if network, ok := data["wifiNetwork"].(string); ok && network != "" {
		wifi := fmt.Sprintf("📶 WiFi: %s", network)
		if pass, ok := data["wifiPassword"].(string); ok && pass != "" {
			wifi += " / " + pass
		}
		sb.WriteString(wifi + "\n")
	}
	if codes, ok := data["accessCodes"].([]any); ok && len(codes) > 0 {
		sb.WriteString("🔑 Access codes:\n")
		for _, c := range codes {
			if code, ok := c.(map[string]any); ok {
				sb.WriteString(fmt.Sprintf("  • %v: %v\n", code["name"], code["code"]))
			}
		}
	}
	if phone, ok := data["phoneNumber"].(string); ok && phone != "" {
		sb.WriteString(fmt.Sprintf("📞 Contact: %s\n", phone))
	}

	sb.WriteString(fmt.Sprintf("\n💡 Use /show %d for details | /ask to query", doc.ID))
	return sb.String()
}

// indexMessage stores a tracked conversation message in the vector index
func (h *ChatterHandler) indexMessage(message *tgbotapi.Message) {
	trip, ok := h.store.Trip()
	if !ok || !trip.IsTracking {
		return
	}

	chatID := strconv.FormatInt(message.Chat.ID, 10)
	if trip.TrackedConversationID != "" && trip.TrackedConversationID != chatID {
		return
	}

	sender := senderName(message)
	entry := index.Entry{
		ID:   fmt.Sprintf("msg_%d_%d", message.Chat.ID, message.MessageID),
		Text: message.Text,
		Metadata: map[string]string{
			"sender":    sender,
			"timestamp": time.Unix(int64(message.Date), 0).Format(time.RFC3339),
			"chat_id":   chatID,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.index.Add(ctx, entry); err != nil {
		h.logger.WithError(err).Error("Failed to index message")
		return
	}
	h.logger.WithField("sender", sender).Debug("Indexed message")
}
