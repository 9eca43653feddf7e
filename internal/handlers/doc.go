package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/extract"
	"github.com/tripbot/tripbot/internal/index"
	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
)

// docList formats the numbered document overview used by /doc and the
// not-found fallback. Numbers are list positions, not item ids.
func docList(docs []*models.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📄 Saved Documents (%d):\n\n", len(docs)))
	for i, d := range docs {
		official := ""
		if d.IsOfficial {
			official = " ⭐"
		}
		sb.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, d.Title, official))
		sb.WriteString(fmt.Sprintf("   Type: %s\n", d.DocType))
		if addr, ok := d.StructuredData["address"].(string); ok && addr != "" {
			if len(addr) > 50 {
				addr = addr[:50] + "..."
			}
			sb.WriteString(fmt.Sprintf("   📍 %s\n", addr))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// DocHandler – /doc [use|remove] ...
// ---------------------------------------------------------------------------

// DocHandler handles the /doc command: marking saved documents as official
// by number or by natural-language description.
type DocHandler struct {
	store     *store.Store
	extractor *extract.Extractor
	logger    *logrus.Logger
}

// NewDocHandler creates a new DocHandler
func NewDocHandler(st *store.Store, ex *extract.Extractor, logger *logrus.Logger) *DocHandler {
	return &DocHandler{store: st, extractor: ex, logger: logger}
}

// Handle processes the /doc command
func (h *DocHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	docs := h.store.Documents()

	if len(args) == 0 {
		if len(docs) == 0 {
			reply(bot, message.Chat.ID,
				"📄 No saved documents yet.\n\n💡 Paste Airbnb/Vrbo/Google Doc links in chat - they'll be auto-saved!")
			return nil
		}
		response := docList(docs) +
			"Usage:\n" +
			"• /doc use <number> - Mark as official\n" +
			"• /doc remove <number> - Unmark as official\n" +
			"• /doc use <description> - Find & mark by description"
		reply(bot, message.Chat.ID, response)
		return nil
	}

	sub := strings.ToLower(args[0])
	rest := strings.Join(args[1:], " ")

	switch sub {
	case "remove", "unuse":
		h.handleRemove(bot, message.Chat.ID, docs, rest)
	case "use":
		h.handleUse(bot, message.Chat.ID, docs, rest)
	default:
		reply(bot, message.Chat.ID, "Usage: /doc use <number> or /doc use <description>")
	}
	return nil
}

func (h *DocHandler) handleRemove(bot *tgbotapi.BotAPI, chatID int64, docs []*models.Document, arg string) {
	if arg == "" {
		reply(bot, chatID, "Usage: /doc remove <number>\nExample: /doc remove 1")
		return
	}
	pos, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		reply(bot, chatID, "❌ Please provide a valid number. Example: /doc remove 2")
		return
	}
	if pos < 1 || pos > len(docs) {
		reply(bot, chatID, "❌ Invalid document number. Use /doc to see all documents.")
		return
	}

	doc := docs[pos-1]
	if !doc.IsOfficial {
		reply(bot, chatID, fmt.Sprintf("ℹ️ '%s' wasn't marked as official.", doc.Title))
		return
	}
	h.store.UnmarkOfficial(doc.ID)
	h.logger.WithField("item_id", doc.ID).Info("Unmarked official document")
	reply(bot, chatID, fmt.Sprintf("✅ Unmarked: %s\n\nIt's still saved, just not marked as official anymore.", doc.Title))
}

func (h *DocHandler) handleUse(bot *tgbotapi.BotAPI, chatID int64, docs []*models.Document, criteria string) {
	if len(docs) == 0 {
		reply(bot, chatID, "📄 No saved documents yet.\n\n💡 Paste Airbnb/Vrbo/Google Doc links in chat - they'll be auto-saved!")
		return
	}

	// Explicit number selection
	if ids := parseIDs(criteria); len(ids) > 0 {
		var markIDs []int
		for _, pos := range ids {
			if pos >= 1 && pos <= len(docs) {
				markIDs = append(markIDs, docs[pos-1].ID)
			}
		}
		if len(markIDs) == 0 {
			reply(bot, chatID, "❌ Invalid document number(s). Use /docs to see all documents.")
			return
		}

		marked, _ := h.store.MarkOfficial(markIDs...)
		var sb strings.Builder
		sb.WriteString("✅ Marked as official:\n")
		for _, it := range marked {
			sb.WriteString(fmt.Sprintf("  • %s\n", it.Meta().Title))
			h.logger.WithField("item_id", it.Meta().ID).Info("Marked document as official")
		}
		reply(bot, chatID, sb.String())
		return
	}

	// Natural language search
	h.logger.WithField("criteria", criteria).Info("Searching for document by description")
	docID := h.extractor.MatchDocument(context.Background(), criteria, stateDocSummaries(docs))
	if docID != 0 {
		var doc *models.Document
		for _, d := range docs {
			if d.ID == docID {
				doc = d
				break
			}
		}
		if doc != nil {
			if mismatch := docTypeMismatch(criteria, doc); mismatch != "" {
				reply(bot, chatID, fmt.Sprintf("❌ Found '%s' but it's a %s, not %s.\n\nUse /docs to see all documents.",
					doc.Title, doc.DocType, mismatch))
				return
			}
			h.store.MarkOfficial(doc.ID)
			h.logger.WithField("item_id", doc.ID).Info("Marked document as official via description")
			reply(bot, chatID, fmt.Sprintf("✅ Marked as official: %s", doc.Title))
			return
		}
	}

	h.logger.WithField("criteria", criteria).Warn("No document matched description")
	response := fmt.Sprintf("❌ Couldn't find a document matching: '%s'\n\n", criteria) +
		docList(docs) +
		"Use /doc use <number> to select by number"
	reply(bot, chatID, response)
}

// docTypeMismatch checks that the matched document's type agrees with the
// type named in the description, returning the expected type on conflict
func docTypeMismatch(criteria string, doc *models.Document) string {
	lower := strings.ToLower(criteria)
	switch {
	case strings.Contains(lower, "airbnb") && doc.DocType != models.DocTypeAirbnb:
		return "an Airbnb"
	case strings.Contains(lower, "vrbo") && doc.DocType != models.DocTypeVrbo:
		return "a Vrbo"
	case strings.Contains(lower, "google doc") && doc.DocType != models.DocTypeGoogleDoc:
		return "a Google Doc"
	}
	return ""
}

// ---------------------------------------------------------------------------
// DocsHandler – /docs [delete <n> | clear]
// ---------------------------------------------------------------------------

// DocsHandler handles the /docs command: detailed listing and destructive
// document management.
type DocsHandler struct {
	store  *store.Store
	index  *index.Client
	logger *logrus.Logger
}

// NewDocsHandler creates a new DocsHandler
func NewDocsHandler(st *store.Store, idx *index.Client, logger *logrus.Logger) *DocsHandler {
	return &DocsHandler{store: st, index: idx, logger: logger}
}

// Handle processes the /docs command
func (h *DocsHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	docs := h.store.Documents()

	if len(args) > 0 && strings.EqualFold(args[0], "delete") {
		h.handleDelete(bot, message.Chat.ID, docs, args[1:])
		return nil
	}

	if len(args) > 0 && strings.EqualFold(args[0], "clear") {
		for _, d := range docs {
			if err := h.index.Delete(context.Background(), fmt.Sprintf("item_%d_", d.ID)); err != nil {
				h.logger.WithError(err).Warn("Failed to delete document chunks from index")
			}
		}
		count := h.store.ClearDocuments()
		h.logger.Infof("Cleared %d saved documents", count)
		reply(bot, message.Chat.ID, fmt.Sprintf("🗑️ Cleared %d saved document(s) and their indexed content.", count))
		return nil
	}

	if len(docs) == 0 {
		reply(bot, message.Chat.ID,
			"📄 No saved documents yet.\n\n💡 Tip: Just paste Airbnb/Vrbo/Google Doc links in chat - they'll be auto-saved!")
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📄 Saved Documents (%d):\n\n", len(docs)))
	for i, d := range docs {
		official := ""
		if d.IsOfficial {
			official = " ⭐ OFFICIAL"
		}
		sb.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, d.Title, official))
		sb.WriteString(fmt.Sprintf("   Type: %s\n", d.DocType))
		sb.WriteString(fmt.Sprintf("   Saved by: %s\n", d.CreatedBy))
		if addr, ok := d.StructuredData["address"].(string); ok && addr != "" {
			sb.WriteString(fmt.Sprintf("   📍 %s\n", addr))
		}
		if network, ok := d.StructuredData["wifiNetwork"].(string); ok && network != "" {
			sb.WriteString(fmt.Sprintf("   📶 %s\n", network))
		}
		if codes, ok := d.StructuredData["accessCodes"].([]any); ok && len(codes) > 0 {
			sb.WriteString(fmt.Sprintf("   🔑 %d access code(s)\n", len(codes)))
		}
		sb.WriteString(fmt.Sprintf("   🔗 %s\n\n", d.URL))
	}
	sb.WriteString("Commands:\n")
	sb.WriteString("• /doc use <number> - Mark as official\n")
	sb.WriteString("• /doc remove <number> - Unmark as official\n")
	sb.WriteString("• /docs delete <number> - Delete document completely\n")
	sb.WriteString("• /docs clear - Delete all documents")

	reply(bot, message.Chat.ID, sb.String())
	return nil
}

func (h *DocsHandler) handleDelete(bot *tgbotapi.BotAPI, chatID int64, docs []*models.Document, args []string) {
	if len(args) == 0 {
		reply(bot, chatID, "Usage: /docs delete <number>\nExample: /docs delete 1")
		return
	}
	pos, err := strconv.Atoi(args[0])
	if err != nil {
		reply(bot, chatID, "❌ Please provide a valid number. Example: /docs delete 2")
		return
	}
	if pos < 1 || pos > len(docs) {
		reply(bot, chatID, fmt.Sprintf("❌ Invalid document number. Use /docs to see all documents (1-%d)", len(docs)))
		return
	}

	doc := docs[pos-1]
	if err := h.index.Delete(context.Background(), fmt.Sprintf("item_%d_", doc.ID)); err != nil {
		h.logger.WithError(err).Warn("Failed to delete document chunks from index")
	}
	h.store.DeleteItem(doc.ID)

	h.logger.WithField("item_id", doc.ID).Info("Deleted document")
	reply(bot, chatID, fmt.Sprintf("🗑️ Deleted: %s", doc.Title))
}
