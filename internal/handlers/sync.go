package handlers

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
	"github.com/tripbot/tripbot/internal/syncer"
)

// SyncHandler handles the /sync command: connecting the shared Google Doc
// and controlling auto-sync.
type SyncHandler struct {
	store  *store.Store
	syncer *syncer.Syncer
	logger *logrus.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(st *store.Store, sy *syncer.Syncer, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{store: st, syncer: sy, logger: logger}
}

// Handle processes the /sync command
func (h *SyncHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	cfg := h.store.SyncConfig()

	if len(args) == 0 {
		if cfg.DocURL == "" {
			reply(bot, message.Chat.ID,
				"No Google Doc connected.\n\nUsage: /sync setup <url>\n\n"+
					"1. Create a Google Doc\n"+
					"2. Share → Anyone with link can EDIT\n"+
					"3. Copy the URL\n"+
					"4. /sync setup <url>")
			return nil
		}
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("📄 Connected Doc:\n%s\n\n", cfg.DocURL))
		sb.WriteString(fmt.Sprintf("Auto-sync: %s\n", enabledLabel(cfg.Enabled)))
		sb.WriteString(lastSyncLine(cfg))
		sb.WriteString("\nCommands:\n")
		sb.WriteString("• /sync now - Force sync\n")
		sb.WriteString("• /sync enable/disable - Toggle auto-sync")
		reply(bot, message.Chat.ID, sb.String())
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "setup":
		h.handleSetup(bot, message.Chat.ID, args[1:])
	case "now":
		if cfg.DocURL == "" {
			reply(bot, message.Chat.ID, "No doc connected. Use: /sync setup <url>")
			return nil
		}
		h.logger.Info("Manual sync requested")
		h.syncer.TriggerNow()
		reply(bot, message.Chat.ID, "🔄 Syncing to Google Doc...\n\nThis takes ~30 seconds. Check the doc in a moment!")
	case "enable":
		if cfg.DocURL == "" {
			reply(bot, message.Chat.ID, "No doc connected. Use: /sync setup <url> first")
			return nil
		}
		h.store.UpdateSyncConfig(func(c *models.SyncConfig) { c.Enabled = true })
		reply(bot, message.Chat.ID, "✅ Auto-sync enabled\n\nDoc will update automatically on changes.")
	case "disable":
		h.store.UpdateSyncConfig(func(c *models.SyncConfig) { c.Enabled = false })
		reply(bot, message.Chat.ID, "⏸️ Auto-sync disabled\n\nDoc is still connected. Use /sync now to manually sync.")
	case "status":
		h.handleStatus(bot, message.Chat.ID)
	default:
		reply(bot, message.Chat.ID,
			"Usage: /sync setup/now/enable/disable/status\n\nExamples:\n• /sync setup <url>\n• /sync now\n• /sync status")
	}
	return nil
}

func (h *SyncHandler) handleSetup(bot *tgbotapi.BotAPI, chatID int64, args []string) {
	if len(args) == 0 {
		reply(bot, chatID, "Usage: /sync setup <google-doc-url>\n\nMake sure the doc is set to 'Anyone with link can edit'!")
		return
	}
	docURL := strings.TrimSpace(args[0])
	if !validHTTPURL(docURL) || !strings.Contains(docURL, "docs.google.com/document") {
		reply(bot, chatID, "❌ Must be a Google Doc URL\n\nExample: https://docs.google.com/document/d/...")
		return
	}

	h.store.UpdateSyncConfig(func(c *models.SyncConfig) {
		c.DocURL = docURL
		c.Enabled = true
	})

	h.logger.Info("Google Doc connected, running initial sync")
	h.syncer.TriggerNow()
	go h.reportSetupResult(bot, chatID, docURL)

	reply(bot, chatID, "🔄 Connecting to Google Doc...\n\nTesting permissions and doing initial sync (~30 sec).\n\nI'll notify you when ready!")
}

// reportSetupResult waits out the initial publish and reports whether the
// doc accepted it
func (h *SyncHandler) reportSetupResult(bot *tgbotapi.BotAPI, chatID int64, docURL string) {
	time.Sleep(35 * time.Second)

	switch h.store.SyncConfig().LastSyncStatus {
	case models.SyncStatusSuccess:
		reply(bot, chatID, fmt.Sprintf(
			"✅ Connected to Google Doc!\n\nAuto-sync enabled ✨\n\nThe doc will update when you:\n"+
				"• Add venues/docs/flights\n"+
				"• Add comments (/comment)\n"+
				"• Mark items official (/official)\n"+
				"• Update budget\n\nView: %s", docURL))
	case models.SyncStatusFailed:
		reply(bot, chatID, fmt.Sprintf(
			"❌ Could not sync to document.\n\nPlease check:\n"+
				"1. Doc is set to 'Anyone with link can EDIT'\n"+
				"2. URL is correct: %s\n"+
				"3. Try /sync now to retry", docURL))
	default:
		reply(bot, chatID, "⏳ Initial sync is still running. Use /sync status to check.")
	}
}

func (h *SyncHandler) handleStatus(bot *tgbotapi.BotAPI, chatID int64) {
	cfg := h.store.SyncConfig()
	if cfg.DocURL == "" {
		reply(bot, chatID, "No Google Doc connected.\n\nUse /sync setup <url> to connect.")
		return
	}

	stats := h.store.Stats()

	var sb strings.Builder
	sb.WriteString("📊 Sync Status\n\n")
	sb.WriteString(fmt.Sprintf("Doc: %s\n\n", cfg.DocURL))
	sb.WriteString(fmt.Sprintf("Auto-sync: %s\n", enabledLabel(cfg.Enabled)))
	sb.WriteString(lastSyncLine(cfg))
	sb.WriteString(fmt.Sprintf("Status: %s\n\n", cfg.LastSyncStatus))
	sb.WriteString("📊 Data to sync:\n")
	sb.WriteString(fmt.Sprintf("• Total items: %d\n", stats.TotalItems))
	sb.WriteString(fmt.Sprintf("• Official items: %d\n", stats.Official))
	sb.WriteString(fmt.Sprintf("• Venues: %d\n", stats.Venues))
	sb.WriteString(fmt.Sprintf("• Flights: %d\n", stats.Flights))
	sb.WriteString(fmt.Sprintf("• Documents: %d\n", stats.Documents))

	reply(bot, chatID, sb.String())
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "✅ Enabled"
	}
	return "❌ Disabled"
}

func lastSyncLine(cfg models.SyncConfig) string {
	if cfg.LastSyncAt == "" {
		return "Last sync: Never\n"
	}
	if t, err := time.Parse(time.RFC3339, cfg.LastSyncAt); err == nil {
		return fmt.Sprintf("Last sync: %s (%s)\n", t.Format("Jan 02 at 3:04 PM"), cfg.LastSyncStatus)
	}
	return fmt.Sprintf("Last sync: %s (%s)\n", cfg.LastSyncAt, cfg.LastSyncStatus)
}
