package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/extract"
	"github.com/tripbot/tripbot/internal/index"
	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
)

// AskHandler handles the /ask command for free-form Q&A over the
// conversation history and saved documents.
type AskHandler struct {
	store     *store.Store
	extractor *extract.Extractor
	index     *index.Client
	logger    *logrus.Logger
}

// NewAskHandler creates a new AskHandler
func NewAskHandler(st *store.Store, ex *extract.Extractor, idx *index.Client, logger *logrus.Logger) *AskHandler {
	return &AskHandler{store: st, extractor: ex, index: idx, logger: logger}
}

// Handle processes the /ask command
func (h *AskHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		reply(bot, message.Chat.ID, "What would you like to know? Example: /ask when does Shrey fly in?")
		return nil
	}

	h.logger.WithField("question", question).Info("Question received")

	ctx := context.Background()

	// Relevant conversation snippets, best effort
	var history []string
	entries, err := h.index.Query(ctx, question, 10)
	if err != nil {
		h.logger.WithError(err).Warn("Index query failed, answering from state only")
	}
	for _, e := range entries {
		if sender := e.Metadata["sender"]; sender != "" {
			history = append(history, fmt.Sprintf("%s: %s", sender, e.Text))
		} else {
			history = append(history, e.Text)
		}
	}
	h.logger.Infof("Found %d relevant indexed messages", len(history))

	trip, _ := h.store.Trip()
	venues := h.store.Venues()
	if len(venues) > 5 {
		venues = venues[:5]
	}
	flights := h.store.Flights()
	if len(flights) > 5 {
		flights = flights[:5]
	}

	stateContext := map[string]any{
		"trip":            trip,
		"members":         h.store.Members(),
		"venues":          venues,
		"flights":         flights,
		"saved_documents": h.store.Documents(),
	}

	answer := h.extractor.Answer(ctx, question, history, stateContext)
	reply(bot, message.Chat.ID, answer)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Answered question")
	return nil
}

// stateDocSummaries converts documents to the matching summaries the
// extractor works with
func stateDocSummaries(docs []*models.Document) []extract.DocInfo {
	out := make([]extract.DocInfo, 0, len(docs))
	for _, d := range docs {
		out = append(out, extract.DocInfo{
			ID:             d.ID,
			Title:          d.Title,
			Type:           string(d.DocType),
			URL:            d.URL,
			StructuredData: d.StructuredData,
		})
	}
	return out
}
