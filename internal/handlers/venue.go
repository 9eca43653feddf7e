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
	"github.com/tripbot/tripbot/internal/scraper"
	"github.com/tripbot/tripbot/internal/store"
)

// VenueHandler handles the /venue command: accommodation search through the
// scraper, and paging through stored results with "/venue next".
type VenueHandler struct {
	store         *store.Store
	extractor     *extract.Extractor
	scraper       *scraper.Client
	logger        *logrus.Logger
	pageSize      int
	maxVenues     int
	searchTimeout time.Duration
}

// NewVenueHandler creates a new VenueHandler
func NewVenueHandler(st *store.Store, ex *extract.Extractor, sc *scraper.Client, pageSize, maxVenues int, searchTimeout time.Duration, logger *logrus.Logger) *VenueHandler {
	return &VenueHandler{
		store:         st,
		extractor:     ex,
		scraper:       sc,
		logger:        logger,
		pageSize:      pageSize,
		maxVenues:     maxVenues,
		searchTimeout: searchTimeout,
	}
}

// Handle processes the /venue command
func (h *VenueHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID,
			"Usage: /venue <search criteria>\n"+
				"Example: /venue Lake Tahoe, 4 people, Aug 25-30\n\n"+
				"Or: /venue next - Show next 3 venues\n\n"+
				"Tip: Just paste Airbnb/Vrbo/Google Doc links - they'll be auto-saved!")
		return nil
	}

	if len(args) == 1 && strings.EqualFold(args[0], "next") {
		h.showNextPage(bot, message.Chat.ID)
		return nil
	}

	query := strings.Join(args, " ")
	h.logger.WithField("query", query).Info("Venue search")

	trip, _ := h.store.Trip()
	criteria := h.extractor.ExtractVenueCriteria(context.Background(), query, trip)
	if criteria.NeedsClarification {
		question := criteria.ClarificationQuestion
		if question == "" {
			question = "Could you provide more details about the venue you're looking for?"
		}
		reply(bot, message.Chat.ID, question)
		return nil
	}

	h.logger.WithFields(logrus.Fields{
		"destination": criteria.Destination,
		"checkin":     criteria.Checkin,
		"checkout":    criteria.Checkout,
		"adults":      criteria.Adults,
	}).Info("Extracted venue criteria")

	go h.searchVenues(bot, message.Chat.ID, criteria, senderName(message))

	reply(bot, message.Chat.ID, "🔍 Searching Airbnb and Vrbo in background, I'll notify you when ready...")
	return nil
}

// showNextPage pages through stored venues
func (h *VenueHandler) showNextPage(bot *tgbotapi.BotAPI, chatID int64) {
	page, start, total, wrapped := h.store.NextVenuePage(h.pageSize)

	if total == 0 {
		reply(bot, chatID, "No venues to show. Use /venue to search first!")
		return
	}
	if wrapped {
		reply(bot, chatID, fmt.Sprintf(
			"You've seen all %d venues! Resetting to start.\n\n"+
				"Use /venue next to see the first %d again, or /list venues to see all at once.",
			total, h.pageSize))
		return
	}

	end := start + len(page)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏠 Venues %d-%d of %d\n\n", start+1, end, total))
	sb.WriteString(venueLines(page))

	if end < total {
		sb.WriteString(fmt.Sprintf("\n💡 /venue next for more (%d remaining)", total-end))
	} else {
		sb.WriteString("\n✅ That's all! Use /list venues to see all")
	}
	sb.WriteString("\n💡 /show <number> for details | /comment <number> <text>")

	reply(bot, chatID, sb.String())
}

// searchVenues runs the scraper search in the background, replaces the
// stored venue set with the fresh results and reports the first page.
func (h *VenueHandler) searchVenues(bot *tgbotapi.BotAPI, chatID int64, criteria extract.VenueCriteria, sender string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("Panic in venue search: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.searchTimeout)
	defer cancel()

	adults := criteria.Adults
	if adults == 0 {
		adults = 2
	}
	listings, err := h.scraper.SearchVenues(ctx, scraper.VenueQuery{
		Location: criteria.Destination,
		Checkin:  criteria.Checkin,
		Checkout: criteria.Checkout,
		Adults:   adults,
		MaxPrice: criteria.Budget,
	})
	if len(listings) == 0 {
		if err != nil {
			h.logger.WithError(err).Error("Venue search failed")
			reply(bot, chatID, "❌ Sorry, something went wrong with the venue search. Please try again.")
		} else {
			reply(bot, chatID, "😕 No venues found matching your criteria. Try adjusting your search!")
		}
		return
	}
	if err != nil {
		h.logger.WithError(err).Warn("Venue search partially failed")
	}

	h.logger.Infof("Found %d total venues", len(listings))

	// Fresh search replaces the previous result set; paging restarts after
	// the first page shown inline below.
	h.store.ClearVenues()

	if len(listings) > h.maxVenues {
		listings = listings[:h.maxVenues]
	}
	created := make([]*models.Venue, 0, len(listings))
	for _, l := range listings {
		title := l.Name
		if title == "" {
			title = "Unknown Venue"
		}
		venue := &models.Venue{
			ItemMeta: models.ItemMeta{
				Title:     title,
				URL:       l.URL,
				CreatedBy: sender,
			},
			PricePerNight: l.PricePerNight,
			TotalPrice:    l.TotalPrice,
			Rating:        l.Rating,
			ReviewCount:   l.ReviewCount,
			ImageURL:      l.ImageURL,
			Amenities:     l.Amenities,
			Bedrooms:      l.Bedrooms,
			Beds:          l.Beds,
			Source:        l.Source,
		}
		h.store.AddItem(venue)
		created = append(created, venue)
	}
	h.store.SetVenuePageIndex(h.pageSize)

	firstPage := created
	if len(firstPage) > h.pageSize {
		firstPage = firstPage[:h.pageSize]
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏠 Found %d venues!\n\n", len(created)))
	sb.WriteString(venueLines(firstPage))

	if len(created) > h.pageSize {
		sb.WriteString(fmt.Sprintf("\nShowing %d of %d. Use /venue next for more.\n", h.pageSize, len(created)))
	}
	sb.WriteString("\n💡 /show <number> for full details")
	sb.WriteString("\n💡 /comment <number> <text> to share thoughts")

	h.logger.Infof("Created %d venue items", len(created))
	reply(bot, chatID, sb.String())
}
