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

// FlightHandler handles the /flight command: flight search for a trip
// member, filtered by their personal budget when one is set.
type FlightHandler struct {
	store         *store.Store
	extractor     *extract.Extractor
	scraper       *scraper.Client
	logger        *logrus.Logger
	maxFlights    int
	searchTimeout time.Duration
}

// NewFlightHandler creates a new FlightHandler
func NewFlightHandler(st *store.Store, ex *extract.Extractor, sc *scraper.Client, maxFlights int, searchTimeout time.Duration, logger *logrus.Logger) *FlightHandler {
	return &FlightHandler{
		store:         st,
		extractor:     ex,
		scraper:       sc,
		logger:        logger,
		maxFlights:    maxFlights,
		searchTimeout: searchTimeout,
	}
}

// Handle processes the /flight command
func (h *FlightHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	query := strings.Join(args, " ")
	h.logger.WithField("query", query).Info("Flight search")

	memberName := senderName(message)
	member := h.store.GetOrCreateMember(memberName)
	trip, _ := h.store.Trip()

	criteria := h.extractor.ExtractFlightCriteria(context.Background(), query, memberName, trip, member)
	if criteria.NeedsClarification {
		question := criteria.ClarificationQuestion
		if question == "" {
			question = "Could you provide more details about the flight?"
		}
		reply(bot, message.Chat.ID, question)
		return nil
	}

	h.logger.WithFields(logrus.Fields{
		"member":      memberName,
		"origin":      criteria.Origin,
		"destination": criteria.Destination,
		"date":        criteria.DepartureDate,
	}).Info("Extracted flight criteria")

	go h.searchFlights(bot, message.Chat.ID, criteria, memberName, member.Budget)

	reply(bot, message.Chat.ID, "🔍 Searching Google Flights in background, I'll notify you when ready...")
	return nil
}

// searchFlights runs the scraper search in the background and stores the
// best options as flight items for the member.
func (h *FlightHandler) searchFlights(bot *tgbotapi.BotAPI, chatID int64, criteria extract.FlightSearchCriteria, memberName string, memberBudget *float64) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("Panic in flight search: %v", r)
		}
	}()

	if criteria.Origin == "" || criteria.Destination == "" || criteria.DepartureDate == "" {
		reply(bot, chatID, "❌ Missing required flight information. Please try again.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.searchTimeout)
	defer cancel()

	flights, err := h.scraper.SearchFlights(ctx, scraper.FlightQuery{
		Origin:        criteria.Origin,
		Destination:   criteria.Destination,
		DepartureDate: criteria.DepartureDate,
		ReturnDate:    criteria.ReturnDate,
	})
	if err != nil {
		h.logger.WithError(err).Error("Flight search failed")
		reply(bot, chatID, "❌ Failed to search flights. Please try again later.")
		return
	}

	h.logger.Infof("Scraper returned %d flights", len(flights))
	if len(flights) == 0 {
		suggestions := h.extractor.SuggestFlightAlternatives(ctx, criteria, "no_availability")
		reply(bot, chatID, "😕 No flights found. "+suggestions)
		return
	}

	// Personal budget filter
	if memberBudget != nil && *memberBudget > 0 {
		var affordable []scraper.FlightOption
		for _, f := range flights {
			if f.Price <= *memberBudget {
				affordable = append(affordable, f)
			}
		}
		if len(affordable) == 0 {
			h.logger.Infof("No flights within $%.0f budget", *memberBudget)
			suggestions := h.extractor.SuggestFlightAlternatives(ctx, criteria, "budget")
			reply(bot, chatID, fmt.Sprintf("💰 No flights within $%.0f budget. %s", *memberBudget, suggestions))
			return
		}
		flights = affordable
	}

	found := len(flights)
	if len(flights) > h.maxFlights {
		flights = flights[:h.maxFlights]
	}

	stored := make([]*models.Flight, 0, len(flights))
	for _, f := range flights {
		departure := f.DepartureAirport
		if departure == "" {
			departure = "unknown"
		}
		arrival := f.ArrivalAirport
		if arrival == "" {
			arrival = "unknown"
		}
		route := departure + "->" + arrival

		airline := f.Airline
		if airline == "" {
			airline = "Unknown"
		}
		title := airline + " - " + route
		if f.FlightNumber != "" {
			title = fmt.Sprintf("%s %s - %s", airline, f.FlightNumber, route)
		}

		flight := &models.Flight{
			ItemMeta: models.ItemMeta{
				Title:     title,
				URL:       f.URL,
				CreatedBy: memberName,
			},
			Member:        memberName,
			Route:         route,
			Airline:       airline,
			FlightNumber:  f.FlightNumber,
			DepartureTime: f.DepartureTime,
			ArrivalTime:   f.ArrivalTime,
			Duration:      f.Duration,
			Stops:         f.Stops,
			Price:         f.Price,
		}
		h.store.AddItem(flight)
		stored = append(stored, flight)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✈️ Found %d flights for %s!\n\n", found, memberName))
	for _, f := range stored {
		sb.WriteString(fmt.Sprintf("%d. %s", f.ID, f.Airline))
		if f.FlightNumber != "" {
			sb.WriteString(" " + f.FlightNumber)
		}
		sb.WriteString("\n   " + f.Route)
		if f.DepartureTime != "" {
			sb.WriteString(" at " + f.DepartureTime)
		}
		sb.WriteString("\n")
		if f.Duration != "" {
			sb.WriteString("   ⏱️ " + f.Duration)
			if f.IsNonstop() {
				sb.WriteString(" (nonstop)")
			} else if f.Stops == 1 {
				sb.WriteString(" (1 stop)")
			} else {
				sb.WriteString(fmt.Sprintf(" (%d stops)", f.Stops))
			}
			sb.WriteString("\n")
		}
		if f.Price > 0 {
			sb.WriteString(fmt.Sprintf("   💰 $%.2f\n", f.Price))
		}
		if f.URL != "" {
			sb.WriteString("   🔗 " + f.URL + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("💡 Use /show <number> for details | /list flights to see all")

	h.logger.Infof("Stored %d flights for %s", len(stored), memberName)
	reply(bot, chatID, sb.String())
}
