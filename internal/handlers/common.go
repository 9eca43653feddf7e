package handlers

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tripbot/tripbot/internal/models"
)

// senderName returns the display name used as the member key for the message
// author. Member names are case-sensitive; Telegram identities are stable
// enough that first name wins over username.
func senderName(message *tgbotapi.Message) string {
	if message.From == nil {
		return "someone"
	}
	if message.From.FirstName != "" {
		return message.From.FirstName
	}
	if message.From.UserName != "" {
		return message.From.UserName
	}
	return "someone"
}

// reply sends a plain-text response. Item titles and scraped content may
// contain characters that break Telegram markdown, so dynamic content always
// goes out unformatted.
func reply(bot *tgbotapi.BotAPI, chatID int64, text string) {
	bot.Send(tgbotapi.NewMessage(chatID, text))
}

// replyMarkdown sends a markdown-formatted response, for static usage text
func replyMarkdown(bot *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
}

var numberPattern = regexp.MustCompile(`\d+`)

// parseIDs extracts every number from the argument string
func parseIDs(args string) []int {
	var ids []int
	for _, m := range numberPattern.FindAllString(args, -1) {
		if id, err := strconv.Atoi(m); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// parseAmount parses a dollar amount, tolerating "$" and "," decoration
func parseAmount(s string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	return strconv.ParseFloat(cleaned, 64)
}

// validHTTPURL reports whether s is an absolute http(s) URL
func validHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// itemLabel formats the one-line list entry for an item
func itemLabel(it models.Item) string {
	meta := it.Meta()
	official := ""
	if meta.IsOfficial {
		official = " ⭐"
	}
	switch v := it.(type) {
	case *models.Venue:
		line := fmt.Sprintf("%d. %s", meta.ID, meta.Title)
		if v.PricePerNight > 0 {
			line += fmt.Sprintf(" - $%.0f/night", v.PricePerNight)
		}
		if v.Rating > 0 {
			line += fmt.Sprintf(" ⭐ %.1f", v.Rating)
		}
		return line + official
	case *models.Document:
		return fmt.Sprintf("%d. %s (%s)%s", meta.ID, meta.Title, v.DocType, official)
	case *models.Flight:
		line := fmt.Sprintf("%d. %s", meta.ID, meta.Title)
		if v.Price > 0 {
			line += fmt.Sprintf(" - $%.0f", v.Price)
		}
		return line + official
	default:
		return fmt.Sprintf("%d. %s%s", meta.ID, meta.Title, official)
	}
}

// venueLines formats venue list entries with their links
func venueLines(venues []*models.Venue) string {
	var sb strings.Builder
	for _, v := range venues {
		sb.WriteString(fmt.Sprintf("%d. %s", v.ID, v.Title))
		if v.PricePerNight > 0 {
			sb.WriteString(fmt.Sprintf(" - $%.0f/night", v.PricePerNight))
		}
		if v.Rating > 0 {
			sb.WriteString(fmt.Sprintf(" ⭐ %.1f", v.Rating))
		}
		sb.WriteString("\n")
		if v.URL != "" {
			sb.WriteString(fmt.Sprintf("   🔗 %s\n", v.URL))
		}
	}
	return sb.String()
}
