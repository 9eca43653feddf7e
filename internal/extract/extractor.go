package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

// Extractor turns free-text chat messages into structured search criteria
// using a language model. Every failure degrades to a needs-clarification
// result or a canned fallback; extraction problems never crash a command.
type Extractor struct {
	client  openai.Client
	model   openai.ChatModel
	timeout time.Duration
	logger  *logrus.Logger
	enabled bool
}

// New creates an Extractor. With an empty API key the extractor is disabled
// and every call returns its fallback result.
func New(apiKey string, timeout time.Duration, logger *logrus.Logger) *Extractor {
	return &Extractor{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   openai.ChatModelGPT4oMini,
		timeout: timeout,
		logger:  logger,
		enabled: apiKey != "",
	}
}

// Enabled reports whether an API key is configured
func (e *Extractor) Enabled() bool {
	return e.enabled
}

// completeJSON sends a system+user prompt pair with JSON response format and
// unmarshals the reply into out.
func (e *Extractor) completeJSON(ctx context.Context, system, user string, temperature float64, out any) error {
	if !e.enabled {
		return fmt.Errorf("extraction disabled: no API key configured")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("chat completion returned no choices")
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("decode model reply: %w", err)
	}
	return nil
}

// completeText sends a system+user prompt pair and returns the plain reply
func (e *Extractor) completeText(ctx context.Context, system, user string, temperature float64) (string, error) {
	if !e.enabled {
		return "", fmt.Errorf("extraction disabled: no API key configured")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func dateContext() string {
	now := time.Now()
	return fmt.Sprintf(`TODAY'S DATE: %s
CURRENT YEAR: %d

When parsing dates:
- If year is not specified, assume the CURRENT year (%d) or next year if the date has passed
- Convert relative dates (e.g., "next week", "nov 21") to YYYY-MM-DD format
- For month-only dates, use the current year if that month hasn't passed, otherwise next year`,
		now.Format("2006-01-02"), now.Year(), now.Year())
}

func toJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ---------------------------------------------------------------------------
// Venue criteria
// ---------------------------------------------------------------------------

// VenueCriteria is the structured form of a venue search request
type VenueCriteria struct {
	Destination           string  `json:"destination"`
	Checkin               string  `json:"checkin"`
	Checkout              string  `json:"checkout"`
	Adults                int     `json:"adults"`
	Children              int     `json:"children"`
	Budget                float64 `json:"budget"`
	NeedsClarification    bool    `json:"needs_clarification"`
	ClarificationQuestion string  `json:"clarification_question"`
}

// ExtractVenueCriteria pulls venue search criteria out of a chat message,
// using the current trip as context for defaults.
func (e *Extractor) ExtractVenueCriteria(ctx context.Context, message string, tripContext any) VenueCriteria {
	system := fmt.Sprintf(`You are a helpful travel planning assistant. Extract venue search criteria from the user's message.

%s

Current trip context: %s

Extract and return JSON with these fields:
- destination (string): Where they want to stay
- checkin (string): Check-in date in YYYY-MM-DD format
- checkout (string): Check-out date in YYYY-MM-DD format
- adults (number): Number of adults
- children (number): Number of children
- budget (number): Maximum budget per night or total
- needs_clarification (boolean): True if critical info is missing
- clarification_question (string): Question to ask if needs_clarification is true

If information can be inferred from trip context, use it. Only ask for clarification if truly necessary.`,
		dateContext(), toJSON(tripContext))

	var out VenueCriteria
	if err := e.completeJSON(ctx, system, message, 0.3, &out); err != nil {
		e.logger.WithError(err).Error("Venue criteria extraction failed")
		return VenueCriteria{
			NeedsClarification:    true,
			ClarificationQuestion: "Could you tell me where you want to stay, check-in/out dates, and how many people?",
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Flight criteria
// ---------------------------------------------------------------------------

// FlightSearchCriteria is the structured form of a flight search request
type FlightSearchCriteria struct {
	Origin                string  `json:"origin"`
	Destination           string  `json:"destination"`
	DepartureDate         string  `json:"departure_date"`
	ReturnDate            string  `json:"return_date"`
	Budget                float64 `json:"budget"`
	NeedsClarification    bool    `json:"needs_clarification"`
	ClarificationQuestion string  `json:"clarification_question"`
}

// ExtractFlightCriteria pulls flight search criteria for a member out of a
// chat message, using trip and member context for defaults.
func (e *Extractor) ExtractFlightCriteria(ctx context.Context, message, memberName string, tripContext, memberContext any) FlightSearchCriteria {
	system := fmt.Sprintf(`You are a helpful travel planning assistant. Extract flight search criteria for %s.

%s

Current trip context: %s
Member context: %s

Extract and return JSON with these fields:
- origin (string): Departure airport code or city
- destination (string): Arrival airport code or city
- departure_date (string): Date in YYYY-MM-DD format
- return_date (string): Return date in YYYY-MM-DD format (if round trip)
- budget (number): Maximum price willing to pay
- needs_clarification (boolean): True if critical info is missing
- clarification_question (string): Question to ask if needs_clarification is true

Use trip and member context to fill in defaults when possible.`,
		memberName, dateContext(), toJSON(tripContext), toJSON(memberContext))

	var out FlightSearchCriteria
	if err := e.completeJSON(ctx, system, message, 0.3, &out); err != nil {
		e.logger.WithError(err).Error("Flight criteria extraction failed")
		return FlightSearchCriteria{
			NeedsClarification:    true,
			ClarificationQuestion: fmt.Sprintf("Could you tell me where %s is flying from, when, and what's the budget?", memberName),
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Budget command parsing
// ---------------------------------------------------------------------------

// BudgetCommand is a parsed budget subcommand
type BudgetCommand struct {
	Action string  `json:"action"` // "show" or "add"
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes"`
}

// ParseBudgetCommand interprets a free-form budget command. On failure the
// fallback is a plain "show".
func (e *Extractor) ParseBudgetCommand(ctx context.Context, message string) BudgetCommand {
	system := `Parse the budget command and return JSON with:
- action (string): "show" or "add"
- item (string): Description of expense (for add action)
- amount (number): Amount in dollars (for add action)
- notes (string): Additional notes

Examples:
"budget show" -> {"action": "show"}
"budget add airbnb $500" -> {"action": "add", "item": "airbnb", "amount": 500}
"budget add flight 250 for shrey" -> {"action": "add", "item": "flight", "amount": 250, "notes": "for shrey"}`

	var out BudgetCommand
	if err := e.completeJSON(ctx, system, message, 0.3, &out); err != nil {
		e.logger.WithError(err).Error("Budget command parsing failed")
		return BudgetCommand{Action: "show"}
	}
	if out.Action == "" {
		out.Action = "show"
	}
	return out
}

// ---------------------------------------------------------------------------
// Contextual Q&A
// ---------------------------------------------------------------------------

// Answer answers a question from relevant conversation history and the
// current trip state. On failure it returns a polite retry message.
func (e *Extractor) Answer(ctx context.Context, question string, history []string, stateContext any) string {
	system := fmt.Sprintf(`You are a helpful travel planning assistant. Answer the user's question using the conversation history and current trip state.

Conversation history:
%s

Current trip state:
%s

Provide a clear, concise answer. If information is missing, let the user know and suggest how they can provide it.`,
		strings.Join(history, "\n"), toJSON(stateContext))

	answer, err := e.completeText(ctx, system, question, 0.5)
	if err != nil {
		e.logger.WithError(err).Error("Question answering failed")
		return "Sorry, I had trouble processing that question. Could you try rephrasing it?"
	}
	return answer
}

// ---------------------------------------------------------------------------
// Document matching
// ---------------------------------------------------------------------------

// DocInfo summarizes a saved document for matching by description
type DocInfo struct {
	ID             int            `json:"id"`
	Title          string         `json:"title"`
	Type           string         `json:"type"`
	URL            string         `json:"url"`
	StructuredData map[string]any `json:"structured_data,omitempty"`
}

// MatchDocument finds the saved document matching a natural-language
// description. Returns the matched id, or 0 when there is no confident match.
func (e *Extractor) MatchDocument(ctx context.Context, description string, docs []DocInfo) int {
	if len(docs) == 0 {
		return 0
	}

	system := fmt.Sprintf(`You are helping find a document that matches the user's description.

Available documents:
%s

User is looking for: %q

IMPORTANT MATCHING RULES:
- If user says "airbnb" or "vrbo", ONLY match documents with type "airbnb" or "vrbo"
- If user says "google doc", ONLY match documents with type "google_doc"
- Match on title, address, or location mentioned in the description
- Be strict - only return high confidence if it's a clear match

Return JSON with:
- doc_id (number): The ID of the matching document, or 0 if no good match
- confidence (string): "high", "medium", or "low"
- reason (string): Brief explanation of why this doc matches (or doesn't)`,
		toJSON(docs), description)

	var out struct {
		DocID      int    `json:"doc_id"`
		Confidence string `json:"confidence"`
		Reason     string `json:"reason"`
	}
	if err := e.completeJSON(ctx, system, "Find the document matching: "+description, 0.3, &out); err != nil {
		e.logger.WithError(err).Error("Document matching failed")
		return 0
	}
	if out.DocID != 0 && (out.Confidence == "high" || out.Confidence == "medium") {
		return out.DocID
	}
	return 0
}

// ---------------------------------------------------------------------------
// Flight alternatives
// ---------------------------------------------------------------------------

// SuggestFlightAlternatives generates suggestions when a flight search found
// nothing usable. The reason is "budget", "no_availability" or similar.
func (e *Extractor) SuggestFlightAlternatives(ctx context.Context, criteria FlightSearchCriteria, reason string) string {
	system := fmt.Sprintf(`You are a helpful travel assistant. The user's flight search didn't find good options due to: %s.

Original search criteria:
%s

Suggest 2-3 smart alternatives like:
- Flying a day earlier/later
- Using nearby airports (e.g., SFO vs OAK vs SJC for SF area)
- Connecting flights if they were searching direct
- Different times of day

Be specific and practical.`, reason, toJSON(criteria))

	suggestion, err := e.completeText(ctx, system, "What alternatives would you suggest?", 0.7)
	if err != nil {
		e.logger.WithError(err).Error("Alternative suggestion failed")
		return "Try searching for flights on different dates or from nearby airports."
	}
	return suggestion
}
