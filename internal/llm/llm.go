package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/leadflowhq/lead-services/internal/appconfig"
	"github.com/leadflowhq/lead-services/models"
)

// Intent is the structured reading of an inbound message.
type Intent struct {
	RequestingMeeting  bool   `json:"requesting_meeting"`
	Sentiment          string `json:"sentiment"`
	ExpressingInterest bool   `json:"expressing_interest"`
	Stage              string `json:"stage"`
	SpecifiedTime      string `json:"specified_time"`
	ConfirmingTime     bool   `json:"confirming_time"`
}

// LeadStatus maps the intent onto the lead's next status. Negative
// sentiment wins over everything else.
func (i *Intent) LeadStatus() models.LeadStatus {
	switch {
	case i.Sentiment == "negative":
		return models.StatusNotInterested
	case i.RequestingMeeting:
		return models.StatusMeetingRequested
	case i.ExpressingInterest:
		return models.StatusInterested
	default:
		return models.StatusResponded
	}
}

// Client wraps the chat completion API for message generation and
// intent analysis. With no API key configured, or in template mode, it
// falls back to canned copy and keyword heuristics.
type Client struct {
	api       openai.Client
	model     string
	templates bool
}

func NewClient(cfg appconfig.OpenAIConfig) *Client {
	c := &Client{
		model:     cfg.Model,
		templates: cfg.UseTemplates || cfg.APIKey == "",
	}
	if cfg.APIKey != "" {
		c.api = openai.NewClient(option.WithAPIKey(cfg.APIKey))
	}
	return c
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.4),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateOutreach produces the first message to a lead on a channel.
func (c *Client) GenerateOutreach(ctx context.Context, lead *models.Lead, channel models.Channel) (string, error) {
	if c.templates {
		return outreachTemplate(lead, channel), nil
	}

	system := "You write short, personal B2B outreach messages. " +
		"No subject line, no signature placeholders, under 120 words. " +
		"Mention the lead's company naturally and end with a soft ask for a quick call."
	user := fmt.Sprintf("Channel: %s\nName: %s %s\nCompany: %s\nWebsite: %s",
		channel, lead.FirstName, lead.LastName, lead.CompanyName, lead.CompanyWebsite)

	msg, err := c.complete(ctx, system, user)
	if err != nil {
		// Template copy is always available, so a provider outage never
		// blocks the outreach pipeline.
		return outreachTemplate(lead, channel), nil
	}
	return msg, nil
}

// GenerateFollowUp produces a nudge for a lead that went quiet.
func (c *Client) GenerateFollowUp(ctx context.Context, lead *models.Lead) (string, error) {
	if c.templates {
		return followUpTemplate(lead), nil
	}

	system := "You write brief, friendly follow-up messages to prospects who have not replied. " +
		"Two sentences maximum. Do not guilt the reader."
	user := fmt.Sprintf("Name: %s\nCompany: %s\nPrevious conversation summary: %s",
		lead.FirstName, lead.CompanyName, lead.ConversationSummary)

	msg, err := c.complete(ctx, system, user)
	if err != nil {
		return followUpTemplate(lead), nil
	}
	return msg, nil
}

// AnalyzeIntent reads an inbound message and extracts the structured
// intent used to advance the lead's status.
func (c *Client) AnalyzeIntent(ctx context.Context, message string, history []models.Conversation) (*Intent, error) {
	if c.templates {
		return keywordIntent(message), nil
	}

	system := `You analyze replies from sales prospects. Respond with only a JSON object:
{"requesting_meeting": bool, "sentiment": "positive"|"neutral"|"negative", "expressing_interest": bool, "stage": "early"|"evaluating"|"deciding", "specified_time": "<verbatim time mention or empty>", "confirming_time": bool}`

	var sb strings.Builder
	for _, conv := range tail(history, 6) {
		fmt.Fprintf(&sb, "[%s %s] %s\n", conv.Channel, conv.Direction, conv.MessageContent)
	}
	fmt.Fprintf(&sb, "\nLatest inbound message: %s", message)

	raw, err := c.complete(ctx, system, sb.String())
	if err != nil {
		return keywordIntent(message), nil
	}

	var intent Intent
	if err := json.Unmarshal([]byte(stripFences(raw)), &intent); err != nil {
		return keywordIntent(message), nil
	}
	return &intent, nil
}

// GenerateReply drafts the response to an inbound message.
func (c *Client) GenerateReply(ctx context.Context, lead *models.Lead, intent *Intent, message string) (string, error) {
	if c.templates {
		return replyTemplate(lead, intent), nil
	}

	system := "You write conversational replies to sales prospects. " +
		"Keep it under 80 words, match the prospect's tone, and if they want a meeting offer to send times."
	user := fmt.Sprintf("Name: %s\nCompany: %s\nSentiment: %s\nRequesting meeting: %t\nTheir message: %s",
		lead.FirstName, lead.CompanyName, intent.Sentiment, intent.RequestingMeeting, message)

	msg, err := c.complete(ctx, system, user)
	if err != nil {
		return replyTemplate(lead, intent), nil
	}
	return msg, nil
}

// Summarize condenses a conversation history into a few sentences
// stored on the lead.
func (c *Client) Summarize(ctx context.Context, history []models.Conversation) (string, error) {
	if len(history) == 0 {
		return "", nil
	}
	if c.templates {
		last := history[len(history)-1]
		return fmt.Sprintf("%d messages exchanged, last over %s.", len(history), last.Channel), nil
	}

	var sb strings.Builder
	for _, conv := range tail(history, 20) {
		fmt.Fprintf(&sb, "[%s %s] %s\n", conv.Channel, conv.Direction, conv.MessageContent)
	}

	system := "Summarize this sales conversation in at most three sentences. " +
		"Note the prospect's interest level and any agreed next step."

	summary, err := c.complete(ctx, system, sb.String())
	if err != nil {
		return "", err
	}
	return summary, nil
}

func tail(history []models.Conversation, n int) []models.Conversation {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// keywordIntent is the heuristic fallback when no model is reachable.
func keywordIntent(message string) *Intent {
	m := strings.ToLower(message)
	intent := &Intent{Sentiment: "neutral", Stage: "early"}

	for _, kw := range []string{"not interested", "no thanks", "unsubscribe", "stop contacting", "remove me"} {
		if strings.Contains(m, kw) {
			intent.Sentiment = "negative"
			return intent
		}
	}
	for _, kw := range []string{"meeting", "call", "demo", "schedule", "calendar", "available"} {
		if strings.Contains(m, kw) {
			intent.RequestingMeeting = true
			intent.Sentiment = "positive"
			break
		}
	}
	for _, kw := range []string{"interested", "tell me more", "sounds good", "pricing", "how much"} {
		if strings.Contains(m, kw) {
			intent.ExpressingInterest = true
			if intent.Sentiment == "neutral" {
				intent.Sentiment = "positive"
			}
			break
		}
	}
	return intent
}
