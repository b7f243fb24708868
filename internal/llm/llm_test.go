package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadflowhq/lead-services/internal/appconfig"
	"github.com/leadflowhq/lead-services/models"
)

func templateClient() *Client {
	return NewClient(appconfig.OpenAIConfig{UseTemplates: true})
}

func TestKeywordIntentNegative(t *testing.T) {
	intent := keywordIntent("Please remove me from your list, not interested.")

	assert.Equal(t, "negative", intent.Sentiment)
	assert.False(t, intent.RequestingMeeting)
	assert.Equal(t, models.StatusNotInterested, intent.LeadStatus())
}

func TestKeywordIntentMeeting(t *testing.T) {
	intent := keywordIntent("Sure, can we schedule a call next week?")

	assert.True(t, intent.RequestingMeeting)
	assert.Equal(t, "positive", intent.Sentiment)
	assert.Equal(t, models.StatusMeetingRequested, intent.LeadStatus())
}

func TestKeywordIntentInterest(t *testing.T) {
	intent := keywordIntent("Sounds good, what's the pricing like?")

	assert.True(t, intent.ExpressingInterest)
	assert.Equal(t, models.StatusInterested, intent.LeadStatus())
}

func TestKeywordIntentNeutral(t *testing.T) {
	intent := keywordIntent("Who is this?")

	assert.Equal(t, "neutral", intent.Sentiment)
	assert.Equal(t, models.StatusResponded, intent.LeadStatus())
}

func TestIntentStatusPrecedence(t *testing.T) {
	// Negative sentiment overrides a meeting request.
	intent := &Intent{Sentiment: "negative", RequestingMeeting: true}
	assert.Equal(t, models.StatusNotInterested, intent.LeadStatus())
}

func TestTemplateOutreachMentionsCompany(t *testing.T) {
	c := templateClient()
	lead := &models.Lead{FirstName: "Dana", CompanyName: "Acme Corp"}

	msg, err := c.GenerateOutreach(context.Background(), lead, models.ChannelEmail)
	assert.NoError(t, err)
	assert.Contains(t, msg, "Hi Dana")
	assert.Contains(t, msg, "Acme Corp")

	wa, err := c.GenerateOutreach(context.Background(), lead, models.ChannelWhatsApp)
	assert.NoError(t, err)
	assert.NotEqual(t, msg, wa, "channels get different copy")
}

func TestTemplateReplyFollowsIntent(t *testing.T) {
	c := templateClient()
	lead := &models.Lead{FirstName: "Dana"}

	msg, err := c.GenerateReply(context.Background(), lead, &Intent{Sentiment: "negative"}, "no thanks")
	assert.NoError(t, err)
	assert.Contains(t, msg, "understood")

	msg, err = c.GenerateReply(context.Background(), lead, &Intent{RequestingMeeting: true}, "let's talk")
	assert.NoError(t, err)
	assert.Contains(t, msg, "times")
}

func TestStripFences(t *testing.T) {
	raw := "```json\n{\"requesting_meeting\": true}\n```"
	assert.Equal(t, `{"requesting_meeting": true}`, stripFences(raw))
}
