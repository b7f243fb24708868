package llm

import (
	"fmt"
	"strings"

	"github.com/leadflowhq/lead-services/models"
)

func greeting(lead *models.Lead) string {
	if name := strings.TrimSpace(lead.FirstName); name != "" {
		return "Hi " + name
	}
	return "Hi there"
}

func outreachTemplate(lead *models.Lead, channel models.Channel) string {
	company := lead.CompanyName
	if company == "" {
		company = "your company"
	}

	if channel == models.ChannelWhatsApp {
		return fmt.Sprintf("%s! I came across %s and thought our lead automation platform could help your sales team close more deals. Would you be open to a quick chat this week?",
			greeting(lead), company)
	}
	return fmt.Sprintf(`%s,

I came across %s and was impressed by what you're building. We help sales teams automate their outreach and follow-up so no lead slips through the cracks.

Would you be open to a quick 30-minute call to see if it's a fit?`,
		greeting(lead), company)
}

func followUpTemplate(lead *models.Lead) string {
	return fmt.Sprintf("%s, just checking in on my earlier note. Happy to share a couple of times for a quick call if you're curious.",
		greeting(lead))
}

func replyTemplate(lead *models.Lead, intent *Intent) string {
	switch {
	case intent.Sentiment == "negative":
		return fmt.Sprintf("%s, understood, thanks for letting me know. I won't take more of your time.", greeting(lead))
	case intent.RequestingMeeting:
		return fmt.Sprintf("%s, great! I'll send over a few times that work and we can lock one in.", greeting(lead))
	case intent.ExpressingInterest:
		return fmt.Sprintf("%s, glad to hear it. Would a quick 30-minute call this week work to walk you through it?", greeting(lead))
	default:
		return fmt.Sprintf("%s, thanks for getting back to me. Is there anything specific you'd like to know?", greeting(lead))
	}
}
