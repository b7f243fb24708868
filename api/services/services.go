package services

import (
	"github.com/leadflowhq/lead-services/db"
	"github.com/leadflowhq/lead-services/internal/appconfig"
	"github.com/leadflowhq/lead-services/internal/events"
	"github.com/leadflowhq/lead-services/internal/gcal"
	"github.com/leadflowhq/lead-services/internal/llm"
	"github.com/leadflowhq/lead-services/internal/outreach"
	"github.com/leadflowhq/lead-services/internal/ratelimit"
	"github.com/leadflowhq/lead-services/internal/scoring"
	"github.com/leadflowhq/lead-services/internal/secrets"
)

// Service contains all shared dependencies for handlers. Optional
// integrations stay nil when disabled in config.
type Service struct {
	Config    *appconfig.Config
	DB        *db.LeadDB
	Publisher events.Notifier
	Scorer    *scoring.Scorer
	LLM       *llm.Client
	Email     *outreach.EmailSender
	WhatsApp  *outreach.WhatsAppSender
	Telegram  *outreach.TelegramNotifier
	Quota     *ratelimit.Quota
	Calendar  *gcal.Scheduler
	Secrets   *secrets.Store
}
