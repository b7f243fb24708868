package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead lifecycle event actions published to the message bus.
const (
	EventLeadCreated   = "lead.created"
	EventLeadUpdated   = "lead.updated"
	EventLeadDeleted   = "lead.deleted"
	EventLeadResponded = "lead.responded"
)

// LeadEvent is the wire payload for lead lifecycle events.
type LeadEvent struct {
	Action    string     `json:"action"`
	LeadID    uuid.UUID  `json:"lead_id"`
	Status    LeadStatus `json:"status"`
	Channel   Channel    `json:"channel,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// StatsSummary is the analytics payload for the stats endpoint and the
// daily manager digest.
type StatsSummary struct {
	TotalLeads        int                `json:"total_leads"`
	NewToday          int                `json:"new_today"`
	Interested        int                `json:"interested"`
	MeetingsScheduled int                `json:"meetings_scheduled"`
	ByStatus          map[LeadStatus]int `json:"by_status"`
	WhatsApp          QuotaUsage         `json:"whatsapp"`
}

// QuotaUsage reports outbound send quota consumption.
type QuotaUsage struct {
	DailyCount      int  `json:"daily_count"`
	DailyLimit      int  `json:"daily_limit"`
	DailyRemaining  int  `json:"daily_remaining"`
	HourlyCount     int  `json:"hourly_count"`
	HourlyLimit     int  `json:"hourly_limit"`
	HourlyRemaining int  `json:"hourly_remaining"`
	CanSend         bool `json:"can_send"`
}
