package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LeadStatus tracks where a lead sits in the outreach funnel.
type LeadStatus string

const (
	StatusNew              LeadStatus = "new"
	StatusContacted        LeadStatus = "contacted"
	StatusResponded        LeadStatus = "responded"
	StatusInterested       LeadStatus = "interested"
	StatusMeetingRequested LeadStatus = "meeting_requested"
	StatusMeetingScheduled LeadStatus = "meeting_scheduled"
	StatusNotInterested    LeadStatus = "not_interested"
	StatusFollowUp         LeadStatus = "follow_up"
)

// ValidStatus reports whether s is one of the known lead statuses.
func ValidStatus(s LeadStatus) bool {
	switch s {
	case StatusNew, StatusContacted, StatusResponded, StatusInterested,
		StatusMeetingRequested, StatusMeetingScheduled, StatusNotInterested,
		StatusFollowUp:
		return true
	}
	return false
}

// LeadTier is the score band a lead falls into.
type LeadTier string

const (
	TierHot  LeadTier = "hot"
	TierWarm LeadTier = "warm"
	TierCold LeadTier = "cold"
)

// Lead is a prospective customer record.
type Lead struct {
	ID                  uuid.UUID       `json:"id"`
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	CompanyName         string          `json:"company_name"`
	CompanyWebsite      string          `json:"company_website,omitempty"`
	PhoneNumber         string          `json:"phone_number,omitempty"`
	LinkedinURL         string          `json:"linkedin_url,omitempty"`
	Email               string          `json:"email"`
	EmailVerified       bool            `json:"email_verified"`
	Status              LeadStatus      `json:"status"`
	Score               int             `json:"score"`
	Tier                LeadTier        `json:"tier"`
	AssignedTo          *uuid.UUID      `json:"assigned_to,omitempty"`
	LastContactDate     *time.Time      `json:"last_contact_date,omitempty"`
	NextFollowUpDate    *time.Time      `json:"next_follow_up_date,omitempty"`
	ConversationSummary string          `json:"conversation_summary,omitempty"`
	CustomData          json.RawMessage `json:"custom_data,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// LeadFilter narrows lead listings.
type LeadFilter struct {
	Status     LeadStatus
	Tier       LeadTier
	AssignedTo *uuid.UUID
	Query      string
	Limit      int
	Offset     int
}

// LeadsResponse holds a list of leads.
type LeadsResponse struct {
	Leads []Lead `json:"leads"`
	Total int    `json:"total"`
}

// ImportResult summarises a CSV import run.
type ImportResult struct {
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Requeued int      `json:"requeued"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
