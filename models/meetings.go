package models

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus follows a meeting from proposal to completion.
type MeetingStatus string

const (
	MeetingProposed  MeetingStatus = "proposed"
	MeetingTentative MeetingStatus = "tentative"
	MeetingConfirmed MeetingStatus = "confirmed"
	MeetingCompleted MeetingStatus = "completed"
	MeetingCancelled MeetingStatus = "cancelled"
)

// Meeting is a scheduled call with a lead.
type Meeting struct {
	ID              uuid.UUID     `json:"id"`
	LeadID          uuid.UUID     `json:"lead_id"`
	ScheduledTime   time.Time     `json:"scheduled_time"`
	DurationMinutes int           `json:"duration_minutes"`
	MeetingLink     string        `json:"meeting_link,omitempty"`
	CalendarEventID string        `json:"calendar_event_id,omitempty"`
	Status          MeetingStatus `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// MeetingsResponse holds a lead's meetings.
type MeetingsResponse struct {
	Meetings []Meeting `json:"meetings"`
}

// Slot is a free calendar window offered to a lead.
type Slot struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Display string    `json:"display"`
}
