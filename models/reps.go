package models

import (
	"time"

	"github.com/google/uuid"
)

// SalesRep receives leads from the distributor.
type SalesRep struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Priority     int       `json:"priority"`
	LeadCapacity int       `json:"lead_capacity"`
	Active       bool      `json:"active"`
	// AssignedCount is derived, not stored.
	AssignedCount  int        `json:"assigned_count"`
	LastAssignedAt *time.Time `json:"last_assigned_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RepsResponse holds the rep roster.
type RepsResponse struct {
	Reps []SalesRep `json:"reps"`
}
