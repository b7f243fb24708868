package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Channel is the medium a message travelled over.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelLinkedin Channel = "linkedin"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Conversation is a single message exchanged with a lead.
type Conversation struct {
	ID             uuid.UUID       `json:"id"`
	LeadID         uuid.UUID       `json:"lead_id"`
	Channel        Channel         `json:"channel"`
	Direction      string          `json:"direction"`
	MessageContent string          `json:"message_content"`
	Read           bool            `json:"read"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// ConversationsResponse holds a lead's message history.
type ConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
}
