package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leadflowhq/lead-services/models"
)

// AddConversation records one message exchanged with a lead.
func (l *LeadDB) AddConversation(conv *models.Conversation) error {
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	if conv.Timestamp.IsZero() {
		conv.Timestamp = time.Now().UTC()
	}
	if conv.Metadata == nil {
		conv.Metadata = []byte(`{}`)
	}

	_, err := l.DB.Exec(`
		INSERT INTO conversations (id, lead_id, channel, direction,
			message_content, read, metadata, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		conv.ID, conv.LeadID, conv.Channel, conv.Direction,
		conv.MessageContent, conv.Read, conv.Metadata, conv.Timestamp)
	if err != nil {
		return fmt.Errorf("error inserting conversation: %w", err)
	}
	return nil
}

// GetConversations returns a lead's message history, oldest first.
func (l *LeadDB) GetConversations(leadID uuid.UUID) ([]models.Conversation, error) {
	rows, err := l.DB.Query(`
		SELECT id, lead_id, channel, direction, message_content, read,
			metadata, timestamp
		FROM conversations WHERE lead_id = $1
		ORDER BY timestamp`, leadID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var c models.Conversation
		err := rows.Scan(&c.ID, &c.LeadID, &c.Channel, &c.Direction,
			&c.MessageContent, &c.Read, &c.Metadata, &c.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// MarkConversationsRead flags all inbound messages for a lead as read.
func (l *LeadDB) MarkConversationsRead(leadID uuid.UUID) error {
	_, err := l.DB.Exec(`
		UPDATE conversations SET read = true
		WHERE lead_id = $1 AND direction = $2 AND read = false`,
		leadID, models.DirectionInbound)
	if err != nil {
		return fmt.Errorf("error marking conversations read: %w", err)
	}
	return nil
}
