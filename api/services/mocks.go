package services

import (
	"github.com/leadflowhq/lead-services/models"
)

// MockNotifier implements the events.Notifier interface for testing
// and records everything published.
type MockNotifier struct {
	Published []models.LeadEvent
	Err       error
}

func (m *MockNotifier) Publish(event models.LeadEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.Published = append(m.Published, event)
	return nil
}

func (m *MockNotifier) Close() {}
