package db

import (
	"fmt"
	"time"

	"github.com/leadflowhq/lead-services/models"
)

// GetStatsSummary aggregates lead counts for the stats endpoint and the
// daily digest. WhatsApp quota usage is filled in by the caller.
func (l *LeadDB) GetStatsSummary(now time.Time) (*models.StatsSummary, error) {
	summary := &models.StatsSummary{
		ByStatus: make(map[models.LeadStatus]int),
	}

	rows, err := l.DB.Query(`SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("error counting leads by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.LeadStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("error scanning status count: %w", err)
		}
		summary.ByStatus[status] = count
		summary.TotalLeads += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summary.Interested = summary.ByStatus[models.StatusInterested]
	summary.MeetingsScheduled = summary.ByStatus[models.StatusMeetingScheduled]

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	err = l.DB.QueryRow(`SELECT COUNT(*) FROM leads WHERE created_at >= $1`, dayStart).
		Scan(&summary.NewToday)
	if err != nil {
		return nil, fmt.Errorf("error counting new leads: %w", err)
	}

	return summary, nil
}
