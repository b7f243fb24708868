package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leadflowhq/lead-services/models"
)

// CreateMeeting records a meeting for a lead.
func (l *LeadDB) CreateMeeting(meeting *models.Meeting) error {
	if meeting.ID == uuid.Nil {
		meeting.ID = uuid.New()
	}
	meeting.CreatedAt = time.Now().UTC()
	if meeting.Status == "" {
		meeting.Status = models.MeetingProposed
	}

	_, err := l.DB.Exec(`
		INSERT INTO meetings (id, lead_id, scheduled_time, duration_minutes,
			meeting_link, calendar_event_id, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		meeting.ID, meeting.LeadID, meeting.ScheduledTime,
		meeting.DurationMinutes, meeting.MeetingLink, meeting.CalendarEventID,
		meeting.Status, meeting.Notes, meeting.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting meeting: %w", err)
	}
	return nil
}

// GetMeetings returns a lead's meetings, most recent first.
func (l *LeadDB) GetMeetings(leadID uuid.UUID) ([]models.Meeting, error) {
	rows, err := l.DB.Query(`
		SELECT id, lead_id, scheduled_time, duration_minutes, meeting_link,
			calendar_event_id, status, notes, created_at
		FROM meetings WHERE lead_id = $1
		ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving meetings: %w", err)
	}
	defer rows.Close()

	var meetings []models.Meeting
	for rows.Next() {
		var m models.Meeting
		err := rows.Scan(&m.ID, &m.LeadID, &m.ScheduledTime,
			&m.DurationMinutes, &m.MeetingLink, &m.CalendarEventID,
			&m.Status, &m.Notes, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// GetLatestPendingMeeting returns the lead's most recent meeting still
// awaiting confirmation, or nil when there is none.
func (l *LeadDB) GetLatestPendingMeeting(leadID uuid.UUID) (*models.Meeting, error) {
	var m models.Meeting
	err := l.DB.QueryRow(`
		SELECT id, lead_id, scheduled_time, duration_minutes, meeting_link,
			calendar_event_id, status, notes, created_at
		FROM meetings
		WHERE lead_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC LIMIT 1`,
		leadID, models.MeetingProposed, models.MeetingTentative).
		Scan(&m.ID, &m.LeadID, &m.ScheduledTime, &m.DurationMinutes,
			&m.MeetingLink, &m.CalendarEventID, &m.Status, &m.Notes,
			&m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving pending meeting: %w", err)
	}
	return &m, nil
}

// GetMeetingByCalendarEvent resolves a meeting from a calendar event ID.
// Calendar webhooks reference events, not meetings.
func (l *LeadDB) GetMeetingByCalendarEvent(eventID string) (*models.Meeting, error) {
	var m models.Meeting
	err := l.DB.QueryRow(`
		SELECT id, lead_id, scheduled_time, duration_minutes, meeting_link,
			calendar_event_id, status, notes, created_at
		FROM meetings WHERE calendar_event_id = $1`, eventID).
		Scan(&m.ID, &m.LeadID, &m.ScheduledTime, &m.DurationMinutes,
			&m.MeetingLink, &m.CalendarEventID, &m.Status, &m.Notes,
			&m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error retrieving meeting by event: %w", err)
	}
	return &m, nil
}

// UpdateMeetingStatus moves a meeting through its lifecycle, optionally
// moving its scheduled time on a reschedule.
func (l *LeadDB) UpdateMeetingStatus(id uuid.UUID, status models.MeetingStatus, scheduledTime *time.Time) error {
	var res sql.Result
	var err error
	if scheduledTime != nil {
		res, err = l.DB.Exec(`
			UPDATE meetings SET status = $2, scheduled_time = $3 WHERE id = $1`,
			id, status, *scheduledTime)
	} else {
		res, err = l.DB.Exec(`
			UPDATE meetings SET status = $2 WHERE id = $1`, id, status)
	}
	if err != nil {
		return fmt.Errorf("error updating meeting status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
