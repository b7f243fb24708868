package gcal

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/leadflowhq/lead-services/internal/appconfig"
	"github.com/leadflowhq/lead-services/models"
)

// Scheduler talks to Google Calendar to find free meeting slots and
// book events.
type Scheduler struct {
	svc *calendar.Service
	cfg appconfig.CalendarConfig
	loc *time.Location
}

func NewScheduler(ctx context.Context, cfg appconfig.CalendarConfig) (*Scheduler, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid calendar timezone %q: %w", cfg.Timezone, err)
		}
	}

	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(calendar.CalendarScope))
	if err != nil {
		return nil, fmt.Errorf("could not create calendar service: %w", err)
	}

	return &Scheduler{svc: svc, cfg: cfg, loc: loc}, nil
}

// busyIntervals fetches events between from and to on the configured
// calendar.
func (s *Scheduler) busyIntervals(from, to time.Time) ([]interval, error) {
	events, err := s.svc.Events.List(s.cfg.CalendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("error listing calendar events: %w", err)
	}

	var busy []interval
	for _, ev := range events.Items {
		if ev.Start == nil || ev.End == nil || ev.Start.DateTime == "" || ev.End.DateTime == "" {
			// All-day events carry dates, not times. Skip them.
			continue
		}
		start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, ev.End.DateTime)
		if err != nil {
			continue
		}
		busy = append(busy, interval{start: start, end: end})
	}
	return busy, nil
}

// FreeSlots returns open business-hour windows over the next days.
func (s *Scheduler) FreeSlots(days int) ([]models.Slot, error) {
	now := time.Now().In(s.loc)
	to := now.AddDate(0, 0, days)

	busy, err := s.busyIntervals(now, to)
	if err != nil {
		return nil, err
	}

	return freeSlots(now, days, busy, slotOptions{
		startHour:      s.cfg.BusinessStartHour,
		endHour:        s.cfg.BusinessEndHour,
		meetingMinutes: s.cfg.MeetingMinutes,
		loc:            s.loc,
	}), nil
}

// CreateEvent books a meeting with the lead and returns the calendar
// event ID.
func (s *Scheduler) CreateEvent(lead *models.Lead, start time.Time) (string, string, error) {
	end := start.Add(time.Duration(s.cfg.MeetingMinutes) * time.Minute)

	event := &calendar.Event{
		Summary:     fmt.Sprintf("Intro call with %s %s (%s)", lead.FirstName, lead.LastName, lead.CompanyName),
		Description: "Booked automatically from the lead pipeline.",
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	if lead.Email != "" {
		event.Attendees = []*calendar.EventAttendee{{Email: lead.Email}}
	}

	created, err := s.svc.Events.Insert(s.cfg.CalendarID, event).Do()
	if err != nil {
		return "", "", fmt.Errorf("error creating calendar event: %w", err)
	}
	return created.Id, created.HangoutLink, nil
}
