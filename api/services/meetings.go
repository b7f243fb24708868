package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/models"
)

// GetMeetingsService lists a lead's meetings.
func GetMeetingsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	leadID, ok := pathUUID(r, "lead-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("lead id must be a UUID"))
		return
	}

	meetings, err := svc.DB.GetMeetings(leadID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving meetings")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if meetings == nil {
		meetings = []models.Meeting{}
	}

	WriteResponse(w, http.StatusOK, models.MeetingsResponse{Meetings: meetings})
}

// CreateMeetingService books a meeting with a lead. When the calendar
// integration is on, the event lands on the sales calendar too.
func CreateMeetingService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	leadID, ok := pathUUID(r, "lead-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("lead id must be a UUID"))
		return
	}

	var payload struct {
		ScheduledTime   time.Time `json:"scheduled_time"`
		DurationMinutes int       `json:"duration_minutes"`
		Notes           string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
		return
	}
	if payload.ScheduledTime.IsZero() {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("scheduled_time is required"))
		return
	}

	lead, err := svc.DB.GetLead(leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "lead not found"})
			return
		}
		logger.Error().Err(err).Msg("Database error retrieving lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	meeting := &models.Meeting{
		LeadID:          lead.ID,
		ScheduledTime:   payload.ScheduledTime,
		DurationMinutes: payload.DurationMinutes,
		Notes:           payload.Notes,
		Status:          models.MeetingConfirmed,
	}
	if meeting.DurationMinutes <= 0 {
		meeting.DurationMinutes = svc.Config.Calendar.MeetingMinutes
	}

	if svc.Calendar != nil {
		eventID, link, err := svc.Calendar.CreateEvent(lead, payload.ScheduledTime)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create calendar event")
			HandleErrResponse(w, http.StatusBadGateway, err)
			return
		}
		meeting.CalendarEventID = eventID
		meeting.MeetingLink = link
		meeting.Status = models.MeetingTentative
	}

	if err := svc.DB.CreateMeeting(meeting); err != nil {
		logger.Error().Err(err).Msg("Database error creating meeting")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	lead.Status = models.StatusMeetingScheduled
	if _, err := svc.updateLeadStatus(lead); err != nil {
		logger.Warn().Err(err).Msg("Failed to advance lead status after booking")
	}

	logger.Info().Str("lead_id", lead.ID.String()).Time("at", meeting.ScheduledTime).Msg("Meeting booked")
	WriteResponse(w, http.StatusCreated, *meeting)
}

// GetSlotsService returns upcoming free business-hour slots.
func GetSlotsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	if svc.Calendar == nil {
		WriteResponse(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "calendar integration is not configured"})
		return
	}

	days := 5
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 30 {
			HandleErrResponse(w, http.StatusBadRequest, errors.New("days must be between 1 and 30"))
			return
		}
		days = parsed
	}

	slots, err := svc.Calendar.FreeSlots(days)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch free slots")
		HandleErrResponse(w, http.StatusBadGateway, err)
		return
	}
	if slots == nil {
		slots = []models.Slot{}
	}

	WriteResponse(w, http.StatusOK, map[string]interface{}{"slots": slots})
}
