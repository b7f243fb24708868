package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/models"
)

// GetConversationsService returns a lead's full message history and
// marks inbound messages read.
func GetConversationsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	leadID, ok := pathUUID(r, "lead-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("lead id must be a UUID"))
		return
	}

	if _, err := svc.DB.GetLead(leadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "lead not found"})
			return
		}
		logger.Error().Err(err).Msg("Database error retrieving lead")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	convs, err := svc.DB.GetConversations(leadID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving conversations")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}

	if err := svc.DB.MarkConversationsRead(leadID); err != nil {
		logger.Warn().Err(err).Msg("Failed to mark conversations read")
	}

	WriteResponse(w, http.StatusOK, models.ConversationsResponse{Conversations: convs})
}

// SendMessageService sends a manual message to a lead on a chosen
// channel. With no message in the payload the opening outreach copy is
// generated instead.
func SendMessageService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	leadID, ok := pathUUID(r, "lead-id")
	if !ok {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("lead id must be a UUID"))
		return
	}

	var payload struct {
		Channel models.Channel `json:"channel"`
		Message string         `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
		return
	}
	if payload.Channel != models.ChannelEmail && payload.Channel != models.ChannelWhatsApp {
		HandleErrResponse(w, http.StatusBadRequest, fmt.Errorf("unsupported channel %q", payload.Channel))
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

	message := payload.Message
	if message == "" {
		message, err = svc.LLM.GenerateOutreach(r.Context(), lead, payload.Channel)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to generate message")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
	}

	if err := svc.sendOnChannel(r.Context(), lead, payload.Channel, message); err != nil {
		logger.Error().Err(err).Str("lead_id", leadID.String()).Msg("Failed to send message")
		HandleErrResponse(w, http.StatusBadGateway, err)
		return
	}

	conv := &models.Conversation{
		LeadID:         lead.ID,
		Channel:        payload.Channel,
		Direction:      models.DirectionOutbound,
		MessageContent: message,
		Read:           true,
	}
	if err := svc.DB.AddConversation(conv); err != nil {
		logger.Error().Err(err).Msg("Database error recording conversation")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if lead.Status == models.StatusNew {
		if err := svc.DB.TouchContact(lead.ID, models.StatusContacted, svc.Config.Worker.FollowUpAfterDays); err != nil {
			logger.Warn().Err(err).Msg("Failed to update contact state")
		}
	}

	logger.Info().Str("lead_id", leadID.String()).Str("channel", string(payload.Channel)).Msg("Message sent")
	WriteResponse(w, http.StatusCreated, *conv)
}
