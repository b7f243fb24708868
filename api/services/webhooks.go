package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/internal/outreach"
	"github.com/leadflowhq/lead-services/models"
)

// HealthCheckService answers platform liveness probes and reports which
// channels this deployment has wired up.
func HealthCheckService(svc *Service, w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Status   string          `json:"status"`
		Channels map[string]bool `json:"channels"`
	}{
		Status: "ok",
		Channels: map[string]bool{
			"email":    svc.Email != nil,
			"whatsapp": svc.WhatsApp != nil,
			"telegram": svc.Telegram != nil,
		},
	}
	WriteResponse(w, http.StatusOK, payload)
}

// VerifyWhatsAppWebhookService answers the Graph API subscription
// handshake by echoing the challenge.
func VerifyWhatsAppWebhookService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == svc.Config.WhatsApp.VerifyToken {
		logger.Info().Msg("WhatsApp webhook verified")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	logger.Warn().Str("mode", mode).Msg("WhatsApp webhook verification rejected")
	w.WriteHeader(http.StatusForbidden)
}

// validSignature checks the X-Hub-Signature-256 header against the raw
// body. An unset app secret disables the check for local development.
func validSignature(secret string, body []byte, header string) bool {
	if secret == "" {
		return true
	}
	provided := strings.TrimPrefix(header, "sha256=")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(provided))
}

// whatsAppPayload mirrors the Graph API webhook envelope, down to the
// text messages we care about.
type whatsAppPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					ID   string `json:"id"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// WhatsAppWebhookService handles inbound WhatsApp messages. The
// platform retries on non-200, so processing failures for individual
// messages still return success.
func WhatsAppWebhookService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("failed to read request body"))
		return
	}
	defer r.Body.Close()

	if !validSignature(svc.Config.WhatsApp.AppSecret, body, r.Header.Get("X-Hub-Signature-256")) {
		logger.Warn().Msg("WhatsApp webhook signature mismatch")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	var payload whatsAppPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text.Body == "" {
					continue
				}

				digits := outreach.CleanPhone(msg.From)
				if digits == "" {
					logger.Warn().Str("from", msg.From).Msg("Inbound WhatsApp message without a sender number")
					continue
				}

				lead, err := svc.DB.GetLeadByPhoneDigits(digits)
				if err != nil {
					logger.Warn().Str("from", msg.From).Msg("Inbound WhatsApp message from unknown number")
					continue
				}

				meta, _ := json.Marshal(map[string]string{"message_id": msg.ID})
				if err := svc.HandleInboundMessage(r.Context(), lead, models.ChannelWhatsApp, msg.Text.Body, meta); err != nil {
					logger.Error().Err(err).Str("lead_id", lead.ID.String()).Msg("Failed to process inbound WhatsApp message")
				}
			}
		}
	}

	WriteResponse(w, http.StatusOK, models.StatusResponse{Status: "received"})
}

// EmailWebhookService handles delivery events from the email provider:
// bounces unverify the address, replies run the response pipeline and
// engagement events are recorded against the conversation log.
func EmailWebhookService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	var payload struct {
		Event string `json:"event"`
		Email string `json:"email"`
		Text  string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
		return
	}
	if payload.Email == "" {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("field 'email' is required"))
		return
	}

	lead, err := svc.DB.GetLeadByEmail(payload.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Unknown addresses are fine, the provider fans out events
			// for every recipient.
			WriteResponse(w, http.StatusOK, models.StatusResponse{Status: "ignored"})
			return
		}
		logger.Error().Err(err).Msg("Database error resolving email event")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	switch payload.Event {
	case "bounce", "dropped":
		lead.EmailVerified = false
		if _, err := svc.updateLeadStatus(lead); err != nil {
			logger.Error().Err(err).Msg("Failed to unverify bounced address")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
		logger.Info().Str("lead_id", lead.ID.String()).Str("event", payload.Event).Msg("Email address unverified")

	case "open", "click":
		meta, _ := json.Marshal(map[string]string{"event": payload.Event})
		if err := svc.DB.AddConversation(&models.Conversation{
			LeadID:         lead.ID,
			Channel:        models.ChannelEmail,
			Direction:      models.DirectionInbound,
			MessageContent: "[" + payload.Event + "]",
			Read:           true,
			Metadata:       meta,
		}); err != nil {
			logger.Warn().Err(err).Msg("Failed to record engagement event")
		}

	case "reply":
		if payload.Text == "" {
			HandleErrResponse(w, http.StatusBadRequest, errors.New("field 'text' is required for reply events"))
			return
		}
		if err := svc.HandleInboundMessage(r.Context(), lead, models.ChannelEmail, payload.Text, nil); err != nil {
			logger.Error().Err(err).Str("lead_id", lead.ID.String()).Msg("Failed to process email reply")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}

	default:
		HandleErrResponse(w, http.StatusBadRequest, errors.New("unknown event type"))
		return
	}

	WriteResponse(w, http.StatusOK, models.StatusResponse{Status: "received"})
}

// CalendarWebhookService reacts to attendee responses on booked
// meetings.
func CalendarWebhookService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	var payload struct {
		EventID string     `json:"event_id"`
		Action  string     `json:"action"`
		NewTime *time.Time `json:"new_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid JSON payload"))
		return
	}
	if payload.EventID == "" {
		HandleErrResponse(w, http.StatusBadRequest, errors.New("field 'event_id' is required"))
		return
	}

	meeting, err := svc.DB.GetMeetingByCalendarEvent(payload.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteResponse(w, http.StatusNotFound, models.ErrorResponse{Error: "no meeting for this event"})
			return
		}
		logger.Error().Err(err).Msg("Database error resolving calendar event")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	switch payload.Action {
	case "accepted":
		err = svc.DB.UpdateMeetingStatus(meeting.ID, models.MeetingConfirmed, nil)
	case "declined":
		err = svc.DB.UpdateMeetingStatus(meeting.ID, models.MeetingCancelled, nil)
	case "rescheduled":
		if payload.NewTime == nil {
			HandleErrResponse(w, http.StatusBadRequest, errors.New("field 'new_time' is required for reschedules"))
			return
		}
		err = svc.DB.UpdateMeetingStatus(meeting.ID, models.MeetingTentative, payload.NewTime)
	default:
		HandleErrResponse(w, http.StatusBadRequest, errors.New("unknown action"))
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("Database error updating meeting")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	// A declined meeting drops the lead back to interested so the rep
	// can re-engage.
	if payload.Action == "declined" {
		if lead, err := svc.DB.GetLead(meeting.LeadID); err == nil {
			lead.Status = models.StatusInterested
			if _, err := svc.updateLeadStatus(lead); err != nil {
				logger.Warn().Err(err).Msg("Failed to update lead after decline")
			}
		}
	}

	logger.Info().Str("event_id", payload.EventID).Str("action", payload.Action).Msg("Calendar webhook processed")
	WriteResponse(w, http.StatusOK, models.StatusResponse{Status: "received"})
}
