package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/models"
)

// StartOutreach sends the first touch to a lead. Email goes out first
// when an address is on file, WhatsApp is the fallback channel. On
// success the lead moves to contacted with a follow-up scheduled.
func (svc *Service) StartOutreach(ctx context.Context, lead *models.Lead) (models.Channel, error) {
	logger := zerolog.Ctx(ctx)

	var channel models.Channel
	var sent bool

	if svc.Email != nil && svc.Config.Email.Enabled && lead.Email != "" {
		message, err := svc.LLM.GenerateOutreach(ctx, lead, models.ChannelEmail)
		if err != nil {
			return "", err
		}
		subject := svc.Config.Email.SubjectLine
		if subject == "" {
			subject = "Quick question about " + lead.CompanyName
		}
		if err := svc.Email.Send(ctx, lead.Email, subject, message); err != nil {
			logger.Warn().Err(err).Str("lead_id", lead.ID.String()).Msg("email outreach failed, trying whatsapp")
		} else {
			channel = models.ChannelEmail
			sent = true
			if err := svc.recordOutbound(lead, channel, message, nil); err != nil {
				return channel, err
			}
		}
	}

	if !sent && svc.WhatsApp != nil && svc.Config.WhatsApp.Enabled && lead.PhoneNumber != "" {
		if ok, reason, err := svc.allowWhatsApp(ctx); err != nil {
			return "", err
		} else if !ok {
			return "", fmt.Errorf("whatsapp quota exhausted: %s", reason)
		}

		message, err := svc.LLM.GenerateOutreach(ctx, lead, models.ChannelWhatsApp)
		if err != nil {
			return "", err
		}
		messageID, err := svc.WhatsApp.Send(ctx, lead.PhoneNumber, message)
		if err != nil {
			return "", err
		}
		svc.recordWhatsAppSend(ctx)

		channel = models.ChannelWhatsApp
		sent = true
		meta, _ := json.Marshal(map[string]string{"message_id": messageID})
		if err := svc.recordOutbound(lead, channel, message, meta); err != nil {
			return channel, err
		}
	}

	if !sent {
		if svc.Telegram != nil {
			text := fmt.Sprintf("Could not reach lead %s %s (%s) on any channel",
				lead.FirstName, lead.LastName, lead.Email)
			if err := svc.Telegram.Notify(ctx, text); err != nil {
				logger.Warn().Err(err).Msg("failed to send outreach alert")
			}
		}
		return "", fmt.Errorf("no outreach channel available for lead")
	}

	if err := svc.DB.TouchContact(lead.ID, models.StatusContacted, svc.Config.Worker.FollowUpAfterDays); err != nil {
		return channel, err
	}

	logger.Info().Str("lead_id", lead.ID.String()).Str("channel", string(channel)).Msg("outreach sent")
	return channel, nil
}

// SendFollowUp nudges a quiet lead and pushes the next follow-up out.
func (svc *Service) SendFollowUp(ctx context.Context, lead *models.Lead) error {
	message, err := svc.LLM.GenerateFollowUp(ctx, lead)
	if err != nil {
		return err
	}

	var channel models.Channel
	switch {
	case svc.Email != nil && svc.Config.Email.Enabled && lead.Email != "":
		subject := "Re: " + svc.Config.Email.SubjectLine
		if svc.Config.Email.SubjectLine == "" {
			subject = "Following up"
		}
		if err := svc.Email.Send(ctx, lead.Email, subject, message); err != nil {
			return err
		}
		channel = models.ChannelEmail
	case svc.WhatsApp != nil && svc.Config.WhatsApp.Enabled && lead.PhoneNumber != "":
		ok, reason, err := svc.allowWhatsApp(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("whatsapp quota exhausted: %s", reason)
		}
		if _, err := svc.WhatsApp.Send(ctx, lead.PhoneNumber, message); err != nil {
			return err
		}
		svc.recordWhatsAppSend(ctx)
		channel = models.ChannelWhatsApp
	default:
		return fmt.Errorf("no follow-up channel available for lead")
	}

	if err := svc.recordOutbound(lead, channel, message, nil); err != nil {
		return err
	}
	return svc.DB.TouchContact(lead.ID, models.StatusFollowUp, svc.Config.Worker.NextFollowUpDays)
}

// HandleInboundMessage runs the response pipeline for one inbound
// message: record it, read the intent, advance the lead's status, reply
// on the same channel and refresh the conversation summary.
func (svc *Service) HandleInboundMessage(ctx context.Context, lead *models.Lead, channel models.Channel, text string, metadata json.RawMessage) error {
	logger := zerolog.Ctx(ctx)

	inbound := &models.Conversation{
		LeadID:         lead.ID,
		Channel:        channel,
		Direction:      models.DirectionInbound,
		MessageContent: text,
		Metadata:       metadata,
	}
	if err := svc.DB.AddConversation(inbound); err != nil {
		return err
	}

	history, err := svc.DB.GetConversations(lead.ID)
	if err != nil {
		return err
	}

	intent, err := svc.LLM.AnalyzeIntent(ctx, text, history)
	if err != nil {
		return err
	}

	lead.Status = intent.LeadStatus()

	// Meeting flow runs before the status write so a booking or a
	// confirmation can land the lead on meeting_scheduled directly.
	var booked *models.Meeting
	switch {
	case intent.ConfirmingTime:
		pending, err := svc.DB.GetLatestPendingMeeting(lead.ID)
		if err != nil {
			return err
		}
		if pending != nil {
			if err := svc.DB.UpdateMeetingStatus(pending.ID, models.MeetingConfirmed, nil); err != nil {
				return err
			}
			booked = pending
			lead.Status = models.StatusMeetingScheduled
		}
	case intent.SpecifiedTime != "" && svc.Calendar != nil:
		if slots, err := svc.Calendar.FreeSlots(5); err == nil {
			if slot := matchSlot(intent.SpecifiedTime, slots); slot != nil {
				m, err := svc.bookSlot(lead, slot)
				if err != nil {
					logger.Warn().Err(err).Str("lead_id", lead.ID.String()).Msg("failed to book requested slot")
				} else {
					booked = m
					lead.Status = models.StatusMeetingScheduled
				}
			}
		}
	}

	if _, err := svc.updateLeadStatus(lead); err != nil {
		return err
	}

	if lead.Status != models.StatusNotInterested {
		reply, err := svc.LLM.GenerateReply(ctx, lead, intent, text)
		if err != nil {
			return err
		}
		switch {
		case booked != nil:
			reply += "\n\nYou're in the calendar for " +
				booked.ScheduledTime.Format("Monday, Jan 2 at 3:04 PM") + "."
			if booked.MeetingLink != "" {
				reply += " " + booked.MeetingLink
			}
		case intent.RequestingMeeting && svc.Calendar != nil:
			if slots, err := svc.Calendar.FreeSlots(5); err == nil && len(slots) > 0 {
				reply += "\n\nA few times that work on my side:\n" + formatSlots(slots, 3)
			}
		}
		if err := svc.sendOnChannel(ctx, lead, channel, reply); err != nil {
			logger.Warn().Err(err).Str("lead_id", lead.ID.String()).Msg("failed to send reply")
		} else if err := svc.recordOutbound(lead, channel, reply, nil); err != nil {
			return err
		}
	}

	if summary, err := svc.LLM.Summarize(ctx, history); err == nil && summary != "" {
		if err := svc.DB.UpdateLeadSummary(lead.ID, summary); err != nil {
			logger.Warn().Err(err).Msg("failed to update conversation summary")
		}
	}

	if svc.Publisher != nil {
		if err := svc.Publisher.Publish(models.LeadEvent{
			Action:  models.EventLeadResponded,
			LeadID:  lead.ID,
			Status:  lead.Status,
			Channel: channel,
		}); err != nil {
			logger.Warn().Err(err).Msg("failed to publish response event")
		}
	}

	logger.Info().Str("lead_id", lead.ID.String()).Str("status", string(lead.Status)).Msg("inbound message processed")
	return nil
}

func (svc *Service) sendOnChannel(ctx context.Context, lead *models.Lead, channel models.Channel, message string) error {
	switch channel {
	case models.ChannelEmail:
		if svc.Email == nil {
			return fmt.Errorf("email sender not configured")
		}
		return svc.Email.Send(ctx, lead.Email, "Re: "+lead.CompanyName, message)
	case models.ChannelWhatsApp:
		if svc.WhatsApp == nil {
			return fmt.Errorf("whatsapp sender not configured")
		}
		ok, reason, err := svc.allowWhatsApp(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("whatsapp quota exhausted: %s", reason)
		}
		if _, err := svc.WhatsApp.Send(ctx, lead.PhoneNumber, message); err != nil {
			return err
		}
		svc.recordWhatsAppSend(ctx)
		return nil
	default:
		return fmt.Errorf("cannot send on channel %q", channel)
	}
}

func (svc *Service) recordOutbound(lead *models.Lead, channel models.Channel, message string, metadata json.RawMessage) error {
	return svc.DB.AddConversation(&models.Conversation{
		LeadID:         lead.ID,
		Channel:        channel,
		Direction:      models.DirectionOutbound,
		MessageContent: message,
		Read:           true,
		Metadata:       metadata,
	})
}

// updateLeadStatus persists the status change and publishes the update
// event inside the same transaction window.
func (svc *Service) updateLeadStatus(lead *models.Lead) (*models.Lead, error) {
	tx, err := svc.DB.UpdateLead(lead)
	if err != nil {
		return nil, err
	}

	if svc.Publisher != nil {
		if err := svc.Publisher.Publish(models.LeadEvent{
			Action: models.EventLeadUpdated,
			LeadID: lead.ID,
			Status: lead.Status,
		}); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := svc.DB.CommitTransaction(tx); err != nil {
		return nil, err
	}
	return lead, nil
}

func (svc *Service) allowWhatsApp(ctx context.Context) (bool, string, error) {
	if svc.Quota == nil {
		return true, "", nil
	}
	return svc.Quota.Allow(ctx)
}

func (svc *Service) recordWhatsAppSend(ctx context.Context) {
	if svc.Quota != nil {
		_ = svc.Quota.Record(ctx)
	}
}

func (svc *Service) bookSlot(lead *models.Lead, slot *models.Slot) (*models.Meeting, error) {
	eventID, link, err := svc.Calendar.CreateEvent(lead, slot.Start)
	if err != nil {
		return nil, err
	}
	meeting := &models.Meeting{
		LeadID:          lead.ID,
		ScheduledTime:   slot.Start,
		DurationMinutes: svc.Config.Calendar.MeetingMinutes,
		MeetingLink:     link,
		CalendarEventID: eventID,
		Status:          models.MeetingTentative,
	}
	if err := svc.DB.CreateMeeting(meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

// matchSlot picks the free slot a lead's stated availability points at.
// Weekday plus clock beats weekday alone.
func matchSlot(specified string, slots []models.Slot) *models.Slot {
	text := strings.ToLower(specified)

	for i := range slots {
		s := slots[i]
		day := strings.ToLower(s.Start.Weekday().String())
		clock := strings.ToLower(s.Start.Format("3pm"))
		if strings.Contains(text, day) && strings.Contains(text, clock) {
			return &s
		}
	}
	for i := range slots {
		s := slots[i]
		if strings.Contains(text, strings.ToLower(s.Start.Weekday().String())) {
			return &s
		}
	}
	return nil
}

func formatSlots(slots []models.Slot, max int) string {
	if len(slots) > max {
		slots = slots[:max]
	}
	var lines []string
	for _, s := range slots {
		lines = append(lines, "- "+s.Display)
	}
	return strings.Join(lines, "\n")
}
