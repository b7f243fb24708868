package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadflowhq/lead-services/api/services"
	"github.com/leadflowhq/lead-services/models"
)

// lastSummaryKey is the persisted marker recording the day the digest
// last went out. Restarts must not re-send the same day's digest.
const lastSummaryKey = "last_summary_day"

// Worker drives the automation loop: due follow-ups, bulk outreach to
// untouched leads and the daily manager digest.
type Worker struct {
	Svc *services.Service
	Log *zerolog.Logger

	lastSummaryDay string
}

func New(svc *services.Service, log *zerolog.Logger) *Worker {
	return &Worker{Svc: svc, Log: log}
}

// Run blocks until the context is cancelled, waking on the configured
// interval.
func (w *Worker) Run(ctx context.Context) error {
	interval := time.Duration(w.Svc.Config.Worker.IntervalMinutes) * time.Minute
	w.Log.Info().Dur("interval", interval).Msg("worker started")

	// Attach the logger so pipeline calls log consistently.
	ctx = w.Log.WithContext(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.runOnce(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			w.Log.Info().Msg("worker stopped")
			return ctx.Err()
		case now := <-ticker.C:
			w.runOnce(ctx, now)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context, now time.Time) {
	w.processFollowUps(ctx, now)
	if w.Svc.Config.Worker.BulkOutreachEnabled {
		w.processBulkOutreach(ctx)
	}
	w.maybeSendDailySummary(ctx, now)
}

// processFollowUps nudges every lead whose follow-up date has passed.
func (w *Worker) processFollowUps(ctx context.Context, now time.Time) {
	leads, err := w.Svc.DB.GetLeadsForFollowUp(now)
	if err != nil {
		w.Log.Error().Err(err).Msg("failed to fetch follow-up leads")
		return
	}
	if len(leads) == 0 {
		return
	}

	w.Log.Info().Int("count", len(leads)).Msg("processing due follow-ups")
	for i := range leads {
		if err := w.Svc.SendFollowUp(ctx, &leads[i]); err != nil {
			w.Log.Warn().Err(err).Str("lead_id", leads[i].ID.String()).Msg("follow-up failed")
		}
	}
}

// processBulkOutreach opens conversations with untouched leads, best
// scored first, within the send quota.
func (w *Worker) processBulkOutreach(ctx context.Context) {
	batch := w.Svc.Config.Worker.BulkOutreachMaxBatch
	if batch <= 0 {
		batch = 20
	}

	leads, err := w.Svc.DB.GetNewLeadsWithPhone(batch)
	if err != nil {
		w.Log.Error().Err(err).Msg("failed to fetch leads for bulk outreach")
		return
	}

	for i := range leads {
		if _, err := w.Svc.StartOutreach(ctx, &leads[i]); err != nil {
			if strings.Contains(err.Error(), "quota exhausted") {
				w.Log.Info().Msg("send quota exhausted, stopping bulk outreach for this run")
				return
			}
			w.Log.Warn().Err(err).Str("lead_id", leads[i].ID.String()).Msg("bulk outreach failed")
		}
	}
}

// maybeSendDailySummary pushes one digest per day once the configured
// time has passed.
func (w *Worker) maybeSendDailySummary(ctx context.Context, now time.Time) {
	if w.Svc.Telegram == nil {
		return
	}

	at := w.Svc.Config.Worker.DailySummaryAt
	var hour, minute int
	if _, err := fmt.Sscanf(at, "%d:%d", &hour, &minute); err != nil {
		w.Log.Error().Str("daily_summary_at", at).Msg("invalid daily summary time")
		return
	}

	due := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	today := now.Format("2006-01-02")
	if now.Before(due) || w.lastSummaryDay == today {
		return
	}

	if w.lastSummaryDay == "" {
		stored, err := w.Svc.DB.GetWorkerState(lastSummaryKey)
		if err != nil {
			w.Log.Error().Err(err).Msg("failed to read summary marker")
			return
		}
		w.lastSummaryDay = stored
		if stored == today {
			return
		}
	}

	summary, err := w.Svc.DB.GetStatsSummary(now)
	if err != nil {
		w.Log.Error().Err(err).Msg("failed to build daily summary")
		return
	}
	if w.Svc.Quota != nil {
		if usage, err := w.Svc.Quota.Usage(ctx); err == nil {
			summary.WhatsApp = usage
		}
	}

	if err := w.Svc.Telegram.Notify(ctx, formatSummary(summary)); err != nil {
		w.Log.Error().Err(err).Msg("failed to send daily summary")
		return
	}

	w.lastSummaryDay = today
	if err := w.Svc.DB.SetWorkerState(lastSummaryKey, today); err != nil {
		w.Log.Error().Err(err).Msg("failed to persist summary marker")
	}
	w.Log.Info().Msg("daily summary sent")
}

func formatSummary(s *models.StatsSummary) string {
	var sb strings.Builder
	sb.WriteString("Lead pipeline daily summary\n\n")
	fmt.Fprintf(&sb, "Total leads: %d\n", s.TotalLeads)
	fmt.Fprintf(&sb, "New today: %d\n", s.NewToday)
	fmt.Fprintf(&sb, "Interested: %d\n", s.Interested)
	fmt.Fprintf(&sb, "Meetings scheduled: %d\n", s.MeetingsScheduled)
	fmt.Fprintf(&sb, "WhatsApp quota: %d/%d today, %d/%d this hour\n",
		s.WhatsApp.DailyCount, s.WhatsApp.DailyLimit,
		s.WhatsApp.HourlyCount, s.WhatsApp.HourlyLimit)
	return sb.String()
}
