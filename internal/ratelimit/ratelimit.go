package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/leadflowhq/lead-services/models"
)

// Quota tracks outbound WhatsApp sends against daily and hourly caps.
// Counters live in Redis so every worker and API instance shares them.
type Quota struct {
	rdb         redis.Cmdable
	dailyLimit  int
	hourlyLimit int
	now         func() time.Time
}

func NewQuota(rdb redis.Cmdable, dailyLimit, hourlyLimit int) *Quota {
	return &Quota{
		rdb:         rdb,
		dailyLimit:  dailyLimit,
		hourlyLimit: hourlyLimit,
		now:         time.Now,
	}
}

func dayKey(t time.Time) string {
	return "wa:quota:day:" + t.UTC().Format("2006-01-02")
}

func hourKey(t time.Time) string {
	return "wa:quota:hour:" + t.UTC().Format("2006-01-02T15")
}

func (q *Quota) counts(ctx context.Context) (int, int, error) {
	now := q.now()

	daily, err := q.rdb.Get(ctx, dayKey(now)).Int()
	if err != nil && err != redis.Nil {
		return 0, 0, fmt.Errorf("error reading daily quota: %w", err)
	}
	hourly, err := q.rdb.Get(ctx, hourKey(now)).Int()
	if err != nil && err != redis.Nil {
		return 0, 0, fmt.Errorf("error reading hourly quota: %w", err)
	}
	return daily, hourly, nil
}

// Allow reports whether another message may be sent right now. The
// second return value names the exhausted window when it may not.
func (q *Quota) Allow(ctx context.Context) (bool, string, error) {
	daily, hourly, err := q.counts(ctx)
	if err != nil {
		return false, "", err
	}
	if daily >= q.dailyLimit {
		return false, "daily limit reached", nil
	}
	if hourly >= q.hourlyLimit {
		return false, "hourly limit reached", nil
	}
	return true, "", nil
}

// Record bumps both counters after a successful send. Keys expire on
// their own so stale windows never accumulate.
func (q *Quota) Record(ctx context.Context) error {
	now := q.now()

	dk := dayKey(now)
	if err := q.rdb.Incr(ctx, dk).Err(); err != nil {
		return fmt.Errorf("error incrementing daily quota: %w", err)
	}
	q.rdb.Expire(ctx, dk, 48*time.Hour)

	hk := hourKey(now)
	if err := q.rdb.Incr(ctx, hk).Err(); err != nil {
		return fmt.Errorf("error incrementing hourly quota: %w", err)
	}
	q.rdb.Expire(ctx, hk, 2*time.Hour)

	return nil
}

// Usage reports current consumption for the stats endpoint.
func (q *Quota) Usage(ctx context.Context) (models.QuotaUsage, error) {
	daily, hourly, err := q.counts(ctx)
	if err != nil {
		return models.QuotaUsage{}, err
	}
	return buildUsage(daily, hourly, q.dailyLimit, q.hourlyLimit), nil
}

func buildUsage(daily, hourly, dailyLimit, hourlyLimit int) models.QuotaUsage {
	usage := models.QuotaUsage{
		DailyCount:      daily,
		DailyLimit:      dailyLimit,
		DailyRemaining:  dailyLimit - daily,
		HourlyCount:     hourly,
		HourlyLimit:     hourlyLimit,
		HourlyRemaining: hourlyLimit - hourly,
	}
	if usage.DailyRemaining < 0 {
		usage.DailyRemaining = 0
	}
	if usage.HourlyRemaining < 0 {
		usage.HourlyRemaining = 0
	}
	usage.CanSend = usage.DailyRemaining > 0 && usage.HourlyRemaining > 0
	return usage
}
