package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuotaKeysBucketByWindow(t *testing.T) {
	at := time.Date(2026, 3, 5, 14, 42, 0, 0, time.UTC)

	assert.Equal(t, "wa:quota:day:2026-03-05", dayKey(at))
	assert.Equal(t, "wa:quota:hour:2026-03-05T14", hourKey(at))

	// Same day, different hour buckets.
	later := at.Add(time.Hour)
	assert.Equal(t, dayKey(at), dayKey(later))
	assert.NotEqual(t, hourKey(at), hourKey(later))
}

func TestBuildUsage(t *testing.T) {
	usage := buildUsage(150, 5, 200, 20)

	assert.Equal(t, 50, usage.DailyRemaining)
	assert.Equal(t, 15, usage.HourlyRemaining)
	assert.True(t, usage.CanSend)
}

func TestBuildUsageExhaustedWindows(t *testing.T) {
	usage := buildUsage(200, 0, 200, 20)
	assert.Equal(t, 0, usage.DailyRemaining)
	assert.False(t, usage.CanSend, "daily cap should block sends")

	usage = buildUsage(210, 25, 200, 20)
	assert.Equal(t, 0, usage.DailyRemaining, "remaining never goes negative")
	assert.Equal(t, 0, usage.HourlyRemaining)
	assert.False(t, usage.CanSend)
}
