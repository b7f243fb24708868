package gcal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testOpts = slotOptions{
	startHour:      9,
	endHour:        17,
	meetingMinutes: 30,
	loc:            time.UTC,
}

func TestFreeSlotsFullDay(t *testing.T) {
	// Monday, before business hours.
	now := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

	slots := freeSlots(now, 1, nil, testOpts)

	// 09:00-17:00 in 30 minute steps.
	assert.Len(t, slots, 16)
	assert.Equal(t, 9, slots[0].Start.Hour())
	last := slots[len(slots)-1]
	assert.Equal(t, 17, last.End.Hour())
}

func TestFreeSlotsSkipWeekends(t *testing.T) {
	// Saturday morning, window covers Sat+Sun only.
	now := time.Date(2026, 3, 7, 6, 0, 0, 0, time.UTC)

	slots := freeSlots(now, 2, nil, testOpts)
	assert.Empty(t, slots, "no slots on weekends")
}

func TestFreeSlotsExcludeBusyIntervals(t *testing.T) {
	now := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	busy := []interval{{
		start: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		end:   time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
	}}

	slots := freeSlots(now, 1, busy, testOpts)

	assert.Len(t, slots, 14, "two half-hour windows blocked")
	for _, s := range slots {
		assert.False(t, busy[0].overlaps(s.Start, s.End), "slot %s collides with busy window", s.Display)
	}
}

func TestFreeSlotsNeverInThePast(t *testing.T) {
	// Mid-afternoon Monday.
	now := time.Date(2026, 3, 2, 14, 15, 0, 0, time.UTC)

	slots := freeSlots(now, 1, nil, testOpts)

	assert.NotEmpty(t, slots)
	for _, s := range slots {
		assert.False(t, s.Start.Before(now), "slot %s is in the past", s.Display)
	}
}

func TestOverlapBoundaries(t *testing.T) {
	b := interval{
		start: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		end:   time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
	}

	// Adjacent windows do not overlap.
	assert.False(t, b.overlaps(
		time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)))
	assert.True(t, b.overlaps(
		time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 10, 45, 0, 0, time.UTC)))
}
