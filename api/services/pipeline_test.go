package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leadflowhq/lead-services/models"
)

func slotAt(t *testing.T, value string) models.Slot {
	t.Helper()
	start, err := time.Parse("2006-01-02 15:04", value)
	assert.NoError(t, err)
	return models.Slot{
		Start:   start,
		End:     start.Add(30 * time.Minute),
		Display: start.Format("Monday, Jan 2 at 3:04 PM"),
	}
}

func TestMatchSlot(t *testing.T) {
	slots := []models.Slot{
		slotAt(t, "2026-09-07 10:00"), // Monday
		slotAt(t, "2026-09-08 10:00"), // Tuesday
		slotAt(t, "2026-09-08 15:00"),
	}

	got := matchSlot("how about tuesday at 3pm?", slots)
	assert.NotNil(t, got)
	assert.Equal(t, slots[2].Start, got.Start, "weekday plus clock picks the exact slot")

	got = matchSlot("tuesday works for me", slots)
	assert.NotNil(t, got)
	assert.Equal(t, slots[1].Start, got.Start, "weekday alone picks the first slot that day")

	assert.Nil(t, matchSlot("sometime next quarter", slots))
	assert.Nil(t, matchSlot("saturday morning", slots))
}

func TestFormatSlots(t *testing.T) {
	slots := []models.Slot{
		slotAt(t, "2026-09-07 10:00"),
		slotAt(t, "2026-09-07 11:00"),
		slotAt(t, "2026-09-07 12:00"),
		slotAt(t, "2026-09-07 13:00"),
	}

	out := formatSlots(slots, 3)
	assert.Contains(t, out, "Monday, Sep 7 at 10:00 AM")
	assert.NotContains(t, out, "1:00 PM", "capped at three slots")
}
