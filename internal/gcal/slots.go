package gcal

import (
	"time"

	"github.com/leadflowhq/lead-services/models"
)

type interval struct {
	start time.Time
	end   time.Time
}

func (i interval) overlaps(start, end time.Time) bool {
	return start.Before(i.end) && i.start.Before(end)
}

type slotOptions struct {
	startHour      int
	endHour        int
	meetingMinutes int
	loc            *time.Location
}

// freeSlots walks business days from now and emits every meeting-length
// window that clears the busy list. Weekends are skipped and windows in
// the past are never offered.
func freeSlots(now time.Time, days int, busy []interval, opts slotOptions) []models.Slot {
	var slots []models.Slot
	step := time.Duration(opts.meetingMinutes) * time.Minute

	for d := 0; d < days; d++ {
		day := now.AddDate(0, 0, d)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		start := time.Date(day.Year(), day.Month(), day.Day(), opts.startHour, 0, 0, 0, opts.loc)
		dayEnd := time.Date(day.Year(), day.Month(), day.Day(), opts.endHour, 0, 0, 0, opts.loc)

		for cursor := start; !cursor.Add(step).After(dayEnd); cursor = cursor.Add(step) {
			if cursor.Before(now) {
				continue
			}
			end := cursor.Add(step)
			if anyOverlap(busy, cursor, end) {
				continue
			}
			slots = append(slots, models.Slot{
				Start:   cursor,
				End:     end,
				Display: cursor.Format("Monday, Jan 2 at 3:04 PM"),
			})
		}
	}
	return slots
}

func anyOverlap(busy []interval, start, end time.Time) bool {
	for _, b := range busy {
		if b.overlaps(start, end) {
			return true
		}
	}
	return false
}
