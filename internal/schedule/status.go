package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Status places an itinerary item relative to now.
type Status string

const (
	StatusPast    Status = "past"
	StatusCurrent Status = "current"
	StatusFuture  Status = "future"
)

// defaultSlot is how long an item with only a start time is considered running.
const defaultSlot = 30 * time.Minute

// ItemStatus reports whether an item on trip day itemDay is past, running or still
// ahead. today is the trip day that contains now, or negative before the trip.
// timeRange is "HH:MM" or "HH:MM–HH:MM"; an end earlier than the start is on the
// next day. Times that do not parse count as future.
func ItemStatus(itemDay, today int, timeRange string, now time.Time) Status {
	switch {
	case today < 0:
		return StatusFuture
	case today > itemDay:
		return StatusPast
	case today < itemDay:
		return StatusFuture
	}

	startStr, endStr, hasEnd := strings.Cut(timeRange, "–")
	start, ok := clock(now, startStr)
	if !ok {
		return StatusFuture
	}
	end := start.Add(defaultSlot)
	if hasEnd {
		if e, ok := clock(now, endStr); ok {
			end = e
			if end.Before(start) {
				end = end.AddDate(0, 0, 1)
			}
		}
	}

	switch {
	case now.Before(start):
		return StatusFuture
	case !now.After(end):
		return StatusCurrent
	default:
		return StatusPast
	}
}

// clock returns now's date at the wall time hh:mm.
func clock(now time.Time, hhmm string) (time.Time, bool) {
	h, m, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	y, mo, d := now.Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, now.Location()), true
}
