package scheduling

import (
	"strings"
	"time"

	"frontdesk/models"
)

// SlotDuration is the fixed appointment slot length.
const SlotDuration = 30 * time.Minute

const clockLayout = "15:04"

// DefaultWeekHours returns the fallback operating hours: Monday through
// Friday 09:00-17:00, weekends closed.
func DefaultWeekHours() map[string]models.DayHours {
	hours := make(map[string]models.DayHours, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		key := weekdayKey(d)
		if d == time.Saturday || d == time.Sunday {
			hours[key] = models.DayHours{Closed: true}
			continue
		}
		hours[key] = models.DayHours{Open: "09:00", Close: "17:00"}
	}
	return hours
}

func weekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// GenerateSlots computes fixed-duration slots for every open day in
// [from, to), marking a slot unavailable when a busy period overlaps it
// under half-open interval semantics. Candidates extending outside the
// requested range are dropped, so every returned slot lies within it.
// Cost is O(days x slots/day x busy periods); callers bound the range.
func GenerateSlots(from, to time.Time, hours map[string]models.DayHours, busy []models.BusyPeriod, loc *time.Location) []models.TimeSlot {
	if loc == nil {
		loc = time.UTC
	}
	defaults := DefaultWeekHours()

	var slots []models.TimeSlot
	day := time.Date(from.In(loc).Year(), from.In(loc).Month(), from.In(loc).Day(), 0, 0, 0, 0, loc)
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		dh, ok := hours[weekdayKey(day.Weekday())]
		if !ok {
			dh = defaults[weekdayKey(day.Weekday())]
		}
		if dh.Closed {
			continue
		}

		open, err := clockOn(day, dh.Open, loc)
		if err != nil {
			continue
		}
		close, err := clockOn(day, dh.Close, loc)
		if err != nil || !open.Before(close) {
			continue
		}

		for start := open; !start.Add(SlotDuration).After(close); start = start.Add(SlotDuration) {
			end := start.Add(SlotDuration)
			if start.Before(from) || end.After(to) {
				continue
			}
			slots = append(slots, models.TimeSlot{
				Start:     start,
				End:       end,
				Available: !overlapsAny(start, end, busy),
			})
		}
	}
	return slots
}

func clockOn(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(clockLayout, clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

func overlapsAny(start, end time.Time, busy []models.BusyPeriod) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
