package models

import "time"

// TimeSlot is a fixed-duration candidate appointment interval. Slots are
// computed on demand and never persisted.
type TimeSlot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// BusyPeriod is an interval during which the resource is already committed,
// derived from local bookings or remote calendar events.
type BusyPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the busy period overlaps the half-open interval
// [start, end). Boundary-touching periods do not overlap.
func (b BusyPeriod) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}
