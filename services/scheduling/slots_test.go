package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/models"
)

// 2025-03-04 is a Tuesday.
func tuesday(hour, min int) time.Time {
	return time.Date(2025, 3, 4, hour, min, 0, 0, time.UTC)
}

func TestGenerateSlotsOpenHourWindow(t *testing.T) {
	slots := GenerateSlots(tuesday(9, 0), tuesday(10, 0), DefaultWeekHours(), nil, time.UTC)

	require.Len(t, slots, 2)
	assert.Equal(t, tuesday(9, 0), slots[0].Start)
	assert.Equal(t, tuesday(9, 30), slots[0].End)
	assert.Equal(t, tuesday(9, 30), slots[1].Start)
	assert.Equal(t, tuesday(10, 0), slots[1].End)
	assert.True(t, slots[0].Available)
	assert.True(t, slots[1].Available)
}

func TestGenerateSlotsMarksOverlapUnavailable(t *testing.T) {
	busy := []models.BusyPeriod{{Start: tuesday(9, 0), End: tuesday(9, 30)}}
	slots := GenerateSlots(tuesday(9, 0), tuesday(10, 0), DefaultWeekHours(), busy, time.UTC)

	require.Len(t, slots, 2)
	assert.False(t, slots[0].Available)
	assert.True(t, slots[1].Available)
}

func TestGenerateSlotsBoundaryTouchingStaysAvailable(t *testing.T) {
	busy := []models.BusyPeriod{
		{Start: tuesday(8, 0), End: tuesday(9, 0)},   // ends exactly at slot start
		{Start: tuesday(10, 0), End: tuesday(11, 0)}, // starts exactly at slot end
	}
	slots := GenerateSlots(tuesday(9, 0), tuesday(10, 0), DefaultWeekHours(), busy, time.UTC)

	require.Len(t, slots, 2)
	for _, s := range slots {
		assert.True(t, s.Available, "boundary-touching busy periods must not block %v", s.Start)
	}
}

func TestGenerateSlotsPartialOverlapBlocks(t *testing.T) {
	busy := []models.BusyPeriod{{Start: tuesday(9, 15), End: tuesday(9, 45)}}
	slots := GenerateSlots(tuesday(9, 0), tuesday(10, 0), DefaultWeekHours(), busy, time.UTC)

	require.Len(t, slots, 2)
	assert.False(t, slots[0].Available)
	assert.False(t, slots[1].Available)
}

func TestGenerateSlotsStayWithinRequestedRange(t *testing.T) {
	from := tuesday(10, 17)
	to := time.Date(2025, 3, 10, 11, 3, 0, 0, time.UTC) // following Monday

	slots := GenerateSlots(from, to, DefaultWeekHours(), nil, time.UTC)
	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.False(t, s.Start.Before(from), "slot %v starts before range", s.Start)
		assert.False(t, s.End.After(to), "slot %v ends after range", s.End)
		assert.Equal(t, SlotDuration, s.End.Sub(s.Start))
		assert.NotEqual(t, time.Saturday, s.Start.Weekday())
		assert.NotEqual(t, time.Sunday, s.Start.Weekday())
	}
	// A range starting mid-slot begins at the next stride boundary.
	assert.Equal(t, tuesday(10, 30), slots[0].Start)
}

func TestGenerateSlotsSkipsClosedDays(t *testing.T) {
	// 2025-03-08/09 is a weekend.
	from := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	slots := GenerateSlots(from, to, DefaultWeekHours(), nil, time.UTC)
	assert.Empty(t, slots)
}

func TestGenerateSlotsHonorsCustomHours(t *testing.T) {
	hours := DefaultWeekHours()
	hours["tuesday"] = models.DayHours{Open: "10:00", Close: "12:00"}

	slots := GenerateSlots(tuesday(0, 0), tuesday(23, 59), hours, nil, time.UTC)
	require.Len(t, slots, 4)
	assert.Equal(t, tuesday(10, 0), slots[0].Start)
	assert.Equal(t, tuesday(12, 0), slots[3].End)
}

func TestGenerateSlotsRespectsTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	from := time.Date(2025, 3, 4, 9, 0, 0, 0, loc)
	to := time.Date(2025, 3, 4, 10, 0, 0, 0, loc)
	slots := GenerateSlots(from, to, DefaultWeekHours(), nil, loc)

	require.Len(t, slots, 2)
	assert.Equal(t, from, slots[0].Start)
}
