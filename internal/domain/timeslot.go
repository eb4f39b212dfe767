package domain

import (
	"time"

	"github.com/m04kA/TCM-BookingService/pkg/types"
)

// TimeSlot represents one bookable calendar unit of a therapist.
// (TherapistID, Date, StartTime) is unique; CurrentBookings is mutated
// only by the capacity guard in the timeslot repository.
type TimeSlot struct {
	ID          int64
	TherapistID int64
	Date        time.Time // календарная дата, полночь UTC
	StartTime   types.TimeString
	EndTime     types.TimeString

	IsAvailable     bool
	IsHoliday       bool
	IsBufferBlocked bool

	CurrentBookings int
	MaxCapacity     int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOfferable returns true if the slot can be offered to a new booker
func (s *TimeSlot) IsOfferable() bool {
	return s.IsAvailable &&
		!s.IsHoliday &&
		!s.IsBufferBlocked &&
		s.CurrentBookings < s.MaxCapacity
}

// StartsAt returns the absolute start moment of the slot (UTC)
func (s *TimeSlot) StartsAt() (time.Time, error) {
	return s.StartTime.At(s.Date)
}
