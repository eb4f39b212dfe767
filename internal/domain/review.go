package domain

import "time"

// Review is 1:1 with a completed booking, creatable once by the booking's
// parent within ReviewWindowDays of the scheduled session start.
type Review struct {
	ID        int64
	BookingID int64
	UserID    int64
	Rating    int // 1..5
	Comment   string
	CreatedAt time.Time
}

// ReviewAllowed reports whether a review may be created for the booking
// at the given moment
func ReviewAllowed(b *Booking, now time.Time) bool {
	if b.Status != StatusCompleted {
		return false
	}
	deadline := b.ScheduledAt.AddDate(0, 0, ReviewWindowDays)
	return now.Before(deadline)
}
