package domain

import (
	"time"

	"github.com/m04kA/TCM-BookingService/pkg/types"
)

// ApprovalStatus represents the moderation state of a therapist profile
type ApprovalStatus string

const (
	ApprovalPending        ApprovalStatus = "pending"
	ApprovalWaiting        ApprovalStatus = "waiting"
	ApprovalApproved       ApprovalStatus = "approved"
	ApprovalRejected       ApprovalStatus = "rejected"
	ApprovalPendingAddInfo ApprovalStatus = "pending_additional_info"
)

// TherapistProfile is a therapist's bookable identity
type TherapistProfile struct {
	ID     int64
	UserID int64
	Status ApprovalStatus

	SessionFee                   int64  // стоимость одной терапевтической сессии
	ConsultationFee              *int64 // стоимость консультации; nil = консультации не предлагаются
	ConsultationSettlementAmount *int64 // фиксированная выплата за консультацию

	BankName          *string
	BankAccount       *string
	AccountHolderName *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBookable returns true if the profile may receive new bookings
func (t *TherapistProfile) IsBookable() bool {
	return t.Status == ApprovalApproved
}

// FeeFor returns the per-session fee for the given session type.
// Returns false if the therapist does not offer that session type.
func (t *TherapistProfile) FeeFor(sessionType SessionType) (int64, bool) {
	switch sessionType {
	case SessionConsultation:
		if t.ConsultationFee == nil {
			return 0, false
		}
		return *t.ConsultationFee, true
	case SessionTherapy:
		return t.SessionFee, true
	default:
		return 0, false
	}
}

// TherapistAvailability is a recurring weekly availability window.
// The interval [StartTime, EndTime) is half-open.
type TherapistAvailability struct {
	ID          int64
	TherapistID int64
	Weekday     time.Weekday
	StartTime   types.TimeString
	EndTime     types.TimeString
	CreatedAt   time.Time
}

// Overlaps returns true if two windows on the same weekday intersect,
// using half-open interval containment: newStart < existEnd && newEnd > existStart.
// Touching boundaries ([09:00,11:00) and [11:00,12:00)) do not overlap.
func (w *TherapistAvailability) Overlaps(start, end types.TimeString) bool {
	return start.IsBefore(w.EndTime) && end.IsAfter(w.StartTime)
}

// HolidayDate blocks a calendar date. TherapistID = nil marks a shared
// public holiday that applies to every therapist.
type HolidayDate struct {
	ID          int64
	TherapistID *int64
	Date        time.Time
	IsRecurring bool
	Reason      *string
	CreatedAt   time.Time
}

// IsShared returns true for public holidays applied to all therapists
func (h *HolidayDate) IsShared() bool {
	return h.TherapistID == nil
}

// AppliesTo returns true if the holiday blocks the given calendar date.
// Recurring holidays match on month/day every year; a Feb 29 recurrence
// therefore only fires in leap years.
func (h *HolidayDate) AppliesTo(date time.Time) bool {
	if h.IsRecurring {
		return h.Date.Month() == date.Month() && h.Date.Day() == date.Day()
	}
	hy, hm, hd := h.Date.Date()
	dy, dm, dd := date.Date()
	return hy == dy && hm == dm && hd == dd
}
