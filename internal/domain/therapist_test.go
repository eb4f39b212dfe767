package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/TCM-BookingService/pkg/ptr"
	"github.com/m04kA/TCM-BookingService/pkg/types"
)

func TestTherapistAvailability_Overlaps(t *testing.T) {
	window := &TherapistAvailability{
		StartTime: types.TimeString("09:00"),
		EndTime:   types.TimeString("11:00"),
	}

	tests := []struct {
		name     string
		start    string
		end      string
		overlaps bool
	}{
		{"identical window", "09:00", "11:00", true},
		{"starts inside", "10:00", "12:00", true},
		{"ends inside", "08:00", "10:00", true},
		{"covers window", "08:00", "12:00", true},
		{"inside window", "09:30", "10:30", true},
		{"touching upper boundary", "11:00", "12:00", false},
		{"touching lower boundary", "08:00", "09:00", false},
		{"fully after", "12:00", "13:00", false},
		{"fully before", "07:00", "08:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := window.Overlaps(types.TimeString(tt.start), types.TimeString(tt.end))
			assert.Equal(t, tt.overlaps, got)
		})
	}
}

func TestTherapistProfile_IsBookable(t *testing.T) {
	assert.True(t, (&TherapistProfile{Status: ApprovalApproved}).IsBookable())
	assert.False(t, (&TherapistProfile{Status: ApprovalPending}).IsBookable())
	assert.False(t, (&TherapistProfile{Status: ApprovalRejected}).IsBookable())
	assert.False(t, (&TherapistProfile{Status: ApprovalWaiting}).IsBookable())
}

func TestTherapistProfile_FeeFor(t *testing.T) {
	profile := &TherapistProfile{
		SessionFee:      100000,
		ConsultationFee: ptr.Ptr(int64(50000)),
	}

	fee, ok := profile.FeeFor(SessionTherapy)
	assert.True(t, ok)
	assert.Equal(t, int64(100000), fee)

	fee, ok = profile.FeeFor(SessionConsultation)
	assert.True(t, ok)
	assert.Equal(t, int64(50000), fee)

	noConsult := &TherapistProfile{SessionFee: 100000}
	_, ok = noConsult.FeeFor(SessionConsultation)
	assert.False(t, ok, "therapist without consultation fee does not offer consultations")

	_, ok = profile.FeeFor(SessionType("workshop"))
	assert.False(t, ok)
}

func TestHolidayDate_AppliesTo(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	oneOff := &HolidayDate{Date: date(2026, time.September, 15)}
	assert.True(t, oneOff.AppliesTo(date(2026, time.September, 15)))
	assert.False(t, oneOff.AppliesTo(date(2027, time.September, 15)), "non-recurring holiday is year-bound")

	recurring := &HolidayDate{Date: date(2026, time.January, 1), IsRecurring: true}
	assert.True(t, recurring.AppliesTo(date(2027, time.January, 1)))
	assert.True(t, recurring.AppliesTo(date(2030, time.January, 1)))
	assert.False(t, recurring.AppliesTo(date(2027, time.January, 2)))

	leapDay := &HolidayDate{Date: date(2024, time.February, 29), IsRecurring: true}
	assert.True(t, leapDay.AppliesTo(date(2028, time.February, 29)))
	assert.False(t, leapDay.AppliesTo(date(2026, time.March, 1)), "Feb 29 recurrence never matches Mar 1")
}

func TestHolidayDate_IsShared(t *testing.T) {
	assert.True(t, (&HolidayDate{}).IsShared())
	assert.False(t, (&HolidayDate{TherapistID: ptr.Ptr(int64(7))}).IsShared())
}
