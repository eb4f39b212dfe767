package get_available_slots

import (
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

// Request модель запроса свободных слотов терапевта за период.
// IncludePublic управляет учетом общих праздников: при false
// из выдачи исключаются только личные выходные терапевта.
type Request struct {
	TherapistID   int64
	StartDate     time.Time
	EndDate       time.Time
	IncludePublic bool
}

// Slot один предлагаемый слот
type Slot struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`      // "2026-09-15"
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "10:50"
}

// Response модель ответа со свободными слотами
type Response struct {
	TherapistID int64  `json:"therapistId"`
	Slots       []Slot `json:"slots"`
}

func fromDomainSlot(s *domain.TimeSlot) Slot {
	return Slot{
		ID:        s.ID,
		Date:      s.Date.Format(domain.DateFormat),
		StartTime: s.StartTime.String(),
		EndTime:   s.EndTime.String(),
	}
}
