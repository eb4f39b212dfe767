package get_available_slots

import (
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/TCM-BookingService/internal/usecase/get_available_slots"
)

// ToUseCaseRequest конвертирует параметры запроса в модель use case
func ToUseCaseRequest(therapistID int64, startDateStr, endDateStr string, includePublic bool) (*getAvailableSlots.Request, error) {
	startDate, err := time.Parse(domain.DateFormat, startDateStr)
	if err != nil {
		return nil, err
	}

	endDate, err := time.Parse(domain.DateFormat, endDateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		TherapistID:   therapistID,
		StartDate:     startDate,
		EndDate:       endDate,
		IncludePublic: includePublic,
	}, nil
}
