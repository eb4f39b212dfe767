package create_booking

import (
	"fmt"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) (domain.SessionType, error) {
	if req.UserID <= 0 {
		return "", fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.TherapistID <= 0 {
		return "", fmt.Errorf("%w: therapistID must be positive", ErrInvalidInput)
	}

	sessionType := domain.SessionType(req.SessionType)
	if sessionType != domain.SessionConsultation && sessionType != domain.SessionTherapy {
		return "", fmt.Errorf("%w: unknown session type %q", ErrInvalidInput, req.SessionType)
	}

	if len(req.TimeSlotIDs) == 0 {
		return "", fmt.Errorf("%w: at least one time slot is required", ErrInvalidInput)
	}

	if sessionType == domain.SessionConsultation && len(req.TimeSlotIDs) != 1 {
		return "", fmt.Errorf("%w: consultation books exactly one slot", ErrInvalidInput)
	}

	if len(req.TimeSlotIDs) > domain.MaxSessionsPerPackage {
		return "", fmt.Errorf("%w: at most %d sessions per package", ErrInvalidInput, domain.MaxSessionsPerPackage)
	}

	seen := make(map[int64]struct{}, len(req.TimeSlotIDs))
	for _, id := range req.TimeSlotIDs {
		if id <= 0 {
			return "", fmt.Errorf("%w: slot id must be positive", ErrInvalidInput)
		}
		if _, ok := seen[id]; ok {
			return "", fmt.Errorf("%w: duplicate slot id=%d", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	return sessionType, nil
}
