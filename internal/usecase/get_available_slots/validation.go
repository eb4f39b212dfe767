package get_available_slots

import (
	"fmt"
	"time"
)

// validateRequest валидирует входные данные запроса.
// Период ограничен maxRangeDays днями вперед.
func validateRequest(req *Request, maxRangeDays int) error {
	if req.TherapistID <= 0 {
		return fmt.Errorf("%w: therapistID must be positive", ErrInvalidInput)
	}

	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}

	if req.EndDate.Before(req.StartDate) {
		return ErrInvalidRange
	}

	if maxRangeDays > 0 {
		maxEnd := req.StartDate.AddDate(0, 0, maxRangeDays)
		if req.EndDate.After(maxEnd) {
			return fmt.Errorf("%w: at most %d days per request", ErrRangeTooWide, maxRangeDays)
		}
	}

	return nil
}

// clampStart поднимает начало периода до сегодняшнего дня:
// прошедшие даты не запрашиваются
func clampStart(start, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if start.Before(today) {
		return today
	}
	return start
}
