package get_available_slots

import (
	"github.com/m04kA/TCM-BookingService/internal/domain"
	"github.com/m04kA/TCM-BookingService/pkg/types"
)

// filterOfferable отбирает предлагаемые слоты: слот должен быть открыт,
// не попадать на выходной день и не прилегать вплотную к занятому слоту
// (буфер отдыха терапевта с обеих сторон).
func filterOfferable(
	slots []*domain.TimeSlot,
	holidays []*domain.HolidayDate,
	bufferMinutes int,
) []*domain.TimeSlot {
	result := make([]*domain.TimeSlot, 0, len(slots))

	for _, slot := range slots {
		if !slot.IsOfferable() {
			continue
		}
		if onHoliday(slot, holidays) {
			continue
		}
		if bufferBlocked(slot, slots, bufferMinutes) {
			continue
		}
		result = append(result, slot)
	}

	return result
}

func onHoliday(slot *domain.TimeSlot, holidays []*domain.HolidayDate) bool {
	for _, h := range holidays {
		if h.AppliesTo(slot.Date) {
			return true
		}
	}
	return false
}

// bufferBlocked возвращает true, если слот стоит ближе bufferMinutes
// к занятому слоту того же дня
func bufferBlocked(slot *domain.TimeSlot, all []*domain.TimeSlot, bufferMinutes int) bool {
	if bufferMinutes <= 0 {
		return false
	}

	for _, other := range all {
		if other.ID == slot.ID || other.CurrentBookings == 0 {
			continue
		}
		if !sameDay(slot, other) {
			continue
		}
		if withinBuffer(slot.StartTime, slot.EndTime, other.StartTime, other.EndTime, bufferMinutes) {
			return true
		}
	}

	return false
}

func sameDay(a, b *domain.TimeSlot) bool {
	ay, am, ad := a.Date.Date()
	by, bm, bd := b.Date.Date()
	return ay == by && am == bm && ad == bd
}

// withinBuffer проверяет пересечение слота с занятым интервалом,
// расширенным на buffer минут в обе стороны. Выход расширения за
// границы дня усечения не требует: обрезанный интервал покрывается
// исходным занятым слотом.
func withinBuffer(start, end, bookedStart, bookedEnd types.TimeString, bufferMinutes int) bool {
	expandedStart, err := bookedStart.AddMinutes(-bufferMinutes)
	if err != nil {
		expandedStart = types.TimeString("00:00")
	}
	expandedEnd, err := bookedEnd.AddMinutes(bufferMinutes)
	if err != nil {
		expandedEnd = types.TimeString("23:59")
	}
	return start.IsBefore(expandedEnd) && end.IsAfter(expandedStart)
}
