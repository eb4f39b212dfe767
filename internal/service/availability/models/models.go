package models

import (
	"time"

	"github.com/m04kA/TCM-BookingService/internal/domain"
)

// Request модели

// AddWindowRequest запрос на добавление еженедельного окна доступности
type AddWindowRequest struct {
	Weekday   int    `json:"weekday"` // 0 = воскресенье ... 6 = суббота
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// AddHolidayRequest запрос на добавление выходного дня.
// Shared = true помечает общий праздник для всех терапевтов (только админ).
type AddHolidayRequest struct {
	Date        string  `json:"date"`
	IsRecurring bool    `json:"isRecurring"`
	Reason      *string `json:"reason,omitempty"`
	Shared      bool    `json:"shared,omitempty"`
}

// RemoveSlotsRequest запрос на массовое удаление слотов за период
type RemoveSlotsRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Response модели

// WindowResponse ответ с еженедельным окном доступности
type WindowResponse struct {
	ID          int64  `json:"id"`
	TherapistID int64  `json:"therapistId"`
	Weekday     int    `json:"weekday"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

// WindowListResponse ответ со списком окон
type WindowListResponse struct {
	Windows []WindowResponse `json:"windows"`
}

// HolidayResponse ответ с выходным днем
type HolidayResponse struct {
	ID          int64   `json:"id"`
	TherapistID *int64  `json:"therapistId,omitempty"`
	Date        string  `json:"date"`
	IsRecurring bool    `json:"isRecurring"`
	Reason      *string `json:"reason,omitempty"`
}

// HolidayListResponse ответ со списком выходных
type HolidayListResponse struct {
	Holidays []HolidayResponse `json:"holidays"`
}

// RemoveSlotsResponse ответ массового удаления слотов
type RemoveSlotsResponse struct {
	RemovedCount int64 `json:"removedCount"`
}

// Методы конвертации

// FromDomainWindow конвертирует domain модель в DTO
func FromDomainWindow(w *domain.TherapistAvailability) *WindowResponse {
	if w == nil {
		return nil
	}

	return &WindowResponse{
		ID:          w.ID,
		TherapistID: w.TherapistID,
		Weekday:     int(w.Weekday),
		StartTime:   w.StartTime.String(),
		EndTime:     w.EndTime.String(),
	}
}

// FromDomainWindowList конвертирует список окон в DTO
func FromDomainWindowList(windows []*domain.TherapistAvailability) *WindowListResponse {
	resp := &WindowListResponse{
		Windows: make([]WindowResponse, 0, len(windows)),
	}
	for _, w := range windows {
		resp.Windows = append(resp.Windows, *FromDomainWindow(w))
	}
	return resp
}

// FromDomainHoliday конвертирует domain модель в DTO
func FromDomainHoliday(h *domain.HolidayDate) *HolidayResponse {
	if h == nil {
		return nil
	}

	return &HolidayResponse{
		ID:          h.ID,
		TherapistID: h.TherapistID,
		Date:        h.Date.Format(domain.DateFormat),
		IsRecurring: h.IsRecurring,
		Reason:      h.Reason,
	}
}

// FromDomainHolidayList конвертирует список выходных в DTO
func FromDomainHolidayList(holidays []*domain.HolidayDate) *HolidayListResponse {
	resp := &HolidayListResponse{
		Holidays: make([]HolidayResponse, 0, len(holidays)),
	}
	for _, h := range holidays {
		resp.Holidays = append(resp.Holidays, *FromDomainHoliday(h))
	}
	return resp
}

// ParseDate парсит дату в формате YYYY-MM-DD
func ParseDate(value string) (time.Time, error) {
	return time.Parse(domain.DateFormat, value)
}
