package generate_slots

import "time"

// Request модель запроса материализации слотов из еженедельных окон
type Request struct {
	TherapistID int64
	StartDate   time.Time
	EndDate     time.Time
}

// Response модель ответа генерации слотов
type Response struct {
	TherapistID  int64 `json:"therapistId"`
	CreatedCount int   `json:"createdCount"` // новые слоты
	SkippedCount int   `json:"skippedCount"` // уже существовавшие
}
