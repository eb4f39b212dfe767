package create_booking

import (
	"time"
)

// Request модель запроса на оформление пакета сессий.
// Консультация бронируется одним слотом; терапевтический пакет
// резервирует по слоту на каждую сессию.
type Request struct {
	UserID      int64   // ID родителя
	TherapistID int64   // ID терапевта
	SessionType string  // consultation | therapy
	TimeSlotIDs []int64 // слоты в порядке следования сессий
}

// BookedSession одна созданная сессия пакета
type BookedSession struct {
	BookingID     int64     // ID бронирования
	TimeSlotID    int64     // ID зарезервированного слота
	SessionNumber int       // Позиция в пакете, с 1
	ScheduledAt   time.Time // Начало сессии
	Status        string    // Статус бронирования
}

// Response модель ответа с созданным пакетом
type Response struct {
	PaymentID      int64  // ID созданного платежа
	BookingGroupID string // Общий идентификатор группы бронирований
	SessionType    string // Тип сессий
	SessionCount   int    // Количество сессий в пакете

	OriginalFee  int64 // Сумма без скидки
	DiscountRate int   // Процент скидки за пакет
	FinalFee     int64 // Сумма к оплате
	PlatformFee  int64 // Комиссия платформы

	PaymentStatus string // Статус платежа (ожидает перевода)

	Sessions []BookedSession // Созданные сессии
}
