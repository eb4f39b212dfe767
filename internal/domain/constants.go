package domain

// Пороги возврата при самостоятельной отмене родителем (в часах до сессии)
const (
	FullRefundHours = 24 // >= 24ч до начала - возврат 100%
	HalfRefundHours = 12 // 12..24ч до начала - возврат 50%
)

// Настройки выплат
const (
	// DefaultSettlementRate - процент платформы для legacy-платежей без platform_fee
	DefaultSettlementRate = 5
)

// Ограничения бизнес-валидации
const (
	MinRefundReasonLength       = 10
	MaxCancellationReasonLength = 500
	MaxRejectionReasonLength    = 500
	MaxJournalLength            = 10000
	MinRating                   = 1
	MaxRating                   = 5
	ReviewWindowDays            = 7
	MaxSessionsPerPackage       = 20
)

// Форматы дат и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// UnstartedStatuses - статусы, в которых сессия еще не состоялась.
// Используются каскадной отменой при возврате на уровне платежа.
var UnstartedStatuses = []BookingStatus{
	StatusPendingConfirmation,
	StatusConfirmed,
}

// SettlementBoundStatuses - статусы, после которых деньги за сессию
// уже движутся к терапевту; заявка на возврат по таким платежам не принимается,
// если все бронирования достигли одного из них.
var SettlementBoundStatuses = []BookingStatus{
	StatusPendingSettlement,
	StatusSettlementCompleted,
}
