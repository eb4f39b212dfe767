package settle_booking

// Response результат выплаты терапевту
type Response struct {
	BookingID        int64 `json:"bookingId"`
	SettlementAmount int64 `json:"settlementAmount"`
}
