package direct_refund

// Request тело прямого возврата.
// BookingGroupID переключает возврат на всю группу бронирований,
// иначе возвращается только бронирование из пути.
type Request struct {
	Amount         int64   `json:"amount"`
	Reason         string  `json:"reason"`
	BookingGroupID *string `json:"bookingGroupId,omitempty"`
}
