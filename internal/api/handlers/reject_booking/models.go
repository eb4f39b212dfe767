package reject_booking

// Request тело запроса на отклонение бронирования
type Request struct {
	Reason string `json:"reason"`
}
