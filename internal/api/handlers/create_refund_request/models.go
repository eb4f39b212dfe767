package create_refund_request

// Request тело заявки на возврат. Платеж берется из пути.
type Request struct {
	Reason          string `json:"reason"`
	RequestedAmount int64  `json:"requestedAmount"`
}
