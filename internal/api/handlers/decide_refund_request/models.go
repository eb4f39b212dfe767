package decide_refund_request

// Решения по заявке
const (
	actionApprove = "approve"
	actionReject  = "reject"
)

// Request тело решения админа по заявке на возврат
type Request struct {
	Action          string `json:"action"` // approve | reject
	BookingID       *int64 `json:"bookingId,omitempty"`
	ApprovedAmount  int64  `json:"approvedAmount,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}
