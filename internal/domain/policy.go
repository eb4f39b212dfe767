package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConsultationSettlementNotSet возвращается при попытке рассчитать
	// выплату за консультацию терапевту без настроенной фиксированной суммы
	ErrConsultationSettlementNotSet = errors.New("domain: consultation settlement amount is not configured")
)

// CancellationRefund computes the refund for a parent self-cancellation.
//
// base is the paid amount the refund is computed from (the payment's
// per-session share), hoursUntil the distance from "now" to the session
// start. An unpaid booking is refunded nothing regardless of timing.
//
//	>= 24h  -> 100%
//	12..24h -> 50%
//	< 12h   -> 0
func CancellationRefund(base int64, hoursUntil float64, paid bool) int64 {
	if !paid || base <= 0 {
		return 0
	}

	switch {
	case hoursUntil >= FullRefundHours:
		return base
	case hoursUntil >= HalfRefundHours:
		return base / 2
	default:
		return 0
	}
}

// SettlementAmount computes the therapist payout for one booking.
//
// CONSULTATION settles to the therapist's fixed consultation settlement
// amount and fails if it is not configured. THERAPY settles to
// finalFee − platformFee; legacy payments without a platform fee fall back
// to finalFee × (1 − settlementRate/100).
func SettlementAmount(
	sessionType SessionType,
	consultationSettlement *int64,
	finalFee int64,
	platformFee int64,
	settlementRate int,
) (int64, error) {
	switch sessionType {
	case SessionConsultation:
		if consultationSettlement == nil {
			return 0, ErrConsultationSettlementNotSet
		}
		return *consultationSettlement, nil

	case SessionTherapy:
		if platformFee > 0 {
			return finalFee - platformFee, nil
		}
		if settlementRate <= 0 {
			settlementRate = DefaultSettlementRate
		}
		return finalFee * int64(100-settlementRate) / 100, nil

	default:
		return 0, fmt.Errorf("domain: unknown session type %q", sessionType)
	}
}

// PlatformFee computes the platform margin withheld from a final fee
func PlatformFee(finalFee int64, settlementRate int) int64 {
	if settlementRate <= 0 {
		settlementRate = DefaultSettlementRate
	}
	return finalFee * int64(settlementRate) / 100
}

// ApplyDiscount computes the final fee after a percent discount
func ApplyDiscount(originalFee int64, discountRate int) int64 {
	if discountRate <= 0 {
		return originalFee
	}
	if discountRate >= 100 {
		return 0
	}
	return originalFee * int64(100-discountRate) / 100
}
