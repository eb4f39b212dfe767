package domain

import (
	"errors"
	"fmt"
)

// Role is supplied by the external identity provider for every request
type Role string

const (
	RoleParent    Role = "parent"
	RoleTherapist Role = "therapist"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a raw role string
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleParent, RoleTherapist, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Actor is the authenticated subject of a request
type Actor struct {
	UserID int64
	Role   Role
}

// Action is a state-transition operation subject to the capability check
type Action string

const (
	ActionConfirmBooking    Action = "confirm_booking"
	ActionRejectBooking     Action = "reject_booking"
	ActionCancelBooking     Action = "cancel_booking"
	ActionSubmitJournal     Action = "submit_journal"
	ActionRequestSettlement Action = "request_settlement"
	ActionSettleBooking     Action = "settle_booking"
	ActionConfirmTransfer   Action = "confirm_transfer"
	ActionRefundPayment     Action = "refund_payment"
	ActionDirectRefund      Action = "direct_refund"
	ActionReviewRefund      Action = "review_refund_request"
	ActionRequestRefund     Action = "request_refund"
	ActionCreateReview      Action = "create_review"
	ActionManageSchedule    Action = "manage_schedule"
)

var (
	// ErrUnknownRole возвращается при неизвестной роли в заголовке запроса
	ErrUnknownRole = errors.New("domain: unknown role")

	// ErrForbidden - типизированный отказ проверки полномочий
	ErrForbidden = errors.New("domain: actor is not permitted to perform this action")
)

// actionRoles - какая роль может инициировать каждое действие
var actionRoles = map[Action]Role{
	ActionConfirmBooking:    RoleTherapist,
	ActionRejectBooking:     RoleTherapist,
	ActionCancelBooking:     RoleParent,
	ActionSubmitJournal:     RoleTherapist,
	ActionRequestSettlement: RoleTherapist,
	ActionSettleBooking:     RoleAdmin,
	ActionConfirmTransfer:   RoleAdmin,
	ActionRefundPayment:     RoleAdmin,
	ActionDirectRefund:      RoleAdmin,
	ActionReviewRefund:      RoleAdmin,
	ActionRequestRefund:     RoleParent,
	ActionCreateReview:      RoleParent,
	ActionManageSchedule:    RoleTherapist,
}

// Authorize - единая проверка полномочий на входе каждой операции
// изменения состояния. ownerUserID - владелец затрагиваемого ресурса
// с точки зрения действия: user id терапевта для действий терапевта,
// user id родителя для действий родителя. Для admin-действий владелец
// не проверяется. Передача ownerUserID = 0 пропускает проверку владения
// (используется для admin-ролей, действующих от имени системы).
func Authorize(actor Actor, action Action, ownerUserID int64) error {
	required, ok := actionRoles[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %q", ErrForbidden, action)
	}

	if actor.Role != required {
		return fmt.Errorf("%w: action %s requires role %s", ErrForbidden, action, required)
	}

	if required != RoleAdmin && ownerUserID != 0 && actor.UserID != ownerUserID {
		return fmt.Errorf("%w: actor %d is not the owner of the target resource", ErrForbidden, actor.UserID)
	}

	return nil
}

// AuthorizeScheduleChange разрешает изменение расписания владельцу-терапевту
// или администратору (материализация слотов, праздники)
func AuthorizeScheduleChange(actor Actor, therapistUserID int64) error {
	if actor.Role == RoleAdmin {
		return nil
	}
	return Authorize(actor, ActionManageSchedule, therapistUserID)
}
