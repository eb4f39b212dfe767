package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{name: "parent", input: "parent", want: RoleParent},
		{name: "therapist", input: "therapist", want: RoleTherapist},
		{name: "admin", input: "admin", want: RoleAdmin},
		{name: "unknown", input: "moderator", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "case sensitive", input: "Admin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name        string
		actor       Actor
		action      Action
		ownerUserID int64
		wantErr     bool
	}{
		{
			name:        "therapist confirms own booking",
			actor:       Actor{UserID: 10, Role: RoleTherapist},
			action:      ActionConfirmBooking,
			ownerUserID: 10,
		},
		{
			name:        "therapist confirms foreign booking",
			actor:       Actor{UserID: 10, Role: RoleTherapist},
			action:      ActionConfirmBooking,
			ownerUserID: 11,
			wantErr:     true,
		},
		{
			name:        "parent cannot confirm",
			actor:       Actor{UserID: 10, Role: RoleParent},
			action:      ActionConfirmBooking,
			ownerUserID: 10,
			wantErr:     true,
		},
		{
			name:        "parent cancels own booking",
			actor:       Actor{UserID: 5, Role: RoleParent},
			action:      ActionCancelBooking,
			ownerUserID: 5,
		},
		{
			name:        "therapist cannot cancel",
			actor:       Actor{UserID: 5, Role: RoleTherapist},
			action:      ActionCancelBooking,
			ownerUserID: 5,
			wantErr:     true,
		},
		{
			name:        "admin settles regardless of owner",
			actor:       Actor{UserID: 1, Role: RoleAdmin},
			action:      ActionSettleBooking,
			ownerUserID: 999,
		},
		{
			name:        "therapist cannot settle",
			actor:       Actor{UserID: 999, Role: RoleTherapist},
			action:      ActionSettleBooking,
			ownerUserID: 999,
			wantErr:     true,
		},
		{
			name:        "zero owner skips ownership check",
			actor:       Actor{UserID: 7, Role: RoleParent},
			action:      ActionRequestRefund,
			ownerUserID: 0,
		},
		{
			name:        "unknown action",
			actor:       Actor{UserID: 1, Role: RoleAdmin},
			action:      Action("drop_tables"),
			ownerUserID: 0,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.action, tt.ownerUserID)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrForbidden)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAuthorizeScheduleChange(t *testing.T) {
	tests := []struct {
		name            string
		actor           Actor
		therapistUserID int64
		wantErr         bool
	}{
		{name: "owner therapist", actor: Actor{UserID: 10, Role: RoleTherapist}, therapistUserID: 10},
		{name: "foreign therapist", actor: Actor{UserID: 10, Role: RoleTherapist}, therapistUserID: 11, wantErr: true},
		{name: "admin allowed", actor: Actor{UserID: 1, Role: RoleAdmin}, therapistUserID: 11},
		{name: "parent forbidden", actor: Actor{UserID: 11, Role: RoleParent}, therapistUserID: 11, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeScheduleChange(tt.actor, tt.therapistUserID)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrForbidden)
				return
			}
			require.NoError(t, err)
		})
	}
}
