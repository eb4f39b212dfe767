package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{"pending to confirmed", StatusPendingConfirmation, StatusConfirmed, true},
		{"pending to rejected", StatusPendingConfirmation, StatusRejected, true},
		{"pending to cancelled", StatusPendingConfirmation, StatusCancelled, true},
		{"pending to refunded", StatusPendingConfirmation, StatusRefunded, true},
		{"pending to completed skips confirmation", StatusPendingConfirmation, StatusCompleted, false},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, true},
		{"confirmed to rejected", StatusConfirmed, StatusRejected, true},
		{"confirmed back to pending", StatusConfirmed, StatusPendingConfirmation, false},
		{"completed to pending settlement", StatusCompleted, StatusPendingSettlement, true},
		{"completed to refunded", StatusCompleted, StatusRefunded, true},
		{"completed to cancelled", StatusCompleted, StatusCancelled, false},
		{"pending settlement to settled", StatusPendingSettlement, StatusSettlementCompleted, true},
		{"pending settlement to refunded", StatusPendingSettlement, StatusRefunded, true},
		{"settled is terminal", StatusSettlementCompleted, StatusRefunded, false},
		{"rejected is terminal", StatusRejected, StatusConfirmed, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
		{"refunded is terminal", StatusRefunded, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBookingStatus_Transition(t *testing.T) {
	next, err := StatusPendingConfirmation.Transition(StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, next)

	_, err = StatusCancelled.Transition(StatusConfirmed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestBookingStatus_IsTerminal(t *testing.T) {
	terminal := []BookingStatus{StatusRejected, StatusCancelled, StatusRefunded, StatusSettlementCompleted}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "status %s must be terminal", s)
	}

	active := []BookingStatus{StatusPendingConfirmation, StatusConfirmed, StatusCompleted, StatusPendingSettlement}
	for _, s := range active {
		assert.False(t, s.IsTerminal(), "status %s must not be terminal", s)
	}
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseBookingStatus("in_progress")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestBooking_IsUnstarted(t *testing.T) {
	tests := []struct {
		status    BookingStatus
		unstarted bool
	}{
		{StatusPendingConfirmation, true},
		{StatusConfirmed, true},
		{StatusCompleted, false},
		{StatusPendingSettlement, false},
		{StatusCancelled, false},
		{StatusRefunded, false},
	}

	for _, tt := range tests {
		b := &Booking{Status: tt.status}
		assert.Equal(t, tt.unstarted, b.IsUnstarted(), "status %s", tt.status)
	}
}

func TestBooking_HoursUntilStart(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	b := &Booking{ScheduledAt: now.Add(25 * time.Hour)}

	assert.InDelta(t, 25.0, b.HoursUntilStart(now), 0.001)
	assert.InDelta(t, -1.0, b.HoursUntilStart(now.Add(26*time.Hour)), 0.001)
}
