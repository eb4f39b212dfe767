package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "valid morning", input: "09:00", want: "09:00"},
		{name: "valid midnight", input: "00:00", want: "00:00"},
		{name: "valid end of day", input: "23:59", want: "23:59"},
		{name: "missing leading zero", input: "9:00", wantErr: true},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "12:60", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "noon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_Compare(t *testing.T) {
	a := TimeString("09:00")
	b := TimeString("10:30")

	assert.True(t, a.IsBefore(b))
	assert.False(t, b.IsBefore(a))
	assert.True(t, b.IsAfter(a))
	assert.False(t, a.IsAfter(a))
	assert.False(t, a.IsBefore(a))
}

func TestTimeString_AddMinutes(t *testing.T) {
	tests := []struct {
		name    string
		start   TimeString
		minutes int
		want    TimeString
		wantErr bool
	}{
		{name: "within hour", start: "09:00", minutes: 45, want: "09:45"},
		{name: "crosses hour", start: "09:30", minutes: 45, want: "10:15"},
		{name: "zero shift", start: "12:00", minutes: 0, want: "12:00"},
		{name: "backward shift", start: "12:00", minutes: -30, want: "11:30"},
		{name: "lands on end of day", start: "23:00", minutes: 59, want: "23:59"},
		{name: "crosses midnight forward", start: "23:30", minutes: 45, wantErr: true},
		{name: "crosses midnight backward", start: "00:10", minutes: -20, wantErr: true},
		{name: "invalid value", start: "bad", minutes: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.start.AddMinutes(tt.minutes)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_Minutes(t *testing.T) {
	got, err := TimeString("10:30").Minutes()
	require.NoError(t, err)
	assert.Equal(t, 630, got)

	got, err = TimeString("00:00").Minutes()
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	_, err = TimeString("25:00").Minutes()
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_At(t *testing.T) {
	date := time.Date(2026, time.March, 14, 17, 45, 12, 0, time.UTC)

	got, err := TimeString("09:30").At(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC), got)

	_, err = TimeString("").At(date)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		want    TimeString
		wantErr bool
	}{
		{name: "plain string", src: "09:00", want: "09:00"},
		{name: "with seconds", src: "09:00:00", want: "09:00"},
		{name: "bytes", src: []byte("14:15:00"), want: "14:15"},
		{name: "time value", src: time.Date(2026, 1, 1, 8, 5, 30, 0, time.UTC), want: "08:05"},
		{name: "nil", src: nil, want: ""},
		{name: "unsupported type", src: 42, wantErr: true},
		{name: "invalid string", src: "later", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts TimeString
			err := ts.Scan(tt.src)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ts)
		})
	}
}

func TestTimeString_Value(t *testing.T) {
	v, err := TimeString("09:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "09:00", v)

	v, err = TimeString("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = TimeString("9am").Value()
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}
