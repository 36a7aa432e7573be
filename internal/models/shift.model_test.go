package models

import (
	"testing"
	"time"

	"fieldops/internal/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openShift() Shift {
	shift := Shift{
		VehicleID:     7,
		TeamID:        3,
		Status:        ShiftStatusOpen,
		StartTime:     time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC),
		StartOdometer: decimal.NewFromFloat(12345.6),
	}
	shift.ID = 42
	return shift
}

func TestShift_Close(t *testing.T) {
	shift := openShift()
	endTime := shift.StartTime.Add(9 * time.Hour)
	endOdometer := decimal.NewFromFloat(12400.0)

	require.NoError(t, shift.Close(endTime, endOdometer))

	assert.Equal(t, ShiftStatusClosed, shift.Status)
	assert.False(t, shift.IsOpen())
	require.NotNil(t, shift.EndTime)
	assert.Equal(t, endTime, *shift.EndTime)
	require.NotNil(t, shift.EndOdometer)
	assert.True(t, endOdometer.Equal(*shift.EndOdometer))
}

func TestShift_Close_AlreadyClosed(t *testing.T) {
	shift := openShift()
	endTime := shift.StartTime.Add(9 * time.Hour)
	require.NoError(t, shift.Close(endTime, decimal.NewFromFloat(12400.0)))

	err := shift.Close(endTime.Add(time.Hour), decimal.NewFromFloat(12500.0))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	// The first close's state is untouched.
	assert.Equal(t, endTime, *shift.EndTime)
}

func TestShift_Close_Validation(t *testing.T) {
	tests := []struct {
		name        string
		endTime     time.Time
		endOdometer decimal.Decimal
	}{
		{
			name:        "end time before start",
			endTime:     time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC),
			endOdometer: decimal.NewFromFloat(12400.0),
		},
		{
			name:        "end time equals start",
			endTime:     time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC),
			endOdometer: decimal.NewFromFloat(12400.0),
		},
		{
			name:        "end odometer below start",
			endTime:     time.Date(2025, 3, 10, 16, 45, 0, 0, time.UTC),
			endOdometer: decimal.NewFromFloat(12000.0),
		},
		{
			name:        "end odometer equals start",
			endTime:     time.Date(2025, 3, 10, 16, 45, 0, 0, time.UTC),
			endOdometer: decimal.NewFromFloat(12345.6),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift := openShift()
			err := shift.Close(tt.endTime, tt.endOdometer)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.True(t, shift.IsOpen())
			assert.Nil(t, shift.EndTime)
		})
	}
}

func TestReferenceDay(t *testing.T) {
	tests := []struct {
		name      string
		startTime time.Time
		dayStart  time.Time
	}{
		{
			name:      "mid-day utc",
			startTime: time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC),
			dayStart:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "midnight stays on its day",
			startTime: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			dayStart:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "last instant of the day",
			startTime: time.Date(2025, 3, 10, 23, 59, 59, 999999999, time.UTC),
			dayStart:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "non-utc start normalizes to utc day",
			startTime: time.Date(2025, 3, 10, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)),
			dayStart:  time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dayStart, dayEnd := ReferenceDay(tt.startTime)
			assert.Equal(t, tt.dayStart, dayStart)
			assert.Equal(t, tt.dayStart.Add(24*time.Hour), dayEnd)
		})
	}
}

func TestReconciliationRecord_IsOpen(t *testing.T) {
	record := ReconciliationRecord{}
	assert.True(t, record.IsOpen())

	closedAt := time.Now()
	record.ClosedAt = &closedAt
	assert.False(t, record.IsOpen())
}
