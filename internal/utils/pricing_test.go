package utils

import (
	"testing"
	"time"

	"equiprent-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func ptr(v float64) *float64 { return &v }

func TestEstimateRentalCost(t *testing.T) {
	t.Run("Single day at daily rate", func(t *testing.T) {
		eq := &domain.Equipment{DailyRate: 100}
		quote, err := EstimateRentalCost(date("2025-03-10"), date("2025-03-10"), eq, false)
		require.NoError(t, err)
		assert.Equal(t, int32(1), quote.TotalDays)
		assert.Equal(t, int32(1), quote.Days)
		assert.Equal(t, float64(100), quote.TotalCost)
	})

	t.Run("Daily rate only, inclusive range", func(t *testing.T) {
		eq := &domain.Equipment{DailyRate: 100}
		quote, err := EstimateRentalCost(date("2025-03-10"), date("2025-03-14"), eq, false)
		require.NoError(t, err)
		assert.Equal(t, int32(5), quote.TotalDays)
		assert.Equal(t, float64(500), quote.TotalCost)
	})

	t.Run("Weekly rate covers full weeks", func(t *testing.T) {
		eq := &domain.Equipment{DailyRate: 100, WeeklyRate: ptr(600)}
		// 10 days = 1 week + 3 days
		quote, err := EstimateRentalCost(date("2025-03-01"), date("2025-03-10"), eq, false)
		require.NoError(t, err)
		assert.Equal(t, int32(10), quote.TotalDays)
		assert.Equal(t, int32(1), quote.Weeks)
		assert.Equal(t, int32(3), quote.Days)
		assert.Equal(t, float64(600+300), quote.TotalCost)
	})

	t.Run("Monthly then weekly then daily", func(t *testing.T) {
		eq := &domain.Equipment{DailyRate: 100, WeeklyRate: ptr(600), MonthlyRate: ptr(2000)}
		// 40 days = 1 billing month (30) + 1 week (7) + 3 days
		quote, err := EstimateRentalCost(date("2025-01-01"), date("2025-02-09"), eq, false)
		require.NoError(t, err)
		assert.Equal(t, int32(40), quote.TotalDays)
		assert.Equal(t, int32(1), quote.Months)
		assert.Equal(t, int32(1), quote.Weeks)
		assert.Equal(t, int32(3), quote.Days)
		assert.Equal(t, float64(2000+600+300), quote.TotalCost)
	})

	t.Run("Missing weekly tier falls through to daily", func(t *testing.T) {
		eq := &domain.Equipment{DailyRate: 100, MonthlyRate: ptr(2000)}
		// 33 days = 1 billing month + 3 days at the daily rate
		quote, err := EstimateRentalCost(date("2025-01-01"), date("2025-02-02"), eq, false)
		require.NoError(t, err)
		assert.Equal(t, int32(1), quote.Months)
		assert.Equal(t, int32(0), quote.Weeks)
		assert.Equal(t, int32(3), quote.Days)
		assert.Equal(t, float64(2000+300), quote.TotalCost)
	})

	t.Run("Operator charged per rental day", func(t *testing.T) {
		eq := &domain.Equipment{DailyRate: 100, OperatorRatePerDay: ptr(50)}
		quote, err := EstimateRentalCost(date("2025-03-10"), date("2025-03-14"), eq, true)
		require.NoError(t, err)
		assert.Equal(t, float64(250), quote.OperatorCost)
		assert.Equal(t, float64(750), quote.TotalCost)
	})

	t.Run("Operator requested but no operator rate", func(t *testing.T) {
		eq := &domain.Equipment{DailyRate: 100}
		_, err := EstimateRentalCost(date("2025-03-10"), date("2025-03-14"), eq, true)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no operator rate")
	})

	t.Run("End before start", func(t *testing.T) {
		eq := &domain.Equipment{DailyRate: 100}
		_, err := EstimateRentalCost(date("2025-03-14"), date("2025-03-10"), eq, false)
		assert.Error(t, err)
	})
}
