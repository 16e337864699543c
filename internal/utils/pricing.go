package utils

import (
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
)

const (
	daysPerWeek  = 7
	daysPerMonth = 30 // billing month, independent of the calendar month
)

// RentalQuote provides a detailed cost breakdown for a rental period.
// Tiered rates apply greedily: full billing months first, then full
// weeks, then days. A tier is skipped when the equipment has no rate
// for it, and its span falls through to the next tier.
type RentalQuote struct {
	TotalDays     int32   `json:"totalDays"`
	Months        int32   `json:"months"`
	Weeks         int32   `json:"weeks"`
	Days          int32   `json:"days"`
	EquipmentCost float64 `json:"equipmentCost"`
	OperatorCost  float64 `json:"operatorCost"`
	TotalCost     float64 `json:"totalCost"`
}

// EstimateRentalCost computes the quoted cost of renting the equipment
// for the inclusive [start, end] date range. When includeOperator is
// set, the operator's daily rate is charged for every rental day.
func EstimateRentalCost(start, end time.Time, eq *domain.Equipment, includeOperator bool) (*RentalQuote, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date must be on or after start date")
	}
	if eq.DailyRate <= 0 {
		return nil, fmt.Errorf("equipment has no daily rate")
	}

	totalDays := domain.TotalDaysBetween(start, end)
	quote := &RentalQuote{TotalDays: totalDays}

	remaining := totalDays
	if eq.MonthlyRate != nil && *eq.MonthlyRate > 0 {
		quote.Months = remaining / daysPerMonth
		remaining %= daysPerMonth
		quote.EquipmentCost += float64(quote.Months) * *eq.MonthlyRate
	}
	if eq.WeeklyRate != nil && *eq.WeeklyRate > 0 {
		quote.Weeks = remaining / daysPerWeek
		remaining %= daysPerWeek
		quote.EquipmentCost += float64(quote.Weeks) * *eq.WeeklyRate
	}
	quote.Days = remaining
	quote.EquipmentCost += float64(quote.Days) * eq.DailyRate

	if includeOperator {
		if eq.OperatorRatePerDay == nil || *eq.OperatorRatePerDay <= 0 {
			return nil, fmt.Errorf("equipment has no operator rate")
		}
		quote.OperatorCost = float64(totalDays) * *eq.OperatorRatePerDay
	}

	quote.TotalCost = quote.EquipmentCost + quote.OperatorCost
	return quote, nil
}
