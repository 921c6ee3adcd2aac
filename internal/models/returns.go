package models

import (
	"time"
)

// FundReturn is the fund-level dollar change recorded for one date.
// TotalFundValue is the fund value the change was measured against.
type FundReturn struct {
	ID             int64     `json:"id"`
	Date           Date      `json:"date"`
	DollarChange   float64   `json:"dollar_change"`
	TotalFundValue float64   `json:"total_fund_value"`
	CreatedAt      time.Time `json:"created_at"`
}

// Percentage returns the fund-wide percentage change for the day.
// A zero TotalFundValue yields 0.
func (r FundReturn) Percentage() float64 {
	if r.TotalFundValue == 0 {
		return 0
	}
	return r.DollarChange / r.TotalFundValue * 100
}

// DailyReturn is a percentage return recorded directly for one participant.
type DailyReturn struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	Date          Date      `json:"date"`
	Percentage    float64   `json:"percentage"`
	CreatedAt     time.Time `json:"created_at"`
}

// TradingDay is a date on which returns compound.
type TradingDay struct {
	Date      Date `json:"date"`
	IsHalfDay bool `json:"is_half_day"`
}
