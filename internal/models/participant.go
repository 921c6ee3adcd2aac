package models

import (
	"time"
)

// Participant is an investor holding a stake in the fund.
// BeginningValue and OwnershipPercentage are the profile-level values for the
// fund's current period.
type Participant struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	BeginningValue      float64   `json:"beginning_value"`
	OwnershipPercentage float64   `json:"ownership_percentage"`
	IsAdmin             bool      `json:"is_admin"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// MonthlyValue overrides a participant's beginning value and ownership for one month.
// Uses composite primary key (participant_id, year, month)
type MonthlyValue struct {
	ParticipantID       int64      `json:"participant_id"`
	Year                int        `json:"year"`
	Month               time.Month `json:"month"`
	BeginningValue      float64    `json:"beginning_value"`
	OwnershipPercentage float64    `json:"ownership_percentage"`
}

// Period returns the month the override applies to.
func (m MonthlyValue) Period() Period {
	return Period{Year: m.Year, Month: m.Month}
}

// PositionSource tells where a resolved position came from.
type PositionSource string

const (
	PositionFromMonthlyValue PositionSource = "monthly_value"
	PositionFromProfile      PositionSource = "profile"
	PositionFromFundShare    PositionSource = "fund_share"
	PositionNone             PositionSource = "none"
)

// Position is a participant's beginning value and ownership for one period.
type Position struct {
	ParticipantID       int64          `json:"participant_id"`
	Period              Period         `json:"period"`
	BeginningValue      float64        `json:"beginning_value"`
	OwnershipPercentage float64        `json:"ownership_percentage"`
	Source              PositionSource `json:"source"`
}

// FundSettings is the singleton fund configuration record.
type FundSettings struct {
	TotalFundValue float64   `json:"total_fund_value"`
	CurrentPeriod  Period    `json:"current_period"`
	UpdatedAt      time.Time `json:"updated_at"`
}
