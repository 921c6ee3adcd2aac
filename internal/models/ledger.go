package models

// LedgerRow is one day of a participant's month ledger.
// Return fields are nil on trading days without an entry. Rows flagged
// NonTrading carry the entry's own numbers but do not move Value or
// CumulativeReturnPct.
type LedgerRow struct {
	Date                Date     `json:"date"`
	IsTradingDay        bool     `json:"is_trading_day"`
	IsHalfDay           bool     `json:"is_half_day"`
	NonTrading          bool     `json:"non_trading"`
	PercentageChange    *float64 `json:"percentage_change"`
	DollarChange        *float64 `json:"dollar_change"`
	Value               float64  `json:"value"`
	CumulativeReturnPct *float64 `json:"cumulative_return_pct"`
}

// LedgerSummary is the month summary of a ledger.
type LedgerSummary struct {
	BeginningValue      float64 `json:"beginning_value"`
	OwnershipPercentage float64 `json:"ownership_percentage"`
	CurrentValue        float64 `json:"current_value"`
	Change              float64 `json:"change"`
	PercentChange       float64 `json:"percent_change"`
	MonthReturnPct      float64 `json:"month_return_pct"`
	TradingDays         int     `json:"trading_days"`
	ReturnDays          int     `json:"return_days"`
	ExcludedEntries     int     `json:"excluded_entries"`
}

// Ledger is the per-day ledger and summary for one participant and month.
type Ledger struct {
	ParticipantID int64          `json:"participant_id"`
	Period        Period         `json:"period"`
	Source        PositionSource `json:"position_source"`
	Rows          []LedgerRow    `json:"rows"`
	Summary       LedgerSummary  `json:"summary"`
	Warnings      []Warning      `json:"warnings,omitempty"`
}

// ParticipantSummary is one participant's line in the fund summary.
type ParticipantSummary struct {
	ParticipantID int64         `json:"participant_id"`
	Username      string        `json:"username"`
	Name          string        `json:"name"`
	Summary       LedgerSummary `json:"summary"`
}

// FundSummary aggregates every participant's ledger for one month.
type FundSummary struct {
	Period              Period               `json:"period"`
	TotalBeginningValue float64              `json:"total_beginning_value"`
	TotalCurrentValue   float64              `json:"total_current_value"`
	TotalChange         float64              `json:"total_change"`
	PercentChange       float64              `json:"percent_change"`
	OwnershipTotal      float64              `json:"ownership_total"`
	FundDollarChange    float64              `json:"fund_dollar_change"`
	FundMonthReturnPct  float64              `json:"fund_month_return_pct"`
	Participants        []ParticipantSummary `json:"participants"`
	Warnings            []Warning            `json:"warnings,omitempty"`
}
