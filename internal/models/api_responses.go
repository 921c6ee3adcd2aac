package models

// PeriodQuery represents the year/month query parameters shared by read endpoints
type PeriodQuery struct {
	Year  int `form:"year" binding:"required"`
	Month int `form:"month" binding:"required"`
}

// CreateParticipantRequest represents the request body for creating a participant
type CreateParticipantRequest struct {
	Username            string   `json:"username" binding:"required"`
	FirstName           string   `json:"first_name" binding:"required"`
	LastName            string   `json:"last_name" binding:"required"`
	BeginningValue      *float64 `json:"beginning_value" binding:"required"`
	OwnershipPercentage float64  `json:"ownership_percentage"`
}

// UpdateParticipantRequest represents the request body for updating a participant.
// When Rebalance is set, OwnershipPercentage is ignored and every participant's
// ownership for the current period is recomputed from beginning values.
type UpdateParticipantRequest struct {
	FirstName           string   `json:"first_name" binding:"required"`
	LastName            string   `json:"last_name" binding:"required"`
	BeginningValue      *float64 `json:"beginning_value" binding:"required"`
	OwnershipPercentage *float64 `json:"ownership_percentage"`
	Rebalance           bool     `json:"rebalance"`
}

// SetMonthlyValueRequest represents the request body for a monthly value override
type SetMonthlyValueRequest struct {
	BeginningValue      *float64 `json:"beginning_value" binding:"required"`
	OwnershipPercentage *float64 `json:"ownership_percentage"`
	Rebalance           bool     `json:"rebalance"`
}

// CreateFundReturnRequest represents the request body for recording a fund return
type CreateFundReturnRequest struct {
	Date           Date     `json:"date" binding:"required"`
	DollarChange   *float64 `json:"dollar_change" binding:"required"`
	TotalFundValue *float64 `json:"total_fund_value" binding:"required"`
}

// UpdateFundReturnRequest represents the request body for editing a fund return
type UpdateFundReturnRequest struct {
	DollarChange   *float64 `json:"dollar_change" binding:"required"`
	TotalFundValue *float64 `json:"total_fund_value" binding:"required"`
}

// DailyReturnRequest represents the request body for recording or editing a
// participant return. Exactly one of Percentage or DollarChange must be set;
// a dollar change is converted against the participant's running value.
type DailyReturnRequest struct {
	Date         Date     `json:"date"`
	Percentage   *float64 `json:"percentage"`
	DollarChange *float64 `json:"dollar_change"`
}

// RebalanceRequest represents the request body for an explicit rebalance
type RebalanceRequest struct {
	ParticipantID  int64    `json:"participant_id" binding:"required"`
	Year           int      `json:"year" binding:"required"`
	Month          int      `json:"month" binding:"required"`
	BeginningValue *float64 `json:"beginning_value" binding:"required"`
}

// UpdateSettingsRequest represents the request body for editing fund settings
type UpdateSettingsRequest struct {
	TotalFundValue *float64 `json:"total_fund_value"`
	CurrentYear    *int     `json:"current_year"`
	CurrentMonth   *int     `json:"current_month"`
}

// OwnershipChange is one participant's line in a rebalance result
type OwnershipChange struct {
	ParticipantID     int64          `json:"participant_id"`
	BeginningValue    float64        `json:"beginning_value"`
	PreviousOwnership float64        `json:"previous_ownership"`
	NewOwnership      float64        `json:"new_ownership"`
	Source            PositionSource `json:"source"`
}

// RebalanceResult reports the outcome of a rebalance
type RebalanceResult struct {
	Period         Period            `json:"period"`
	Mode           string            `json:"mode"`
	TotalFund      float64           `json:"total_fund"`
	OwnershipTotal float64           `json:"ownership_total"`
	Changes        []OwnershipChange `json:"changes"`
}

// ImportResult reports the outcome of a CSV import
type ImportResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// CalendarResponse represents the trading days of one month
type CalendarResponse struct {
	Period   Period       `json:"period"`
	Days     []TradingDay `json:"days"`
	Fallback bool         `json:"fallback"`
}

// CalendarStatusResponse reports how much of the calendar is stored
type CalendarStatusResponse struct {
	Count  int          `json:"count"`
	Sample []TradingDay `json:"sample"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CalendarInitResponse reports the outcome of seeding the trading calendar
type CalendarInitResponse struct {
	Initialized bool   `json:"initialized"`
	Inserted    int    `json:"inserted"`
	Count       int    `json:"count"`
	Message     string `json:"message"`
}

// ParticipantResponse wraps a participant with the rebalance it triggered, if any
type ParticipantResponse struct {
	Participant *Participant     `json:"participant"`
	Rebalance   *RebalanceResult `json:"rebalance,omitempty"`
}

// MonthlyValueResponse wraps a monthly value with the rebalance it triggered, if any
type MonthlyValueResponse struct {
	MonthlyValue *MonthlyValue    `json:"monthly_value"`
	Rebalance    *RebalanceResult `json:"rebalance,omitempty"`
}

// CalendarImportResponse reports how many trading days a calendar import wrote
type CalendarImportResponse struct {
	Written int `json:"written"`
}
