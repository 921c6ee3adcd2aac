package models

// WarningCode categorizes warnings by subsystem.
// W1xxx = calendar, W2xxx = returns, W3xxx = allocation.
type WarningCode string

const (
	WarnCalendarFallback      WarningCode = "W1001" // no calendar rows for the month; weekdays synthesized
	WarnNonTradingEntry       WarningCode = "W2001" // return recorded on a non-trading day, excluded from compounding
	WarnZeroFundValue         WarningCode = "W2002" // fund return with zero total fund value, treated as 0%
	WarnNoPosition            WarningCode = "W3001" // no override or profile value for the month; beginning value is zero
	WarnDerivedBeginningValue WarningCode = "W3002" // beginning value derived from ownership share of the fund
	WarnOwnershipBelowTotal   WarningCode = "W3003" // participants' ownership sums to less than 100%
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
