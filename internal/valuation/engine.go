// Package valuation turns raw fund and participant returns into per-day
// participant ledgers. It holds no state and performs no I/O.
package valuation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/epeers/fundledger/internal/models"
)

// AllocationMode selects how a fund-level dollar change reaches a participant.
type AllocationMode string

const (
	// ModeCompound applies the fund-wide percentage change to the participant's
	// own running balance.
	ModeCompound AllocationMode = "compound"
	// ModeSlice gives the participant ownership% of the fund's dollar change.
	ModeSlice AllocationMode = "slice"
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrDuplicateEntry = errors.New("more than one return for date")
	ErrUnknownMode    = errors.New("unknown allocation mode")
)

// Entry is one raw return. Percentage is set for participant returns; fund
// returns carry DollarChange measured against TotalFundValue instead.
type Entry struct {
	Date           models.Date
	Percentage     *float64
	DollarChange   float64
	TotalFundValue float64
}

// IsFund reports whether e is a fund-level dollar entry.
func (e Entry) IsFund() bool { return e.Percentage == nil }

// FromFundReturns converts fund returns into engine entries.
func FromFundReturns(returns []models.FundReturn) []Entry {
	entries := make([]Entry, 0, len(returns))
	for _, r := range returns {
		entries = append(entries, Entry{
			Date:           r.Date,
			DollarChange:   r.DollarChange,
			TotalFundValue: r.TotalFundValue,
		})
	}
	return entries
}

// FromDailyReturns converts participant percentage returns into engine entries.
func FromDailyReturns(returns []models.DailyReturn) []Entry {
	entries := make([]Entry, 0, len(returns))
	for _, r := range returns {
		pct := r.Percentage
		entries = append(entries, Entry{Date: r.Date, Percentage: &pct})
	}
	return entries
}

// Overlay returns base with every date present in top replaced by top's entry.
func Overlay(base, top []Entry) []Entry {
	byDate := make(map[models.Date]Entry, len(base)+len(top))
	for _, e := range base {
		byDate[e.Date] = e
	}
	for _, e := range top {
		byDate[e.Date] = e
	}
	merged := make([]Entry, 0, len(byDate))
	for _, e := range byDate {
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date < merged[j].Date })
	return merged
}

// Input is everything needed to value one participant over one period.
type Input struct {
	BeginningValue      float64
	OwnershipPercentage float64
	Mode                AllocationMode
	Entries             []Entry
	TradingDays         []models.TradingDay
}

// Percentage resolves e to the percentage change applied to a balance of
// runningValue. Fund entries with a zero TotalFundValue resolve to 0.
func Percentage(e Entry, runningValue, ownershipPct float64, mode AllocationMode) float64 {
	if e.Percentage != nil {
		return *e.Percentage
	}
	if mode == ModeSlice {
		if runningValue == 0 {
			return 0
		}
		share := e.DollarChange * ownershipPct / 100
		return share / runningValue * 100
	}
	if e.TotalFundValue == 0 {
		return 0
	}
	return e.DollarChange / e.TotalFundValue * 100
}

// BuildLedger walks the union of trading days and entry dates in ascending
// order. Entries on trading days compound into the running value and the
// cumulative return; entries on other dates are reported but not folded in.
func BuildLedger(in Input) ([]models.LedgerRow, models.LedgerSummary, error) {
	mode := in.Mode
	if mode == "" {
		mode = ModeCompound
	}
	if mode != ModeCompound && mode != ModeSlice {
		return nil, models.LedgerSummary{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	halfDay := make(map[models.Date]bool, len(in.TradingDays))
	for _, d := range in.TradingDays {
		if !d.Date.Valid() {
			return nil, models.LedgerSummary{}, fmt.Errorf("%w: trading day %q", ErrInvalidDate, d.Date)
		}
		halfDay[d.Date] = d.IsHalfDay
	}

	entries := make(map[models.Date]Entry, len(in.Entries))
	for _, e := range in.Entries {
		if !e.Date.Valid() {
			return nil, models.LedgerSummary{}, fmt.Errorf("%w: return dated %q", ErrInvalidDate, e.Date)
		}
		if _, dup := entries[e.Date]; dup {
			return nil, models.LedgerSummary{}, fmt.Errorf("%w %s", ErrDuplicateEntry, e.Date)
		}
		entries[e.Date] = e
	}

	dates := make([]models.Date, 0, len(halfDay)+len(entries))
	for d := range halfDay {
		dates = append(dates, d)
	}
	for d := range entries {
		if _, ok := halfDay[d]; !ok {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	summary := models.LedgerSummary{
		BeginningValue:      in.BeginningValue,
		OwnershipPercentage: in.OwnershipPercentage,
		TradingDays:         len(halfDay),
	}

	running := in.BeginningValue
	cumulative := 0.0
	rows := make([]models.LedgerRow, 0, len(dates))
	for _, date := range dates {
		half, trading := halfDay[date]
		row := models.LedgerRow{
			Date:         date,
			IsTradingDay: trading,
			IsHalfDay:    half,
		}

		e, ok := entries[date]
		if !ok {
			row.Value = running
			rows = append(rows, row)
			continue
		}

		pct := Percentage(e, running, in.OwnershipPercentage, mode)
		dollar := running * pct / 100
		row.PercentageChange = &pct
		row.DollarChange = &dollar

		if trading {
			running += dollar
			cumulative = ((1+cumulative/100)*(1+pct/100) - 1) * 100
			cum := cumulative
			row.CumulativeReturnPct = &cum
			summary.ReturnDays++
		} else {
			row.NonTrading = true
			summary.ExcludedEntries++
		}
		row.Value = running
		rows = append(rows, row)
	}

	summary.CurrentValue = running
	summary.Change = running - in.BeginningValue
	if in.BeginningValue != 0 {
		summary.PercentChange = summary.Change / in.BeginningValue * 100
	}
	summary.MonthReturnPct = cumulative

	return rows, summary, nil
}

// ValueBefore returns the running value at the close of the last day before
// date, counting only entries dated strictly earlier.
func ValueBefore(in Input, date models.Date) (float64, error) {
	if !date.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	earlier := make([]Entry, 0, len(in.Entries))
	for _, e := range in.Entries {
		if e.Date < date {
			earlier = append(earlier, e)
		}
	}
	in.Entries = earlier
	_, summary, err := BuildLedger(in)
	if err != nil {
		return 0, err
	}
	return summary.CurrentValue, nil
}

// CompoundReturns chains percentage returns geometrically.
func CompoundReturns(pcts []float64) float64 {
	growth := 1.0
	for _, p := range pcts {
		growth *= 1 + p/100
	}
	return (growth - 1) * 100
}

// FundPerformance sums the fund's dollar changes and compounds its percentage
// returns over the entries that fall on trading days.
func FundPerformance(returns []models.FundReturn, days []models.TradingDay) (dollarChange, returnPct float64) {
	trading := make(map[models.Date]struct{}, len(days))
	for _, d := range days {
		trading[d.Date] = struct{}{}
	}
	sorted := make([]models.FundReturn, len(returns))
	copy(sorted, returns)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	var pcts []float64
	for _, r := range sorted {
		if _, ok := trading[r.Date]; !ok {
			continue
		}
		dollarChange += r.DollarChange
		pcts = append(pcts, r.Percentage())
	}
	return dollarChange, CompoundReturns(pcts)
}
