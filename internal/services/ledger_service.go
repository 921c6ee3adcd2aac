package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/epeers/fundledger/internal/metrics"
	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/valuation"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// LedgerService computes participant ledgers and the fund summary
type LedgerService struct {
	participants ParticipantStore
	returns      ReturnStore
	calendar     *CalendarService
	book         positionBook
	mode         valuation.AllocationMode
	workers      int
}

// NewLedgerService creates a new LedgerService. workers bounds how many
// participant ledgers the fund summary computes at once.
func NewLedgerService(
	participants ParticipantStore,
	monthly MonthlyValueStore,
	returns ReturnStore,
	settings SettingsStore,
	calendar *CalendarService,
	mode valuation.AllocationMode,
	workers int,
) *LedgerService {
	if workers < 1 {
		workers = 1
	}
	return &LedgerService{
		participants: participants,
		returns:      returns,
		calendar:     calendar,
		book:         positionBook{participants: participants, monthly: monthly, settings: settings},
		mode:         mode,
		workers:      workers,
	}
}

// monthData is the period-wide input shared by every participant's ledger
type monthData struct {
	fund    []models.FundReturn
	days    []models.TradingDay
	trading map[models.Date]struct{}
}

// baseFundValue is the total fund value of the first trading-day fund return
// with a nonzero total; ok is false when the month has none.
func (m *monthData) baseFundValue() (value float64, ok bool) {
	for _, fr := range m.fund {
		if _, trading := m.trading[fr.Date]; trading && fr.TotalFundValue > 0 {
			return fr.TotalFundValue, true
		}
	}
	return 0, false
}

func (s *LedgerService) loadMonth(ctx context.Context, period models.Period) (*monthData, error) {
	days, _, err := s.calendar.TradingDaysFor(ctx, period)
	if err != nil {
		return nil, err
	}
	fund, err := s.returns.ListFundReturns(ctx, period)
	if err != nil {
		return nil, err
	}

	trading := make(map[models.Date]struct{}, len(days))
	for _, d := range days {
		trading[d.Date] = struct{}{}
	}
	for _, fr := range fund {
		if fr.TotalFundValue == 0 {
			AddWarning(ctx, models.Warning{
				Code:    models.WarnZeroFundValue,
				Message: fmt.Sprintf("fund return on %s has zero total fund value; treated as 0%%", fr.Date),
			})
		}
		if _, ok := trading[fr.Date]; !ok {
			AddWarning(ctx, models.Warning{
				Code:    models.WarnNonTradingEntry,
				Message: fmt.Sprintf("fund return on %s is not a trading day; excluded from compounding", fr.Date),
			})
		}
	}
	return &monthData{fund: fund, days: days, trading: trading}, nil
}

// input assembles the engine input for one participant. A zero beginning
// value with positive ownership is taken as that share of the month's base
// fund value.
func (s *LedgerService) input(ctx context.Context, p models.Participant, period models.Period, month *monthData) (valuation.Input, models.Position, error) {
	pos, err := s.book.forParticipant(ctx, p, period)
	if err != nil {
		return valuation.Input{}, pos, err
	}

	if base, ok := month.baseFundValue(); ok && pos.BeginningValue == 0 && pos.OwnershipPercentage > 0 {
		pos.BeginningValue = models.RoundCents(pos.OwnershipPercentage / 100 * base)
		pos.Source = models.PositionFromFundShare
		AddWarning(ctx, models.Warning{
			Code:    models.WarnDerivedBeginningValue,
			Message: fmt.Sprintf("participant %d: beginning value for %s derived from %.4f%% ownership", p.ID, period, pos.OwnershipPercentage),
		})
	}
	if pos.Source == models.PositionNone {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnNoPosition,
			Message: fmt.Sprintf("participant %d has no beginning value for %s", p.ID, period),
		})
	}

	own, err := s.returns.ListDailyReturns(ctx, p.ID, period)
	if err != nil {
		return valuation.Input{}, pos, err
	}

	return valuation.Input{
		BeginningValue:      pos.BeginningValue,
		OwnershipPercentage: pos.OwnershipPercentage,
		Mode:                s.mode,
		Entries:             valuation.Overlay(valuation.FromFundReturns(month.fund), valuation.FromDailyReturns(own)),
		TradingDays:         month.days,
	}, pos, nil
}

func (s *LedgerService) build(ctx context.Context, p models.Participant, period models.Period, month *monthData) (*models.Ledger, error) {
	in, pos, err := s.input(ctx, p, period, month)
	if err != nil {
		return nil, err
	}
	rows, summary, err := valuation.BuildLedger(in)
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger for participant %d: %w", p.ID, err)
	}
	return &models.Ledger{
		ParticipantID: p.ID,
		Period:        period,
		Source:        pos.Source,
		Rows:          rows,
		Summary:       summary,
	}, nil
}

// ParticipantLedger returns one participant's per-day ledger and summary for period
func (s *LedgerService) ParticipantLedger(ctx context.Context, participantID int64, period models.Period) (*models.Ledger, error) {
	defer TrackTime("LedgerService.ParticipantLedger", time.Now())
	start := time.Now()
	defer func() { metrics.LedgerDuration.WithLabelValues("participant").Observe(time.Since(start).Seconds()) }()

	p, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, storeError(err)
	}
	month, err := s.loadMonth(ctx, period)
	if err != nil {
		return nil, err
	}
	ledger, err := s.build(ctx, *p, period, month)
	if err != nil {
		return nil, err
	}
	roundLedger(ledger)
	return ledger, nil
}

// FundSummary computes every participant's ledger for period concurrently and aggregates them
func (s *LedgerService) FundSummary(ctx context.Context, period models.Period) (*models.FundSummary, error) {
	defer TrackTime("LedgerService.FundSummary", time.Now())
	start := time.Now()
	defer func() { metrics.LedgerDuration.WithLabelValues("fund").Observe(time.Since(start).Seconds()) }()

	participants, err := s.participants.List(ctx)
	if err != nil {
		return nil, err
	}
	month, err := s.loadMonth(ctx, period)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ParticipantSummary, len(participants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, p := range participants {
		g.Go(func() error {
			ledger, err := s.build(gctx, p, period, month)
			if err != nil {
				return err
			}
			summaries[i] = models.ParticipantSummary{
				ParticipantID: p.ID,
				Username:      p.Username,
				Name:          strings.TrimSpace(p.FirstName + " " + p.LastName),
				Summary:       ledger.Summary,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fs := &models.FundSummary{Period: period, Participants: summaries}
	for _, ps := range summaries {
		fs.TotalBeginningValue += ps.Summary.BeginningValue
		fs.TotalCurrentValue += ps.Summary.CurrentValue
		fs.OwnershipTotal += ps.Summary.OwnershipPercentage
	}
	fs.TotalChange = fs.TotalCurrentValue - fs.TotalBeginningValue
	if fs.TotalBeginningValue != 0 {
		fs.PercentChange = fs.TotalChange / fs.TotalBeginningValue * 100
	}
	fs.FundDollarChange, fs.FundMonthReturnPct = valuation.FundPerformance(month.fund, month.days)

	if fs.OwnershipTotal > 0 && fs.OwnershipTotal < 100-valuation.OwnershipTolerance {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnOwnershipBelowTotal,
			Message: fmt.Sprintf("ownership for %s sums to %.4f%%", period, fs.OwnershipTotal),
		})
	}

	roundFundSummary(fs)
	log.Debugf("Fund summary for %s covers %d participants", period, len(summaries))
	return fs, nil
}

// ValueBefore returns a participant's running value at the close of the last
// day before date in date's month
func (s *LedgerService) ValueBefore(ctx context.Context, participantID int64, date models.Date) (float64, error) {
	p, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return 0, storeError(err)
	}
	period := models.Period{Year: date.Year(), Month: date.Month()}
	month, err := s.loadMonth(ctx, period)
	if err != nil {
		return 0, err
	}
	in, _, err := s.input(ctx, *p, period, month)
	if err != nil {
		return 0, err
	}
	return valuation.ValueBefore(in, date)
}

func roundPtr(v *float64, round func(float64) float64) {
	if v != nil {
		*v = round(*v)
	}
}

func roundSummary(sum *models.LedgerSummary) {
	sum.BeginningValue = models.RoundCents(sum.BeginningValue)
	sum.CurrentValue = models.RoundCents(sum.CurrentValue)
	sum.Change = models.RoundCents(sum.Change)
	sum.PercentChange = models.RoundPct(sum.PercentChange)
	sum.MonthReturnPct = models.RoundPct(sum.MonthReturnPct)
	sum.OwnershipPercentage = models.RoundPct(sum.OwnershipPercentage)
}

// roundLedger rounds money to cents and percentages to six places for output
func roundLedger(l *models.Ledger) {
	for i := range l.Rows {
		r := &l.Rows[i]
		r.Value = models.RoundCents(r.Value)
		roundPtr(r.DollarChange, models.RoundCents)
		roundPtr(r.PercentageChange, models.RoundPct)
		roundPtr(r.CumulativeReturnPct, models.RoundPct)
	}
	roundSummary(&l.Summary)
}

func roundFundSummary(fs *models.FundSummary) {
	for i := range fs.Participants {
		roundSummary(&fs.Participants[i].Summary)
	}
	fs.TotalBeginningValue = models.RoundCents(fs.TotalBeginningValue)
	fs.TotalCurrentValue = models.RoundCents(fs.TotalCurrentValue)
	fs.TotalChange = models.RoundCents(fs.TotalChange)
	fs.PercentChange = models.RoundPct(fs.PercentChange)
	fs.OwnershipTotal = models.RoundPct(fs.OwnershipTotal)
	fs.FundDollarChange = models.RoundCents(fs.FundDollarChange)
	fs.FundMonthReturnPct = models.RoundPct(fs.FundMonthReturnPct)
}
