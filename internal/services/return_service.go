package services

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/fundledger/internal/metrics"
	"github.com/epeers/fundledger/internal/models"
	log "github.com/sirupsen/logrus"
)

// ReturnService handles fund-level and participant-level return entries
type ReturnService struct {
	returns      ReturnStore
	participants ParticipantStore
	ledger       *LedgerService
}

// NewReturnService creates a new ReturnService
func NewReturnService(returns ReturnStore, participants ParticipantStore, ledger *LedgerService) *ReturnService {
	return &ReturnService{
		returns:      returns,
		participants: participants,
		ledger:       ledger,
	}
}

func validateFundAmounts(dollarChange, totalFundValue float64) error {
	if totalFundValue < 0 {
		return validationError("total_fund_value must not be negative")
	}
	if !models.ValidAmount(totalFundValue) {
		return validationError("total_fund_value exceeds %.2f", models.MaxAmount)
	}
	if !models.ValidAmount(dollarChange) {
		return validationError("dollar_change exceeds %.2f in magnitude", models.MaxAmount)
	}
	return nil
}

// ListFundReturns returns the fund returns of period in date order
func (s *ReturnService) ListFundReturns(ctx context.Context, period models.Period) ([]models.FundReturn, error) {
	returns, err := s.returns.ListFundReturns(ctx, period)
	if err != nil {
		return nil, err
	}
	if returns == nil {
		returns = []models.FundReturn{}
	}
	return returns, nil
}

// CreateFundReturn records the fund's dollar change for one date
func (s *ReturnService) CreateFundReturn(ctx context.Context, req *models.CreateFundReturnRequest) (*models.FundReturn, error) {
	if !req.Date.Valid() {
		return nil, validationError("date must be YYYY-MM-DD")
	}
	if err := validateFundAmounts(*req.DollarChange, *req.TotalFundValue); err != nil {
		return nil, err
	}

	fr := &models.FundReturn{
		Date:           req.Date,
		DollarChange:   models.RoundCents(*req.DollarChange),
		TotalFundValue: models.RoundCents(*req.TotalFundValue),
	}
	err := storeError(s.returns.CreateFundReturn(ctx, fr))
	metrics.RecordMutation("fund_return", "create", err)
	if err != nil {
		return nil, err
	}
	return fr, nil
}

// UpdateFundReturn changes the amounts of an existing fund return
func (s *ReturnService) UpdateFundReturn(ctx context.Context, id int64, req *models.UpdateFundReturnRequest) (*models.FundReturn, error) {
	if err := validateFundAmounts(*req.DollarChange, *req.TotalFundValue); err != nil {
		return nil, err
	}
	fr := &models.FundReturn{
		ID:             id,
		DollarChange:   models.RoundCents(*req.DollarChange),
		TotalFundValue: models.RoundCents(*req.TotalFundValue),
	}
	err := storeError(s.returns.UpdateFundReturn(ctx, fr))
	metrics.RecordMutation("fund_return", "update", err)
	if err != nil {
		return nil, err
	}
	return fr, nil
}

// DeleteFundReturn removes a fund return
func (s *ReturnService) DeleteFundReturn(ctx context.Context, id int64) error {
	err := storeError(s.returns.DeleteFundReturn(ctx, id))
	metrics.RecordMutation("fund_return", "delete", err)
	return err
}

// ImportFundReturns stores parsed fund returns, skipping dates already recorded
func (s *ReturnService) ImportFundReturns(ctx context.Context, returns []models.FundReturn) (*models.ImportResult, error) {
	defer TrackTime("ReturnService.ImportFundReturns", time.Now())

	result := &models.ImportResult{Errors: []string{}}
	valid := make([]models.FundReturn, 0, len(returns))
	seen := make(map[models.Date]struct{}, len(returns))
	for _, fr := range returns {
		if !fr.Date.Valid() {
			result.Errors = append(result.Errors, fmt.Sprintf("invalid date %q", fr.Date))
			continue
		}
		if _, dup := seen[fr.Date]; dup {
			result.Skipped++
			continue
		}
		if err := validateFundAmounts(fr.DollarChange, fr.TotalFundValue); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", fr.Date, err))
			continue
		}
		seen[fr.Date] = struct{}{}
		fr.DollarChange = models.RoundCents(fr.DollarChange)
		fr.TotalFundValue = models.RoundCents(fr.TotalFundValue)
		valid = append(valid, fr)
	}

	inserted, skipped, errs := s.returns.BulkCreateFundReturns(ctx, valid)
	if len(errs) > 0 {
		// the batch is all-or-nothing; nothing was stored
		for _, err := range errs {
			result.Errors = append(result.Errors, err.Error())
		}
		log.Warnf("Fund return import stored nothing: %v", errs[0])
		return result, nil
	}
	result.Inserted = inserted
	result.Skipped += skipped
	metrics.RecordMutation("fund_return", "import", nil)
	return result, nil
}

// ListDailyReturns returns a participant's own returns for period
func (s *ReturnService) ListDailyReturns(ctx context.Context, participantID int64, period models.Period) ([]models.DailyReturn, error) {
	if _, err := s.participants.GetByID(ctx, participantID); err != nil {
		return nil, storeError(err)
	}
	returns, err := s.returns.ListDailyReturns(ctx, participantID, period)
	if err != nil {
		return nil, err
	}
	if returns == nil {
		returns = []models.DailyReturn{}
	}
	return returns, nil
}

// percentageFor resolves req to a percentage. A dollar change is divided by
// the participant's running value just before date.
func (s *ReturnService) percentageFor(ctx context.Context, participantID int64, date models.Date, req *models.DailyReturnRequest) (float64, error) {
	switch {
	case req.Percentage != nil && req.DollarChange != nil:
		return 0, validationError("provide either percentage or dollar_change, not both")
	case req.Percentage != nil:
		return *req.Percentage, nil
	case req.DollarChange != nil:
		running, err := s.ledger.ValueBefore(ctx, participantID, date)
		if err != nil {
			return 0, err
		}
		if running == 0 {
			return 0, validationError("cannot convert a dollar change: value before %s is zero", date)
		}
		return *req.DollarChange / running * 100, nil
	}
	return 0, validationError("percentage or dollar_change is required")
}

// CreateDailyReturn records a participant's own return for one date
func (s *ReturnService) CreateDailyReturn(ctx context.Context, participantID int64, req *models.DailyReturnRequest) (*models.DailyReturn, error) {
	if !req.Date.Valid() {
		return nil, validationError("date must be YYYY-MM-DD")
	}
	if _, err := s.participants.GetByID(ctx, participantID); err != nil {
		return nil, storeError(err)
	}
	pct, err := s.percentageFor(ctx, participantID, req.Date, req)
	if err != nil {
		return nil, err
	}

	dr := &models.DailyReturn{ParticipantID: participantID, Date: req.Date, Percentage: pct}
	err = storeError(s.returns.CreateDailyReturn(ctx, dr))
	metrics.RecordMutation("daily_return", "create", err)
	if err != nil {
		return nil, err
	}
	return dr, nil
}

// UpdateDailyReturn changes the amount of an existing participant return; its date is fixed
func (s *ReturnService) UpdateDailyReturn(ctx context.Context, id int64, req *models.DailyReturnRequest) (*models.DailyReturn, error) {
	existing, err := s.returns.GetDailyReturn(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if req.Date != "" && req.Date != existing.Date {
		return nil, validationError("date cannot be changed; delete and re-create the return")
	}
	pct, err := s.percentageFor(ctx, existing.ParticipantID, existing.Date, req)
	if err != nil {
		return nil, err
	}

	existing.Percentage = pct
	err = storeError(s.returns.UpdateDailyReturn(ctx, existing))
	metrics.RecordMutation("daily_return", "update", err)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteDailyReturn removes a participant return
func (s *ReturnService) DeleteDailyReturn(ctx context.Context, id int64) error {
	err := storeError(s.returns.DeleteDailyReturn(ctx, id))
	metrics.RecordMutation("daily_return", "delete", err)
	return err
}
