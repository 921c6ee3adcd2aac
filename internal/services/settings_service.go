package services

import (
	"context"
	"fmt"

	"github.com/epeers/fundledger/internal/metrics"
	"github.com/epeers/fundledger/internal/models"
)

// SettingsService manages the fund-wide settings record
type SettingsService struct {
	store SettingsStore
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the fund settings
func (s *SettingsService) Get(ctx context.Context) (*models.FundSettings, error) {
	return s.store.Get(ctx)
}

// Update applies the fields present in req
func (s *SettingsService) Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.FundSettings, error) {
	settings, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.TotalFundValue != nil {
		if *req.TotalFundValue < 0 {
			return nil, validationError("total_fund_value must not be negative")
		}
		settings.TotalFundValue = models.RoundCents(*req.TotalFundValue)
	}

	if req.CurrentYear != nil || req.CurrentMonth != nil {
		year, month := settings.CurrentPeriod.Year, int(settings.CurrentPeriod.Month)
		if req.CurrentYear != nil {
			year = *req.CurrentYear
		}
		if req.CurrentMonth != nil {
			month = *req.CurrentMonth
		}
		period, err := models.NewPeriod(year, month)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		settings.CurrentPeriod = period
	}

	err = s.store.Update(ctx, settings)
	metrics.RecordMutation("settings", "update", err)
	if err != nil {
		return nil, err
	}
	return settings, nil
}
