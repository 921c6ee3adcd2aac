package services

import (
	"context"

	"github.com/epeers/fundledger/internal/models"
)

// ParticipantStore persists participants
type ParticipantStore interface {
	Create(ctx context.Context, p *models.Participant) error
	GetByID(ctx context.Context, id int64) (*models.Participant, error)
	List(ctx context.Context) ([]models.Participant, error)
	Update(ctx context.Context, p *models.Participant) error
	SetAllocation(ctx context.Context, id int64, beginningValue, ownershipPct float64) error
	Delete(ctx context.Context, id int64) error
}

// MonthlyValueStore persists monthly value overrides
type MonthlyValueStore interface {
	Get(ctx context.Context, participantID int64, period models.Period) (*models.MonthlyValue, error)
	ListByParticipant(ctx context.Context, participantID int64) ([]models.MonthlyValue, error)
	ListByPeriod(ctx context.Context, period models.Period) ([]models.MonthlyValue, error)
	Upsert(ctx context.Context, mv *models.MonthlyValue) error
	Delete(ctx context.Context, participantID int64, period models.Period) error
}

// ReturnStore persists fund-level and participant-level returns
type ReturnStore interface {
	GetFundReturn(ctx context.Context, id int64) (*models.FundReturn, error)
	ListFundReturns(ctx context.Context, period models.Period) ([]models.FundReturn, error)
	CreateFundReturn(ctx context.Context, fr *models.FundReturn) error
	BulkCreateFundReturns(ctx context.Context, returns []models.FundReturn) (inserted int, skipped int, errs []error)
	UpdateFundReturn(ctx context.Context, fr *models.FundReturn) error
	DeleteFundReturn(ctx context.Context, id int64) error

	GetDailyReturn(ctx context.Context, id int64) (*models.DailyReturn, error)
	ListDailyReturns(ctx context.Context, participantID int64, period models.Period) ([]models.DailyReturn, error)
	CreateDailyReturn(ctx context.Context, dr *models.DailyReturn) error
	UpdateDailyReturn(ctx context.Context, dr *models.DailyReturn) error
	DeleteDailyReturn(ctx context.Context, id int64) error
}

// CalendarStore persists the trading calendar
type CalendarStore interface {
	ListByPeriod(ctx context.Context, period models.Period) ([]models.TradingDay, error)
	Sample(ctx context.Context, limit int) ([]models.TradingDay, error)
	Count(ctx context.Context) (int, error)
	Upsert(ctx context.Context, days []models.TradingDay) (int, error)
}

// SettingsStore persists the fund settings
type SettingsStore interface {
	Get(ctx context.Context) (*models.FundSettings, error)
	Update(ctx context.Context, s *models.FundSettings) error
}

// Transactor runs fn so that every store call made with the ctx it receives
// commits or rolls back together
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
