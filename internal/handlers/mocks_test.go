package handlers

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/epeers/fundledger/config"
	"github.com/epeers/fundledger/internal/cache"
	"github.com/epeers/fundledger/internal/middleware"
	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/services"
	"github.com/epeers/fundledger/internal/valuation"
	"github.com/gin-gonic/gin"
)

// MockParticipantStore is a mock implementation of services.ParticipantStore
type MockParticipantStore struct {
	mock.Mock
}

func (m *MockParticipantStore) Create(ctx context.Context, p *models.Participant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockParticipantStore) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantStore) List(ctx context.Context) ([]models.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Participant), args.Error(1)
}

func (m *MockParticipantStore) Update(ctx context.Context, p *models.Participant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockParticipantStore) SetAllocation(ctx context.Context, id int64, beginningValue, ownershipPct float64) error {
	args := m.Called(ctx, id, beginningValue, ownershipPct)
	return args.Error(0)
}

func (m *MockParticipantStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMonthlyValueStore is a mock implementation of services.MonthlyValueStore
type MockMonthlyValueStore struct {
	mock.Mock
}

func (m *MockMonthlyValueStore) Get(ctx context.Context, participantID int64, period models.Period) (*models.MonthlyValue, error) {
	args := m.Called(ctx, participantID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MonthlyValue), args.Error(1)
}

func (m *MockMonthlyValueStore) ListByParticipant(ctx context.Context, participantID int64) ([]models.MonthlyValue, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MonthlyValue), args.Error(1)
}

func (m *MockMonthlyValueStore) ListByPeriod(ctx context.Context, period models.Period) ([]models.MonthlyValue, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MonthlyValue), args.Error(1)
}

func (m *MockMonthlyValueStore) Upsert(ctx context.Context, mv *models.MonthlyValue) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}

func (m *MockMonthlyValueStore) Delete(ctx context.Context, participantID int64, period models.Period) error {
	args := m.Called(ctx, participantID, period)
	return args.Error(0)
}

// MockReturnStore is a mock implementation of services.ReturnStore
type MockReturnStore struct {
	mock.Mock
}

func (m *MockReturnStore) GetFundReturn(ctx context.Context, id int64) (*models.FundReturn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FundReturn), args.Error(1)
}

func (m *MockReturnStore) ListFundReturns(ctx context.Context, period models.Period) ([]models.FundReturn, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FundReturn), args.Error(1)
}

func (m *MockReturnStore) CreateFundReturn(ctx context.Context, fr *models.FundReturn) error {
	args := m.Called(ctx, fr)
	return args.Error(0)
}

func (m *MockReturnStore) BulkCreateFundReturns(ctx context.Context, returns []models.FundReturn) (int, int, []error) {
	args := m.Called(ctx, returns)
	var errs []error
	if args.Get(2) != nil {
		errs = args.Get(2).([]error)
	}
	return args.Int(0), args.Int(1), errs
}

func (m *MockReturnStore) UpdateFundReturn(ctx context.Context, fr *models.FundReturn) error {
	args := m.Called(ctx, fr)
	return args.Error(0)
}

func (m *MockReturnStore) DeleteFundReturn(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReturnStore) GetDailyReturn(ctx context.Context, id int64) (*models.DailyReturn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyReturn), args.Error(1)
}

func (m *MockReturnStore) ListDailyReturns(ctx context.Context, participantID int64, period models.Period) ([]models.DailyReturn, error) {
	args := m.Called(ctx, participantID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyReturn), args.Error(1)
}

func (m *MockReturnStore) CreateDailyReturn(ctx context.Context, dr *models.DailyReturn) error {
	args := m.Called(ctx, dr)
	return args.Error(0)
}

func (m *MockReturnStore) UpdateDailyReturn(ctx context.Context, dr *models.DailyReturn) error {
	args := m.Called(ctx, dr)
	return args.Error(0)
}

func (m *MockReturnStore) DeleteDailyReturn(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCalendarStore is a mock implementation of services.CalendarStore
type MockCalendarStore struct {
	mock.Mock
}

func (m *MockCalendarStore) ListByPeriod(ctx context.Context, period models.Period) ([]models.TradingDay, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TradingDay), args.Error(1)
}

func (m *MockCalendarStore) Sample(ctx context.Context, limit int) ([]models.TradingDay, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TradingDay), args.Error(1)
}

func (m *MockCalendarStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCalendarStore) Upsert(ctx context.Context, days []models.TradingDay) (int, error) {
	args := m.Called(ctx, days)
	return args.Int(0), args.Error(1)
}

// MockSettingsStore is a mock implementation of services.SettingsStore
type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Get(ctx context.Context) (*models.FundSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FundSettings), args.Error(1)
}

func (m *MockSettingsStore) Update(ctx context.Context, s *models.FundSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// passthroughTx runs fn without a transaction
type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stores struct {
	participants *MockParticipantStore
	monthly      *MockMonthlyValueStore
	returns      *MockReturnStore
	calendar     *MockCalendarStore
	settings     *MockSettingsStore
}

func (s stores) assertExpectations(t mock.TestingT) {
	s.participants.AssertExpectations(t)
	s.monthly.AssertExpectations(t)
	s.returns.AssertExpectations(t)
	s.calendar.AssertExpectations(t)
	s.settings.AssertExpectations(t)
}

var october2025 = models.Period{Year: 2025, Month: time.October}

// setupRouter wires real services over mock stores behind the production routes
func setupRouter() (*gin.Engine, stores) {
	gin.SetMode(gin.TestMode)

	st := stores{
		participants: new(MockParticipantStore),
		monthly:      new(MockMonthlyValueStore),
		returns:      new(MockReturnStore),
		calendar:     new(MockCalendarStore),
		settings:     new(MockSettingsStore),
	}

	calendarSvc := services.NewCalendarService(st.calendar, cache.NewMemoryCache(time.Minute))
	participantSvc := services.NewParticipantService(st.participants, st.monthly, st.settings, passthroughTx{}, config.RebalanceAtomic)
	ledgerSvc := services.NewLedgerService(st.participants, st.monthly, st.returns, st.settings, calendarSvc, valuation.ModeCompound, 2)
	returnSvc := services.NewReturnService(st.returns, st.participants, ledgerSvc)
	settingsSvc := services.NewSettingsService(st.settings)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.ValidateUser())
	RegisterRoutes(router, Handlers{
		Participants: NewParticipantHandler(participantSvc),
		Returns:      NewReturnHandler(returnSvc),
		Ledger:       NewLedgerHandler(ledgerSvc, participantSvc),
		Admin:        NewAdminHandler(settingsSvc, calendarSvc),
	}, participantSvc)

	return router, st
}

var (
	adminUser = &models.Participant{ID: 1, Username: "admin", FirstName: "Fund", LastName: "Administrator", IsAdmin: true}
	alice     = &models.Participant{ID: 2, Username: "alice", FirstName: "Alice", LastName: "Avery", BeginningValue: 1000, OwnershipPercentage: 40}
	bob       = &models.Participant{ID: 3, Username: "bob", FirstName: "Bob", LastName: "Barker", BeginningValue: 1500, OwnershipPercentage: 60}
)

func (s stores) knowParticipants(ps ...*models.Participant) {
	for _, p := range ps {
		s.participants.On("GetByID", mock.Anything, p.ID).Return(p, nil).Maybe()
	}
}

func (s stores) currentPeriod(p models.Period) {
	s.settings.On("Get", mock.Anything).Return(&models.FundSettings{CurrentPeriod: p}, nil).Maybe()
}
