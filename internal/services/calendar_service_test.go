package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/epeers/fundledger/internal/cache"
	"github.com/epeers/fundledger/internal/models"
)

// MockCalendarStore is a mock implementation of CalendarStore for testing
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

func TestCalendarService_FallsBackToWeekdays(t *testing.T) {
	store := new(MockCalendarStore)
	svc := NewCalendarService(store, cache.NewMemoryCache(time.Minute))
	november := models.Period{Year: 2025, Month: time.November}

	store.On("ListByPeriod", mock.Anything, november).Return([]models.TradingDay{}, nil).Once()

	for i := 0; i < 2; i++ {
		ctx, wc := NewWarningContext(context.Background())
		days, fallback, err := svc.TradingDaysFor(ctx, november)
		require.NoError(t, err)
		assert.True(t, fallback)
		require.Len(t, days, 20)
		assert.Equal(t, models.Date("2025-11-03"), days[0].Date)
		assert.Equal(t, models.Date("2025-11-28"), days[19].Date)
		for _, d := range days {
			assert.False(t, d.IsHalfDay)
		}
		assert.Equal(t, []models.WarningCode{models.WarnCalendarFallback}, warningCodes(wc))
	}

	store.AssertExpectations(t)
}

func TestCalendarService_UsesStoredDays(t *testing.T) {
	store := new(MockCalendarStore)
	svc := NewCalendarService(store, cache.NewMemoryCache(time.Minute))
	stored := []models.TradingDay{{Date: "2025-11-26"}, {Date: "2025-11-28", IsHalfDay: true}}
	store.On("ListByPeriod", mock.Anything, november2025).Return(stored, nil).Once()

	ctx, wc := NewWarningContext(context.Background())
	days, fallback, err := svc.TradingDaysFor(ctx, november2025)
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, stored, days)
	assert.Empty(t, wc.GetWarnings())
	store.AssertExpectations(t)
}

func TestCalendarService_StoreFailure(t *testing.T) {
	store := new(MockCalendarStore)
	svc := NewCalendarService(store, cache.NewMemoryCache(time.Minute))
	boom := errors.New("connection reset")
	store.On("ListByPeriod", mock.Anything, november2025).Return(nil, boom)

	_, _, err := svc.TradingDaysFor(context.Background(), november2025)
	assert.ErrorIs(t, err, boom)
}

func TestCalendarService_Initialize(t *testing.T) {
	t.Run("already populated", func(t *testing.T) {
		store := new(MockCalendarStore)
		svc := NewCalendarService(store, cache.NewMemoryCache(time.Minute))
		store.On("Count", mock.Anything).Return(12, nil)

		resp, err := svc.Initialize(context.Background())
		require.NoError(t, err)
		assert.False(t, resp.Initialized)
		assert.Equal(t, 12, resp.Count)
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("empty", func(t *testing.T) {
		store := new(MockCalendarStore)
		svc := NewCalendarService(store, cache.NewMemoryCache(time.Minute))
		store.On("Count", mock.Anything).Return(0, nil)
		store.On("Upsert", mock.Anything, SeedCalendar()).Return(64, nil)

		resp, err := svc.Initialize(context.Background())
		require.NoError(t, err)
		assert.True(t, resp.Initialized)
		assert.Equal(t, 64, resp.Inserted)
		store.AssertExpectations(t)
	})
}

func TestSeedCalendar(t *testing.T) {
	days := SeedCalendar()
	assert.Len(t, days, 64)

	byDate := make(map[models.Date]bool, len(days))
	for i, d := range days {
		byDate[d.Date] = d.IsHalfDay
		if i > 0 {
			assert.Less(t, string(days[i-1].Date), string(d.Date))
		}
	}
	assert.Equal(t, models.Date("2025-10-01"), days[0].Date)
	assert.Equal(t, models.Date("2025-12-31"), days[len(days)-1].Date)

	assert.True(t, byDate["2025-11-28"])
	assert.True(t, byDate["2025-12-24"])
	assert.False(t, byDate["2025-12-26"])
	_, open := byDate["2025-11-27"]
	assert.False(t, open)
	_, open = byDate["2025-12-25"]
	assert.False(t, open)
}

func TestCalendarService_ImportValidates(t *testing.T) {
	store := new(MockCalendarStore)
	svc := NewCalendarService(store, cache.NewMemoryCache(time.Minute))

	_, err := svc.Import(context.Background(), []models.TradingDay{{Date: "2025-11-3"}})
	assert.ErrorIs(t, err, ErrInvalidCalendar)

	_, err = svc.Import(context.Background(), []models.TradingDay{{Date: "2025-11-03"}, {Date: "2025-11-03"}})
	assert.ErrorIs(t, err, ErrInvalidCalendar)

	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCalendarService_ImportInvalidatesCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, fallback, err := h.calendar.TradingDaysFor(ctx, november2025)
	require.NoError(t, err)
	assert.True(t, fallback)

	_, err = h.calendar.Import(ctx, []models.TradingDay{{Date: "2025-11-28", IsHalfDay: true}})
	require.NoError(t, err)

	days, fallback, err := h.calendar.TradingDaysFor(ctx, november2025)
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, []models.TradingDay{{Date: "2025-11-28", IsHalfDay: true}}, days)

	status, err := h.calendar.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Count)
}
