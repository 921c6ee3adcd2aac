package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/fundledger/internal/cache"
	"github.com/epeers/fundledger/internal/metrics"
	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/util"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidCalendar = errors.New("invalid trading calendar")

const calendarSampleSize = 10

// CalendarService answers which dates of a month are trading days
type CalendarService struct {
	store CalendarStore
	cache *cache.MemoryCache
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(store CalendarStore, memCache *cache.MemoryCache) *CalendarService {
	return &CalendarService{
		store: store,
		cache: memCache,
	}
}

// TradingDaysFor returns the month's trading days in ascending order. When
// nothing is stored for the month every weekday is returned instead and
// fallback is true.
func (s *CalendarService) TradingDaysFor(ctx context.Context, period models.Period) (days []models.TradingDay, fallback bool, err error) {
	defer func() {
		if err == nil && fallback {
			AddWarning(ctx, models.Warning{
				Code:    models.WarnCalendarFallback,
				Message: fmt.Sprintf("no trading calendar stored for %s; using weekdays", period),
			})
		}
	}()

	if days, fallback, ok := s.cache.GetCalendar(period); ok {
		metrics.CalendarLookupsTotal.WithLabelValues("cache").Inc()
		return days, fallback, nil
	}

	days, err = s.store.ListByPeriod(ctx, period)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load trading calendar: %w", err)
	}

	if len(days) == 0 {
		log.Debugf("No trading calendar for %s, synthesizing weekdays", period)
		days = WeekdayCalendar(period)
		fallback = true
		metrics.CalendarLookupsTotal.WithLabelValues("fallback").Inc()
	} else {
		metrics.CalendarLookupsTotal.WithLabelValues("store").Inc()
	}

	s.cache.SetCalendar(period, days, fallback)
	return days, fallback, nil
}

// WeekdayCalendar returns every Monday through Friday of the month as a full trading day
func WeekdayCalendar(period models.Period) []models.TradingDay {
	weekdays := util.WeekdaysInMonth(period.Year, period.Month)
	days := make([]models.TradingDay, 0, len(weekdays))
	for _, d := range weekdays {
		days = append(days, models.TradingDay{Date: models.DateOf(d)})
	}
	return days
}

// Initialize seeds the calendar when it is empty. An already populated
// calendar is left untouched.
func (s *CalendarService) Initialize(ctx context.Context) (*models.CalendarInitResponse, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return &models.CalendarInitResponse{
			Initialized: false,
			Count:       count,
			Message:     "Calendar already initialized",
		}, nil
	}

	inserted, err := s.store.Upsert(ctx, SeedCalendar())
	metrics.RecordMutation("calendar", "init", err)
	if err != nil {
		return nil, err
	}
	s.cache.Clear()
	log.Infof("Seeded trading calendar with %d days", inserted)

	return &models.CalendarInitResponse{
		Initialized: true,
		Inserted:    inserted,
		Count:       inserted,
		Message:     "Calendar initialized",
	}, nil
}

// Import stores the given trading days, replacing the half-day flag of dates
// already present
func (s *CalendarService) Import(ctx context.Context, days []models.TradingDay) (int, error) {
	seen := make(map[models.Date]struct{}, len(days))
	for _, d := range days {
		if !d.Date.Valid() {
			return 0, fmt.Errorf("%w: bad date %q", ErrInvalidCalendar, d.Date)
		}
		if _, dup := seen[d.Date]; dup {
			return 0, fmt.Errorf("%w: %s listed twice", ErrInvalidCalendar, d.Date)
		}
		seen[d.Date] = struct{}{}
	}

	written, err := s.store.Upsert(ctx, days)
	metrics.RecordMutation("calendar", "import", err)
	if err != nil {
		return written, err
	}
	s.cache.Clear()
	return written, nil
}

// Status reports how many trading days are stored plus the earliest few
func (s *CalendarService) Status(ctx context.Context) (*models.CalendarStatusResponse, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	sample, err := s.store.Sample(ctx, calendarSampleSize)
	if err != nil {
		return nil, err
	}
	if sample == nil {
		sample = []models.TradingDay{}
	}
	return &models.CalendarStatusResponse{Count: count, Sample: sample}, nil
}

// seedHolidays are the NYSE closures in the seeded quarter
var seedHolidays = map[models.Date]struct{}{
	"2025-11-27": {}, // Thanksgiving
	"2025-12-25": {}, // Christmas
}

var seedHalfDays = map[models.Date]struct{}{
	"2025-11-28": {},
	"2025-12-24": {},
}

// SeedCalendar returns the exchange calendar for October through December 2025
func SeedCalendar() []models.TradingDay {
	var days []models.TradingDay
	for month := time.October; month <= time.December; month++ {
		for _, d := range WeekdayCalendar(models.Period{Year: 2025, Month: month}) {
			if _, closed := seedHolidays[d.Date]; closed {
				continue
			}
			_, d.IsHalfDay = seedHalfDays[d.Date]
			days = append(days, d)
		}
	}
	return days
}
