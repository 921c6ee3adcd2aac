package cache

import (
	"sync"
	"time"

	"github.com/epeers/fundledger/internal/models"
)

// MemoryCache provides an in-memory cache of resolved trading calendars, one entry per month
type MemoryCache struct {
	calendars  map[models.Period]calendarEntry
	calendarMu sync.RWMutex
	ttl        time.Duration
	now        func() time.Time
}

type calendarEntry struct {
	days      []models.TradingDay
	fallback  bool
	fetchedAt time.Time
}

// NewMemoryCache creates a new in-memory cache. A non-positive ttl disables caching.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		calendars: make(map[models.Period]calendarEntry),
		ttl:       ttl,
		now:       time.Now,
	}
}

// GetCalendar retrieves a month's trading days if cached and fresh.
// fallback reports whether the days were synthesized rather than stored.
func (c *MemoryCache) GetCalendar(period models.Period) (days []models.TradingDay, fallback bool, ok bool) {
	c.calendarMu.RLock()
	defer c.calendarMu.RUnlock()

	entry, exists := c.calendars[period]
	if !exists {
		return nil, false, false
	}
	if c.now().Sub(entry.fetchedAt) > c.ttl {
		return nil, false, false
	}
	out := make([]models.TradingDay, len(entry.days))
	copy(out, entry.days)
	return out, entry.fallback, true
}

// SetCalendar caches a month's trading days
func (c *MemoryCache) SetCalendar(period models.Period, days []models.TradingDay, fallback bool) {
	if c.ttl <= 0 {
		return
	}
	c.calendarMu.Lock()
	defer c.calendarMu.Unlock()

	stored := make([]models.TradingDay, len(days))
	copy(stored, days)
	c.calendars[period] = calendarEntry{
		days:      stored,
		fallback:  fallback,
		fetchedAt: c.now(),
	}
}

// InvalidateCalendar removes one month from the cache
func (c *MemoryCache) InvalidateCalendar(period models.Period) {
	c.calendarMu.Lock()
	defer c.calendarMu.Unlock()

	delete(c.calendars, period)
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.calendarMu.Lock()
	c.calendars = make(map[models.Period]calendarEntry)
	c.calendarMu.Unlock()
}
