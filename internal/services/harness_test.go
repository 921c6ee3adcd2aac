package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/epeers/fundledger/config"
	"github.com/epeers/fundledger/internal/cache"
	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/valuation"
)

var (
	october2025  = models.Period{Year: 2025, Month: time.October}
	november2025 = models.Period{Year: 2025, Month: time.November}
)

func fp(v float64) *float64 { return &v }

type harness struct {
	db           *memDB
	participants *ParticipantService
	ledger       *LedgerService
	returns      *ReturnService
	calendar     *CalendarService
	settings     *SettingsService
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	current       models.Period
	rebalanceMode string
	mode          valuation.AllocationMode
}

func withCurrent(p models.Period) harnessOption {
	return func(c *harnessConfig) { c.current = p }
}

func withRebalanceMode(mode string) harnessOption {
	return func(c *harnessConfig) { c.rebalanceMode = mode }
}

func withAllocationMode(mode valuation.AllocationMode) harnessOption {
	return func(c *harnessConfig) { c.mode = mode }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	cfg := harnessConfig{
		current:       october2025,
		rebalanceMode: config.RebalanceAtomic,
		mode:          valuation.ModeCompound,
	}
	for _, o := range opts {
		o(&cfg)
	}

	db := newMemDB(cfg.current)
	participants := memParticipants{db}
	monthly := memMonthly{db}
	returns := memReturns{db}
	settings := memSettings{db}

	calendarSvc := NewCalendarService(memCalendar{db}, cache.NewMemoryCache(time.Minute))
	ledgerSvc := NewLedgerService(participants, monthly, returns, settings, calendarSvc, cfg.mode, 3)
	return &harness{
		db:           db,
		participants: NewParticipantService(participants, monthly, settings, db, cfg.rebalanceMode),
		ledger:       ledgerSvc,
		returns:      NewReturnService(returns, participants, ledgerSvc),
		calendar:     calendarSvc,
		settings:     NewSettingsService(settings),
	}
}

func (h *harness) addParticipant(t *testing.T, username string, beginningValue, ownershipPct float64) *models.Participant {
	t.Helper()
	p, err := h.participants.Create(context.Background(), &models.CreateParticipantRequest{
		Username:            username,
		FirstName:           username,
		LastName:            "Tester",
		BeginningValue:      fp(beginningValue),
		OwnershipPercentage: ownershipPct,
	})
	require.NoError(t, err)
	return p
}

func (h *harness) addFundReturn(t *testing.T, date string, dollarChange, totalFundValue float64) *models.FundReturn {
	t.Helper()
	fr, err := h.returns.CreateFundReturn(context.Background(), &models.CreateFundReturnRequest{
		Date:           models.Date(date),
		DollarChange:   fp(dollarChange),
		TotalFundValue: fp(totalFundValue),
	})
	require.NoError(t, err)
	return fr
}

func (h *harness) ownership(t *testing.T) float64 {
	t.Helper()
	participants, err := h.participants.List(context.Background())
	require.NoError(t, err)
	total := 0.0
	for _, p := range participants {
		total += p.OwnershipPercentage
	}
	return total
}
