package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/repository"
)

type mvKey struct {
	participantID int64
	period        models.Period
}

// memDB is an in-memory stand-in for the postgres repositories. InTx
// snapshots every table and restores it when fn fails.
type memDB struct {
	mu           sync.Mutex
	nextID       int64
	participants map[int64]models.Participant
	monthly      map[mvKey]models.MonthlyValue
	fund         map[int64]models.FundReturn
	daily        map[int64]models.DailyReturn
	calendar     map[models.Date]bool
	settings     models.FundSettings

	// failAllocation makes writes for these participant ids fail
	failAllocation map[int64]error
}

func newMemDB(current models.Period) *memDB {
	return &memDB{
		participants:   make(map[int64]models.Participant),
		monthly:        make(map[mvKey]models.MonthlyValue),
		fund:           make(map[int64]models.FundReturn),
		daily:          make(map[int64]models.DailyReturn),
		calendar:       make(map[models.Date]bool),
		settings:       models.FundSettings{CurrentPeriod: current},
		failAllocation: make(map[int64]error),
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	db.mu.Lock()
	participants, monthly := cloneMap(db.participants), cloneMap(db.monthly)
	fund, daily, calendar := cloneMap(db.fund), cloneMap(db.daily), cloneMap(db.calendar)
	settings := db.settings
	db.mu.Unlock()

	if err := fn(ctx); err != nil {
		db.mu.Lock()
		db.participants, db.monthly = participants, monthly
		db.fund, db.daily, db.calendar = fund, daily, calendar
		db.settings = settings
		db.mu.Unlock()
		return err
	}
	return nil
}

// memParticipants implements ParticipantStore
type memParticipants struct{ db *memDB }

func (s memParticipants) Create(ctx context.Context, p *models.Participant) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.participants {
		if existing.Username == p.Username {
			return repository.ErrUsernameTaken
		}
	}
	p.ID = s.db.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	s.db.participants[p.ID] = *p
	return nil
}

func (s memParticipants) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.participants[id]
	if !ok {
		return nil, repository.ErrParticipantNotFound
	}
	return &p, nil
}

func (s memParticipants) List(ctx context.Context) ([]models.Participant, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Participant
	for _, p := range s.db.participants {
		if !p.IsAdmin {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memParticipants) Update(ctx context.Context, p *models.Participant) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.participants[p.ID]; !ok {
		return repository.ErrParticipantNotFound
	}
	s.db.participants[p.ID] = *p
	return nil
}

func (s memParticipants) SetAllocation(ctx context.Context, id int64, beginningValue, ownershipPct float64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failAllocation[id]; err != nil {
		return err
	}
	p, ok := s.db.participants[id]
	if !ok {
		return repository.ErrParticipantNotFound
	}
	p.BeginningValue = beginningValue
	p.OwnershipPercentage = ownershipPct
	s.db.participants[id] = p
	return nil
}

func (s memParticipants) Delete(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.participants[id]
	if !ok || p.IsAdmin {
		return repository.ErrParticipantNotFound
	}
	delete(s.db.participants, id)
	for k := range s.db.monthly {
		if k.participantID == id {
			delete(s.db.monthly, k)
		}
	}
	for k, dr := range s.db.daily {
		if dr.ParticipantID == id {
			delete(s.db.daily, k)
		}
	}
	return nil
}

// memMonthly implements MonthlyValueStore
type memMonthly struct{ db *memDB }

func (s memMonthly) Get(ctx context.Context, participantID int64, period models.Period) (*models.MonthlyValue, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	mv, ok := s.db.monthly[mvKey{participantID, period}]
	if !ok {
		return nil, repository.ErrMonthlyValueNotFound
	}
	return &mv, nil
}

func (s memMonthly) ListByParticipant(ctx context.Context, participantID int64) ([]models.MonthlyValue, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.MonthlyValue
	for k, mv := range s.db.monthly {
		if k.participantID == participantID {
			out = append(out, mv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (s memMonthly) ListByPeriod(ctx context.Context, period models.Period) ([]models.MonthlyValue, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.MonthlyValue
	for k, mv := range s.db.monthly {
		if k.period == period {
			out = append(out, mv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out, nil
}

func (s memMonthly) Upsert(ctx context.Context, mv *models.MonthlyValue) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failAllocation[mv.ParticipantID]; err != nil {
		return err
	}
	if _, ok := s.db.participants[mv.ParticipantID]; !ok {
		return repository.ErrParticipantNotFound
	}
	s.db.monthly[mvKey{mv.ParticipantID, mv.Period()}] = *mv
	return nil
}

func (s memMonthly) Delete(ctx context.Context, participantID int64, period models.Period) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	k := mvKey{participantID, period}
	if _, ok := s.db.monthly[k]; !ok {
		return repository.ErrMonthlyValueNotFound
	}
	delete(s.db.monthly, k)
	return nil
}

// memReturns implements ReturnStore
type memReturns struct{ db *memDB }

func (s memReturns) GetFundReturn(ctx context.Context, id int64) (*models.FundReturn, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	fr, ok := s.db.fund[id]
	if !ok {
		return nil, repository.ErrReturnNotFound
	}
	return &fr, nil
}

func (s memReturns) ListFundReturns(ctx context.Context, period models.Period) ([]models.FundReturn, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.FundReturn
	for _, fr := range s.db.fund {
		if fr.Date.In(period) {
			out = append(out, fr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s memReturns) createFund(fr *models.FundReturn) error {
	for _, existing := range s.db.fund {
		if existing.Date == fr.Date {
			return repository.ErrDuplicateDate
		}
	}
	fr.ID = s.db.id()
	s.db.fund[fr.ID] = *fr
	return nil
}

func (s memReturns) CreateFundReturn(ctx context.Context, fr *models.FundReturn) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.createFund(fr)
}

func (s memReturns) BulkCreateFundReturns(ctx context.Context, returns []models.FundReturn) (int, int, []error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	inserted, skipped := 0, 0
	for i := range returns {
		if err := s.createFund(&returns[i]); errors.Is(err, repository.ErrDuplicateDate) {
			skipped++
			continue
		}
		inserted++
	}
	return inserted, skipped, nil
}

func (s memReturns) UpdateFundReturn(ctx context.Context, fr *models.FundReturn) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	existing, ok := s.db.fund[fr.ID]
	if !ok {
		return repository.ErrReturnNotFound
	}
	existing.DollarChange = fr.DollarChange
	existing.TotalFundValue = fr.TotalFundValue
	s.db.fund[fr.ID] = existing
	*fr = existing
	return nil
}

func (s memReturns) DeleteFundReturn(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.fund[id]; !ok {
		return repository.ErrReturnNotFound
	}
	delete(s.db.fund, id)
	return nil
}

func (s memReturns) GetDailyReturn(ctx context.Context, id int64) (*models.DailyReturn, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	dr, ok := s.db.daily[id]
	if !ok {
		return nil, repository.ErrReturnNotFound
	}
	return &dr, nil
}

func (s memReturns) ListDailyReturns(ctx context.Context, participantID int64, period models.Period) ([]models.DailyReturn, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.DailyReturn
	for _, dr := range s.db.daily {
		if dr.ParticipantID == participantID && dr.Date.In(period) {
			out = append(out, dr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s memReturns) CreateDailyReturn(ctx context.Context, dr *models.DailyReturn) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.participants[dr.ParticipantID]; !ok {
		return repository.ErrParticipantNotFound
	}
	for _, existing := range s.db.daily {
		if existing.ParticipantID == dr.ParticipantID && existing.Date == dr.Date {
			return repository.ErrDuplicateDate
		}
	}
	dr.ID = s.db.id()
	s.db.daily[dr.ID] = *dr
	return nil
}

func (s memReturns) UpdateDailyReturn(ctx context.Context, dr *models.DailyReturn) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	existing, ok := s.db.daily[dr.ID]
	if !ok {
		return repository.ErrReturnNotFound
	}
	existing.Percentage = dr.Percentage
	s.db.daily[dr.ID] = existing
	return nil
}

func (s memReturns) DeleteDailyReturn(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.daily[id]; !ok {
		return repository.ErrReturnNotFound
	}
	delete(s.db.daily, id)
	return nil
}

// memCalendar implements CalendarStore
type memCalendar struct{ db *memDB }

func (s memCalendar) sorted(filter func(models.Date) bool) []models.TradingDay {
	var out []models.TradingDay
	for d, half := range s.db.calendar {
		if filter(d) {
			out = append(out, models.TradingDay{Date: d, IsHalfDay: half})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s memCalendar) ListByPeriod(ctx context.Context, period models.Period) ([]models.TradingDay, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.sorted(func(d models.Date) bool { return d.In(period) }), nil
}

func (s memCalendar) Sample(ctx context.Context, limit int) ([]models.TradingDay, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	all := s.sorted(func(models.Date) bool { return true })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s memCalendar) Count(ctx context.Context) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.calendar), nil
}

func (s memCalendar) Upsert(ctx context.Context, days []models.TradingDay) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, d := range days {
		s.db.calendar[d.Date] = d.IsHalfDay
	}
	return len(days), nil
}

// memSettings implements SettingsStore
type memSettings struct{ db *memDB }

func (s memSettings) Get(ctx context.Context) (*models.FundSettings, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	settings := s.db.settings
	return &settings, nil
}

func (s memSettings) Update(ctx context.Context, settings *models.FundSettings) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	settings.UpdatedAt = time.Now()
	s.db.settings = *settings
	return nil
}
