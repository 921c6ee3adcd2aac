package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epeers/fundledger/config"
	"github.com/epeers/fundledger/internal/metrics"
	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/repository"
	"github.com/epeers/fundledger/internal/valuation"
	log "github.com/sirupsen/logrus"
)

// ParticipantService handles participant, monthly value and ownership business logic
type ParticipantService struct {
	participants  ParticipantStore
	monthly       MonthlyValueStore
	settings      SettingsStore
	tx            Transactor
	rebalanceMode string
	book          positionBook
}

// NewParticipantService creates a new ParticipantService.
// rebalanceMode is config.RebalanceAtomic or config.RebalanceSequential.
func NewParticipantService(participants ParticipantStore, monthly MonthlyValueStore, settings SettingsStore, tx Transactor, rebalanceMode string) *ParticipantService {
	return &ParticipantService{
		participants:  participants,
		monthly:       monthly,
		settings:      settings,
		tx:            tx,
		rebalanceMode: rebalanceMode,
		book:          positionBook{participants: participants, monthly: monthly, settings: settings},
	}
}

func validateAllocation(beginningValue, ownershipPct float64) error {
	if beginningValue < 0 {
		return validationError("beginning_value must not be negative")
	}
	if !models.ValidAmount(beginningValue) {
		return validationError("beginning_value exceeds %.2f", models.MaxAmount)
	}
	if ownershipPct < 0 || ownershipPct > 100 {
		return validationError("ownership_percentage must be between 0 and 100")
	}
	return nil
}

// checkAllocation rejects ownershipPct for participantID when, together with
// everyone else's ownership in period, it would exceed 100%
func (s *ParticipantService) checkAllocation(ctx context.Context, period models.Period, participantID int64, ownershipPct float64) error {
	_, positions, err := s.book.forPeriod(ctx, period)
	if err != nil {
		return err
	}
	total := ownershipExcluding(positions, participantID) + ownershipPct
	if valuation.ExceedsFull(total) {
		return fmt.Errorf("%w: total for %s would be %.4f%%", ErrOverAllocated, period, total)
	}
	return nil
}

// Create adds a participant whose profile values apply to the fund's current period
func (s *ParticipantService) Create(ctx context.Context, req *models.CreateParticipantRequest) (*models.Participant, error) {
	defer TrackTime("ParticipantService.Create", time.Now())

	p := &models.Participant{
		Username:            strings.TrimSpace(req.Username),
		FirstName:           strings.TrimSpace(req.FirstName),
		LastName:            strings.TrimSpace(req.LastName),
		BeginningValue:      models.RoundCents(*req.BeginningValue),
		OwnershipPercentage: req.OwnershipPercentage,
	}
	if p.Username == "" {
		return nil, validationError("username is required")
	}
	if err := validateAllocation(p.BeginningValue, p.OwnershipPercentage); err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkAllocation(ctx, settings.CurrentPeriod, 0, p.OwnershipPercentage); err != nil {
		return nil, err
	}

	err = storeError(s.participants.Create(ctx, p))
	metrics.RecordMutation("participant", "create", err)
	if err != nil {
		return nil, err
	}
	log.Infof("Created participant %d (%s)", p.ID, p.Username)
	return p, nil
}

// Get returns a participant
func (s *ParticipantService) Get(ctx context.Context, id int64) (*models.Participant, error) {
	p, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return p, nil
}

// List returns every participant, admins excluded
func (s *ParticipantService) List(ctx context.Context) ([]models.Participant, error) {
	participants, err := s.participants.List(ctx)
	if err != nil {
		return nil, err
	}
	if participants == nil {
		participants = []models.Participant{}
	}
	return participants, nil
}

// Update edits a participant's profile. With req.Rebalance set, ownership for
// the current period is recomputed for everyone from beginning values and the
// rebalance result is returned alongside.
func (s *ParticipantService) Update(ctx context.Context, id int64, req *models.UpdateParticipantRequest) (*models.Participant, *models.RebalanceResult, error) {
	defer TrackTime("ParticipantService.Update", time.Now())

	p, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, nil, storeError(err)
	}
	if p.IsAdmin {
		return nil, nil, ErrParticipantNotFound
	}

	previousOwnership := p.OwnershipPercentage
	p.FirstName = strings.TrimSpace(req.FirstName)
	p.LastName = strings.TrimSpace(req.LastName)
	p.BeginningValue = models.RoundCents(*req.BeginningValue)
	if req.OwnershipPercentage != nil && !req.Rebalance {
		p.OwnershipPercentage = *req.OwnershipPercentage
	}
	if err := validateAllocation(p.BeginningValue, p.OwnershipPercentage); err != nil {
		return nil, nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, nil, err
	}

	if !req.Rebalance {
		pos, err := s.book.forParticipant(ctx, *p, settings.CurrentPeriod)
		if err != nil {
			return nil, nil, err
		}
		// a current-period override shadows the profile ownership
		if pos.Source == models.PositionFromMonthlyValue {
			if p.OwnershipPercentage != previousOwnership {
				return nil, nil, validationError("participant %d has a monthly value for %s; change ownership there", id, settings.CurrentPeriod)
			}
		} else if err := s.checkAllocation(ctx, settings.CurrentPeriod, id, p.OwnershipPercentage); err != nil {
			return nil, nil, err
		}
		err = storeError(s.participants.Update(ctx, p))
		metrics.RecordMutation("participant", "update", err)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	}

	var result *models.RebalanceResult
	err = s.batch(ctx, func(ctx context.Context) error {
		if err := storeError(s.participants.Update(ctx, p)); err != nil {
			return err
		}
		var err error
		result, err = s.rebalance(ctx, settings.CurrentPeriod, id, p.BeginningValue)
		return err
	})
	metrics.RecordMutation("participant", "update", err)
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, nil, storeError(err)
	}
	return updated, result, nil
}

// Delete removes a participant together with its monthly values and returns
func (s *ParticipantService) Delete(ctx context.Context, id int64) error {
	err := storeError(s.participants.Delete(ctx, id))
	metrics.RecordMutation("participant", "delete", err)
	if err == nil {
		log.Infof("Deleted participant %d", id)
	}
	return err
}

// ListMonthlyValues returns a participant's overrides, newest first
func (s *ParticipantService) ListMonthlyValues(ctx context.Context, participantID int64) ([]models.MonthlyValue, error) {
	if _, err := s.Get(ctx, participantID); err != nil {
		return nil, err
	}
	values, err := s.monthly.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []models.MonthlyValue{}
	}
	return values, nil
}

// SetMonthlyValue records a participant's beginning value for period. Without
// req.Rebalance the ownership must be supplied and is checked against the
// rest of the period; with it, every participant's ownership for the period
// is recomputed from beginning values.
func (s *ParticipantService) SetMonthlyValue(ctx context.Context, participantID int64, period models.Period, req *models.SetMonthlyValueRequest) (*models.MonthlyValue, *models.RebalanceResult, error) {
	defer TrackTime("ParticipantService.SetMonthlyValue", time.Now())

	p, err := s.Get(ctx, participantID)
	if err != nil {
		return nil, nil, err
	}
	if p.IsAdmin {
		return nil, nil, ErrParticipantNotFound
	}

	mv := &models.MonthlyValue{
		ParticipantID:  participantID,
		Year:           period.Year,
		Month:          period.Month,
		BeginningValue: models.RoundCents(*req.BeginningValue),
	}

	if !req.Rebalance {
		if req.OwnershipPercentage == nil {
			return nil, nil, validationError("ownership_percentage is required unless rebalance is set")
		}
		mv.OwnershipPercentage = *req.OwnershipPercentage
		if err := validateAllocation(mv.BeginningValue, mv.OwnershipPercentage); err != nil {
			return nil, nil, err
		}
		if err := s.checkAllocation(ctx, period, participantID, mv.OwnershipPercentage); err != nil {
			return nil, nil, err
		}
		err := storeError(s.monthly.Upsert(ctx, mv))
		metrics.RecordMutation("monthly_value", "set", err)
		if err != nil {
			return nil, nil, err
		}
		return mv, nil, nil
	}

	if err := validateAllocation(mv.BeginningValue, 0); err != nil {
		return nil, nil, err
	}

	var result *models.RebalanceResult
	err = s.batch(ctx, func(ctx context.Context) error {
		if err := storeError(s.monthly.Upsert(ctx, mv)); err != nil {
			return err
		}
		var err error
		result, err = s.rebalance(ctx, period, participantID, mv.BeginningValue)
		return err
	})
	metrics.RecordMutation("monthly_value", "set", err)
	if err != nil {
		return nil, nil, err
	}

	saved, err := s.monthly.Get(ctx, participantID, period)
	if err != nil {
		return nil, nil, storeError(err)
	}
	return saved, result, nil
}

// DeleteMonthlyValue removes a participant's override for period
func (s *ParticipantService) DeleteMonthlyValue(ctx context.Context, participantID int64, period models.Period) error {
	err := storeError(s.monthly.Delete(ctx, participantID, period))
	metrics.RecordMutation("monthly_value", "delete", err)
	return err
}

// Rebalance sets the edited participant's beginning value for period to
// newBeginningValue and recomputes every participant's ownership for that
// period as their share of the new total.
func (s *ParticipantService) Rebalance(ctx context.Context, period models.Period, editedID int64, newBeginningValue float64) (*models.RebalanceResult, error) {
	defer TrackTime("ParticipantService.Rebalance", time.Now())

	if newBeginningValue < 0 {
		return nil, validationError("beginning_value must not be negative")
	}
	if !models.ValidAmount(newBeginningValue) {
		return nil, validationError("beginning_value exceeds %.2f", models.MaxAmount)
	}
	p, err := s.Get(ctx, editedID)
	if err != nil {
		return nil, err
	}
	if p.IsAdmin {
		return nil, ErrParticipantNotFound
	}

	var result *models.RebalanceResult
	err = s.batch(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.rebalance(ctx, period, editedID, models.RoundCents(newBeginningValue))
		return err
	})
	return result, err
}

// batch runs fn in a transaction in atomic mode and directly otherwise
func (s *ParticipantService) batch(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.rebalanceMode == config.RebalanceSequential {
		return fn(ctx)
	}
	return s.tx.InTx(ctx, fn)
}

// rebalance writes recomputed ownership back to wherever each participant's
// position for period comes from. Participants with no position are left
// alone unless they are the edited participant.
func (s *ParticipantService) rebalance(ctx context.Context, period models.Period, editedID int64, newBeginningValue float64) (*models.RebalanceResult, error) {
	mode := s.rebalanceMode
	if mode == "" {
		mode = config.RebalanceAtomic
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	_, positions, err := s.book.forPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Position, len(positions))
	holdings := make([]valuation.Holding, 0, len(positions))
	for _, pos := range positions {
		byID[pos.ParticipantID] = pos
		holdings = append(holdings, valuation.Holding{ParticipantID: pos.ParticipantID, BeginningValue: pos.BeginningValue})
	}

	allocations, total := valuation.Rebalance(holdings, editedID, newBeginningValue)

	result := &models.RebalanceResult{
		Period:    period,
		Mode:      mode,
		TotalFund: total,
		Changes:   []models.OwnershipChange{},
	}
	var applied []int64
	for _, a := range allocations {
		pos, known := byID[a.ParticipantID]
		if !known {
			pos = models.Position{ParticipantID: a.ParticipantID, Period: period, Source: models.PositionNone}
		}
		if pos.Source == models.PositionNone && a.ParticipantID != editedID {
			continue
		}

		source := pos.Source
		switch {
		case source == models.PositionFromProfile || (source == models.PositionNone && period == settings.CurrentPeriod):
			source = models.PositionFromProfile
			err = s.participants.SetAllocation(ctx, a.ParticipantID, a.BeginningValue, a.OwnershipPercentage)
		default:
			source = models.PositionFromMonthlyValue
			err = s.monthly.Upsert(ctx, &models.MonthlyValue{
				ParticipantID:       a.ParticipantID,
				Year:                period.Year,
				Month:               period.Month,
				BeginningValue:      a.BeginningValue,
				OwnershipPercentage: a.OwnershipPercentage,
			})
		}
		if err != nil {
			metrics.RebalancesTotal.WithLabelValues(mode, "error").Inc()
			rebalanceErr := &RebalanceError{ParticipantID: a.ParticipantID, Err: storeError(err)}
			if mode == config.RebalanceSequential {
				rebalanceErr.Applied = applied
				log.Errorf("Rebalance of %s stopped at participant %d after %d writes: %v", period, a.ParticipantID, len(applied), err)
			}
			return nil, rebalanceErr
		}
		applied = append(applied, a.ParticipantID)

		result.OwnershipTotal += a.OwnershipPercentage
		result.Changes = append(result.Changes, models.OwnershipChange{
			ParticipantID:     a.ParticipantID,
			BeginningValue:    a.BeginningValue,
			PreviousOwnership: pos.OwnershipPercentage,
			NewOwnership:      a.OwnershipPercentage,
			Source:            source,
		})
	}

	metrics.RebalancesTotal.WithLabelValues(mode, "success").Inc()
	log.Infof("Rebalanced %s around participant %d: total fund %.2f across %d participants", period, editedID, total, len(result.Changes))
	return result, nil
}

// IsAdmin reports whether participantID may use admin routes
func (s *ParticipantService) IsAdmin(ctx context.Context, participantID int64) (bool, error) {
	p, err := s.participants.GetByID(ctx, participantID)
	if errors.Is(err, repository.ErrParticipantNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsAdmin, nil
}
