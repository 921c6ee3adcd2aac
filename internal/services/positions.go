package services

import (
	"context"
	"errors"

	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/repository"
)

// ResolvePosition picks a participant's beginning value and ownership for
// period: the monthly override when present, the profile values when period
// is the fund's current period, and zero otherwise.
func ResolvePosition(p models.Participant, override *models.MonthlyValue, period, current models.Period) models.Position {
	pos := models.Position{ParticipantID: p.ID, Period: period, Source: models.PositionNone}
	switch {
	case override != nil:
		pos.BeginningValue = override.BeginningValue
		pos.OwnershipPercentage = override.OwnershipPercentage
		pos.Source = models.PositionFromMonthlyValue
	case period == current:
		pos.BeginningValue = p.BeginningValue
		pos.OwnershipPercentage = p.OwnershipPercentage
		pos.Source = models.PositionFromProfile
	}
	return pos
}

// positionBook resolves positions for every participant in one period
type positionBook struct {
	participants ParticipantStore
	monthly      MonthlyValueStore
	settings     SettingsStore
}

// forParticipant resolves a single participant's position
func (b positionBook) forParticipant(ctx context.Context, p models.Participant, period models.Period) (models.Position, error) {
	settings, err := b.settings.Get(ctx)
	if err != nil {
		return models.Position{}, err
	}
	override, err := b.monthly.Get(ctx, p.ID, period)
	if errors.Is(err, repository.ErrMonthlyValueNotFound) {
		override = nil
	} else if err != nil {
		return models.Position{}, err
	}
	return ResolvePosition(p, override, period, settings.CurrentPeriod), nil
}

// forPeriod lists participants alongside their resolved positions, in listing order
func (b positionBook) forPeriod(ctx context.Context, period models.Period) ([]models.Participant, []models.Position, error) {
	settings, err := b.settings.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	participants, err := b.participants.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	overrides, err := b.monthly.ListByPeriod(ctx, period)
	if err != nil {
		return nil, nil, err
	}

	byParticipant := make(map[int64]*models.MonthlyValue, len(overrides))
	for i := range overrides {
		byParticipant[overrides[i].ParticipantID] = &overrides[i]
	}

	positions := make([]models.Position, 0, len(participants))
	for _, p := range participants {
		positions = append(positions, ResolvePosition(p, byParticipant[p.ID], period, settings.CurrentPeriod))
	}
	return participants, positions, nil
}

// ownershipExcluding sums resolved ownership over everyone but excludeID
func ownershipExcluding(positions []models.Position, excludeID int64) float64 {
	total := 0.0
	for _, pos := range positions {
		if pos.ParticipantID != excludeID {
			total += pos.OwnershipPercentage
		}
	}
	return total
}
