package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epeers/fundledger/internal/models"
)

func TestSettingsService_Update(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	month := 12
	settings, err := h.settings.Update(ctx, &models.UpdateSettingsRequest{TotalFundValue: fp(250000.456), CurrentMonth: &month})
	require.NoError(t, err)
	assert.Equal(t, 250000.46, settings.TotalFundValue)
	assert.Equal(t, models.Period{Year: 2025, Month: time.December}, settings.CurrentPeriod)

	bad := 13
	_, err = h.settings.Update(ctx, &models.UpdateSettingsRequest{CurrentMonth: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = h.settings.Update(ctx, &models.UpdateSettingsRequest{TotalFundValue: fp(-1)})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := h.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.December, got.CurrentPeriod.Month)
}

func TestResolvePosition(t *testing.T) {
	p := models.Participant{ID: 3, BeginningValue: 1000, OwnershipPercentage: 10}
	override := &models.MonthlyValue{ParticipantID: 3, Year: 2025, Month: time.November, BeginningValue: 700, OwnershipPercentage: 7}

	pos := ResolvePosition(p, override, november2025, october2025)
	assert.Equal(t, models.PositionFromMonthlyValue, pos.Source)
	assert.Equal(t, 700.0, pos.BeginningValue)

	pos = ResolvePosition(p, nil, october2025, october2025)
	assert.Equal(t, models.PositionFromProfile, pos.Source)
	assert.Equal(t, 10.0, pos.OwnershipPercentage)

	pos = ResolvePosition(p, nil, november2025, october2025)
	assert.Equal(t, models.PositionNone, pos.Source)
	assert.Zero(t, pos.BeginningValue)
	assert.Zero(t, pos.OwnershipPercentage)
}
