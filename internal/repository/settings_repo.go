package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/fundledger/internal/database"
	"github.com/epeers/fundledger/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository reads and writes the singleton fund_settings row
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the fund settings
func (r *SettingsRepository) Get(ctx context.Context) (*models.FundSettings, error) {
	query := `
		SELECT total_fund_value, current_year, current_month, updated
		FROM fund_settings
		WHERE id = 1
	`
	s := &models.FundSettings{}
	var month int
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query).
		Scan(&s.TotalFundValue, &s.CurrentPeriod.Year, &month, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get fund settings: %w", err)
	}
	s.CurrentPeriod.Month = time.Month(month)
	return s, nil
}

// Update saves the fund settings
func (r *SettingsRepository) Update(ctx context.Context, s *models.FundSettings) error {
	query := `
		INSERT INTO fund_settings (id, total_fund_value, current_year, current_month, updated)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET total_fund_value = EXCLUDED.total_fund_value,
		    current_year = EXCLUDED.current_year,
		    current_month = EXCLUDED.current_month,
		    updated = NOW()
		RETURNING updated
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		s.TotalFundValue, s.CurrentPeriod.Year, int(s.CurrentPeriod.Month),
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update fund settings: %w", err)
	}
	return nil
}
