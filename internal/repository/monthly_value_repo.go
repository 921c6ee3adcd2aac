package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/fundledger/internal/database"
	"github.com/epeers/fundledger/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMonthlyValueNotFound = errors.New("monthly value not found")

// MonthlyValueRepository handles database operations for monthly value overrides
type MonthlyValueRepository struct {
	pool *pgxpool.Pool
}

// NewMonthlyValueRepository creates a new MonthlyValueRepository
func NewMonthlyValueRepository(pool *pgxpool.Pool) *MonthlyValueRepository {
	return &MonthlyValueRepository{pool: pool}
}

func scanMonthlyValue(row pgx.Row, mv *models.MonthlyValue) error {
	var month int
	if err := row.Scan(&mv.ParticipantID, &mv.Year, &month, &mv.BeginningValue, &mv.OwnershipPercentage); err != nil {
		return err
	}
	mv.Month = time.Month(month)
	return nil
}

// Get retrieves the override for one participant and month
func (r *MonthlyValueRepository) Get(ctx context.Context, participantID int64, period models.Period) (*models.MonthlyValue, error) {
	query := `
		SELECT participant_id, year, month, beginning_value, ownership_percentage
		FROM monthly_values
		WHERE participant_id = $1 AND year = $2 AND month = $3
	`
	mv := &models.MonthlyValue{}
	err := scanMonthlyValue(database.Conn(ctx, r.pool).QueryRow(ctx, query, participantID, period.Year, int(period.Month)), mv)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMonthlyValueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly value: %w", err)
	}
	return mv, nil
}

func (r *MonthlyValueRepository) list(ctx context.Context, query string, args ...any) ([]models.MonthlyValue, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly values: %w", err)
	}
	defer rows.Close()

	var values []models.MonthlyValue
	for rows.Next() {
		var mv models.MonthlyValue
		if err := scanMonthlyValue(rows, &mv); err != nil {
			return nil, fmt.Errorf("failed to scan monthly value: %w", err)
		}
		values = append(values, mv)
	}
	return values, rows.Err()
}

// ListByParticipant returns a participant's overrides, newest month first
func (r *MonthlyValueRepository) ListByParticipant(ctx context.Context, participantID int64) ([]models.MonthlyValue, error) {
	return r.list(ctx, `
		SELECT participant_id, year, month, beginning_value, ownership_percentage
		FROM monthly_values
		WHERE participant_id = $1
		ORDER BY year DESC, month DESC
	`, participantID)
}

// ListByPeriod returns every participant's override for one month
func (r *MonthlyValueRepository) ListByPeriod(ctx context.Context, period models.Period) ([]models.MonthlyValue, error) {
	return r.list(ctx, `
		SELECT participant_id, year, month, beginning_value, ownership_percentage
		FROM monthly_values
		WHERE year = $1 AND month = $2
		ORDER BY participant_id
	`, period.Year, int(period.Month))
}

// Upsert creates or replaces an override
func (r *MonthlyValueRepository) Upsert(ctx context.Context, mv *models.MonthlyValue) error {
	query := `
		INSERT INTO monthly_values (participant_id, year, month, beginning_value, ownership_percentage, updated)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (participant_id, year, month) DO UPDATE
		SET beginning_value = EXCLUDED.beginning_value,
		    ownership_percentage = EXCLUDED.ownership_percentage,
		    updated = NOW()
	`
	_, err := database.Conn(ctx, r.pool).Exec(ctx, query,
		mv.ParticipantID, mv.Year, int(mv.Month), mv.BeginningValue, mv.OwnershipPercentage,
	)
	if isForeignKeyViolation(err) {
		return ErrParticipantNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to save monthly value: %w", err)
	}
	return nil
}

// Delete removes an override
func (r *MonthlyValueRepository) Delete(ctx context.Context, participantID int64, period models.Period) error {
	query := `DELETE FROM monthly_values WHERE participant_id = $1 AND year = $2 AND month = $3`
	result, err := database.Conn(ctx, r.pool).Exec(ctx, query, participantID, period.Year, int(period.Month))
	if err != nil {
		return fmt.Errorf("failed to delete monthly value: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMonthlyValueNotFound
	}
	return nil
}
