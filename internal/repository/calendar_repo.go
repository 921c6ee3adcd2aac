package repository

import (
	"context"
	"fmt"

	"github.com/epeers/fundledger/internal/database"
	"github.com/epeers/fundledger/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CalendarRepository handles database operations for the trading calendar
type CalendarRepository struct {
	pool *pgxpool.Pool
}

// NewCalendarRepository creates a new CalendarRepository
func NewCalendarRepository(pool *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{pool: pool}
}

func (r *CalendarRepository) query(ctx context.Context, query string, args ...any) ([]models.TradingDay, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trading calendar: %w", err)
	}
	defer rows.Close()

	var days []models.TradingDay
	for rows.Next() {
		var date string
		var d models.TradingDay
		if err := rows.Scan(&date, &d.IsHalfDay); err != nil {
			return nil, fmt.Errorf("failed to scan trading day: %w", err)
		}
		d.Date = models.Date(date)
		days = append(days, d)
	}
	return days, rows.Err()
}

// ListByPeriod returns the stored trading days of one month, ascending
func (r *CalendarRepository) ListByPeriod(ctx context.Context, period models.Period) ([]models.TradingDay, error) {
	return r.query(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), is_half_day
		FROM trading_calendar
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date
	`, period.First().String(), period.Last().String())
}

// Sample returns the first limit stored trading days
func (r *CalendarRepository) Sample(ctx context.Context, limit int) ([]models.TradingDay, error) {
	return r.query(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), is_half_day
		FROM trading_calendar
		ORDER BY date
		LIMIT $1
	`, limit)
}

// Count returns the number of stored trading days
func (r *CalendarRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := database.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM trading_calendar`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trading days: %w", err)
	}
	return count, nil
}

// Upsert stores trading days, replacing the half-day flag of dates already present.
// Returns how many rows were written.
func (r *CalendarRepository) Upsert(ctx context.Context, days []models.TradingDay) (int, error) {
	if len(days) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO trading_calendar (date, is_half_day)
		VALUES ($1::date, $2)
		ON CONFLICT (date) DO UPDATE SET is_half_day = EXCLUDED.is_half_day
	`

	batch := &pgx.Batch{}
	for _, d := range days {
		batch.Queue(query, d.Date.String(), d.IsHalfDay)
	}

	br := database.Conn(ctx, r.pool).SendBatch(ctx, batch)
	defer br.Close()

	written := 0
	for _, d := range days {
		ct, err := br.Exec()
		if err != nil {
			return written, fmt.Errorf("failed to store trading day %s: %w", d.Date, err)
		}
		written += int(ct.RowsAffected())
	}
	return written, nil
}
