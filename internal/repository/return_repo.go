package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/fundledger/internal/database"
	"github.com/epeers/fundledger/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrReturnNotFound = errors.New("return not found")
	ErrDuplicateDate  = errors.New("a return already exists for this date")
)

// ReturnRepository handles database operations for fund-level and
// participant-level daily returns
type ReturnRepository struct {
	pool *pgxpool.Pool
}

// NewReturnRepository creates a new ReturnRepository
func NewReturnRepository(pool *pgxpool.Pool) *ReturnRepository {
	return &ReturnRepository{pool: pool}
}

func scanFundReturn(row pgx.Row, fr *models.FundReturn) error {
	var date string
	if err := row.Scan(&fr.ID, &date, &fr.DollarChange, &fr.TotalFundValue, &fr.CreatedAt); err != nil {
		return err
	}
	fr.Date = models.Date(date)
	return nil
}

func scanDailyReturn(row pgx.Row, dr *models.DailyReturn) error {
	var date string
	if err := row.Scan(&dr.ID, &dr.ParticipantID, &date, &dr.Percentage, &dr.CreatedAt); err != nil {
		return err
	}
	dr.Date = models.Date(date)
	return nil
}

const fundReturnColumns = `id, to_char(date, 'YYYY-MM-DD'), dollar_change, total_fund_value, created`

// GetFundReturn retrieves a fund return by ID
func (r *ReturnRepository) GetFundReturn(ctx context.Context, id int64) (*models.FundReturn, error) {
	query := `SELECT ` + fundReturnColumns + ` FROM fund_returns WHERE id = $1`
	fr := &models.FundReturn{}
	err := scanFundReturn(database.Conn(ctx, r.pool).QueryRow(ctx, query, id), fr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReturnNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund return: %w", err)
	}
	return fr, nil
}

// ListFundReturns returns the fund returns dated within period, ascending
func (r *ReturnRepository) ListFundReturns(ctx context.Context, period models.Period) ([]models.FundReturn, error) {
	query := `
		SELECT ` + fundReturnColumns + `
		FROM fund_returns
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, period.First().String(), period.Last().String())
	if err != nil {
		return nil, fmt.Errorf("failed to query fund returns: %w", err)
	}
	defer rows.Close()

	var returns []models.FundReturn
	for rows.Next() {
		var fr models.FundReturn
		if err := scanFundReturn(rows, &fr); err != nil {
			return nil, fmt.Errorf("failed to scan fund return: %w", err)
		}
		returns = append(returns, fr)
	}
	return returns, rows.Err()
}

// CreateFundReturn inserts a fund return; one per date
func (r *ReturnRepository) CreateFundReturn(ctx context.Context, fr *models.FundReturn) error {
	query := `
		INSERT INTO fund_returns (date, dollar_change, total_fund_value, created)
		VALUES ($1::date, $2, $3, NOW())
		RETURNING id, created
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query, fr.Date.String(), fr.DollarChange, fr.TotalFundValue).
		Scan(&fr.ID, &fr.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateDate
	}
	if err != nil {
		return fmt.Errorf("failed to create fund return: %w", err)
	}
	return nil
}

// BulkCreateFundReturns inserts fund returns in one batch, skipping dates
// that already have an entry. The batch runs as one transaction, so a failing
// row stores nothing: the result is then zero counts and that row's error.
func (r *ReturnRepository) BulkCreateFundReturns(ctx context.Context, returns []models.FundReturn) (inserted int, skipped int, errs []error) {
	if len(returns) == 0 {
		return 0, 0, nil
	}

	query := `
		INSERT INTO fund_returns (date, dollar_change, total_fund_value, created)
		VALUES ($1::date, $2, $3, NOW())
		ON CONFLICT (date) DO NOTHING
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, fr := range returns {
		batch.Queue(query, fr.Date.String(), fr.DollarChange, fr.TotalFundValue)
	}

	br := database.Conn(ctx, r.pool).SendBatch(ctx, batch)
	defer br.Close()

	for _, fr := range returns {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				skipped++
				continue
			}
			return 0, 0, []error{fmt.Errorf("failed to insert fund return for %s: %w", fr.Date, err)}
		}
		inserted++
	}
	if err := br.Close(); err != nil {
		return 0, 0, []error{fmt.Errorf("failed to insert fund returns: %w", err)}
	}
	return inserted, skipped, nil
}

// UpdateFundReturn saves the amounts of an existing fund return
func (r *ReturnRepository) UpdateFundReturn(ctx context.Context, fr *models.FundReturn) error {
	query := `
		UPDATE fund_returns
		SET dollar_change = $1, total_fund_value = $2
		WHERE id = $3
		RETURNING ` + fundReturnColumns
	err := scanFundReturn(database.Conn(ctx, r.pool).QueryRow(ctx, query, fr.DollarChange, fr.TotalFundValue, fr.ID), fr)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrReturnNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update fund return: %w", err)
	}
	return nil
}

// DeleteFundReturn removes a fund return
func (r *ReturnRepository) DeleteFundReturn(ctx context.Context, id int64) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM fund_returns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fund return: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReturnNotFound
	}
	return nil
}

const dailyReturnColumns = `id, participant_id, to_char(date, 'YYYY-MM-DD'), percentage, created`

// GetDailyReturn retrieves a participant return by ID
func (r *ReturnRepository) GetDailyReturn(ctx context.Context, id int64) (*models.DailyReturn, error) {
	query := `SELECT ` + dailyReturnColumns + ` FROM daily_returns WHERE id = $1`
	dr := &models.DailyReturn{}
	err := scanDailyReturn(database.Conn(ctx, r.pool).QueryRow(ctx, query, id), dr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReturnNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily return: %w", err)
	}
	return dr, nil
}

// ListDailyReturns returns a participant's returns dated within period, ascending
func (r *ReturnRepository) ListDailyReturns(ctx context.Context, participantID int64, period models.Period) ([]models.DailyReturn, error) {
	query := `
		SELECT ` + dailyReturnColumns + `
		FROM daily_returns
		WHERE participant_id = $1 AND date BETWEEN $2::date AND $3::date
		ORDER BY date
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, participantID, period.First().String(), period.Last().String())
	if err != nil {
		return nil, fmt.Errorf("failed to query daily returns: %w", err)
	}
	defer rows.Close()

	var returns []models.DailyReturn
	for rows.Next() {
		var dr models.DailyReturn
		if err := scanDailyReturn(rows, &dr); err != nil {
			return nil, fmt.Errorf("failed to scan daily return: %w", err)
		}
		returns = append(returns, dr)
	}
	return returns, rows.Err()
}

// CreateDailyReturn inserts a participant return; one per participant and date
func (r *ReturnRepository) CreateDailyReturn(ctx context.Context, dr *models.DailyReturn) error {
	query := `
		INSERT INTO daily_returns (participant_id, date, percentage, created)
		VALUES ($1, $2::date, $3, NOW())
		RETURNING id, created
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query, dr.ParticipantID, dr.Date.String(), dr.Percentage).
		Scan(&dr.ID, &dr.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateDate
	}
	if isForeignKeyViolation(err) {
		return ErrParticipantNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to create daily return: %w", err)
	}
	return nil
}

// UpdateDailyReturn saves the percentage of an existing participant return
func (r *ReturnRepository) UpdateDailyReturn(ctx context.Context, dr *models.DailyReturn) error {
	query := `
		UPDATE daily_returns
		SET percentage = $1
		WHERE id = $2
		RETURNING ` + dailyReturnColumns
	err := scanDailyReturn(database.Conn(ctx, r.pool).QueryRow(ctx, query, dr.Percentage, dr.ID), dr)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrReturnNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update daily return: %w", err)
	}
	return nil
}

// DeleteDailyReturn removes a participant return
func (r *ReturnRepository) DeleteDailyReturn(ctx context.Context, id int64) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM daily_returns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete daily return: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReturnNotFound
	}
	return nil
}
