package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/fundledger/internal/database"
	"github.com/epeers/fundledger/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrUsernameTaken       = errors.New("username already exists")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// ParticipantRepository handles database operations for participants
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

const participantColumns = `id, username, first_name, last_name, beginning_value, ownership_percentage, is_admin, created, updated`

func scanParticipant(row pgx.Row, p *models.Participant) error {
	return row.Scan(
		&p.ID, &p.Username, &p.FirstName, &p.LastName,
		&p.BeginningValue, &p.OwnershipPercentage, &p.IsAdmin,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

// Create inserts a participant and fills in its generated fields
func (r *ParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (username, first_name, last_name, beginning_value, ownership_percentage, is_admin, created, updated)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created, updated
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		p.Username, p.FirstName, p.LastName, p.BeginningValue, p.OwnershipPercentage, p.IsAdmin,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

// GetByID retrieves a participant by ID
func (r *ParticipantRepository) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	p := &models.Participant{}
	err := scanParticipant(database.Conn(ctx, r.pool).QueryRow(ctx, query, id), p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// List returns every non-admin participant ordered by name
func (r *ParticipantRepository) List(ctx context.Context) ([]models.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE NOT is_admin
		ORDER BY last_name, first_name, id
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := scanParticipant(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// Update saves a participant's editable fields
func (r *ParticipantRepository) Update(ctx context.Context, p *models.Participant) error {
	query := `
		UPDATE participants
		SET first_name = $1, last_name = $2, beginning_value = $3, ownership_percentage = $4, updated = NOW()
		WHERE id = $5
		RETURNING updated
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		p.FirstName, p.LastName, p.BeginningValue, p.OwnershipPercentage, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrParticipantNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return nil
}

// SetAllocation overwrites only the profile-level beginning value and ownership
func (r *ParticipantRepository) SetAllocation(ctx context.Context, id int64, beginningValue, ownershipPct float64) error {
	query := `
		UPDATE participants
		SET beginning_value = $1, ownership_percentage = $2, updated = NOW()
		WHERE id = $3
	`
	result, err := database.Conn(ctx, r.pool).Exec(ctx, query, beginningValue, ownershipPct, id)
	if err != nil {
		return fmt.Errorf("failed to set participant allocation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// Delete removes a participant; monthly values and daily returns cascade
func (r *ParticipantRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM participants WHERE id = $1 AND NOT is_admin`
	result, err := database.Conn(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrParticipantNotFound
	}
	return nil
}
