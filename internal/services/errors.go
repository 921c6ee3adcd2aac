package services

import (
	"errors"
	"fmt"

	"github.com/epeers/fundledger/internal/repository"
)

var (
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrMonthlyValueNotFound = errors.New("monthly value not found")
	ErrReturnNotFound       = errors.New("return not found")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrDuplicateDate        = errors.New("a return already exists for this date")
	ErrValidation           = errors.New("validation failed")
	ErrOverAllocated        = errors.New("ownership would exceed 100% of the fund")
	ErrForbidden            = errors.New("not authorized to view this participant")
)

// RebalanceError reports the participant whose write stopped a rebalance.
// Applied lists the participants already written when the batch was not atomic.
type RebalanceError struct {
	ParticipantID int64
	Applied       []int64
	Err           error
}

func (e *RebalanceError) Error() string {
	return fmt.Sprintf("rebalance failed at participant %d: %v", e.ParticipantID, e.Err)
}

func (e *RebalanceError) Unwrap() error {
	return e.Err
}

// storeError translates repository sentinels into service sentinels
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, repository.ErrMonthlyValueNotFound):
		return ErrMonthlyValueNotFound
	case errors.Is(err, repository.ErrReturnNotFound):
		return ErrReturnNotFound
	case errors.Is(err, repository.ErrUsernameTaken):
		return ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateDate):
		return ErrDuplicateDate
	}
	return err
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
