package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entity")
	// ErrVersionConflict reports a conditional update whose expected version no longer matches.
	ErrVersionConflict = errors.New("version conflict")
	// ErrRequirementNotMet reports that a bulk lane change found a row failing its gate.
	ErrRequirementNotMet = errors.New("lane requirement not met")
)

const pqUniqueViolation = pq.ErrorCode("23505")

// mapUniqueViolation converts a postgres unique_violation into ErrDuplicate.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDuplicate
	}
	return err
}
