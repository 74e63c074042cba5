package store

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrEmailTaken              = errors.New("email already registered")
	ErrDuplicateResponse       = errors.New("survey already completed")
	ErrSurveyInactive          = errors.New("survey is not active")
	ErrInsufficientBalance     = errors.New("insufficient gem balance")
	ErrPendingWithdrawalExists = errors.New("a pending withdrawal already exists")
	ErrAlreadyProcessed        = errors.New("withdrawal already processed")
)

// isUniqueViolation reports whether err is a Postgres unique-constraint error.
// The unique indexes are the actual guarantee behind the duplicate-response
// and single-pending-withdrawal rules; pre-checks only improve the message.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
