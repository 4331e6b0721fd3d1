package repository

import (
	"errors"

	"travelo/shared/constant"
	"travelo/shared/failure"

	"github.com/lib/pq"
)

// TranslateError maps Postgres conflicts onto domain failures and leaves other errors as they are.
func TranslateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case constant.PqErrorCodeSerializationFailure, constant.PqErrorCodeDeadlockDetected, constant.PqErrorCodeLockNotAvailable:
		return failure.ConcurrentModification("the record was modified concurrently, retry the request") //nolint:wrapcheck
	case constant.PqErrorCodeUniqueViolation:
		return failure.Conflict("a record with the same unique value already exists") //nolint:wrapcheck
	case constant.PqErrorCodeFkViolation:
		return failure.BadRequestFromString("referenced record does not exist") //nolint:wrapcheck
	case constant.PqErrorCodeCheckViolation:
		return failure.InvalidInput("the change violates a balance or state constraint") //nolint:wrapcheck
	}

	return err
}
