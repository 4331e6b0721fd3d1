package repository_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"travelo/shared/constant"
	"travelo/shared/failure"
	"travelo/shared/repository"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		code string
		kind failure.Kind
		http int
	}{
		{name: "serialization failure", code: constant.PqErrorCodeSerializationFailure, kind: failure.KindConcurrentModification, http: http.StatusConflict},
		{name: "deadlock", code: constant.PqErrorCodeDeadlockDetected, kind: failure.KindConcurrentModification, http: http.StatusConflict},
		{name: "lock timeout", code: constant.PqErrorCodeLockNotAvailable, kind: failure.KindConcurrentModification, http: http.StatusConflict},
		{name: "unique violation", code: constant.PqErrorCodeUniqueViolation, http: http.StatusConflict},
		{name: "foreign key violation", code: constant.PqErrorCodeFkViolation, http: http.StatusBadRequest},
		{name: "check violation", code: constant.PqErrorCodeCheckViolation, kind: failure.KindInvalidInput, http: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repository.TranslateError(fmt.Errorf("failed to exec statement: %w", &pq.Error{Code: pq.ErrorCode(tt.code)}))

			assert.Equal(t, tt.kind, failure.GetKind(err))
			assert.Equal(t, tt.http, failure.GetCode(err))
		})
	}
}

func TestTranslateError_Passthrough(t *testing.T) {
	plain := errors.New("connection refused")
	assert.Same(t, plain, repository.TranslateError(plain))

	other := &pq.Error{Code: "42P01"}
	assert.Equal(t, error(other), repository.TranslateError(other))

	assert.NoError(t, repository.TranslateError(nil))
}
