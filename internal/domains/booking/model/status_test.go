package model_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"travelo/internal/domains/booking/model"
	"travelo/shared/failure"
)

var allStatuses = []model.Status{
	model.StatusPending,
	model.StatusPendingApproval,
	model.StatusConfirmed,
	model.StatusRejected,
	model.StatusCancelled,
}

func TestStatus_Transitions(t *testing.T) {
	allowed := map[model.Status][]model.Status{
		model.StatusPending:         {model.StatusPendingApproval, model.StatusConfirmed, model.StatusRejected, model.StatusCancelled},
		model.StatusPendingApproval: {model.StatusConfirmed, model.StatusRejected, model.StatusCancelled},
		model.StatusConfirmed:       {model.StatusCancelled},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false

			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}

			t.Run(string(from)+" to "+string(to), func(t *testing.T) {
				assert.Equal(t, want, from.CanTransitionTo(to))

				err := from.TransitionTo(to)
				if want {
					assert.NoError(t, err)

					return
				}

				assert.Equal(t, http.StatusConflict, failure.GetCode(err))
			})
		}
	}
}

func TestStatus_Final(t *testing.T) {
	assert.True(t, model.StatusRejected.Final())
	assert.True(t, model.StatusCancelled.Final())
	assert.False(t, model.StatusConfirmed.Final())
	assert.False(t, model.StatusPendingApproval.Final())
	assert.False(t, model.StatusPending.Final())

	err := model.StatusCancelled.TransitionTo(model.StatusConfirmed)
	assert.EqualError(t, err, "booking is already cancelled")

	err = model.StatusConfirmed.TransitionTo(model.StatusRejected)
	assert.EqualError(t, err, "booking is confirmed and cannot become rejected")
}

func TestStatus_Valid(t *testing.T) {
	for _, status := range allStatuses {
		assert.True(t, status.Valid())
	}

	assert.False(t, model.Status("approved").Valid())
}
