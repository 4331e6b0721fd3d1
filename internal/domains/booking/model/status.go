package model

import (
	"fmt"
	"slices"

	"travelo/shared/failure"
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusPendingApproval Status = "pending_approval"
	StatusConfirmed       Status = "confirmed"
	StatusRejected        Status = "rejected"
	StatusCancelled       Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:         {StatusPendingApproval, StatusConfirmed, StatusRejected, StatusCancelled},
	StatusPendingApproval: {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed:       {StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPendingApproval, StatusConfirmed, StatusRejected, StatusCancelled:
		return true
	}

	return false
}

// Final reports whether no transition leaves s.
func (s Status) Final() bool {
	return len(transitions[s]) == 0
}

func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// TransitionTo returns a conflict failure when next is not reachable from s.
func (s Status) TransitionTo(next Status) error {
	if s.Final() {
		return failure.Conflict(fmt.Sprintf("booking is already %s", s)) //nolint:wrapcheck
	}

	if !s.CanTransitionTo(next) {
		return failure.Conflict(fmt.Sprintf("booking is %s and cannot become %s", s, next)) //nolint:wrapcheck
	}

	return nil
}
