// Package engine classifies a prospective booking against a travel policy. It has no I/O: the
// caller resolves the policy and feeds it in together with the booking request.
package engine

import (
	"fmt"
	"slices"
	"strings"

	"travelo/shared/failure"

	"github.com/shopspring/decimal"
)

const amountScale = 2

type BookingType string

const (
	BookingTypeFlight BookingType = "flight"
	BookingTypeHotel  BookingType = "hotel"
)

func (b BookingType) Valid() bool {
	return b == BookingTypeFlight || b == BookingTypeHotel
}

type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

type Outcome string

const (
	OutcomeApproved         Outcome = "APPROVED"
	OutcomeRequiresApproval Outcome = "REQUIRES_APPROVAL"
	OutcomeRejected         Outcome = "REJECTED"
)

// Rule names the check that produced a non-approved outcome.
type Rule string

const (
	RuleCabinClassNotAllowed    Rule = "cabin_class_not_allowed"
	RuleFlightMaxExceeded       Rule = "flight_max_exceeded"
	RuleHotelNightlyMaxExceeded Rule = "hotel_nightly_max_exceeded"
	RuleHotelTotalMaxExceeded   Rule = "hotel_total_max_exceeded"
	RuleApprovalThreshold       Rule = "approval_threshold"
	RulePolicyInactive          Rule = "policy_inactive"
)

// Policy is the evaluated form of a stored policy.
type Policy struct {
	ID                  string
	Name                string
	FlightMax           Limit
	HotelNightlyMax     Limit
	HotelTotalMax       Limit
	AllowedCabinClasses []CabinClass
	ApprovalThreshold   Limit

	// Suspended rejects every booking with RulePolicyInactive.
	Suspended bool
}

// Unrestricted is the policy applied when a traveler has none.
func Unrestricted() Policy {
	return Policy{Name: "unrestricted"}
}

func (p Policy) allowsCabin(cabin CabinClass) bool {
	return len(p.AllowedCabinClasses) == 0 || slices.Contains(p.AllowedCabinClasses, cabin)
}

func cabinReason(cabin CabinClass) string {
	if cabin == "" {
		return "the travel policy restricts cabin classes and none was given"
	}

	return fmt.Sprintf("cabin class %s is not permitted", cabin)
}

type Request struct {
	BookingType BookingType
	Amount      decimal.Decimal
	Currency    string
	CabinClass  CabinClass
	Nights      int
}

type Decision struct {
	Outcome  Outcome `json:"outcome"`
	Rule     Rule    `json:"rule,omitempty"`
	Reason   string  `json:"reason,omitempty"`
	PolicyID string  `json:"policy_id,omitempty"`
}

func (d Decision) Approved() bool {
	return d.Outcome == OutcomeApproved
}

// Err converts a rejection into a policy violation failure and returns nil otherwise.
func (d Decision) Err() error {
	if d.Outcome != OutcomeRejected {
		return nil
	}

	return failure.PolicyViolation(string(d.Rule), d.Reason) //nolint:wrapcheck
}

type Evaluator struct {
	currency string
}

// New returns an evaluator accepting amounts in the given ledger currency.
func New(currency string) *Evaluator {
	return &Evaluator{currency: strings.ToUpper(currency)}
}

func (e *Evaluator) Currency() string {
	return e.currency
}

// Validate checks the request shape without looking at any policy.
func (e *Evaluator) Validate(req Request) error {
	if !req.BookingType.Valid() {
		return failure.InvalidInput(fmt.Sprintf("booking type must be %s or %s", BookingTypeFlight, BookingTypeHotel)) //nolint:wrapcheck
	}

	if !req.Amount.IsPositive() {
		return failure.InvalidInput("amount must be greater than zero") //nolint:wrapcheck
	}

	if !req.Amount.Equal(req.Amount.Round(amountScale)) {
		return failure.InvalidInput("amount must have at most two decimal places") //nolint:wrapcheck
	}

	if e.currency != "" && !strings.EqualFold(req.Currency, e.currency) {
		return failure.InvalidInput(fmt.Sprintf("currency must be %s", e.currency)) //nolint:wrapcheck
	}

	if req.BookingType == BookingTypeHotel && req.Nights < 1 {
		return failure.InvalidInput("hotel bookings need at least one night") //nolint:wrapcheck
	}

	return nil
}

// Evaluate applies the policy rules in a fixed order; the first failing rule decides.
func (e *Evaluator) Evaluate(policy Policy, req Request) (Decision, error) {
	if err := e.Validate(req); err != nil {
		return Decision{}, err
	}

	decide := func(outcome Outcome, rule Rule, reason string) (Decision, error) {
		return Decision{Outcome: outcome, Rule: rule, Reason: reason, PolicyID: policy.ID}, nil
	}

	if policy.Suspended {
		return decide(OutcomeRejected, RulePolicyInactive, "the assigned travel policy is inactive")
	}

	switch req.BookingType {
	case BookingTypeFlight:
		// A missing or unrecognised cabin is never in the allowed set.
		if !policy.allowsCabin(req.CabinClass) {
			return decide(OutcomeRejected, RuleCabinClassNotAllowed, cabinReason(req.CabinClass))
		}

		if policy.FlightMax.Exceeded(req.Amount) {
			return decide(OutcomeRejected, RuleFlightMaxExceeded,
				fmt.Sprintf("flight amount %s exceeds the limit of %s", req.Amount.StringFixed(amountScale), policy.FlightMax))
		}
	case BookingTypeHotel:
		nightly := req.Amount.Div(decimal.NewFromInt(int64(req.Nights)))

		if policy.HotelNightlyMax.Exceeded(nightly) {
			return decide(OutcomeRejected, RuleHotelNightlyMaxExceeded,
				fmt.Sprintf("nightly rate %s exceeds the limit of %s", nightly.StringFixed(amountScale), policy.HotelNightlyMax))
		}

		if policy.HotelTotalMax.Exceeded(req.Amount) {
			return decide(OutcomeRejected, RuleHotelTotalMaxExceeded,
				fmt.Sprintf("hotel total %s exceeds the limit of %s", req.Amount.StringFixed(amountScale), policy.HotelTotalMax))
		}
	}

	if policy.ApprovalThreshold.Exceeded(req.Amount) {
		return decide(OutcomeRequiresApproval, RuleApprovalThreshold,
			fmt.Sprintf("amount above %s needs manager approval", policy.ApprovalThreshold))
	}

	return decide(OutcomeApproved, "", "")
}
