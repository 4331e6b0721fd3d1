package engine_test

import (
	"testing"

	"travelo/internal/domains/policy/engine"
	"travelo/shared/failure"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func capped(value string) engine.Limit {
	return engine.Capped(amount(value))
}

func flight(value string, cabin engine.CabinClass) engine.Request {
	return engine.Request{
		BookingType: engine.BookingTypeFlight,
		Amount:      amount(value),
		Currency:    "USD",
		CabinClass:  cabin,
	}
}

func hotel(value string, nights int) engine.Request {
	return engine.Request{
		BookingType: engine.BookingTypeHotel,
		Amount:      amount(value),
		Currency:    "USD",
		Nights:      nights,
	}
}

func TestEvaluate(t *testing.T) {
	standard := engine.Policy{
		ID:                "policy-standard",
		FlightMax:         capped("1000"),
		ApprovalThreshold: capped("500"),
	}

	economyOnly := engine.Policy{
		ID:                  "policy-economy",
		AllowedCabinClasses: []engine.CabinClass{engine.CabinEconomy, engine.CabinPremiumEconomy},
		FlightMax:           capped("2000"),
	}

	hotels := engine.Policy{
		ID:                "policy-hotel",
		HotelNightlyMax:   capped("200"),
		HotelTotalMax:     capped("1000"),
		ApprovalThreshold: capped("700"),
	}

	tests := []struct {
		name    string
		policy  engine.Policy
		req     engine.Request
		outcome engine.Outcome
		rule    engine.Rule
	}{
		{
			name:    "flight above threshold needs approval",
			policy:  standard,
			req:     flight("750", engine.CabinEconomy),
			outcome: engine.OutcomeRequiresApproval,
			rule:    engine.RuleApprovalThreshold,
		},
		{
			name:    "flight above max is rejected regardless of threshold",
			policy:  standard,
			req:     flight("1200", engine.CabinEconomy),
			outcome: engine.OutcomeRejected,
			rule:    engine.RuleFlightMaxExceeded,
		},
		{
			name:    "amount equal to threshold is approved",
			policy:  standard,
			req:     flight("500", engine.CabinEconomy),
			outcome: engine.OutcomeApproved,
		},
		{
			name:    "amount equal to flight max is not rejected",
			policy:  standard,
			req:     flight("1000", engine.CabinEconomy),
			outcome: engine.OutcomeRequiresApproval,
			rule:    engine.RuleApprovalThreshold,
		},
		{
			name:    "cabin outside allowed set",
			policy:  economyOnly,
			req:     flight("100", engine.CabinBusiness),
			outcome: engine.OutcomeRejected,
			rule:    engine.RuleCabinClassNotAllowed,
		},
		{
			name:    "cabin rule wins over flight max",
			policy:  economyOnly,
			req:     flight("5000", engine.CabinFirst),
			outcome: engine.OutcomeRejected,
			rule:    engine.RuleCabinClassNotAllowed,
		},
		{
			name:    "allowed cabin",
			policy:  economyOnly,
			req:     flight("1999.99", engine.CabinPremiumEconomy),
			outcome: engine.OutcomeApproved,
		},
		{
			name:    "hotel nightly rate above max",
			policy:  hotels,
			req:     hotel("450", 2),
			outcome: engine.OutcomeRejected,
			rule:    engine.RuleHotelNightlyMaxExceeded,
		},
		{
			name:    "hotel nightly rate at max",
			policy:  hotels,
			req:     hotel("400", 2),
			outcome: engine.OutcomeApproved,
		},
		{
			name:    "hotel total above max",
			policy:  hotels,
			req:     hotel("1050", 7),
			outcome: engine.OutcomeRejected,
			rule:    engine.RuleHotelTotalMaxExceeded,
		},
		{
			name:    "hotel above threshold",
			policy:  hotels,
			req:     hotel("900", 5),
			outcome: engine.OutcomeRequiresApproval,
			rule:    engine.RuleApprovalThreshold,
		},
		{
			name:    "flight limits do not apply to hotels",
			policy:  engine.Policy{FlightMax: capped("10")},
			req:     hotel("300", 1),
			outcome: engine.OutcomeApproved,
		},
		{
			name:    "hotel limits do not apply to flights",
			policy:  engine.Policy{HotelTotalMax: capped("10")},
			req:     flight("300", engine.CabinBusiness),
			outcome: engine.OutcomeApproved,
		},
		{
			name:    "unrestricted policy approves anything",
			policy:  engine.Unrestricted(),
			req:     flight("99999.99", engine.CabinFirst),
			outcome: engine.OutcomeApproved,
		},
		{
			name:    "suspended policy rejects",
			policy:  engine.Policy{ID: "policy-old", Suspended: true},
			req:     flight("10", engine.CabinEconomy),
			outcome: engine.OutcomeRejected,
			rule:    engine.RulePolicyInactive,
		},
	}

	evaluator := engine.New("USD")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := evaluator.Evaluate(tt.policy, tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.outcome, decision.Outcome)
			assert.Equal(t, tt.rule, decision.Rule)
			assert.Equal(t, tt.policy.ID, decision.PolicyID)

			if tt.outcome == engine.OutcomeApproved {
				assert.Empty(t, decision.Reason)
			} else {
				assert.NotEmpty(t, decision.Reason)
			}
		})
	}
}

func TestEvaluate_RestrictedCabinAlwaysRejected(t *testing.T) {
	policy := engine.Policy{
		AllowedCabinClasses: []engine.CabinClass{engine.CabinEconomy},
		FlightMax:           capped("100000"),
		ApprovalThreshold:   capped("1"),
	}

	evaluator := engine.New("USD")

	for _, value := range []string{"0.01", "1", "1.01", "499.99", "500", "99999.99", "1000000"} {
		for _, cabin := range []engine.CabinClass{engine.CabinPremiumEconomy, engine.CabinBusiness, engine.CabinFirst} {
			decision, err := evaluator.Evaluate(policy, flight(value, cabin))
			require.NoError(t, err)

			assert.Equal(t, engine.OutcomeRejected, decision.Outcome, "amount %s cabin %s", value, cabin)
			assert.Equal(t, engine.RuleCabinClassNotAllowed, decision.Rule)
		}
	}
}

func TestEvaluate_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		policy engine.Policy
		req    engine.Request
	}{
		{
			name: "unknown booking type",
			req:  engine.Request{BookingType: "train", Amount: amount("10"), Currency: "USD"},
		},
		{
			name: "zero amount",
			req:  flight("0", engine.CabinEconomy),
		},
		{
			name: "negative amount",
			req:  flight("-10", engine.CabinEconomy),
		},
		{
			name: "sub-cent amount",
			req:  flight("10.005", engine.CabinEconomy),
		},
		{
			name: "foreign currency",
			req:  engine.Request{BookingType: engine.BookingTypeFlight, Amount: amount("10"), Currency: "EUR", CabinClass: engine.CabinEconomy},
		},
		{
			name: "hotel without nights",
			req:  hotel("100", 0),
		},
	}

	evaluator := engine.New("usd")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluator.Evaluate(tt.policy, tt.req)

			assert.True(t, failure.IsKind(err, failure.KindInvalidInput), "got %v", err)
		})
	}
}

func TestEvaluate_CabinOutsideRestrictedSet(t *testing.T) {
	restricted := engine.Policy{ID: "p1", AllowedCabinClasses: []engine.CabinClass{engine.CabinEconomy}}

	for _, cabin := range []engine.CabinClass{"", "luxury"} {
		t.Run(string(cabin), func(t *testing.T) {
			decision, err := engine.New("USD").Evaluate(restricted, flight("100", cabin))

			require.NoError(t, err)
			assert.Equal(t, engine.OutcomeRejected, decision.Outcome)
			assert.Equal(t, engine.RuleCabinClassNotAllowed, decision.Rule)
			assert.Equal(t, "p1", decision.PolicyID)
		})
	}
}

func TestEvaluate_MissingCabinWithoutRestriction(t *testing.T) {
	decision, err := engine.New("USD").Evaluate(engine.Unrestricted(), flight("10", ""))

	require.NoError(t, err)
	assert.True(t, decision.Approved())
}

func TestDecision_Err(t *testing.T) {
	rejected := engine.Decision{Outcome: engine.OutcomeRejected, Rule: engine.RuleFlightMaxExceeded, Reason: "too expensive"}

	err := rejected.Err()
	assert.True(t, failure.IsKind(err, failure.KindPolicyViolation))
	assert.Equal(t, "too expensive", err.Error())

	assert.NoError(t, engine.Decision{Outcome: engine.OutcomeRequiresApproval}.Err())
	assert.NoError(t, engine.Decision{Outcome: engine.OutcomeApproved}.Err())
}
