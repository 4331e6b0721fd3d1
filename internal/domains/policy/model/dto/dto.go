package dto

import (
	"travelo/internal/domains/policy/engine"
	"travelo/internal/domains/policy/model"
	"travelo/shared"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	gModel "travelo/shared/model"
	"travelo/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// PolicyRequest is shared by create and update; update replaces every limit, so a null limit
// in an update removes it.
type PolicyRequest struct {
	Name                   string              `json:"name"                       validate:"required,min=2,max=150"`
	FlightMaxAmount        decimal.NullDecimal `json:"flight_max_amount"          validate:"omitempty,amount"`
	HotelMaxAmountPerNight decimal.NullDecimal `json:"hotel_max_amount_per_night" validate:"omitempty,amount"`
	HotelMaxAmountTotal    decimal.NullDecimal `json:"hotel_max_amount_total"     validate:"omitempty,amount"`
	AllowedFlightClasses   []string            `json:"allowed_flight_classes"     validate:"omitempty,unique,dive,oneof=economy premium_economy business first"`
	RequiresApprovalAbove  decimal.NullDecimal `json:"requires_approval_above"    validate:"omitempty,money"`
	IsActive               *bool               `json:"is_active"`
}

func (r *PolicyRequest) active() bool {
	return r.IsActive == nil || *r.IsActive
}

func (r *PolicyRequest) classes() pq.StringArray {
	if r.AllowedFlightClasses == nil {
		return pq.StringArray{}
	}

	return pq.StringArray(r.AllowedFlightClasses)
}

func (r *PolicyRequest) ToModel(organizationID, user string) model.Policy {
	return model.Policy{
		ID:                     uuid.NewString(),
		OrganizationID:         organizationID,
		Name:                   r.Name,
		FlightMaxAmount:        r.FlightMaxAmount,
		HotelMaxAmountPerNight: r.HotelMaxAmountPerNight,
		HotelMaxAmountTotal:    r.HotelMaxAmountTotal,
		AllowedFlightClasses:   r.classes(),
		RequiresApprovalAbove:  r.RequiresApprovalAbove,
		IsActive:               r.active(),
		Metadata:               gModel.NewMetadata(user, timezone.Now()),
	}
}

// ToUpdateMap lists every column, including NULL limits, unlike shared.TransformFields which
// skips zero values.
func (r *PolicyRequest) ToUpdateMap(user string) map[string]any {
	return map[string]any{
		model.FieldName:                   r.Name,
		model.FieldFlightMaxAmount:        r.FlightMaxAmount,
		model.FieldHotelMaxAmountPerNight: r.HotelMaxAmountPerNight,
		model.FieldHotelMaxAmountTotal:    r.HotelMaxAmountTotal,
		model.FieldAllowedFlightClasses:   r.classes(),
		model.FieldRequiresApprovalAbove:  r.RequiresApprovalAbove,
		model.FieldIsActive:               r.active(),
		constant.FieldModifiedAt:          timezone.Now(),
		constant.FieldModifiedBy:          user,
	}
}

type PolicyResponse struct {
	ID                     string       `json:"id"`
	OrganizationID         string       `json:"organization_id"`
	Name                   string       `json:"name"`
	FlightMaxAmount        engine.Limit `json:"flight_max_amount"`
	HotelMaxAmountPerNight engine.Limit `json:"hotel_max_amount_per_night"`
	HotelMaxAmountTotal    engine.Limit `json:"hotel_max_amount_total"`
	AllowedFlightClasses   []string     `json:"allowed_flight_classes"`
	RequiresApprovalAbove  engine.Limit `json:"requires_approval_above"`
	IsActive               bool         `json:"is_active"`
	gDto.Metadata
}

func (r *PolicyResponse) FromModel(model model.Policy) {
	r.ID = model.ID
	r.OrganizationID = model.OrganizationID
	r.Name = model.Name
	r.FlightMaxAmount = engine.LimitFromNull(model.FlightMaxAmount)
	r.HotelMaxAmountPerNight = engine.LimitFromNull(model.HotelMaxAmountPerNight)
	r.HotelMaxAmountTotal = engine.LimitFromNull(model.HotelMaxAmountTotal)
	r.AllowedFlightClasses = append([]string{}, model.AllowedFlightClasses...)
	r.RequiresApprovalAbove = engine.LimitFromNull(model.RequiresApprovalAbove)
	r.IsActive = model.IsActive
	r.Metadata.FromModel(model.Metadata)
}

type GetPoliciesResponse struct {
	Policies  []PolicyResponse `json:"policies"`
	TotalPage int              `json:"total_page"`
	TotalData int              `json:"total_data"`
}

func (r *GetPoliciesResponse) FromModels(models []model.Policy, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Policies = make([]PolicyResponse, len(models))
	for i, mod := range models {
		r.Policies[i].FromModel(mod)
	}
}

// EvaluateRequest is a booking as seen by the policy evaluator. UserID defaults to the caller.
type EvaluateRequest struct {
	UserID      string          `json:"user_id"     validate:"omitempty,uuid"`
	BookingType string          `json:"booking_type" validate:"required,oneof=flight hotel"`
	Amount      decimal.Decimal `json:"amount"      validate:"required"`
	Currency    string          `json:"currency"    validate:"required,len=3"`
	CabinClass  string          `json:"cabin_class" validate:"omitempty,max=32"`
	Nights      int             `json:"nights"      validate:"omitempty,min=0"`
}

func (r *EvaluateRequest) ToEngine() engine.Request {
	return engine.Request{
		BookingType: engine.BookingType(r.BookingType),
		Amount:      r.Amount,
		Currency:    r.Currency,
		CabinClass:  engine.CabinClass(r.CabinClass),
		Nights:      r.Nights,
	}
}

type EvaluateResponse struct {
	Outcome    engine.Outcome `json:"outcome"`
	Rule       engine.Rule    `json:"rule,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	PolicyID   string         `json:"policy_id,omitempty"`
	PolicyName string         `json:"policy_name"`
}

func (r *EvaluateResponse) FromDecision(decision engine.Decision, policy engine.Policy) {
	r.Outcome = decision.Outcome
	r.Rule = decision.Rule
	r.Reason = decision.Reason
	r.PolicyID = decision.PolicyID
	r.PolicyName = policy.Name
}
