package model

import (
	"travelo/internal/domains/policy/engine"
	"travelo/shared/model"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	TableName  = "policies"
	EntityName = "policy"

	FieldID                     = "id"
	FieldOrganizationID         = "organization_id"
	FieldName                   = "name"
	FieldFlightMaxAmount        = "flight_max_amount"
	FieldHotelMaxAmountPerNight = "hotel_max_amount_per_night"
	FieldHotelMaxAmountTotal    = "hotel_max_amount_total"
	FieldAllowedFlightClasses   = "allowed_flight_classes"
	FieldRequiresApprovalAbove  = "requires_approval_above"
	FieldIsActive               = "is_active"
)

// Policy is the stored form. NULL limit columns mean no limit.
type Policy struct {
	ID                     string              `db:"id"`
	OrganizationID         string              `db:"organization_id"`
	Name                   string              `db:"name"`
	FlightMaxAmount        decimal.NullDecimal `db:"flight_max_amount"`
	HotelMaxAmountPerNight decimal.NullDecimal `db:"hotel_max_amount_per_night"`
	HotelMaxAmountTotal    decimal.NullDecimal `db:"hotel_max_amount_total"`
	AllowedFlightClasses   pq.StringArray      `db:"allowed_flight_classes"`
	RequiresApprovalAbove  decimal.NullDecimal `db:"requires_approval_above"`
	IsActive               bool                `db:"is_active"`
	model.Metadata
}

func (p Policy) ToEngine() engine.Policy {
	classes := make([]engine.CabinClass, len(p.AllowedFlightClasses))
	for i, class := range p.AllowedFlightClasses {
		classes[i] = engine.CabinClass(class)
	}

	return engine.Policy{
		ID:                  p.ID,
		Name:                p.Name,
		FlightMax:           engine.LimitFromNull(p.FlightMaxAmount),
		HotelNightlyMax:     engine.LimitFromNull(p.HotelMaxAmountPerNight),
		HotelTotalMax:       engine.LimitFromNull(p.HotelMaxAmountTotal),
		AllowedCabinClasses: classes,
		ApprovalThreshold:   engine.LimitFromNull(p.RequiresApprovalAbove),
	}
}

// Candidate returns nil for the zero Policy so a missing row resolves like no policy.
func (p Policy) Candidate() *engine.Candidate {
	if p.ID == "" {
		return nil
	}

	return &engine.Candidate{Policy: p.ToEngine(), Active: p.IsActive}
}
