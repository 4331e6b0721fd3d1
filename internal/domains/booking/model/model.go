package model

import (
	"time"

	"travelo/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                = "id"
	FieldOrganizationID    = "organization_id"
	FieldUserID            = "user_id"
	FieldPolicyID          = "policy_id"
	FieldBookingType       = "booking_type"
	FieldTotalPrice        = "total_price"
	FieldStatus            = "status"
	FieldConsumedCredits   = "consumed_credits"
	FieldApprovedAt        = "approved_at"
	FieldApprovedBy        = "approved_by"
	FieldRejectionReason   = "rejection_reason"
	FieldExternalReference = "external_reference"
)

type Booking struct {
	ID                string          `db:"id"`
	OrganizationID    string          `db:"organization_id"`
	UserID            string          `db:"user_id"`
	PolicyID          *string         `db:"policy_id"`
	BookingType       string          `db:"booking_type"`
	TotalPrice        decimal.Decimal `db:"total_price"`
	Currency          string          `db:"currency"`
	CabinClass        *string         `db:"cabin_class"`
	Nights            *int            `db:"nights"`
	Status            Status          `db:"status"`
	ConsumedCredits   decimal.Decimal `db:"consumed_credits"`
	ApprovedAt        *time.Time      `db:"approved_at"`
	ApprovedBy        *string         `db:"approved_by"`
	RejectionReason   *string         `db:"rejection_reason"`
	ExternalReference *string         `db:"external_reference"`
	model.Metadata
}
