package model

import (
	"travelo/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "organizations"
	EntityName = "organization"

	FieldID               = "id"
	FieldName             = "name"
	FieldTotalCredits     = "total_credits"
	FieldAvailableCredits = "available_credits"
	FieldUsedCredits      = "used_credits"
	FieldAllocatedCredits = "allocated_credits"
	FieldDefaultPolicyID  = "default_policy_id"
)

// Organization balances are only written through the credit ledger.
type Organization struct {
	ID               string          `db:"id"`
	Name             string          `db:"name"`
	TotalCredits     decimal.Decimal `db:"total_credits"`
	AvailableCredits decimal.Decimal `db:"available_credits"`
	UsedCredits      decimal.Decimal `db:"used_credits"`
	AllocatedCredits decimal.Decimal `db:"allocated_credits"`
	DefaultPolicyID  *string         `db:"default_policy_id"`
	model.Metadata
}

// UnallocatedCredits is the part of the available pool not yet granted to any traveler.
func (o Organization) UnallocatedCredits() decimal.Decimal {
	return o.AvailableCredits.Sub(o.AllocatedCredits)
}
