package model

import (
	"time"

	"travelo/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID               = "id"
	FieldOrganizationID   = "organization_id"
	FieldEmail            = "email"
	FieldPassword         = "password"
	FieldFullName         = "full_name"
	FieldRole             = "role"
	FieldCreditLimit      = "credit_limit"
	FieldAvailableCredits = "available_credits"
	FieldPolicyID         = "policy_id"
	FieldLastLogin        = "last_login"
	FieldActive           = "active"
)

type User struct {
	ID               string          `db:"id"`
	OrganizationID   string          `db:"organization_id"`
	Email            string          `db:"email"`
	Password         string          `db:"password"`
	FullName         *string         `db:"full_name"`
	Role             string          `db:"role"`
	CreditLimit      decimal.Decimal `db:"credit_limit"`
	AvailableCredits decimal.Decimal `db:"available_credits"`
	PolicyID         *string         `db:"policy_id"`
	LastLogin        *time.Time      `db:"last_login"`
	Active           bool            `db:"active"`
	model.Metadata
}

// UsedCredits is what the traveler has spent out of the current limit.
func (u User) UsedCredits() decimal.Decimal {
	return u.CreditLimit.Sub(u.AvailableCredits)
}
