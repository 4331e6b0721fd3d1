package model

import (
	"travelo/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "credit_transactions"
	EntityName = "credit_transaction"

	FieldID             = "id"
	FieldOrganizationID = "organization_id"
	FieldUserID         = "user_id"
	FieldBookingID      = "booking_id"
	FieldType           = "type"
	FieldCreatedAt      = "created_at"
)

type TransactionType string

const (
	TransactionFund     TransactionType = "fund"
	TransactionAllocate TransactionType = "allocate"
	TransactionReduce   TransactionType = "reduce"
	TransactionConsume  TransactionType = "consume"
	TransactionRefund   TransactionType = "refund"
)

// Transaction is one append-only ledger row. Amount is signed from the user's point of view:
// allocations and refunds are positive, reductions and consumption negative. Funding is
// positive from the organization's point of view.
type Transaction struct {
	ID                 string              `db:"id"`
	OrganizationID     string              `db:"organization_id"`
	UserID             *string             `db:"user_id"`
	BookingID          *string             `db:"booking_id"`
	Type               TransactionType     `db:"type"`
	Amount             decimal.Decimal     `db:"amount"`
	Reason             *string             `db:"reason"`
	OrgAvailableAfter  decimal.Decimal     `db:"org_available_after"`
	OrgUsedAfter       decimal.Decimal     `db:"org_used_after"`
	OrgAllocatedAfter  decimal.Decimal     `db:"org_allocated_after"`
	UserAvailableAfter decimal.NullDecimal `db:"user_available_after"`
	UserLimitAfter     decimal.NullDecimal `db:"user_limit_after"`
	model.Metadata
}

// Entry is what a mutation reports about itself; the ledger turns it into a Transaction.
type Entry struct {
	Type      TransactionType
	Amount    decimal.Decimal
	Reason    string
	BookingID string
}

// Mutation changes an account in memory. Returning an error aborts the ledger write.
type Mutation func(account *Account) (Entry, error)

// Key selects the rows a ledger operation locks. UserID is empty for organization-only
// operations.
type Key struct {
	OrganizationID string
	UserID         string
}
