package dto

import (
	"time"

	"travelo/internal/domains/credit/model"
	"travelo/shared"
	gDto "travelo/shared/dto"

	"github.com/shopspring/decimal"
)

type AllocateRequest struct {
	UserID string               `json:"user_id" validate:"required,uuid"`
	Amount decimal.Decimal      `json:"amount"  validate:"money"`
	Mode   model.AllocationMode `json:"mode"    validate:"required,oneof=set add"`
}

type ReduceRequest struct {
	UserID string          `json:"user_id" validate:"required,uuid"`
	Amount decimal.Decimal `json:"amount"  validate:"required,amount"`
	Reason string          `json:"reason"  validate:"required,max=500"`
}

type FundRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,amount"`
	Reason string          `json:"reason" validate:"omitempty,max=500"`
}

// ConsumeRequest and RefundRequest are internal: bookings drive them, never an HTTP body.
type ConsumeRequest struct {
	OrganizationID string
	UserID         string
	BookingID      string
	Amount         decimal.Decimal
}

type RefundRequest struct {
	OrganizationID string
	UserID         string
	BookingID      string
	Amount         decimal.Decimal
	Reason         string
}

type StatementRequest struct {
	From time.Time `json:"from" validate:"required"`
	To   time.Time `json:"to"   validate:"required,gtfield=From"`
}

type StatementResponse struct {
	Key          string `json:"key"`
	URL          string `json:"url"`
	Transactions int    `json:"transactions"`
	ExpiresAt    string `json:"expires_at"`
}

type BalanceResponse struct {
	OrganizationID          string              `json:"organization_id"`
	OrganizationTotal       decimal.Decimal     `json:"organization_total_credits"`
	OrganizationAvailable   decimal.Decimal     `json:"organization_available_credits"`
	OrganizationUsed        decimal.Decimal     `json:"organization_used_credits"`
	OrganizationAllocated   decimal.Decimal     `json:"organization_allocated_credits"`
	OrganizationUnallocated decimal.Decimal     `json:"organization_unallocated_credits"`
	UserID                  string              `json:"user_id,omitempty"`
	UserCreditLimit         decimal.NullDecimal `json:"user_credit_limit"`
	UserAvailable           decimal.NullDecimal `json:"user_available_credits"`
}

func (r *BalanceResponse) FromAccount(account model.Account) {
	org := account.Organization

	r.OrganizationID = org.ID
	r.OrganizationTotal = org.TotalCredits
	r.OrganizationAvailable = org.AvailableCredits
	r.OrganizationUsed = org.UsedCredits
	r.OrganizationAllocated = org.AllocatedCredits
	r.OrganizationUnallocated = org.Unallocated()

	if account.User != nil {
		r.UserID = account.User.ID
		r.UserCreditLimit = decimal.NewNullDecimal(account.User.CreditLimit)
		r.UserAvailable = decimal.NewNullDecimal(account.User.AvailableCredits)
	}
}

type TransactionResponse struct {
	ID                 string                `json:"id"`
	OrganizationID     string                `json:"organization_id"`
	UserID             *string               `json:"user_id"`
	BookingID          *string               `json:"booking_id"`
	Type               model.TransactionType `json:"type"`
	Amount             decimal.Decimal       `json:"amount"`
	Reason             *string               `json:"reason"`
	OrgAvailableAfter  decimal.Decimal       `json:"org_available_after"`
	OrgUsedAfter       decimal.Decimal       `json:"org_used_after"`
	OrgAllocatedAfter  decimal.Decimal       `json:"org_allocated_after"`
	UserAvailableAfter decimal.NullDecimal   `json:"user_available_after"`
	UserLimitAfter     decimal.NullDecimal   `json:"user_limit_after"`
	gDto.Metadata
}

func (r *TransactionResponse) FromModel(model model.Transaction) {
	r.ID = model.ID
	r.OrganizationID = model.OrganizationID
	r.UserID = model.UserID
	r.BookingID = model.BookingID
	r.Type = model.Type
	r.Amount = model.Amount
	r.Reason = model.Reason
	r.OrgAvailableAfter = model.OrgAvailableAfter
	r.OrgUsedAfter = model.OrgUsedAfter
	r.OrgAllocatedAfter = model.OrgAllocatedAfter
	r.UserAvailableAfter = model.UserAvailableAfter
	r.UserLimitAfter = model.UserLimitAfter
	r.Metadata.FromModel(model.Metadata)
}

type GetTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetTransactionsResponse) FromModels(models []model.Transaction, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Transactions = make([]TransactionResponse, len(models))
	for i, mod := range models {
		r.Transactions[i].FromModel(mod)
	}
}

// TransactionFilter narrows a transaction listing inside the caller's organization.
type TransactionFilter struct {
	UserID    string
	BookingID string
	Type      string
}

// StatementHeader is the first row of an exported CSV statement.
var StatementHeader = []string{
	"id", "created_at", "type", "amount", "user_id", "booking_id", "reason",
	"org_available_after", "org_used_after", "org_allocated_after", "user_available_after", "user_limit_after",
}

// StatementRow renders a transaction in StatementHeader order.
func StatementRow(tx model.Transaction) []string {
	return []string{
		tx.ID,
		gDto.FormatTime(tx.CreatedAt),
		string(tx.Type),
		tx.Amount.StringFixed(2),
		deref(tx.UserID),
		deref(tx.BookingID),
		deref(tx.Reason),
		tx.OrgAvailableAfter.StringFixed(2),
		tx.OrgUsedAfter.StringFixed(2),
		tx.OrgAllocatedAfter.StringFixed(2),
		nullFixed(tx.UserAvailableAfter),
		nullFixed(tx.UserLimitAfter),
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}

func nullFixed(value decimal.NullDecimal) string {
	if !value.Valid {
		return ""
	}

	return value.Decimal.StringFixed(2)
}

const (
	EventCreditFunded    = "credit.funded"
	EventCreditAllocated = "credit.allocated"
	EventCreditReduced   = "credit.reduced"
)

// Event is published to the credit topic after an administrative ledger change commits.
type Event struct {
	TransactionID  string                `json:"transaction_id"`
	OrganizationID string                `json:"organization_id"`
	UserID         *string               `json:"user_id,omitempty"`
	Type           model.TransactionType `json:"type"`
	Amount         decimal.Decimal       `json:"amount"`
	Reason         *string               `json:"reason,omitempty"`
	OccurredAt     string                `json:"occurred_at"`
}

func (e *Event) FromTransaction(tx model.Transaction) {
	e.TransactionID = tx.ID
	e.OrganizationID = tx.OrganizationID
	e.UserID = tx.UserID
	e.Type = tx.Type
	e.Amount = tx.Amount
	e.Reason = tx.Reason
	e.OccurredAt = gDto.FormatTime(tx.CreatedAt)
}
