package model

import (
	"errors"
	"fmt"

	"travelo/shared/failure"

	"github.com/shopspring/decimal"
)

const amountScale = 2

// ErrInvariantViolated means stored balances, or the result of a mutation, break the ledger
// rules. It is never expected in a consistent database.
var ErrInvariantViolated = errors.New("credit ledger invariant violated")

type AllocationMode string

const (
	AllocationSet AllocationMode = "set"
	AllocationAdd AllocationMode = "add"
)

// OrganizationBalance is the balance projection of an organizations row.
type OrganizationBalance struct {
	ID               string          `db:"id"`
	TotalCredits     decimal.Decimal `db:"total_credits"`
	AvailableCredits decimal.Decimal `db:"available_credits"`
	UsedCredits      decimal.Decimal `db:"used_credits"`
	AllocatedCredits decimal.Decimal `db:"allocated_credits"`
}

func (o OrganizationBalance) Unallocated() decimal.Decimal {
	return o.AvailableCredits.Sub(o.AllocatedCredits)
}

// UserBalance is the balance projection of a users row.
type UserBalance struct {
	ID               string          `db:"id"`
	OrganizationID   string          `db:"organization_id"`
	CreditLimit      decimal.Decimal `db:"credit_limit"`
	AvailableCredits decimal.Decimal `db:"available_credits"`
}

// Account is an organization balance plus, for user operations, one of its travelers. All
// ledger arithmetic happens here; the repository only persists the difference.
type Account struct {
	Organization OrganizationBalance
	User         *UserBalance
}

// Clone returns a copy that shares nothing with a.
func (a Account) Clone() Account {
	clone := Account{Organization: a.Organization}

	if a.User != nil {
		user := *a.User
		clone.User = &user
	}

	return clone
}

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return failure.InvalidInput("amount must be greater than zero") //nolint:wrapcheck
	}

	return checkScale(amount)
}

func checkScale(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(amountScale)) {
		return failure.InvalidInput("amount must have at most two decimal places") //nolint:wrapcheck
	}

	return nil
}

func (a *Account) user() (*UserBalance, error) {
	if a.User == nil {
		return nil, fmt.Errorf("%w: operation needs a user balance", ErrInvariantViolated)
	}

	return a.User, nil
}

// Allocate grants credit to the user out of the organization's unallocated pool and returns
// the signed change of the user's limit. In set mode amount is the new limit; the part of the
// old limit already spent stays spent.
func (a *Account) Allocate(amount decimal.Decimal, mode AllocationMode) (decimal.Decimal, error) {
	user, err := a.user()
	if err != nil {
		return decimal.Zero, err
	}

	var change decimal.Decimal

	switch mode {
	case AllocationAdd:
		if err := checkAmount(amount); err != nil {
			return decimal.Zero, err
		}

		change = amount
	case AllocationSet:
		if amount.IsNegative() {
			return decimal.Zero, failure.InvalidInput("credit limit cannot be negative") //nolint:wrapcheck
		}

		if err := checkScale(amount); err != nil {
			return decimal.Zero, err
		}

		used := user.CreditLimit.Sub(user.AvailableCredits)
		if amount.LessThan(used) {
			return decimal.Zero, failure.InvalidInput(fmt.Sprintf( //nolint:wrapcheck
				"credit limit %s is below the %s already spent", amount.StringFixed(amountScale), used.StringFixed(amountScale)))
		}

		change = amount.Sub(user.CreditLimit)
	default:
		return decimal.Zero, failure.InvalidInput(fmt.Sprintf("allocation mode must be %s or %s", AllocationSet, AllocationAdd)) //nolint:wrapcheck
	}

	if change.GreaterThan(a.Organization.Unallocated()) {
		return decimal.Zero, failure.InsufficientOrgCredits(fmt.Sprintf( //nolint:wrapcheck
			"organization has %s unallocated credits, %s requested", a.Organization.Unallocated().StringFixed(amountScale), change.StringFixed(amountScale)))
	}

	user.CreditLimit = user.CreditLimit.Add(change)
	user.AvailableCredits = user.AvailableCredits.Add(change)
	a.Organization.AllocatedCredits = a.Organization.AllocatedCredits.Add(change)

	return change, nil
}

// Reduce takes unspent credit back from the user into the organization's unallocated pool.
func (a *Account) Reduce(amount decimal.Decimal) error {
	user, err := a.user()
	if err != nil {
		return err
	}

	if err := checkAmount(amount); err != nil {
		return err
	}

	if amount.GreaterThan(user.AvailableCredits) {
		return failure.InsufficientUserCredits(fmt.Sprintf( //nolint:wrapcheck
			"user has %s available credits, cannot reduce by %s", user.AvailableCredits.StringFixed(amountScale), amount.StringFixed(amountScale)))
	}

	user.AvailableCredits = user.AvailableCredits.Sub(amount)
	user.CreditLimit = user.CreditLimit.Sub(amount)
	a.Organization.AllocatedCredits = a.Organization.AllocatedCredits.Sub(amount)

	return nil
}

// Consume spends the user's credit on a booking.
func (a *Account) Consume(amount decimal.Decimal) error {
	user, err := a.user()
	if err != nil {
		return err
	}

	if err := checkAmount(amount); err != nil {
		return err
	}

	if amount.GreaterThan(user.AvailableCredits) {
		return failure.InsufficientUserCredits(fmt.Sprintf( //nolint:wrapcheck
			"user has %s available credits, booking needs %s", user.AvailableCredits.StringFixed(amountScale), amount.StringFixed(amountScale)))
	}

	if amount.GreaterThan(a.Organization.AvailableCredits) {
		return failure.InsufficientOrgCredits(fmt.Sprintf( //nolint:wrapcheck
			"organization has %s available credits, booking needs %s", a.Organization.AvailableCredits.StringFixed(amountScale), amount.StringFixed(amountScale)))
	}

	user.AvailableCredits = user.AvailableCredits.Sub(amount)
	a.Organization.AvailableCredits = a.Organization.AvailableCredits.Sub(amount)
	a.Organization.UsedCredits = a.Organization.UsedCredits.Add(amount)
	a.Organization.AllocatedCredits = a.Organization.AllocatedCredits.Sub(amount)

	return nil
}

// Refund reverses a Consume of the same amount.
func (a *Account) Refund(amount decimal.Decimal) error {
	user, err := a.user()
	if err != nil {
		return err
	}

	if err := checkAmount(amount); err != nil {
		return err
	}

	if user.AvailableCredits.Add(amount).GreaterThan(user.CreditLimit) {
		return failure.InvalidInput(fmt.Sprintf( //nolint:wrapcheck
			"refund of %s would exceed the user's credit limit of %s", amount.StringFixed(amountScale), user.CreditLimit.StringFixed(amountScale)))
	}

	if amount.GreaterThan(a.Organization.UsedCredits) {
		return failure.InvalidInput(fmt.Sprintf( //nolint:wrapcheck
			"refund of %s exceeds the organization's used credits of %s", amount.StringFixed(amountScale), a.Organization.UsedCredits.StringFixed(amountScale)))
	}

	user.AvailableCredits = user.AvailableCredits.Add(amount)
	a.Organization.AvailableCredits = a.Organization.AvailableCredits.Add(amount)
	a.Organization.UsedCredits = a.Organization.UsedCredits.Sub(amount)
	a.Organization.AllocatedCredits = a.Organization.AllocatedCredits.Add(amount)

	return nil
}

// Fund adds purchased credit to the organization pool.
func (a *Account) Fund(amount decimal.Decimal) error {
	if err := checkAmount(amount); err != nil {
		return err
	}

	a.Organization.TotalCredits = a.Organization.TotalCredits.Add(amount)
	a.Organization.AvailableCredits = a.Organization.AvailableCredits.Add(amount)

	return nil
}

// Validate checks every balance invariant.
func (a Account) Validate() error {
	org := a.Organization

	if !org.TotalCredits.Equal(org.AvailableCredits.Add(org.UsedCredits)) {
		return fmt.Errorf("%w: organization %s total %s != available %s + used %s",
			ErrInvariantViolated, org.ID, org.TotalCredits, org.AvailableCredits, org.UsedCredits)
	}

	if org.AvailableCredits.IsNegative() || org.UsedCredits.IsNegative() || org.AllocatedCredits.IsNegative() {
		return fmt.Errorf("%w: organization %s has a negative balance", ErrInvariantViolated, org.ID)
	}

	if org.AllocatedCredits.GreaterThan(org.AvailableCredits) {
		return fmt.Errorf("%w: organization %s allocated %s exceeds available %s",
			ErrInvariantViolated, org.ID, org.AllocatedCredits, org.AvailableCredits)
	}

	if a.User == nil {
		return nil
	}

	user := a.User

	if user.OrganizationID != org.ID {
		return fmt.Errorf("%w: user %s does not belong to organization %s", ErrInvariantViolated, user.ID, org.ID)
	}

	if user.AvailableCredits.IsNegative() || user.AvailableCredits.GreaterThan(user.CreditLimit) {
		return fmt.Errorf("%w: user %s available %s outside [0, %s]",
			ErrInvariantViolated, user.ID, user.AvailableCredits, user.CreditLimit)
	}

	return nil
}
