package engine

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Limit is either Unlimited or Capped at an amount. The zero value is Unlimited.
type Limit struct {
	amount decimal.Decimal
	capped bool
}

func Unlimited() Limit {
	return Limit{}
}

func Capped(amount decimal.Decimal) Limit {
	return Limit{amount: amount, capped: true}
}

// LimitFromNull maps a nullable column onto a Limit: NULL means no limit.
func LimitFromNull(value decimal.NullDecimal) Limit {
	if !value.Valid {
		return Unlimited()
	}

	return Capped(value.Decimal)
}

func (l Limit) IsCapped() bool {
	return l.capped
}

// Amount returns the cap and whether there is one.
func (l Limit) Amount() (decimal.Decimal, bool) {
	return l.amount, l.capped
}

// Exceeded reports value > cap. An Unlimited limit is never exceeded.
func (l Limit) Exceeded(value decimal.Decimal) bool {
	return l.capped && value.GreaterThan(l.amount)
}

func (l Limit) NullDecimal() decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: l.amount, Valid: l.capped}
}

func (l Limit) String() string {
	if !l.capped {
		return "unlimited"
	}

	return l.amount.StringFixed(2)
}

// MarshalJSON renders an Unlimited limit as null and a capped one as a decimal string.
func (l Limit) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.NullDecimal())
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	var value decimal.NullDecimal

	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("invalid limit: %w", err)
	}

	*l = LimitFromNull(value)

	return nil
}
