package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"travelo/shared/constant"
	"travelo/shared/failure"

	"github.com/go-chi/chi/v5"

	val "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxAmountScale = 2

var validate *val.Validate

// decimalValue lets tags such as required and amount see a decimal.Decimal as its string form.
func decimalValue(field reflect.Value) any {
	switch v := field.Interface().(type) {
	case decimal.Decimal:
		return v.String()
	case decimal.NullDecimal:
		if !v.Valid {
			return nil
		}

		return v.Decimal.String()
	}

	return nil
}

func parseAmount(field val.FieldLevel) (decimal.Decimal, bool) {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero, false
	}

	return amount, amount.Exponent() >= -maxAmountScale || amount.Equal(amount.Round(maxAmountScale))
}

// registerAmountValidation accepts strictly positive amounts with at most two decimal places.
func registerAmountValidation(field val.FieldLevel) bool {
	amount, ok := parseAmount(field)

	return ok && amount.IsPositive()
}

// registerMoneyValidation is amount that also accepts zero.
func registerMoneyValidation(field val.FieldLevel) bool {
	amount, ok := parseAmount(field)

	return ok && !amount.IsNegative()
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	err := validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		empty := fl.Field().IsZero()

		return empty
	})

	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("amount", registerAmountValidation)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("money", registerMoneyValidation)
	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

// PathID reads the {id} route parameter. Every resource id is a UUID, so anything else is a bad request
// rather than a lookup that cannot match.
func PathID(r *http.Request) (string, error) {
	id := chi.URLParam(r, constant.RequestParamID)

	if err := validate.Var(id, "required,uuid"); err != nil {
		return id, failure.BadRequestFromString(constant.RequestParamID + " must be a valid UUID") //nolint:wrapcheck
	}

	return id, nil
}
