package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "{field} is required",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"oneof":    "{field} must be one of {param}",
	"max":      "{field} must be at most {param}",
	"min":      "{field} must be at least {param}",
	"len":      "{field} must have length {param}",
	"email":    "{field} must be a valid email address",
	"uuid":     "{field} must be a valid UUID",
	"nefield":  "{field} must differ from {param}",
	"gtfield":  "{field} must be after {param}",
	"amount":   "{field} must be a positive amount with at most two decimal places",
	"money":    "{field} must be a non-negative amount with at most two decimal places",
}

// describe renders one failed rule using the field's JSON name.
func describe(fieldErr val.FieldError) string {
	template, ok := messages[fieldErr.Tag()]
	if !ok {
		return fieldErr.Field() + " failed " + fieldErr.Tag()
	}

	return strings.NewReplacer("{field}", fieldErr.Field(), "{param}", fieldErr.Param()).Replace(template)
}

// message joins every failed rule so a client can fix the whole body in one round trip.
func message(err error) string {
	var fieldErrs val.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		parts = append(parts, describe(fieldErr))
	}

	return strings.Join(parts, "; ")
}
