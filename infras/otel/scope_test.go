package otel_test

import (
	"errors"
	"testing"
	"time"

	"travelo/infras/otel"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestAttribute(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected attribute.Value
	}{
		{name: "string", value: "confirmed", expected: attribute.StringValue("confirmed")},
		{name: "bool", value: true, expected: attribute.BoolValue(true)},
		{name: "int", value: 3, expected: attribute.IntValue(3)},
		{name: "decimal keeps cents", value: decimal.RequireFromString("120.5"), expected: attribute.StringValue("120.50")},
		{name: "string slice", value: []string{"manager", "admin"}, expected: attribute.StringSliceValue([]string{"manager", "admin"})},
		{name: "stringer", value: 90 * time.Second, expected: attribute.StringValue("1m30s")},
		{name: "fallback", value: struct{ N int }{N: 1}, expected: attribute.StringValue("{1}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := otel.Attribute("k", tt.value)

			assert.Equal(t, attribute.Key("k"), kv.Key)
			assert.Equal(t, tt.expected, kv.Value)
		})
	}
}

func TestScope_TraceIfError(t *testing.T) {
	_, span := noop.NewTracerProvider().Tracer("test").Start(t.Context(), "op")
	scope := otel.NewScope(span)

	var err error

	assert.NotPanics(t, func() {
		scope.TraceIfError(nil)
		scope.TraceIfError(&err)

		err = errors.New("boom")
		scope.TraceIfError(&err)
		scope.End()
	})
}
