package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"travelo/shared/constant"
	"travelo/shared/failure"
	"travelo/transport/http/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestWithError(t *testing.T) {
	t.Run("domain failure keeps kind and reason", func(t *testing.T) {
		rec := httptest.NewRecorder()

		err := fmt.Errorf("failed to check out booking: %w",
			failure.PolicyViolation("cabin_class_not_allowed", "cabin class business is not allowed"))
		response.WithError(rec, err)

		body := decode(t, rec)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "cabin class business is not allowed", body["error"])
		assert.Equal(t, string(failure.KindPolicyViolation), body["kind"])
		assert.Equal(t, "cabin_class_not_allowed", body["reason"])
	})

	t.Run("unexpected error is not echoed", func(t *testing.T) {
		rec := httptest.NewRecorder()

		response.WithError(rec, errors.New(`pq: relation "credit_transactions" does not exist`))

		body := decode(t, rec)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, constant.ResponseErrorInternal, body["error"])
		assert.NotContains(t, body, "kind")
	})
}

func TestWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithJSON(rec, http.StatusCreated, map[string]string{"status": "confirmed"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, constant.ContentTypeJSON, rec.Header().Get(constant.RequestHeaderContentType))
	assert.JSONEq(t, `{"data":{"status":"confirmed"}}`, rec.Body.String())
}
