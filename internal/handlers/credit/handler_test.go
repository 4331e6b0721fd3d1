package credit_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	otelMocks "travelo/infras/otel/mocks"
	"travelo/internal/domains/credit/model/dto"
	"travelo/internal/domains/credit/service/mocks"
	"travelo/internal/handlers/credit"
	"travelo/shared"
	"travelo/shared/constant"
	"travelo/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	orgID    = "0b6a4f4e-9d4b-4c61-8f0e-6b7a1d2c3e4f"
	callerID = "5b7c2f8e-3f0c-4b59-9a4d-2f6f3c1d9e10"
	otherID  = "7c1d9e10-2f6f-4b59-9a4d-5b7c2f8e3f0c"
)

func newRouter(t *testing.T) (*mocks.MockCredit, chi.Router) {
	t.Helper()

	svc := mocks.NewMockCredit(gomock.NewController(t))
	handler := credit.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := shared.Actor{UserID: callerID, OrganizationID: orgID, Role: constant.RoleCompanyAdmin}
			next.ServeHTTP(w, r.WithContext(shared.WithActor(r.Context(), actor)))
		})
	})
	handler.Router(router)

	return svc, router
}

func serve(router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	return recorder
}

func TestHandler_GetBalance(t *testing.T) {
	t.Run("defaults to the caller", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().GetBalance(gomock.Any(), callerID).Return(dto.BalanceResponse{OrganizationID: orgID, UserID: callerID}, nil)

		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/credits/balance", "").Code)
	})

	t.Run("another user", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().GetBalance(gomock.Any(), otherID).Return(dto.BalanceResponse{OrganizationID: orgID, UserID: otherID}, nil)

		rec := serve(router, http.MethodGet, "/credits/balance?user_id="+otherID, "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), otherID)
	})
}

func TestHandler_Allocate(t *testing.T) {
	t.Run("insufficient organization credits", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Allocate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req dto.AllocateRequest) (dto.BalanceResponse, error) {
				assert.Equal(t, otherID, req.UserID)
				assert.True(t, decimal.RequireFromString("1500").Equal(req.Amount))

				return dto.BalanceResponse{}, failure.InsufficientOrgCredits("only 1000.00 unallocated")
			})

		rec := serve(router, http.MethodPost, "/credits/allocate",
			`{"user_id":"`+otherID+`","amount":"1500","mode":"set"}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), string(failure.KindInsufficientOrgCredits))
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, router := newRouter(t)

		rec := serve(router, http.MethodPost, "/credits/allocate",
			`{"user_id":"`+otherID+`","amount":"10","mode":"double"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_GetTransactions_Filter(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().GetTransactions(gomock.Any(), gomock.Any(), dto.TransactionFilter{UserID: otherID, Type: "consume"}).
		Return(dto.GetTransactionsResponse{}, nil)

	rec := serve(router, http.MethodGet, "/credits/transactions?user_id="+otherID+"&type=consume", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}
