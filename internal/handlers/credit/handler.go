package credit

import (
	"net/http"
	"travelo/infras/otel"
	"travelo/internal/domains/credit/model/dto"
	"travelo/internal/domains/credit/service"
	"travelo/shared"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	"travelo/shared/validator"
	"travelo/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	queryUserID    = "user_id"
	queryBookingID = "booking_id"
	queryType      = "type"
)

type Handler struct {
	service service.Credit
	otel    otel.Otel
}

func New(service service.Credit, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/credits", func(routerGroup chi.Router) {
		routerGroup.Post("/allocate", handler.Allocate)
		routerGroup.Post("/reduce", handler.Reduce)
		routerGroup.Get("/balance", handler.GetBalance)
		routerGroup.Get("/transactions", handler.GetTransactions)
		routerGroup.Post("/statements", handler.ExportStatement)
	})
}

// Allocate moves credit from the organization's unallocated pool to a user.
// @Summary Allocate credit to a user
// @Description mode=set makes the amount the user's new limit, mode=add raises the limit by it.
// @Tags Credit
// @Accept json
// @Produce json
// @Param request body dto.AllocateRequest true "Allocate Request"
// @Success 200 {object} response.Data[dto.BalanceResponse]
// @Failure 400 {object} response.Error
// @Failure 422 {object} response.Error
// @Router /v1/credits/allocate [post]
// @Security BearerAuth
func (handler *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Allocate")
	defer scope.End()

	req := dto.AllocateRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	balance, err := handler.service.Allocate(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to allocate credit")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Credit allocated successfully")

	response.WithJSON(w, http.StatusOK, balance)
}

// Reduce takes unspent credit back from a user.
// @Summary Reduce a user's credit
// @Tags Credit
// @Accept json
// @Produce json
// @Param request body dto.ReduceRequest true "Reduce Request"
// @Success 200 {object} response.Data[dto.BalanceResponse]
// @Failure 400 {object} response.Error
// @Failure 422 {object} response.Error
// @Router /v1/credits/reduce [post]
// @Security BearerAuth
func (handler *Handler) Reduce(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Reduce")
	defer scope.End()

	req := dto.ReduceRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	balance, err := handler.service.Reduce(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to reduce credit")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Credit reduced successfully")

	response.WithJSON(w, http.StatusOK, balance)
}

// GetBalance
// @Summary Get credit balances
// @Description Organization balances, plus the user's when user_id is given. Defaults to the caller.
// @Tags Credit
// @Produce json
// @Param user_id query string false "User ID"
// @Success 200 {object} response.Data[dto.BalanceResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/credits/balance [get]
// @Security BearerAuth
func (handler *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBalance")
	defer scope.End()

	userID := r.URL.Query().Get(queryUserID)
	if userID == constant.Empty {
		userID = shared.ActorFromContext(ctx).UserID
	}

	balance, err := handler.service.GetBalance(ctx, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get balance")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, balance)
}

// GetTransactions lists ledger entries, newest first.
// @Summary Get credit transactions
// @Tags Credit
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param user_id query string false "Filter by user"
// @Param booking_id query string false "Filter by booking"
// @Param type query string false "Filter by transaction type"
// @Success 200 {object} response.Data[dto.GetTransactionsResponse]
// @Router /v1/credits/transactions [get]
// @Security BearerAuth
func (handler *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTransactions")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := r.URL.Query()
	filter := dto.TransactionFilter{
		UserID:    query.Get(queryUserID),
		BookingID: query.Get(queryBookingID),
		Type:      query.Get(queryType),
	}

	transactions, err := handler.service.GetTransactions(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get credit transactions")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, transactions)
}

// ExportStatement writes the organization's ledger for a period to object storage.
// @Summary Export a credit statement
// @Description Uploads a CSV of every transaction in [from, to) and returns a presigned link.
// @Tags Credit
// @Accept json
// @Produce json
// @Param request body dto.StatementRequest true "Statement Request"
// @Success 201 {object} response.Data[dto.StatementResponse]
// @Failure 400 {object} response.Error
// @Router /v1/credits/statements [post]
// @Security BearerAuth
func (handler *Handler) ExportStatement(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportStatement")
	defer scope.End()

	req := dto.StatementRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	statement, err := handler.service.ExportStatement(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to export statement")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Statement exported successfully")

	response.WithJSON(w, http.StatusCreated, statement)
}
