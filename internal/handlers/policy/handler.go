package policy

import (
	"net/http"
	"travelo/infras/otel"
	"travelo/internal/domains/policy/model"
	"travelo/internal/domains/policy/model/dto"
	"travelo/internal/domains/policy/service"
	"travelo/shared"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	"travelo/shared/validator"
	"travelo/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Policy
	otel    otel.Otel
}

func New(service service.Policy, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/policies", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreatePolicy)
		routerGroup.Get("/", handler.GetPolicies)
		routerGroup.Post("/evaluate", handler.Evaluate)
		routerGroup.Get("/{id}", handler.GetPolicyByID)
		routerGroup.Put("/{id}", handler.UpdatePolicy)
		routerGroup.Delete("/{id}", handler.DeletePolicy)
	})
}

// CreatePolicy
// @Summary Create a travel policy
// @Description A missing limit means the policy does not cap that amount.
// @Tags Policy
// @Accept json
// @Produce json
// @Param request body dto.PolicyRequest true "Policy Request"
// @Success 201 {object} response.Data[dto.PolicyResponse]
// @Failure 400 {object} response.Error
// @Router /v1/policies [post]
// @Security BearerAuth
func (handler *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreatePolicy")
	defer scope.End()

	req := dto.PolicyRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	policy, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create policy")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Policy created successfully")

	response.WithJSON(w, http.StatusCreated, policy)
}

// GetPolicies
// @Summary Get all policies
// @Tags Policy
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param is_active query bool false "Filter by active flag"
// @Success 200 {object} response.Data[dto.GetPoliciesResponse]
// @Router /v1/policies [get]
// @Security BearerAuth
func (handler *Handler) GetPolicies(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPolicies")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := r.URL.Query()
	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	filterGroup.AddIfSet(
		gDto.Filter{Field: model.FieldName, Operator: gDto.FilterOperatorLike, Value: query.Get(model.FieldName), Table: model.TableName},
		gDto.Filter{
			Field:    model.FieldIsActive,
			Operator: gDto.FilterOperatorEq,
			Value:    shared.ConvertStringToBool(query.Get(model.FieldIsActive)),
			Table:    model.TableName,
		},
	)

	policies, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get policies")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, policies)
}

// GetPolicyByID
// @Summary Get a policy by ID
// @Tags Policy
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {object} response.Data[dto.PolicyResponse]
// @Failure 404 {object} response.Error
// @Router /v1/policies/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetPolicyByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPolicyByID")
	defer scope.End()

	id, err := validator.PathID(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	policy, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get policy by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, policy)
}

// UpdatePolicy replaces every rule of a policy.
// @Summary Update a policy
// @Tags Policy
// @Accept json
// @Produce json
// @Param id path string true "Policy ID"
// @Param request body dto.PolicyRequest true "Policy Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/policies/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdatePolicy")
	defer scope.End()

	id, err := validator.PathID(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	req := dto.PolicyRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update policy")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Policy updated successfully")

	response.WithMessage(w, http.StatusOK, "Policy updated successfully")
}

// DeletePolicy
// @Summary Delete a policy
// @Tags Policy
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/policies/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeletePolicy")
	defer scope.End()

	id, err := validator.PathID(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete policy")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Policy deleted successfully")

	response.WithMessage(w, http.StatusOK, "Policy deleted successfully")
}

// Evaluate runs a booking against a traveler's policy without recording anything.
// @Summary Evaluate a booking
// @Description Returns APPROVED, REQUIRES_APPROVAL or REJECTED with the deciding rule.
// @Tags Policy
// @Accept json
// @Produce json
// @Param request body dto.EvaluateRequest true "Evaluate Request"
// @Success 200 {object} response.Data[dto.EvaluateResponse]
// @Failure 400 {object} response.Error
// @Router /v1/policies/evaluate [post]
// @Security BearerAuth
func (handler *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Evaluate")
	defer scope.End()

	req := dto.EvaluateRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	decision, err := handler.service.Evaluate(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to evaluate booking")

		response.WithError(w, err)

		return
	}

	scope.SetAttribute("policy.outcome", string(decision.Outcome))

	response.WithJSON(w, http.StatusOK, decision)
}
