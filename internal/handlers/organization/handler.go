package organization

import (
	"net/http"
	"travelo/infras/otel"
	creditDto "travelo/internal/domains/credit/model/dto"
	creditService "travelo/internal/domains/credit/service"
	"travelo/internal/domains/organization/model"
	"travelo/internal/domains/organization/model/dto"
	"travelo/internal/domains/organization/service"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	"travelo/shared/validator"
	"travelo/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Organization
	credit  creditService.Credit
	otel    otel.Otel
}

func New(service service.Organization, credit creditService.Credit, otel otel.Otel) Handler {
	return Handler{
		service: service,
		credit:  credit,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/organizations", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateOrganization)
		routerGroup.Get("/", handler.GetOrganizations)
		routerGroup.Get("/{id}", handler.GetOrganizationByID)
		routerGroup.Patch("/{id}", handler.UpdateOrganization)
		routerGroup.Put("/{id}/default-policy", handler.SetDefaultPolicy)
		routerGroup.Post("/{id}/credits/fund", handler.FundCredits)
	})
}

// CreateOrganization creates an empty organization for platform operators.
// @Summary Create an organization
// @Tags Organization
// @Accept json
// @Produce json
// @Param request body dto.CreateOrganizationRequest true "Create Organization Request"
// @Success 201 {object} response.Data[dto.OrganizationResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/organizations [post]
// @Security BearerAuth
func (handler *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateOrganization")
	defer scope.End()

	req := dto.CreateOrganizationRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create organization")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Organization created successfully")

	response.WithJSON(w, http.StatusCreated, res)
}

// GetOrganizations lists organizations.
// @Summary Get all organizations
// @Tags Organization
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Success 200 {object} response.Data[dto.GetOrganizationsResponse]
// @Failure 403 {object} response.Error
// @Router /v1/organizations [get]
// @Security BearerAuth
func (handler *Handler) GetOrganizations(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOrganizations")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	filterGroup.AddIfSet(gDto.Filter{
		Field:    model.FieldName,
		Operator: gDto.FilterOperatorLike,
		Value:    r.URL.Query().Get(model.FieldName),
		Table:    model.TableName,
	})

	organizations, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get organizations")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, organizations)
}

// GetOrganizationByID
// @Summary Get an organization by ID
// @Tags Organization
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} response.Data[dto.OrganizationResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/organizations/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetOrganizationByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOrganizationByID")
	defer scope.End()

	id, err := validator.PathID(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	organization, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get organization by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, organization)
}

// UpdateOrganization renames an organization.
// @Summary Update an organization
// @Tags Organization
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param request body dto.UpdateOrganizationRequest true "Update Organization Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/organizations/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateOrganization")
	defer scope.End()

	id, err := validator.PathID(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	req := dto.UpdateOrganizationRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update organization")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Organization updated successfully")

	response.WithMessage(w, http.StatusOK, "Organization updated successfully")
}

// SetDefaultPolicy sets or clears the policy used by travelers without their own.
// @Summary Set the default policy
// @Tags Organization
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param request body dto.DefaultPolicyRequest true "Default Policy Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/organizations/{id}/default-policy [put]
// @Security BearerAuth
func (handler *Handler) SetDefaultPolicy(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SetDefaultPolicy")
	defer scope.End()

	id, err := validator.PathID(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	req := dto.DefaultPolicyRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.SetDefaultPolicy(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to set default policy")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Default policy updated successfully")
}

// FundCredits adds purchased credits to an organization's pool.
// @Summary Fund an organization
// @Tags Credit
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param request body creditDto.FundRequest true "Fund Request"
// @Success 200 {object} response.Data[creditDto.BalanceResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/organizations/{id}/credits/fund [post]
// @Security BearerAuth
func (handler *Handler) FundCredits(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".FundCredits")
	defer scope.End()

	id, err := validator.PathID(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	req := creditDto.FundRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	balance, err := handler.credit.Fund(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to fund organization")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Organization funded successfully")

	response.WithJSON(w, http.StatusOK, balance)
}
