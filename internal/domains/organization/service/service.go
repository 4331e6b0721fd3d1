package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"travelo/config"
	"travelo/infras/otel"
	"travelo/internal/domains/organization/model"
	"travelo/internal/domains/organization/model/dto"
	"travelo/internal/domains/organization/repository"
	policyModel "travelo/internal/domains/policy/model"
	policyRepo "travelo/internal/domains/policy/repository"
	"travelo/shared"
	"travelo/shared/cache"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	"travelo/shared/failure"
	"travelo/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetOrganization    = constant.CachePrefixOrganization + ":get"
	cacheGetAllOrganization = constant.CachePrefixOrganization + ":gets"
	cacheCountOrganization  = constant.CachePrefixOrganization + ":count"
)

type Organization interface {
	Create(ctx context.Context, req dto.CreateOrganizationRequest) (dto.OrganizationResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetOrganizationsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.OrganizationResponse, error)
	Update(ctx context.Context, req dto.UpdateOrganizationRequest, id string) error
	SetDefaultPolicy(ctx context.Context, req dto.DefaultPolicyRequest, id string) error
}

type serviceImpl struct {
	repo       repository.Organization
	policyRepo policyRepo.Policy
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
}

func New(repo repository.Organization, policyRepo policyRepo.Policy, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Organization {
	return &serviceImpl{
		repo:       repo,
		policyRepo: policyRepo,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
	}
}

// authorize limits tenant users to their own organization.
func authorize(ctx context.Context, id string) error {
	actor := shared.ActorFromContext(ctx)

	if actor.HasRole(constant.RoleSuperAdmin) || actor.OrganizationID == id {
		return nil
	}

	return failure.ResourceRestrictedError
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetOrganization, id)); err != nil {
				log.Error().Err(err).Msg("failed to delete organization from cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllOrganization)
		shared.InvalidateCaches(c, s.cache, cacheCountOrganization)
	}()
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateOrganizationRequest) (res dto.OrganizationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	organization := req.ToModel(shared.ActorFromContext(ctx).Username())

	if err = s.repo.Insert(ctx, organization); err != nil {
		log.Error().Err(err).Msg("failed to create organization")

		return res, fmt.Errorf("failed to create organization: %w", err)
	}

	s.invalidate(ctx, constant.Empty)

	res.FromModel(organization)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetOrganizationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllOrganization, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for organizations")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count organizations")

		return res, fmt.Errorf("failed to count organizations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get organizations")

		return res, fmt.Errorf("failed to get organizations: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save organizations to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountOrganization, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count organizations")

		return res, fmt.Errorf("failed to count organizations: %w", err)
	}

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save organization count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.OrganizationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = authorize(ctx, id); err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(cacheGetOrganization, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for organization")

		return res, nil
	}

	organization, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get organization")

		return res, fmt.Errorf("failed to get organization: %w", err)
	}

	if organization.ID == constant.Empty {
		return res, failure.NotFound("organization not found") // nolint:wrapcheck
	}

	res.FromModel(organization)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save organization to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateOrganizationRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = authorize(ctx, id); err != nil {
		return err
	}

	if err = s.exist(ctx, id); err != nil {
		return err
	}

	updatedFields := shared.TransformFields(req, shared.ActorFromContext(ctx).Username())

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update organization")

		return fmt.Errorf("failed to update organization: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) SetDefaultPolicy(ctx context.Context, req dto.DefaultPolicyRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetDefaultPolicy")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = authorize(ctx, id); err != nil {
		return err
	}

	if err = s.exist(ctx, id); err != nil {
		return err
	}

	if req.PolicyID != nil {
		filter := shared.FilterByIDInOrganization(*req.PolicyID, policyModel.FieldID, id, policyModel.FieldOrganizationID, policyModel.TableName)

		exist, err := s.policyRepo.Exist(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to check if policy exists")

			return fmt.Errorf("failed to check if policy exists: %w", err)
		}

		if !exist {
			return failure.InvalidInput("policy does not belong to the organization") // nolint:wrapcheck
		}
	}

	updatedFields := map[string]any{
		model.FieldDefaultPolicyID: req.PolicyID,
		constant.FieldModifiedAt:   timezone.Now(),
		constant.FieldModifiedBy:   shared.ActorFromContext(ctx).Username(),
	}

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to set default policy")

		return fmt.Errorf("failed to set default policy: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) exist(ctx context.Context, id string) error {
	exist, err := s.repo.Exist(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if organization exists")

		return fmt.Errorf("failed to check if organization exists: %w", err)
	}

	if !exist {
		return failure.NotFound("organization not found") // nolint:wrapcheck
	}

	return nil
}
