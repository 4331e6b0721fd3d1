package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"travelo/config"
	"travelo/infras/otel"
	policyModel "travelo/internal/domains/policy/model"
	policyRepo "travelo/internal/domains/policy/repository"
	"travelo/internal/domains/user/model"
	"travelo/internal/domains/user/model/dto"
	"travelo/internal/domains/user/repository"
	"travelo/shared"
	"travelo/shared/cache"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	"travelo/shared/failure"
	"travelo/shared/password"
	"travelo/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetUser    = constant.CachePrefixUser + ":get"
	cacheGetAllUser = constant.CachePrefixUser + ":gets"
	cacheCountUser  = constant.CachePrefixUser + ":count"
)

type User interface {
	// Create invites a user into the caller's organization.
	Create(ctx context.Context, req dto.CreateUserRequest) (dto.UserResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetUsersResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.UserResponse, error)
	Update(ctx context.Context, req dto.UpdateUserRequest, id string) error
	// Delete deactivates the user. Ledger rows and bookings keep referencing it.
	Delete(ctx context.Context, id string) error
	AssignPolicy(ctx context.Context, req dto.AssignPolicyRequest, id string) error
}

type serviceImpl struct {
	repo       repository.User
	policyRepo policyRepo.Policy
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
}

func New(repo repository.User, policyRepo policyRepo.Policy, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) User {
	return &serviceImpl{
		repo:       repo,
		policyRepo: policyRepo,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
	}
}

func (s *serviceImpl) filterByID(ctx context.Context, id string) gDto.FilterGroup {
	actor := shared.ActorFromContext(ctx)

	return shared.FilterByIDInOrganization(id, model.FieldID, actor.OrganizationID, model.FieldOrganizationID, model.TableName)
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetUser, id)); err != nil {
				log.Error().Err(err).Msg("failed to delete user from cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllUser)
		shared.InvalidateCaches(c, s.cache, cacheCountUser)
	}()
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateUserRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)

	exists, err := s.repo.Exist(ctx, repository.EmailFilter(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return res, fmt.Errorf("failed to check if user exists: %w", err)
	}

	if exists {
		return res, failure.Conflict("email already registered") // nolint:wrapcheck
	}

	if err = s.checkPolicy(ctx, req.PolicyID); err != nil {
		return res, err
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return res, fmt.Errorf("failed to hash password: %w", err)
	}

	user := req.ToModel(actor.OrganizationID, actor.Username(), hashedPassword)

	if err = s.repo.Insert(ctx, user); err != nil {
		log.Error().Err(err).Msg("failed to create user")

		return res, fmt.Errorf("failed to create user: %w", err)
	}

	s.invalidate(ctx, constant.Empty)

	res.FromModel(user)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetUsersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	filter = s.scope(ctx, filter)
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllUser, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for users")

		return res, nil
	}

	total, err := s.count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count users")

		return res, fmt.Errorf("failed to count users: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get users")

		return res, fmt.Errorf("failed to get users: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save users to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return s.count(ctx, req, s.scope(ctx, filter))
}

func (s *serviceImpl) count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountUser, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for user count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count users")

		return res, fmt.Errorf("failed to count users: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save user count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)
	if actor.HasRole(constant.RoleTraveler) && actor.UserID != id {
		return res, failure.ResourceRestrictedError
	}

	cacheKey := shared.BuildCacheKey(cacheGetUser, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil && res.OrganizationID == actor.OrganizationID {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for user")

		return res, nil
	}

	user, err := s.repo.Get(ctx, s.filterByID(ctx, id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound("user not found") // nolint:wrapcheck
	}

	res.FromModel(user)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save user to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateUserRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req == (dto.UpdateUserRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	actor := shared.ActorFromContext(ctx)
	if actor.UserID == id && (req.Role != nil || req.Active != nil) {
		return failure.Forbidden("you cannot change your own role or status") // nolint:wrapcheck
	}

	if err = s.exist(ctx, id); err != nil {
		return err
	}

	updatedFields := shared.TransformFields(req, actor.Username())
	if err = s.repo.Update(ctx, updatedFields, s.filterByID(ctx, id)); err != nil {
		log.Error().Err(err).Msg("failed to update user")

		return fmt.Errorf("failed to update user: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)
	if actor.UserID == id {
		return failure.Forbidden("you cannot deactivate yourself") // nolint:wrapcheck
	}

	if err = s.exist(ctx, id); err != nil {
		return err
	}

	updatedFields := map[string]any{
		model.FieldActive:        false,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor.Username(),
	}

	if err = s.repo.Update(ctx, updatedFields, s.filterByID(ctx, id)); err != nil {
		log.Error().Err(err).Msg("failed to deactivate user")

		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) AssignPolicy(ctx context.Context, req dto.AssignPolicyRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AssignPolicy")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = s.exist(ctx, id); err != nil {
		return err
	}

	if err = s.checkPolicy(ctx, req.PolicyID); err != nil {
		return err
	}

	updatedFields := map[string]any{
		model.FieldPolicyID:      req.PolicyID,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: shared.ActorFromContext(ctx).Username(),
	}

	if err = s.repo.Update(ctx, updatedFields, s.filterByID(ctx, id)); err != nil {
		log.Error().Err(err).Msg("failed to assign policy")

		return fmt.Errorf("failed to assign policy: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) exist(ctx context.Context, id string) error {
	exist, err := s.repo.Exist(ctx, s.filterByID(ctx, id))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return fmt.Errorf("failed to check if user exists: %w", err)
	}

	if !exist {
		return failure.NotFound("user not found") // nolint:wrapcheck
	}

	return nil
}

// checkPolicy rejects a policy from another organization.
func (s *serviceImpl) checkPolicy(ctx context.Context, policyID *string) error {
	if policyID == nil {
		return nil
	}

	actor := shared.ActorFromContext(ctx)
	filter := shared.FilterByIDInOrganization(*policyID, policyModel.FieldID, actor.OrganizationID, policyModel.FieldOrganizationID, policyModel.TableName)

	exist, err := s.policyRepo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if policy exists")

		return fmt.Errorf("failed to check if policy exists: %w", err)
	}

	if !exist {
		return failure.InvalidInput("policy does not belong to the organization") // nolint:wrapcheck
	}

	return nil
}

// scope pins a listing to the caller's organization.
func (s *serviceImpl) scope(ctx context.Context, filter gDto.FilterGroup) gDto.FilterGroup {
	actor := shared.ActorFromContext(ctx)

	scoped := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldOrganizationID, Value: actor.OrganizationID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	if len(filter.Filters) > 0 {
		scoped.Filters = append(scoped.Filters, filter)
	}

	return scoped
}
