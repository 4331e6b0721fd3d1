package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"travelo/config"
	"travelo/infras/otel"
	orgModel "travelo/internal/domains/organization/model"
	orgRepo "travelo/internal/domains/organization/repository"
	"travelo/internal/domains/policy/engine"
	"travelo/internal/domains/policy/model"
	"travelo/internal/domains/policy/model/dto"
	"travelo/internal/domains/policy/repository"
	userModel "travelo/internal/domains/user/model"
	userRepo "travelo/internal/domains/user/repository"
	"travelo/shared"
	"travelo/shared/cache"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	"travelo/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetPolicy    = constant.CachePrefixPolicy + ":get"
	cacheGetAllPolicy = constant.CachePrefixPolicy + ":gets"
	cacheCountPolicy  = constant.CachePrefixPolicy + ":count"
)

type Policy interface {
	Create(ctx context.Context, req dto.PolicyRequest) (dto.PolicyResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPoliciesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.PolicyResponse, error)
	Update(ctx context.Context, req dto.PolicyRequest, id string) error
	Delete(ctx context.Context, id string) error

	// Resolve returns the policy the user books under.
	Resolve(ctx context.Context, userID string) (engine.Policy, error)
	// Decide resolves the user's policy and evaluates the booking against it.
	Decide(ctx context.Context, userID string, req engine.Request) (engine.Decision, error)
	// Evaluate is a dry run of Decide for the caller or a traveler of the caller's organization.
	Evaluate(ctx context.Context, req dto.EvaluateRequest) (dto.EvaluateResponse, error)
}

type serviceImpl struct {
	repo         repository.Policy
	userRepo     userRepo.User
	orgRepo      orgRepo.Organization
	evaluator    *engine.Evaluator
	inactiveMode engine.InactiveMode
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(repo repository.Policy, userRepo userRepo.User, orgRepo orgRepo.Organization, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Policy {
	mode, err := engine.ParseInactiveMode(cfg.Policy.InactiveMode)
	if err != nil {
		log.Warn().Err(err).Msg("falling back to unrestricted mode for inactive policies")

		mode = engine.InactiveUnrestricted
	}

	return &serviceImpl{
		repo:         repo,
		userRepo:     userRepo,
		orgRepo:      orgRepo,
		evaluator:    engine.New(cfg.Credit.Currency),
		inactiveMode: mode,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

func (s *serviceImpl) filterByID(ctx context.Context, id string) gDto.FilterGroup {
	actor := shared.ActorFromContext(ctx)

	return shared.FilterByIDInOrganization(id, model.FieldID, actor.OrganizationID, model.FieldOrganizationID, model.TableName)
}

// scope confines a listing to the caller's organization.
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

// invalidate drops the single-policy entry before returning so a later Get sees the write.
// List and count pages are cleared in the background.
func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	c := context.WithoutCancel(ctx)

	if id != "" {
		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetPolicy, id)); err != nil {
			log.Error().Err(err).Str("policy_id", id).Msg("failed to delete policy from cache")
		}
	}

	go func() {
		shared.InvalidateCaches(c, s.cache, cacheGetAllPolicy)
		shared.InvalidateCaches(c, s.cache, cacheCountPolicy)
	}()
}

func (s *serviceImpl) Create(ctx context.Context, req dto.PolicyRequest) (res dto.PolicyResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)
	policy := req.ToModel(actor.OrganizationID, actor.Username())

	if err = s.repo.Insert(ctx, policy); err != nil {
		log.Error().Err(err).Msg("failed to create policy")

		return res, fmt.Errorf("failed to create policy: %w", err)
	}

	s.invalidate(ctx, "")

	res.FromModel(policy)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPoliciesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	filter = s.scope(ctx, filter)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllPolicy, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for policies")

		return res, nil
	}

	total, err := s.count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count policies")

		return res, fmt.Errorf("failed to count policies: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get policies")

		return res, fmt.Errorf("failed to get policies: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save policies to cache")
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
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountPolicy, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count policies")

		return res, fmt.Errorf("failed to count policies: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save policy count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PolicyResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	policy, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if policy.ID == constant.Empty || policy.OrganizationID != shared.ActorFromContext(ctx).OrganizationID {
		return res, failure.NotFound("policy not found") // nolint:wrapcheck
	}

	res.FromModel(policy)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.PolicyRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	filter := s.filterByID(ctx, id)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if policy exists")

		return fmt.Errorf("failed to check if policy exists: %w", err)
	}

	if !exist {
		return failure.NotFound("policy not found") // nolint:wrapcheck
	}

	if err = s.repo.Update(ctx, req.ToUpdateMap(shared.ActorFromContext(ctx).Username()), filter); err != nil {
		log.Error().Err(err).Msg("failed to update policy")

		return fmt.Errorf("failed to update policy: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	filter := s.filterByID(ctx, id)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if policy exists")

		return fmt.Errorf("failed to check if policy exists: %w", err)
	}

	if !exist {
		return failure.NotFound("policy not found") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete policy")

		return fmt.Errorf("failed to delete policy: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Resolve(ctx context.Context, userID string) (res engine.Policy, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Resolve")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user, err := s.userRepo.Get(ctx, shared.FilterByID(userID, userModel.FieldID, userModel.TableName),
		userModel.FieldID, userModel.FieldOrganizationID, userModel.FieldPolicyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound("user not found") // nolint:wrapcheck
	}

	return s.resolve(ctx, user)
}

func (s *serviceImpl) resolve(ctx context.Context, user userModel.User) (engine.Policy, error) {
	org, err := s.orgRepo.Get(ctx, shared.FilterByID(user.OrganizationID, orgModel.FieldID, orgModel.TableName),
		orgModel.FieldID, orgModel.FieldDefaultPolicyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get organization")

		return engine.Policy{}, fmt.Errorf("failed to get organization: %w", err)
	}

	assigned, err := s.fetch(ctx, user.PolicyID)
	if err != nil {
		return engine.Policy{}, err
	}

	orgDefault, err := s.fetch(ctx, org.DefaultPolicyID)
	if err != nil {
		return engine.Policy{}, err
	}

	policy := engine.Resolve(assigned.Candidate(), orgDefault.Candidate(), s.inactiveMode)

	log.Debug().
		Str("user_id", user.ID).
		Str("policy_id", policy.ID).
		Bool("suspended", policy.Suspended).
		Msg("resolved travel policy")

	return policy, nil
}

func (s *serviceImpl) Decide(ctx context.Context, userID string, req engine.Request) (res engine.Decision, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Decide")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = s.evaluator.Validate(req); err != nil {
		return res, err
	}

	policy, err := s.Resolve(ctx, userID)
	if err != nil {
		return res, err
	}

	res, err = s.evaluator.Evaluate(policy, req)
	if err != nil {
		return res, err
	}

	scope.SetAttributes(map[string]any{
		"policy.id":       res.PolicyID,
		"policy.outcome":  string(res.Outcome),
		"policy.rule":     string(res.Rule),
		"booking.type":    string(req.BookingType),
		"booking.amount":  req.Amount,
		"booking.nights":  req.Nights,
		"booking.cabin":   string(req.CabinClass),
		"booking.user_id": userID,
	})

	return res, nil
}

func (s *serviceImpl) Evaluate(ctx context.Context, req dto.EvaluateRequest) (res dto.EvaluateResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Evaluate")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)

	userID := req.UserID
	if userID == constant.Empty {
		userID = actor.UserID
	}

	if userID != actor.UserID && !actor.HasRole(constant.RoleManager, constant.RoleCompanyAdmin, constant.RoleAdmin) {
		return res, failure.ResourceRestrictedError
	}

	request := req.ToEngine()
	if err = s.evaluator.Validate(request); err != nil {
		return res, err
	}

	user, err := s.userRepo.Get(ctx,
		shared.FilterByIDInOrganization(userID, userModel.FieldID, actor.OrganizationID, userModel.FieldOrganizationID, userModel.TableName),
		userModel.FieldID, userModel.FieldOrganizationID, userModel.FieldPolicyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound("user not found") // nolint:wrapcheck
	}

	policy, err := s.resolve(ctx, user)
	if err != nil {
		return res, err
	}

	decision, err := s.evaluator.Evaluate(policy, request)
	if err != nil {
		return res, err
	}

	res.FromDecision(decision, policy)

	return res, nil
}

// fetch reads a policy straight from the database. Decisions never go through the cache, so
// an update or deactivation applies to the very next booking.
func (s *serviceImpl) fetch(ctx context.Context, id *string) (res model.Policy, err error) {
	if id == nil || *id == constant.Empty {
		return res, nil
	}

	res, err = s.repo.Get(ctx, shared.FilterByID(*id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("policy_id", *id).Msg("failed to get policy")

		return res, fmt.Errorf("failed to get policy: %w", err)
	}

	return res, nil
}

// load reads a policy by id through the cache. A missing policy is the zero value.
func (s *serviceImpl) load(ctx context.Context, id string) (res model.Policy, err error) {
	cacheKey := shared.BuildCacheKey(cacheGetPolicy, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("policy_id", id).Msg("failed to get policy")

		return res, fmt.Errorf("failed to get policy: %w", err)
	}

	if res.ID == constant.Empty {
		return res, nil
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save policy to cache")
		}
	}()

	return res, nil
}
