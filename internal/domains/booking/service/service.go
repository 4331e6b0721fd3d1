package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"travelo/config"
	"travelo/infras/kafka"
	"travelo/infras/otel"
	"travelo/internal/domains/booking/model"
	"travelo/internal/domains/booking/model/dto"
	"travelo/internal/domains/booking/repository"
	creditDto "travelo/internal/domains/credit/model/dto"
	creditService "travelo/internal/domains/credit/service"
	"travelo/internal/domains/policy/engine"
	policyService "travelo/internal/domains/policy/service"
	"travelo/shared"
	"travelo/shared/cache"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	"travelo/shared/failure"
	gRepo "travelo/shared/repository"
	"travelo/shared/timezone"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	cacheGetBooking    = constant.CachePrefixBooking + ":get"
	cacheGetAllBooking = constant.CachePrefixBooking + ":gets"
	cacheCountBooking  = constant.CachePrefixBooking + ":count"
)

type Booking interface {
	// Checkout evaluates the booking against the traveler's policy and records it. An approved
	// booking is confirmed and paid from the traveler's credit in one transaction.
	Checkout(ctx context.Context, req dto.CheckoutRequest) (dto.CheckoutResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter dto.BookingFilter) (dto.GetBookingsResponse, error)
	// ListApprovals lists the organization's bookings waiting for a manager.
	ListApprovals(ctx context.Context, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	Approve(ctx context.Context, id string) (dto.BookingResponse, error)
	Reject(ctx context.Context, id string, req dto.RejectRequest) (dto.BookingResponse, error)
	// Cancel refunds whatever the booking consumed.
	Cancel(ctx context.Context, id string, req dto.CancelRequest) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo       repository.Booking
	transactor gRepo.Transactor
	policy     policyService.Policy
	credit     creditService.Credit
	kafka      kafka.Client
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
}

func New(
	repo repository.Booking,
	transactor gRepo.Transactor,
	policy policyService.Policy,
	credit creditService.Credit,
	kafka kafka.Client,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:       repo,
		transactor: transactor,
		policy:     policy,
		credit:     credit,
		kafka:      kafka,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
	}
}

func (s *serviceImpl) Checkout(ctx context.Context, req dto.CheckoutRequest) (res dto.CheckoutResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Checkout")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)

	decision, err := s.policy.Decide(ctx, actor.UserID, req.ToEngine())
	if err != nil {
		return res, fmt.Errorf("failed to evaluate booking: %w", err)
	}

	scope.SetAttributes(map[string]any{
		"booking.outcome": string(decision.Outcome),
		"booking.rule":    string(decision.Rule),
	})

	res.Decision = decision

	switch decision.Outcome {
	case engine.OutcomeRejected:
		log.Info().Str("user_id", actor.UserID).Str("rule", string(decision.Rule)).Msg("booking rejected by policy")

		return res, decision.Err() //nolint:wrapcheck
	case engine.OutcomeRequiresApproval:
		booking := req.ToModel(actor, decision.PolicyID, model.StatusPendingApproval)

		if err = s.repo.Insert(ctx, booking); err != nil {
			log.Error().Err(err).Msg("failed to create booking")

			return res, fmt.Errorf("failed to create booking: %w", err)
		}

		s.afterCommit(ctx, booking, dto.EventApprovalRequested, string(decision.Rule), decision.Reason, false)

		res.Booking.FromModel(booking)

		return res, nil
	}

	booking := req.ToModel(actor, decision.PolicyID, model.StatusPending)

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Insert(ctx, booking); err != nil {
			return err //nolint:wrapcheck
		}

		confirmed, err := s.confirm(ctx, booking, nil)
		if err != nil {
			return err
		}

		booking = confirmed

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", actor.UserID).Msg("failed to check out booking")

		return res, fmt.Errorf("failed to check out booking: %w", gRepo.TranslateError(err))
	}

	s.afterCommit(ctx, booking, dto.EventConfirmed, "", "", true)

	res.Booking.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)
	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, s.authorizeRead(actor, res.OrganizationID, res.UserID)
	}

	booking, err := s.repo.Get(ctx, s.filterByID(ctx, id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, s.authorizeRead(actor, res.OrganizationID, res.UserID)
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter dto.BookingFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)
	if actor.HasRole(constant.RoleTraveler) {
		filter.UserID = actor.UserID
	}

	return s.list(ctx, params, s.buildFilter(actor, filter))
}

func (s *serviceImpl) ListApprovals(ctx context.Context, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListApprovals")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)

	return s.list(ctx, params, s.buildFilter(actor, dto.BookingFilter{Status: string(model.StatusPendingApproval)}))
}

func (s *serviceImpl) Approve(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Approve")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)

	var booking model.Booking

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.lock(ctx, id)
		if err != nil {
			return err
		}

		if locked.UserID == actor.UserID {
			return failure.Forbidden("you cannot approve your own booking") // nolint:wrapcheck
		}

		if locked.Status != model.StatusPendingApproval {
			return locked.Status.TransitionTo(model.StatusConfirmed) //nolint:wrapcheck
		}

		now := timezone.Now()

		booking, err = s.confirm(ctx, locked, map[string]any{
			model.FieldApprovedAt: now,
			model.FieldApprovedBy: actor.UserID,
		})
		if err != nil {
			return err
		}

		booking.ApprovedAt = &now
		booking.ApprovedBy = &actor.UserID

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to approve booking")

		return res, fmt.Errorf("failed to approve booking: %w", gRepo.TranslateError(err))
	}

	s.afterCommit(ctx, booking, dto.EventConfirmed, "", "", true)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Reject(ctx context.Context, id string, req dto.RejectRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reject")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)

	var booking model.Booking

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.lock(ctx, id)
		if err != nil {
			return err
		}

		if locked.UserID == actor.UserID {
			return failure.Forbidden("you cannot reject your own booking") // nolint:wrapcheck
		}

		if locked.Status != model.StatusPendingApproval {
			return locked.Status.TransitionTo(model.StatusRejected) //nolint:wrapcheck
		}

		booking, err = s.leave(ctx, locked, model.StatusRejected, req.Reason, map[string]any{
			model.FieldRejectionReason: req.Reason,
		})
		if err != nil {
			return err
		}

		booking.RejectionReason = &req.Reason

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to reject booking")

		return res, fmt.Errorf("failed to reject booking: %w", gRepo.TranslateError(err))
	}

	s.afterCommit(ctx, booking, dto.EventRejected, "", req.Reason, false)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)

	var (
		booking  model.Booking
		refunded bool
	)

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.lock(ctx, id)
		if err != nil {
			return err
		}

		if locked.UserID != actor.UserID && !actor.HasRole(constant.RoleCompanyAdmin, constant.RoleAdmin) {
			return failure.ResourceRestrictedError
		}

		refunded = locked.ConsumedCredits.IsPositive()

		booking, err = s.leave(ctx, locked, model.StatusCancelled, req.Reason, nil)

		return err
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to cancel booking")

		return res, fmt.Errorf("failed to cancel booking: %w", gRepo.TranslateError(err))
	}

	s.afterCommit(ctx, booking, dto.EventCancelled, "", req.Reason, refunded)

	res.FromModel(booking)

	return res, nil
}

// confirm moves a locked or freshly inserted booking to confirmed and charges its price to the
// traveler. It must run inside a transaction.
func (s *serviceImpl) confirm(ctx context.Context, booking model.Booking, extra map[string]any) (model.Booking, error) {
	if err := booking.Status.TransitionTo(model.StatusConfirmed); err != nil {
		return booking, err //nolint:wrapcheck
	}

	_, err := s.credit.Consume(ctx, creditDto.ConsumeRequest{
		OrganizationID: booking.OrganizationID,
		UserID:         booking.UserID,
		BookingID:      booking.ID,
		Amount:         booking.TotalPrice,
	})
	if err != nil {
		return booking, err //nolint:wrapcheck
	}

	changes := map[string]any{model.FieldConsumedCredits: booking.TotalPrice}
	for key, value := range extra {
		changes[key] = value
	}

	updated, err := s.transition(ctx, booking, model.StatusConfirmed, changes)
	if err != nil {
		return booking, err
	}

	updated.ConsumedCredits = booking.TotalPrice

	return updated, nil
}

// leave moves a booking into a final status and refunds any consumed credit.
func (s *serviceImpl) leave(ctx context.Context, booking model.Booking, next model.Status, reason string, extra map[string]any) (model.Booking, error) {
	if err := booking.Status.TransitionTo(next); err != nil {
		return booking, err //nolint:wrapcheck
	}

	consumed := booking.ConsumedCredits

	if consumed.IsPositive() {
		if reason == constant.Empty {
			reason = fmt.Sprintf("booking %s", next)
		}

		_, err := s.credit.Refund(ctx, creditDto.RefundRequest{
			OrganizationID: booking.OrganizationID,
			UserID:         booking.UserID,
			BookingID:      booking.ID,
			Amount:         consumed,
			Reason:         reason,
		})
		if err != nil {
			return booking, err //nolint:wrapcheck
		}
	}

	changes := map[string]any{model.FieldConsumedCredits: decimal.Zero}
	for key, value := range extra {
		changes[key] = value
	}

	updated, err := s.transition(ctx, booking, next, changes)
	if err != nil {
		return booking, err
	}

	updated.ConsumedCredits = decimal.Zero

	return updated, nil
}

// transition writes the new status only if the row still carries the status it was read with.
func (s *serviceImpl) transition(ctx context.Context, booking model.Booking, next model.Status, changes map[string]any) (model.Booking, error) {
	actor := shared.ActorFromContext(ctx)
	now := timezone.Now()

	changes[model.FieldStatus] = next
	changes[constant.FieldModifiedAt] = now
	changes[constant.FieldModifiedBy] = actor.Username()

	filter := shared.FilterByIDInOrganization(booking.ID, model.FieldID, booking.OrganizationID, model.FieldOrganizationID, model.TableName)
	filter.Filters = append(filter.Filters, gDto.Filter{
		ArgName:  "current_status",
		Field:    model.FieldStatus,
		Value:    booking.Status,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	})

	affected, err := s.repo.UpdateAffected(ctx, changes, filter)
	if err != nil {
		return booking, err //nolint:wrapcheck
	}

	if affected == 0 {
		return booking, failure.ConcurrentModification("booking changed while it was being updated") // nolint:wrapcheck
	}

	booking.Status = next
	booking.ModifiedAt = now
	booking.ModifiedBy = actor.Username()

	return booking, nil
}

func (s *serviceImpl) lock(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.GetForUpdate(ctx, s.filterByID(ctx, id))
	if errors.Is(err, gRepo.ErrNotFound) {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return booking, err //nolint:wrapcheck
}

func (s *serviceImpl) list(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.count(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(bookings, total, params.Limit)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (int, error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, params, filter)

	var total int
	if err := s.cache.Get(ctx, cacheKey, &total); err == nil {
		return total, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, total, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return total, nil
}

func (s *serviceImpl) filterByID(ctx context.Context, id string) gDto.FilterGroup {
	actor := shared.ActorFromContext(ctx)

	return shared.FilterByIDInOrganization(id, model.FieldID, actor.OrganizationID, model.FieldOrganizationID, model.TableName)
}

func (s *serviceImpl) buildFilter(actor shared.Actor, filter dto.BookingFilter) gDto.FilterGroup {
	group := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldOrganizationID, Value: actor.OrganizationID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	group.AddIfSet(
		gDto.Filter{Field: model.FieldUserID, Value: filter.UserID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldStatus, Value: filter.Status, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldBookingType, Value: filter.BookingType, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	)

	return group
}

// authorizeRead lets travelers see their own bookings and approvers see the organization's.
func (s *serviceImpl) authorizeRead(actor shared.Actor, organizationID, userID string) error {
	if organizationID != actor.OrganizationID {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if userID == actor.UserID || actor.HasRole(constant.RoleManager, constant.RoleCompanyAdmin, constant.RoleAdmin) {
		return nil
	}

	return failure.ResourceRestrictedError
}

// afterCommit drops cached bookings and announces the change. Both are best effort. When the
// transaction moved credit, cached balances are dropped too, now that the new ones are visible.
func (s *serviceImpl) afterCommit(ctx context.Context, booking model.Booking, eventType, rule, reason string, creditMoved bool) {
	actor := shared.ActorFromContext(ctx)

	if creditMoved {
		s.credit.InvalidateBalances(ctx)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, booking.ID)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)

		event := dto.Event{}
		event.FromModel(booking, actor.Username())
		event.Rule = rule

		if reason != constant.Empty {
			event.Reason = reason
		}

		err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.Booking, kafka.Message{
			Key:   booking.ID,
			Type:  eventType,
			Value: event,
		})
		if err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to publish booking event")
		}
	}()
}
