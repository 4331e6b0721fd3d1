package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"travelo/config"
	"travelo/infras/kafka"
	kafkaMocks "travelo/infras/kafka/mocks"
	otelMocks "travelo/infras/otel/mocks"
	bookingMocks "travelo/internal/domains/booking/mocks"
	"travelo/internal/domains/booking/model"
	"travelo/internal/domains/booking/model/dto"
	"travelo/internal/domains/booking/service"
	creditModel "travelo/internal/domains/credit/model"
	creditDto "travelo/internal/domains/credit/model/dto"
	creditMocks "travelo/internal/domains/credit/service/mocks"
	"travelo/internal/domains/policy/engine"
	policyMocks "travelo/internal/domains/policy/service/mocks"
	"travelo/shared"
	cacheMocks "travelo/shared/cache/mocks"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	"travelo/shared/failure"
	gRepo "travelo/shared/repository"
	repoMocks "travelo/shared/repository/mocks"
)

const (
	orgID      = "0b6a4f4e-9d4b-4c61-8f0e-6b7a1d2c3e4f"
	otherOrgID = "9f8e7d6c-5b4a-4321-8fed-cba987654321"
	travelerID = "5b7c2f8e-3f0c-4b59-9a4d-2f6f3c1d9e10"
	managerID  = "7c1d9e10-2f6f-4b59-9a4d-5b7c2f8e3f0c"
	bookingID  = "a1b2c3d4-e5f6-4a5b-8c9d-0e1f2a3b4c5d"
	policyID   = "3c1d9e10-2f6f-4b59-9a4d-5b7c2f8e3f0c"
)

type fixture struct {
	svc    service.Booking
	repo   *bookingMocks.MockBooking
	policy *policyMocks.MockPolicy
	credit *creditMocks.MockCredit
	events chan kafka.Message
	otel   *otelMocks.Otel
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Kafka.Topics.Booking = "booking-events"

	f := fixture{
		repo:   bookingMocks.NewMockBooking(ctrl),
		policy: policyMocks.NewMockPolicy(ctrl),
		credit: creditMocks.NewMockCredit(ctrl),
		events: make(chan kafka.Message, 8),
		otel:   otelMocks.NewOtel(),
	}

	transactor := repoMocks.NewMockTransactor(ctrl)
	transactor.EXPECT().WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()

	cache := cacheMocks.NewMockRedisCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(assert.AnError).AnyTimes()
	cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	kafkaClient := kafkaMocks.NewMockClient(ctrl)
	kafkaClient.EXPECT().SendMessages(gomock.Any(), "booking-events", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			for _, message := range messages {
				select {
				case f.events <- message:
				default:
				}
			}

			return nil
		}).AnyTimes()

	f.svc = service.New(f.repo, transactor, f.policy, f.credit, kafkaClient, cfg, cache, f.otel)

	return f
}

func (f fixture) event(t *testing.T) kafka.Message {
	t.Helper()

	select {
	case message := <-f.events:
		return message
	case <-time.After(2 * time.Second):
		t.Fatal("no booking event published")
	}

	return kafka.Message{}
}

func actorCtx(userID, role string) context.Context {
	return shared.WithActor(context.Background(), shared.Actor{UserID: userID, OrganizationID: orgID, Role: role})
}

func travelerCtx() context.Context {
	return actorCtx(travelerID, constant.RoleTraveler)
}

func managerCtx() context.Context {
	return actorCtx(managerID, constant.RoleManager)
}

func booking(status model.Status, consumed string) model.Booking {
	return model.Booking{
		ID:              bookingID,
		OrganizationID:  orgID,
		UserID:          travelerID,
		BookingType:     "flight",
		TotalPrice:      decimal.RequireFromString("300"),
		Currency:        "USD",
		Status:          status,
		ConsumedCredits: decimal.RequireFromString(consumed),
	}
}

func flightCheckout() dto.CheckoutRequest {
	return dto.CheckoutRequest{
		BookingType: "flight",
		TotalPrice:  decimal.RequireFromString("300"),
		Currency:    "USD",
		CabinClass:  "economy",
	}
}

func TestCheckout_RejectedByPolicy(t *testing.T) {
	f := newFixture(t)

	f.policy.EXPECT().Decide(gomock.Any(), travelerID, gomock.Any()).Return(engine.Decision{
		Outcome:  engine.OutcomeRejected,
		Rule:     engine.RuleCabinClassNotAllowed,
		Reason:   "cabin class business is not permitted",
		PolicyID: policyID,
	}, nil)

	res, err := f.svc.Checkout(travelerCtx(), flightCheckout())

	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	assert.True(t, failure.IsKind(err, failure.KindPolicyViolation))
	assert.Equal(t, engine.OutcomeRejected, res.Decision.Outcome)
	assert.Empty(t, res.Booking.ID)

	scope := f.otel.Scope(constant.OtelServiceScopeName + ".Checkout")
	require.NotNil(t, scope)
	require.Len(t, scope.Errors, 1)
	assert.ErrorIs(t, scope.Errors[0], err)
	assert.Equal(t, string(engine.OutcomeRejected), scope.Attributes["booking.outcome"])
	assert.True(t, scope.Ended)
}

func TestCheckout_DecideError(t *testing.T) {
	f := newFixture(t)

	f.policy.EXPECT().Decide(gomock.Any(), travelerID, gomock.Any()).Return(engine.Decision{}, failure.InvalidInput("currency must be USD"))

	_, err := f.svc.Checkout(travelerCtx(), flightCheckout())

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestCheckout_RequiresApproval(t *testing.T) {
	f := newFixture(t)

	f.policy.EXPECT().Decide(gomock.Any(), travelerID, gomock.Any()).Return(engine.Decision{
		Outcome:  engine.OutcomeRequiresApproval,
		Rule:     engine.RuleApprovalThreshold,
		Reason:   "amount above 250.00 needs manager approval",
		PolicyID: policyID,
	}, nil)

	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b model.Booking) error {
		assert.Equal(t, model.StatusPendingApproval, b.Status)
		assert.Equal(t, travelerID, b.UserID)
		assert.Equal(t, orgID, b.OrganizationID)
		require.NotNil(t, b.PolicyID)
		assert.Equal(t, policyID, *b.PolicyID)
		assert.True(t, b.ConsumedCredits.IsZero())

		return nil
	})

	res, err := f.svc.Checkout(travelerCtx(), flightCheckout())

	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingApproval, res.Booking.Status)
	assert.Equal(t, engine.OutcomeRequiresApproval, res.Decision.Outcome)

	message := f.event(t)
	assert.Equal(t, dto.EventApprovalRequested, message.Type)
	assert.Equal(t, res.Booking.ID, message.Key)

	event, ok := message.Value.(dto.Event)
	require.True(t, ok)
	assert.Equal(t, string(engine.RuleApprovalThreshold), event.Rule)
}

func TestCheckout_ApprovedConsumesCredits(t *testing.T) {
	f := newFixture(t)

	f.policy.EXPECT().Decide(gomock.Any(), travelerID, gomock.Any()).Return(engine.Decision{
		Outcome:  engine.OutcomeApproved,
		PolicyID: policyID,
	}, nil)

	var inserted model.Booking

	gomock.InOrder(
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b model.Booking) error {
			assert.Equal(t, model.StatusPending, b.Status)

			inserted = b

			return nil
		}),
		f.credit.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req creditDto.ConsumeRequest) (creditModel.Transaction, error) {
			assert.Equal(t, inserted.ID, req.BookingID)
			assert.Equal(t, travelerID, req.UserID)
			assert.Equal(t, orgID, req.OrganizationID)
			assert.True(t, req.Amount.Equal(decimal.RequireFromString("300")))

			return creditModel.Transaction{}, nil
		}),
		f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, changes map[string]any, _ gDto.FilterGroup) (int64, error) {
			assert.Equal(t, model.StatusConfirmed, changes[model.FieldStatus])
			assert.Equal(t, decimal.RequireFromString("300"), changes[model.FieldConsumedCredits])

			return 1, nil
		}),
		f.credit.EXPECT().InvalidateBalances(gomock.Any()),
	)

	res, err := f.svc.Checkout(travelerCtx(), flightCheckout())

	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, res.Booking.Status)
	assert.True(t, res.Booking.ConsumedCredits.Equal(decimal.RequireFromString("300")))
	assert.Equal(t, dto.EventConfirmed, f.event(t).Type)
}

func TestCheckout_ApprovedWithoutCredit(t *testing.T) {
	f := newFixture(t)

	f.policy.EXPECT().Decide(gomock.Any(), travelerID, gomock.Any()).Return(engine.Decision{Outcome: engine.OutcomeApproved}, nil)
	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	f.credit.EXPECT().Consume(gomock.Any(), gomock.Any()).
		Return(creditModel.Transaction{}, failure.InsufficientUserCredits("user has 100.00 available"))

	_, err := f.svc.Checkout(travelerCtx(), flightCheckout())

	require.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindInsufficientUserCredits))
}

func TestApprove(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		locked   model.Booking
		lockErr  error
		consume  bool
		affected int64
		wantCode int
		wantKind failure.Kind
	}{
		{
			name:     "manager approves a pending booking",
			ctx:      managerCtx(),
			locked:   booking(model.StatusPendingApproval, "0"),
			consume:  true,
			affected: 1,
		},
		{
			name:     "own booking",
			ctx:      actorCtx(travelerID, constant.RoleManager),
			locked:   booking(model.StatusPendingApproval, "0"),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "already confirmed",
			ctx:      managerCtx(),
			locked:   booking(model.StatusConfirmed, "300"),
			wantCode: http.StatusConflict,
		},
		{
			name:     "already rejected",
			ctx:      managerCtx(),
			locked:   booking(model.StatusRejected, "0"),
			wantCode: http.StatusConflict,
		},
		{
			name:     "unknown booking",
			ctx:      managerCtx(),
			lockErr:  gRepo.ErrNotFound,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "status changed underneath",
			ctx:      managerCtx(),
			locked:   booking(model.StatusPendingApproval, "0"),
			consume:  true,
			affected: 0,
			wantCode: http.StatusConflict,
			wantKind: failure.KindConcurrentModification,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(tt.locked, tt.lockErr)

			if tt.consume {
				f.credit.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(creditModel.Transaction{}, nil)
				f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, changes map[string]any, filter gDto.FilterGroup) (int64, error) {
						assert.Equal(t, managerID, changes[model.FieldApprovedBy])
						assert.Contains(t, changes, model.FieldApprovedAt)

						where, args := filter.GetWhereClause()
						assert.Contains(t, where, "status = :current_status")
						assert.Equal(t, model.StatusPendingApproval, args["current_status"])

						return tt.affected, nil
					})
			}

			if tt.wantCode == 0 {
				f.credit.EXPECT().InvalidateBalances(gomock.Any())
			}

			res, err := f.svc.Approve(tt.ctx, bookingID)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantKind != "" {
					assert.True(t, failure.IsKind(err, tt.wantKind))
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusConfirmed, res.Status)
			assert.True(t, res.ConsumedCredits.Equal(decimal.RequireFromString("300")))
			require.NotNil(t, res.ApprovedBy)
			assert.Equal(t, managerID, *res.ApprovedBy)
			assert.NotNil(t, res.ApprovedAt)
			assert.Equal(t, dto.EventConfirmed, f.event(t).Type)
		})
	}
}

func TestApprove_InsufficientOrgCredits(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(booking(model.StatusPendingApproval, "0"), nil)
	f.credit.EXPECT().Consume(gomock.Any(), gomock.Any()).
		Return(creditModel.Transaction{}, failure.InsufficientOrgCredits("organization has 10.00 available"))

	_, err := f.svc.Approve(managerCtx(), bookingID)

	require.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindInsufficientOrgCredits))
}

func TestReject(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(booking(model.StatusPendingApproval, "0"), nil)
	f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, changes map[string]any, _ gDto.FilterGroup) (int64, error) {
			assert.Equal(t, model.StatusRejected, changes[model.FieldStatus])
			assert.Equal(t, "over budget", changes[model.FieldRejectionReason])

			return 1, nil
		})

	res, err := f.svc.Reject(managerCtx(), bookingID, dto.RejectRequest{Reason: "over budget"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, res.Status)
	require.NotNil(t, res.RejectionReason)
	assert.Equal(t, "over budget", *res.RejectionReason)

	message := f.event(t)
	assert.Equal(t, dto.EventRejected, message.Type)
}

func TestReject_NotPending(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(booking(model.StatusConfirmed, "300"), nil)

	_, err := f.svc.Reject(managerCtx(), bookingID, dto.RejectRequest{Reason: "too late"})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		locked   model.Booking
		refund   string
		wantCode int
	}{
		{
			name:   "owner cancels a confirmed booking",
			ctx:    travelerCtx(),
			locked: booking(model.StatusConfirmed, "300"),
			refund: "300",
		},
		{
			name:   "owner cancels while waiting for approval",
			ctx:    travelerCtx(),
			locked: booking(model.StatusPendingApproval, "0"),
		},
		{
			name:   "company admin cancels someone else's booking",
			ctx:    actorCtx(managerID, constant.RoleCompanyAdmin),
			locked: booking(model.StatusConfirmed, "300"),
			refund: "300",
		},
		{
			name:     "another traveler",
			ctx:      actorCtx(managerID, constant.RoleTraveler),
			locked:   booking(model.StatusConfirmed, "300"),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "manager is not the owner",
			ctx:      managerCtx(),
			locked:   booking(model.StatusConfirmed, "300"),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "already cancelled",
			ctx:      travelerCtx(),
			locked:   booking(model.StatusCancelled, "0"),
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(tt.locked, nil)

			if tt.refund != "" {
				f.credit.EXPECT().Refund(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req creditDto.RefundRequest) (creditModel.Transaction, error) {
						assert.True(t, req.Amount.Equal(decimal.RequireFromString(tt.refund)))
						assert.Equal(t, bookingID, req.BookingID)
						assert.Equal(t, travelerID, req.UserID)
						assert.Equal(t, "plans changed", req.Reason)

						return creditModel.Transaction{}, nil
					})
			}

			if tt.wantCode == 0 {
				f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, changes map[string]any, _ gDto.FilterGroup) (int64, error) {
						assert.Equal(t, model.StatusCancelled, changes[model.FieldStatus])
						assert.Equal(t, decimal.Zero, changes[model.FieldConsumedCredits])

						return 1, nil
					})
			}

			if tt.wantCode == 0 && tt.refund != "" {
				f.credit.EXPECT().InvalidateBalances(gomock.Any())
			}

			res, err := f.svc.Cancel(tt.ctx, bookingID, dto.CancelRequest{Reason: "plans changed"})

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, res.Status)
			assert.True(t, res.ConsumedCredits.IsZero())
			assert.Equal(t, dto.EventCancelled, f.event(t).Type)
		})
	}
}

func TestCancel_RefundFailureKeepsBooking(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(booking(model.StatusConfirmed, "300"), nil)
	f.credit.EXPECT().Refund(gomock.Any(), gomock.Any()).
		Return(creditModel.Transaction{}, failure.ConcurrentModification("lock timeout"))

	_, err := f.svc.Cancel(travelerCtx(), bookingID, dto.CancelRequest{})

	require.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindConcurrentModification))
}

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		stored   model.Booking
		wantCode int
	}{
		{name: "owner", ctx: travelerCtx(), stored: booking(model.StatusConfirmed, "300")},
		{name: "manager", ctx: managerCtx(), stored: booking(model.StatusConfirmed, "300")},
		{
			name:     "another traveler",
			ctx:      actorCtx(managerID, constant.RoleTraveler),
			stored:   booking(model.StatusConfirmed, "300"),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "other organization",
			ctx:      shared.WithActor(context.Background(), shared.Actor{UserID: managerID, OrganizationID: otherOrgID, Role: constant.RoleManager}),
			stored:   model.Booking{},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.stored, nil)

			res, err := f.svc.Get(tt.ctx, bookingID)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, bookingID, res.ID)
		})
	}
}

func TestGetAll_TravelerSeesOwnBookings(t *testing.T) {
	f := newFixture(t)

	params := gDto.QueryParams{Page: 1, Limit: 10}

	checkFilter := func(filter gDto.FilterGroup) {
		_, args := filter.GetWhereClause()
		assert.Equal(t, travelerID, args[model.FieldUserID])
		assert.Equal(t, orgID, args[model.FieldOrganizationID])
	}

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
		checkFilter(filter)

		return 1, nil
	})
	f.repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
			checkFilter(filter)

			return []model.Booking{booking(model.StatusConfirmed, "300")}, nil
		})

	res, err := f.svc.GetAll(travelerCtx(), params, dto.BookingFilter{UserID: managerID})

	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Len(t, res.Bookings, 1)
}

func TestListApprovals(t *testing.T) {
	f := newFixture(t)

	params := gDto.QueryParams{Page: 1, Limit: 10}

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
		_, args := filter.GetWhereClause()
		assert.Equal(t, string(model.StatusPendingApproval), args[model.FieldStatus])
		assert.NotContains(t, args, model.FieldUserID)

		return 2, nil
	})
	f.repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return([]model.Booking{
		booking(model.StatusPendingApproval, "0"),
		booking(model.StatusPendingApproval, "0"),
	}, nil)

	res, err := f.svc.ListApprovals(managerCtx(), params)

	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalData)
	assert.Equal(t, 1, res.TotalPage)
}
