package service_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"travelo/config"
	kafkaMocks "travelo/infras/kafka/mocks"
	otelMocks "travelo/infras/otel/mocks"
	"travelo/infras/s3"
	s3Mocks "travelo/infras/s3/mocks"
	creditMocks "travelo/internal/domains/credit/mocks"
	"travelo/internal/domains/credit/model"
	"travelo/internal/domains/credit/model/dto"
	"travelo/internal/domains/credit/service"
	"travelo/shared"
	cacheMocks "travelo/shared/cache/mocks"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	"travelo/shared/failure"
)

const (
	orgID     = "0b6a4f4e-9d4b-4c61-8f0e-6b7a1d2c3e4f"
	adminID   = "7c1d9e10-2f6f-4b59-9a4d-5b7c2f8e3f0c"
	travelID  = "5b7c2f8e-3f0c-4b59-9a4d-2f6f3c1d9e10"
	bookingID = "a1b2c3d4-e5f6-4a5b-8c9d-0e1f2a3b4c5d"
)

type fixture struct {
	svc          service.Credit
	ledger       *memoryLedger
	transactions *creditMocks.MockTransaction
	kafka        *kafkaMocks.MockClient
	s3           *s3Mocks.MockS3
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Kafka.Topics.Credit = "credit-events"
	cfg.Credit.StatementBucket = "statements-bucket"
	cfg.Credit.StatementDir = "statements"

	f := fixture{
		ledger:       newMemoryLedger(),
		transactions: creditMocks.NewMockTransaction(ctrl),
		kafka:        kafkaMocks.NewMockClient(ctrl),
		s3:           s3Mocks.NewMockS3(ctrl),
	}

	cache := cacheMocks.NewMockRedisCache(ctrl)
	cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.kafka.EXPECT().SendMessages(gomock.Any(), "credit-events", gomock.Any()).Return(nil).AnyTimes()

	f.ledger.addOrganization(orgID, "1000", "200")
	f.ledger.addUser(travelID, orgID, "200", "200")

	f.svc = service.New(f.ledger, f.transactions, f.kafka, f.s3, cfg, cache, otelMocks.NewOtel())

	return f
}

func adminCtx() context.Context {
	return shared.WithActor(context.Background(), shared.Actor{UserID: adminID, OrganizationID: orgID, Role: constant.RoleCompanyAdmin})
}

func travelerCtx() context.Context {
	return shared.WithActor(context.Background(), shared.Actor{UserID: travelID, OrganizationID: orgID, Role: constant.RoleTraveler})
}

func amount(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()

	assert.True(t, amount(want).Equal(got), "%s: want %s, got %s", msg, want, got)
}

func TestCreditService_Allocate(t *testing.T) {
	tests := []struct {
		name           string
		req            dto.AllocateRequest
		wantKind       failure.Kind
		wantCode       int
		wantLimit      string
		wantAvailable  string
		wantAllocated  string
		wantEntryDelta string
	}{
		{
			name:           "add",
			req:            dto.AllocateRequest{UserID: travelID, Amount: amount("300"), Mode: model.AllocationAdd},
			wantLimit:      "500",
			wantAvailable:  "500",
			wantAllocated:  "500",
			wantEntryDelta: "300",
		},
		{
			name:           "set lower",
			req:            dto.AllocateRequest{UserID: travelID, Amount: amount("50"), Mode: model.AllocationSet},
			wantLimit:      "50",
			wantAvailable:  "50",
			wantAllocated:  "50",
			wantEntryDelta: "-150",
		},
		{
			name:     "more than the unallocated pool",
			req:      dto.AllocateRequest{UserID: travelID, Amount: amount("800.01"), Mode: model.AllocationAdd},
			wantKind: failure.KindInsufficientOrgCredits,
		},
		{
			name:     "user of another organization",
			req:      dto.AllocateRequest{UserID: "ffffffff-2f6f-4b59-9a4d-5b7c2f8e3f0c", Amount: amount("10"), Mode: model.AllocationAdd},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.ledger.addUser("ffffffff-2f6f-4b59-9a4d-5b7c2f8e3f0c", "other-org", "0", "0")

			res, err := f.svc.Allocate(adminCtx(), tt.req)

			if tt.wantKind != "" || tt.wantCode != 0 {
				require.Error(t, err)

				if tt.wantKind != "" {
					assert.Equal(t, tt.wantKind, failure.GetKind(err))
				}

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}

				assert.Empty(t, f.ledger.entries)

				return
			}

			require.NoError(t, err)
			assertDecimal(t, tt.wantLimit, res.UserCreditLimit.Decimal, "user limit")
			assertDecimal(t, tt.wantAvailable, res.UserAvailable.Decimal, "user available")
			assertDecimal(t, tt.wantAllocated, res.OrganizationAllocated, "org allocated")

			require.Len(t, f.ledger.entries, 1)
			assert.Equal(t, model.TransactionAllocate, f.ledger.entries[0].Type)
			assertDecimal(t, tt.wantEntryDelta, f.ledger.entries[0].Amount, "entry amount")
		})
	}
}

func TestCreditService_Reduce(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Reduce(adminCtx(), dto.ReduceRequest{UserID: travelID, Amount: amount("75.25"), Reason: "project ended"})

	require.NoError(t, err)
	assertDecimal(t, "124.75", res.UserAvailable.Decimal, "user available")
	assertDecimal(t, "124.75", res.UserCreditLimit.Decimal, "user limit")
	assertDecimal(t, "875.25", res.OrganizationUnallocated, "org unallocated")
	assertDecimal(t, "-75.25", f.ledger.entries[0].Amount, "entry amount")

	_, err = f.svc.Reduce(adminCtx(), dto.ReduceRequest{UserID: travelID, Amount: amount("124.76"), Reason: "too much"})

	assert.Equal(t, failure.KindInsufficientUserCredits, failure.GetKind(err))
}

func TestCreditService_ConsumeRefund(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Consume(travelerCtx(), dto.ConsumeRequest{
		OrganizationID: orgID, UserID: travelID, BookingID: bookingID, Amount: amount("120"),
	})

	require.NoError(t, err)
	assert.Equal(t, model.TransactionConsume, tx.Type)
	assertDecimal(t, "-120", tx.Amount, "consume amount")

	org := f.ledger.orgs[orgID]
	assertDecimal(t, "880", org.AvailableCredits, "org available")
	assertDecimal(t, "120", org.UsedCredits, "org used")
	assertDecimal(t, "80", org.AllocatedCredits, "org allocated")
	assertDecimal(t, "80", f.ledger.users[travelID].AvailableCredits, "user available")

	_, err = f.svc.Refund(travelerCtx(), dto.RefundRequest{
		OrganizationID: orgID, UserID: travelID, BookingID: bookingID, Amount: amount("120"), Reason: "cancelled",
	})

	require.NoError(t, err)

	org = f.ledger.orgs[orgID]
	assertDecimal(t, "1000", org.AvailableCredits, "org available")
	assertDecimal(t, "0", org.UsedCredits, "org used")
	assertDecimal(t, "200", org.AllocatedCredits, "org allocated")
	assertDecimal(t, "200", f.ledger.users[travelID].AvailableCredits, "user available")
}

func TestCreditService_Consume_Insufficient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Consume(travelerCtx(), dto.ConsumeRequest{
		OrganizationID: orgID, UserID: travelID, BookingID: bookingID, Amount: amount("200.01"),
	})

	assert.True(t, failure.IsKind(err, failure.KindInsufficientUserCredits))
	assertDecimal(t, "200", f.ledger.users[travelID].AvailableCredits, "user available untouched")
}

// Two bookings of 100 against a balance of 150: exactly one may win.
func TestCreditService_ConcurrentConsume(t *testing.T) {
	f := newFixture(t)
	f.ledger.addUser(travelID, orgID, "200", "150")
	f.ledger.addOrganization(orgID, "1000", "150")

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]error, 2)
	)

	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			<-start

			_, results[i] = f.svc.Consume(travelerCtx(), dto.ConsumeRequest{
				OrganizationID: orgID, UserID: travelID, BookingID: bookingID, Amount: amount("100"),
			})
		}()
	}

	close(start)
	wg.Wait()

	succeeded := 0

	for _, err := range results {
		if err == nil {
			succeeded++

			continue
		}

		assert.True(t, failure.IsKind(err, failure.KindInsufficientUserCredits), "unexpected error %v", err)
	}

	assert.Equal(t, 1, succeeded)
	assertDecimal(t, "50", f.ledger.users[travelID].AvailableCredits, "final user available")
	assertDecimal(t, "100", f.ledger.orgs[orgID].UsedCredits, "org used")
}

func TestCreditService_Fund(t *testing.T) {
	f := newFixture(t)

	ctx := shared.WithActor(context.Background(), shared.Actor{UserID: adminID, Role: constant.RoleSuperAdmin})

	res, err := f.svc.Fund(ctx, orgID, dto.FundRequest{Amount: amount("500"), Reason: "invoice 42"})

	require.NoError(t, err)
	assertDecimal(t, "1500", res.OrganizationTotal, "org total")
	assertDecimal(t, "1500", res.OrganizationAvailable, "org available")
	assert.False(t, res.UserAvailable.Valid)

	_, err = f.svc.Fund(ctx, "missing-org", dto.FundRequest{Amount: amount("1")})
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestCreditService_GetBalance(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.GetBalance(travelerCtx(), travelID)

	require.NoError(t, err)
	assertDecimal(t, "200", res.UserAvailable.Decimal, "user available")
	assertDecimal(t, "800", res.OrganizationUnallocated, "org unallocated")

	_, err = f.svc.GetBalance(travelerCtx(), "")
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err), "travelers cannot read the organization balance")

	res, err = f.svc.GetBalance(adminCtx(), "")
	require.NoError(t, err)
	assert.Empty(t, res.UserID)
}

func TestCreditService_GetTransactions_TravelerScopedToSelf(t *testing.T) {
	f := newFixture(t)

	params := gDto.QueryParams{Page: 1, Limit: 10}

	expectUserFilter := func(_ context.Context, filter gDto.FilterGroup) {
		where, args := filter.GetWhereClause()

		assert.Contains(t, where, "credit_transactions.user_id = :user_id")
		assert.Equal(t, travelID, args["user_id"])
		assert.Equal(t, orgID, args["organization_id"])
	}

	f.transactions.EXPECT().Count(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, filter gDto.FilterGroup) (int, error) {
			expectUserFilter(ctx, filter)

			return 1, nil
		})
	f.transactions.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).
		Return([]model.Transaction{{ID: "tx-1", OrganizationID: orgID, Type: model.TransactionConsume, Amount: amount("-10")}}, nil)

	res, err := f.svc.GetTransactions(travelerCtx(), params, dto.TransactionFilter{UserID: adminID})

	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Len(t, res.Transactions, 1)
}

func TestCreditService_ExportStatement(t *testing.T) {
	f := newFixture(t)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	user := travelID

	f.transactions.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Transaction, error) {
			where, args := filter.GetWhereClause()

			assert.Equal(t, 1, params.Page)
			assert.Contains(t, where, "credit_transactions.created_at >= :from")
			assert.Contains(t, where, "credit_transactions.created_at < :to")
			assert.Equal(t, from, args["from"])

			return []model.Transaction{
				{ID: "tx-1", OrganizationID: orgID, Type: model.TransactionFund, Amount: amount("1000"), OrgAvailableAfter: amount("1000")},
				{ID: "tx-2", OrganizationID: orgID, UserID: &user, Type: model.TransactionAllocate, Amount: amount("200"),
					UserAvailableAfter: decimal.NewNullDecimal(amount("200")), UserLimitAfter: decimal.NewNullDecimal(amount("200"))},
			}, nil
		})

	f.s3.EXPECT().
		UploadFileBytes(gomock.Any(), "statements-bucket", "statements/"+orgID, gomock.Any(), constant.ContentTypeCSV, gomock.Any()).
		DoAndReturn(func(_ context.Context, bucket, dir, file, _ string, data []byte) (s3.Object, error) {
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")

			assert.Len(t, lines, 3)
			assert.True(t, strings.HasPrefix(lines[0], "id,created_at,type,amount"))
			assert.Contains(t, lines[2], "allocate,200.00,"+travelID)
			assert.True(t, strings.HasPrefix(file, "statement-20260901-20261001-"))

			return s3.Object{Bucket: bucket, Key: dir + "/" + file}, nil
		})

	f.s3.EXPECT().PresignGetURL(gomock.Any(), "statements-bucket", gomock.Any(), 15*time.Minute).
		Return("https://signed.example/statement.csv", nil)

	res, err := f.svc.ExportStatement(adminCtx(), dto.StatementRequest{From: from, To: to})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Transactions)
	assert.Equal(t, "https://signed.example/statement.csv", res.URL)
	assert.True(t, strings.HasPrefix(res.Key, "statements/"+orgID+"/statement-"))
}
