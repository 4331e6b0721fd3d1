package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"travelo/config"
	"travelo/infras/kafka"
	"travelo/infras/otel"
	"travelo/infras/s3"
	"travelo/internal/domains/credit/model"
	"travelo/internal/domains/credit/model/dto"
	"travelo/internal/domains/credit/repository"
	"travelo/shared"
	"travelo/shared/cache"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	"travelo/shared/failure"
	"travelo/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	statementURLExpiry = 15 * time.Minute
	statementPageSize  = 500
	statementFileTime  = "20060102"
)

type Credit interface {
	Allocate(ctx context.Context, req dto.AllocateRequest) (dto.BalanceResponse, error)
	Reduce(ctx context.Context, req dto.ReduceRequest) (dto.BalanceResponse, error)
	Fund(ctx context.Context, organizationID string, req dto.FundRequest) (dto.BalanceResponse, error)

	// Consume and Refund join a transaction carried by ctx, so a booking status change and its
	// ledger entry commit together. They leave cached balances alone; the caller invalidates
	// them once its transaction has committed.
	Consume(ctx context.Context, req dto.ConsumeRequest) (model.Transaction, error)
	Refund(ctx context.Context, req dto.RefundRequest) (model.Transaction, error)
	InvalidateBalances(ctx context.Context)

	GetBalance(ctx context.Context, userID string) (dto.BalanceResponse, error)
	GetTransactions(ctx context.Context, params gDto.QueryParams, filter dto.TransactionFilter) (dto.GetTransactionsResponse, error)
	ExportStatement(ctx context.Context, req dto.StatementRequest) (dto.StatementResponse, error)
}

type serviceImpl struct {
	ledger       repository.Ledger
	transactions repository.Transaction
	kafka        kafka.Client
	s3           s3.S3
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(ledger repository.Ledger, transactions repository.Transaction, kafka kafka.Client, s3 s3.S3, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Credit {
	return &serviceImpl{
		ledger:       ledger,
		transactions: transactions,
		kafka:        kafka,
		s3:           s3,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

func (s *serviceImpl) Allocate(ctx context.Context, req dto.AllocateRequest) (res dto.BalanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Allocate")
	defer scope.End()
	defer scope.TraceIfError(&err)

	key := model.Key{OrganizationID: shared.ActorFromContext(ctx).OrganizationID, UserID: req.UserID}

	account, tx, err := s.ledger.Apply(ctx, key, func(account *model.Account) (model.Entry, error) {
		change, err := account.Allocate(req.Amount, req.Mode)
		if err != nil {
			return model.Entry{}, err
		}

		return model.Entry{
			Type:   model.TransactionAllocate,
			Amount: change,
			Reason: fmt.Sprintf("allocation (%s %s)", req.Mode, req.Amount.StringFixed(2)),
		}, nil
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to allocate credits")

		return res, fmt.Errorf("failed to allocate credits: %w", err)
	}

	s.afterCommit(ctx, tx, dto.EventCreditAllocated)

	res.FromAccount(account)

	return res, nil
}

func (s *serviceImpl) Reduce(ctx context.Context, req dto.ReduceRequest) (res dto.BalanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reduce")
	defer scope.End()
	defer scope.TraceIfError(&err)

	key := model.Key{OrganizationID: shared.ActorFromContext(ctx).OrganizationID, UserID: req.UserID}

	account, tx, err := s.ledger.Apply(ctx, key, func(account *model.Account) (model.Entry, error) {
		if err := account.Reduce(req.Amount); err != nil {
			return model.Entry{}, err
		}

		return model.Entry{Type: model.TransactionReduce, Amount: req.Amount.Neg(), Reason: req.Reason}, nil
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to reduce credits")

		return res, fmt.Errorf("failed to reduce credits: %w", err)
	}

	s.afterCommit(ctx, tx, dto.EventCreditReduced)

	res.FromAccount(account)

	return res, nil
}

func (s *serviceImpl) Fund(ctx context.Context, organizationID string, req dto.FundRequest) (res dto.BalanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Fund")
	defer scope.End()
	defer scope.TraceIfError(&err)

	account, tx, err := s.ledger.Apply(ctx, model.Key{OrganizationID: organizationID}, func(account *model.Account) (model.Entry, error) {
		if err := account.Fund(req.Amount); err != nil {
			return model.Entry{}, err
		}

		return model.Entry{Type: model.TransactionFund, Amount: req.Amount, Reason: req.Reason}, nil
	})
	if err != nil {
		log.Error().Err(err).Str("organization_id", organizationID).Msg("failed to fund organization")

		return res, fmt.Errorf("failed to fund organization: %w", err)
	}

	s.afterCommit(ctx, tx, dto.EventCreditFunded)

	res.FromAccount(account)

	return res, nil
}

func (s *serviceImpl) Consume(ctx context.Context, req dto.ConsumeRequest) (res model.Transaction, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Consume")
	defer scope.End()
	defer scope.TraceIfError(&err)

	key := model.Key{OrganizationID: req.OrganizationID, UserID: req.UserID}

	_, res, err = s.ledger.Apply(ctx, key, func(account *model.Account) (model.Entry, error) {
		if err := account.Consume(req.Amount); err != nil {
			return model.Entry{}, err
		}

		return model.Entry{Type: model.TransactionConsume, Amount: req.Amount.Neg(), BookingID: req.BookingID}, nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to consume credits")

		return res, fmt.Errorf("failed to consume credits: %w", err)
	}

	return res, nil
}

func (s *serviceImpl) Refund(ctx context.Context, req dto.RefundRequest) (res model.Transaction, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Refund")
	defer scope.End()
	defer scope.TraceIfError(&err)

	key := model.Key{OrganizationID: req.OrganizationID, UserID: req.UserID}

	_, res, err = s.ledger.Apply(ctx, key, func(account *model.Account) (model.Entry, error) {
		if err := account.Refund(req.Amount); err != nil {
			return model.Entry{}, err
		}

		return model.Entry{Type: model.TransactionRefund, Amount: req.Amount, BookingID: req.BookingID, Reason: req.Reason}, nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to refund credits")

		return res, fmt.Errorf("failed to refund credits: %w", err)
	}

	return res, nil
}

func (s *serviceImpl) GetBalance(ctx context.Context, userID string) (res dto.BalanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetBalance")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)

	if userID != actor.UserID && !actor.HasRole(constant.RoleManager, constant.RoleCompanyAdmin, constant.RoleAdmin) {
		return res, failure.ResourceRestrictedError
	}

	account, err := s.ledger.Balance(ctx, model.Key{OrganizationID: actor.OrganizationID, UserID: userID})
	if err != nil {
		log.Error().Err(err).Msg("failed to get balance")

		return res, fmt.Errorf("failed to get balance: %w", err)
	}

	res.FromAccount(account)

	return res, nil
}

func (s *serviceImpl) GetTransactions(ctx context.Context, params gDto.QueryParams, filter dto.TransactionFilter) (res dto.GetTransactionsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetTransactions")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)

	// travelers only ever see their own history
	if !actor.HasRole(constant.RoleManager, constant.RoleCompanyAdmin, constant.RoleAdmin) {
		filter.UserID = actor.UserID
	}

	group := transactionFilter(actor.OrganizationID, filter)

	total, err := s.transactions.Count(ctx, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to count credit transactions")

		return res, fmt.Errorf("failed to count credit transactions: %w", err)
	}

	models, err := s.transactions.GetAll(ctx, params, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to get credit transactions")

		return res, fmt.Errorf("failed to get credit transactions: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	return res, nil
}

// ExportStatement writes the organization's transactions in [From, To) to a CSV object and
// returns a short-lived download link.
func (s *serviceImpl) ExportStatement(ctx context.Context, req dto.StatementRequest) (res dto.StatementResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ExportStatement")
	defer scope.End()
	defer scope.TraceIfError(&err)

	actor := shared.ActorFromContext(ctx)

	group := transactionFilter(actor.OrganizationID, dto.TransactionFilter{})
	group.Filters = append(group.Filters,
		gDto.Filter{ArgName: "from", Field: model.FieldCreatedAt, Operator: gDto.FilterOperatorGreaterEq, Value: req.From, Table: model.TableName},
		gDto.Filter{ArgName: "to", Field: model.FieldCreatedAt, Operator: gDto.FilterOperatorLess, Value: req.To, Table: model.TableName},
	)

	var buf bytes.Buffer

	writer := csv.NewWriter(&buf)
	if err = writer.Write(dto.StatementHeader); err != nil {
		return res, fmt.Errorf("failed to write statement header: %w", err)
	}

	params := gDto.QueryParams{Page: 1, Limit: statementPageSize, SortBy: model.FieldCreatedAt, SortDir: gDto.SortDirAsc}

	for {
		models, err := s.transactions.GetAll(ctx, params, group)
		if err != nil {
			log.Error().Err(err).Msg("failed to read credit transactions for statement")

			return res, fmt.Errorf("failed to read credit transactions: %w", err)
		}

		for _, tx := range models {
			if err := writer.Write(dto.StatementRow(tx)); err != nil {
				return res, fmt.Errorf("failed to write statement row: %w", err)
			}
		}

		res.Transactions += len(models)

		if len(models) < params.Limit {
			break
		}

		params.Page++
	}

	writer.Flush()

	if err = writer.Error(); err != nil {
		return res, fmt.Errorf("failed to write statement: %w", err)
	}

	fileName := fmt.Sprintf("statement-%s-%s-%d.csv",
		timezone.Format(req.From, statementFileTime), timezone.Format(req.To, statementFileTime), timezone.Now().Unix())

	object, err := s.s3.UploadFileBytes(ctx, s.cfg.Credit.StatementBucket,
		s.cfg.Credit.StatementDir+"/"+actor.OrganizationID, fileName, constant.ContentTypeCSV, buf.Bytes())
	if err != nil {
		log.Error().Err(err).Msg("failed to upload statement")

		return res, fmt.Errorf("failed to upload statement: %w", err)
	}

	url, err := s.s3.PresignGetURL(ctx, object.Bucket, object.Key, statementURLExpiry)
	if err != nil {
		log.Error().Err(err).Msg("failed to presign statement url")

		return res, fmt.Errorf("failed to presign statement url: %w", err)
	}

	res.Key = object.Key
	res.URL = url
	res.ExpiresAt = timezone.Format(timezone.Now().Add(statementURLExpiry), constant.DateFormat)

	return res, nil
}

func transactionFilter(organizationID string, filter dto.TransactionFilter) gDto.FilterGroup {
	group := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldOrganizationID, Value: organizationID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	group.AddIfSet(
		gDto.Filter{Field: model.FieldUserID, Value: filter.UserID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldBookingID, Value: filter.BookingID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldType, Value: filter.Type, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	)

	return group
}

// afterCommit drops cached balances and announces the change. Both are best effort.
func (s *serviceImpl) afterCommit(ctx context.Context, tx model.Transaction, eventType string) {
	s.invalidate(ctx)

	go func() {
		c := context.WithoutCancel(ctx)

		event := dto.Event{}
		event.FromTransaction(tx)

		err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.Credit, kafka.Message{
			Key:   tx.OrganizationID,
			Type:  eventType,
			Value: event,
		})
		if err != nil {
			log.Error().Err(err).Str("transaction_id", tx.ID).Msg("failed to publish credit event")
		}
	}()
}

func (s *serviceImpl) InvalidateBalances(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *serviceImpl) invalidate(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, constant.CachePrefixUser+":")
		shared.InvalidateCaches(c, s.cache, constant.CachePrefixOrganization+":")
	}()
}
