package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"travelo/infras/otel"
	"travelo/infras/postgres"
	"travelo/internal/domains/credit/model"
	gDto "travelo/shared/dto"
	gRepo "travelo/shared/repository"
)

// Transaction reads the credit ledger history. Rows are only written by Ledger.Apply.
type Transaction interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Transaction, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Transaction, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Transaction]
}

func New(db *postgres.Connection, otel otel.Otel) Transaction {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Transaction](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
