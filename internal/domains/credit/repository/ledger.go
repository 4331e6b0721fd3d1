package repository

//go:generate go run go.uber.org/mock/mockgen -source=./ledger.go -destination=../mocks/ledger_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"travelo/config"
	"travelo/infras/otel"
	"travelo/infras/postgres"
	"travelo/internal/domains/credit/model"
	"travelo/shared"
	"travelo/shared/constant"
	"travelo/shared/failure"
	gModel "travelo/shared/model"
	gRepo "travelo/shared/repository"
	"travelo/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	organizationTable = "organizations"
	userTable         = "users"

	organizationDeltaQuery = `UPDATE organizations SET
		total_credits = total_credits + :total,
		available_credits = available_credits + :available,
		used_credits = used_credits + :used,
		allocated_credits = allocated_credits + :allocated,
		modified_at = :modified_at,
		modified_by = :modified_by
		WHERE id = :id`

	userDeltaQuery = `UPDATE users SET
		credit_limit = credit_limit + :credit_limit,
		available_credits = available_credits + :available,
		modified_at = :modified_at,
		modified_by = :modified_by
		WHERE id = :id AND organization_id = :organization_id`
)

var errNoRowUpdated = errors.New("locked balance row was not updated")

// Ledger is the only writer of organization and user balances.
type Ledger interface {
	// Apply locks the organization row and then the user row, runs mutate on their balances,
	// checks every invariant and persists the change with a transaction row. It joins a
	// transaction already carried by ctx.
	Apply(ctx context.Context, key model.Key, mutate model.Mutation) (model.Account, model.Transaction, error)
	// Balance reads the current balances without locking.
	Balance(ctx context.Context, key model.Key) (model.Account, error)
}

type ledgerImpl struct {
	transactor    gRepo.Transactor
	organizations gRepo.Repository[model.OrganizationBalance]
	users         gRepo.Repository[model.UserBalance]
	transactions  gRepo.Repository[model.Transaction]
	lockTimeoutMS int
	otel          otel.Otel
}

func NewLedger(db *postgres.Connection, cfg *config.Config, otel otel.Otel) Ledger {
	return &ledgerImpl{
		transactor:    gRepo.NewTransactor(db),
		organizations: gRepo.NewRepository[model.OrganizationBalance]("organization_balance", organizationTable, "id", db, otel),
		users:         gRepo.NewRepository[model.UserBalance]("user_balance", userTable, "id", db, otel),
		transactions:  gRepo.NewRepository[model.Transaction](model.EntityName, model.TableName, model.FieldID, db, otel),
		lockTimeoutMS: cfg.Credit.LockTimeoutMS,
		otel:          otel,
	}
}

func (l *ledgerImpl) Apply(ctx context.Context, key model.Key, mutate model.Mutation) (account model.Account, entry model.Transaction, err error) {
	ctx, scope := l.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".credit_ledger.Apply")
	defer scope.End()
	defer scope.TraceIfError(&err)

	scope.SetAttributes(map[string]any{
		"ledger.organization_id": key.OrganizationID,
		"ledger.user_id":         key.UserID,
	})

	err = l.transactor.WithinTx(ctx, func(ctx context.Context) error {
		if err := l.setLockTimeout(ctx); err != nil {
			return err
		}

		before, err := l.lock(ctx, key)
		if err != nil {
			return err
		}

		account = before.Clone()

		change, err := mutate(&account)
		if err != nil {
			return err
		}

		if err := account.Validate(); err != nil {
			log.Error().Err(err).Str("organization_id", key.OrganizationID).Str("user_id", key.UserID).Msg("credit mutation broke a ledger invariant")

			return err
		}

		username := shared.ActorFromContext(ctx).Username()

		if err := l.writeDeltas(ctx, before, account, username); err != nil {
			return err
		}

		entry = newTransaction(account, change, username)

		return l.transactions.Insert(ctx, entry) //nolint:wrapcheck
	})
	if err != nil {
		return model.Account{}, model.Transaction{}, gRepo.TranslateError(err) //nolint:wrapcheck
	}

	return account, entry, nil
}

func (l *ledgerImpl) Balance(ctx context.Context, key model.Key) (account model.Account, err error) {
	ctx, scope := l.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".credit_ledger.Balance")
	defer scope.End()
	defer scope.TraceIfError(&err)

	org, err := l.organizations.Get(ctx, shared.FilterByID(key.OrganizationID, "id", organizationTable))
	if err != nil {
		return account, fmt.Errorf("failed to read organization balance: %w", err)
	}

	if org.ID == constant.Empty {
		return account, failure.NotFound("organization not found") // nolint:wrapcheck
	}

	account.Organization = org

	if key.UserID == constant.Empty {
		return account, nil
	}

	user, err := l.users.Get(ctx, shared.FilterByIDInOrganization(key.UserID, "id", key.OrganizationID, "organization_id", userTable))
	if err != nil {
		return account, fmt.Errorf("failed to read user balance: %w", err)
	}

	if user.ID == constant.Empty {
		return account, failure.NotFound("user not found") // nolint:wrapcheck
	}

	account.User = &user

	return account, nil
}

// setLockTimeout bounds how long the row locks below may wait. SET LOCAL ends with the
// transaction.
func (l *ledgerImpl) setLockTimeout(ctx context.Context) error {
	if l.lockTimeoutMS <= 0 {
		return nil
	}

	_, err := l.organizations.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", l.lockTimeoutMS), map[string]any{})

	return err //nolint:wrapcheck
}

// lock takes the organization row first and the user row second. Every ledger path uses this
// order so two operations on the same organization cannot deadlock.
func (l *ledgerImpl) lock(ctx context.Context, key model.Key) (model.Account, error) {
	org, err := l.organizations.GetForUpdate(ctx, shared.FilterByID(key.OrganizationID, "id", organizationTable))
	if errors.Is(err, gRepo.ErrNotFound) {
		return model.Account{}, failure.NotFound("organization not found") // nolint:wrapcheck
	}

	if err != nil {
		return model.Account{}, err //nolint:wrapcheck
	}

	account := model.Account{Organization: org}

	if key.UserID == constant.Empty {
		return account, nil
	}

	user, err := l.users.GetForUpdate(ctx, shared.FilterByID(key.UserID, "id", userTable))
	if errors.Is(err, gRepo.ErrNotFound) {
		return model.Account{}, failure.NotFound("user not found") // nolint:wrapcheck
	}

	if err != nil {
		return model.Account{}, err //nolint:wrapcheck
	}

	if user.OrganizationID != org.ID {
		return model.Account{}, failure.NotFound("user not found") // nolint:wrapcheck
	}

	account.User = &user

	return account, nil
}

func (l *ledgerImpl) writeDeltas(ctx context.Context, before, after model.Account, username string) error {
	now := timezone.Now()

	affected, err := l.organizations.Exec(ctx, organizationDeltaQuery, map[string]any{
		"id":          after.Organization.ID,
		"total":       after.Organization.TotalCredits.Sub(before.Organization.TotalCredits),
		"available":   after.Organization.AvailableCredits.Sub(before.Organization.AvailableCredits),
		"used":        after.Organization.UsedCredits.Sub(before.Organization.UsedCredits),
		"allocated":   after.Organization.AllocatedCredits.Sub(before.Organization.AllocatedCredits),
		"modified_at": now,
		"modified_by": username,
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	if affected != 1 {
		return fmt.Errorf("organization %s: %w", after.Organization.ID, errNoRowUpdated)
	}

	if after.User == nil {
		return nil
	}

	affected, err = l.users.Exec(ctx, userDeltaQuery, map[string]any{
		"id":              after.User.ID,
		"organization_id": after.User.OrganizationID,
		"credit_limit":    after.User.CreditLimit.Sub(before.User.CreditLimit),
		"available":       after.User.AvailableCredits.Sub(before.User.AvailableCredits),
		"modified_at":     now,
		"modified_by":     username,
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	if affected != 1 {
		return fmt.Errorf("user %s: %w", after.User.ID, errNoRowUpdated)
	}

	return nil
}

func newTransaction(account model.Account, entry model.Entry, username string) model.Transaction {
	tx := model.Transaction{
		ID:                uuid.NewString(),
		OrganizationID:    account.Organization.ID,
		Type:              entry.Type,
		Amount:            entry.Amount,
		OrgAvailableAfter: account.Organization.AvailableCredits,
		OrgUsedAfter:      account.Organization.UsedCredits,
		OrgAllocatedAfter: account.Organization.AllocatedCredits,
		Metadata:          gModel.NewMetadata(username, timezone.Now()),
	}

	if entry.Reason != constant.Empty {
		tx.Reason = &entry.Reason
	}

	if entry.BookingID != constant.Empty {
		tx.BookingID = &entry.BookingID
	}

	if account.User != nil {
		tx.UserID = &account.User.ID
		tx.UserAvailableAfter = decimal.NewNullDecimal(account.User.AvailableCredits)
		tx.UserLimitAfter = decimal.NewNullDecimal(account.User.CreditLimit)
	}

	return tx
}
