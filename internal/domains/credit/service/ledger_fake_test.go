package service_test

import (
	"context"
	"fmt"
	"sync"

	"travelo/internal/domains/credit/model"
	"travelo/shared/failure"

	"github.com/shopspring/decimal"
)

// memoryLedger serializes Apply the way the row locks do in Postgres.
type memoryLedger struct {
	mu      sync.Mutex
	orgs    map[string]model.OrganizationBalance
	users   map[string]model.UserBalance
	entries []model.Transaction
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		orgs:  map[string]model.OrganizationBalance{},
		users: map[string]model.UserBalance{},
	}
}

func (m *memoryLedger) addOrganization(id, available, allocated string) {
	m.orgs[id] = model.OrganizationBalance{
		ID:               id,
		TotalCredits:     decimal.RequireFromString(available),
		AvailableCredits: decimal.RequireFromString(available),
		UsedCredits:      decimal.Zero,
		AllocatedCredits: decimal.RequireFromString(allocated),
	}
}

func (m *memoryLedger) addUser(id, orgID, limit, available string) {
	m.users[id] = model.UserBalance{
		ID:               id,
		OrganizationID:   orgID,
		CreditLimit:      decimal.RequireFromString(limit),
		AvailableCredits: decimal.RequireFromString(available),
	}
}

func (m *memoryLedger) load(key model.Key) (model.Account, error) {
	org, ok := m.orgs[key.OrganizationID]
	if !ok {
		return model.Account{}, failure.NotFound("organization not found")
	}

	account := model.Account{Organization: org}

	if key.UserID == "" {
		return account, nil
	}

	user, ok := m.users[key.UserID]
	if !ok || user.OrganizationID != org.ID {
		return model.Account{}, failure.NotFound("user not found")
	}

	account.User = &user

	return account, nil
}

func (m *memoryLedger) Apply(_ context.Context, key model.Key, mutate model.Mutation) (model.Account, model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, err := m.load(key)
	if err != nil {
		return model.Account{}, model.Transaction{}, err
	}

	entry, err := mutate(&account)
	if err != nil {
		return model.Account{}, model.Transaction{}, err
	}

	if err := account.Validate(); err != nil {
		return model.Account{}, model.Transaction{}, err
	}

	m.orgs[account.Organization.ID] = account.Organization

	tx := model.Transaction{
		ID:             fmt.Sprintf("tx-%d", len(m.entries)+1),
		OrganizationID: account.Organization.ID,
		Type:           entry.Type,
		Amount:         entry.Amount,
	}

	if account.User != nil {
		m.users[account.User.ID] = *account.User
		tx.UserID = &account.User.ID
	}

	m.entries = append(m.entries, tx)

	return account, tx, nil
}

func (m *memoryLedger) Balance(_ context.Context, key model.Key) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.load(key)
}
