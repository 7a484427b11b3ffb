package handlers

import (
	"context"

	"github.com/omliv423/money-tracker-sub001/internal/models"
	"github.com/omliv423/money-tracker-sub001/internal/services"
	"github.com/omliv423/money-tracker-sub001/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, householdID, username, email, passwordHash string, isAdmin bool) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	CountByHousehold(ctx context.Context, householdID string) (int64, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, input store.AccountInput) error
	GetByID(ctx context.Context, accountID string) (models.Account, error)
	ListByHousehold(ctx context.Context, householdID string) ([]models.Account, error)
	Deactivate(ctx context.Context, tx store.Execer, accountID string) error
}

type CategoryStore interface {
	Create(ctx context.Context, tx store.Execer, category models.Category) error
	ListByHousehold(ctx context.Context, householdID string) ([]models.Category, error)
}

type TransactionStore interface {
	GetByID(ctx context.Context, transactionID string) (store.TransactionWithLines, error)
	ListByHousehold(ctx context.Context, householdID string, limit, offset int) ([]store.TransactionWithLines, error)
}

type QuickEntryStore interface {
	Create(ctx context.Context, tx store.Execer, entry models.QuickEntry) error
	ListByHousehold(ctx context.Context, householdID string) ([]models.QuickEntry, error)
}

type RecurringStore interface {
	Create(ctx context.Context, tx store.Execer, template models.RecurringTransaction, lines []models.RecurringTransactionLine) error
	ListByHousehold(ctx context.Context, householdID string) ([]store.RecurringWithLines, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, householdID, actorID, action, entityType, entityID, data string) error
	ListByHousehold(ctx context.Context, householdID string, limit, offset int) ([]store.AuditEntry, error)
}

type EntryService interface {
	CreateEntry(ctx context.Context, req services.CreateEntryRequest) (string, error)
	Transfer(ctx context.Context, req services.TransferRequest) (string, string, error)
	RecordQuickEntry(ctx context.Context, req services.QuickEntryRequest) (string, error)
	RegisterRecurring(ctx context.Context, req services.RegisterRecurringRequest) (string, error)
	Settle(ctx context.Context, req services.SettleRequest) error
	DeleteEntry(ctx context.Context, householdID, userID, transactionID string) error
}

type ReconcilerService interface {
	ReconcileAccount(ctx context.Context, accountID string) (int64, error)
	ReconcileAll(ctx context.Context) ([]services.BalanceDrift, error)
}
