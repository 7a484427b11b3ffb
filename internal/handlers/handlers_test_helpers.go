package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/omliv423/money-tracker-sub001/internal/auth"
	"github.com/omliv423/money-tracker-sub001/internal/config"
	"github.com/omliv423/money-tracker-sub001/internal/middleware"
	"github.com/omliv423/money-tracker-sub001/internal/models"
	"github.com/omliv423/money-tracker-sub001/internal/services"
	"github.com/omliv423/money-tracker-sub001/internal/store"
	"github.com/omliv423/money-tracker-sub001/internal/websocket"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn           func(ctx context.Context, tx store.Execer, id, householdID, username, email, passwordHash string, isAdmin bool) error
	getByEmailFn       func(ctx context.Context, email string) (models.User, error)
	getByIDFn          func(ctx context.Context, userID string) (models.User, error)
	countByHouseholdFn func(ctx context.Context, householdID string) (int64, error)
	isAdminFn          func(ctx context.Context, userID string) (bool, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, householdID, username, email, passwordHash string, isAdmin bool) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, householdID, username, email, passwordHash, isAdmin)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) CountByHousehold(ctx context.Context, householdID string) (int64, error) {
	if s.countByHouseholdFn == nil {
		return 0, nil
	}
	return s.countByHouseholdFn(ctx, householdID)
}

func (s stubUserStore) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if s.isAdminFn == nil {
		return false, nil
	}
	return s.isAdminFn(ctx, userID)
}

type stubAccountStore struct {
	createFn          func(ctx context.Context, tx store.Execer, input store.AccountInput) error
	getByIDFn         func(ctx context.Context, accountID string) (models.Account, error)
	listByHouseholdFn func(ctx context.Context, householdID string) ([]models.Account, error)
	deactivateFn      func(ctx context.Context, tx store.Execer, accountID string) error
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, input store.AccountInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubAccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	if s.getByIDFn == nil {
		return models.Account{}, nil
	}
	return s.getByIDFn(ctx, accountID)
}

func (s stubAccountStore) ListByHousehold(ctx context.Context, householdID string) ([]models.Account, error) {
	if s.listByHouseholdFn == nil {
		return nil, nil
	}
	return s.listByHouseholdFn(ctx, householdID)
}

func (s stubAccountStore) Deactivate(ctx context.Context, tx store.Execer, accountID string) error {
	if s.deactivateFn == nil {
		return nil
	}
	return s.deactivateFn(ctx, tx, accountID)
}

type stubCategoryStore struct {
	createFn          func(ctx context.Context, tx store.Execer, category models.Category) error
	listByHouseholdFn func(ctx context.Context, householdID string) ([]models.Category, error)
}

func (s stubCategoryStore) Create(ctx context.Context, tx store.Execer, category models.Category) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, category)
}

func (s stubCategoryStore) ListByHousehold(ctx context.Context, householdID string) ([]models.Category, error) {
	if s.listByHouseholdFn == nil {
		return nil, nil
	}
	return s.listByHouseholdFn(ctx, householdID)
}

type stubTransactionStore struct {
	getByIDFn         func(ctx context.Context, transactionID string) (store.TransactionWithLines, error)
	listByHouseholdFn func(ctx context.Context, householdID string, limit, offset int) ([]store.TransactionWithLines, error)
}

func (s stubTransactionStore) GetByID(ctx context.Context, transactionID string) (store.TransactionWithLines, error) {
	if s.getByIDFn == nil {
		return store.TransactionWithLines{}, nil
	}
	return s.getByIDFn(ctx, transactionID)
}

func (s stubTransactionStore) ListByHousehold(ctx context.Context, householdID string, limit, offset int) ([]store.TransactionWithLines, error) {
	if s.listByHouseholdFn == nil {
		return nil, nil
	}
	return s.listByHouseholdFn(ctx, householdID, limit, offset)
}

type stubQuickEntryStore struct {
	createFn          func(ctx context.Context, tx store.Execer, entry models.QuickEntry) error
	listByHouseholdFn func(ctx context.Context, householdID string) ([]models.QuickEntry, error)
}

func (s stubQuickEntryStore) Create(ctx context.Context, tx store.Execer, entry models.QuickEntry) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, entry)
}

func (s stubQuickEntryStore) ListByHousehold(ctx context.Context, householdID string) ([]models.QuickEntry, error) {
	if s.listByHouseholdFn == nil {
		return nil, nil
	}
	return s.listByHouseholdFn(ctx, householdID)
}

type stubRecurringStore struct {
	createFn          func(ctx context.Context, tx store.Execer, template models.RecurringTransaction, lines []models.RecurringTransactionLine) error
	listByHouseholdFn func(ctx context.Context, householdID string) ([]store.RecurringWithLines, error)
}

func (s stubRecurringStore) Create(ctx context.Context, tx store.Execer, template models.RecurringTransaction, lines []models.RecurringTransactionLine) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, template, lines)
}

func (s stubRecurringStore) ListByHousehold(ctx context.Context, householdID string) ([]store.RecurringWithLines, error) {
	if s.listByHouseholdFn == nil {
		return nil, nil
	}
	return s.listByHouseholdFn(ctx, householdID)
}

type stubAuditStore struct {
	logFn             func(ctx context.Context, tx store.Execer, householdID, actorID, action, entityType, entityID, data string) error
	listByHouseholdFn func(ctx context.Context, householdID string, limit, offset int) ([]store.AuditEntry, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, householdID, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, householdID, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) ListByHousehold(ctx context.Context, householdID string, limit, offset int) ([]store.AuditEntry, error) {
	if s.listByHouseholdFn == nil {
		return nil, nil
	}
	return s.listByHouseholdFn(ctx, householdID, limit, offset)
}

type stubEntryService struct {
	createEntryFn       func(ctx context.Context, req services.CreateEntryRequest) (string, error)
	transferFn          func(ctx context.Context, req services.TransferRequest) (string, string, error)
	recordQuickEntryFn  func(ctx context.Context, req services.QuickEntryRequest) (string, error)
	registerRecurringFn func(ctx context.Context, req services.RegisterRecurringRequest) (string, error)
	settleFn            func(ctx context.Context, req services.SettleRequest) error
	deleteEntryFn       func(ctx context.Context, householdID, userID, transactionID string) error
}

func (s stubEntryService) CreateEntry(ctx context.Context, req services.CreateEntryRequest) (string, error) {
	if s.createEntryFn == nil {
		return "", nil
	}
	return s.createEntryFn(ctx, req)
}

func (s stubEntryService) Transfer(ctx context.Context, req services.TransferRequest) (string, string, error) {
	if s.transferFn == nil {
		return "", "", nil
	}
	return s.transferFn(ctx, req)
}

func (s stubEntryService) RecordQuickEntry(ctx context.Context, req services.QuickEntryRequest) (string, error) {
	if s.recordQuickEntryFn == nil {
		return "", nil
	}
	return s.recordQuickEntryFn(ctx, req)
}

func (s stubEntryService) RegisterRecurring(ctx context.Context, req services.RegisterRecurringRequest) (string, error) {
	if s.registerRecurringFn == nil {
		return "", nil
	}
	return s.registerRecurringFn(ctx, req)
}

func (s stubEntryService) Settle(ctx context.Context, req services.SettleRequest) error {
	if s.settleFn == nil {
		return nil
	}
	return s.settleFn(ctx, req)
}

func (s stubEntryService) DeleteEntry(ctx context.Context, householdID, userID, transactionID string) error {
	if s.deleteEntryFn == nil {
		return nil
	}
	return s.deleteEntryFn(ctx, householdID, userID, transactionID)
}

type stubReconcilerService struct {
	reconcileAccountFn func(ctx context.Context, accountID string) (int64, error)
	reconcileAllFn     func(ctx context.Context) ([]services.BalanceDrift, error)
}

func (s stubReconcilerService) ReconcileAccount(ctx context.Context, accountID string) (int64, error) {
	if s.reconcileAccountFn == nil {
		return 0, nil
	}
	return s.reconcileAccountFn(ctx, accountID)
}

func (s stubReconcilerService) ReconcileAll(ctx context.Context) ([]services.BalanceDrift, error) {
	if s.reconcileAllFn == nil {
		return nil, nil
	}
	return s.reconcileAllFn(ctx)
}

type handlerDeps struct {
	txRunner     fakeTxRunner
	users        stubUserStore
	accounts     stubAccountStore
	categories   stubCategoryStore
	transactions stubTransactionStore
	quick        stubQuickEntryStore
	recurring    stubRecurringStore
	audit        stubAuditStore
	entries      stubEntryService
	reconciler   stubReconcilerService
}

func newTestHandler(deps handlerDeps) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(deps.txRunner, cfg, deps.users, deps.accounts, deps.categories, deps.transactions, deps.quick, deps.recurring, deps.audit, deps.entries, deps.reconciler, websocket.NewHub())
}

func serveAuthed(t *testing.T, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", "user-1", "house-1", time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}

func stringPtr(value string) *string {
	return &value
}
