package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/omliv423/money-tracker-sub001/internal/logger"
	"github.com/omliv423/money-tracker-sub001/internal/models"
	"github.com/omliv423/money-tracker-sub001/internal/store"
)

type stubReconAccountStore struct {
	getByIDFn       func(ctx context.Context, accountID string) (models.Account, error)
	listActiveFn    func(ctx context.Context) ([]models.Account, error)
	updateBalanceFn func(ctx context.Context, tx store.Execer, accountID string, balance int64) error
}

func (s stubReconAccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	return s.getByIDFn(ctx, accountID)
}

func (s stubReconAccountStore) ListActive(ctx context.Context) ([]models.Account, error) {
	return s.listActiveFn(ctx)
}

func (s stubReconAccountStore) UpdateCurrentBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) error {
	if s.updateBalanceFn == nil {
		return nil
	}
	return s.updateBalanceFn(ctx, tx, accountID, balance)
}

type stubReconTxStore struct {
	listAffectingFn func(ctx context.Context, accountID string) ([]store.TransactionWithLines, error)
	listAllFn       func(ctx context.Context) ([]store.TransactionWithLines, error)
}

func (s stubReconTxStore) ListAffecting(ctx context.Context, accountID string) ([]store.TransactionWithLines, error) {
	return s.listAffectingFn(ctx, accountID)
}

func (s stubReconTxStore) ListAllWithLines(ctx context.Context) ([]store.TransactionWithLines, error) {
	return s.listAllFn(ctx)
}

func testDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(value time.Time) *time.Time {
	return &value
}

func settledExpense(id, accountID string, date time.Time, amount int64) store.TransactionWithLines {
	return store.TransactionWithLines{
		Transaction: models.Transaction{
			ID:            id,
			AccountID:     accountID,
			Date:          date,
			TotalAmount:   amount,
			IsCashSettled: true,
		},
		Lines: []models.TransactionLine{
			{ID: id + "-line", TransactionID: id, LineType: "expense", Amount: amount},
		},
	}
}

func testLogger() zerolog.Logger {
	return logger.NewWithWriter(io.Discard)
}

func TestReconcileAccountCorrectsDrift(t *testing.T) {
	var persistedBalance int64
	var persistedAccount string
	accounts := stubReconAccountStore{
		getByIDFn: func(_ context.Context, accountID string) (models.Account, error) {
			return models.Account{
				ID:             accountID,
				Name:           "Main bank",
				OpeningBalance: 10000,
				OpeningDate:    datePtr(testDate(2024, 1, 1)),
				CurrentBalance: 9999,
				IsActive:       true,
			}, nil
		},
		updateBalanceFn: func(_ context.Context, _ store.Execer, accountID string, balance int64) error {
			persistedAccount = accountID
			persistedBalance = balance
			return nil
		},
	}
	txs := stubReconTxStore{
		listAffectingFn: func(context.Context, string) ([]store.TransactionWithLines, error) {
			return []store.TransactionWithLines{
				settledExpense("tx-1", "acct-a", testDate(2024, 2, 1), 3000),
			}, nil
		},
	}
	r := NewReconciler(accounts, txs, nil, testLogger())
	balance, err := r.ReconcileAccount(context.Background(), "acct-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 7000 {
		t.Fatalf("expected 7000, got %d", balance)
	}
	if persistedAccount != "acct-a" || persistedBalance != 7000 {
		t.Fatalf("correction not persisted: %s %d", persistedAccount, persistedBalance)
	}
}

func TestReconcileAccountInSyncSkipsWrite(t *testing.T) {
	accounts := stubReconAccountStore{
		getByIDFn: func(_ context.Context, accountID string) (models.Account, error) {
			return models.Account{
				ID:             accountID,
				OpeningBalance: 10000,
				OpeningDate:    datePtr(testDate(2024, 1, 1)),
				CurrentBalance: 7000,
				IsActive:       true,
			}, nil
		},
		updateBalanceFn: func(context.Context, store.Execer, string, int64) error {
			t.Fatalf("in-sync account must not be written")
			return nil
		},
	}
	txs := stubReconTxStore{
		listAffectingFn: func(context.Context, string) ([]store.TransactionWithLines, error) {
			return []store.TransactionWithLines{
				settledExpense("tx-1", "acct-a", testDate(2024, 2, 1), 3000),
			}, nil
		},
	}
	r := NewReconciler(accounts, txs, nil, testLogger())
	balance, err := r.ReconcileAccount(context.Background(), "acct-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 7000 {
		t.Fatalf("expected 7000, got %d", balance)
	}
}

func TestReconcileAccountIdempotent(t *testing.T) {
	stored := int64(0)
	accounts := stubReconAccountStore{
		getByIDFn: func(_ context.Context, accountID string) (models.Account, error) {
			return models.Account{ID: accountID, CurrentBalance: stored, IsActive: true}, nil
		},
		updateBalanceFn: func(_ context.Context, _ store.Execer, _ string, balance int64) error {
			stored = balance
			return nil
		},
	}
	txs := stubReconTxStore{
		listAffectingFn: func(context.Context, string) ([]store.TransactionWithLines, error) {
			return []store.TransactionWithLines{
				settledExpense("tx-1", "acct-a", testDate(2024, 2, 1), 250),
			}, nil
		},
	}
	r := NewReconciler(accounts, txs, nil, testLogger())
	first, err := r.ReconcileAccount(context.Background(), "acct-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.ReconcileAccount(context.Background(), "acct-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second || first != -250 {
		t.Fatalf("reconciliation not idempotent: %d vs %d", first, second)
	}
}

func TestReconcileAccountPersistFailure(t *testing.T) {
	accounts := stubReconAccountStore{
		getByIDFn: func(_ context.Context, accountID string) (models.Account, error) {
			return models.Account{ID: accountID, CurrentBalance: 1, IsActive: true}, nil
		},
		updateBalanceFn: func(context.Context, store.Execer, string, int64) error {
			return errors.New("write refused")
		},
	}
	txs := stubReconTxStore{
		listAffectingFn: func(context.Context, string) ([]store.TransactionWithLines, error) {
			return nil, nil
		},
	}
	r := NewReconciler(accounts, txs, nil, testLogger())
	balance, err := r.ReconcileAccount(context.Background(), "acct-a")
	if !errors.Is(err, ErrBalancePersist) {
		t.Fatalf("expected ErrBalancePersist, got %v", err)
	}
	if balance != 0 {
		t.Fatalf("computed balance must still be returned, got %d", balance)
	}
}

func TestReconcileAllReportsOnlyDriftedAccounts(t *testing.T) {
	var writes []string
	accounts := stubReconAccountStore{
		listActiveFn: func(context.Context) ([]models.Account, error) {
			return []models.Account{
				{ID: "in-sync", Name: "Wallet", OpeningBalance: 500, CurrentBalance: 200, IsActive: true},
				{ID: "drifted", Name: "Bank", OpeningBalance: 1000, CurrentBalance: 12345, IsActive: true},
			}, nil
		},
		updateBalanceFn: func(_ context.Context, _ store.Execer, accountID string, balance int64) error {
			writes = append(writes, accountID)
			return nil
		},
	}
	txs := stubReconTxStore{
		listAllFn: func(context.Context) ([]store.TransactionWithLines, error) {
			return []store.TransactionWithLines{
				settledExpense("tx-1", "in-sync", testDate(2024, 2, 1), 300),
				settledExpense("tx-2", "drifted", testDate(2024, 2, 2), 400),
			}, nil
		},
	}
	r := NewReconciler(accounts, txs, nil, testLogger())
	drifts, err := r.ReconcileAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drifts) != 1 {
		t.Fatalf("expected a single drift row, got %#v", drifts)
	}
	drift := drifts[0]
	if drift.AccountID != "drifted" || drift.CalculatedBalance != 600 || drift.Difference != 11745 {
		t.Fatalf("unexpected drift row: %#v", drift)
	}
	if len(writes) != 1 || writes[0] != "drifted" {
		t.Fatalf("only the drifted account may be written: %#v", writes)
	}
}

func TestReconcileAllPersistFailureDoesNotAbort(t *testing.T) {
	accounts := stubReconAccountStore{
		listActiveFn: func(context.Context) ([]models.Account, error) {
			return []models.Account{
				{ID: "acct-a", Name: "A", CurrentBalance: 111, IsActive: true},
				{ID: "acct-b", Name: "B", CurrentBalance: 222, IsActive: true},
			}, nil
		},
		updateBalanceFn: func(_ context.Context, _ store.Execer, accountID string, _ int64) error {
			if accountID == "acct-a" {
				return errors.New("write refused")
			}
			return nil
		},
	}
	txs := stubReconTxStore{
		listAllFn: func(context.Context) ([]store.TransactionWithLines, error) {
			return nil, nil
		},
	}
	r := NewReconciler(accounts, txs, nil, testLogger())
	drifts, err := r.ReconcileAll(context.Background())
	if err != nil {
		t.Fatalf("a single persist failure must not abort the pass: %v", err)
	}
	if len(drifts) != 2 {
		t.Fatalf("expected 2 drift rows, got %#v", drifts)
	}
	if drifts[0].PersistError == "" {
		t.Fatalf("expected persist error marker on first row")
	}
	if drifts[1].PersistError != "" {
		t.Fatalf("second account must have been corrected cleanly: %#v", drifts[1])
	}
}

func TestReconcileAllRoutesDeferredSettlement(t *testing.T) {
	bank := "bank"
	accounts := stubReconAccountStore{
		listActiveFn: func(context.Context) ([]models.Account, error) {
			return []models.Account{
				{ID: "credit-card", Name: "Card", CurrentBalance: 0, IsActive: true},
				{ID: "bank", Name: "Bank", OpeningBalance: 20000, CurrentBalance: 20000, IsActive: true},
			}, nil
		},
	}
	txs := stubReconTxStore{
		listAllFn: func(context.Context) ([]store.TransactionWithLines, error) {
			return []store.TransactionWithLines{{
				Transaction: models.Transaction{
					ID:                  "tx-1",
					AccountID:           "credit-card",
					SettlementAccountID: &bank,
					Date:                testDate(2024, 2, 15),
					SettlementDate:      datePtr(testDate(2024, 3, 5)),
					TotalAmount:         5000,
					SettledAmount:       5000,
				},
				Lines: []models.TransactionLine{
					{ID: "line-1", TransactionID: "tx-1", LineType: "expense", Amount: 5000},
				},
			}}, nil
		},
	}
	r := NewReconciler(accounts, txs, nil, testLogger())
	drifts, err := r.ReconcileAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drifts) != 1 || drifts[0].AccountID != "bank" || drifts[0].CalculatedBalance != 15000 {
		t.Fatalf("deferred settlement must land on the bank account: %#v", drifts)
	}
}
