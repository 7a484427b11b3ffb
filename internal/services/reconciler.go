package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/omliv423/money-tracker-sub001/internal/ledger"
	"github.com/omliv423/money-tracker-sub001/internal/models"
	"github.com/omliv423/money-tracker-sub001/internal/store"
)

// ErrBalancePersist marks the case where a balance was recomputed correctly
// but could not be written back. The computed value still accompanies it.
var ErrBalancePersist = errors.New("balance computed but not persisted")

type ReconcilerAccountStore interface {
	GetByID(ctx context.Context, accountID string) (models.Account, error)
	ListActive(ctx context.Context) ([]models.Account, error)
	UpdateCurrentBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) error
}

type ReconcilerTransactionStore interface {
	ListAffecting(ctx context.Context, accountID string) ([]store.TransactionWithLines, error)
	ListAllWithLines(ctx context.Context) ([]store.TransactionWithLines, error)
}

// Reconciler is the only writer of accounts.current_balance. Every mutating
// flow funnels through ReconcileAccount; ReconcileAll is the operator-facing
// audit/repair pass over the whole book.
type Reconciler struct {
	accounts ReconcilerAccountStore
	txs      ReconcilerTransactionStore
	exec     store.Execer
	log      zerolog.Logger
}

func NewReconciler(accounts ReconcilerAccountStore, txs ReconcilerTransactionStore, exec store.Execer, log zerolog.Logger) *Reconciler {
	return &Reconciler{accounts: accounts, txs: txs, exec: exec, log: log}
}

type BalanceDrift struct {
	AccountID         string     `json:"account_id"`
	AccountName       string     `json:"account_name"`
	OpeningBalance    int64      `json:"opening_balance"`
	OpeningDate       *time.Time `json:"opening_date,omitempty"`
	StoredBalance     int64      `json:"stored_balance"`
	CalculatedBalance int64      `json:"calculated_balance"`
	Difference        int64      `json:"difference"`
	PersistError      string     `json:"persist_error,omitempty"`
}

func (r *Reconciler) ReconcileAccount(ctx context.Context, accountID string) (int64, error) {
	account, err := r.accounts.GetByID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("load account %s: %w", accountID, err)
	}
	affecting, err := r.txs.ListAffecting(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("load transactions for %s: %w", accountID, err)
	}
	effects := ledger.ClassifyAll(toLedgerTransactions(affecting))
	balance := ledger.Recompute(accountID, openingOf(account), effects)
	if balance == account.CurrentBalance {
		return balance, nil
	}
	if err := r.accounts.UpdateCurrentBalance(ctx, r.exec, accountID, balance); err != nil {
		return balance, fmt.Errorf("%w: account %s: %v", ErrBalancePersist, accountID, err)
	}
	r.log.Info().
		Str("account_id", accountID).
		Int64("stored", account.CurrentBalance).
		Int64("calculated", balance).
		Msg("corrected drifted balance")
	return balance, nil
}

// ReconcileAll loads the full transaction history once, recomputes every
// active account against it, and repairs any account whose cached balance
// drifted. A failed write is recorded on that account's report row and never
// stops the pass; re-running is always safe.
func (r *Reconciler) ReconcileAll(ctx context.Context) ([]BalanceDrift, error) {
	accounts, err := r.accounts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	all, err := r.txs.ListAllWithLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	effects := ledger.ClassifyAll(toLedgerTransactions(all))

	drifts := make([]BalanceDrift, 0)
	for _, account := range accounts {
		calculated := ledger.Recompute(account.ID, openingOf(account), effects)
		if calculated == account.CurrentBalance {
			continue
		}
		drift := BalanceDrift{
			AccountID:         account.ID,
			AccountName:       account.Name,
			OpeningBalance:    account.OpeningBalance,
			OpeningDate:       account.OpeningDate,
			StoredBalance:     account.CurrentBalance,
			CalculatedBalance: calculated,
			Difference:        account.CurrentBalance - calculated,
		}
		if err := r.accounts.UpdateCurrentBalance(ctx, r.exec, account.ID, calculated); err != nil {
			drift.PersistError = err.Error()
			r.log.Error().Err(err).Str("account_id", account.ID).Msg("failed to persist corrected balance")
		}
		drifts = append(drifts, drift)
	}
	return drifts, nil
}

func openingOf(account models.Account) ledger.Opening {
	opening := ledger.Opening{Balance: account.OpeningBalance}
	if account.OpeningDate != nil {
		opening.Date = *account.OpeningDate
	}
	return opening
}

func toLedgerTransactions(rows []store.TransactionWithLines) []ledger.Transaction {
	txs := make([]ledger.Transaction, 0, len(rows))
	for _, row := range rows {
		lines := make([]ledger.Line, 0, len(row.Lines))
		for _, line := range row.Lines {
			lines = append(lines, ledger.Line{
				Type:   ledger.NormalizeLineType(line.LineType),
				Amount: line.Amount,
			})
		}
		txs = append(txs, ledger.Transaction{
			ID:                  row.ID,
			AccountID:           row.AccountID,
			SettlementAccountID: row.SettlementAccountID,
			Date:                row.Date,
			SettlementDate:      row.SettlementDate,
			TotalAmount:         row.TotalAmount,
			IsCashSettled:       row.IsCashSettled,
			SettledAmount:       row.SettledAmount,
			Lines:               lines,
		})
	}
	return txs
}
