package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/omliv423/money-tracker-sub001/internal/db"
	"github.com/omliv423/money-tracker-sub001/internal/ledger"
	"github.com/omliv423/money-tracker-sub001/internal/models"
	"github.com/omliv423/money-tracker-sub001/internal/money"
	"github.com/omliv423/money-tracker-sub001/internal/store"
	"github.com/omliv423/money-tracker-sub001/internal/websocket"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrSameAccountTransfer = errors.New("cannot transfer to same account")
	ErrUnauthorizedAccount = errors.New("account does not belong to household")
	ErrInactiveAccount     = errors.New("account is inactive")
	ErrNoLines             = errors.New("transaction requires at least one line")
	ErrInvalidLineType     = errors.New("invalid line type")
	ErrAlreadySettled      = errors.New("transaction already settled")
	ErrInactiveTemplate    = errors.New("template is inactive")
)

type AccountStore interface {
	GetByID(ctx context.Context, accountID string) (models.Account, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput, lines []store.TransactionLineInput) error
	GetByID(ctx context.Context, transactionID string) (store.TransactionWithLines, error)
	UpdateSettlement(ctx context.Context, tx store.Execer, transactionID, settlementAccountID string, settledAmount int64, settlementDate time.Time) error
	Delete(ctx context.Context, tx store.Execer, transactionID string) (int64, error)
}

type QuickEntryStore interface {
	GetByID(ctx context.Context, quickEntryID string) (models.QuickEntry, error)
}

type RecurringStore interface {
	GetByID(ctx context.Context, recurringID string) (store.RecurringWithLines, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, householdID, actorID, action, entityType, entityID, data string) error
}

type BalanceReconciler interface {
	ReconcileAccount(ctx context.Context, accountID string) (int64, error)
}

type BalanceHub interface {
	BroadcastBalance(householdID string, update websocket.BalanceUpdate)
}

// EntryService owns every mutating flow that writes transactions. Each flow
// commits its writes, then runs the reconciliation pass on every account it
// touched so the cached balances never drift past a single request.
type EntryService struct {
	txRunner   db.TxRunner
	accounts   AccountStore
	txs        TransactionStore
	quick      QuickEntryStore
	recurring  RecurringStore
	audit      AuditStore
	reconciler BalanceReconciler
	hub        BalanceHub
	log        zerolog.Logger
}

func NewEntryService(txRunner db.TxRunner, accounts AccountStore, txs TransactionStore, quick QuickEntryStore, recurring RecurringStore, audit AuditStore, reconciler BalanceReconciler, hub BalanceHub, log zerolog.Logger) *EntryService {
	return &EntryService{
		txRunner:   txRunner,
		accounts:   accounts,
		txs:        txs,
		quick:      quick,
		recurring:  recurring,
		audit:      audit,
		reconciler: reconciler,
		hub:        hub,
		log:        log,
	}
}

type EntryLine struct {
	CategoryID  *string
	LineType    string
	AmountMinor int64
	Description string
}

type CreateEntryRequest struct {
	HouseholdID         string
	UserID              string
	AccountID           string
	SettlementAccountID *string
	Date                time.Time
	SettlementDate      *time.Time
	IsCashSettled       bool
	SettledAmountMinor  int64
	Memo                string
	Lines               []EntryLine
}

func (s *EntryService) CreateEntry(ctx context.Context, req CreateEntryRequest) (string, error) {
	if len(req.Lines) == 0 {
		return "", ErrNoLines
	}
	var total int64
	for _, line := range req.Lines {
		if line.AmountMinor < 0 {
			return "", ErrInvalidAmount
		}
		if !ledger.IsKnownLineType(ledger.NormalizeLineType(line.LineType)) {
			return "", ErrInvalidLineType
		}
		total += line.AmountMinor
	}
	if req.SettledAmountMinor < 0 {
		return "", ErrInvalidAmount
	}
	account, err := s.authorizedAccount(ctx, req.HouseholdID, req.AccountID)
	if err != nil {
		return "", err
	}
	if req.SettlementAccountID != nil {
		if _, err := s.authorizedAccount(ctx, req.HouseholdID, *req.SettlementAccountID); err != nil {
			return "", err
		}
	}

	transactionID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		input := store.TransactionInput{
			ID:                  transactionID,
			HouseholdID:         req.HouseholdID,
			AccountID:           account.ID,
			SettlementAccountID: req.SettlementAccountID,
			Date:                req.Date,
			SettlementDate:      req.SettlementDate,
			TotalAmount:         total,
			IsCashSettled:       req.IsCashSettled,
			SettledAmount:       req.SettledAmountMinor,
			Memo:                req.Memo,
		}
		if err := s.txs.Create(ctx, tx, input, s.lineInputs(transactionID, req.Lines)); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"transaction_id": transactionID})
		return s.audit.Log(ctx, tx, req.HouseholdID, req.UserID, "create_entry", "transaction", transactionID, string(data))
	})
	if err != nil {
		return "", err
	}
	if err := s.reconcileAndBroadcast(ctx, req.HouseholdID, affectedAccounts(req.AccountID, req.SettlementAccountID)...); err != nil {
		return transactionID, err
	}
	return transactionID, nil
}

type TransferRequest struct {
	HouseholdID   string
	UserID        string
	FromAccountID string
	ToAccountID   string
	AmountMinor   int64
	FeeMinor      int64
	Date          time.Time
	Memo          string
}

// Transfer writes two cash-settled transactions: an outgoing one carrying the
// amount plus any fee as expense lines, and an incoming one carrying the
// amount as a single income line. The fee stays on the sending account.
func (s *EntryService) Transfer(ctx context.Context, req TransferRequest) (string, string, error) {
	if req.AmountMinor <= 0 || req.FeeMinor < 0 {
		return "", "", ErrInvalidAmount
	}
	if req.FromAccountID == req.ToAccountID {
		return "", "", ErrSameAccountTransfer
	}
	if _, err := s.authorizedAccount(ctx, req.HouseholdID, req.FromAccountID); err != nil {
		return "", "", err
	}
	if _, err := s.authorizedAccount(ctx, req.HouseholdID, req.ToAccountID); err != nil {
		return "", "", err
	}

	outgoingID := uuid.NewString()
	incomingID := uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		outgoingLines := []store.TransactionLineInput{{
			ID:            uuid.NewString(),
			TransactionID: outgoingID,
			LineType:      string(ledger.LineExpense),
			Amount:        req.AmountMinor,
			Description:   "Transfer out",
		}}
		if req.FeeMinor > 0 {
			outgoingLines = append(outgoingLines, store.TransactionLineInput{
				ID:            uuid.NewString(),
				TransactionID: outgoingID,
				LineType:      string(ledger.LineExpense),
				Amount:        req.FeeMinor,
				Description:   "Transfer fee",
			})
		}
		if err := s.txs.Create(ctx, tx, store.TransactionInput{
			ID:            outgoingID,
			HouseholdID:   req.HouseholdID,
			AccountID:     req.FromAccountID,
			Date:          req.Date,
			TotalAmount:   req.AmountMinor + req.FeeMinor,
			IsCashSettled: true,
			Memo:          req.Memo,
		}, outgoingLines); err != nil {
			return err
		}
		if err := s.txs.Create(ctx, tx, store.TransactionInput{
			ID:            incomingID,
			HouseholdID:   req.HouseholdID,
			AccountID:     req.ToAccountID,
			Date:          req.Date,
			TotalAmount:   req.AmountMinor,
			IsCashSettled: true,
			Memo:          req.Memo,
		}, []store.TransactionLineInput{{
			ID:            uuid.NewString(),
			TransactionID: incomingID,
			LineType:      string(ledger.LineIncome),
			Amount:        req.AmountMinor,
			Description:   "Transfer in",
		}}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"outgoing_id": outgoingID,
			"incoming_id": incomingID,
		})
		return s.audit.Log(ctx, tx, req.HouseholdID, req.UserID, "transfer", "transaction", outgoingID, string(data))
	})
	if err != nil {
		return "", "", err
	}
	if err := s.reconcileAndBroadcast(ctx, req.HouseholdID, req.FromAccountID, req.ToAccountID); err != nil {
		return outgoingID, incomingID, err
	}
	return outgoingID, incomingID, nil
}

type QuickEntryRequest struct {
	HouseholdID  string
	UserID       string
	QuickEntryID string
	AmountMinor  int64
	Date         time.Time
}

// RecordQuickEntry materializes a template into a cash-settled transaction
// with the user-supplied amount.
func (s *EntryService) RecordQuickEntry(ctx context.Context, req QuickEntryRequest) (string, error) {
	if req.AmountMinor <= 0 {
		return "", ErrInvalidAmount
	}
	template, err := s.quick.GetByID(ctx, req.QuickEntryID)
	if err != nil {
		return "", err
	}
	if template.HouseholdID != req.HouseholdID {
		return "", ErrUnauthorizedAccount
	}
	return s.CreateEntry(ctx, CreateEntryRequest{
		HouseholdID:   req.HouseholdID,
		UserID:        req.UserID,
		AccountID:     template.AccountID,
		Date:          req.Date,
		IsCashSettled: true,
		Memo:          template.Counterparty,
		Lines: []EntryLine{{
			CategoryID:  template.CategoryID,
			LineType:    template.LineType,
			AmountMinor: req.AmountMinor,
			Description: template.Name,
		}},
	})
}

type RegisterRecurringRequest struct {
	HouseholdID string
	UserID      string
	RecurringID string
	Year        int
	Month       time.Month
}

// RegisterRecurring materializes a recurring template for the given month.
// The accrual date is the template's day-of-month clamped to the month's last
// day; the settlement date trails it by the template's payment delay.
func (s *EntryService) RegisterRecurring(ctx context.Context, req RegisterRecurringRequest) (string, error) {
	template, err := s.recurring.GetByID(ctx, req.RecurringID)
	if err != nil {
		return "", err
	}
	if template.HouseholdID != req.HouseholdID {
		return "", ErrUnauthorizedAccount
	}
	if !template.IsActive {
		return "", ErrInactiveTemplate
	}

	accrual := accrualDateFor(req.Year, req.Month, template.DayOfMonth)
	// Templates routed through a settlement account carry a settlement date
	// even at zero delay, so the payment date is explicit on the transaction.
	var settlementDate *time.Time
	if template.PaymentDelayDays > 0 || template.SettlementAccountID != nil {
		settled := accrual.AddDate(0, 0, template.PaymentDelayDays)
		settlementDate = &settled
	}

	lines := make([]EntryLine, 0, len(template.Lines))
	for _, line := range template.Lines {
		lines = append(lines, EntryLine{
			CategoryID:  line.CategoryID,
			LineType:    line.LineType,
			AmountMinor: line.Amount,
			Description: line.Description,
		})
	}
	return s.CreateEntry(ctx, CreateEntryRequest{
		HouseholdID:         req.HouseholdID,
		UserID:              req.UserID,
		AccountID:           template.AccountID,
		SettlementAccountID: template.SettlementAccountID,
		Date:                accrual,
		SettlementDate:      settlementDate,
		IsCashSettled:       template.IsCashSettled,
		Memo:                template.Name,
		Lines:               lines,
	})
}

type SettleRequest struct {
	HouseholdID         string
	UserID              string
	TransactionID       string
	SettlementAccountID string
	AmountMinor         int64
	Date                time.Time
}

// Settle closes a deferred transaction against a settlement account, the
// credit-card "incur now, pay later" flow. Both the original account and the
// settlement account are reconciled afterwards since the effect may move
// between them.
func (s *EntryService) Settle(ctx context.Context, req SettleRequest) error {
	if req.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	existing, err := s.txs.GetByID(ctx, req.TransactionID)
	if err != nil {
		return err
	}
	if existing.HouseholdID != req.HouseholdID {
		return ErrUnauthorizedAccount
	}
	if existing.IsCashSettled || existing.SettledAmount > 0 {
		return ErrAlreadySettled
	}
	if _, err := s.authorizedAccount(ctx, req.HouseholdID, req.SettlementAccountID); err != nil {
		return err
	}

	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.txs.UpdateSettlement(ctx, tx, req.TransactionID, req.SettlementAccountID, req.AmountMinor, req.Date); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"transaction_id":        req.TransactionID,
			"settlement_account_id": req.SettlementAccountID,
		})
		return s.audit.Log(ctx, tx, req.HouseholdID, req.UserID, "settle", "transaction", req.TransactionID, string(data))
	})
	if err != nil {
		return err
	}
	return s.reconcileAndBroadcast(ctx, req.HouseholdID, existing.AccountID, req.SettlementAccountID)
}

func (s *EntryService) DeleteEntry(ctx context.Context, householdID, userID, transactionID string) error {
	existing, err := s.txs.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if existing.HouseholdID != householdID {
		return ErrUnauthorizedAccount
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.txs.Delete(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		data, _ := json.Marshal(map[string]string{"transaction_id": transactionID})
		return s.audit.Log(ctx, tx, householdID, userID, "delete_entry", "transaction", transactionID, string(data))
	})
	if err != nil {
		return err
	}
	return s.reconcileAndBroadcast(ctx, householdID, affectedAccounts(existing.AccountID, existing.SettlementAccountID)...)
}

func (s *EntryService) authorizedAccount(ctx context.Context, householdID, accountID string) (models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return models.Account{}, err
	}
	if account.HouseholdID != householdID {
		return models.Account{}, ErrUnauthorizedAccount
	}
	if !account.IsActive {
		return models.Account{}, ErrInactiveAccount
	}
	return account, nil
}

func (s *EntryService) reconcileAndBroadcast(ctx context.Context, householdID string, accountIDs ...string) error {
	seen := make(map[string]struct{}, len(accountIDs))
	for _, accountID := range accountIDs {
		if _, done := seen[accountID]; done {
			continue
		}
		seen[accountID] = struct{}{}
		balance, err := s.reconciler.ReconcileAccount(ctx, accountID)
		if err != nil {
			s.log.Error().Err(err).Str("account_id", accountID).Msg("reconciliation after mutation failed")
			return err
		}
		s.hub.BroadcastBalance(householdID, websocket.BalanceUpdate{
			AccountID: accountID,
			Balance:   money.FormatMinor(balance),
		})
	}
	return nil
}

func (s *EntryService) lineInputs(transactionID string, lines []EntryLine) []store.TransactionLineInput {
	inputs := make([]store.TransactionLineInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, store.TransactionLineInput{
			ID:            uuid.NewString(),
			TransactionID: transactionID,
			CategoryID:    line.CategoryID,
			LineType:      string(ledger.NormalizeLineType(line.LineType)),
			Amount:        line.AmountMinor,
			Description:   line.Description,
		})
	}
	return inputs
}

func affectedAccounts(accountID string, settlementAccountID *string) []string {
	ids := []string{accountID}
	if settlementAccountID != nil && *settlementAccountID != accountID {
		ids = append(ids, *settlementAccountID)
	}
	return ids
}
