package services

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/omliv423/money-tracker-sub001/internal/models"
	"github.com/omliv423/money-tracker-sub001/internal/store"
	"github.com/omliv423/money-tracker-sub001/internal/websocket"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubAccountStore struct {
	getByIDFn func(ctx context.Context, accountID string) (models.Account, error)
}

func (s stubAccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	if s.getByIDFn == nil {
		return models.Account{ID: accountID, HouseholdID: "house-1", IsActive: true}, nil
	}
	return s.getByIDFn(ctx, accountID)
}

type stubTxStore struct {
	createFn           func(ctx context.Context, tx store.Execer, input store.TransactionInput, lines []store.TransactionLineInput) error
	getByIDFn          func(ctx context.Context, transactionID string) (store.TransactionWithLines, error)
	updateSettlementFn func(ctx context.Context, tx store.Execer, transactionID, settlementAccountID string, settledAmount int64, settlementDate time.Time) error
	deleteFn           func(ctx context.Context, tx store.Execer, transactionID string) (int64, error)
}

func (s stubTxStore) Create(ctx context.Context, tx store.Execer, input store.TransactionInput, lines []store.TransactionLineInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input, lines)
}

func (s stubTxStore) GetByID(ctx context.Context, transactionID string) (store.TransactionWithLines, error) {
	return s.getByIDFn(ctx, transactionID)
}

func (s stubTxStore) UpdateSettlement(ctx context.Context, tx store.Execer, transactionID, settlementAccountID string, settledAmount int64, settlementDate time.Time) error {
	if s.updateSettlementFn == nil {
		return nil
	}
	return s.updateSettlementFn(ctx, tx, transactionID, settlementAccountID, settledAmount, settlementDate)
}

func (s stubTxStore) Delete(ctx context.Context, tx store.Execer, transactionID string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, tx, transactionID)
}

type stubQuickStore struct {
	getByIDFn func(ctx context.Context, quickEntryID string) (models.QuickEntry, error)
}

func (s stubQuickStore) GetByID(ctx context.Context, quickEntryID string) (models.QuickEntry, error) {
	return s.getByIDFn(ctx, quickEntryID)
}

type stubRecurringStore struct {
	getByIDFn func(ctx context.Context, recurringID string) (store.RecurringWithLines, error)
}

func (s stubRecurringStore) GetByID(ctx context.Context, recurringID string) (store.RecurringWithLines, error) {
	return s.getByIDFn(ctx, recurringID)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, householdID, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, householdID, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, householdID, actorID, action, entityType, entityID, data)
}

type stubReconciler struct {
	balances map[string]int64
	calls    []string
}

func (s *stubReconciler) ReconcileAccount(_ context.Context, accountID string) (int64, error) {
	s.calls = append(s.calls, accountID)
	return s.balances[accountID], nil
}

type stubHub struct {
	calls []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.calls = append(s.calls, update)
}

func newTestService(accounts stubAccountStore, txs stubTxStore, quick stubQuickStore, recurring stubRecurringStore, reconciler *stubReconciler, hub *stubHub) *EntryService {
	return NewEntryService(fakeTxRunner{}, accounts, txs, quick, recurring, stubAuditStore{}, reconciler, hub, testLogger())
}

func TestTransferInvalidAmount(t *testing.T) {
	service := newTestService(stubAccountStore{}, stubTxStore{}, stubQuickStore{}, stubRecurringStore{}, &stubReconciler{}, &stubHub{})
	_, _, err := service.Transfer(context.Background(), TransferRequest{
		HouseholdID: "house-1", UserID: "user-1", FromAccountID: "a1", ToAccountID: "a2", AmountMinor: 0,
	})
	if err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransferSameAccount(t *testing.T) {
	service := newTestService(stubAccountStore{}, stubTxStore{}, stubQuickStore{}, stubRecurringStore{}, &stubReconciler{}, &stubHub{})
	_, _, err := service.Transfer(context.Background(), TransferRequest{
		HouseholdID: "house-1", UserID: "user-1", FromAccountID: "a1", ToAccountID: "a1", AmountMinor: 100,
	})
	if err != ErrSameAccountTransfer {
		t.Fatalf("expected ErrSameAccountTransfer, got %v", err)
	}
}

func TestTransferUnauthorizedHousehold(t *testing.T) {
	service := newTestService(stubAccountStore{
		getByIDFn: func(_ context.Context, accountID string) (models.Account, error) {
			return models.Account{ID: accountID, HouseholdID: "other-house", IsActive: true}, nil
		},
	}, stubTxStore{}, stubQuickStore{}, stubRecurringStore{}, &stubReconciler{}, &stubHub{})
	_, _, err := service.Transfer(context.Background(), TransferRequest{
		HouseholdID: "house-1", UserID: "user-1", FromAccountID: "a1", ToAccountID: "a2", AmountMinor: 100,
	})
	if err != ErrUnauthorizedAccount {
		t.Fatalf("expected ErrUnauthorizedAccount, got %v", err)
	}
}

func TestTransferWithFee(t *testing.T) {
	var created []store.TransactionInput
	var createdLines [][]store.TransactionLineInput
	reconciler := &stubReconciler{balances: map[string]int64{"acct-x": 3950, "acct-y": 1100}}
	hub := &stubHub{}
	service := newTestService(stubAccountStore{}, stubTxStore{
		createFn: func(_ context.Context, _ store.Execer, input store.TransactionInput, lines []store.TransactionLineInput) error {
			created = append(created, input)
			createdLines = append(createdLines, lines)
			return nil
		},
	}, stubQuickStore{}, stubRecurringStore{}, reconciler, hub)

	outID, inID, err := service.Transfer(context.Background(), TransferRequest{
		HouseholdID:   "house-1",
		UserID:        "user-1",
		FromAccountID: "acct-x",
		ToAccountID:   "acct-y",
		AmountMinor:   1000,
		FeeMinor:      50,
		Date:          testDate(2024, 5, 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outID == "" || inID == "" || outID == inID {
		t.Fatalf("unexpected transaction ids: %s %s", outID, inID)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(created))
	}
	if created[0].TotalAmount != 1050 || !created[0].IsCashSettled {
		t.Fatalf("unexpected outgoing transaction: %#v", created[0])
	}
	if created[1].TotalAmount != 1000 || created[1].AccountID != "acct-y" {
		t.Fatalf("unexpected incoming transaction: %#v", created[1])
	}
	if len(createdLines[0]) != 2 || len(createdLines[1]) != 1 {
		t.Fatalf("unexpected line counts: %d %d", len(createdLines[0]), len(createdLines[1]))
	}
	if len(reconciler.calls) != 2 {
		t.Fatalf("both accounts must be reconciled, got %#v", reconciler.calls)
	}
	if len(hub.calls) != 2 || hub.calls[0].Balance != "39.50" {
		t.Fatalf("unexpected broadcasts: %#v", hub.calls)
	}
}

func TestCreateEntryRejectsUnknownLineType(t *testing.T) {
	service := newTestService(stubAccountStore{}, stubTxStore{}, stubQuickStore{}, stubRecurringStore{}, &stubReconciler{}, &stubHub{})
	_, err := service.CreateEntry(context.Background(), CreateEntryRequest{
		HouseholdID: "house-1",
		UserID:      "user-1",
		AccountID:   "acct-a",
		Date:        testDate(2024, 1, 1),
		Lines:       []EntryLine{{LineType: "mystery", AmountMinor: 100}},
	})
	if err != ErrInvalidLineType {
		t.Fatalf("expected ErrInvalidLineType, got %v", err)
	}
}

func TestCreateEntryNormalizesAliases(t *testing.T) {
	var captured []store.TransactionLineInput
	service := newTestService(stubAccountStore{}, stubTxStore{
		createFn: func(_ context.Context, _ store.Execer, _ store.TransactionInput, lines []store.TransactionLineInput) error {
			captured = lines
			return nil
		},
	}, stubQuickStore{}, stubRecurringStore{}, &stubReconciler{}, &stubHub{})
	_, err := service.CreateEntry(context.Background(), CreateEntryRequest{
		HouseholdID:   "house-1",
		UserID:        "user-1",
		AccountID:     "acct-a",
		Date:          testDate(2024, 1, 1),
		IsCashSettled: true,
		Lines: []EntryLine{
			{LineType: "advance", AmountMinor: 100},
			{LineType: "loan", AmountMinor: 200},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured[0].LineType != "asset" || captured[1].LineType != "liability" {
		t.Fatalf("aliases must be normalized: %#v", captured)
	}
}

func TestRecordQuickEntryIsCashSettled(t *testing.T) {
	var created store.TransactionInput
	reconciler := &stubReconciler{balances: map[string]int64{}}
	service := newTestService(stubAccountStore{}, stubTxStore{
		createFn: func(_ context.Context, _ store.Execer, input store.TransactionInput, _ []store.TransactionLineInput) error {
			created = input
			return nil
		},
	}, stubQuickStore{
		getByIDFn: func(context.Context, string) (models.QuickEntry, error) {
			return models.QuickEntry{
				ID:           "quick-1",
				HouseholdID:  "house-1",
				AccountID:    "acct-a",
				Name:         "Morning coffee",
				LineType:     "expense",
				Counterparty: "Corner cafe",
			}, nil
		},
	}, stubRecurringStore{}, reconciler, &stubHub{})

	id, err := service.RecordQuickEntry(context.Background(), QuickEntryRequest{
		HouseholdID:  "house-1",
		UserID:       "user-1",
		QuickEntryID: "quick-1",
		AmountMinor:  450,
		Date:         testDate(2024, 7, 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" || !created.IsCashSettled || created.TotalAmount != 450 {
		t.Fatalf("unexpected transaction: %#v", created)
	}
	if created.Memo != "Corner cafe" {
		t.Fatalf("unexpected memo: %s", created.Memo)
	}
}

func TestRegisterRecurringClampsAndDelays(t *testing.T) {
	bank := "bank"
	var created store.TransactionInput
	service := newTestService(stubAccountStore{}, stubTxStore{
		createFn: func(_ context.Context, _ store.Execer, input store.TransactionInput, _ []store.TransactionLineInput) error {
			created = input
			return nil
		},
	}, stubQuickStore{}, stubRecurringStore{
		getByIDFn: func(context.Context, string) (store.RecurringWithLines, error) {
			return store.RecurringWithLines{
				RecurringTransaction: models.RecurringTransaction{
					ID:                  "rec-1",
					HouseholdID:         "house-1",
					AccountID:           "credit-card",
					SettlementAccountID: &bank,
					Name:                "Streaming",
					DayOfMonth:          31,
					PaymentDelayDays:    27,
					IsActive:            true,
				},
				Lines: []models.RecurringTransactionLine{
					{ID: "rl-1", RecurringID: "rec-1", LineType: "expense", Amount: 1480},
				},
			}, nil
		},
	}, &stubReconciler{balances: map[string]int64{}}, &stubHub{})

	_, err := service.RegisterRecurring(context.Background(), RegisterRecurringRequest{
		HouseholdID: "house-1",
		UserID:      "user-1",
		RecurringID: "rec-1",
		Year:        2024,
		Month:       time.February,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.Date.Equal(testDate(2024, 2, 29)) {
		t.Fatalf("day 31 must clamp to Feb 29, got %v", created.Date)
	}
	if created.SettlementDate == nil || !created.SettlementDate.Equal(testDate(2024, 3, 27)) {
		t.Fatalf("settlement date must trail by 27 days, got %v", created.SettlementDate)
	}
	if created.IsCashSettled || created.SettledAmount != 0 {
		t.Fatalf("deferred template must materialize unsettled: %#v", created)
	}
}

func TestRegisterRecurringZeroDelayWithSettlementAccount(t *testing.T) {
	bank := "bank"
	var created store.TransactionInput
	service := newTestService(stubAccountStore{}, stubTxStore{
		createFn: func(_ context.Context, _ store.Execer, input store.TransactionInput, _ []store.TransactionLineInput) error {
			created = input
			return nil
		},
	}, stubQuickStore{}, stubRecurringStore{
		getByIDFn: func(context.Context, string) (store.RecurringWithLines, error) {
			return store.RecurringWithLines{
				RecurringTransaction: models.RecurringTransaction{
					ID:                  "rec-2",
					HouseholdID:         "house-1",
					AccountID:           "credit-card",
					SettlementAccountID: &bank,
					Name:                "Gym",
					DayOfMonth:          10,
					PaymentDelayDays:    0,
					IsActive:            true,
				},
				Lines: []models.RecurringTransactionLine{
					{ID: "rl-2", RecurringID: "rec-2", LineType: "expense", Amount: 980},
				},
			}, nil
		},
	}, &stubReconciler{balances: map[string]int64{}}, &stubHub{})

	_, err := service.RegisterRecurring(context.Background(), RegisterRecurringRequest{
		HouseholdID: "house-1",
		UserID:      "user-1",
		RecurringID: "rec-2",
		Year:        2024,
		Month:       time.April,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.SettlementDate == nil || !created.SettlementDate.Equal(testDate(2024, 4, 10)) {
		t.Fatalf("settlement-routed template must carry a settlement date, got %v", created.SettlementDate)
	}
}

func TestSettleAlreadySettled(t *testing.T) {
	service := newTestService(stubAccountStore{}, stubTxStore{
		getByIDFn: func(context.Context, string) (store.TransactionWithLines, error) {
			return store.TransactionWithLines{
				Transaction: models.Transaction{ID: "tx-1", HouseholdID: "house-1", AccountID: "acct-a", IsCashSettled: true},
			}, nil
		},
	}, stubQuickStore{}, stubRecurringStore{}, &stubReconciler{}, &stubHub{})
	err := service.Settle(context.Background(), SettleRequest{
		HouseholdID:         "house-1",
		UserID:              "user-1",
		TransactionID:       "tx-1",
		SettlementAccountID: "bank",
		AmountMinor:         5000,
		Date:                testDate(2024, 3, 5),
	})
	if err != ErrAlreadySettled {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
}

func TestSettleReconcilesBothAccounts(t *testing.T) {
	var settledAccount string
	var settledAmount int64
	reconciler := &stubReconciler{balances: map[string]int64{}}
	service := newTestService(stubAccountStore{}, stubTxStore{
		getByIDFn: func(context.Context, string) (store.TransactionWithLines, error) {
			return store.TransactionWithLines{
				Transaction: models.Transaction{ID: "tx-1", HouseholdID: "house-1", AccountID: "credit-card"},
			}, nil
		},
		updateSettlementFn: func(_ context.Context, _ store.Execer, _ string, settlementAccountID string, amount int64, _ time.Time) error {
			settledAccount = settlementAccountID
			settledAmount = amount
			return nil
		},
	}, stubQuickStore{}, stubRecurringStore{}, reconciler, &stubHub{})

	err := service.Settle(context.Background(), SettleRequest{
		HouseholdID:         "house-1",
		UserID:              "user-1",
		TransactionID:       "tx-1",
		SettlementAccountID: "bank",
		AmountMinor:         5000,
		Date:                testDate(2024, 3, 5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settledAccount != "bank" || settledAmount != 5000 {
		t.Fatalf("unexpected settlement write: %s %d", settledAccount, settledAmount)
	}
	if len(reconciler.calls) != 2 || reconciler.calls[0] != "credit-card" || reconciler.calls[1] != "bank" {
		t.Fatalf("both legs must be reconciled, got %#v", reconciler.calls)
	}
}

func TestDeleteEntryReconcilesAffectedAccounts(t *testing.T) {
	bank := "bank"
	reconciler := &stubReconciler{balances: map[string]int64{}}
	service := newTestService(stubAccountStore{}, stubTxStore{
		getByIDFn: func(context.Context, string) (store.TransactionWithLines, error) {
			return store.TransactionWithLines{
				Transaction: models.Transaction{
					ID:                  "tx-1",
					HouseholdID:         "house-1",
					AccountID:           "credit-card",
					SettlementAccountID: &bank,
				},
			}, nil
		},
	}, stubQuickStore{}, stubRecurringStore{}, reconciler, &stubHub{})

	if err := service.DeleteEntry(context.Background(), "house-1", "user-1", "tx-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reconciler.calls) != 2 {
		t.Fatalf("both affected accounts must be reconciled: %#v", reconciler.calls)
	}
}

func TestAccrualDateClamping(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		day   int
		want  time.Time
	}{
		{2024, time.February, 30, testDate(2024, 2, 29)},
		{2023, time.February, 30, testDate(2023, 2, 28)},
		{2024, time.April, 31, testDate(2024, 4, 30)},
		{2024, time.January, 15, testDate(2024, 1, 15)},
		{2024, time.June, 0, testDate(2024, 6, 1)},
	}
	for _, tc := range cases {
		if got := accrualDateFor(tc.year, tc.month, tc.day); !got.Equal(tc.want) {
			t.Fatalf("accrualDateFor(%d, %v, %d) = %v, want %v", tc.year, tc.month, tc.day, got, tc.want)
		}
	}
}
