package store

import (
	"context"
	"time"

	"github.com/lib/pq"

	"github.com/omliv423/money-tracker-sub001/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionWithLines struct {
	models.Transaction
	Lines []models.TransactionLine
}

type TransactionInput struct {
	ID                  string
	HouseholdID         string
	AccountID           string
	SettlementAccountID *string
	Date                time.Time
	SettlementDate      *time.Time
	TotalAmount         int64
	IsCashSettled       bool
	SettledAmount       int64
	Memo                string
}

type TransactionLineInput struct {
	ID            string
	TransactionID string
	CategoryID    *string
	LineType      string
	Amount        int64
	Description   string
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput, lines []TransactionLineInput) error {
	query := `
		INSERT INTO transactions (id, household_id, account_id, settlement_account_id, date, settlement_date, total_amount, is_cash_settled, settled_amount, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := tx.ExecContext(ctx, query,
		input.ID, input.HouseholdID, input.AccountID, input.SettlementAccountID,
		input.Date, input.SettlementDate, input.TotalAmount, input.IsCashSettled,
		input.SettledAmount, input.Memo,
	); err != nil {
		return err
	}
	lineQuery := `
		INSERT INTO transaction_lines (id, transaction_id, category_id, line_type, amount, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, lineQuery,
			line.ID, line.TransactionID, line.CategoryID, line.LineType, line.Amount, line.Description,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (TransactionWithLines, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, household_id, account_id, settlement_account_id, date, settlement_date,
		       total_amount, is_cash_settled, settled_amount, memo, created_at
		FROM transactions
		WHERE id = $1
	`, transactionID)
	if err != nil {
		return TransactionWithLines{}, err
	}
	lines, err := s.loadLines(ctx, []string{row.ID})
	if err != nil {
		return TransactionWithLines{}, err
	}
	return TransactionWithLines{Transaction: row, Lines: lines[row.ID]}, nil
}

// ListAffecting returns every transaction that can contribute a settlement
// effect to the given account, whether as its primary account or as the
// settlement target.
func (s *TransactionStore) ListAffecting(ctx context.Context, accountID string) ([]TransactionWithLines, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, household_id, account_id, settlement_account_id, date, settlement_date,
		       total_amount, is_cash_settled, settled_amount, memo, created_at
		FROM transactions
		WHERE account_id = $1 OR settlement_account_id = $1
		ORDER BY date, created_at
	`, accountID)
	if err != nil {
		return nil, err
	}
	return s.attachLines(ctx, rows)
}

func (s *TransactionStore) ListAllWithLines(ctx context.Context) ([]TransactionWithLines, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, household_id, account_id, settlement_account_id, date, settlement_date,
		       total_amount, is_cash_settled, settled_amount, memo, created_at
		FROM transactions
		ORDER BY date, created_at
	`)
	if err != nil {
		return nil, err
	}
	return s.attachLines(ctx, rows)
}

func (s *TransactionStore) ListByHousehold(ctx context.Context, householdID string, limit, offset int) ([]TransactionWithLines, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, household_id, account_id, settlement_account_id, date, settlement_date,
		       total_amount, is_cash_settled, settled_amount, memo, created_at
		FROM transactions
		WHERE household_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`, householdID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.attachLines(ctx, rows)
}

func (s *TransactionStore) UpdateSettlement(ctx context.Context, tx Execer, transactionID, settlementAccountID string, settledAmount int64, settlementDate time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET settlement_account_id = $1, settled_amount = $2, settlement_date = $3
		WHERE id = $4
	`, settlementAccountID, settledAmount, settlementDate, transactionID)
	return err
}

// Delete removes a transaction; its lines go with it via ON DELETE CASCADE.
func (s *TransactionStore) Delete(ctx context.Context, tx Execer, transactionID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TransactionStore) attachLines(ctx context.Context, rows []models.Transaction) ([]TransactionWithLines, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	lines, err := s.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make([]TransactionWithLines, 0, len(rows))
	for _, row := range rows {
		result = append(result, TransactionWithLines{Transaction: row, Lines: lines[row.ID]})
	}
	return result, nil
}

func (s *TransactionStore) loadLines(ctx context.Context, transactionIDs []string) (map[string][]models.TransactionLine, error) {
	grouped := make(map[string][]models.TransactionLine, len(transactionIDs))
	if len(transactionIDs) == 0 {
		return grouped, nil
	}
	var rows []models.TransactionLine
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, transaction_id, category_id, line_type, amount, description
		FROM transaction_lines
		WHERE transaction_id = ANY($1)
		ORDER BY id
	`, pq.Array(transactionIDs))
	if err != nil {
		return nil, err
	}
	for _, line := range rows {
		grouped[line.TransactionID] = append(grouped[line.TransactionID], line)
	}
	return grouped, nil
}
