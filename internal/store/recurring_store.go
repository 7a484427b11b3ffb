package store

import (
	"context"

	"github.com/lib/pq"

	"github.com/omliv423/money-tracker-sub001/internal/models"
)

type RecurringStore struct {
	db DB
}

func NewRecurringStore(db DB) *RecurringStore {
	return &RecurringStore{db: db}
}

type RecurringWithLines struct {
	models.RecurringTransaction
	Lines []models.RecurringTransactionLine
}

func (s *RecurringStore) Create(ctx context.Context, tx Execer, template models.RecurringTransaction, lines []models.RecurringTransactionLine) error {
	query := `
		INSERT INTO recurring_transactions (id, household_id, account_id, settlement_account_id, name, day_of_month, payment_delay_days, is_cash_settled, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
	`
	if _, err := tx.ExecContext(ctx, query,
		template.ID, template.HouseholdID, template.AccountID, template.SettlementAccountID,
		template.Name, template.DayOfMonth, template.PaymentDelayDays, template.IsCashSettled,
	); err != nil {
		return err
	}
	lineQuery := `
		INSERT INTO recurring_transaction_lines (id, recurring_id, category_id, line_type, amount, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, lineQuery,
			line.ID, line.RecurringID, line.CategoryID, line.LineType, line.Amount, line.Description,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *RecurringStore) GetByID(ctx context.Context, recurringID string) (RecurringWithLines, error) {
	var row models.RecurringTransaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, household_id, account_id, settlement_account_id, name, day_of_month, payment_delay_days, is_cash_settled, is_active
		FROM recurring_transactions
		WHERE id = $1
	`, recurringID)
	if err != nil {
		return RecurringWithLines{}, err
	}
	lines, err := s.loadLines(ctx, []string{row.ID})
	if err != nil {
		return RecurringWithLines{}, err
	}
	return RecurringWithLines{RecurringTransaction: row, Lines: lines[row.ID]}, nil
}

func (s *RecurringStore) ListByHousehold(ctx context.Context, householdID string) ([]RecurringWithLines, error) {
	var rows []models.RecurringTransaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, household_id, account_id, settlement_account_id, name, day_of_month, payment_delay_days, is_cash_settled, is_active
		FROM recurring_transactions
		WHERE household_id = $1 AND is_active = TRUE
		ORDER BY name
	`, householdID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	lines, err := s.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make([]RecurringWithLines, 0, len(rows))
	for _, row := range rows {
		result = append(result, RecurringWithLines{RecurringTransaction: row, Lines: lines[row.ID]})
	}
	return result, nil
}

func (s *RecurringStore) loadLines(ctx context.Context, recurringIDs []string) (map[string][]models.RecurringTransactionLine, error) {
	grouped := make(map[string][]models.RecurringTransactionLine, len(recurringIDs))
	if len(recurringIDs) == 0 {
		return grouped, nil
	}
	var rows []models.RecurringTransactionLine
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, recurring_id, category_id, line_type, amount, description
		FROM recurring_transaction_lines
		WHERE recurring_id = ANY($1)
		ORDER BY id
	`, pq.Array(recurringIDs))
	if err != nil {
		return nil, err
	}
	for _, line := range rows {
		grouped[line.RecurringID] = append(grouped[line.RecurringID], line)
	}
	return grouped, nil
}
