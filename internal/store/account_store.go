package store

import (
	"context"
	"time"

	"github.com/omliv423/money-tracker-sub001/internal/models"
)

type AccountStore struct {
	db DB
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

type AccountInput struct {
	ID             string
	HouseholdID    string
	Name           string
	Kind           string
	OpeningBalance int64
	OpeningDate    *time.Time
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, input AccountInput) error {
	query := `
		INSERT INTO accounts (id, household_id, name, kind, opening_balance, opening_date, current_balance, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $5, TRUE)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.HouseholdID, input.Name, input.Kind, input.OpeningBalance, input.OpeningDate,
	)
	return err
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, household_id, name, kind, opening_balance, opening_date, current_balance, is_active, created_at
		FROM accounts
		WHERE id = $1
	`, accountID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) ListByHousehold(ctx context.Context, householdID string) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, household_id, name, kind, opening_balance, opening_date, current_balance, is_active, created_at
		FROM accounts
		WHERE household_id = $1
		ORDER BY created_at
	`, householdID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) ListActive(ctx context.Context) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, household_id, name, kind, opening_balance, opening_date, current_balance, is_active, created_at
		FROM accounts
		WHERE is_active = TRUE
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) UpdateCurrentBalance(ctx context.Context, tx Execer, accountID string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET current_balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, accountID)
	return err
}

func (s *AccountStore) Deactivate(ctx context.Context, tx Execer, accountID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`, accountID)
	return err
}
