package store

import (
	"context"

	"github.com/omliv423/money-tracker-sub001/internal/models"
)

type QuickEntryStore struct {
	db DB
}

func NewQuickEntryStore(db DB) *QuickEntryStore {
	return &QuickEntryStore{db: db}
}

func (s *QuickEntryStore) Create(ctx context.Context, tx Execer, entry models.QuickEntry) error {
	query := `
		INSERT INTO quick_entries (id, household_id, account_id, category_id, name, line_type, counterparty)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		entry.ID, entry.HouseholdID, entry.AccountID, entry.CategoryID,
		entry.Name, entry.LineType, entry.Counterparty,
	)
	return err
}

func (s *QuickEntryStore) GetByID(ctx context.Context, quickEntryID string) (models.QuickEntry, error) {
	var row models.QuickEntry
	err := s.db.GetContext(ctx, &row, `
		SELECT id, household_id, account_id, category_id, name, line_type, counterparty
		FROM quick_entries
		WHERE id = $1
	`, quickEntryID)
	if err != nil {
		return models.QuickEntry{}, err
	}
	return row, nil
}

func (s *QuickEntryStore) ListByHousehold(ctx context.Context, householdID string) ([]models.QuickEntry, error) {
	var rows []models.QuickEntry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, household_id, account_id, category_id, name, line_type, counterparty
		FROM quick_entries
		WHERE household_id = $1
		ORDER BY name
	`, householdID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
