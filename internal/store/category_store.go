package store

import (
	"context"

	"github.com/omliv423/money-tracker-sub001/internal/models"
)

type CategoryStore struct {
	db DB
}

func NewCategoryStore(db DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) Create(ctx context.Context, tx Execer, category models.Category) error {
	query := `
		INSERT INTO categories (id, household_id, parent_id, kind, name)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query,
		category.ID, category.HouseholdID, category.ParentID, category.Kind, category.Name,
	)
	return err
}

func (s *CategoryStore) ListByHousehold(ctx context.Context, householdID string) ([]models.Category, error) {
	var rows []models.Category
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, household_id, parent_id, kind, name
		FROM categories
		WHERE household_id = $1
		ORDER BY kind, name
	`, householdID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CategoryStore) GetByID(ctx context.Context, categoryID string) (models.Category, error) {
	var row models.Category
	err := s.db.GetContext(ctx, &row, `
		SELECT id, household_id, parent_id, kind, name
		FROM categories
		WHERE id = $1
	`, categoryID)
	if err != nil {
		return models.Category{}, err
	}
	return row, nil
}
