package store

import (
	"context"

	"github.com/omliv423/money-tracker-sub001/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, tx Execer, id, householdID, username, email, passwordHash string, isAdmin bool) error {
	query := `
		INSERT INTO users (id, household_id, username, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query, id, householdID, username, email, passwordHash, isAdmin)
	return err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, household_id, username, email, password_hash, is_admin, created_at
		FROM users
		WHERE email = $1
	`, email)
	if err != nil {
		return models.User{}, err
	}
	return row, nil
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, household_id, username, email, password_hash, is_admin, created_at
		FROM users
		WHERE id = $1
	`, userID)
	if err != nil {
		return models.User{}, err
	}
	return row, nil
}

func (s *UserStore) CountByHousehold(ctx context.Context, householdID string) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE household_id = $1`, householdID)
	return count, err
}

func (s *UserStore) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var isAdmin bool
	err := s.db.GetContext(ctx, &isAdmin, `SELECT is_admin FROM users WHERE id = $1`, userID)
	if err != nil {
		return false, err
	}
	return isAdmin, nil
}
