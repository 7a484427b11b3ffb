package store

import (
	"context"
	"time"
)

type AuditStore struct {
	db DB
}

func NewAuditStore(db DB) *AuditStore {
	return &AuditStore{db: db}
}

type AuditEntry struct {
	ID          string    `db:"id" json:"id"`
	HouseholdID string    `db:"household_id" json:"household_id"`
	ActorUserID *string   `db:"actor_user_id" json:"actor_user_id,omitempty"`
	Action      string    `db:"action" json:"action"`
	EntityType  string    `db:"entity_type" json:"entity_type"`
	EntityID    string    `db:"entity_id" json:"entity_id"`
	Data        string    `db:"data" json:"data"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (s *AuditStore) Log(ctx context.Context, tx Execer, householdID, actorID, action, entityType, entityID, data string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_logs (id, household_id, actor_user_id, action, entity_type, entity_id, data)
		VALUES (gen_random_uuid()::text, $1, $2, $3, $4, $5, $6)
	`, householdID, actorID, action, entityType, entityID, data)
	return err
}

func (s *AuditStore) ListByHousehold(ctx context.Context, householdID string, limit, offset int) ([]AuditEntry, error) {
	var rows []AuditEntry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, household_id, actor_user_id, action, entity_type, entity_id, data, created_at
		FROM audit_logs
		WHERE household_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, householdID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
