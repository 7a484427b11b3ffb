package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestAuditLogInsertsHousehold(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			gotQuery = query
			gotArgs = args
			return stubResult{rows: 1}, nil
		},
	}
	s := NewAuditStore(stubDB{})
	err := s.Log(context.Background(), execer, "house-1", "user-1", "create_account", "account", "acct-1", `{"account_id":"acct-1"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "household_id") {
		t.Fatalf("insert does not record household: %s", gotQuery)
	}
	if len(gotArgs) != 6 || gotArgs[0] != "house-1" || gotArgs[1] != "user-1" {
		t.Fatalf("unexpected insert args: %#v", gotArgs)
	}
}

func TestAuditListFiltersByHousehold(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	db := stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			gotQuery = query
			gotArgs = args
			rows := dest.(*[]AuditEntry)
			*rows = append(*rows, AuditEntry{ID: "log-1", HouseholdID: "house-1", Action: "login"})
			return nil
		},
	}
	s := NewAuditStore(db)
	rows, err := s.ListByHousehold(context.Background(), "house-1", 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "household_id = $1") {
		t.Fatalf("list is not household scoped: %s", gotQuery)
	}
	if len(gotArgs) != 3 || gotArgs[0] != "house-1" {
		t.Fatalf("unexpected query args: %#v", gotArgs)
	}
	if len(rows) != 1 || rows[0].Action != "login" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}
