package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/omliv423/money-tracker-sub001/internal/auth"
	"github.com/omliv423/money-tracker-sub001/internal/models"
	"github.com/omliv423/money-tracker-sub001/internal/store"
)

func TestRegisterStartsNewHousehold(t *testing.T) {
	var createdHousehold string
	var createdAdmin bool
	handler := newTestHandler(handlerDeps{
		users: stubUserStore{
			createFn: func(_ context.Context, _ store.Execer, _, householdID, _, _, _ string, isAdmin bool) error {
				createdHousehold = householdID
				createdAdmin = isAdmin
				return nil
			},
		},
	})
	body := strings.NewReader(`{"username":"kenji","email":"kenji@example.com","password":"correct-horse"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rr := httptest.NewRecorder()
	handler.Register(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if createdHousehold == "" || !createdAdmin {
		t.Fatalf("first member must start a household as admin: %q %v", createdHousehold, createdAdmin)
	}
	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["token"] == "" || payload["household_id"] != createdHousehold {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestRegisterJoinUnknownHousehold(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		users: stubUserStore{
			countByHouseholdFn: func(context.Context, string) (int64, error) { return 0, nil },
		},
	})
	body := strings.NewReader(`{"username":"yuki","email":"yuki@example.com","password":"correct-horse","household_id":"ghost"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rr := httptest.NewRecorder()
	handler.Register(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		users: stubUserStore{
			getByEmailFn: func(context.Context, string) (models.User, error) {
				return models.User{}, sql.ErrNoRows
			},
		},
	})
	body := strings.NewReader(`{"email":"nobody@example.com","password":"whatever"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rr := httptest.NewRecorder()
	handler.Login(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLoginIssuesHouseholdToken(t *testing.T) {
	passwordHash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	handler := newTestHandler(handlerDeps{
		users: stubUserStore{
			getByEmailFn: func(context.Context, string) (models.User, error) {
				return models.User{ID: "user-1", HouseholdID: "house-1", PasswordHash: passwordHash}, nil
			},
		},
	})
	body := strings.NewReader(`{"email":"kenji@example.com","password":"correct-horse"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rr := httptest.NewRecorder()
	handler.Login(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	claims, err := auth.ParseToken("secret", payload["token"])
	if err != nil {
		t.Fatalf("token must parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.HouseholdID != "house-1" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}
