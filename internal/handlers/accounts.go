package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/omliv423/money-tracker-sub001/internal/middleware"
	"github.com/omliv423/money-tracker-sub001/internal/money"
	"github.com/omliv423/money-tracker-sub001/internal/store"
	"github.com/omliv423/money-tracker-sub001/internal/validator"
)

type createAccountRequest struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	OpeningBalance string `json:"opening_balance"`
	OpeningDate    string `json:"opening_date"`
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	householdID, ok := middleware.HouseholdIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := validator.ValidateAccountKind(req.Kind); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	input := store.AccountInput{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		Name:        req.Name,
		Kind:        req.Kind,
	}
	if req.OpeningBalance != "" {
		// Signed on purpose: a card account may open already in debt.
		opening, err := money.ParseMinor(req.OpeningBalance)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_opening_balance")
			return
		}
		input.OpeningBalance = opening
	}
	if req.OpeningDate != "" {
		openingDate, err := parseDate(req.OpeningDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_opening_date")
			return
		}
		input.OpeningDate = &openingDate
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.accounts.Create(r.Context(), tx, input); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"account_id": input.ID, "kind": input.Kind})
		return h.audit.Log(r.Context(), tx, householdID, userID, "create_account", "account", input.ID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create account")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"account_id": input.ID})
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	householdID, ok := middleware.HouseholdIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accounts, err := h.accounts.ListByHousehold(r.Context(), householdID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load accounts")
		return
	}
	normalized := make([]map[string]any, 0, len(accounts))
	for _, account := range accounts {
		normalized = append(normalized, map[string]any{
			"id":              account.ID,
			"name":            account.Name,
			"kind":            account.Kind,
			"opening_balance": formatMoney(account.OpeningBalance),
			"opening_date":    account.OpeningDate,
			"balance":         formatMoney(account.CurrentBalance),
			"is_active":       account.IsActive,
			"created_at":      account.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	householdID, ok := middleware.HouseholdIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := chi.URLParam(r, "id")
	account, err := h.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	if account.HouseholdID != householdID {
		respondError(w, http.StatusForbidden, "access denied")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"account_id": accountID,
		"balance":    formatMoney(account.CurrentBalance),
	})
}

// ReconcileAccount recomputes a single account's balance from its full
// transaction history and repairs the cached value if it drifted.
func (h *Handler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	householdID, ok := middleware.HouseholdIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := chi.URLParam(r, "id")
	account, err := h.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	if account.HouseholdID != householdID {
		respondError(w, http.StatusForbidden, "access denied")
		return
	}
	balance, err := h.reconciler.ReconcileAccount(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile account")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"account_id": accountID,
		"balance":    formatMoney(balance),
	})
}

func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	householdID, ok := middleware.HouseholdIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	accountID := chi.URLParam(r, "id")
	account, err := h.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	if account.HouseholdID != householdID {
		respondError(w, http.StatusForbidden, "access denied")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.accounts.Deactivate(r.Context(), tx, accountID); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"account_id": accountID})
		return h.audit.Log(r.Context(), tx, householdID, userID, "deactivate_account", "account", accountID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to deactivate account")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
