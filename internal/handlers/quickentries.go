package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/omliv423/money-tracker-sub001/internal/models"
	"github.com/omliv423/money-tracker-sub001/internal/services"
	"github.com/omliv423/money-tracker-sub001/internal/validator"
)

type createQuickEntryRequest struct {
	AccountID    string  `json:"account_id"`
	CategoryID   *string `json:"category_id"`
	Name         string  `json:"name"`
	LineType     string  `json:"line_type"`
	Counterparty string  `json:"counterparty"`
}

func (h *Handler) CreateQuickEntry(w http.ResponseWriter, r *http.Request) {
	userID, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createQuickEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.AccountID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "account_id and name are required")
		return
	}
	if err := validator.ValidateLineType(req.LineType); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	entry := models.QuickEntry{
		ID:           uuid.NewString(),
		HouseholdID:  householdID,
		AccountID:    req.AccountID,
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		LineType:     req.LineType,
		Counterparty: req.Counterparty,
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.quick.Create(r.Context(), tx, entry); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"quick_entry_id": entry.ID})
		return h.audit.Log(r.Context(), tx, householdID, userID, "create_quick_entry", "quick_entry", entry.ID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create quick entry")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"quick_entry_id": entry.ID})
}

func (h *Handler) ListQuickEntries(w http.ResponseWriter, r *http.Request) {
	_, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entries, err := h.quick.ListByHousehold(r.Context(), householdID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load quick entries")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

type recordQuickEntryRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

func (h *Handler) RecordQuickEntry(w http.ResponseWriter, r *http.Request) {
	userID, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	quickEntryID := chi.URLParam(r, "id")
	var req recordQuickEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	transactionID, err := h.entries.RecordQuickEntry(r.Context(), services.QuickEntryRequest{
		HouseholdID:  householdID,
		UserID:       userID,
		QuickEntryID: quickEntryID,
		AmountMinor:  amountMinor,
		Date:         date,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"transaction_id": transactionID})
}
