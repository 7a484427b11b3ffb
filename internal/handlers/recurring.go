package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/omliv423/money-tracker-sub001/internal/models"
	"github.com/omliv423/money-tracker-sub001/internal/services"
	"github.com/omliv423/money-tracker-sub001/internal/validator"
)

type recurringLineRequest struct {
	CategoryID  *string `json:"category_id"`
	LineType    string  `json:"line_type"`
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
}

type createRecurringRequest struct {
	AccountID           string                 `json:"account_id"`
	SettlementAccountID *string                `json:"settlement_account_id"`
	Name                string                 `json:"name"`
	DayOfMonth          int                    `json:"day_of_month"`
	PaymentDelayDays    int                    `json:"payment_delay_days"`
	IsCashSettled       bool                   `json:"is_cash_settled"`
	Lines               []recurringLineRequest `json:"lines"`
}

func (h *Handler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	userID, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createRecurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.AccountID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "account_id and name are required")
		return
	}
	if req.DayOfMonth < 1 || req.DayOfMonth > 31 {
		respondError(w, http.StatusBadRequest, "day_of_month must be between 1 and 31")
		return
	}
	if req.PaymentDelayDays < 0 {
		respondError(w, http.StatusBadRequest, "payment_delay_days must not be negative")
		return
	}
	if len(req.Lines) == 0 {
		respondError(w, http.StatusBadRequest, "lines_required")
		return
	}
	template := models.RecurringTransaction{
		ID:                  uuid.NewString(),
		HouseholdID:         householdID,
		AccountID:           req.AccountID,
		SettlementAccountID: req.SettlementAccountID,
		Name:                req.Name,
		DayOfMonth:          req.DayOfMonth,
		PaymentDelayDays:    req.PaymentDelayDays,
		IsCashSettled:       req.IsCashSettled,
	}
	lines := make([]models.RecurringTransactionLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		if err := validator.ValidateLineType(line.LineType); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		amountMinor, err := parseAmountMinor(line.Amount)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		lines = append(lines, models.RecurringTransactionLine{
			ID:          uuid.NewString(),
			RecurringID: template.ID,
			CategoryID:  line.CategoryID,
			LineType:    line.LineType,
			Amount:      amountMinor,
			Description: line.Description,
		})
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.recurring.Create(r.Context(), tx, template, lines); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"recurring_id": template.ID})
		return h.audit.Log(r.Context(), tx, householdID, userID, "create_recurring", "recurring_transaction", template.ID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create recurring transaction")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"recurring_id": template.ID})
}

func (h *Handler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	_, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	templates, err := h.recurring.ListByHousehold(r.Context(), householdID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load recurring transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(templates))
	for _, template := range templates {
		lines := make([]map[string]any, 0, len(template.Lines))
		for _, line := range template.Lines {
			lines = append(lines, map[string]any{
				"id":          line.ID,
				"category_id": line.CategoryID,
				"line_type":   line.LineType,
				"amount":      formatMoney(line.Amount),
				"description": line.Description,
			})
		}
		normalized = append(normalized, map[string]any{
			"id":                    template.ID,
			"account_id":            template.AccountID,
			"settlement_account_id": template.SettlementAccountID,
			"name":                  template.Name,
			"day_of_month":          template.DayOfMonth,
			"payment_delay_days":    template.PaymentDelayDays,
			"is_cash_settled":       template.IsCashSettled,
			"lines":                 lines,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

type registerRecurringRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (h *Handler) RegisterRecurring(w http.ResponseWriter, r *http.Request) {
	userID, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	recurringID := chi.URLParam(r, "id")
	var req registerRecurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Year < 2000 || req.Month < 1 || req.Month > 12 {
		respondError(w, http.StatusBadRequest, "invalid_period")
		return
	}
	transactionID, err := h.entries.RegisterRecurring(r.Context(), services.RegisterRecurringRequest{
		HouseholdID: householdID,
		UserID:      userID,
		RecurringID: recurringID,
		Year:        req.Year,
		Month:       time.Month(req.Month),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"transaction_id": transactionID})
}
