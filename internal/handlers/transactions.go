package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/omliv423/money-tracker-sub001/internal/middleware"
	"github.com/omliv423/money-tracker-sub001/internal/services"
)

type transactionLineRequest struct {
	CategoryID  *string `json:"category_id"`
	LineType    string  `json:"line_type"`
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
}

type createTransactionRequest struct {
	AccountID           string                   `json:"account_id"`
	SettlementAccountID *string                  `json:"settlement_account_id"`
	Date                string                   `json:"date"`
	SettlementDate      string                   `json:"settlement_date"`
	IsCashSettled       bool                     `json:"is_cash_settled"`
	SettledAmount       string                   `json:"settled_amount"`
	Memo                string                   `json:"memo"`
	Lines               []transactionLineRequest `json:"lines"`
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.AccountID == "" {
		respondError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	var settlementDate *time.Time
	if req.SettlementDate != "" {
		parsed, err := parseDate(req.SettlementDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_settlement_date")
			return
		}
		settlementDate = &parsed
	}
	var settledMinor int64
	if req.SettledAmount != "" {
		settledMinor, err = parseAmountMinor(req.SettledAmount)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_settled_amount")
			return
		}
	}
	lines := make([]services.EntryLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		amountMinor, err := parseAmountMinor(line.Amount)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		lines = append(lines, services.EntryLine{
			CategoryID:  line.CategoryID,
			LineType:    line.LineType,
			AmountMinor: amountMinor,
			Description: line.Description,
		})
	}
	transactionID, err := h.entries.CreateEntry(r.Context(), services.CreateEntryRequest{
		HouseholdID:         householdID,
		UserID:              userID,
		AccountID:           req.AccountID,
		SettlementAccountID: req.SettlementAccountID,
		Date:                date,
		SettlementDate:      settlementDate,
		IsCashSettled:       req.IsCashSettled,
		SettledAmountMinor:  settledMinor,
		Memo:                req.Memo,
		Lines:               lines,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"transaction_id": transactionID})
}

type transferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Fee           string `json:"fee"`
	Date          string `json:"date"`
	Memo          string `json:"memo"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.FromAccountID == "" || req.ToAccountID == "" {
		respondError(w, http.StatusBadRequest, "both accounts are required")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	var feeMinor int64
	if req.Fee != "" {
		feeMinor, err = parseAmountMinor(req.Fee)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_fee")
			return
		}
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	outgoingID, incomingID, err := h.entries.Transfer(r.Context(), services.TransferRequest{
		HouseholdID:   householdID,
		UserID:        userID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		AmountMinor:   amountMinor,
		FeeMinor:      feeMinor,
		Date:          date,
		Memo:          req.Memo,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"outgoing_id": outgoingID,
		"incoming_id": incomingID,
	})
}

type settleRequest struct {
	SettlementAccountID string `json:"settlement_account_id"`
	Amount              string `json:"amount"`
	Date                string `json:"date"`
}

func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	userID, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	transactionID := chi.URLParam(r, "id")
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.SettlementAccountID == "" {
		respondError(w, http.StatusBadRequest, "settlement_account_id is required")
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
	err = h.entries.Settle(r.Context(), services.SettleRequest{
		HouseholdID:         householdID,
		UserID:              userID,
		TransactionID:       transactionID,
		SettlementAccountID: req.SettlementAccountID,
		AmountMinor:         amountMinor,
		Date:                date,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "settled"})
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	transactionID := chi.URLParam(r, "id")
	if err := h.entries.DeleteEntry(r.Context(), householdID, userID, transactionID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	_, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	offset := (page - 1) * limit
	transactions, err := h.transactions.ListByHousehold(r.Context(), householdID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(transactions))
	for _, tx := range transactions {
		lines := make([]map[string]any, 0, len(tx.Lines))
		for _, line := range tx.Lines {
			lines = append(lines, map[string]any{
				"id":          line.ID,
				"category_id": line.CategoryID,
				"line_type":   line.LineType,
				"amount":      formatMoney(line.Amount),
				"description": line.Description,
			})
		}
		normalized = append(normalized, map[string]any{
			"id":                    tx.ID,
			"account_id":            tx.AccountID,
			"settlement_account_id": tx.SettlementAccountID,
			"date":                  tx.Date,
			"settlement_date":       tx.SettlementDate,
			"total_amount":          formatMoney(tx.TotalAmount),
			"is_cash_settled":       tx.IsCashSettled,
			"settled_amount":        formatMoney(tx.SettledAmount),
			"memo":                  tx.Memo,
			"lines":                 lines,
			"created_at":            tx.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func identity(r *http.Request) (userID, householdID string, ok bool) {
	userID, okUser := middleware.UserIDFromContext(r.Context())
	householdID, okHousehold := middleware.HouseholdIDFromContext(r.Context())
	return userID, householdID, okUser && okHousehold
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch err {
	case services.ErrInvalidAmount:
		respondError(w, http.StatusBadRequest, "invalid_amount")
	case services.ErrSameAccountTransfer:
		respondError(w, http.StatusBadRequest, "same_account_transfer")
	case services.ErrNoLines:
		respondError(w, http.StatusBadRequest, "lines_required")
	case services.ErrInvalidLineType:
		respondError(w, http.StatusBadRequest, "invalid_line_type")
	case services.ErrUnauthorizedAccount:
		respondError(w, http.StatusForbidden, "account_access_denied")
	case services.ErrInactiveAccount:
		respondError(w, http.StatusBadRequest, "account_inactive")
	case services.ErrAlreadySettled:
		respondError(w, http.StatusConflict, "already_settled")
	case services.ErrInactiveTemplate:
		respondError(w, http.StatusBadRequest, "template_inactive")
	case sql.ErrNoRows:
		respondError(w, http.StatusNotFound, "not_found")
	default:
		respondError(w, http.StatusInternalServerError, "request_failed")
	}
}
