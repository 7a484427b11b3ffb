package handlers

import (
	"net/http"
)

// Reconcile runs the full audit/repair pass and reports every account whose
// cached balance disagreed with its recomputed value.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	drifts, err := h.reconciler.ReconcileAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile balances")
		return
	}
	normalized := make([]map[string]any, 0, len(drifts))
	for _, drift := range drifts {
		row := map[string]any{
			"account_id":         drift.AccountID,
			"account_name":       drift.AccountName,
			"opening_balance":    formatMoney(drift.OpeningBalance),
			"opening_date":       drift.OpeningDate,
			"stored_balance":     formatMoney(drift.StoredBalance),
			"calculated_balance": formatMoney(drift.CalculatedBalance),
			"difference":         formatMoney(drift.Difference),
		}
		if drift.PersistError != "" {
			row["persist_error"] = drift.PersistError
		}
		normalized = append(normalized, row)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"drifted": len(normalized),
		"results": normalized,
	})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	_, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	offset := (page - 1) * limit
	rows, err := h.audit.ListByHousehold(r.Context(), householdID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
