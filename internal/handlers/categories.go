package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/omliv423/money-tracker-sub001/internal/models"
	"github.com/omliv423/money-tracker-sub001/internal/validator"
)

type createCategoryRequest struct {
	ParentID *string `json:"parent_id"`
	Kind     string  `json:"kind"`
	Name     string  `json:"name"`
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := validator.ValidateLineType(req.Kind); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	category := models.Category{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		ParentID:    req.ParentID,
		Kind:        req.Kind,
		Name:        req.Name,
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.categories.Create(r.Context(), tx, category); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"category_id": category.ID})
		return h.audit.Log(r.Context(), tx, householdID, userID, "create_category", "category", category.ID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create category")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"category_id": category.ID})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	_, householdID, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	categories, err := h.categories.ListByHousehold(r.Context(), householdID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
