package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/flowboard/internal/api/dto"
	"github.com/hugh/flowboard/internal/api/validation"
	"github.com/hugh/flowboard/internal/database/models"
	"github.com/hugh/flowboard/internal/kanban"
)

// CategoryHandler serves the global category registry. Categories carry no
// owner, so these endpoints only require an authenticated session.
type CategoryHandler struct {
	service *kanban.Service
}

func NewCategoryHandler(service *kanban.Service) *CategoryHandler {
	return &CategoryHandler{service: service}
}

type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (r CreateCategoryRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Color != "" && !validation.IsValidHexColor(r.Color) {
		errors["color"] = "Color must be a hex code like #3B82F6"
	}
	return errors
}

type CategoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func categoryToResponse(category *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:    category.ID.String(),
		Name:  category.Name,
		Color: category.Color,
	}
}

// Create handles POST /api/v1/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Name, req.Color)
	if err != nil {
		if errors.Is(err, kanban.ErrDuplicateCategory) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"name": "Category name already exists"},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create category"})
		return
	}

	writeJSON(w, http.StatusCreated, categoryToResponse(category))
}

// List handles GET /api/v1/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list categories"})
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i := range categories {
		response[i] = categoryToResponse(&categories[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Delete handles DELETE /api/v1/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid category ID"})
		return
	}

	if err := h.service.DeleteCategory(r.Context(), categoryID); err != nil {
		writeKanbanError(w, err, "Failed to delete category")
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Category deleted"})
}
