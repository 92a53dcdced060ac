package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/flowboard/internal/api/dto"
	"github.com/hugh/flowboard/internal/api/middleware"
	"github.com/hugh/flowboard/internal/database/models"
	"github.com/hugh/flowboard/internal/kanban"
)

type CardHandler struct {
	service *kanban.Service
}

func NewCardHandler(service *kanban.Service) *CardHandler {
	return &CardHandler{service: service}
}

type CreateCardRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	LaneID      string   `json:"lane_id"`
	CategoryIDs []string `json:"category_ids,omitempty"`
}

func (r CreateCardRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Title == "" {
		errors["title"] = "Title is required"
	}
	if r.LaneID == "" {
		errors["lane_id"] = "Lane is required"
	} else if _, err := uuid.Parse(r.LaneID); err != nil {
		errors["lane_id"] = "Invalid lane ID"
	}
	return errors
}

type UpdateCardRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CategoryIDs []string `json:"category_ids"`
}

type MoveCardRequest struct {
	LaneID   *string  `json:"lane_id,omitempty"`
	Position *float64 `json:"position,omitempty"`
}

type CardResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	LaneID      string             `json:"lane_id"`
	Position    float64            `json:"position"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
	Categories  []CategoryResponse `json:"categories"`
}

func cardToResponse(card *models.Card) CardResponse {
	resp := CardResponse{
		ID:          card.ID.String(),
		Title:       card.Title,
		Description: card.Description,
		LaneID:      card.LaneID.String(),
		Position:    card.Position,
		CreatedAt:   card.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   card.UpdatedAt.Format(time.RFC3339),
		Categories:  make([]CategoryResponse, len(card.Categories)),
	}
	for i := range card.Categories {
		resp.Categories[i] = categoryToResponse(&card.Categories[i])
	}
	return resp
}

// Create handles POST /api/v1/cards
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	laneID, _ := uuid.Parse(req.LaneID)
	categoryIDs, ok := parseUUIDs(req.CategoryIDs)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid category ID in list"})
		return
	}

	card, err := h.service.CreateCard(r.Context(), userID, laneID, kanban.CardInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryIDs: categoryIDs,
	})
	if err != nil {
		writeKanbanError(w, err, "Failed to create card")
		return
	}

	writeJSON(w, http.StatusCreated, cardToResponse(card))
}

// Get handles GET /api/v1/cards/{id}
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid card ID"})
		return
	}

	card, err := h.service.GetCard(r.Context(), userID, cardID)
	if err != nil {
		writeKanbanError(w, err, "Failed to get card")
		return
	}

	writeJSON(w, http.StatusOK, cardToResponse(card))
}

// Update handles POST /api/v1/cards/{id}/update. An empty category_ids list
// clears every category from the card.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid card ID"})
		return
	}

	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	categoryIDs, ok := parseUUIDs(req.CategoryIDs)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid category ID in list"})
		return
	}

	card, err := h.service.UpdateCard(r.Context(), userID, cardID, kanban.CardInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryIDs: categoryIDs,
	})
	if err != nil {
		writeKanbanError(w, err, "Failed to update card")
		return
	}

	writeJSON(w, http.StatusOK, cardToResponse(card))
}

// Delete handles DELETE /api/v1/cards/{id}
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid card ID"})
		return
	}

	if err := h.service.DeleteCard(r.Context(), userID, cardID); err != nil {
		writeKanbanError(w, err, "Failed to delete card")
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Card deleted"})
}

// Move handles PUT /api/v1/cards/{id}/move (and PUT /api/v1/cards/{id}, kept
// for older drag-drop clients). Lane and position changes apply atomically.
func (h *CardHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid card ID"})
		return
	}

	var req MoveCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	var laneID *uuid.UUID
	if req.LaneID != nil {
		id, err := uuid.Parse(*req.LaneID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid lane ID"})
			return
		}
		laneID = &id
	}

	if err := h.service.MoveCard(r.Context(), userID, cardID, laneID, req.Position); err != nil {
		writeKanbanError(w, err, "Failed to move card")
		return
	}

	writeJSON(w, http.StatusOK, dto.ReorderResponse{Success: true})
}

type CardReorderEntry struct {
	CardID   string   `json:"card_id"`
	LaneID   *string  `json:"lane_id,omitempty"`
	Position *float64 `json:"position,omitempty"`
}

type ReorderCardsRequest struct {
	Updates []CardReorderEntry `json:"updates"`
}

// Reorder handles PUT /api/v1/cards/reorder. The batch commits as one
// transaction; unowned entries are reported in skipped_ids.
func (h *CardHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req ReorderCardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	updates := make([]kanban.CardReorderUpdate, 0, len(req.Updates))
	for _, entry := range req.Updates {
		cardID, err := uuid.Parse(entry.CardID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid card ID in list"})
			return
		}
		update := kanban.CardReorderUpdate{CardID: cardID, Position: entry.Position}
		if entry.LaneID != nil {
			laneID, err := uuid.Parse(*entry.LaneID)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid lane ID in list"})
				return
			}
			update.LaneID = &laneID
		}
		updates = append(updates, update)
	}

	skipped, err := h.service.ReorderCards(r.Context(), userID, updates)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to reorder cards"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ReorderResponse{Success: true, SkippedIDs: uuidStrings(skipped)})
}
