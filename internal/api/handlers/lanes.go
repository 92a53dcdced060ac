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

type LaneHandler struct {
	service *kanban.Service
}

func NewLaneHandler(service *kanban.Service) *LaneHandler {
	return &LaneHandler{service: service}
}

type CreateLaneRequest struct {
	Title   string `json:"title"`
	BoardID string `json:"board_id,omitempty"` // defaults to the current board
}

type LaneResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Position  float64        `json:"position"`
	BoardID   string         `json:"board_id"`
	CreatedAt string         `json:"created_at"`
	Cards     []CardResponse `json:"cards,omitempty"`
}

func laneToResponse(lane *models.Lane) LaneResponse {
	resp := LaneResponse{
		ID:        lane.ID.String(),
		Title:     lane.Title,
		Position:  lane.Position,
		BoardID:   lane.BoardID.String(),
		CreatedAt: lane.CreatedAt.Format(time.RFC3339),
	}
	for i := range lane.Cards {
		resp.Cards = append(resp.Cards, cardToResponse(&lane.Cards[i]))
	}
	return resp
}

// Create handles POST /api/v1/lanes. The lane lands on the board named in the
// request, or on the caller's current board.
func (h *LaneHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateLaneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"title": "Title is required"},
		})
		return
	}

	var boardID uuid.UUID
	if req.BoardID != "" {
		id, err := uuid.Parse(req.BoardID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid board ID"})
			return
		}
		boardID = id
	} else {
		board, err := h.service.CurrentBoard(r.Context(), userID, rememberedBoardID(r))
		if err != nil {
			writeKanbanError(w, kanban.ErrNotFound, "Failed to resolve board")
			return
		}
		boardID = board.ID
	}

	lane, err := h.service.CreateLane(r.Context(), userID, boardID, req.Title)
	if err != nil {
		writeKanbanError(w, err, "Failed to create lane")
		return
	}

	writeJSON(w, http.StatusCreated, laneToResponse(lane))
}

// Delete handles DELETE /api/v1/lanes/{id}
func (h *LaneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	laneID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid lane ID"})
		return
	}

	if err := h.service.DeleteLane(r.Context(), userID, laneID); err != nil {
		writeKanbanError(w, err, "Failed to delete lane")
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Lane deleted"})
}

type ReorderLanesRequest struct {
	LaneIDs []string `json:"lane_ids"`
}

// Reorder handles PUT /api/v1/lanes/reorder. Each lane's position becomes its
// index in the submitted list; unowned lanes are reported in skipped_ids.
func (h *LaneHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req ReorderLanesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	laneIDs, ok := parseUUIDs(req.LaneIDs)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid lane ID in list"})
		return
	}

	skipped, err := h.service.ReorderLanes(r.Context(), userID, laneIDs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to reorder lanes"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ReorderResponse{Success: true, SkippedIDs: uuidStrings(skipped)})
}
