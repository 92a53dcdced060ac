package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/flowboard/internal/api/dto"
	"github.com/hugh/flowboard/internal/api/middleware"
	"github.com/hugh/flowboard/internal/api/validation"
	"github.com/hugh/flowboard/internal/database/models"
	"github.com/hugh/flowboard/internal/kanban"
)

type BoardHandler struct {
	service *kanban.Service
}

func NewBoardHandler(service *kanban.Service) *BoardHandler {
	return &BoardHandler{service: service}
}

type BoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

func (r BoardRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Color != "" && !validation.IsValidHexColor(r.Color) {
		errors["color"] = "Color must be a hex code like #3B82F6"
	}
	return errors
}

type BoardResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	CreatedAt   string `json:"created_at"`
}

func boardToResponse(board *models.Board) BoardResponse {
	return BoardResponse{
		ID:          board.ID.String(),
		Name:        board.Name,
		Description: board.Description,
		Color:       board.Color,
		CreatedAt:   board.CreatedAt.Format(time.RFC3339),
	}
}

// BoardViewResponse is the full current-board payload: lanes in display order
// with their cards. Board is null when the caller owns no boards yet.
type BoardViewResponse struct {
	Board *BoardResponse `json:"board"`
	Lanes []LaneResponse `json:"lanes"`
}

// List handles GET /api/v1/boards
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	boards, err := h.service.ListBoards(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list boards"})
		return
	}

	response := make([]BoardResponse, len(boards))
	for i := range boards {
		response[i] = boardToResponse(&boards[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/boards
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req BoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	board, err := h.service.CreateBoard(r.Context(), userID, kanban.BoardInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create board"})
		return
	}

	// A freshly created board becomes the current one.
	rememberBoard(w, board.ID)
	writeJSON(w, http.StatusCreated, boardToResponse(board))
}

// Current handles GET /api/v1/board — the current-board view resolved from
// the session cookie with first-board fallback.
func (h *BoardHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	board, err := h.service.CurrentBoard(r.Context(), userID, rememberedBoardID(r))
	if err != nil {
		if errors.Is(err, kanban.ErrNoBoards) {
			// Empty state, not an error: the client renders a create prompt.
			forgetBoard(w)
			writeJSON(w, http.StatusOK, BoardViewResponse{Board: nil, Lanes: []LaneResponse{}})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to resolve board"})
		return
	}

	_, lanes, err := h.service.BoardView(r.Context(), userID, board.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load board"})
		return
	}

	rememberBoard(w, board.ID)

	resp := BoardViewResponse{Lanes: make([]LaneResponse, len(lanes))}
	b := boardToResponse(board)
	resp.Board = &b
	for i := range lanes {
		resp.Lanes[i] = laneToResponse(&lanes[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/boards/{id}
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	boardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid board ID"})
		return
	}

	board, err := h.service.GetBoard(r.Context(), userID, boardID)
	if err != nil {
		writeKanbanError(w, err, "Failed to get board")
		return
	}
	writeJSON(w, http.StatusOK, boardToResponse(board))
}

// Update handles PUT /api/v1/boards/{id}
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	boardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid board ID"})
		return
	}

	var req BoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Color != "" && !validation.IsValidHexColor(req.Color) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"color": "Color must be a hex code like #3B82F6"},
		})
		return
	}

	board, err := h.service.UpdateBoard(r.Context(), userID, boardID, kanban.BoardInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		writeKanbanError(w, err, "Failed to update board")
		return
	}
	writeJSON(w, http.StatusOK, boardToResponse(board))
}

// Switch handles POST /api/v1/boards/{id}/switch
func (h *BoardHandler) Switch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	boardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid board ID"})
		return
	}

	board, err := h.service.GetBoard(r.Context(), userID, boardID)
	if err != nil {
		writeKanbanError(w, err, "Failed to switch board")
		return
	}

	rememberBoard(w, board.ID)
	writeJSON(w, http.StatusOK, boardToResponse(board))
}

// Delete handles DELETE /api/v1/boards/{id}
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	boardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid board ID"})
		return
	}

	if err := h.service.DeleteBoard(r.Context(), userID, boardID); err != nil {
		writeKanbanError(w, err, "Failed to delete board")
		return
	}

	if rememberedBoardID(r) == boardID {
		forgetBoard(w)
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Board deleted"})
}
