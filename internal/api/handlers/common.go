package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/hugh/flowboard/internal/api/dto"
	"github.com/hugh/flowboard/internal/kanban"
)

// boardCookieName holds the per-session "current board" id.
const boardCookieName = "board_id"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeKanbanError maps service sentinels onto HTTP statuses.
func writeKanbanError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, kanban.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Not found"})
	case errors.Is(err, kanban.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, kanban.ErrLastBoard):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Cannot delete your only board"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: fallback})
	}
}

// rememberedBoardID reads the current-board cookie, Nil when absent or bad.
func rememberedBoardID(r *http.Request) uuid.UUID {
	cookie, err := r.Cookie(boardCookieName)
	if err != nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// rememberBoard refreshes the current-board cookie after resolution.
func rememberBoard(w http.ResponseWriter, boardID uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     boardCookieName,
		Value:    boardID.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 30,
	})
}

func forgetBoard(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     boardCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseUUIDs(raw []string) ([]uuid.UUID, bool) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}
