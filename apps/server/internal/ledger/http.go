package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// FinalLookup returns the encoded final snapshot of a recently closed game.
type FinalLookup func(gameID string) (json.RawMessage, bool)

type HTTPHandler struct {
	ledger Service
	final  FinalLookup
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(ledgerService Service, final FinalLookup) *HTTPHandler {
	return &HTTPHandler{ledger: ledgerService, final: final}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/games/recent", h.handleRecent)
	mux.HandleFunc("GET /api/games/{id}/statements", h.handleStatements)
	mux.HandleFunc("GET /api/games/{id}/final", h.handleFinal)
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.ListRecent(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query recent games failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *HTTPHandler) handleStatements(w http.ResponseWriter, r *http.Request) {
	gameID := strings.TrimSpace(r.PathValue("id"))
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "missing game id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.GetStatements(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "query statements failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id":    gameID,
		"statements": items,
	})
}

func (h *HTTPHandler) handleFinal(w http.ResponseWriter, r *http.Request) {
	gameID := strings.TrimSpace(r.PathValue("id"))
	if h.final == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	snap, ok := h.final(gameID)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id":  gameID,
		"snapshot": snap,
	})
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 20
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 20
	}
	return clampLimit(n, 20)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
