package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/repository"
)

// boardResponse is a board rebuilt from the first moves of a match.
type boardResponse struct {
	MatchID    string `json:"match_id"`
	Moves      int    `json:"moves"`
	Field      string `json:"field"`
	Macroboard string `json:"macroboard"`
	Winner     int    `json:"winner"`
	Dump       string `json:"dump"`
}

func (that *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleGetMatch")

	id := chi.URLParam(r, "id")

	if raw := r.URL.Query().Get("move"); raw != "" {
		moves, err := strconv.Atoi(raw)
		if err != nil {
			that.writeError(w, http.StatusBadRequest, "invalid move number")
			return
		}

		board, err := that.history.GetBoardAt(r.Context(), id, moves)
		if err != nil {
			log.Error("failed to rebuild board", "match", id, "error", err)
			that.writeError(w, statusOf(err), err.Error())
			return
		}

		that.writeJSON(w, http.StatusOK, boardResponse{
			MatchID:    id,
			Moves:      moves,
			Field:      board.String(),
			Macroboard: board.MacroboardString(),
			Winner:     board.Winner(),
			Dump:       board.Dump(),
		})
		return
	}

	match, err := that.history.GetMatch(r.Context(), id)
	if err != nil {
		log.Error("failed to get match", "match", id, "error", err)
		that.writeError(w, statusOf(err), err.Error())
		return
	}

	that.writeJSON(w, http.StatusOK, match)
}

func (that *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			that.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	results, err := that.history.ListResults(r.Context(), limit)
	if err != nil {
		that.logger.Error("failed to list results", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}

	that.writeJSON(w, http.StatusOK, results)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, status int, message string) {
	that.writeJSON(w, status, map[string]string{"error": message})
}

func statusOf(err error) int {
	if errors.Is(err, repository.ErrMatchNotFound) || errors.Is(err, apperror.ErrNotFound) {
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}
