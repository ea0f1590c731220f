package handler

import (
	"net/http"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/cache"
	"github.com/JonathanDunkleberger/Kimi/internal/catalog"
	"github.com/JonathanDunkleberger/Kimi/internal/lockclock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// BoardHandler serves the public board and line endpoints.
type BoardHandler struct {
	catalog *catalog.Catalog
	boards  *cache.Board
	clock   lockclock.Clock
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(cat *catalog.Catalog, boards *cache.Board, clock lockclock.Clock) *BoardHandler {
	return &BoardHandler{catalog: cat, boards: boards, clock: clock}
}

// Board handles GET /board?date=YYYY-MM-DD. Defaults to today (UTC).
func (h *BoardHandler) Board(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code": "VALIDATION_ERROR", "message": "date must be YYYY-MM-DD",
		})
		return
	}

	if cached := h.boards.Get(r.Context(), date); cached != nil {
		RespondJSON(w, http.StatusOK, map[string]interface{}{"date": date, "matches": cached})
		return
	}

	board, err := h.catalog.Board(r.Context(), day, day.Add(24*time.Hour), h.clock)
	if err != nil {
		RespondError(w, err)
		return
	}
	h.boards.Put(r.Context(), date, board)

	RespondJSON(w, http.StatusOK, map[string]interface{}{"date": date, "matches": board})
}

// Line handles GET /lines/{lineID}.
func (h *BoardHandler) Line(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code": "VALIDATION_ERROR", "message": "invalid line id",
		})
		return
	}

	line, err := h.catalog.Get(r.Context(), lineID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, line)
}
