// Package admin holds the back-office HTTP handlers. Everything here sits
// behind admin-realm authentication.
package admin

import (
	"context"
	"net/http"

	"github.com/JonathanDunkleberger/Kimi/internal/catalog"
	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// LinesHandler manages line publication and status transitions.
type LinesHandler struct {
	catalog *catalog.Catalog
}

// NewLinesHandler creates a new LinesHandler.
func NewLinesHandler(cat *catalog.Catalog) *LinesHandler {
	return &LinesHandler{catalog: cat}
}

// Publish handles POST /admin/lines.
func (h *LinesHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var input catalog.PublishInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code": "VALIDATION_ERROR", "message": "invalid request body",
		})
		return
	}

	line, err := h.catalog.Publish(r.Context(), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, line)
}

// Freeze handles POST /admin/lines/{lineID}/freeze.
func (h *LinesHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.catalog.Freeze)
}

// Pull handles POST /admin/lines/{lineID}/pull.
func (h *LinesHandler) Pull(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.catalog.Pull)
}

// Settle handles POST /admin/lines/{lineID}/settle.
func (h *LinesHandler) Settle(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.catalog.Settle)
}

func (h *LinesHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, lineID uuid.UUID) (*domain.Line, error),
) {
	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid line id"))
		return
	}

	line, err := op(r.Context(), lineID)
	if err != nil {
		if domain.IsAlreadySettled(err) {
			handler.RespondJSON(w, http.StatusOK, map[string]string{
				"status": "already_settled", "line_id": lineID.String(),
			})
			return
		}
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, line)
}
