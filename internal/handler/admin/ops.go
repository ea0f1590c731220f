package admin

import (
	"net/http"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/handler"
	"github.com/JonathanDunkleberger/Kimi/internal/publisher"
	"github.com/JonathanDunkleberger/Kimi/internal/settlement"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OpsHandler exposes the batch operations: publishing lines for upcoming
// matches and sweeping settled ones.
type OpsHandler struct {
	publisher *publisher.Publisher
	sweeper   *settlement.Sweeper
	engine    *settlement.Engine
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(pub *publisher.Publisher, sweeper *settlement.Sweeper, engine *settlement.Engine) *OpsHandler {
	return &OpsHandler{publisher: pub, sweeper: sweeper, engine: engine}
}

// PublishLines handles POST /admin/run/publish-lines. Prices and publishes
// lines for matches starting within the window (default 48h).
func (h *OpsHandler) PublishLines(w http.ResponseWriter, r *http.Request) {
	var input struct {
		WindowHours int `json:"window_hours"`
	}
	// Body is optional.
	_ = handler.DecodeJSON(r, &input)
	if input.WindowHours <= 0 {
		input.WindowHours = 48
	}

	now := time.Now()
	res, err := h.publisher.PublishUpcoming(r.Context(), now, now.Add(time.Duration(input.WindowHours)*time.Hour))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, res)
}

// Sweep handles POST /admin/run/settle. Settles everything open on FINAL
// matches; safe to call repeatedly.
func (h *OpsHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	res, err := h.sweeper.SweepOnce(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, res)
}

// SettleEntry handles POST /admin/entries/{entryID}/settle for targeted
// re-settlement. A repeat settle reports already_settled with a 200.
func (h *OpsHandler) SettleEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid entry id"))
		return
	}

	e, err := h.engine.SettleEntry(r.Context(), entryID)
	if err != nil {
		if domain.IsAlreadySettled(err) {
			handler.RespondJSON(w, http.StatusOK, map[string]string{
				"status": "already_settled", "entry_id": entryID.String(),
			})
			return
		}
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, e)
}
